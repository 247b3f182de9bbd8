package booking

import (
	"context"
	"strings"
	"time"

	"rentalbackend/internal/catalog"
)

// The availability engine. Everything here is pure computation over a
// snapshot of bookings; Admit is the single place a side effect happens,
// and it happens inside the store.

// Overlaps reports whether the inclusive ranges [s1,e1] and [s2,e2]
// share at least one date. A booking ending on the day another starts
// counts as overlapping: the costume still has to come back, be cleaned,
// and go out again on the same day.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return !s1.After(e2) && !e1.Before(s2)
}

// matchesItem reports whether a booking references the given catalog
// item. New bookings always carry the stable item ID; rows imported from
// old rental logs may only have the display name, so name matching stays
// as a legacy fallback.
func matchesItem(b Booking, item catalog.Item) bool {
	if b.ItemID != "" {
		return b.ItemID == item.ID
	}
	return b.ItemName == item.Name
}

// CountOverlapping counts existing bookings for item whose inclusive
// range overlaps [start, end]. Each booking occupies exactly one unit
// for its whole range.
func CountOverlapping(bookings []Booking, item catalog.Item, start, end time.Time) int {
	count := 0
	for _, b := range bookings {
		if !matchesItem(b, item) {
			continue
		}
		if Overlaps(b.StartDate, b.EndDate, start, end) {
			count++
		}
	}
	return count
}

// IsAdmissible reports whether one more booking of item fits in
// [start, end], along with how many units are already occupied. It never
// mutates anything; callers may use the occupied count to report
// "(occupied+1 of total)" on success.
func IsAdmissible(bookings []Booking, item catalog.Item, start, end time.Time) (bool, int) {
	occupied := CountOverlapping(bookings, item, start, end)
	return occupied < item.Quantity, occupied
}

// ValidateRequest applies the admission preconditions: a non-empty
// customer name and an ordered date range. Returns nil when the request
// is well formed.
func ValidateRequest(req Request) *Rejection {
	if strings.TrimSpace(req.CustomerName) == "" {
		return &Rejection{Reason: ReasonMissingCustomer}
	}
	if Date(req.EndDate).Before(Date(req.StartDate)) {
		return &Rejection{Reason: ReasonInvalidDates}
	}
	return nil
}

// Admit validates a booking request and, if well formed, hands it to the
// store for an atomic capacity check and append. Exactly one of the
// three results is meaningful: a persisted booking on success, a typed
// rejection for expected business refusals, or an error for store
// failures (which are propagated unchanged).
func Admit(ctx context.Context, store Store, item catalog.Item, req Request) (*Booking, *Rejection, error) {
	if rej := ValidateRequest(req); rej != nil {
		return nil, rej, nil
	}

	candidate := Booking{
		ItemID:        item.ID,
		ItemName:      item.Name,
		CustomerName:  strings.TrimSpace(req.CustomerName),
		CustomerPhone: strings.TrimSpace(req.CustomerPhone),
		StartDate:     Date(req.StartDate),
		EndDate:       Date(req.EndDate),
		CreatedAt:     time.Now().UTC(),
	}

	return store.Admit(ctx, item, candidate)
}
