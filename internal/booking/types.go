package booking

import (
	"context"
	"fmt"
	"time"

	"rentalbackend/internal/catalog"
)

// DateFormat is the wire and storage format for booking dates. Bookings
// are date-granular; both endpoints are inclusive.
const DateFormat = "2006-01-02"

// Booking is one reservation of a single unit of a catalog item for a
// contiguous, inclusive date range. Bookings are never mutated once
// created; they are deleted by ID or left alone.
type Booking struct {
	ID            string    `json:"id"`
	ItemID        string    `json:"item_id"`
	ItemName      string    `json:"item_name"`
	CustomerName  string    `json:"customer_name"`
	CustomerPhone string    `json:"customer_phone,omitempty"`
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
	CreatedAt     time.Time `json:"created_at"`
}

// Request is a proposed booking before admission. The store assigns the
// ID when (and only when) the request is admitted.
type Request struct {
	CustomerName  string
	CustomerPhone string
	StartDate     time.Time
	EndDate       time.Time
}

// RejectReason discriminates expected business rejections so callers can
// show distinct messages. Rejections are results, not errors.
type RejectReason string

const (
	ReasonMissingCustomer RejectReason = "missing_customer"
	ReasonInvalidDates    RejectReason = "invalid_dates"
	ReasonNoAvailability  RejectReason = "no_availability"
)

// Rejection reports why a booking request was not admitted. Occupied and
// Total are only meaningful for ReasonNoAvailability.
type Rejection struct {
	Reason   RejectReason `json:"reason"`
	Occupied int          `json:"occupied,omitempty"`
	Total    int          `json:"total,omitempty"`
}

func (r *Rejection) Message() string {
	switch r.Reason {
	case ReasonMissingCustomer:
		return "please enter a customer name"
	case ReasonInvalidDates:
		return "end date must not be before start date"
	case ReasonNoAvailability:
		return fmt.Sprintf("fully booked for these dates (%d of %d in use)", r.Occupied, r.Total)
	default:
		return "booking rejected"
	}
}

// Store is the persistence boundary the engine admits bookings through.
// Admit must perform its capacity check and its append as one atomic
// transaction; on rejection it must leave the store untouched.
type Store interface {
	Admit(ctx context.Context, item catalog.Item, candidate Booking) (*Booking, *Rejection, error)
}

// BookingStore is the full store surface the HTTP layer needs.
type BookingStore interface {
	Store
	ListAll(ctx context.Context) ([]Booking, error)
	ListByItem(ctx context.Context, itemID string) ([]Booking, error)
	DeleteByID(ctx context.Context, id string) (bool, error)
}

// Date truncates t to a date-only value at UTC midnight.
func Date(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string into a UTC midnight time.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}
