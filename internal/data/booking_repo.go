package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"rentalbackend/internal/booking"
	"rentalbackend/internal/catalog"
	"rentalbackend/internal/logger"
)

// BookingRepository persists bookings in the rental log table. It is the
// only writer, and Admit is the only path that creates rows while the
// server is running.
type BookingRepository struct {
	db *sql.DB
}

func NewBookingRepository(db *sql.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

const bookingColumns = `id, item_id, item_name, customer_name, customer_phone, start_date, end_date, created_at`

// Admit atomically checks capacity for the candidate's date range and
// inserts it if a unit remains. The count and the insert run in one
// immediate transaction, so two concurrent admissions for the last unit
// cannot both succeed.
func (r *BookingRepository) Admit(ctx context.Context, item catalog.Item, candidate booking.Booking) (*booking.Booking, *booking.Rejection, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin admission transaction: %w", err)
	}
	defer tx.Rollback()

	existing, err := listByItemTx(ctx, tx, item)
	if err != nil {
		return nil, nil, err
	}

	ok, occupied := booking.IsAdmissible(existing, item, candidate.StartDate, candidate.EndDate)
	if !ok {
		// Rollback via defer; the store stays untouched.
		return nil, &booking.Rejection{
			Reason:   booking.ReasonNoAvailability,
			Occupied: occupied,
			Total:    item.Quantity,
		}, nil
	}

	candidate.ID = uuid.NewString()
	if candidate.CreatedAt.IsZero() {
		candidate.CreatedAt = time.Now().UTC()
	}

	const stmt = `
		INSERT INTO bookings (` + bookingColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = tx.ExecContext(ctx, stmt,
		candidate.ID, candidate.ItemID, candidate.ItemName,
		candidate.CustomerName, candidate.CustomerPhone,
		formatDate(candidate.StartDate), formatDate(candidate.EndDate),
		candidate.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to insert booking: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit admission: %w", err)
	}

	logger.LogInfo("Booking %s admitted for %s (%d of %d units in use)",
		candidate.ID, item.Name, occupied+1, item.Quantity)
	return &candidate, nil, nil
}

// listByItemTx loads all bookings referencing the item inside the given
// transaction. Rows with an empty item_id predate stable identifiers and
// are matched by display name.
func listByItemTx(ctx context.Context, tx *sql.Tx, item catalog.Item) ([]booking.Booking, error) {
	const stmt = `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE item_id = ? OR (item_id = '' AND item_name = ?)
		ORDER BY start_date`

	rows, err := tx.QueryContext(ctx, stmt, item.ID, item.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings for item %s: %w", item.ID, err)
	}
	defer rows.Close()

	return collectBookings(rows)
}

// ListAll returns every booking in the rental log ordered by start date.
func (r *BookingRepository) ListAll(ctx context.Context) ([]booking.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	const stmt = `SELECT ` + bookingColumns + ` FROM bookings ORDER BY start_date, item_name`

	rows, err := r.db.QueryContext(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	return collectBookings(rows)
}

// ListByItem returns the bookings referencing the given item ID.
func (r *BookingRepository) ListByItem(ctx context.Context, itemID string) ([]booking.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	const stmt = `SELECT ` + bookingColumns + ` FROM bookings WHERE item_id = ? ORDER BY start_date`

	rows, err := r.db.QueryContext(ctx, stmt, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings for item %s: %w", itemID, err)
	}
	defer rows.Close()

	return collectBookings(rows)
}

// GetByID fetches a single booking. Returns sql.ErrNoRows when absent.
func (r *BookingRepository) GetByID(ctx context.Context, id string) (*booking.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	const stmt = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`

	row := r.db.QueryRowContext(ctx, stmt, id)
	b, err := scanBooking(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan booking %s: %w", id, err)
	}
	return b, nil
}

// DeleteByID removes a booking. The second return reports whether a row
// actually existed.
func (r *BookingRepository) DeleteByID(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete booking %s: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read delete result: %w", err)
	}
	return affected > 0, nil
}

// BackfillItemIDs fills in item_id for legacy rows that reference a
// mascot by display name only. Rows whose name no longer matches any
// catalog item are left alone and logged.
func (r *BookingRepository) BackfillItemIDs(ctx context.Context, cat *catalog.Service) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT item_name FROM bookings WHERE item_id = ''`)
	if err != nil {
		return fmt.Errorf("failed to query legacy bookings: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return fmt.Errorf("failed to scan legacy booking name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating legacy booking names: %w", err)
	}

	for _, name := range names {
		item, ok := cat.ItemByName(name)
		if !ok {
			logger.LogWarn("Legacy booking references unknown mascot %q; leaving item_id empty", name)
			continue
		}
		if _, err := r.db.ExecContext(ctx,
			`UPDATE bookings SET item_id = ? WHERE item_id = '' AND item_name = ?`,
			item.ID, name); err != nil {
			return fmt.Errorf("failed to backfill item_id for %q: %w", name, err)
		}
		logger.LogInfo("Backfilled item_id %s for legacy bookings of %q", item.ID, name)
	}

	return nil
}

// Scanning helpers

func collectBookings(rows *sql.Rows) ([]booking.Booking, error) {
	var result []booking.Booking
	for rows.Next() {
		b, err := scanBooking(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking row: %w", err)
		}
		result = append(result, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating booking rows: %w", err)
	}
	return result, nil
}

func scanBooking(scan func(...interface{}) error) (*booking.Booking, error) {
	var b booking.Booking
	var startDate, endDate, createdAt string

	err := scan(&b.ID, &b.ItemID, &b.ItemName, &b.CustomerName, &b.CustomerPhone,
		&startDate, &endDate, &createdAt)
	if err != nil {
		return nil, err
	}

	if b.StartDate, err = booking.ParseDate(startDate); err != nil {
		return nil, fmt.Errorf("bad start_date: %w", err)
	}
	if b.EndDate, err = booking.ParseDate(endDate); err != nil {
		return nil, fmt.Errorf("bad end_date: %w", err)
	}
	if b.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("bad created_at: %w", err)
	}

	return &b, nil
}

func formatDate(t time.Time) string {
	return t.Format(booking.DateFormat)
}
