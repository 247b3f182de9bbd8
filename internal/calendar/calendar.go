// Package calendar builds the monthly availability grid the dashboard
// renders: one cell per day, each carrying how many units of a mascot
// are booked and how many remain.
package calendar

import (
	"fmt"
	"time"

	"rentalbackend/internal/booking"
	"rentalbackend/internal/catalog"
)

// DayStatus is one calendar cell. Padding cells (days belonging to the
// neighboring month) have Day == 0 and an empty Date.
type DayStatus struct {
	Date      string `json:"date,omitempty"`
	Day       int    `json:"day"`
	Booked    int    `json:"booked"`
	Available int    `json:"available"`
	Status    string `json:"status,omitempty"`
}

// Week is one calendar row, Monday first.
type Week [7]DayStatus

// MonthGrid computes the availability grid for one item and month from a
// snapshot of bookings. Pure; the snapshot is not modified.
func MonthGrid(item catalog.Item, bookings []booking.Booking, year int, month time.Month) []Week {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	daysInMonth := first.AddDate(0, 1, -1).Day()

	// Monday-first column index of the 1st.
	offset := (int(first.Weekday()) + 6) % 7

	var weeks []Week
	week := Week{}
	col := offset

	for day := 1; day <= daysInMonth; day++ {
		date := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
		booked := booking.CountOverlapping(bookings, item, date, date)
		available := item.Quantity - booked
		if available < 0 {
			// Overbooked legacy data; never report negative availability.
			available = 0
		}

		week[col] = DayStatus{
			Date:      date.Format(booking.DateFormat),
			Day:       day,
			Booked:    booked,
			Available: available,
			Status:    statusLabel(booked, item.Quantity),
		}

		col++
		if col == 7 {
			weeks = append(weeks, week)
			week = Week{}
			col = 0
		}
	}
	if col != 0 {
		weeks = append(weeks, week)
	}

	return weeks
}

func statusLabel(booked, quantity int) string {
	if booked >= quantity {
		return "Fully booked"
	}
	return fmt.Sprintf("Available (%d of %d)", quantity-booked, quantity)
}
