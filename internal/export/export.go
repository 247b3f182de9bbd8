// Package export writes the rental log as CSV, matching the column
// layout of the spreadsheet the business used before.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"rentalbackend/internal/booking"
)

var csvHeader = []string{"ID", "Mascot_Name", "Customer_Name", "Customer_Phone", "Start_Date", "End_Date"}

// WriteBookings writes the rental log to w as CSV with a header row.
func WriteBookings(w io.Writer, bookings []booking.Booking) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, b := range bookings {
		record := []string{
			b.ID,
			b.ItemName,
			b.CustomerName,
			b.CustomerPhone,
			b.StartDate.Format(booking.DateFormat),
			b.EndDate.Format(booking.DateFormat),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record for booking %s: %w", b.ID, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV output: %w", err)
	}
	return nil
}
