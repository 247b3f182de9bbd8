package export

import (
	"fmt"
	"net/http"

	"rentalbackend/internal/booking"
	"rentalbackend/internal/config"
	"rentalbackend/internal/logger"
	"rentalbackend/internal/middleware"
)

// HTTPHandler serves the CSV download of the rental log.
type HTTPHandler struct {
	Store booking.BookingStore
}

func NewHTTPHandler(store booking.BookingStore) *HTTPHandler {
	return &HTTPHandler{Store: store}
}

// ExportHandler serves GET /export.csv.
func (h *HTTPHandler) ExportHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		middleware.WriteAPIError(w, r, http.StatusMethodNotAllowed, "method_not_allowed",
			"Method not allowed", "")
		return
	}

	bookings, err := h.Store.ListAll(r.Context())
	if err != nil {
		logger.LogHTTPError(r, http.StatusInternalServerError, err)
		middleware.WriteAPIError(w, r, http.StatusInternalServerError, "store_error",
			"Failed to load bookings", "")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", config.ExportFileName()))

	if err := WriteBookings(w, bookings); err != nil {
		// Headers are already out; all we can do is log.
		logger.LogError("Failed to stream CSV export: %v", err)
		return
	}

	logger.LogInfo("Exported %d bookings as CSV", len(bookings))
}
