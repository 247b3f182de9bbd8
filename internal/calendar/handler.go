package calendar

import (
	"net/http"
	"strconv"
	"time"

	"rentalbackend/internal/booking"
	"rentalbackend/internal/catalog"
	"rentalbackend/internal/logger"
	"rentalbackend/internal/middleware"
)

// HTTPHandler serves the monthly availability grid.
type HTTPHandler struct {
	Catalog *catalog.Service
	Store   booking.BookingStore
}

func NewHTTPHandler(cat *catalog.Service, store booking.BookingStore) *HTTPHandler {
	return &HTTPHandler{Catalog: cat, Store: store}
}

type monthResponse struct {
	ItemID   string `json:"item_id"`
	ItemName string `json:"item_name"`
	Year     int    `json:"year"`
	Month    int    `json:"month"`
	Weeks    []Week `json:"weeks"`
}

// MonthHandler serves GET /calendar?item_id=&year=&month=. Year and
// month default to the current month.
func (h *HTTPHandler) MonthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		middleware.WriteAPIError(w, r, http.StatusMethodNotAllowed, "method_not_allowed",
			"Method not allowed", "")
		return
	}

	itemID := r.URL.Query().Get("item_id")
	if itemID == "" {
		middleware.WriteAPIError(w, r, http.StatusBadRequest, "bad_request",
			"item_id query parameter required", "")
		return
	}

	item, ok := h.Catalog.ItemByID(itemID)
	if !ok {
		middleware.WriteAPIError(w, r, http.StatusNotFound, "unknown_item",
			"No such mascot in the catalog", itemID)
		return
	}

	now := time.Now()
	year, month := now.Year(), int(now.Month())

	if y := r.URL.Query().Get("year"); y != "" {
		parsed, err := strconv.Atoi(y)
		if err != nil || parsed < 1 {
			middleware.WriteAPIError(w, r, http.StatusBadRequest, "bad_request", "Invalid year", y)
			return
		}
		year = parsed
	}
	if m := r.URL.Query().Get("month"); m != "" {
		parsed, err := strconv.Atoi(m)
		if err != nil || parsed < 1 || parsed > 12 {
			middleware.WriteAPIError(w, r, http.StatusBadRequest, "bad_request", "Invalid month", m)
			return
		}
		month = parsed
	}

	bookings, err := h.Store.ListByItem(r.Context(), item.ID)
	if err != nil {
		logger.LogHTTPError(r, http.StatusInternalServerError, err)
		middleware.WriteAPIError(w, r, http.StatusInternalServerError, "store_error",
			"Failed to load bookings", "")
		return
	}

	middleware.WriteAPISuccess(w, r, http.StatusOK, monthResponse{
		ItemID:   item.ID,
		ItemName: item.Name,
		Year:     year,
		Month:    month,
		Weeks:    MonthGrid(item, bookings, year, time.Month(month)),
	})
}
