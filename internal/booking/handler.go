package booking

import (
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"rentalbackend/internal/catalog"
	"rentalbackend/internal/logger"
	"rentalbackend/internal/middleware"
)

// HTTPHandler serves the booking endpoints. Catalog and store handles
// are injected; the handler owns no state of its own.
type HTTPHandler struct {
	Catalog  *catalog.Service
	Store    BookingStore
	validate *validator.Validate
}

func NewHTTPHandler(cat *catalog.Service, store BookingStore) *HTTPHandler {
	return &HTTPHandler{
		Catalog:  cat,
		Store:    store,
		validate: validator.New(),
	}
}

// submitRequest is the wire shape of a booking submission. Customer name
// is deliberately not validator-required: the engine owns that rule and
// reports it as a typed rejection rather than a malformed request.
type submitRequest struct {
	ItemID        string `json:"item_id" validate:"required"`
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone" validate:"omitempty,max=32"`
	StartDate     string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate       string `json:"end_date" validate:"required,datetime=2006-01-02"`
}

type submitResponse struct {
	Booking  *Booking `json:"booking"`
	Occupied int      `json:"occupied"` // units in use for the range, including this booking
	Total    int      `json:"total"`
}

// BookingsHandler serves GET (list) and POST (submit) on /bookings.
func (h *HTTPHandler) BookingsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listBookings(w, r)
	case http.MethodPost:
		h.submitBooking(w, r)
	default:
		middleware.WriteAPIError(w, r, http.StatusMethodNotAllowed, "method_not_allowed",
			"Method not allowed", "")
	}
}

func (h *HTTPHandler) listBookings(w http.ResponseWriter, r *http.Request) {
	var (
		bookings []Booking
		err      error
	)

	if itemID := r.URL.Query().Get("item_id"); itemID != "" {
		bookings, err = h.Store.ListByItem(r.Context(), itemID)
	} else {
		bookings, err = h.Store.ListAll(r.Context())
	}
	if err != nil {
		logger.LogHTTPError(r, http.StatusInternalServerError, err)
		middleware.WriteAPIError(w, r, http.StatusInternalServerError, "store_error",
			"Failed to load bookings", "")
		return
	}

	if bookings == nil {
		bookings = []Booking{}
	}
	middleware.WriteAPISuccess(w, r, http.StatusOK, bookings)
}

func (h *HTTPHandler) submitBooking(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := middleware.ParseJSONRequest(r, &req); err != nil {
		logger.LogHTTPError(r, http.StatusBadRequest, err)
		middleware.WriteAPIError(w, r, http.StatusBadRequest, "bad_request",
			"Invalid booking submission", err.Error())
		return
	}

	if err := h.validate.Struct(req); err != nil {
		logger.LogHTTPError(r, http.StatusBadRequest, err)
		middleware.WriteAPIError(w, r, http.StatusBadRequest, "bad_request",
			"Invalid booking submission", err.Error())
		return
	}

	item, ok := h.Catalog.ItemByID(req.ItemID)
	if !ok {
		middleware.WriteAPIError(w, r, http.StatusNotFound, "unknown_item",
			"No such mascot in the catalog", req.ItemID)
		return
	}

	// Dates already passed the datetime tag; parse cannot fail here.
	start, _ := ParseDate(req.StartDate)
	end, _ := ParseDate(req.EndDate)

	booked, rejection, err := Admit(r.Context(), h.Store, item, Request{
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		StartDate:     start,
		EndDate:       end,
	})
	if err != nil {
		logger.LogHTTPError(r, http.StatusInternalServerError, err)
		middleware.WriteAPIError(w, r, http.StatusInternalServerError, "store_error",
			"Failed to store booking", "")
		return
	}
	if rejection != nil {
		status := http.StatusBadRequest
		if rejection.Reason == ReasonNoAvailability {
			status = http.StatusConflict
		}
		middleware.WriteAPIError(w, r, status, string(rejection.Reason), rejection.Message(), "")
		return
	}

	occupied := 0
	if snapshot, err := h.Store.ListByItem(r.Context(), item.ID); err == nil {
		occupied = CountOverlapping(snapshot, item, booked.StartDate, booked.EndDate)
	}

	middleware.WriteAPISuccess(w, r, http.StatusCreated, submitResponse{
		Booking:  booked,
		Occupied: occupied,
		Total:    item.Quantity,
	})
}

// BookingByIDHandler serves DELETE on /bookings/{id}.
func (h *HTTPHandler) BookingByIDHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		middleware.WriteAPIError(w, r, http.StatusMethodNotAllowed, "method_not_allowed",
			"Method not allowed", "")
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/bookings/")
	if id == "" || strings.Contains(id, "/") {
		middleware.WriteAPIError(w, r, http.StatusBadRequest, "bad_request",
			"Booking ID required", "")
		return
	}

	deleted, err := h.Store.DeleteByID(r.Context(), id)
	if err != nil {
		logger.LogHTTPError(r, http.StatusInternalServerError, err)
		middleware.WriteAPIError(w, r, http.StatusInternalServerError, "store_error",
			"Failed to delete booking", "")
		return
	}
	if !deleted {
		middleware.WriteAPIError(w, r, http.StatusNotFound, "not_found",
			"No booking with that ID", id)
		return
	}

	logger.LogInfo("Booking %s deleted", id)
	middleware.WriteAPISuccess(w, r, http.StatusOK, map[string]string{"deleted": id})
}
