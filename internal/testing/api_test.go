// api_test.go - end-to-end flows over the HTTP surface
package testing

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"rentalbackend/internal/booking"
	"rentalbackend/internal/calendar"
	"rentalbackend/internal/catalog"
)

type apiEnvelope struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data"`
	RequestID string          `json:"request_id"`
}

type apiErrorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Details   string `json:"details"`
	RequestID string `json:"request_id"`
}

type submitResult struct {
	Booking  booking.Booking `json:"booking"`
	Occupied int             `json:"occupied"`
	Total    int             `json:"total"`
}

func submitBody(itemID, name, start, end string) map[string]string {
	return map[string]string{
		"item_id":       itemID,
		"customer_name": name,
		"start_date":    start,
		"end_date":      end,
	}
}

func TestCatalogEndpoint(t *testing.T) {
	suite := NewTestSuite(t)

	resp := suite.MakeAPIRequest(t, http.MethodGet, "/api/catalog", nil)
	suite.AssertStatusCode(t, resp, http.StatusOK)

	var envelope apiEnvelope
	suite.ParseJSONResponse(t, resp, &envelope)
	if !envelope.Success {
		t.Fatal("expected success envelope")
	}
	if envelope.RequestID == "" {
		t.Error("expected a request ID")
	}

	var items []catalog.Item
	if err := json.Unmarshal(envelope.Data, &items); err != nil {
		t.Fatalf("failed to decode catalog: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 catalog items, got %d", len(items))
	}
	if items[0].Name != "Bear" {
		t.Errorf("expected Bear first (name sort), got %s", items[0].Name)
	}
}

func TestBookingFlow(t *testing.T) {
	suite := NewTestSuite(t)

	var firstID string

	t.Run("SubmitAdmitted", func(t *testing.T) {
		resp := suite.MakeAPIRequest(t, http.MethodPost, "/api/bookings",
			submitBody("lion-1", "Dana", "2025-07-01", "2025-07-03"))
		suite.AssertStatusCode(t, resp, http.StatusCreated)

		var envelope apiEnvelope
		suite.ParseJSONResponse(t, resp, &envelope)

		var result submitResult
		if err := json.Unmarshal(envelope.Data, &result); err != nil {
			t.Fatalf("failed to decode submit result: %v", err)
		}
		if result.Booking.ID == "" {
			t.Error("expected assigned booking ID")
		}
		if result.Occupied != 1 || result.Total != 1 {
			t.Errorf("expected 1 of 1 after admission, got %d of %d", result.Occupied, result.Total)
		}
		firstID = result.Booking.ID
	})

	t.Run("TouchingDatesConflict", func(t *testing.T) {
		resp := suite.MakeAPIRequest(t, http.MethodPost, "/api/bookings",
			submitBody("lion-1", "Lee", "2025-07-03", "2025-07-05"))
		suite.AssertStatusCode(t, resp, http.StatusConflict)

		var body apiErrorBody
		suite.ParseJSONResponse(t, resp, &body)
		if body.Code != string(booking.ReasonNoAvailability) {
			t.Errorf("expected no_availability code, got %q", body.Code)
		}
		if !strings.Contains(body.Message, "1 of 1") {
			t.Errorf("expected occupancy counts in message, got %q", body.Message)
		}
	})

	t.Run("ClearDatesAdmitted", func(t *testing.T) {
		resp := suite.MakeAPIRequest(t, http.MethodPost, "/api/bookings",
			submitBody("lion-1", "Lee", "2025-07-04", "2025-07-06"))
		suite.AssertStatusCode(t, resp, http.StatusCreated)
		resp.Body.Close()
	})

	t.Run("ListBookings", func(t *testing.T) {
		resp := suite.MakeAPIRequest(t, http.MethodGet, "/api/bookings?item_id=lion-1", nil)
		suite.AssertStatusCode(t, resp, http.StatusOK)

		var envelope apiEnvelope
		suite.ParseJSONResponse(t, resp, &envelope)

		var bookings []booking.Booking
		if err := json.Unmarshal(envelope.Data, &bookings); err != nil {
			t.Fatalf("failed to decode bookings: %v", err)
		}
		if len(bookings) != 2 {
			t.Fatalf("expected 2 lion bookings, got %d", len(bookings))
		}
	})

	t.Run("DeleteBooking", func(t *testing.T) {
		resp := suite.MakeAPIRequest(t, http.MethodDelete, "/api/bookings/"+firstID, nil)
		suite.AssertStatusCode(t, resp, http.StatusOK)
		resp.Body.Close()

		resp = suite.MakeAPIRequest(t, http.MethodDelete, "/api/bookings/"+firstID, nil)
		suite.AssertStatusCode(t, resp, http.StatusNotFound)

		var body apiErrorBody
		suite.ParseJSONResponse(t, resp, &body)
		if body.Code != "not_found" {
			t.Errorf("expected not_found code, got %q", body.Code)
		}
	})
}

func TestBookingValidation(t *testing.T) {
	suite := NewTestSuite(t)

	t.Run("EmptyCustomerName", func(t *testing.T) {
		before := suite.CountBookings(t)

		resp := suite.MakeAPIRequest(t, http.MethodPost, "/api/bookings",
			submitBody("lion-1", "", "2025-07-01", "2025-07-03"))
		suite.AssertStatusCode(t, resp, http.StatusBadRequest)

		var body apiErrorBody
		suite.ParseJSONResponse(t, resp, &body)
		if body.Code != string(booking.ReasonMissingCustomer) {
			t.Errorf("expected missing_customer code, got %q", body.Code)
		}
		if suite.CountBookings(t) != before {
			t.Error("store must stay untouched on validation rejection")
		}
	})

	t.Run("EndBeforeStart", func(t *testing.T) {
		before := suite.CountBookings(t)

		resp := suite.MakeAPIRequest(t, http.MethodPost, "/api/bookings",
			submitBody("lion-1", "Dana", "2025-07-05", "2025-07-01"))
		suite.AssertStatusCode(t, resp, http.StatusBadRequest)

		var body apiErrorBody
		suite.ParseJSONResponse(t, resp, &body)
		if body.Code != string(booking.ReasonInvalidDates) {
			t.Errorf("expected invalid_dates code, got %q", body.Code)
		}
		if suite.CountBookings(t) != before {
			t.Error("store must stay untouched on validation rejection")
		}
	})

	t.Run("MalformedDate", func(t *testing.T) {
		resp := suite.MakeAPIRequest(t, http.MethodPost, "/api/bookings",
			submitBody("lion-1", "Dana", "07/01/2025", "2025-07-03"))
		suite.AssertStatusCode(t, resp, http.StatusBadRequest)

		var body apiErrorBody
		suite.ParseJSONResponse(t, resp, &body)
		if body.Code != "bad_request" {
			t.Errorf("expected bad_request code, got %q", body.Code)
		}
	})

	t.Run("UnknownItem", func(t *testing.T) {
		resp := suite.MakeAPIRequest(t, http.MethodPost, "/api/bookings",
			submitBody("ghost-9", "Dana", "2025-07-01", "2025-07-03"))
		suite.AssertStatusCode(t, resp, http.StatusNotFound)

		var body apiErrorBody
		suite.ParseJSONResponse(t, resp, &body)
		if body.Code != "unknown_item" {
			t.Errorf("expected unknown_item code, got %q", body.Code)
		}
	})
}

func TestCalendarEndpoint(t *testing.T) {
	suite := NewTestSuite(t)

	resp := suite.MakeAPIRequest(t, http.MethodPost, "/api/bookings",
		submitBody("lion-1", "Dana", "2025-07-01", "2025-07-03"))
	suite.AssertStatusCode(t, resp, http.StatusCreated)
	resp.Body.Close()

	resp = suite.MakeAPIRequest(t, http.MethodGet, "/api/calendar?item_id=lion-1&year=2025&month=7", nil)
	suite.AssertStatusCode(t, resp, http.StatusOK)

	var envelope apiEnvelope
	suite.ParseJSONResponse(t, resp, &envelope)

	var month struct {
		ItemID   string          `json:"item_id"`
		ItemName string          `json:"item_name"`
		Year     int             `json:"year"`
		Month    int             `json:"month"`
		Weeks    []calendar.Week `json:"weeks"`
	}
	if err := json.Unmarshal(envelope.Data, &month); err != nil {
		t.Fatalf("failed to decode calendar: %v", err)
	}

	if month.ItemName != "Lion" || month.Year != 2025 || month.Month != 7 {
		t.Errorf("unexpected month header: %+v", month)
	}
	if len(month.Weeks) != 5 {
		t.Fatalf("expected 5 week rows for July 2025, got %d", len(month.Weeks))
	}

	// July 1st sits in the Tuesday slot of the first row and is booked out.
	cell := month.Weeks[0][1]
	if cell.Day != 1 || cell.Status != "Fully booked" {
		t.Errorf("unexpected July 1st cell: %+v", cell)
	}

	// Missing item_id is a client error.
	resp = suite.MakeAPIRequest(t, http.MethodGet, "/api/calendar", nil)
	suite.AssertStatusCode(t, resp, http.StatusBadRequest)
	resp.Body.Close()
}

func TestExportEndpoint(t *testing.T) {
	suite := NewTestSuite(t)

	resp := suite.MakeAPIRequest(t, http.MethodPost, "/api/bookings",
		submitBody("bear-1", "Lee", "2025-08-01", "2025-08-05"))
	suite.AssertStatusCode(t, resp, http.StatusCreated)
	resp.Body.Close()

	resp = suite.MakeAPIRequest(t, http.MethodGet, "/api/export.csv", nil)
	suite.AssertStatusCode(t, resp, http.StatusOK)
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "text/csv") {
		t.Errorf("expected text/csv content type, got %q", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "attachment") {
		t.Errorf("expected attachment disposition, got %q", cd)
	}

	body, err := io.ReadAll(resp.Body)
	suite.AssertNoError(t, err)

	records, err := csv.NewReader(strings.NewReader(string(body))).ReadAll()
	suite.AssertNoError(t, err)
	if len(records) != 2 {
		t.Fatalf("expected header + 1 row, got %d records", len(records))
	}
	if records[1][1] != "Bear" || records[1][4] != "2025-08-01" {
		t.Errorf("unexpected CSV row: %v", records[1])
	}
}

func TestMethodGuards(t *testing.T) {
	suite := NewTestSuite(t)

	resp := suite.MakeAPIRequest(t, http.MethodDelete, "/api/catalog", nil)
	suite.AssertStatusCode(t, resp, http.StatusMethodNotAllowed)
	resp.Body.Close()

	resp = suite.MakeAPIRequest(t, http.MethodPost, "/api/export.csv", nil)
	suite.AssertStatusCode(t, resp, http.StatusMethodNotAllowed)
	resp.Body.Close()

	resp = suite.MakeAPIRequest(t, http.MethodGet, "/api/bookings/", nil)
	suite.AssertStatusCode(t, resp, http.StatusMethodNotAllowed)
	resp.Body.Close()
}
