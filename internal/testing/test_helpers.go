// test_helpers.go - shared setup for store and API integration tests
package testing

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"rentalbackend/internal/booking"
	"rentalbackend/internal/calendar"
	"rentalbackend/internal/catalog"
	"rentalbackend/internal/config"
	"rentalbackend/internal/data"
	"rentalbackend/internal/export"
	"rentalbackend/internal/middleware"
)

// TestSuite wires a temp SQLite database, a seeded catalog, and an
// httptest server with the same routes the real server mounts.
type TestSuite struct {
	DB      *sql.DB
	Catalog *catalog.Service
	Repo    *data.BookingRepository
	Server  *httptest.Server
	Client  *http.Client

	testDir string
}

// NewTestSuite creates an isolated suite per test. Cleanup is registered
// automatically.
func NewTestSuite(t *testing.T) *TestSuite {
	t.Helper()

	testDir := filepath.Join(os.TempDir(), fmt.Sprintf("rentaltest_%d_%d",
		time.Now().UnixNano(), os.Getpid()))
	if err := os.MkdirAll(testDir, 0755); err != nil {
		t.Fatalf("Failed to create test directory: %v", err)
	}

	config.LoadCORSConfig()
	config.ConfigurePaths()

	dbPath := filepath.Join(testDir, "rental_log.db")
	db, err := data.Open(dbPath)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := data.CreateTables(db); err != nil {
		t.Fatalf("Failed to create tables: %v", err)
	}

	cat := catalog.NewService()
	if err := cat.LoadItems(seedCatalog()); err != nil {
		t.Fatalf("Failed to load test catalog: %v", err)
	}

	repo := data.NewBookingRepository(db)

	suite := &TestSuite{
		DB:      db,
		Catalog: cat,
		Repo:    repo,
		Client:  &http.Client{Timeout: 30 * time.Second},
		testDir: testDir,
	}
	suite.Server = httptest.NewServer(suite.routes())

	t.Cleanup(func() {
		suite.Server.Close()
		suite.DB.Close()
		time.Sleep(100 * time.Millisecond)
		os.RemoveAll(suite.testDir)
	})

	return suite
}

// routes mirrors the API mux the real server mounts under /api.
func (ts *TestSuite) routes() http.Handler {
	bookingHandler := booking.NewHTTPHandler(ts.Catalog, ts.Repo)
	calendarHandler := calendar.NewHTTPHandler(ts.Catalog, ts.Repo)
	exportHandler := export.NewHTTPHandler(ts.Repo)

	apiMux := http.NewServeMux()
	apiMux.HandleFunc("/catalog", middleware.APIMiddleware(ts.Catalog.CatalogHandler))
	apiMux.HandleFunc("/bookings", middleware.APIMiddleware(bookingHandler.BookingsHandler))
	apiMux.HandleFunc("/bookings/", middleware.APIMiddleware(bookingHandler.BookingByIDHandler))
	apiMux.HandleFunc("/calendar", middleware.APIMiddleware(calendarHandler.MonthHandler))
	apiMux.HandleFunc("/export.csv", middleware.APIMiddleware(exportHandler.ExportHandler))

	mux := http.NewServeMux()
	mux.Handle("/api/", http.StripPrefix("/api", middleware.CORS(apiMux)))
	return mux
}

// seedCatalog matches the scenarios used across the tests: Lion owns a
// single unit, Bear owns two.
func seedCatalog() []catalog.Item {
	kg := 4.5
	return []catalog.Item{
		{ID: "lion-1", Name: "Lion", Size: "L", WeightKg: &kg,
			Quantity: 1, RentPrice: 120, SalePrice: 900, Status: "Available"},
		{ID: "bear-1", Name: "Bear", Size: "XL",
			Quantity: 2, RentPrice: 150, SalePrice: 1100, Status: "Available"},
	}
}

// MustDate parses a YYYY-MM-DD string or fails the test.
func MustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := booking.ParseDate(s)
	if err != nil {
		t.Fatalf("bad test date %q: %v", s, err)
	}
	return d
}

// MakeAPIRequest sends a JSON API request to the test server.
func (ts *TestSuite) MakeAPIRequest(t *testing.T, method, path string, body interface{}) *http.Response {
	t.Helper()

	reqBody := bytes.NewBuffer(nil)
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewBuffer(bodyBytes)
	}

	req, err := http.NewRequest(method, ts.Server.URL+path, reqBody)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := ts.Client.Do(req)
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, path, err)
	}
	return resp
}

// ParseJSONResponse decodes a response body and closes it.
func (ts *TestSuite) ParseJSONResponse(t *testing.T, resp *http.Response, dest interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}

// AssertStatusCode checks the response status.
func (ts *TestSuite) AssertStatusCode(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("Expected status code %d, got %d", expected, resp.StatusCode)
	}
}

// AssertNoError fails the test on a non-nil error.
func (ts *TestSuite) AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
}

// CountBookings returns the number of rows in the bookings table.
func (ts *TestSuite) CountBookings(t *testing.T) int {
	t.Helper()
	var count int
	if err := ts.DB.QueryRow(`SELECT COUNT(*) FROM bookings`).Scan(&count); err != nil {
		t.Fatalf("failed to count bookings: %v", err)
	}
	return count
}
