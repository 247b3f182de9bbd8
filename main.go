// main.go
package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"rentalbackend/internal/booking"
	"rentalbackend/internal/calendar"
	"rentalbackend/internal/catalog"
	"rentalbackend/internal/config"
	"rentalbackend/internal/data"
	"rentalbackend/internal/export"
	"rentalbackend/internal/logger"
	"rentalbackend/internal/middleware"
)

type App struct {
	addr          string
	mux           *http.ServeMux
	connections   sync.WaitGroup
	totalRequests int64
}

func main() {
	// Step 1: configuration first
	config.LoadEnv()
	config.ConfigurePaths()

	// Step 2: logging
	if err := logger.Setup(config.LoggerConfig()); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	logger.LogInfo("Environment and paths loaded. Logger ready.")

	config.LoadCORSConfig()
	config.LogCurrentEnvironment()

	// Step 3: database
	db, err := data.Open(config.DatabasePath())
	if err != nil {
		logger.LogFatal("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := data.CreateTables(db); err != nil {
		logger.LogFatal("Failed to create tables: %v", err)
	}

	// Step 4: catalog
	cat := catalog.NewService()
	if err := cat.LoadFromFile(config.CatalogPath()); err != nil {
		logger.LogFatal("Failed to load mascot catalog: %v", err)
	}

	repo := data.NewBookingRepository(db)

	// Old rental logs reference mascots by name only; fix them up once.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := repo.BackfillItemIDs(ctx, cat); err != nil {
		logger.LogWarn("Legacy booking backfill failed: %v", err)
	}
	cancel()

	// Step 5: app
	app := &App{
		addr: serverAddress(),
		mux:  routes(db, cat, repo),
	}

	// Step 6: run server
	app.Run()
}

// serverAddress builds the server address from environment variables
func serverAddress() string {
	host := os.Getenv("SERVER_HOST")
	if host == "" {
		host = "127.0.0.1"
	}
	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "5062"
	}
	return host + ":" + port
}

// routes sets up all API routes
func routes(db *sql.DB, cat *catalog.Service, repo *data.BookingRepository) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		logger.LogHTTPRequest(r)
		if err := db.PingContext(r.Context()); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	bookingHandler := booking.NewHTTPHandler(cat, repo)
	calendarHandler := calendar.NewHTTPHandler(cat, repo)
	exportHandler := export.NewHTTPHandler(repo)

	apiMux := http.NewServeMux()
	apiMux.HandleFunc("/catalog", middleware.APIMiddleware(cat.CatalogHandler))
	apiMux.HandleFunc("/bookings", middleware.APIMiddleware(bookingHandler.BookingsHandler))
	apiMux.HandleFunc("/bookings/", middleware.APIMiddleware(bookingHandler.BookingByIDHandler))
	apiMux.HandleFunc("/calendar", middleware.APIMiddleware(calendarHandler.MonthHandler))
	apiMux.HandleFunc("/export.csv", middleware.APIMiddleware(exportHandler.ExportHandler))

	mux.Handle("/api/", http.StripPrefix("/api", middleware.CORS(apiMux)))

	return mux
}

// Run starts the HTTP server and blocks until shutdown completes.
func (a *App) Run() {
	server := &http.Server{
		Addr:         a.addr,
		Handler:      a.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.LogInfo("Starting server on %s", a.addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.LogFatal("Server failed: %v", err)
		}
	}()

	<-stop
	logger.LogInfo("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.LogError("Server shutdown error: %v", err)
	}

	logger.LogInfo("Waiting for active connections to finish...")
	a.connections.Wait()
	logger.LogInfo("All connections closed. Total requests handled: %d", atomic.LoadInt64(&a.totalRequests))
	logger.LogInfo("Server shut down gracefully")
}

// Handler assembles all middleware around the main mux
func (a *App) Handler() http.Handler {
	var handler http.Handler = a.mux

	handler = a.trackConnections(handler)
	handler = withTimeout(handler, 15*time.Second)

	return handler
}

// Middleware: timeout handler
func withTimeout(h http.Handler, timeout time.Duration) http.Handler {
	return http.TimeoutHandler(h, timeout, "Request timed out")
}

// Middleware: track active connections and total requests
func (a *App) trackConnections(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a.connections.Add(1)
		atomic.AddInt64(&a.totalRequests, 1)
		defer a.connections.Done()

		h.ServeHTTP(w, r)
	})
}
