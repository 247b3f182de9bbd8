package data

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"rentalbackend/internal/logger"
)

// Database connection pool configuration
const (
	maxOpenConns    = 25
	maxIdleConns    = 5
	connMaxLifetime = time.Hour
	connMaxIdleTime = time.Minute * 15
	queryTimeout    = time.Second * 30
)

// Open opens the SQLite database with connection pooling and retry.
//
// The DSN requests immediate transactions so that a write transaction
// holds the database write lock from BEGIN onward. The admission path
// counts overlapping bookings and inserts inside one such transaction,
// which is what makes the capacity check atomic.
func Open(path string) (*sql.DB, error) {
	// busy_timeout and journal_mode go in the DSN so every pooled
	// connection gets them, not just the one that ran a PRAGMA.
	dsn := fmt.Sprintf("file:%s?_txlock=immediate&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)", path)

	var db *sql.DB
	var err error

	const maxRetries = 3
	for attempt := 1; attempt <= maxRetries; attempt++ {
		db, err = sql.Open("sqlite", dsn)
		if err != nil {
			logger.LogWarn("Database connection attempt %d failed: %v", attempt, err)
			if attempt < maxRetries {
				time.Sleep(time.Duration(attempt) * time.Second)
				continue
			}
			return nil, fmt.Errorf("failed to open database after %d attempts: %w", maxRetries, err)
		}

		db.SetMaxOpenConns(maxOpenConns)
		db.SetMaxIdleConns(maxIdleConns)
		db.SetConnMaxLifetime(connMaxLifetime)
		db.SetConnMaxIdleTime(connMaxIdleTime)

		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		err = db.PingContext(ctx)
		cancel()

		if err != nil {
			logger.LogWarn("Database ping attempt %d failed: %v", attempt, err)
			db.Close()
			if attempt < maxRetries {
				time.Sleep(time.Duration(attempt) * time.Second)
				continue
			}
			return nil, fmt.Errorf("failed to ping database after %d attempts: %w", maxRetries, err)
		}

		if err := enablePragmas(db); err != nil {
			logger.LogWarn("Failed to enable some database optimizations: %v", err)
			// Pragma failures are not fatal.
		}

		logger.LogInfo("Database connection established successfully (attempt %d)", attempt)
		return db, nil
	}

	return nil, fmt.Errorf("failed to initialize database after %d attempts", maxRetries)
}

func enablePragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA synchronous = NORMAL",
		"PRAGMA cache_size = -64000",
		"PRAGMA temp_store = MEMORY",
	}

	var lastErr error
	for _, pragma := range pragmas {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
		_, err := db.ExecContext(ctx, pragma)
		cancel()

		if err != nil {
			logger.LogWarn("Failed to execute %s: %v", pragma, err)
			lastErr = err
		}
	}
	return lastErr
}

const bookingsTableSchema = `
	CREATE TABLE IF NOT EXISTS bookings (
		id TEXT PRIMARY KEY,
		item_id TEXT NOT NULL DEFAULT '',
		item_name TEXT NOT NULL,
		customer_name TEXT NOT NULL,
		customer_phone TEXT NOT NULL DEFAULT '',
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_bookings_item_id ON bookings(item_id);
	CREATE INDEX IF NOT EXISTS idx_bookings_item_name ON bookings(item_name);
	CREATE INDEX IF NOT EXISTS idx_bookings_start_date ON bookings(start_date);`

// CreateTables creates the bookings table and its indexes.
func CreateTables(db *sql.DB) error {
	if _, err := db.Exec(bookingsTableSchema); err != nil {
		return fmt.Errorf("failed to create bookings table: %w", err)
	}
	return nil
}
