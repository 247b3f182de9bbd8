// internal/config/config.go
package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"rentalbackend/internal/logger"
)

var (
	baseDir        string
	dataDirectory  string
	logsDirectory  string
	databasePath   string
	catalogPath    string
	allowedOrigin  string
	logFileFormat  string
	exportFileName string
)

// GetEnvBasedSetting resolves a setting name suffixed by the current
// ENVIRONMENT (dev or prod), e.g. DATA_DIRECTORY_DEV.
func GetEnvBasedSetting(base string) string {
	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "dev"
	}
	return os.Getenv(fmt.Sprintf("%s_%s", base, strings.ToUpper(env)))
}

// LogCurrentEnvironment reports which environment the server runs in.
func LogCurrentEnvironment() {
	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "dev"
	}

	if env == "dev" {
		logger.LogInfo("Running in development environment")
	} else {
		logger.LogInfo("Running in production environment")
	}
}

// LoadEnv reads the .env file if present; system environment wins otherwise.
func LoadEnv() {
	wd, err := os.Getwd()
	if err != nil {
		log.Printf("Could not determine working directory: %v", err)
	}

	if err := godotenv.Load(".env"); err != nil {
		log.Printf("No .env file found in %s. Using system environment variables.", wd)
	} else {
		log.Printf("Loaded environment variables from .env file in %s", wd)
	}
}

// LoggerConfig returns a logger.Config populated from the environment.
func LoggerConfig() logger.Config {
	logDir := GetEnvBasedSetting("LOGS_DIRECTORY")
	if logDir == "" {
		logDir = "./logs"
	}

	logFormat := GetEnvBasedSetting("LOG_FILE_FORMAT")
	if logFormat == "" {
		logFormat = "server_%s.log"
	}

	timezone := os.Getenv("TIME_ZONE")
	if timezone == "" {
		timezone = "Local"
	}

	return logger.Config{
		LogsDirectory: logDir,
		LogFileFormat: logFormat,
		TimeZone:      timezone,
	}
}

// ConfigurePaths sets up folders and derived file paths.
func ConfigurePaths() {
	wd, err := os.Getwd()
	if err != nil {
		logger.LogFatal("Failed to get working directory: %v", err)
	}
	baseDir = wd

	if dir := GetEnvBasedSetting("DATA_DIRECTORY"); dir != "" {
		dataDirectory = dir
	} else {
		dataDirectory = filepath.Join(baseDir, "data")
	}

	if dir := GetEnvBasedSetting("LOGS_DIRECTORY"); dir != "" {
		logsDirectory = dir
	} else {
		logsDirectory = filepath.Join(baseDir, "logs")
	}

	if path := GetEnvBasedSetting("DATABASE_PATH"); path != "" {
		databasePath = path
	} else {
		databasePath = filepath.Join(dataDirectory, "rental_log.db")
	}

	if path := GetEnvBasedSetting("CATALOG_PATH"); path != "" {
		catalogPath = path
	} else {
		catalogPath = filepath.Join(dataDirectory, "mascot_inventory.json")
	}

	exportFileName = os.Getenv("EXPORT_FILE_NAME")
	if exportFileName == "" {
		exportFileName = "rental_log.csv"
	}

	logFileFormat = filepath.Join(logsDirectory, "server_%s.log")
}

// LoadCORSConfig loads the allowed origin for browser clients.
func LoadCORSConfig() {
	allowedOrigin = GetEnvBasedSetting("ALLOWED_ORIGIN")
	if allowedOrigin == "" {
		allowedOrigin = "*"
		logger.LogWarn("ALLOWED_ORIGIN not set, using '*' (allow all origins)")
	} else {
		logger.LogInfo("Allowed Origin: %s", allowedOrigin)
	}
}

//
// --- Getters (exported) ---
//

func DataDirectory() string {
	return dataDirectory
}

func LogsDirectory() string {
	return logsDirectory
}

func DatabasePath() string {
	return databasePath
}

func CatalogPath() string {
	return catalogPath
}

func AllowedOrigin() string {
	return allowedOrigin
}

func ExportFileName() string {
	return exportFileName
}
