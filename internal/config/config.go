package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Store backends.
const (
	BackendSheets = "sheets"
	BackendMemory = "memory"
)

// Config holds all runtime configuration for the trading app.
type Config struct {
	Port      int
	LogLevel  string
	LogFormat string
	BaseURL   string

	StoreBackend    string
	SpreadsheetID   string
	AuthCredentials string
	TokensDir       string
	MemorySeed      string

	// Named ranges of the ledger tables.
	UsersRange       string
	UnitsRange       string
	AllocationsRange string
	TradesRange      string
	BalancesRange    string

	AdminUser     string
	AdminPassword string

	TimeZone              *time.Location
	SheetsTimeout         time.Duration
	BalanceRecordInterval time.Duration

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// LoadDotEnv loads variables from the given files (default ".env") into the
// environment without overriding variables that are already set. Missing
// files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Load reads configuration from environment variables, applies defaults,
// and validates values. It returns an error for any invalid value.
func Load() (*Config, error) {
	port, err := getInt("PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	logLevel := getStr("LOG_LEVEL", "info")
	if !isValidLogLevel(logLevel) {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %q, must be one of: debug, info, warn, error", logLevel)
	}

	logFormat := getStr("LOG_FORMAT", "json")
	if logFormat != "json" && logFormat != "text" {
		return nil, fmt.Errorf("invalid LOG_FORMAT: %q, must be one of: json, text", logFormat)
	}

	backend := getStr("STORE_BACKEND", BackendSheets)
	spreadsheetID := getStr("SPREADSHEET_ID", "")
	authCredentials := getStr("AUTH_CREDENTIALS", "")
	switch backend {
	case BackendSheets:
		if spreadsheetID == "" {
			return nil, errors.New("SPREADSHEET_ID is required for the sheets backend")
		}
		if authCredentials == "" {
			return nil, errors.New("AUTH_CREDENTIALS is required for the sheets backend")
		}
	case BackendMemory:
		if spreadsheetID == "" {
			spreadsheetID = "memory"
		}
	default:
		return nil, fmt.Errorf("invalid STORE_BACKEND: %q, must be one of: sheets, memory", backend)
	}

	adminPassword := getStr("ADMIN_PASSWORD", "admin")
	adminUser := getStr("ADMIN_USER", "admin")

	tz, err := time.LoadLocation(getStr("TIME_ZONE", "Local"))
	if err != nil {
		return nil, fmt.Errorf("invalid TIME_ZONE: %w", err)
	}

	sheetsTimeout, err := getDuration("SHEETS_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid SHEETS_TIMEOUT: %w", err)
	}

	recordInterval, err := getDuration("BALANCE_RECORD_INTERVAL", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid BALANCE_RECORD_INTERVAL: %w", err)
	}
	if recordInterval < 0 {
		return nil, fmt.Errorf("invalid BALANCE_RECORD_INTERVAL: %v must not be negative", recordInterval)
	}

	readTimeout, err := getDuration("READ_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid READ_TIMEOUT: %w", err)
	}

	writeTimeout, err := getDuration("WRITE_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid WRITE_TIMEOUT: %w", err)
	}

	idleTimeout, err := getDuration("IDLE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid IDLE_TIMEOUT: %w", err)
	}

	shutdownTimeout, err := getDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
	}

	return &Config{
		Port:                  port,
		LogLevel:              logLevel,
		LogFormat:             logFormat,
		BaseURL:               getStr("BASE_URL", fmt.Sprintf("http://localhost:%d", port)),
		StoreBackend:          backend,
		SpreadsheetID:         spreadsheetID,
		AuthCredentials:       authCredentials,
		TokensDir:             getStr("TOKENS_DIR", "tokens"),
		MemorySeed:            getStr("MEMORY_SEED", ""),
		UsersRange:            getStr("USERS_RANGE", "UsersRange"),
		UnitsRange:            getStr("UNITS_RANGE", "GoodsAndServicesRange"),
		AllocationsRange:      getStr("ALLOCATIONS_RANGE", "AllocationsRange"),
		TradesRange:           getStr("TRADES_RANGE", "TradesRange"),
		BalancesRange:         getStr("BALANCES_RANGE", "BalancesRange"),
		AdminUser:             adminUser,
		AdminPassword:         adminPassword,
		TimeZone:              tz,
		SheetsTimeout:         sheetsTimeout,
		BalanceRecordInterval: recordInterval,
		ReadTimeout:           readTimeout,
		WriteTimeout:          writeTimeout,
		IdleTimeout:           idleTimeout,
		ShutdownTimeout:       shutdownTimeout,
	}, nil
}

func getStr(key, defaultVal string) string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return v
}

func getInt(key string, defaultVal int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return strconv.Atoi(v)
}

func getDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return time.ParseDuration(v)
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}
