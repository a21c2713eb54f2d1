package app

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	DefaultHeaderRow       = 1
	DefaultBatchSize       = 500
	DefaultCredentialsFile = "credentials.json"
	DefaultListenAddr      = ":8080"
)

// Config holds application configuration
type Config struct {
	SpreadsheetID      string
	SheetName          string
	CredentialsFile    string
	HeaderRow          int
	BatchSize          int
	CreateMissingSheet bool
	ListenAddr         string
}

// SetupEnvironment loads .env file and configures zerolog output and log level.
func SetupEnvironment() {
	// Load .env file if it exists
	err := godotenv.Load()

	// Configure logging
	if os.Getenv("ENV") == "production" {
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		log.Logger = log.Output(os.Stderr)
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	levelStr := strings.ToLower(os.Getenv("LOGLEVEL"))
	switch levelStr {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn", "warning":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	case "fatal":
		zerolog.SetGlobalLevel(zerolog.FatalLevel)
	case "panic":
		zerolog.SetGlobalLevel(zerolog.PanicLevel)
	case "disabled":
		zerolog.SetGlobalLevel(zerolog.Disabled)
	case "":
		if os.Getenv("ENV") == "production" {
			zerolog.SetGlobalLevel(zerolog.WarnLevel)
		} else {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
		}
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		log.Warn().Msgf("Unknown LOGLEVEL '%s', defaulting to info.", levelStr)
	}

	// wait until now to report on the .env file so we have the chance to set up logging first
	if err == nil {
		log.Debug().Msg("Loaded environment variables from .env file.")
	} else {
		log.Debug().Msg("No .env file found or error loading .env file; proceeding with existing environment variables.")
	}
}

// LoadConfig loads configuration from environment variables.
// Required values are checked by Validate so command line flags can fill them in first.
func LoadConfig() (*Config, error) {
	config := &Config{
		SpreadsheetID:      os.Getenv("SPREADSHEET_ID"),
		SheetName:          os.Getenv("SHEET_NAME"),
		CredentialsFile:    os.Getenv("GOOGLE_CREDENTIALS_FILE"),
		HeaderRow:          DefaultHeaderRow,
		BatchSize:          DefaultBatchSize,
		CreateMissingSheet: true,
		ListenAddr:         os.Getenv("LISTEN_ADDR"),
	}

	if config.CredentialsFile == "" {
		config.CredentialsFile = DefaultCredentialsFile
	}
	if config.ListenAddr == "" {
		config.ListenAddr = DefaultListenAddr
	}

	var err error
	if config.HeaderRow, err = intFromEnv("HEADER_ROW", DefaultHeaderRow); err != nil {
		return nil, err
	}
	if config.BatchSize, err = intFromEnv("BATCH_SIZE", DefaultBatchSize); err != nil {
		return nil, err
	}
	if v := os.Getenv("CREATE_MISSING_SHEET"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("CREATE_MISSING_SHEET must be a boolean, got %q", v)
		}
		config.CreateMissingSheet = b
	}

	return config, nil
}

// Validate checks that the configuration can be used to open a sheet
func (c *Config) Validate() error {
	if c.SpreadsheetID == "" {
		return fmt.Errorf("SPREADSHEET_ID environment variable is required")
	}
	if c.HeaderRow < 1 {
		return fmt.Errorf("header row must be at least 1, got %d", c.HeaderRow)
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("batch size must be at least 1, got %d", c.BatchSize)
	}
	return nil
}

func intFromEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return n, nil
}
