package app

import (
	"os"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

var configEnvKeys = []string{
	"SPREADSHEET_ID",
	"SHEET_NAME",
	"GOOGLE_CREDENTIALS_FILE",
	"HEADER_ROW",
	"BATCH_SIZE",
	"CREATE_MISSING_SHEET",
	"LISTEN_ADDR",
}

func TestLoadConfig(t *testing.T) {
	// Save original environment
	original := make(map[string]string)
	for _, key := range configEnvKeys {
		original[key] = os.Getenv(key)
	}

	// Cleanup function
	defer func() {
		for key, value := range original {
			setOrUnset(key, value)
		}
	}()

	resetEnv := func() {
		for _, key := range configEnvKeys {
			os.Unsetenv(key)
		}
	}

	t.Run("ValidConfiguration", func(t *testing.T) {
		resetEnv()
		os.Setenv("SPREADSHEET_ID", "test_spreadsheet_id")
		os.Setenv("SHEET_NAME", "Orders")
		os.Setenv("GOOGLE_CREDENTIALS_FILE", "test_credentials.json")
		os.Setenv("HEADER_ROW", "3")
		os.Setenv("BATCH_SIZE", "250")
		os.Setenv("CREATE_MISSING_SHEET", "false")
		os.Setenv("LISTEN_ADDR", ":9090")

		config, err := LoadConfig()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}

		if config.SpreadsheetID != "test_spreadsheet_id" {
			t.Errorf("Expected SpreadsheetID to be 'test_spreadsheet_id', got '%s'", config.SpreadsheetID)
		}
		if config.SheetName != "Orders" {
			t.Errorf("Expected SheetName to be 'Orders', got '%s'", config.SheetName)
		}
		if config.CredentialsFile != "test_credentials.json" {
			t.Errorf("Expected CredentialsFile to be 'test_credentials.json', got '%s'", config.CredentialsFile)
		}
		if config.HeaderRow != 3 {
			t.Errorf("Expected HeaderRow 3, got %d", config.HeaderRow)
		}
		if config.BatchSize != 250 {
			t.Errorf("Expected BatchSize 250, got %d", config.BatchSize)
		}
		if config.CreateMissingSheet {
			t.Error("Expected CreateMissingSheet to be false")
		}
		if config.ListenAddr != ":9090" {
			t.Errorf("Expected ListenAddr ':9090', got '%s'", config.ListenAddr)
		}
		if err := config.Validate(); err != nil {
			t.Errorf("Expected valid config, got %v", err)
		}
	})

	t.Run("Defaults", func(t *testing.T) {
		resetEnv()

		config, err := LoadConfig()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}

		if config.CredentialsFile != "credentials.json" {
			t.Errorf("Expected CredentialsFile to default to 'credentials.json', got '%s'", config.CredentialsFile)
		}
		if config.HeaderRow != 1 {
			t.Errorf("Expected HeaderRow to default to 1, got %d", config.HeaderRow)
		}
		if config.BatchSize != 500 {
			t.Errorf("Expected BatchSize to default to 500, got %d", config.BatchSize)
		}
		if !config.CreateMissingSheet {
			t.Error("Expected CreateMissingSheet to default to true")
		}
		if config.ListenAddr != ":8080" {
			t.Errorf("Expected ListenAddr to default to ':8080', got '%s'", config.ListenAddr)
		}
	})

	t.Run("MissingSpreadsheetID", func(t *testing.T) {
		resetEnv()

		config, err := LoadConfig()
		if err != nil {
			t.Fatalf("Expected no error from LoadConfig, got %v", err)
		}

		err = config.Validate()
		if err == nil {
			t.Fatal("Expected error for missing SPREADSHEET_ID, got nil")
		}
		if !strings.Contains(err.Error(), "SPREADSHEET_ID") {
			t.Errorf("Expected error message to contain 'SPREADSHEET_ID', got '%s'", err.Error())
		}
	})

	t.Run("MalformedValues", func(t *testing.T) {
		testCases := []struct {
			key   string
			value string
		}{
			{"HEADER_ROW", "first"},
			{"BATCH_SIZE", "1.5"},
			{"CREATE_MISSING_SHEET", "maybe"},
		}

		for _, tc := range testCases {
			resetEnv()
			os.Setenv(tc.key, tc.value)

			_, err := LoadConfig()
			if err == nil {
				t.Errorf("Expected error for %s=%q, got nil", tc.key, tc.value)
				continue
			}
			if !strings.Contains(err.Error(), tc.key) {
				t.Errorf("Expected error message to contain %q, got %q", tc.key, err.Error())
			}
		}
	})
}

func TestConfigValidate(t *testing.T) {
	testCases := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"Valid", Config{SpreadsheetID: "abc", HeaderRow: 1, BatchSize: 500}, false},
		{"ZeroHeaderRow", Config{SpreadsheetID: "abc", HeaderRow: 0, BatchSize: 500}, true},
		{"ZeroBatchSize", Config{SpreadsheetID: "abc", HeaderRow: 1, BatchSize: 0}, true},
		{"NoSpreadsheet", Config{HeaderRow: 1, BatchSize: 500}, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.config.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestSetupEnvironment(t *testing.T) {
	// Save original environment
	originalENV := os.Getenv("ENV")
	originalLOGLEVEL := os.Getenv("LOGLEVEL")
	originalLevel := zerolog.GlobalLevel()

	// Cleanup function
	defer func() {
		setOrUnset("ENV", originalENV)
		setOrUnset("LOGLEVEL", originalLOGLEVEL)
		zerolog.SetGlobalLevel(originalLevel)
	}()

	testCases := []struct {
		name          string
		env           string
		logLevel      string
		expectedLevel zerolog.Level
	}{
		{"ProductionDebug", "production", "debug", zerolog.DebugLevel},
		{"ProductionWarning", "production", "warning", zerolog.WarnLevel},
		{"ProductionError", "production", "error", zerolog.ErrorLevel},
		{"ProductionDisabled", "production", "disabled", zerolog.Disabled},
		{"ProductionDefault", "production", "", zerolog.WarnLevel},
		{"ProductionUnknown", "production", "unknown", zerolog.InfoLevel},
		{"DevelopmentDebug", "development", "debug", zerolog.DebugLevel},
		{"DevelopmentDefault", "development", "", zerolog.InfoLevel},
		{"DevelopmentUnknown", "", "unknown", zerolog.InfoLevel},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			setOrUnset("ENV", tc.env)
			setOrUnset("LOGLEVEL", tc.logLevel)

			SetupEnvironment()

			if zerolog.GlobalLevel() != tc.expectedLevel {
				t.Errorf("Expected log level %v, got %v", tc.expectedLevel, zerolog.GlobalLevel())
			}
		})
	}
}

// Helper function to set environment variable or unset if value is empty
func setOrUnset(key, value string) {
	if value == "" {
		os.Unsetenv(key)
	} else {
		os.Setenv(key, value)
	}
}
