package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mieux-choisir/foodmap/pkg/constants"
	"github.com/mieux-choisir/foodmap/pkg/errors"
)

// TestLoadConfig verifies basic config loading and defaults.
func TestLoadConfig(t *testing.T) {
	config, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}

	if config.Store != StoreSQLite {
		t.Errorf("Store = %s, want %s", config.Store, StoreSQLite)
	}
	if config.BatchSize != constants.DefaultBatchSize {
		t.Errorf("BatchSize = %d, want %d", config.BatchSize, constants.DefaultBatchSize)
	}
	if config.Tolerance != constants.DefaultTolerance {
		t.Errorf("Tolerance = %v, want %v", config.Tolerance, constants.DefaultTolerance)
	}
	if config.LogFormat == "" {
		t.Error("LogFormat not set to default")
	}
}

// TestConfig_EnvironmentVariables verifies FOODMAP_ environment variables.
func TestConfig_EnvironmentVariables(t *testing.T) {
	t.Setenv("FOODMAP_STORE", "MONGO")
	t.Setenv("FOODMAP_MONGO_URI", "mongodb://db:27017")
	t.Setenv("FOODMAP_DATABASE", "catalog")
	t.Setenv("FOODMAP_BATCH_SIZE", "250")
	t.Setenv("FOODMAP_THRESHOLD", "0.5")
	t.Setenv("FOODMAP_FORMAT", "yaml")
	t.Setenv("FOODMAP_VERBOSE", "true")

	config, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}

	if config.Store != StoreMongo {
		t.Errorf("Store = %s, want %s", config.Store, StoreMongo)
	}
	if config.MongoURI != "mongodb://db:27017" {
		t.Errorf("MongoURI = %s", config.MongoURI)
	}
	if config.Database != "catalog" {
		t.Errorf("Database = %s, want catalog", config.Database)
	}
	if config.BatchSize != 250 {
		t.Errorf("BatchSize = %d, want 250", config.BatchSize)
	}
	if config.Threshold != 0.5 {
		t.Errorf("Threshold = %v, want 0.5", config.Threshold)
	}
	if config.Format != "yaml" {
		t.Errorf("Format = %s, want yaml", config.Format)
	}
	if !config.Verbose {
		t.Error("FOODMAP_VERBOSE not loaded")
	}
}

// TestConfig_LogEnvFallback verifies the unprefixed LOG_* variables.
func TestConfig_LogEnvFallback(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")

	config, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}
	if config.LogLevel != "debug" {
		t.Errorf("LogLevel = %s, want debug", config.LogLevel)
	}
	if config.LogFormat != "json" {
		t.Errorf("LogFormat = %s, want json", config.LogFormat)
	}
}

// TestConfig_File verifies values read from a YAML config file.
func TestConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "foodmap.yaml")
	content := "taxonomy_file: categories.txt\nskip_fields:\n  - images\n  - \"nutriscore_data.*\"\ntolerance: 0.2\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}
	if config.ConfigFile != path {
		t.Errorf("ConfigFile = %s, want %s", config.ConfigFile, path)
	}
	if config.TaxonomyFile != "categories.txt" {
		t.Errorf("TaxonomyFile = %s", config.TaxonomyFile)
	}
	if len(config.SkipFields) != 2 || config.SkipFields[1] != "nutriscore_data.*" {
		t.Errorf("SkipFields = %v", config.SkipFields)
	}
	if config.Tolerance != 0.2 {
		t.Errorf("Tolerance = %v, want 0.2", config.Tolerance)
	}
}

// TestConfig_MissingFile verifies an explicit missing file is an error.
func TestConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	var cfgErr *errors.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Errorf("LoadConfig() error = %v, want ConfigError", err)
	}
}

// TestConfig_Validate checks store validation.
func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"sqlite", Config{Store: StoreSQLite}, false},
		{"mongo with uri", Config{Store: StoreMongo, MongoURI: "mongodb://localhost"}, false},
		{"mongo without uri", Config{Store: StoreMongo}, true},
		{"unknown store", Config{Store: "redis"}, true},
		{"empty store", Config{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.IsValidationError(err) {
				t.Errorf("Validate() error = %v, want validation error", err)
			}
		})
	}
}

// TestConfig_UpdateFromFlags verifies flags take precedence.
func TestConfig_UpdateFromFlags(t *testing.T) {
	config := &Config{Format: "table", LogLevel: "info"}
	config.UpdateFromFlags(true, false, true, "", "")
	if !config.Verbose || !config.NoColor {
		t.Error("boolean flags not applied")
	}
	if config.Format != "table" || config.LogLevel != "info" {
		t.Error("empty flags overrode config values")
	}

	config.UpdateFromFlags(false, false, false, "json", "trace")
	if config.Format != "json" || config.LogLevel != "trace" {
		t.Errorf("flags not applied: format %s, level %s", config.Format, config.LogLevel)
	}
}
