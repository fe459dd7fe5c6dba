package app

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/mieux-choisir/foodmap/pkg/constants"
	"github.com/mieux-choisir/foodmap/pkg/errors"
)

// Store backends.
const (
	StoreSQLite = "sqlite"
	StoreMongo  = "mongo"
)

// Config holds the application configuration loaded from config files,
// environment variables and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Document store
	Store      string
	MongoURI   string
	Database   string
	SQLitePath string

	// Category resolution
	TaxonomyFile string
	MappingFile  string

	// Persistence
	BatchSize  int
	MaxWriters int

	// Merge and report
	Tolerance  float64
	Threshold  float64
	SkipFields []string

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (handled by cobra)
// 2. Environment variables (FOODMAP_ prefix)
// 3. .env files
// 4. Config file (configFile, $FOODMAP_CONFIG or ~/.foodmap.yaml)
// 5. Defaults
func LoadConfig(configFile string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	v.SetEnvPrefix("FOODMAP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	setDefaults(v)

	if configFile == "" {
		configFile = v.GetString("config")
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".foodmap")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && v.ConfigFileUsed() != "" {
			return nil, errors.NewConfigError("config", "reading "+v.ConfigFileUsed(), err)
		}
	}

	config := &Config{
		Verbose: v.GetBool("verbose"),
		Quiet:   v.GetBool("quiet"),
		NoColor: v.GetBool("no_color"),
		Format:  v.GetString("format"),

		ConfigFile: v.ConfigFileUsed(),

		Store:      strings.ToLower(v.GetString("store")),
		MongoURI:   v.GetString("mongo_uri"),
		Database:   v.GetString("database"),
		SQLitePath: v.GetString("sqlite_path"),

		TaxonomyFile: v.GetString("taxonomy_file"),
		MappingFile:  v.GetString("mapping_file"),

		BatchSize:  v.GetInt("batch_size"),
		MaxWriters: v.GetInt("max_writers"),

		Tolerance:  v.GetFloat64("tolerance"),
		Threshold:  v.GetFloat64("threshold"),
		SkipFields: v.GetStringSlice("skip_fields"),

		LogLevel:  v.GetString("log_level"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", v.GetString("log_format")),
		LogOutput: getEnvOrDefault("LOG_OUTPUT", v.GetString("log_output")),
	}
	if config.LogLevel == "" {
		config.LogLevel = os.Getenv("LOG_LEVEL")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// setDefaults registers the default of every key.
func setDefaults(v *viper.Viper) {
	v.SetDefault("store", StoreSQLite)
	v.SetDefault("mongo_uri", constants.DefaultMongoURI)
	v.SetDefault("database", constants.DefaultDatabase)
	v.SetDefault("sqlite_path", constants.DefaultSQLitePath)
	v.SetDefault("batch_size", constants.DefaultBatchSize)
	v.SetDefault("max_writers", constants.DefaultMaxWriters)
	v.SetDefault("tolerance", constants.DefaultTolerance)
	v.SetDefault("threshold", constants.DefaultThreshold)
	v.SetDefault("log_format", "auto")
	v.SetDefault("log_output", "stderr")
}

// Validate checks values that would otherwise fail deep inside a command.
func (c *Config) Validate() error {
	switch c.Store {
	case StoreSQLite, StoreMongo:
	default:
		return errors.NewValidationError("store", c.Store, "must be sqlite or mongo")
	}
	if c.Store == StoreMongo && c.MongoURI == "" {
		return errors.NewValidationError("mongo_uri", c.MongoURI, "required for the mongo store")
	}
	return nil
}

// UpdateFromFlags updates config values from parsed command flags so flag
// values take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = noColor
	if format != "" {
		c.Format = format
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

// loadEnvFiles loads environment variables from .env files.
// .env.local overrides .env.
func loadEnvFiles() {
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}

// getEnvOrDefault returns the environment variable value or the default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
