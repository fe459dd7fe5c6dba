package logging_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mieux-choisir/foodmap/pkg/logging"
)

func restoreLogging(t *testing.T) {
	t.Helper()
	originalLogger := *logging.Default()
	originalLevel := zerolog.GlobalLevel()
	t.Cleanup(func() {
		logging.SetDefault(originalLogger)
		zerolog.SetGlobalLevel(originalLevel)
	})
}

func TestDefaultConfig(t *testing.T) {
	cfg := logging.DefaultConfig()
	require.NotNil(t, cfg)
	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "auto", cfg.Format)
	assert.Equal(t, "stderr", cfg.Output)
	assert.False(t, cfg.AddCaller)
}

func TestNewLoggerFromConfig(t *testing.T) {
	restoreLogging(t)

	tests := []struct {
		name     string
		cfg      *logging.Config
		contains []string
		absent   []string
	}{
		{
			name:     "json with default fields",
			cfg:      &logging.Config{Level: "info", Format: "json", Fields: map[string]string{"service": "foodmap"}},
			contains: []string{`"service":"foodmap"`, `"level":"info"`, "merge finished"},
		},
		{
			name:     "auto format on a file is json",
			cfg:      &logging.Config{Level: "info", Format: "auto"},
			contains: []string{`"merged":12`},
		},
		{
			name:     "console format uses short levels",
			cfg:      &logging.Config{Level: "info", Format: "console", NoColor: true},
			contains: []string{"INF", "merge finished"},
		},
		{
			name:     "debug adds caller",
			cfg:      &logging.Config{Level: "debug", Format: "json"},
			contains: []string{`"caller"`},
		},
		{
			name:   "error level filters info",
			cfg:    &logging.Config{Level: "error", Format: "json"},
			absent: []string{"merge finished"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "foodmap.log")
			tt.cfg.Output = path

			logger := logging.NewLoggerFromConfig(tt.cfg)
			logger.Info().Int("merged", 12).Msg("merge finished")

			content, err := os.ReadFile(path)
			require.NoError(t, err)
			for _, want := range tt.contains {
				assert.Contains(t, string(content), want)
			}
			for _, unwanted := range tt.absent {
				assert.NotContains(t, string(content), unwanted)
			}
		})
	}
}

func TestNewLoggerFromConfigSetsGlobalLevel(t *testing.T) {
	restoreLogging(t)

	logging.NewLoggerFromConfig(&logging.Config{Level: "warn", Output: "discard"})
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
		ok   bool
	}{
		{"trace", zerolog.TraceLevel, true},
		{"DEBUG", zerolog.DebugLevel, true},
		{"warning", zerolog.WarnLevel, true},
		{"off", zerolog.Disabled, true},
		{"disabled", zerolog.Disabled, true},
		{"", zerolog.InfoLevel, false},
		{"loud", zerolog.InfoLevel, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := logging.ParseLevel(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}
