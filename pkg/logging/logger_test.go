package logging_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"

	"github.com/mieux-choisir/foodmap/pkg/logging"
)

func TestSetDefault(t *testing.T) {
	restoreLogging(t)

	var buf bytes.Buffer
	logging.SetDefault(zerolog.New(&buf).Level(zerolog.InfoLevel))

	logging.Default().Debug().Msg("hidden")
	logging.FromContext(context.Background()).Info().Msg("taxonomy loaded")
	log.Warn().Msg("global logger follows")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "taxonomy loaded")
	assert.Contains(t, buf.String(), "global logger follows")
}

func TestNew(t *testing.T) {
	restoreLogging(t)
	zerolog.SetGlobalLevel(zerolog.WarnLevel)

	var buf bytes.Buffer
	logger := logging.New(&buf)
	logger.Info().Msg("skipped")
	logger.Warn().Msg("kept")

	assert.NotContains(t, buf.String(), "skipped")
	assert.Contains(t, buf.String(), `"level":"warn"`)
}

func TestCaptureLoggingForTest(t *testing.T) {
	tl := logging.CaptureLoggingForTest(t)

	logging.Default().Info().Str("catalog", "off").Msg("imported")
	logging.Default().Error().Int("batch", 3).Msg("write failed")

	tl.AssertContains(t, "imported")
	tl.AssertNotContains(t, "merged")
	assert.Len(t, tl.Lines(), 2)

	entry, ok := tl.Find("write failed")
	assert.True(t, ok)
	assert.Equal(t, float64(3), entry["batch"])

	tl.Clear()
	assert.Empty(t, tl.Entries())
}

func TestDisableLoggingForTest(t *testing.T) {
	restoreLogging(t)
	var buf bytes.Buffer
	logging.SetDefault(zerolog.New(&buf))

	t.Run("silenced", func(t *testing.T) {
		logging.DisableLoggingForTest(t)
		logging.Default().Error().Msg("dropped")
	})
	logging.Default().Error().Msg("restored")

	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "restored")
}
