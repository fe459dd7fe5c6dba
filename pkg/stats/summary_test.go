package stats

import (
	"bytes"
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mieux-choisir/foodmap/internal/utils/ptr"
	"github.com/mieux-choisir/foodmap/pkg/logging"
	"github.com/mieux-choisir/foodmap/pkg/reconcile"
)

func newGoldie(t *testing.T) *goldie.Goldie {
	t.Helper()
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestSummarize(t *testing.T) {
	logging.DisableLoggingForTest(t)

	s := Summarize(context.Background(),
		reconcile.Counter("sugars", "salt", "sugars"),
		reconcile.Counter("brands"),
		1, 4, 4)

	assert.True(t, s.PercentagesAvailable)
	assert.Empty(t, s.Warnings)
	assert.Equal(t, []FieldStat{
		{Path: "sugars", Count: 2, Percent: ptr.Float64(50)},
		{Path: "salt", Count: 1, Percent: ptr.Float64(25)},
	}, s.Overwritten)
	assert.Equal(t, []FieldStat{{Path: "brands", Count: 1, Percent: ptr.Float64(25)}}, s.Completed)
	assert.Equal(t, ptr.Float64(25), s.SkippedPercent)

	var buf bytes.Buffer
	require.NoError(t, s.WriteText(&buf))
	newGoldie(t).Assert(t, "summary", buf.Bytes())
}

func TestSummarizeUnequalTotals(t *testing.T) {
	logs := logging.CaptureLoggingForTest(t)

	s := Summarize(context.Background(),
		reconcile.Counter("sugars", "salt", "sugars"),
		reconcile.Counter("brands"),
		1, 4, 5)

	assert.False(t, s.PercentagesAvailable)
	assert.Nil(t, s.SkippedPercent)
	for _, f := range s.Overwritten {
		assert.Nil(t, f.Percent, f.Path)
	}
	logs.AssertContains(t, "percentages are omitted")

	var buf bytes.Buffer
	require.NoError(t, s.WriteText(&buf))
	newGoldie(t).Assert(t, "summary_unequal", buf.Bytes())
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(context.Background(), reconcile.FieldCounter{}, reconcile.FieldCounter{}, 0, 0, 0)
	assert.False(t, s.PercentagesAvailable)
	assert.Equal(t, []string{"No matched products, percentages are omitted"}, s.Warnings)
	assert.Empty(t, s.Overwritten)
	assert.Empty(t, s.Completed)
}

func TestSummaryRows(t *testing.T) {
	s := Summarize(context.Background(), reconcile.Counter("salt"), reconcile.Counter("brands", "brands"), 0, 2, 2)

	headers, rows := s.Rows()
	assert.Equal(t, []string{"Change", "Field", "Count", "Percent"}, headers)
	assert.Equal(t, [][]string{
		{"overwritten", "salt", "1", "50%"},
		{"completed", "brands", "2", "100%"},
		{"skipped", "", "0", "0%"},
	}, rows)
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 33.33, Round2(100.0/3))
	assert.Equal(t, 66.67, Round2(200.0/3))
	assert.Equal(t, 0.0, Round2(0))
}
