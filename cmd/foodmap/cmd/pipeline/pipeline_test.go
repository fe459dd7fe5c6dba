package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mieux-choisir/foodmap"
	"github.com/mieux-choisir/foodmap/internal/appcontext"
	"github.com/mieux-choisir/foodmap/internal/store/memory"
	"github.com/mieux-choisir/foodmap/pkg/logging"
	"github.com/mieux-choisir/foodmap/pkg/provenance"
)

const testTaxonomy = `en: Snacks

< en:Snacks
en: Biscuits, Cookies
`

const primaryLines = `{"id_match": "001", "product_name": "Oat biscuits", "categories_raw": "en:cookies"}
{"id_match": "002", "product_name": "Only primary"}
`

const secondaryLines = `{"id_match": "001", "product_name": "Oat biscuits", "brands": ["Oaty"]}
{"id_match": "003", "product_name": "Only secondary"}
`

// newTestApp returns an app whose client works over an in-memory store,
// plus the paths of the catalog fixtures.
func newTestApp(t *testing.T) (*appcontext.Mock, string, string) {
	t.Helper()
	logging.DisableLoggingForTest(t)

	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
		return path
	}
	taxonomyFile := write("categories.txt", testTaxonomy)
	primary := write("off.jsonl", primaryLines)
	secondary := write("fdc.jsonl", secondaryLines)

	mem := memory.New()
	base := []foodmap.Option{
		foodmap.WithStore(mem.Opener()),
		foodmap.WithTaxonomyFile(taxonomyFile),
	}
	c, err := foodmap.New(base...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close(context.Background()) })

	app := &appcontext.Mock{
		Format:     "json",
		ClientFunc: func() (foodmap.Client, error) { return c, nil },
		ClientWithOptionsFunc: func(opts ...foodmap.Option) (foodmap.Client, error) {
			return foodmap.New(append(append([]foodmap.Option{}, base...), opts...)...)
		},
	}
	return app, primary, secondary
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) []byte {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())
	return out.Bytes()
}

func TestImportCommand(t *testing.T) {
	app, primary, _ := newTestApp(t)

	out := execute(t, NewImportCommand(app), "primary", primary)
	var result foodmap.ImportResult
	require.NoError(t, json.Unmarshal(out, &result))
	assert.Equal(t, "off_products", result.Collection)
	assert.Equal(t, 2, result.Write.Written)
}

func TestImportCommandRejectsUnknownCatalog(t *testing.T) {
	app, primary, _ := newTestApp(t)

	cmd := NewImportCommand(app)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"tertiary", primary})
	assert.Error(t, cmd.Execute())
}

func TestPipelineCommands(t *testing.T) {
	app, primary, secondary := newTestApp(t)
	execute(t, NewImportCommand(app), "primary", primary)
	execute(t, NewImportCommand(app), "secondary", secondary)

	var summary struct {
		Matched    int `json:"matched"`
		UnmatchedA int `json:"unmatched_a"`
		UnmatchedB int `json:"unmatched_b"`
	}
	require.NoError(t, json.Unmarshal(execute(t, NewMatchCommand(app)), &summary))
	assert.Equal(t, 1, summary.Matched)
	assert.Equal(t, 1, summary.UnmatchedA)
	assert.Equal(t, 1, summary.UnmatchedB)

	provFile := filepath.Join(t.TempDir(), "provenance.yaml")
	var merge foodmap.MergeResult
	require.NoError(t, json.Unmarshal(execute(t, NewMergeCommand(app), "--provenance", provFile), &merge))
	assert.Equal(t, 1, merge.Engine.Merged)

	saved, err := provenance.Load(provFile)
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.NotEmpty(t, saved.Provenance)

	var report foodmap.Report
	require.NoError(t, json.Unmarshal(execute(t, NewReportCommand(app)), &report))
	require.NotNil(t, report.Differences)
	assert.Equal(t, 1, report.Differences.Compared)
}

func TestRunCommandTextOutput(t *testing.T) {
	app, primary, secondary := newTestApp(t)
	app.Format = "text"

	out := execute(t, NewRunCommand(app), "--primary", primary, "--secondary", secondary)
	assert.Contains(t, string(out), "brands")
}

func TestCommandsWithoutClient(t *testing.T) {
	app := &appcontext.Mock{Format: "json"}
	for _, cmd := range []*cobra.Command{NewMatchCommand(app), NewReportCommand(app)} {
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs(nil)
		assert.Error(t, cmd.Execute(), cmd.Name())
	}
}

func TestNewCommands(t *testing.T) {
	names := make([]string, 0, 5)
	for _, cmd := range NewCommands(&appcontext.Mock{}) {
		names = append(names, cmd.Name())
	}
	assert.Equal(t, []string{"import", "match", "merge", "report", "run"}, names)
}
