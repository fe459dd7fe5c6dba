package taxonomy

import (
	"context"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/mieux-choisir/foodmap/pkg/errors"
	"github.com/mieux-choisir/foodmap/pkg/logging"
)

// CrossCatalogMap maps a foreign catalog's raw category label to the
// ordered canonical synonyms it corresponds to. It is immutable once built.
type CrossCatalogMap struct {
	entries map[string][]string
	dropped []string
}

// LoadCrossCatalogMap reads a mapping file and validates it against g.
func LoadCrossCatalogMap(ctx context.Context, path string, g *Graph) (*CrossCatalogMap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	defer f.Close() //nolint:errcheck // read-only file

	m, err := ParseCrossCatalogMap(ctx, f, g)
	if err != nil {
		var pe *errors.ParseError
		if errors.As(err, &pe) {
			pe.File = path
		}
		return nil, err
	}
	return m, nil
}

// ParseCrossCatalogMap decodes a JSON or YAML object of
// label -> [synonym, ...]. Synonyms unknown to g are dropped; labels left
// without synonyms are dropped. Neither is an error.
func ParseCrossCatalogMap(ctx context.Context, r io.Reader, g *Graph) (*CrossCatalogMap, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.WrapIO("read", "", err)
	}

	raw := make(map[string][]string)
	if strings.TrimSpace(string(data)) != "" {
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, errors.WrapParse("mapping", "", err)
		}
	}

	m := &CrossCatalogMap{entries: make(map[string][]string, len(raw))}
	labels := make([]string, 0, len(raw))
	for label := range raw {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	for _, label := range labels {
		var kept []string
		for _, synonym := range raw[label] {
			synonym = strings.TrimSpace(synonym)
			if g != nil && len(g.NodesWithSynonym(synonym)) == 0 {
				m.dropped = append(m.dropped, label+" -> "+synonym)
				continue
			}
			kept = append(kept, synonym)
		}
		if len(kept) > 0 {
			m.entries[label] = kept
		}
	}

	if len(m.dropped) > 0 {
		logging.FromContext(ctx).Warn().
			Int("dropped", len(m.dropped)).
			Strs("entries", m.dropped).
			Msg("Dropped category mappings referencing unknown terms")
	}
	return m, nil
}

// Lookup returns the mapped synonyms for a raw label, in mapping order.
func (m *CrossCatalogMap) Lookup(label string) ([]string, bool) {
	if m == nil {
		return nil, false
	}
	synonyms, ok := m.entries[label]
	if !ok {
		return nil, false
	}
	out := make([]string, len(synonyms))
	copy(out, synonyms)
	return out, true
}

// Labels returns the kept labels, sorted.
func (m *CrossCatalogMap) Labels() []string {
	if m == nil {
		return nil
	}
	out := make([]string, 0, len(m.entries))
	for label := range m.entries {
		out = append(out, label)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of labels kept.
func (m *CrossCatalogMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

// Dropped lists "label -> synonym" pairs removed during validation.
func (m *CrossCatalogMap) Dropped() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.dropped))
	copy(out, m.dropped)
	return out
}
