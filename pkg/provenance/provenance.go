// Package provenance records which catalog supplied each merged value.
package provenance

import (
	"strings"
	"sync"
)

// Source names the side of a matched pair a value came from.
type Source string

// Sources of a merged value.
const (
	SourcePrimary   Source = "primary"
	SourceSecondary Source = "secondary"
	SourceBoth      Source = "both" // both sides agree
)

// Outcome is the result of comparing one field of a matched pair.
type Outcome string

// Field comparison outcomes.
const (
	OutcomeSame        Outcome = "same"
	OutcomeCompleted   Outcome = "completed"
	OutcomeOverwritten Outcome = "overwritten"
	OutcomeConflict    Outcome = "conflict" // overwritten string, primary kept
	OutcomeSkipped     Outcome = "skipped"
	OutcomeDerived     Outcome = "derived"
)

// Provenance records the origin of one merged field value.
type Provenance struct {
	Field    string  `yaml:"field" json:"field"`
	Source   Source  `yaml:"source" json:"source"`
	Outcome  Outcome `yaml:"outcome" json:"outcome"`
	Value    any     `yaml:"value,omitempty" json:"value,omitempty"`
	Previous any     `yaml:"previous,omitempty" json:"previous,omitempty"` // primary value replaced or kept against the secondary
	Reason   string  `yaml:"reason,omitempty" json:"reason,omitempty"`
}

// Map holds provenance keyed by "idMatch:fieldPath".
type Map map[string][]Provenance

// Key builds the Map key of a field.
func Key(idMatch, field string) string {
	return idMatch + ":" + field
}

// SplitKey reverses Key. id_match values never contain ':' while field
// paths might.
func SplitKey(key string) (idMatch, field string, ok bool) {
	return strings.Cut(key, ":")
}

// Tracker collects provenance while pairs are merged. Implementations are
// safe for concurrent use.
type Tracker interface {
	Track(idMatch string, p Provenance)

	// FindByField returns a copy of the entries of one field.
	FindByField(idMatch, field string) []Provenance

	// FindByRecord returns a copy of every entry of a record, keyed by
	// field path.
	FindByRecord(idMatch string) map[string][]Provenance

	// Map returns a copy of everything tracked so far.
	Map() Map

	Clear()
}

// NewTracker creates a tracker. A disabled tracker records nothing and
// returns nil from every lookup.
func NewTracker(enabled bool) Tracker {
	if !enabled {
		return noopTracker{}
	}
	return &tracker{records: make(map[string]map[string][]Provenance)}
}

// tracker indexes entries by record then field.
type tracker struct {
	mu      sync.RWMutex
	records map[string]map[string][]Provenance
}

func (t *tracker) Track(idMatch string, p Provenance) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fields, ok := t.records[idMatch]
	if !ok {
		fields = make(map[string][]Provenance)
		t.records[idMatch] = fields
	}
	fields[p.Field] = append(fields[p.Field], p)
}

func (t *tracker) FindByField(idMatch, field string) []Provenance {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]Provenance(nil), t.records[idMatch][field]...)
}

func (t *tracker) FindByRecord(idMatch string) map[string][]Provenance {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[string][]Provenance, len(t.records[idMatch]))
	for field, entries := range t.records[idMatch] {
		out[field] = append([]Provenance(nil), entries...)
	}
	return out
}

func (t *tracker) Map() Map {
	t.mu.RLock()
	defer t.mu.RUnlock()
	m := make(Map)
	for id, fields := range t.records {
		for field, entries := range fields {
			m[Key(id, field)] = append([]Provenance(nil), entries...)
		}
	}
	return m
}

func (t *tracker) Clear() {
	t.mu.Lock()
	t.records = make(map[string]map[string][]Provenance)
	t.mu.Unlock()
}

type noopTracker struct{}

func (noopTracker) Track(string, Provenance)                    {}
func (noopTracker) FindByField(string, string) []Provenance     { return nil }
func (noopTracker) FindByRecord(string) map[string][]Provenance { return nil }
func (noopTracker) Map() Map                                    { return nil }
func (noopTracker) Clear()                                      {}
