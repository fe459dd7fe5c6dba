package provenance

import (
	"fmt"
	"sort"
)

// Counts tallies outcomes over every entry of m.
func (m Map) Counts() map[Outcome]int {
	counts := make(map[Outcome]int)
	for _, entries := range m {
		for _, p := range entries {
			counts[p.Outcome]++
		}
	}
	return counts
}

// Records returns the distinct id_match values of m in ascending order.
// Malformed keys are ignored.
func (m Map) Records() []string {
	seen := make(map[string]bool)
	var ids []string
	for key := range m {
		id, _, ok := SplitKey(key)
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Filter returns the entries of one record.
func (m Map) Filter(idMatch string) Map {
	out := make(Map)
	for key, entries := range m {
		if id, _, ok := SplitKey(key); ok && id == idMatch {
			out[key] = entries
		}
	}
	return out
}

// Rows renders one row per entry, ordered by record then field.
func (m Map) Rows() (headers []string, rows [][]string) {
	headers = []string{"ID Match", "Field", "Outcome", "Source", "Value", "Previous"}
	keys := make([]string, 0, len(m))
	for key := range m {
		if _, _, ok := SplitKey(key); ok {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	for _, key := range keys {
		id, field, _ := SplitKey(key)
		for _, p := range m[key] {
			rows = append(rows, []string{id, field, string(p.Outcome), string(p.Source), show(p.Value), show(p.Previous)})
		}
	}
	return headers, rows
}

func show(v any) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprint(v)
}
