package persistence

import (
	"github.com/mieux-choisir/foodmap/pkg/constants"
	"github.com/mieux-choisir/foodmap/pkg/record"
)

// Dedupe keeps one record per id_match: the one with the latest
// publication_date, or the later arrival on a tie. Records without an
// id_match are dropped. Kept records appear in order of their id's first
// occurrence.
func Dedupe(records []*record.Record) (kept []*record.Record, dropped, superseded int) {
	pos := make(map[string]int, len(records))
	for _, rec := range records {
		id := rec.IDMatch()
		if id == "" {
			dropped++
			continue
		}
		i, seen := pos[id]
		if !seen {
			pos[id] = len(kept)
			kept = append(kept, rec)
			continue
		}
		superseded++
		current := kept[i].Timestamp(constants.FieldPublicationDate)
		if !rec.Timestamp(constants.FieldPublicationDate).Before(current) {
			kept[i] = rec
		}
	}
	return kept, dropped, superseded
}
