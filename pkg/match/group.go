package match

import (
	"context"

	"github.com/mieux-choisir/foodmap/internal/store"
	"github.com/mieux-choisir/foodmap/pkg/errors"
	"github.com/mieux-choisir/foodmap/pkg/record"
)

// groups reads a sorted cursor one id_match at a time.
type groups struct {
	cur     store.Cursor
	name    string
	pending *record.Record
	last    string
	missing int
	done    bool
	err     error
}

func newGroups(cur store.Cursor, name string) *groups {
	return &groups{cur: cur, name: name}
}

// fill loads the next record carrying an id_match into pending.
func (g *groups) fill(ctx context.Context) {
	for g.pending == nil && !g.done {
		if !g.cur.Next(ctx) {
			g.done = true
			g.err = g.cur.Err()
			return
		}
		rec := g.cur.Record()
		id := rec.IDMatch()
		if id == "" {
			g.missing++
			continue
		}
		if id < g.last {
			g.done = true
			g.err = errors.NewValidationError(g.name, id, "cursor is not sorted by id_match (after "+g.last+")")
			return
		}
		g.last = id
		g.pending = rec
	}
}

// peek returns the id of the next group, or false at the end.
func (g *groups) peek(ctx context.Context) (string, bool) {
	g.fill(ctx)
	if g.pending == nil {
		return "", false
	}
	return g.pending.IDMatch(), true
}

// next returns every record of the next group.
func (g *groups) next(ctx context.Context) []*record.Record {
	id, ok := g.peek(ctx)
	if !ok {
		return nil
	}
	var out []*record.Record
	for {
		out = append(out, g.pending)
		g.pending = nil
		if nid, ok := g.peek(ctx); !ok || nid != id {
			return out
		}
	}
}
