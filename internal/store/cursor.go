package store

import (
	"context"

	"github.com/mieux-choisir/foodmap/pkg/record"
)

// Cursor iterates records in ascending id_match order.
type Cursor interface {
	// Next advances to the next record, returning false at the end or on
	// error.
	Next(ctx context.Context) bool
	// Record returns the current record.
	Record() *record.Record
	// Err returns the error that stopped iteration, if any.
	Err() error
	// Close releases the cursor.
	Close(ctx context.Context) error
}

// SliceCursor iterates an in-memory slice.
type SliceCursor struct {
	records []*record.Record
	pos     int
}

var _ Cursor = (*SliceCursor)(nil)

// NewSliceCursor sorts a copy of records by id_match and iterates it.
// Records sharing an id_match keep their relative order.
func NewSliceCursor(records []*record.Record) *SliceCursor {
	sorted := make([]*record.Record, len(records))
	copy(sorted, records)
	record.SortByIDMatch(sorted)
	return &SliceCursor{records: sorted, pos: -1}
}

// Next implements Cursor.
func (c *SliceCursor) Next(ctx context.Context) bool {
	if ctx.Err() != nil || c.pos+1 >= len(c.records) {
		c.pos = len(c.records)
		return false
	}
	c.pos++
	return true
}

// Record implements Cursor.
func (c *SliceCursor) Record() *record.Record {
	if c.pos < 0 || c.pos >= len(c.records) {
		return nil
	}
	return c.records[c.pos]
}

// Err implements Cursor.
func (c *SliceCursor) Err() error { return nil }

// Close implements Cursor.
func (c *SliceCursor) Close(context.Context) error { return nil }

// Collect drains and closes a cursor.
func Collect(ctx context.Context, c Cursor) ([]*record.Record, error) {
	defer c.Close(ctx) //nolint:errcheck // drained

	var out []*record.Record
	for c.Next(ctx) {
		out = append(out, c.Record())
	}
	if err := c.Err(); err != nil {
		return out, err
	}
	return out, ctx.Err()
}

// FindAll reads a whole collection into memory.
func FindAll(ctx context.Context, r Reader, collection string) ([]*record.Record, error) {
	c, err := r.Find(ctx, collection)
	if err != nil {
		return nil, err
	}
	return Collect(ctx, c)
}
