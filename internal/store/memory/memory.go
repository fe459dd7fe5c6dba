// Package memory implements an in-process document store. Every
// connection opened from one Memory shares its data, so it stands in for a
// server in tests and dry runs.
package memory

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/mieux-choisir/foodmap/internal/store"
	"github.com/mieux-choisir/foodmap/pkg/constants"
	"github.com/mieux-choisir/foodmap/pkg/errors"
	"github.com/mieux-choisir/foodmap/pkg/record"
)

// Memory holds collections shared by every connection opened from it.
type Memory struct {
	mu          sync.RWMutex
	collections map[string]*collection
	opened      int
}

type collection struct {
	docs    []*record.Record
	indexes [][]string
}

// New creates an empty store.
func New() *Memory {
	return &Memory{collections: make(map[string]*collection)}
}

// Opener returns a store.Opener handing out connections to m.
func (m *Memory) Opener() store.Opener {
	return func(ctx context.Context) (store.Store, error) {
		if err := ctx.Err(); err != nil {
			return nil, errors.NewStoreError("connect", "", -1, err)
		}
		m.mu.Lock()
		m.opened++
		m.mu.Unlock()
		return &conn{m: m}, nil
	}
}

// Opened returns how many connections have been opened.
func (m *Memory) Opened() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.opened
}

// Seed replaces a collection without going through a connection.
func (m *Memory) Seed(name string, records ...*record.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.collections[name] = &collection{docs: cloneAll(records)}
}

// conn is one connection. Closing it leaves the shared data intact.
type conn struct {
	m      *Memory
	closed bool
}

var _ store.Store = (*conn)(nil)

func (c *conn) check(op, name string) error {
	if c.closed {
		return errors.NewStoreError(op, name, -1, errors.New("connection closed"))
	}
	return nil
}

// Find implements store.Reader.
func (c *conn) Find(ctx context.Context, name string) (store.Cursor, error) {
	if err := c.check("find", name); err != nil {
		return nil, err
	}
	c.m.mu.RLock()
	defer c.m.mu.RUnlock()
	var docs []*record.Record
	if coll, ok := c.m.collections[name]; ok {
		docs = cloneAll(coll.docs)
	}
	return store.NewSliceCursor(docs), nil
}

// Count implements store.Reader.
func (c *conn) Count(ctx context.Context, name string) (int64, error) {
	if err := c.check("count", name); err != nil {
		return 0, err
	}
	c.m.mu.RLock()
	defer c.m.mu.RUnlock()
	if coll, ok := c.m.collections[name]; ok {
		return int64(len(coll.docs)), nil
	}
	return 0, nil
}

// EnsureUniqueIndex implements store.Writer.
func (c *conn) EnsureUniqueIndex(ctx context.Context, name string, fields ...string) error {
	if err := c.check("index", name); err != nil {
		return err
	}
	c.m.mu.Lock()
	defer c.m.mu.Unlock()
	coll := c.m.collection(name)
	for _, idx := range coll.indexes {
		if slices.Equal(idx, fields) {
			return nil
		}
	}
	if dup := firstDuplicate(coll.docs, fields); dup != "" {
		return errors.NewStoreError("index", name, -1, errors.Join(errors.ErrDuplicateKey, errors.New(dup)))
	}
	coll.indexes = append(coll.indexes, slices.Clone(fields))
	return nil
}

// Upsert implements store.Writer. The batch is applied atomically.
func (c *conn) Upsert(ctx context.Context, name string, records []*record.Record) error {
	if err := c.check("upsert", name); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	c.m.mu.Lock()
	defer c.m.mu.Unlock()

	coll := c.m.collection(name)
	docs := cloneAll(coll.docs)
	for _, rec := range records {
		id := rec.IDMatch()
		if id == "" {
			return errors.NewStoreError("upsert", name, -1, errors.NewValidationError(constants.FieldIDMatch, "", "required"))
		}
		i := slices.IndexFunc(docs, func(d *record.Record) bool { return d.IDMatch() == id })
		if i < 0 {
			docs = append(docs, rec.Clone())
			continue
		}
		for _, field := range rec.Fields() {
			docs[i].Set(field, rec.Get(field).Clone())
		}
	}
	for _, idx := range coll.indexes {
		if dup := firstDuplicate(docs, idx); dup != "" {
			return errors.NewStoreError("upsert", name, -1, errors.Join(errors.ErrDuplicateKey, errors.New(dup)))
		}
	}
	coll.docs = docs
	return nil
}

// Replace implements store.Writer.
func (c *conn) Replace(ctx context.Context, name string, records []*record.Record) error {
	if err := c.check("replace", name); err != nil {
		return err
	}
	c.m.mu.Lock()
	defer c.m.mu.Unlock()
	c.m.collections[name] = &collection{docs: cloneAll(records)}
	return nil
}

// Drop implements store.Writer.
func (c *conn) Drop(ctx context.Context, name string) error {
	if err := c.check("drop", name); err != nil {
		return err
	}
	c.m.mu.Lock()
	defer c.m.mu.Unlock()
	delete(c.m.collections, name)
	return nil
}

// Close implements store.Store.
func (c *conn) Close(context.Context) error {
	c.closed = true
	return nil
}

func (m *Memory) collection(name string) *collection {
	coll, ok := m.collections[name]
	if !ok {
		coll = &collection{}
		m.collections[name] = coll
	}
	return coll
}

// firstDuplicate returns the first key repeated across docs, or "".
func firstDuplicate(docs []*record.Record, fields []string) string {
	seen := make(map[string]struct{}, len(docs))
	for _, d := range docs {
		parts := make([]string, len(fields))
		for i, f := range fields {
			parts[i] = d.Lookup(f).String()
		}
		key := strings.Join(parts, "|")
		if _, dup := seen[key]; dup {
			return key
		}
		seen[key] = struct{}{}
	}
	return ""
}

func cloneAll(records []*record.Record) []*record.Record {
	out := make([]*record.Record, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out
}
