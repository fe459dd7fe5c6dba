// Package sqlite implements the document store on an embedded SQLite
// database. Each collection is a table of BSON documents with the join key
// and freshness field lifted into columns so they can be indexed.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"regexp"
	"slices"
	"strings"
	"time"

	_ "modernc.org/sqlite" // database/sql driver

	"github.com/mieux-choisir/foodmap/internal/store"
	"github.com/mieux-choisir/foodmap/pkg/constants"
	"github.com/mieux-choisir/foodmap/pkg/errors"
	"github.com/mieux-choisir/foodmap/pkg/logging"
	"github.com/mieux-choisir/foodmap/pkg/record"
)

const driverName = "sqlite"

var collectionName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// indexable lists the fields stored as columns.
var indexable = []string{constants.FieldIDMatch, constants.FieldModifiedDate}

// Store is one connection to a SQLite database file.
type Store struct {
	db   *sql.DB
	path string
}

var _ store.Store = (*Store)(nil)

// Open connects to the database at path, creating it if needed. The
// connection uses WAL journaling and immediate transactions so several
// connections can write the same file.
func Open(ctx context.Context, path string) (*Store, error) {
	q := url.Values{}
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", constants.ConnectTimeout.Milliseconds()))
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", "synchronous(NORMAL)")
	q.Set("_txlock", "immediate")
	dsn := "file:" + path + "?" + q.Encode()

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, errors.NewStoreError("connect", "", -1, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, constants.ConnectTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, errors.NewStoreError("connect", "", -1, err)
	}

	logging.FromContext(ctx).Debug().Str("path", path).Msg("Opened sqlite store")
	return &Store{db: db, path: path}, nil
}

// Opener returns a store.Opener connecting to path.
func Opener(path string) store.Opener {
	return func(ctx context.Context) (store.Store, error) {
		return Open(ctx, path)
	}
}

// Path returns the database file.
func (s *Store) Path() string { return s.path }

// Find implements store.Reader.
func (s *Store) Find(ctx context.Context, name string) (store.Cursor, error) {
	table, err := quote(name)
	if err != nil {
		return nil, errors.NewStoreError("find", name, -1, err)
	}
	exists, err := s.tableExists(ctx, name)
	if err != nil {
		return nil, errors.NewStoreError("find", name, -1, err)
	}
	if !exists {
		return store.NewSliceCursor(nil), nil
	}
	rows, err := s.db.QueryContext(ctx, `SELECT doc FROM `+table+` ORDER BY id_match, seq`)
	if err != nil {
		return nil, errors.NewStoreError("find", name, -1, err)
	}
	return &cursor{rows: rows, collection: name}, nil
}

// Count implements store.Reader.
func (s *Store) Count(ctx context.Context, name string) (int64, error) {
	table, err := quote(name)
	if err != nil {
		return 0, errors.NewStoreError("count", name, -1, err)
	}
	exists, err := s.tableExists(ctx, name)
	if err != nil || !exists {
		return 0, wrapIf("count", name, err)
	}
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table).Scan(&n); err != nil {
		return 0, errors.NewStoreError("count", name, -1, err)
	}
	return n, nil
}

// EnsureUniqueIndex implements store.Writer. Only id_match and
// modified_date can be indexed.
func (s *Store) EnsureUniqueIndex(ctx context.Context, name string, fields ...string) error {
	table, err := quote(name)
	if err != nil {
		return errors.NewStoreError("index", name, -1, err)
	}
	if len(fields) == 0 {
		return errors.NewStoreError("index", name, -1, errors.NewValidationError("fields", fields, "at least one field is required"))
	}
	for _, f := range fields {
		if !slices.Contains(indexable, f) {
			return errors.NewStoreError("index", name, -1, errors.NewValidationError("fields", f, "field is not indexable"))
		}
	}
	if err := s.createTable(ctx, s.db, table); err != nil {
		return errors.NewStoreError("index", name, -1, err)
	}

	index := `"` + name + "_uniq_" + strings.Join(fields, "_") + `"`
	stmt := `CREATE UNIQUE INDEX IF NOT EXISTS ` + index + ` ON ` + table + ` (` + strings.Join(fields, ", ") + `)`
	if _, err := s.db.ExecContext(ctx, stmt); err != nil {
		return errors.NewStoreError("index", name, -1, classify(err))
	}
	return nil
}

// Upsert implements store.Writer. Fields of an existing document with the
// same id_match are overwritten one by one; other fields are kept. The
// batch commits atomically.
func (s *Store) Upsert(ctx context.Context, name string, records []*record.Record) error {
	table, err := quote(name)
	if err != nil {
		return errors.NewStoreError("upsert", name, -1, err)
	}
	return s.inTx(ctx, "upsert", name, func(tx *sql.Tx) error {
		if err := s.createTable(ctx, tx, table); err != nil {
			return err
		}
		for _, rec := range records {
			id := rec.IDMatch()
			if id == "" {
				return errors.NewValidationError(constants.FieldIDMatch, "", "required")
			}

			var (
				seq int64
				raw []byte
			)
			err := tx.QueryRowContext(ctx, `SELECT seq, doc FROM `+table+` WHERE id_match = ? ORDER BY seq LIMIT 1`, id).Scan(&seq, &raw)
			switch {
			case errors.Is(err, sql.ErrNoRows):
				if err := insert(ctx, tx, table, rec); err != nil {
					return err
				}
				continue
			case err != nil:
				return err
			}

			existing, err := record.FromBSON(raw)
			if err != nil {
				return err
			}
			for _, field := range rec.Fields() {
				existing.Set(field, rec.Get(field))
			}
			doc, err := existing.MarshalBSON()
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, `UPDATE `+table+` SET modified_date = ?, doc = ? WHERE seq = ?`,
				freshness(existing), doc, seq); err != nil {
				return classify(err)
			}
		}
		return nil
	})
}

// Replace implements store.Writer.
func (s *Store) Replace(ctx context.Context, name string, records []*record.Record) error {
	table, err := quote(name)
	if err != nil {
		return errors.NewStoreError("replace", name, -1, err)
	}
	return s.inTx(ctx, "replace", name, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS `+table); err != nil {
			return err
		}
		if err := s.createTable(ctx, tx, table); err != nil {
			return err
		}
		for _, rec := range records {
			if err := insert(ctx, tx, table, rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// Drop implements store.Writer.
func (s *Store) Drop(ctx context.Context, name string) error {
	table, err := quote(name)
	if err != nil {
		return errors.NewStoreError("drop", name, -1, err)
	}
	if _, err := s.db.ExecContext(ctx, `DROP TABLE IF EXISTS `+table); err != nil {
		return errors.NewStoreError("drop", name, -1, err)
	}
	return nil
}

// Close implements store.Store.
func (s *Store) Close(context.Context) error {
	return s.db.Close()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) createTable(ctx context.Context, db execer, table string) error {
	_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS `+table+` (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id_match TEXT NOT NULL DEFAULT '',
		modified_date TEXT NOT NULL DEFAULT '',
		doc BLOB NOT NULL
	)`)
	return err
}

func (s *Store) tableExists(ctx context.Context, name string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, name).Scan(&n)
	return n > 0, err
}

func (s *Store) inTx(ctx context.Context, op, name string, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewStoreError(op, name, -1, err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return errors.NewStoreError(op, name, -1, classify(err))
	}
	if err := tx.Commit(); err != nil {
		return errors.NewStoreError(op, name, -1, classify(err))
	}
	return nil
}

func insert(ctx context.Context, tx *sql.Tx, table string, rec *record.Record) error {
	doc, err := rec.MarshalBSON()
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `INSERT INTO `+table+` (id_match, modified_date, doc) VALUES (?, ?, ?)`,
		rec.IDMatch(), freshness(rec), doc)
	return classify(err)
}

// freshness renders modified_date for the indexed column.
func freshness(rec *record.Record) string {
	t := rec.Timestamp(constants.FieldModifiedDate)
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// classify maps unique constraint failures onto ErrDuplicateKey.
func classify(err error) error {
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return errors.Join(errors.ErrDuplicateKey, err)
	}
	return err
}

func quote(name string) (string, error) {
	if !collectionName.MatchString(name) {
		return "", errors.NewValidationError("collection", name, "must match "+collectionName.String())
	}
	return `"` + name + `"`, nil
}

func wrapIf(op, name string, err error) error {
	if err == nil {
		return nil
	}
	return errors.NewStoreError(op, name, -1, err)
}

// cursor streams rows of one table.
type cursor struct {
	rows       *sql.Rows
	collection string
	current    *record.Record
	err        error
}

func (c *cursor) Next(ctx context.Context) bool {
	if c.err != nil {
		return false
	}
	if err := ctx.Err(); err != nil {
		c.err = err
		return false
	}
	if !c.rows.Next() {
		if err := c.rows.Err(); err != nil {
			c.err = errors.NewStoreError("find", c.collection, -1, err)
		}
		return false
	}
	var raw []byte
	if err := c.rows.Scan(&raw); err != nil {
		c.err = errors.NewStoreError("find", c.collection, -1, err)
		return false
	}
	rec, err := record.FromBSON(raw)
	if err != nil {
		c.err = errors.NewStoreError("find", c.collection, -1, err)
		return false
	}
	c.current = rec
	return true
}

func (c *cursor) Record() *record.Record { return c.current }

func (c *cursor) Err() error { return c.err }

func (c *cursor) Close(context.Context) error { return c.rows.Close() }
