// Package mongo implements the document store on MongoDB.
package mongo

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mieux-choisir/foodmap/internal/store"
	"github.com/mieux-choisir/foodmap/pkg/constants"
	"github.com/mieux-choisir/foodmap/pkg/errors"
	"github.com/mieux-choisir/foodmap/pkg/logging"
	"github.com/mieux-choisir/foodmap/pkg/record"
)

// Store is one client connected to a database.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

var _ store.Store = (*Store)(nil)

// Open connects to uri and selects database.
func Open(ctx context.Context, uri, database string) (*Store, error) {
	connectCtx, cancel := context.WithTimeout(ctx, constants.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().
		ApplyURI(uri).
		SetConnectTimeout(constants.ConnectTimeout).
		SetServerSelectionTimeout(constants.ConnectTimeout))
	if err != nil {
		return nil, errors.NewStoreError("connect", "", -1, err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.NewStoreError("connect", "", -1, err)
	}

	logging.FromContext(ctx).Debug().Str("database", database).Msg("Connected to MongoDB")
	return &Store{client: client, db: client.Database(database)}, nil
}

// Opener returns a store.Opener creating one client per call.
func Opener(uri, database string) store.Opener {
	return func(ctx context.Context) (store.Store, error) {
		return Open(ctx, uri, database)
	}
}

// Find implements store.Reader.
func (s *Store) Find(ctx context.Context, name string) (store.Cursor, error) {
	opts := options.Find().SetSort(bson.D{{Key: constants.FieldIDMatch, Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.db.Collection(name).Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, errors.NewStoreError("find", name, -1, err)
	}
	return &cursor{cur: cur, collection: name}, nil
}

// Count implements store.Reader.
func (s *Store) Count(ctx context.Context, name string) (int64, error) {
	n, err := s.db.Collection(name).CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, errors.NewStoreError("count", name, -1, err)
	}
	return n, nil
}

// EnsureUniqueIndex implements store.Writer.
func (s *Store) EnsureUniqueIndex(ctx context.Context, name string, fields ...string) error {
	keys := make(bson.D, len(fields))
	for i, f := range fields {
		keys[i] = bson.E{Key: f, Value: 1}
	}
	model := mongo.IndexModel{
		Keys:    keys,
		Options: options.Index().SetUnique(true).SetName(strings.Join(fields, "_") + "_unique"),
	}
	if _, err := s.db.Collection(name).Indexes().CreateOne(ctx, model); err != nil {
		return errors.NewStoreError("index", name, -1, classify(err))
	}
	return nil
}

// Upsert implements store.Writer with one unordered bulk write of
// $set upserts keyed by id_match.
func (s *Store) Upsert(ctx context.Context, name string, records []*record.Record) error {
	if len(records) == 0 {
		return nil
	}
	models := make([]mongo.WriteModel, 0, len(records))
	for _, rec := range records {
		id := rec.IDMatch()
		if id == "" {
			return errors.NewStoreError("upsert", name, -1, errors.NewValidationError(constants.FieldIDMatch, "", "required"))
		}
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.D{{Key: constants.FieldIDMatch, Value: id}}).
			SetUpdate(bson.D{{Key: "$set", Value: rec.D()}}).
			SetUpsert(true))
	}
	if _, err := s.db.Collection(name).BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false)); err != nil {
		return errors.NewStoreError("upsert", name, -1, classify(err))
	}
	return nil
}

// Replace implements store.Writer.
func (s *Store) Replace(ctx context.Context, name string, records []*record.Record) error {
	coll := s.db.Collection(name)
	if err := coll.Drop(ctx); err != nil {
		return errors.NewStoreError("replace", name, -1, err)
	}
	if len(records) == 0 {
		return nil
	}
	docs := make([]any, len(records))
	for i, rec := range records {
		docs[i] = rec
	}
	if _, err := coll.InsertMany(ctx, docs); err != nil {
		return errors.NewStoreError("replace", name, -1, classify(err))
	}
	return nil
}

// Drop implements store.Writer.
func (s *Store) Drop(ctx context.Context, name string) error {
	if err := s.db.Collection(name).Drop(ctx); err != nil {
		return errors.NewStoreError("drop", name, -1, err)
	}
	return nil
}

// Close implements store.Store.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func classify(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return errors.Join(errors.ErrDuplicateKey, err)
	}
	return err
}

type cursor struct {
	cur        *mongo.Cursor
	collection string
	current    *record.Record
	err        error
}

func (c *cursor) Next(ctx context.Context) bool {
	if c.err != nil || !c.cur.Next(ctx) {
		return false
	}
	rec, err := record.FromBSON(c.cur.Current)
	if err != nil {
		c.err = errors.NewStoreError("find", c.collection, -1, err)
		return false
	}
	c.current = rec
	return true
}

func (c *cursor) Record() *record.Record { return c.current }

func (c *cursor) Err() error {
	if c.err != nil {
		return c.err
	}
	if err := c.cur.Err(); err != nil {
		return errors.NewStoreError("find", c.collection, -1, err)
	}
	return nil
}

func (c *cursor) Close(ctx context.Context) error { return c.cur.Close(ctx) }
