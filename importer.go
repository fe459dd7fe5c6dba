package foodmap

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/mieux-choisir/foodmap/pkg/constants"
	"github.com/mieux-choisir/foodmap/pkg/errors"
	"github.com/mieux-choisir/foodmap/pkg/logging"
	"github.com/mieux-choisir/foodmap/pkg/persistence"
	"github.com/mieux-choisir/foodmap/pkg/product"
	"github.com/mieux-choisir/foodmap/pkg/record"
)

// Importer persists raw catalog records.
type Importer interface {
	// Import resolves the categories of records and upserts them into the
	// catalog's collection. The input records are not modified.
	Import(ctx context.Context, catalog product.Catalog, records []*record.Record) (*ImportResult, error)

	// ImportFile reads one extended-JSON document per line and imports it.
	ImportFile(ctx context.Context, catalog product.Catalog, path string) (*ImportResult, error)
}

// ImportResult reports one import.
type ImportResult struct {
	RunID      string              `json:"run_id" yaml:"run_id"`
	Catalog    product.Catalog     `json:"catalog" yaml:"catalog"`
	Collection string              `json:"collection" yaml:"collection"`
	Write      *persistence.Result `json:"write" yaml:"write"`
}

// Import implements Importer.
func (c *client) Import(ctx context.Context, catalog product.Catalog, records []*record.Record) (*ImportResult, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	started := time.Now()
	ctx, runID := withRunID(ctx)
	ctx = logging.WithCatalog(ctx, catalog.String())
	ctx = logging.WithOperation(ctx, string(StageImport))

	collection, err := c.options.collections.Catalog(catalog)
	if err != nil {
		return nil, err
	}
	resolver, err := c.Resolver(ctx)
	if err != nil {
		return nil, err
	}

	attached := make([]*record.Record, 0, len(records))
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return nil, errors.Join(errors.ErrCanceled, err)
		}
		rec = rec.Clone()
		resolver.Attach(ctx, rec, catalog)
		attached = append(attached, rec)
	}

	res, err := c.writer.Write(ctx, collection, attached)
	out := &ImportResult{RunID: runID, Catalog: catalog, Collection: collection, Write: res}
	if err != nil {
		return out, err
	}
	c.hooks.stageCompleted(StageImport, started)
	return out, nil
}

// ImportFile implements Importer.
func (c *client) ImportFile(ctx context.Context, catalog product.Catalog, path string) (*ImportResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	defer f.Close() //nolint:errcheck // read only

	records, err := ReadRecords(ctx, f, path)
	if err != nil {
		return nil, err
	}
	return c.Import(ctx, catalog, records)
}

// ReadRecords decodes one extended-JSON document per line. Blank lines
// are ignored. name identifies the input in errors.
func ReadRecords(ctx context.Context, r io.Reader, name string) ([]*record.Record, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), constants.ScannerBufferSize)

	var records []*record.Record
	line := 0
	for scanner.Scan() {
		line++
		if err := ctx.Err(); err != nil {
			return nil, errors.Join(errors.ErrCanceled, err)
		}
		text := scanner.Bytes()
		if len(bytes.TrimSpace(text)) == 0 {
			continue
		}
		rec, err := record.FromExtJSON(text)
		if err != nil {
			return nil, errors.NewParseError("extjson", name, fmt.Sprintf("line %d", line), err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.WrapIO("read", name, err)
	}
	logging.FromContext(ctx).Debug().Str("file", name).Int("records", len(records)).Msg("Read records")
	return records, nil
}

// withRunID tags ctx with a fresh run id unless it carries one.
func withRunID(ctx context.Context) (context.Context, string) {
	if id := logging.RunID(ctx); id != "" {
		return ctx, id
	}
	id := uuid.NewString()
	return logging.WithRunID(ctx, id), id
}
