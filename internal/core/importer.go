package core

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/catalogimport/internal/database"
	"github.com/JonMunkholm/catalogimport/internal/logging"
)

// Importer runs the decode, validate, resolve and commit stages for one file
// at a time. It holds no per-import state and is safe for concurrent use.
type Importer struct {
	gw database.Gateway
}

// NewImporter returns an Importer that commits through gw.
func NewImporter(gw database.Gateway) *Importer {
	return &Importer{gw: gw}
}

// Import loads src into the catalog.
//
// Decoding, empty-batch and commit failures return a nil result and an error
// matching one of the package sentinels. Rows that fail validation are
// reported in the result while the remaining rows are committed. When no row
// is valid nothing is written and the result carries only the row errors.
//
// If src implements Releaser it is released before Import returns, on every
// path including a panic.
func (im *Importer) Import(ctx context.Context, src Source) (result *ImportResult, err error) {
	if rel, ok := src.(Releaser); ok {
		defer func() {
			if relErr := rel.Release(); relErr != nil {
				logging.FromContext(ctx).Warn("release import file failed", "file", src.Name(), "error", relErr)
			}
		}()
	}

	importID := uuid.NewString()
	ctx = logging.WithImportID(ctx, importID)
	log := logging.WithFields(ctx, "file", src.Name())
	start := time.Now()

	records, err := Decode(src)
	if err != nil {
		log.Warn("decode failed", "error", err)
		return nil, err
	}
	log.Debug("decoded", "records", len(records))

	valid, rowErrs, err := Validate(records)
	if err != nil {
		log.Warn("validation failed", "error", err)
		return nil, err
	}
	log.Debug("validated", "valid", len(valid), "invalid", len(rowErrs))

	result = &ImportResult{
		ImportID:  importID,
		FileName:  src.Name(),
		TotalRows: len(records),
		RowErrors: rowErrs,
	}

	if len(valid) == 0 {
		result.finish(start)
		log.Warn("no valid rows to import", "row_errors", len(rowErrs))
		return result, nil
	}

	batch := Resolve(valid)
	log.Debug("resolved",
		"categories", len(batch.Categories),
		"products", len(batch.Products),
		"reviews", len(batch.Reviews),
	)

	counts, err := Commit(ctx, im.gw, batch)
	if err != nil {
		log.Error("import commit failed", "error", err)
		return nil, err
	}

	result.CategoriesAdded = counts.Categories
	result.ProductsAdded = counts.Products
	result.ReviewsAdded = counts.Reviews
	result.finish(start)

	log.Info("import completed",
		"total_rows", result.TotalRows,
		"categories_added", result.CategoriesAdded,
		"products_added", result.ProductsAdded,
		"reviews_added", result.ReviewsAdded,
		"row_errors", len(result.RowErrors),
		"duration_ms", result.DurationMs,
	)
	return result, nil
}

func (r *ImportResult) finish(start time.Time) {
	r.DurationMs = time.Since(start).Milliseconds()
}
