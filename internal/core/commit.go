package core

import (
	"context"
	"fmt"

	"github.com/JonMunkholm/catalogimport/internal/database"
	"github.com/JonMunkholm/catalogimport/internal/logging"
)

// Commit writes batch in one transaction of gw.
//
// Categories are upserted by name, so names that already exist are reused
// and not counted. Products and reviews are always inserted. Any failure,
// including a cancelled ctx, rolls the transaction back and returns a
// *CommitError; no row of the batch is then visible.
func Commit(ctx context.Context, gw database.Gateway, batch *ResolvedBatch) (Counts, error) {
	log := logging.FromContext(ctx)

	tx, err := gw.Begin(ctx)
	if err != nil {
		return Counts{}, &CommitError{Op: "begin transaction", Err: err}
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		// The caller's ctx may be the reason we are rolling back.
		if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil {
			log.Error("rollback failed", "error", rbErr)
		}
	}()

	var counts Counts

	categoryIDs := make([]int64, len(batch.Categories))
	for i, c := range batch.Categories {
		id, created, err := tx.UpsertCategoryByName(ctx, database.CategoryParams{
			Name:        c.Name,
			Description: c.Description,
		})
		if err != nil {
			return Counts{}, &CommitError{Op: fmt.Sprintf("upsert category %q (row %d)", c.Name, c.Row), Err: err}
		}
		categoryIDs[i] = id
		if created {
			counts.Categories++
		}
	}

	productIDs := make([]int64, len(batch.Products))
	for i, p := range batch.Products {
		id, err := tx.InsertProduct(ctx, database.ProductParams{
			Name:        p.Name,
			Description: p.Description,
			Price:       p.Price,
			CategoryID:  categoryIDs[p.Category],
		})
		if err != nil {
			return Counts{}, &CommitError{Op: fmt.Sprintf("insert product %q (row %d)", p.Name, p.Row), Err: err}
		}
		productIDs[i] = id
		counts.Products++
	}

	for _, r := range batch.Reviews {
		_, err := tx.InsertReview(ctx, database.ReviewParams{
			ProductID:    productIDs[r.Product],
			CustomerName: r.CustomerName,
			Rating:       r.Rating,
			ReviewText:   r.ReviewText,
		})
		if err != nil {
			return Counts{}, &CommitError{Op: fmt.Sprintf("insert review (row %d)", r.Row), Err: err}
		}
		counts.Reviews++
	}

	if err := tx.Commit(ctx); err != nil {
		return Counts{}, &CommitError{Op: "commit transaction", Err: err}
	}
	committed = true

	log.Debug("batch committed",
		"categories", counts.Categories,
		"products", counts.Products,
		"reviews", counts.Reviews,
	)
	return counts, nil
}
