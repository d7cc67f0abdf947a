package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// The no-op-looking DO UPDATE keeps RETURNING populated on conflict;
// xmax is zero only for a freshly inserted tuple.
const upsertCategoryByName = `
INSERT INTO categories (name, description)
VALUES ($1, $2)
ON CONFLICT (name) DO UPDATE
	SET description = COALESCE(categories.description, EXCLUDED.description)
RETURNING id, (xmax = 0) AS inserted`

// UpsertCategoryByName inserts or updates a category by its unique name.
func (q *Queries) UpsertCategoryByName(ctx context.Context, arg CategoryParams) (int64, bool, error) {
	var id int64
	var inserted bool
	err := q.db.QueryRow(ctx, upsertCategoryByName, arg.Name, toPgText(arg.Description)).Scan(&id, &inserted)
	return id, inserted, err
}

const insertProduct = `
INSERT INTO products (name, description, price, category_id)
VALUES ($1, $2, $3, $4)
RETURNING id`

// InsertProduct creates a product row. Products have no natural key, so
// this never deduplicates.
func (q *Queries) InsertProduct(ctx context.Context, arg ProductParams) (int64, error) {
	price, err := toPgNumeric(arg.Price)
	if err != nil {
		return 0, err
	}
	var id int64
	err = q.db.QueryRow(ctx, insertProduct,
		arg.Name,
		toPgText(arg.Description),
		price,
		arg.CategoryID,
	).Scan(&id)
	return id, err
}

const insertReview = `
INSERT INTO reviews (product_id, customer_name, rating, review_text)
VALUES ($1, $2, $3, $4)
RETURNING id`

// InsertReview creates a review row.
func (q *Queries) InsertReview(ctx context.Context, arg ReviewParams) (int64, error) {
	var id int64
	err := q.db.QueryRow(ctx, insertReview,
		arg.ProductID,
		arg.CustomerName,
		int32(arg.Rating),
		toPgText(arg.ReviewText),
	).Scan(&id)
	return id, err
}

const countCatalog = `
SELECT
	(SELECT COUNT(*) FROM categories),
	(SELECT COUNT(*) FROM products),
	(SELECT COUNT(*) FROM reviews)`

// CountCatalog returns the row count of every catalog table.
func (q *Queries) CountCatalog(ctx context.Context) (CatalogCounts, error) {
	var c CatalogCounts
	err := q.db.QueryRow(ctx, countCatalog).Scan(&c.Categories, &c.Products, &c.Reviews)
	return c, err
}

func toPgText(s string) pgtype.Text {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

func toPgNumeric(d decimal.Decimal) (pgtype.Numeric, error) {
	var n pgtype.Numeric
	if err := n.Scan(d.String()); err != nil {
		return pgtype.Numeric{}, fmt.Errorf("convert price %s: %w", d, err)
	}
	return n, nil
}
