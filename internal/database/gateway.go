package database

import (
	"context"

	"github.com/shopspring/decimal"
)

// CategoryParams are the values written by an upsert on categories.
// An empty Description is stored as NULL.
type CategoryParams struct {
	Name        string
	Description string
}

// ProductParams are the values of one new products row.
type ProductParams struct {
	Name        string
	Description string
	Price       decimal.Decimal
	CategoryID  int64
}

// ReviewParams are the values of one new reviews row.
type ReviewParams struct {
	ProductID    int64
	CustomerName string
	Rating       int
	ReviewText   string
}

// CatalogCounts is the number of rows in each catalog table.
type CatalogCounts struct {
	Categories int64 `json:"categories"`
	Products   int64 `json:"products"`
	Reviews    int64 `json:"reviews"`
}

// Gateway opens transactions against the catalog store.
type Gateway interface {
	Begin(ctx context.Context) (Tx, error)
}

// Tx is one open transaction. Every statement of an import runs on the same
// Tx; nothing is visible to other readers until Commit succeeds.
type Tx interface {
	// UpsertCategoryByName inserts the category or, when the name already
	// exists, updates it in place. It returns the row id and whether the
	// row was created by this call.
	UpsertCategoryByName(ctx context.Context, arg CategoryParams) (id int64, created bool, err error)
	InsertProduct(ctx context.Context, arg ProductParams) (int64, error)
	InsertReview(ctx context.Context, arg ReviewParams) (int64, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}
