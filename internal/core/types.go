package core

import (
	"io"

	"github.com/shopspring/decimal"
)

// Column names recognised in the header row. Matching is case-insensitive.
const (
	ColProductName         = "product_name"
	ColProductDescription  = "product_description"
	ColCategoryName        = "category_name"
	ColCategoryDescription = "category_description"
	ColPrice               = "price"
	ColCustomerName        = "customer_name"
	ColRating              = "rating"
	ColReviewText          = "review_text"
)

// Source is an import file: its bytes plus the declared name and MIME type
// used to choose a decoder.
type Source interface {
	Name() string
	ContentType() string
	Open() (io.ReadCloser, error)
}

// Releaser is implemented by sources backed by temporary storage.
type Releaser interface {
	Release() error
}

// RawRecord is one decoded data row. Row is the 1-based position of the row
// after the header.
type RawRecord struct {
	Row    int
	Fields map[string]string
}

// Get returns the value of column col, or "" when the file has no such column.
func (r RawRecord) Get(col string) string {
	return r.Fields[col]
}

// ValidatedRecord is a row whose required fields are present and whose
// price and rating passed their domain checks. Optional fields are "" when
// absent.
type ValidatedRecord struct {
	Row                 int
	ProductName         string
	ProductDescription  string
	CategoryName        string
	CategoryDescription string
	Price               decimal.Decimal
	CustomerName        string
	Rating              int
	ReviewText          string
}

// CategoryRef indexes ResolvedBatch.Categories.
type CategoryRef int

// ProductRef indexes ResolvedBatch.Products.
type ProductRef int

// NewCategory is a category to upsert. Row is where it first appeared.
type NewCategory struct {
	Row         int
	Name        string
	Description string
}

// NewProduct is a product to insert under Category.
type NewProduct struct {
	Row         int
	Name        string
	Description string
	Price       decimal.Decimal
	Category    CategoryRef
}

// NewReview is a review of Product. Every valid row yields exactly one.
type NewReview struct {
	Row          int
	Product      ProductRef
	CustomerName string
	Rating       int
	ReviewText   string
}

// ResolvedBatch is the deduplicated entity graph of one import. References
// between entities are batch-local indexes that the committer replaces with
// database ids.
type ResolvedBatch struct {
	Categories []NewCategory
	Products   []NewProduct
	Reviews    []NewReview
}

// Counts are the rows actually created by a commit.
type Counts struct {
	Categories int
	Products   int
	Reviews    int
}

// ImportResult summarizes one import.
type ImportResult struct {
	ImportID        string     `json:"importId"`
	FileName        string     `json:"fileName"`
	TotalRows       int        `json:"totalRows"`
	CategoriesAdded int        `json:"categoriesAdded"`
	ProductsAdded   int        `json:"productsAdded"`
	ReviewsAdded    int        `json:"reviewsAdded"`
	RowErrors       []RowError `json:"rowErrors,omitempty"`
	DurationMs      int64      `json:"durationMs"`
}

