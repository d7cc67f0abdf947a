// Package sqlite implements the catalog gateway on an embedded SQLite file.
// It backs the CLI's local mode and the pipeline tests.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/catalogimport/internal/database"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// Gateway is a database.Gateway over database/sql with the modernc driver.
type Gateway struct {
	db *sql.DB
}

var _ database.Gateway = (*Gateway)(nil)

// Open opens (or creates) the database file at path with foreign keys
// enforced. SQLite allows one writer, so the pool is capped at one
// connection.
func Open(path string) (*Gateway, error) {
	dsn := "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	return &Gateway{db: db}, nil
}

// NewFromDB wraps an existing handle.
func NewFromDB(db *sql.DB) *Gateway {
	return &Gateway{db: db}
}

// Close closes the underlying handle.
func (g *Gateway) Close() error {
	return g.db.Close()
}

// EnsureSchema creates the catalog tables when missing.
func (g *Gateway) EnsureSchema(ctx context.Context) error {
	for _, stmt := range strings.Split(schemaSQL, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := g.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// Begin starts a transaction on the single connection.
func (g *Gateway) Begin(ctx context.Context) (database.Tx, error) {
	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &Tx{tx: tx}, nil
}

// CountCatalog returns the current table sizes.
func (g *Gateway) CountCatalog(ctx context.Context) (database.CatalogCounts, error) {
	var c database.CatalogCounts
	err := g.db.QueryRowContext(ctx, countCatalog).Scan(&c.Categories, &c.Products, &c.Reviews)
	return c, err
}

const (
	insertCategory = `INSERT INTO categories (name, description) VALUES (?, ?)
ON CONFLICT (name) DO NOTHING RETURNING id`
	touchCategory = `UPDATE categories SET description = COALESCE(description, ?)
WHERE name = ? RETURNING id`
	insertProduct = `INSERT INTO products (name, description, price, category_id)
VALUES (?, ?, ?, ?) RETURNING id`
	insertReview = `INSERT INTO reviews (product_id, customer_name, rating, review_text)
VALUES (?, ?, ?, ?) RETURNING id`
	countCatalog = `SELECT
	(SELECT COUNT(*) FROM categories),
	(SELECT COUNT(*) FROM products),
	(SELECT COUNT(*) FROM reviews)`
)

// Tx is one SQLite transaction.
type Tx struct {
	tx *sql.Tx
}

// UpsertCategoryByName inserts the category, falling back to updating the
// existing row when the name is taken. Writers are serialized by SQLite so
// the two statements cannot interleave with another import.
func (t *Tx) UpsertCategoryByName(ctx context.Context, arg database.CategoryParams) (int64, bool, error) {
	desc := nullString(arg.Description)

	var id int64
	err := t.tx.QueryRowContext(ctx, insertCategory, arg.Name, desc).Scan(&id)
	if err == nil {
		return id, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, false, err
	}

	if err := t.tx.QueryRowContext(ctx, touchCategory, desc, arg.Name).Scan(&id); err != nil {
		return 0, false, err
	}
	return id, false, nil
}

func (t *Tx) InsertProduct(ctx context.Context, arg database.ProductParams) (int64, error) {
	var id int64
	err := t.tx.QueryRowContext(ctx, insertProduct,
		arg.Name,
		nullString(arg.Description),
		arg.Price.StringFixed(2),
		arg.CategoryID,
	).Scan(&id)
	return id, err
}

func (t *Tx) InsertReview(ctx context.Context, arg database.ReviewParams) (int64, error) {
	var id int64
	err := t.tx.QueryRowContext(ctx, insertReview,
		arg.ProductID,
		arg.CustomerName,
		arg.Rating,
		nullString(arg.ReviewText),
	).Scan(&id)
	return id, err
}

func (t *Tx) Commit(context.Context) error {
	return t.tx.Commit()
}

// Rollback is a no-op on a finished transaction.
func (t *Tx) Rollback(context.Context) error {
	err := t.tx.Rollback()
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	return err
}

func nullString(s string) sql.NullString {
	s = strings.TrimSpace(s)
	return sql.NullString{String: s, Valid: s != ""}
}
