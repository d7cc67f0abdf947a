package database

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

//go:embed schema.sql
var schemaSQL string

// Schema returns the PostgreSQL DDL for the catalog tables.
func Schema() string {
	return schemaSQL
}

// Beginner starts pgx transactions. Satisfied by *pgxpool.Pool and *pgx.Conn.
type Beginner interface {
	DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Postgres is the Gateway backed by a pgx pool.
type Postgres struct {
	db Beginner
}

// NewPostgres returns a Gateway that runs every import on db.
func NewPostgres(db Beginner) *Postgres {
	return &Postgres{db: db}
}

// Begin opens a read-committed transaction.
func (p *Postgres) Begin(ctx context.Context) (Tx, error) {
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &pgTx{tx: tx, q: New(tx)}, nil
}

// EnsureSchema creates the catalog tables when they do not exist yet.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// CountCatalog returns the current table sizes.
func (p *Postgres) CountCatalog(ctx context.Context) (CatalogCounts, error) {
	return New(p.db).CountCatalog(ctx)
}

type pgTx struct {
	tx pgx.Tx
	q  *Queries
}

func (t *pgTx) UpsertCategoryByName(ctx context.Context, arg CategoryParams) (int64, bool, error) {
	return t.q.UpsertCategoryByName(ctx, arg)
}

func (t *pgTx) InsertProduct(ctx context.Context, arg ProductParams) (int64, error) {
	return t.q.InsertProduct(ctx, arg)
}

func (t *pgTx) InsertReview(ctx context.Context, arg ReviewParams) (int64, error) {
	return t.q.InsertReview(ctx, arg)
}

func (t *pgTx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

// Rollback treats an already finished transaction as rolled back.
func (t *pgTx) Rollback(ctx context.Context) error {
	err := t.tx.Rollback(ctx)
	if errors.Is(err, pgx.ErrTxClosed) {
		return nil
	}
	return err
}
