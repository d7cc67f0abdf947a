package database

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// startPostgres runs a throwaway PostgreSQL server and returns a pool on it.
func startPostgres(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping PostgreSQL integration test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "catalog",
			"POSTGRES_PASSWORD": "catalog",
			"POSTGRES_DB":       "catalog",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { pgContainer.Terminate(context.Background()) })

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	port, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://catalog:catalog@%s:%s/catalog?sslmode=disable", host, port.Port())
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, pool.Ping(ctx))
	return pool
}

func TestIntegration_Postgres(t *testing.T) {
	ctx := context.Background()
	pool := startPostgres(ctx, t)
	gw := NewPostgres(pool)

	require.NoError(t, gw.EnsureSchema(ctx))
	// Applying twice is harmless.
	require.NoError(t, gw.EnsureSchema(ctx))

	reset := func(t *testing.T) {
		t.Helper()
		_, err := pool.Exec(ctx, "TRUNCATE reviews, products, categories RESTART IDENTITY CASCADE")
		require.NoError(t, err)
	}

	t.Run("upsert category reports creation once", func(t *testing.T) {
		reset(t)

		tx, err := gw.Begin(ctx)
		require.NoError(t, err)
		defer tx.Rollback(ctx)

		id, created, err := tx.UpsertCategoryByName(ctx, CategoryParams{Name: "Electronics"})
		require.NoError(t, err)
		assert.True(t, created)

		again, created, err := tx.UpsertCategoryByName(ctx, CategoryParams{Name: "Electronics", Description: "Devices"})
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, id, again)

		_, _, err = tx.UpsertCategoryByName(ctx, CategoryParams{Name: "Electronics", Description: "Gadgets"})
		require.NoError(t, err)
		require.NoError(t, tx.Commit(ctx))

		var desc string
		require.NoError(t, pool.QueryRow(ctx, "SELECT description FROM categories WHERE id = $1", id).Scan(&desc))
		assert.Equal(t, "Devices", desc, "first non-empty description wins")

		counts, err := gw.CountCatalog(ctx)
		require.NoError(t, err)
		assert.Equal(t, CatalogCounts{Categories: 1}, counts)
	})

	t.Run("product price keeps cents", func(t *testing.T) {
		reset(t)

		tx, err := gw.Begin(ctx)
		require.NoError(t, err)
		defer tx.Rollback(ctx)

		catID, _, err := tx.UpsertCategoryByName(ctx, CategoryParams{Name: "Sports"})
		require.NoError(t, err)
		productID, err := tx.InsertProduct(ctx, ProductParams{
			Name:       "Running Shoes",
			Price:      decimal.RequireFromString("89.99"),
			CategoryID: catID,
		})
		require.NoError(t, err)
		_, err = tx.InsertReview(ctx, ReviewParams{ProductID: productID, CustomerName: "Ann", Rating: 5, ReviewText: "light"})
		require.NoError(t, err)
		require.NoError(t, tx.Commit(ctx))

		var price string
		var desc *string
		require.NoError(t, pool.QueryRow(ctx, "SELECT price::text, description FROM products WHERE id = $1", productID).Scan(&price, &desc))
		assert.Equal(t, "89.99", price)
		assert.Nil(t, desc, "empty description is stored as NULL")

		counts, err := gw.CountCatalog(ctx)
		require.NoError(t, err)
		assert.Equal(t, CatalogCounts{Categories: 1, Products: 1, Reviews: 1}, counts)
	})

	t.Run("failed statement rolls back the whole import", func(t *testing.T) {
		reset(t)

		tx, err := gw.Begin(ctx)
		require.NoError(t, err)

		catID, _, err := tx.UpsertCategoryByName(ctx, CategoryParams{Name: "Books"})
		require.NoError(t, err)
		productID, err := tx.InsertProduct(ctx, ProductParams{Name: "Atlas", Price: decimal.NewFromInt(30), CategoryID: catID})
		require.NoError(t, err)

		_, err = tx.InsertReview(ctx, ReviewParams{ProductID: productID, CustomerName: "Bob", Rating: 9})
		require.Error(t, err, "rating check constraint")

		require.NoError(t, tx.Rollback(ctx))

		counts, err := gw.CountCatalog(ctx)
		require.NoError(t, err)
		assert.Equal(t, CatalogCounts{}, counts)
	})

	t.Run("rollback after commit is a no-op", func(t *testing.T) {
		reset(t)

		tx, err := gw.Begin(ctx)
		require.NoError(t, err)
		_, _, err = tx.UpsertCategoryByName(ctx, CategoryParams{Name: "Garden"})
		require.NoError(t, err)
		require.NoError(t, tx.Commit(ctx))

		assert.NoError(t, tx.Rollback(ctx))

		counts, err := gw.CountCatalog(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), counts.Categories)
	})
}
