package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/catalogimport/internal/config"
	"github.com/JonMunkholm/catalogimport/internal/database"
	"github.com/JonMunkholm/catalogimport/internal/database/sqlite"
)

var errNoDatabase = errors.New("no database given: pass --db or set DATABASE_URL")

type catalogStore interface {
	database.Gateway
	EnsureSchema(ctx context.Context) error
	CountCatalog(ctx context.Context) (database.CatalogCounts, error)
}

// openStore connects to the database named by url. The returned func
// closes it.
func openStore(ctx context.Context, url string) (catalogStore, func(), error) {
	switch {
	case url == "":
		return nil, nil, errNoDatabase
	case strings.HasPrefix(url, config.SQLitePrefix):
		path := strings.TrimPrefix(url, config.SQLitePrefix)
		if path == "" {
			return nil, nil, fmt.Errorf("sqlite URL needs a path: %q", url)
		}
		gw, err := sqlite.Open(path)
		if err != nil {
			return nil, nil, err
		}
		return gw, func() { gw.Close() }, nil
	default:
		pool, err := pgxpool.New(ctx, url)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to postgres: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("ping postgres: %w", err)
		}
		return database.NewPostgres(pool), pool.Close, nil
	}
}
