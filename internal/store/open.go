package store

import (
	"context"
	"fmt"
	"strings"

	"edluar/pipeline/internal/db"
	"edluar/pipeline/internal/pipeline"
)

// Backend is a repository that owns its connection.
type Backend interface {
	pipeline.Repository
	Migrate(ctx context.Context) error
	Close() error
}

// Open connects to the database named by databaseURL:
//
//	postgres://… or postgresql://…  → PostgreSQL
//	sqlite:path, sqlite://path       → SQLite file
//
// The returned backend is not migrated.
func Open(ctx context.Context, databaseURL string) (Backend, error) {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		pool, err := db.NewPostgresPool(ctx, databaseURL)
		if err != nil {
			return nil, err
		}
		return NewPostgres(pool), nil
	case strings.HasPrefix(databaseURL, "sqlite:"):
		path := strings.TrimPrefix(strings.TrimPrefix(databaseURL, "sqlite:"), "//")
		if path == "" {
			return nil, fmt.Errorf("database url %q has no file path", databaseURL)
		}
		sdb, err := db.OpenSQLite(ctx, path)
		if err != nil {
			return nil, err
		}
		return NewSQLite(sdb), nil
	}
	return nil, fmt.Errorf("unsupported database url %q (want sqlite:<path> or postgres://…)", databaseURL)
}
