// Package store caches fetched route batches and ZCTA demographics so
// repeated planning sessions do not re-hit the USPS and Census APIs. Two
// backends implement the same interface: an embedded SQLite database for
// single-user CLI work and Postgres for the shared server deployment.
package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/eddm-planner/internal/config"
	"github.com/sells-group/eddm-planner/internal/model"
)

// Store defines the cache interface.
type Store interface {
	// Route cache, keyed by ZIP. A hit returns the batch that was fetched
	// together; expired batches are a miss, not an error.
	GetRouteBatch(ctx context.Context, zip string) ([]model.Route, bool, error)
	PutRouteBatch(ctx context.Context, zip string, routes []model.Route, ttl time.Duration) error

	// Demographics cache, keyed by ZCTA.
	GetDemographics(ctx context.Context, zcta string) (*model.Demographics, bool, error)
	PutDemographics(ctx context.Context, zcta string, demo model.Demographics, ttl time.Duration) error

	// DeleteExpired removes expired batches and demographics rows and
	// reports how many entries were dropped.
	DeleteExpired(ctx context.Context) (int, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Open creates the store selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "sqlite":
		return NewSQLite(cfg.Path)
	case "postgres":
		return NewPostgres(ctx, cfg.DatabaseURL)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
}
