package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/eddm-planner/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock satisfies it
// for tests.
type Pool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresFromPool wraps an existing pool; used by tests.
func NewPostgresFromPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS route_batches (
	zip        TEXT PRIMARY KEY,
	fetched_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	expires_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS routes (
	id          TEXT PRIMARY KEY,
	zip         TEXT NOT NULL REFERENCES route_batches(zip) ON DELETE CASCADE,
	residential INTEGER NOT NULL,
	business    INTEGER NOT NULL,
	avg_income  DOUBLE PRECISION,
	median_age  DOUBLE PRECISION,
	geom        BYTEA
);

CREATE TABLE IF NOT EXISTS demo_cache (
	zcta       TEXT PRIMARY KEY,
	avg_income DOUBLE PRECISION,
	median_age DOUBLE PRECISION,
	cached_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	expires_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_routes_zip ON routes(zip);
CREATE INDEX IF NOT EXISTS idx_route_batches_expires_at ON route_batches(expires_at);
CREATE INDEX IF NOT EXISTS idx_demo_cache_expires_at ON demo_cache(expires_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.pool.Ping(ctx), "postgres: ping")
}

func (s *PostgresStore) GetRouteBatch(ctx context.Context, zip string) ([]model.Route, bool, error) {
	var got string
	err := s.pool.QueryRow(ctx,
		`SELECT zip FROM route_batches WHERE zip = $1 AND expires_at > now()`,
		zip,
	).Scan(&got)
	if err == pgx.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, eris.Wrapf(err, "postgres: get batch %s", zip)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, residential, business, avg_income, median_age, geom
		 FROM routes WHERE zip = $1 ORDER BY id`,
		zip,
	)
	if err != nil {
		return nil, false, eris.Wrapf(err, "postgres: get routes %s", zip)
	}
	defer rows.Close()

	var routes []model.Route
	for rows.Next() {
		var (
			id          string
			res, bus    int
			income, age *float64
			geomBytes   []byte
		)
		if err := rows.Scan(&id, &res, &bus, &income, &age, &geomBytes); err != nil {
			return nil, false, eris.Wrap(err, "postgres: scan route")
		}
		rings, err := DecodeRings(geomBytes)
		if err != nil {
			return nil, false, eris.Wrapf(err, "postgres: decode route %s", id)
		}
		var demo *model.Demographics
		if income != nil || age != nil {
			demo = &model.Demographics{AverageIncome: income, MedianAge: age}
		}
		routes = append(routes, model.NewRoute(id, zip, rings, res, bus, demo))
	}
	if err := rows.Err(); err != nil {
		return nil, false, eris.Wrapf(err, "postgres: iterate routes %s", zip)
	}
	return routes, true, nil
}

func (s *PostgresStore) PutRouteBatch(ctx context.Context, zip string, routes []model.Route, ttl time.Duration) error {
	now := time.Now().UTC()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin")
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM route_batches WHERE zip = $1`, zip); err != nil {
		return eris.Wrapf(err, "postgres: clear batch %s", zip)
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO route_batches (zip, fetched_at, expires_at) VALUES ($1, $2, $3)`,
		zip, now, now.Add(ttl),
	); err != nil {
		return eris.Wrapf(err, "postgres: insert batch %s", zip)
	}

	for _, r := range routes {
		geomBytes, err := EncodeRings(r.Coordinates)
		if err != nil {
			return eris.Wrapf(err, "postgres: encode route %s", r.ID)
		}
		var income, age *float64
		if r.Demographics != nil {
			income, age = r.Demographics.AverageIncome, r.Demographics.MedianAge
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO routes (id, zip, residential, business, avg_income, median_age, geom)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			r.ID, zip, r.ResidentialCount, r.BusinessCount, income, age, geomBytes,
		); err != nil {
			return eris.Wrapf(err, "postgres: insert route %s", r.ID)
		}
	}

	return eris.Wrap(tx.Commit(ctx), "postgres: commit batch")
}

func (s *PostgresStore) GetDemographics(ctx context.Context, zcta string) (*model.Demographics, bool, error) {
	var income, age *float64
	err := s.pool.QueryRow(ctx,
		`SELECT avg_income, median_age FROM demo_cache
		 WHERE zcta = $1 AND expires_at > now()`,
		zcta,
	).Scan(&income, &age)
	if err == pgx.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, eris.Wrapf(err, "postgres: get demographics %s", zcta)
	}
	return &model.Demographics{AverageIncome: income, MedianAge: age}, true, nil
}

func (s *PostgresStore) PutDemographics(ctx context.Context, zcta string, demo model.Demographics, ttl time.Duration) error {
	now := time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO demo_cache (zcta, avg_income, median_age, cached_at, expires_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (zcta) DO UPDATE SET
		   avg_income = EXCLUDED.avg_income,
		   median_age = EXCLUDED.median_age,
		   cached_at  = EXCLUDED.cached_at,
		   expires_at = EXCLUDED.expires_at`,
		zcta, demo.AverageIncome, demo.MedianAge, now, now.Add(ttl),
	)
	return eris.Wrapf(err, "postgres: put demographics %s", zcta)
}

func (s *PostgresStore) DeleteExpired(ctx context.Context) (int, error) {
	var total int64

	tag, err := s.pool.Exec(ctx, `DELETE FROM route_batches WHERE expires_at <= now()`)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: delete expired batches")
	}
	total += tag.RowsAffected()

	tag, err = s.pool.Exec(ctx, `DELETE FROM demo_cache WHERE expires_at <= now()`)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: delete expired demographics")
	}
	total += tag.RowsAffected()

	return int(total), nil
}
