package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/eddm-planner/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS route_batches (
	zip        TEXT PRIMARY KEY,
	fetched_at DATETIME NOT NULL DEFAULT (datetime('now')),
	expires_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS routes (
	id          TEXT PRIMARY KEY,
	zip         TEXT NOT NULL REFERENCES route_batches(zip) ON DELETE CASCADE,
	residential INTEGER NOT NULL,
	business    INTEGER NOT NULL,
	avg_income  REAL,
	median_age  REAL,
	geom        BLOB
);

CREATE TABLE IF NOT EXISTS demo_cache (
	zcta       TEXT PRIMARY KEY,
	avg_income REAL,
	median_age REAL,
	cached_at  DATETIME NOT NULL DEFAULT (datetime('now')),
	expires_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_routes_zip ON routes(zip);
CREATE INDEX IF NOT EXISTS idx_route_batches_expires_at ON route_batches(expires_at);
CREATE INDEX IF NOT EXISTS idx_demo_cache_expires_at ON demo_cache(expires_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) GetRouteBatch(ctx context.Context, zip string) ([]model.Route, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT zip FROM route_batches WHERE zip = ? AND expires_at > datetime('now')`,
		zip,
	)
	var got string
	if err := row.Scan(&got); err == sql.ErrNoRows {
		return nil, false, nil
	} else if err != nil {
		return nil, false, eris.Wrapf(err, "sqlite: get batch %s", zip)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, residential, business, avg_income, median_age, geom
		 FROM routes WHERE zip = ? ORDER BY id`,
		zip,
	)
	if err != nil {
		return nil, false, eris.Wrapf(err, "sqlite: get routes %s", zip)
	}
	defer rows.Close()

	var routes []model.Route
	for rows.Next() {
		var (
			id        string
			res, bus  int
			income    sql.NullFloat64
			age       sql.NullFloat64
			geomBytes []byte
		)
		if err := rows.Scan(&id, &res, &bus, &income, &age, &geomBytes); err != nil {
			return nil, false, eris.Wrap(err, "sqlite: scan route")
		}
		rings, err := DecodeRings(geomBytes)
		if err != nil {
			return nil, false, eris.Wrapf(err, "sqlite: decode route %s", id)
		}
		routes = append(routes, model.NewRoute(id, zip, rings, res, bus, scanDemographics(income, age)))
	}
	if err := rows.Err(); err != nil {
		return nil, false, eris.Wrapf(err, "sqlite: iterate routes %s", zip)
	}
	return routes, true, nil
}

func (s *SQLiteStore) PutRouteBatch(ctx context.Context, zip string, routes []model.Route, ttl time.Duration) error {
	now := time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM route_batches WHERE zip = ?`, zip); err != nil {
		return eris.Wrapf(err, "sqlite: clear batch %s", zip)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO route_batches (zip, fetched_at, expires_at) VALUES (?, ?, ?)`,
		zip, now, now.Add(ttl),
	); err != nil {
		return eris.Wrapf(err, "sqlite: insert batch %s", zip)
	}

	for _, r := range routes {
		geomBytes, err := EncodeRings(r.Coordinates)
		if err != nil {
			return eris.Wrapf(err, "sqlite: encode route %s", r.ID)
		}
		income, age := demographicsParams(r.Demographics)
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO routes (id, zip, residential, business, avg_income, median_age, geom)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			r.ID, zip, r.ResidentialCount, r.BusinessCount, income, age, geomBytes,
		); err != nil {
			return eris.Wrapf(err, "sqlite: insert route %s", r.ID)
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit batch")
}

func (s *SQLiteStore) GetDemographics(ctx context.Context, zcta string) (*model.Demographics, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT avg_income, median_age FROM demo_cache
		 WHERE zcta = ? AND expires_at > datetime('now')`,
		zcta,
	)
	var income, age sql.NullFloat64
	if err := row.Scan(&income, &age); err == sql.ErrNoRows {
		return nil, false, nil
	} else if err != nil {
		return nil, false, eris.Wrapf(err, "sqlite: get demographics %s", zcta)
	}
	demo := scanDemographics(income, age)
	if demo == nil {
		demo = &model.Demographics{}
	}
	return demo, true, nil
}

func (s *SQLiteStore) PutDemographics(ctx context.Context, zcta string, demo model.Demographics, ttl time.Duration) error {
	now := time.Now().UTC()
	income, age := demographicsParams(&demo)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO demo_cache (zcta, avg_income, median_age, cached_at, expires_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(zcta) DO UPDATE SET
		   avg_income = excluded.avg_income,
		   median_age = excluded.median_age,
		   cached_at  = excluded.cached_at,
		   expires_at = excluded.expires_at`,
		zcta, income, age, now, now.Add(ttl),
	)
	return eris.Wrapf(err, "sqlite: put demographics %s", zcta)
}

func (s *SQLiteStore) DeleteExpired(ctx context.Context) (int, error) {
	var total int64

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM route_batches WHERE expires_at <= datetime('now')`,
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: delete expired batches")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: rows affected")
	}
	total += n

	res, err = s.db.ExecContext(ctx,
		`DELETE FROM demo_cache WHERE expires_at <= datetime('now')`,
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: delete expired demographics")
	}
	n, err = res.RowsAffected()
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: rows affected")
	}
	total += n

	return int(total), nil
}

// helpers shared with the postgres backend

func scanDemographics(income, age sql.NullFloat64) *model.Demographics {
	if !income.Valid && !age.Valid {
		return nil
	}
	demo := &model.Demographics{}
	if income.Valid {
		v := income.Float64
		demo.AverageIncome = &v
	}
	if age.Valid {
		v := age.Float64
		demo.MedianAge = &v
	}
	return demo
}

func demographicsParams(demo *model.Demographics) (income, age any) {
	if demo == nil {
		return nil, nil
	}
	if demo.AverageIncome != nil {
		income = *demo.AverageIncome
	}
	if demo.MedianAge != nil {
		age = *demo.MedianAge
	}
	return income, age
}
