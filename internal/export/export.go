// Package export writes enumerated source models and ruptures to postgres.
package export

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/hazard-cli/internal/db"
	"github.com/sells-group/hazard-cli/internal/model"
	"github.com/sells-group/hazard-cli/internal/retry"
)

// Exporter streams source sets and their ruptures into postgres using the
// COPY protocol, batching rows to bound memory.
type Exporter struct {
	pool      db.Pool
	closeFn   func()
	batchSize int
	retryCfg  retry.Config
	log       *zap.Logger
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithBatchSize sets the COPY batch size.
func WithBatchSize(n int) Option {
	return func(e *Exporter) {
		if n > 0 {
			e.batchSize = n
		}
	}
}

// WithLogger sets the exporter logger.
func WithLogger(log *zap.Logger) Option {
	return func(e *Exporter) {
		if log != nil {
			e.log = log
		}
	}
}

// WithRetry overrides the transient-failure retry policy.
func WithRetry(cfg retry.Config) Option {
	return func(e *Exporter) {
		e.retryCfg = cfg
	}
}

// New connects to postgres and returns an Exporter.
func New(ctx context.Context, connString string, opts ...Option) (*Exporter, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "export: parse config")
	}
	pgxCfg.MaxConns = 4
	pgxCfg.MaxConnLifetime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "export: create pool")
	}
	e := NewWithPool(pool, opts...)
	if err := retry.Do(ctx, e.retryCfg, "ping postgres", pool.Ping); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "export: ping")
	}
	e.closeFn = pool.Close
	return e, nil
}

// NewWithPool wraps an existing pool; the caller owns its lifecycle.
func NewWithPool(pool db.Pool, opts ...Option) *Exporter {
	e := &Exporter{pool: pool, batchSize: 500, log: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Close releases the connection pool if this Exporter created it.
func (e *Exporter) Close() {
	if e.closeFn != nil {
		e.closeFn()
	}
}

const exportMigration = `
CREATE SCHEMA IF NOT EXISTS hazard;

CREATE TABLE IF NOT EXISTS hazard.source_sets (
	run_id      TEXT NOT NULL,
	name        TEXT NOT NULL,
	type        TEXT NOT NULL,
	weight      DOUBLE PRECISION NOT NULL,
	sources     INTEGER NOT NULL,
	exported_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (run_id, name, type)
);

CREATE TABLE IF NOT EXISTS hazard.ruptures (
	id          BIGSERIAL PRIMARY KEY,
	run_id      TEXT NOT NULL,
	source_set  TEXT NOT NULL,
	source_name TEXT NOT NULL,
	source_type TEXT NOT NULL,
	mag         DOUBLE PRECISION NOT NULL,
	rate        DOUBLE PRECISION NOT NULL,
	rake        DOUBLE PRECISION NOT NULL,
	dip         DOUBLE PRECISION NOT NULL,
	width       DOUBLE PRECISION NOT NULL,
	ztop        DOUBLE PRECISION NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_ruptures_run_id ON hazard.ruptures(run_id);
CREATE INDEX IF NOT EXISTS idx_ruptures_source_set ON hazard.ruptures(run_id, source_set);
`

// Migrate creates the export schema and tables.
func (e *Exporter) Migrate(ctx context.Context) error {
	_, err := e.pool.Exec(ctx, exportMigration)
	return eris.Wrap(err, "export: migrate")
}

var ruptureColumns = []string{
	"run_id", "source_set", "source_name", "source_type",
	"mag", "rate", "rake", "dip", "width", "ztop",
}

// ExportModel writes every source set of the model and the ruptures of
// each enumerable source. Source sets whose ruptures are only defined
// jointly (clusters, fault systems) are recorded in the source_sets table
// but contribute no rupture rows.
func (e *Exporter) ExportModel(ctx context.Context, m *model.HazardModel, runID string) (int64, error) {
	var total int64
	for _, set := range m.All() {
		n, err := e.ExportSourceSet(ctx, set, runID)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// ExportSourceSet upserts the set summary row and streams its ruptures.
func (e *Exporter) ExportSourceSet(ctx context.Context, set model.SourceSet, runID string) (int64, error) {
	setRow := [][]any{{runID, set.Name(), set.Type().String(), set.Weight(), set.Size()}}
	if _, err := db.BulkUpsert(ctx, e.pool, db.UpsertConfig{
		Table:        "hazard.source_sets",
		Columns:      []string{"run_id", "name", "type", "weight", "sources"},
		ConflictKeys: []string{"run_id", "name", "type"},
	}, setRow); err != nil {
		return 0, err
	}

	var total int64
	batch := make([][]any, 0, e.batchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		// a failed COPY inserts nothing, so retrying cannot duplicate rows
		var n int64
		err := retry.Do(ctx, e.retryCfg, "copy ruptures", func(ctx context.Context) error {
			var copyErr error
			n, copyErr = db.CopyFromSchema(ctx, e.pool, "hazard", "ruptures", ruptureColumns, batch)
			return copyErr
		})
		if err != nil {
			return err
		}
		total += n
		batch = batch[:0]
		return nil
	}

	for i := 0; i < set.Size(); i++ {
		src := set.Source(i)
		it, err := src.Ruptures()
		if errors.Is(err, model.ErrRuptureIteration) {
			e.log.Warn("skipping jointly-defined source",
				zap.String("set", set.Name()),
				zap.String("source", src.Name()))
			continue
		}
		if err != nil {
			return total, err
		}
		for it.Next() {
			r := it.Rupture()
			batch = append(batch, []any{
				runID, set.Name(), src.Name(), set.Type().String(),
				r.Mag, r.Rate, r.Rake,
				r.Surface.Dip(), r.Surface.Width(), r.Surface.Depth(),
			})
			if len(batch) >= e.batchSize {
				if err := flush(); err != nil {
					return total, err
				}
			}
		}
	}
	if err := flush(); err != nil {
		return total, err
	}

	e.log.Info("exported source set",
		zap.String("set", set.Name()),
		zap.Int64("ruptures", total))
	return total, nil
}
