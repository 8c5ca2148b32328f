package contextsource

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/poaudit/internal/audit"
	"github.com/dshills/poaudit/internal/metrics"
)

// Schema creates the tables read by Postgres.
const Schema = `
CREATE TABLE IF NOT EXISTS audit_thresholds (
	id               SMALLINT PRIMARY KEY DEFAULT 1 CHECK (id = 1),
	approval_ht      DOUBLE PRECISION NOT NULL DEFAULT 0,
	price_high_ratio DOUBLE PRECISION NOT NULL DEFAULT 0,
	price_low_ratio  DOUBLE PRECISION NOT NULL DEFAULT 0,
	default_vat_rate DOUBLE PRECISION
);

CREATE TABLE IF NOT EXISTS supplier_blacklist (
	supplier_id TEXT PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS site_budgets (
	site      TEXT PRIMARY KEY,
	remaining DOUBLE PRECISION NOT NULL
);

CREATE TABLE IF NOT EXISTS price_stats (
	supplier_id TEXT NOT NULL,
	item_ref    TEXT NOT NULL,
	avg_price   DOUBLE PRECISION NOT NULL,
	min_price   DOUBLE PRECISION NOT NULL,
	max_price   DOUBLE PRECISION NOT NULL,
	PRIMARY KEY (supplier_id, item_ref)
);
`

// OpenPostgres opens a lib/pq connection pool and checks it is reachable.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}
	return db, nil
}

// Postgres loads the context from the tables in Schema. The four sections are
// queried concurrently; a missing thresholds row yields zero thresholds.
type Postgres struct {
	DB      *sql.DB
	Timeout time.Duration // zero means no timeout beyond ctx
	Metrics *metrics.Metrics
}

func (p Postgres) Load(ctx context.Context) (*audit.Context, error) {
	start := time.Now()
	defer func() { p.Metrics.ObserveContextLatency("postgres", time.Since(start)) }()

	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	g, ctx := errgroup.WithContext(ctx)
	out := &audit.Context{}

	g.Go(func() error {
		t, err := p.thresholds(ctx)
		if err != nil {
			return fmt.Errorf("load thresholds: %w", err)
		}
		out.Thresholds = t
		return nil
	})
	g.Go(func() error {
		b, err := p.blacklist(ctx)
		if err != nil {
			return fmt.Errorf("load blacklist: %w", err)
		}
		out.Blacklist = b
		return nil
	})
	g.Go(func() error {
		b, err := p.siteBudgets(ctx)
		if err != nil {
			return fmt.Errorf("load site budgets: %w", err)
		}
		out.SiteBudgets = b
		return nil
	})
	g.Go(func() error {
		s, err := p.priceStats(ctx)
		if err != nil {
			return fmt.Errorf("load price stats: %w", err)
		}
		out.PriceStats = s
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (p Postgres) thresholds(ctx context.Context) (audit.Thresholds, error) {
	var t audit.Thresholds
	err := p.DB.QueryRowContext(ctx, `
		SELECT approval_ht, price_high_ratio, price_low_ratio, default_vat_rate
		FROM audit_thresholds WHERE id = 1
	`).Scan(&t.ApprovalHT, &t.PriceHighRatio, &t.PriceLowRatio, &t.DefaultVATRate)
	if errors.Is(err, sql.ErrNoRows) {
		return audit.Thresholds{}, nil
	}
	return t, err
}

func (p Postgres) blacklist(ctx context.Context) ([]string, error) {
	rows, err := p.DB.QueryContext(ctx, `SELECT supplier_id FROM supplier_blacklist ORDER BY supplier_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (p Postgres) siteBudgets(ctx context.Context) (map[string]float64, error) {
	rows, err := p.DB.QueryContext(ctx, `SELECT site, remaining FROM site_budgets`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	budgets := make(map[string]float64)
	for rows.Next() {
		var site string
		var remaining float64
		if err := rows.Scan(&site, &remaining); err != nil {
			return nil, err
		}
		budgets[site] = remaining
	}
	if len(budgets) == 0 {
		budgets = nil
	}
	return budgets, rows.Err()
}

func (p Postgres) priceStats(ctx context.Context) (map[string]map[string]audit.PriceStats, error) {
	rows, err := p.DB.QueryContext(ctx, `
		SELECT supplier_id, item_ref, avg_price, min_price, max_price FROM price_stats
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats map[string]map[string]audit.PriceStats
	for rows.Next() {
		var supplier, ref string
		var s audit.PriceStats
		if err := rows.Scan(&supplier, &ref, &s.Avg, &s.Min, &s.Max); err != nil {
			return nil, err
		}
		if stats == nil {
			stats = make(map[string]map[string]audit.PriceStats)
		}
		if stats[supplier] == nil {
			stats[supplier] = make(map[string]audit.PriceStats)
		}
		stats[supplier][ref] = s
	}
	return stats, rows.Err()
}

// Save replaces the stored context with c in one transaction.
func (p Postgres) Save(ctx context.Context, c *audit.Context) error {
	if c == nil {
		c = &audit.Context{}
	}
	tx, err := p.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	t := c.Thresholds
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO audit_thresholds (id, approval_ht, price_high_ratio, price_low_ratio, default_vat_rate)
		VALUES (1, $1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			approval_ht = EXCLUDED.approval_ht,
			price_high_ratio = EXCLUDED.price_high_ratio,
			price_low_ratio = EXCLUDED.price_low_ratio,
			default_vat_rate = EXCLUDED.default_vat_rate
	`, t.ApprovalHT, t.PriceHighRatio, t.PriceLowRatio, t.DefaultVATRate); err != nil {
		return fmt.Errorf("save thresholds: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM supplier_blacklist`); err != nil {
		return fmt.Errorf("clear blacklist: %w", err)
	}
	if len(c.Blacklist) > 0 {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO supplier_blacklist (supplier_id)
			SELECT DISTINCT unnest($1::text[])
		`, pq.Array(c.Blacklist)); err != nil {
			return fmt.Errorf("save blacklist: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM site_budgets`); err != nil {
		return fmt.Errorf("clear site budgets: %w", err)
	}
	for site, remaining := range c.SiteBudgets {
		if _, err := tx.ExecContext(ctx, `INSERT INTO site_budgets (site, remaining) VALUES ($1, $2)`, site, remaining); err != nil {
			return fmt.Errorf("save site budget %s: %w", site, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM price_stats`); err != nil {
		return fmt.Errorf("clear price stats: %w", err)
	}
	for supplier, items := range c.PriceStats {
		for ref, s := range items {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO price_stats (supplier_id, item_ref, avg_price, min_price, max_price)
				VALUES ($1, $2, $3, $4, $5)
			`, supplier, ref, s.Avg, s.Min, s.Max); err != nil {
				return fmt.Errorf("save price stats %s/%s: %w", supplier, ref, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
