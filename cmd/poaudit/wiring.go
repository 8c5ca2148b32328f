package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/dshills/poaudit/internal/config"
	"github.com/dshills/poaudit/internal/contextsource"
	"github.com/dshills/poaudit/internal/logger"
	"github.com/dshills/poaudit/internal/metrics"
	"github.com/dshills/poaudit/internal/nomenclature"
	"github.com/dshills/poaudit/internal/policy"
)

// loadConfig reads and validates the configuration.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, codeError(exitInput, "loading config: %s", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, codeError(exitInput, "invalid config: %s", err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config, verbose bool) (*zap.Logger, error) {
	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	log, err := logger.New(level)
	if err != nil {
		return nil, codeError(exitInput, "creating logger: %s", err)
	}
	return log, nil
}

// loadCatalog returns the catalog at path, or the built-in one.
func loadCatalog(path string) (*nomenclature.Catalog, error) {
	if path == "" {
		return nomenclature.Default(), nil
	}
	c, err := nomenclature.LoadFile(path)
	if err != nil {
		return nil, codeError(exitInput, "loading catalog: %s", err)
	}
	return c, nil
}

// loadPolicy resolves the preset named by the flag, or by the configuration
// when the flag is empty.
func loadPolicy(cfg *config.Config, name string) (*policy.Preset, error) {
	if name == "" {
		name = cfg.Policy
	}
	preset, err := policy.Get(name)
	if err != nil {
		return nil, codeError(exitInput, "loading policy: %s", err)
	}
	return preset, nil
}

// buildProvider chooses the context source: an explicit file first, then
// PostgreSQL (behind Redis when configured), otherwise an empty context.
// The policy preset fills the thresholds the source leaves unset. The
// returned cleanup releases connections.
func buildProvider(ctx context.Context, cfg *config.Config, contextFile string, preset *policy.Preset, m *metrics.Metrics, log *zap.Logger) (contextsource.Provider, func(), error) {
	cleanup := func() {}

	if contextFile == "" {
		contextFile = cfg.ContextFile
	}

	var base contextsource.Provider
	switch {
	case contextFile != "":
		log.Debug("using context file", zap.String("path", contextFile))
		base = contextsource.File{Path: contextFile, Metrics: m}

	case cfg.Postgres.DSN != "":
		log.Debug("using postgres context source")
		db, err := contextsource.OpenPostgres(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, cleanup, codeError(exitSource, "%s", err)
		}
		cleanup = func() { _ = db.Close() }
		base = contextsource.Postgres{DB: db, Timeout: cfg.Postgres.LoadTimeout, Metrics: m}

		if cfg.Redis.URL != "" {
			client, err := contextsource.NewRedisClient(ctx, cfg.Redis.URL)
			if err != nil {
				// The database alone still serves audits.
				log.Warn("redis unavailable, context cache disabled", zap.Error(err))
				break
			}
			closeDB := cleanup
			cleanup = func() {
				_ = client.Close()
				closeDB()
			}
			base = contextsource.Cached{
				Next:    base,
				Client:  client,
				Key:     cfg.Redis.Key,
				TTL:     cfg.Redis.TTL,
				Metrics: m,
				Logger:  log,
			}
		}

	default:
		log.Debug("no context source configured, auditing against an empty context")
		base = contextsource.Static{}
	}

	return contextsource.Policy{Next: base, Preset: preset}, cleanup, nil
}

func describeSource(cfg *config.Config, contextFile string) string {
	switch {
	case contextFile != "" || cfg.ContextFile != "":
		return "file"
	case cfg.Postgres.DSN != "" && cfg.Redis.URL != "":
		return "postgres+redis"
	case cfg.Postgres.DSN != "":
		return "postgres"
	default:
		return "none"
	}
}
