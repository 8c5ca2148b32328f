package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dshills/poaudit/internal/audit"
	"github.com/dshills/poaudit/internal/metrics"
	"github.com/dshills/poaudit/internal/server"
	"github.com/dshills/poaudit/internal/service"
)

func newServeCmd(configPath *string) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the audit API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), *configPath, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config server.addr)")
	return cmd
}

func runServe(ctx context.Context, configPath, addr string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}
	log, err := newLogger(cfg, false)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	catalog, err := loadCatalog(cfg.CatalogFile)
	if err != nil {
		return err
	}
	preset, err := loadPolicy(cfg, "")
	if err != nil {
		return err
	}
	provider, cleanup, err := buildProvider(ctx, cfg, "", preset, m, log)
	if err != nil {
		return err
	}
	defer cleanup()

	svc := service.New(audit.New(audit.WithCatalog(catalog)), provider,
		service.WithMetrics(m),
		service.WithLogger(log),
		service.WithVersion(version),
		service.WithPolicy(preset),
	)
	handler := server.NewHandler(svc, catalog, log)

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      server.NewRouter(handler, reg),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	log.Info("starting poaudit server",
		zap.String("version", version),
		zap.String("policy", preset.Name),
		zap.String("context_source", describeSource(cfg, "")),
		zap.Int("families", catalog.Len()),
	)
	if err := server.Serve(ctx, srv, log); err != nil {
		return codeError(1, "server: %s", err)
	}
	return nil
}
