package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"servecore/internal/httpapi"
	"servecore/internal/service"
)

func newServeCmd(o *options) *cobra.Command {
	defaultAddr := ":8080"
	if v := os.Getenv("SERVECORE_ADDR"); v != "" {
		defaultAddr = v
	}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Example: "  servecore serve --config servecore.yaml\n" +
			"  servecore serve --models-dir ~/models --warm-up disease-classifier,crop-detector",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, o)
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.addr, "addr", defaultAddr, "HTTP listen address (defaults SERVECORE_ADDR or :8080)")
	f.StringVar(&o.modelsDir, "models-dir", "", "Directory to scan for *.bin and *.gguf model artifacts")
	f.StringVar(&o.cacheDB, "cache-db", "", "SQLite file for the primary cache tier (empty: in-process only)")
	f.StringVar(&o.warmUp, "warm-up", "", "Comma-separated models to load at startup")
	f.StringVar(&o.corsOrigins, "cors-origins", "", "Comma-separated allowed CORS origins (empty disables CORS)")
	f.IntVar(&o.maxWorkers, "max-workers", 0, "Global task concurrency (0: number of CPUs)")
	f.IntVar(&o.maxModels, "max-models", 0, "Maximum resident models")
	return cmd
}

func runServe(cmd *cobra.Command, o *options) error {
	cfg, err := loadConfig(cmd, o)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	if err != nil {
		return err
	}

	svc, err := service.New(cfg, log, service.Options{})
	if err != nil {
		return err
	}
	defer svc.Close()

	// Base context canceled on SIGINT/SIGTERM so in-flight handlers stop too.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	httpapi.SetLogger(log)
	httpapi.SetBaseContext(ctx)
	if len(cfg.CORSOrigins) > 0 {
		httpapi.SetCORSOptions(true, cfg.CORSOrigins, nil, nil)
	}

	go svc.Start(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpapi.NewMux(svc),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("event", "listening").Str("addr", cfg.Addr).Str("models_dir", cfg.ModelsDir).
			Int("catalog", len(svc.ListModels())).Msg("servecore listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	log.Info().Str("event", "shutdown").Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Str("event", "shutdown_error").Err(err).Msg("graceful shutdown error")
	}
	return nil
}
