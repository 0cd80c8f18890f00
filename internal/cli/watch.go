package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/meeting-digest/internal/config"
	"github.com/nguyentantai21042004/meeting-digest/internal/logger"
	"github.com/nguyentantai21042004/meeting-digest/internal/retry"
	"github.com/nguyentantai21042004/meeting-digest/internal/watcher"
)

func newWatchCmd() *cobra.Command {
	var metricsAddr string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Digest transcripts as they land in paths.input",
		Long: `Digests transcripts already waiting in paths.input, then watches the
directory and digests each new .json, .srt or .txt file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWatch(cmd, metricsAddr)
		},
	}
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (overrides metrics.addr)")
	return cmd
}

func runWatch(cmd *cobra.Command, metricsAddr string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if metricsAddr != "" {
		cfg.Metrics.Addr = metricsAddr
	}

	log := newLogger(cfg, cmd.ErrOrStderr())
	defer log.Sync()

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info(ctx, "========================================")
	log.Info(ctx, "Meeting Digest %s", version)
	log.Info(ctx, "========================================")

	if err := ensureDirectories(cfg); err != nil {
		log.Error(ctx, "Failed to create directories: %v", err)
		return err
	}

	a, err := newApp(cfg, log, true)
	if err != nil {
		return err
	}

	if cfg.Metrics.Addr != "" {
		srv, err := serveMetrics(ctx, cfg.Metrics.Addr, a.stats, log)
		if err != nil {
			return err
		}
		defer shutdown(srv)
	}

	// Catch up on files that arrived while we were down
	if _, err := a.digester.DigestDir(ctx, cfg.Paths.Input); err != nil && !errors.Is(err, context.Canceled) {
		log.Warn(ctx, "Backlog digest failed: %v", err)
	}

	w, err := watcher.New(cfg.Paths.Input, func(ctx context.Context, path string) error {
		_, err := a.digester.DigestFile(ctx, path, nil)
		return err
	}, log, cfg.Performance.MaxConcurrent)
	if err != nil {
		log.Error(ctx, "Failed to create watcher: %v", err)
		return err
	}
	defer w.Stop()

	log.Info(ctx, "Monitoring: %s", cfg.Paths.Input)
	log.Info(ctx, "Output: %s", cfg.Paths.Output)
	log.Info(ctx, "Provider: %s / %s, %d API key(s)", cfg.Provider.Name, cfg.Provider.Model, len(cfg.Provider.APIKeys))
	log.Info(ctx, "Press Ctrl+C to stop")

	if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error(ctx, "Watcher error: %v", err)
		return err
	}

	snap := a.stats.Snapshot()
	log.Info(ctx, "Stopped. Retries recovered: %d, exhausted: %d", snap.SuccessfulRetries, snap.Exhausted)
	return nil
}

// ensureDirectories creates required directories if they don't exist
func ensureDirectories(cfg *config.Config) error {
	dirs := []string{
		cfg.Paths.Input,
		cfg.Paths.Output,
		cfg.Paths.Archived,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	return nil
}

func metricsHandler(stats *retry.Stats) (http.Handler, error) {
	reg := prometheus.NewRegistry()
	if err := reg.Register(stats); err != nil {
		return nil, fmt.Errorf("register retry stats: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	return mux, nil
}

func serveMetrics(ctx context.Context, addr string, stats *retry.Stats, log logger.Logger) (*http.Server, error) {
	handler, err := metricsHandler(stats)
	if err != nil {
		return nil, err
	}

	srv := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		log.Info(ctx, "Metrics server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "Metrics server failed: %v", err)
		}
	}()
	return srv, nil
}

func shutdown(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
}
