package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/c360studio/lrrit/config"
	"github.com/c360studio/lrrit/httpapi"
	"github.com/c360studio/lrrit/llm"
	"github.com/c360studio/lrrit/metrics"
	"github.com/c360studio/lrrit/publish"
	"github.com/c360studio/lrrit/review"
	"github.com/c360studio/lrrit/rubric"
	"github.com/c360studio/lrrit/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

func serveCmd(flags *globalFlags) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the review HTTP service",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup(flags)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.HTTP.Addr = addr
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides config)")

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rubrics, err := rubricSource(ctx, cfg)
	if err != nil {
		return err
	}

	modelRegistry, err := cfg.ModelRegistry()
	if err != nil {
		return err
	}

	promRegistry := prometheus.NewRegistry()
	m := metrics.New(promRegistry)

	var clientOpts []llm.ClientOption
	var reports *store.Store
	if cfg.Store.Path != "" {
		reports, err = store.Open(cfg.Store.Path)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer reports.Close()
		clientOpts = append(clientOpts, llm.WithCallRecorder(reports))
	}

	var publisher *publish.Publisher
	if cfg.NATS.URL != "" {
		publisher, err = publish.Connect(ctx, cfg.NATS.URL, cfg.NATS.Stream, cfg.NATS.SubjectPrefix)
		if err != nil {
			return fmt.Errorf("connect NATS: %w", err)
		}
		defer publisher.Close()
	}

	judge := review.NewJudge(llm.NewClient(modelRegistry, clientOpts...))

	handler := httpapi.New(httpapi.Options{
		Rubrics:   rubrics,
		Collab:    judge,
		Store:     reports,
		Publisher: publisher,
		Metrics:   m,
		Gatherer:  promRegistry,
		Eval:      cfg.Eval,
	})

	server := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("lrrit ready", "version", Version, "addr", cfg.HTTP.Addr)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// rubricSource builds the live rubric source, watching the configured
// directory for changes when enabled.
func rubricSource(ctx context.Context, cfg *config.Config) (*rubric.Source, error) {
	if cfg.Rubric.Dir == "" {
		return rubric.NewSource(rubric.DefaultRegistry()), nil
	}

	if !cfg.Rubric.Watch {
		registry, err := loadRubric(cfg)
		if err != nil {
			return nil, err
		}
		return rubric.NewSource(registry), nil
	}

	watcher, err := rubric.NewWatcher(rubric.WatcherConfig{
		Dir:      cfg.Rubric.Dir,
		Patterns: cfg.Rubric.Patterns,
	})
	if err != nil {
		return nil, fmt.Errorf("watch rubric dir: %w", err)
	}
	go func() {
		if err := watcher.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			slog.Warn("rubric watcher stopped", "error", err)
		}
	}()
	return watcher.Source(), nil
}
