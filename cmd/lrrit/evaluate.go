package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/c360studio/lrrit/config"
	"github.com/c360studio/lrrit/evidence"
	"github.com/c360studio/lrrit/evidence/ingest"
	"github.com/c360studio/lrrit/llm"
	"github.com/c360studio/lrrit/publish"
	"github.com/c360studio/lrrit/render"
	"github.com/c360studio/lrrit/review"
	"github.com/c360studio/lrrit/rubric"
	"github.com/c360studio/lrrit/store"
	"github.com/spf13/cobra"
)

func evaluateCmd(flags *globalFlags) *cobra.Command {
	var (
		dimensions []string
		format     string
		out        string
		partial    bool
	)

	cmd := &cobra.Command{
		Use:   "evaluate <file-or-url>",
		Short: "Evaluate a learning report",
		Long: `Evaluate a learning report against the rubric. The argument is a
local file (markdown, HTML, or plain text) or an HTTPS URL.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup(flags)
			if err != nil {
				return err
			}
			if len(dimensions) == 0 {
				dimensions = cfg.Eval.Dimensions
			}
			if cmd.Flags().Changed("partial") {
				cfg.Eval.Partial = partial
			}
			return runEvaluate(cmd.Context(), cfg, args[0], dimensions, format, out)
		},
	}

	cmd.Flags().StringSliceVarP(&dimensions, "dimensions", "d", nil, "Dimension ids to evaluate (default: all)")
	cmd.Flags().StringVarP(&format, "format", "f", "markdown", "Output format (markdown, json)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write the report to a file instead of stdout")
	cmd.Flags().BoolVar(&partial, "partial", true, "Return successful results alongside per-dimension failures")

	return cmd
}

func runEvaluate(ctx context.Context, cfg *config.Config, target string, dimensions []string, format, out string) error {
	registry, err := loadRubric(cfg)
	if err != nil {
		return err
	}

	pack, err := loadPack(ctx, target)
	if err != nil {
		return err
	}
	slog.Info("report ingested",
		"report_id", pack.ReportID,
		"title", pack.Title,
		"fragments", len(pack.Fragments))

	modelRegistry, err := cfg.ModelRegistry()
	if err != nil {
		return err
	}

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

	judge := review.NewJudge(llm.NewClient(modelRegistry, clientOpts...))
	session := review.NewSession(registry, judge,
		review.WithTimeout(cfg.Eval.Timeout.Std()),
		review.WithConcurrency(cfg.Eval.Concurrency),
		review.WithPartialResults(cfg.Eval.Partial))

	results, evalErr := session.Evaluate(ctx, pack, dimensions)
	if evalErr != nil {
		if len(results) == 0 {
			return evalErr
		}
		slog.Warn("some dimensions failed", "error", evalErr)
	}

	report, err := review.Aggregate(results)
	if err != nil {
		return err
	}
	report.DocumentID = pack.ReportID
	report.DocumentTitle = pack.Title
	report.Source = pack.Source

	if reports != nil {
		if err := reports.SaveReport(ctx, report); err != nil {
			slog.Warn("save report failed", "error", err)
		}
	}

	if cfg.NATS.URL != "" {
		publisher, err := publish.Connect(ctx, cfg.NATS.URL, cfg.NATS.Stream, cfg.NATS.SubjectPrefix)
		if err != nil {
			slog.Warn("NATS unavailable, skipping publish", "error", err)
		} else {
			defer publisher.Close()
			if err := publisher.PublishReport(ctx, report); err != nil {
				slog.Warn("publish report failed", "error", err)
			}
		}
	}

	var rendered []byte
	switch format {
	case "json":
		rendered, err = json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		rendered = append(rendered, '\n')
	default:
		rendered = []byte(render.Markdown(report))
	}

	if out != "" {
		return os.WriteFile(out, rendered, 0o644)
	}
	_, err = os.Stdout.Write(rendered)
	return err
}

// loadRubric builds the dimension registry from the configured directory,
// or the built-in set when none is configured.
func loadRubric(cfg *config.Config) (*rubric.Registry, error) {
	if cfg.Rubric.Dir == "" {
		return rubric.DefaultRegistry(), nil
	}
	registry, err := rubric.Discover(cfg.Rubric.Dir, cfg.Rubric.Patterns)
	if err != nil {
		return nil, fmt.Errorf("load rubric from %s: %w", cfg.Rubric.Dir, err)
	}
	return registry, nil
}

// loadPack ingests the target, which is either an HTTPS URL or a local file.
func loadPack(ctx context.Context, target string) (*evidence.Pack, error) {
	if strings.HasPrefix(target, "https://") || strings.HasPrefix(target, "http://") {
		return ingest.NewFetcher().Fetch(ctx, target)
	}
	return ingest.LoadFile(target)
}
