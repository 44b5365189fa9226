// Package main provides the lrrit binary entry point.
// Lrrit reviews incident learning reports against a structured rubric,
// judging each dimension through an external model collaborator.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	// Register LLM providers via init()
	_ "github.com/c360studio/lrrit/llm/providers"

	"github.com/c360studio/lrrit/config"
	"github.com/spf13/cobra"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "lrrit"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// globalFlags holds options shared by all subcommands.
type globalFlags struct {
	configPath string
	logLevel   string
}

func rootCmd() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:   "lrrit",
		Short: "Learning report review tool",
		Long: `Lrrit evaluates incident learning reports (postmortems, AARs,
retrospectives) against a rubric of review dimensions. Each dimension is
judged by an external model collaborator and graded GOOD, SOME, or LITTLE,
with verbatim evidence citations resolved back to the document.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(evaluateCmd(flags))
	cmd.AddCommand(rubricCmd(flags))
	cmd.AddCommand(serveCmd(flags))
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	})

	return cmd
}

// setup configures logging and loads the configuration.
func setup(flags *globalFlags) (*config.Config, error) {
	level := slog.LevelInfo
	switch strings.ToLower(flags.logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if flags.configPath == "" {
		return config.DefaultConfig(), nil
	}
	cfg, err := config.LoadFromFile(flags.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
