// Package main provides the bookgraph binary entry point.
// bookgraph lifts a tabular book catalog into an RDF knowledge graph and
// answers lookups over the normalized records.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/c360studio/bookgraph/config"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "bookgraph"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd().ExecuteContext(ctx)
	cancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// globalOptions are the flags shared by every command.
type globalOptions struct {
	configPath string
	logLevel   string
	input      string
	delimiter  string
	dbPath     string
}

func rootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Book catalog to knowledge graph pipeline",
		Long: `bookgraph normalizes a CSV book catalog, derives series membership
from titles and lifts the records into an RDF graph over a base ontology.

The normalized records can also be queried directly:
- random picks a uniformly random book
- search author|title finds books by field substring
- facts fetches supplementary genre facts from a SPARQL endpoint`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "Config file path (YAML)")
	flags.StringVar(&opts.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flags.StringVarP(&opts.input, "input", "i", "", "Source CSV path or glob")
	flags.StringVar(&opts.delimiter, "delimiter", "", "Field delimiter (default: detect)")
	flags.StringVar(&opts.dbPath, "db", "", "SQLite snapshot path")

	cmd.AddCommand(
		liftCmd(opts),
		randomCmd(opts),
		searchCmd(opts),
		factsCmd(opts),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
			},
		},
	)

	return cmd
}

// setup configures logging and resolves the layered configuration with
// persistent flag overrides applied.
func (o *globalOptions) setup(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	logger := newLogger(cmd, o.logLevel)
	slog.SetDefault(logger)

	loader := config.NewLoader(logger)
	var (
		cfg *config.Config
		err error
	)
	if o.configPath != "" {
		cfg, err = loader.LoadFile(o.configPath)
	} else {
		cfg, err = loader.Load()
	}
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	if o.input != "" {
		cfg.Source.Path = o.input
	}
	if o.delimiter != "" {
		cfg.Source.Delimiter = o.delimiter
	}
	if o.dbPath != "" {
		cfg.Store.Path = o.dbPath
	}
	return cfg, logger, nil
}

func newLogger(cmd *cobra.Command, logLevel string) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}
