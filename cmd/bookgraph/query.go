package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/c360studio/bookgraph/catalog"
	"github.com/c360studio/bookgraph/config"
	"github.com/c360studio/bookgraph/enrich"
	"github.com/c360studio/bookgraph/lookup"
	"github.com/c360studio/bookgraph/pipeline"
	"github.com/c360studio/bookgraph/storage"
)

func randomCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "random",
		Short: "Print a uniformly random book",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.service(cmd)
			if err != nil {
				return err
			}
			b, err := svc.RandomBook()
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), lookup.Results{b.ID: b.PublicFields()})
		},
	}
}

func searchCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search books by author or title",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "author <query>",
			Short: "Books whose authors contain query (case-insensitive)",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				svc, err := opts.service(cmd)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), svc.AuthorSearch(args[0]))
			},
		},
		&cobra.Command{
			Use:   "title <query>",
			Short: "Books whose title contains query (case-sensitive)",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				svc, err := opts.service(cmd)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), svc.TitleSearch(args[0]))
			},
		},
	)
	return cmd
}

func factsCmd(opts *globalOptions) *cobra.Command {
	var (
		endpoint string
		timeout  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "facts <title>",
		Short: "Fetch supplementary genre facts for a title",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.setup(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("endpoint") {
				cfg.Enrich.Endpoint = endpoint
			}
			if cmd.Flags().Changed("timeout") {
				cfg.Enrich.Timeout = timeout
			}

			client := enrich.NewClient(cfg.Enrich.Endpoint, enrich.WithTimeout(cfg.Enrich.Timeout))
			facts, err := client.Query(cmd.Context(), enrich.GenreQuery(args[0]))
			if err != nil {
				return fmt.Errorf("query %s: %w", client.Endpoint(), err)
			}
			logger.Debug("Fetched facts", "endpoint", client.Endpoint(), "facts", len(facts))
			return writeJSON(cmd.OutOrStdout(), facts)
		},
	}

	cmd.Flags().StringVar(&endpoint, "endpoint", "", "SPARQL endpoint URL")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Query timeout")
	return cmd
}

// service builds a lookup service from the snapshot when --db is given and
// from the normalized source otherwise.
func (o *globalOptions) service(cmd *cobra.Command) (*lookup.Service, error) {
	cfg, logger, err := o.setup(cmd)
	if err != nil {
		return nil, err
	}

	books, err := o.books(cmd.Context(), cfg, logger)
	if err != nil {
		return nil, err
	}
	return lookup.NewService(books), nil
}

func (o *globalOptions) books(ctx context.Context, cfg *config.Config, logger *slog.Logger) ([]catalog.Book, error) {
	if o.dbPath == "" {
		return pipeline.ReadBooks(cfg, logger)
	}

	store, err := storage.Open(ctx, o.dbPath)
	if err != nil {
		return nil, err
	}
	defer store.Close()
	return store.Load(ctx)
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
