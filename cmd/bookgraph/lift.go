package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/c360studio/bookgraph/pipeline"
)

func liftCmd(opts *globalOptions) *cobra.Command {
	var (
		ontologyURI    string
		ontologyFormat string
		output         string
		format         string
		namespace      string
		normalizedOut  string
		metricsFile    string
	)

	cmd := &cobra.Command{
		Use:   "lift",
		Short: "Normalize the catalog and write the book graph",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.setup(cmd)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("ontology") {
				cfg.Ontology.URI = ontologyURI
			}
			if flags.Changed("ontology-format") {
				cfg.Ontology.Format = ontologyFormat
			}
			if flags.Changed("output") {
				cfg.Output.Path = output
			}
			if flags.Changed("format") {
				cfg.Output.Format = format
			}
			if flags.Changed("namespace") {
				cfg.Graph.Namespace = namespace
			}
			if flags.Changed("normalized-out") {
				cfg.Output.NormalizedCSV = normalizedOut
			}
			if flags.Changed("metrics-file") {
				cfg.Metrics.Textfile = metricsFile
			}

			summary, err := pipeline.NewRunner(pipeline.WithLogger(logger)).Run(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			data, err := json.MarshalIndent(summary, "", "  ")
			if err != nil {
				return fmt.Errorf("marshal summary: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}

	cmd.Flags().StringVar(&ontologyURI, "ontology", "", "Base ontology path or URL")
	cmd.Flags().StringVar(&ontologyFormat, "ontology-format", "", "Base ontology format (rdfxml, ntriples)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Serialized graph path")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format (turtle, ntriples, jsonld)")
	cmd.Flags().StringVar(&namespace, "namespace", "", "Entity namespace IRI")
	cmd.Flags().StringVar(&normalizedOut, "normalized-out", "", "Write the normalized table to this CSV path")
	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "Write run metrics to this textfile")

	return cmd
}
