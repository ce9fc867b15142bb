package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aleksaelezovic/myna/pkg/preview"
	"github.com/aleksaelezovic/myna/pkg/rdf"
)

func newRDFCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rdf",
		Short: "Preview and apply a mapping to RDF data",
	}
	cmd.AddCommand(newRDFPreviewCmd(), newRDFApplyCmd())
	return cmd
}

func addBaseIRIFlag(cmd *cobra.Command) {
	cmd.Flags().String(baseIRIFlagName, viper.GetString(baseIRIKey), "base IRI for relative IRIs in the input")
}

func newRDFPreviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview DATA",
		Short: "List the distinct IRIs of a data file and their proposed replacements",
		Long: `List every distinct IRI in subject, predicate or object position with
its rdfs:label and the IRI it would be rewritten to. Nothing is stored.
The syntax is detected from the extension: .nt, .nq, .ttl, .trig,
.jsonld/.json or .rdf/.owl/.xml.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := rdf.DetectFormat(args[0])
			if err != nil {
				return err
			}
			parser, err := rdf.NewParserWithBase(format.ContentType, viper.GetString(baseIRIKey))
			if err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			quads, err := parser.Parse(f)
			if err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}
			table, _, err := mappingSource(cmd).Load(cmd.Context())
			if err != nil {
				return err
			}
			return writeTabular(cmd.OutOrStdout(), preview.ForQuads(quads, table))
		},
	}
	addMappingFlag(cmd)
	addFormatFlag(cmd)
	addBaseIRIFlag(cmd)
	return cmd
}

func newRDFApplyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply DATA",
		Short: "Rewrite the IRIs of a data file",
		Long: `Rewrite the IRIs of an RDF file, record the input and output as runs,
and write the result in --export-format to --output (stdout when unset).
Prefixes declared by the input are kept for Turtle export.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			svc, closeStore, err := openService()
			if err != nil {
				return err
			}
			defer func() { _ = closeStore() }()

			input, err := svc.IngestRDF(cmd.Context(), filepath.Base(args[0]), f)
			if err != nil {
				return err
			}
			out, err := svc.ApplyRDF(cmd.Context(), input.ID, mappingSource(cmd))
			if err != nil {
				return err
			}
			exp, err := svc.Export(out.ID, viper.GetString(exportFormatKey))
			if err != nil {
				return err
			}

			output, _ := cmd.Flags().GetString(outputFlagName)
			if err := writeOutput(cmd.OutOrStdout(), output, exp.Data); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "run %s: %d replacements in %d of %d statements\n",
				out.ID, out.Changes.Replacements, out.Changes.UnitsTouched, out.Changes.TotalUnits)
			return nil
		},
	}
	addMappingFlag(cmd)
	addExportFormatFlag(cmd)
	addBaseIRIFlag(cmd)
	cmd.Flags().StringP(outputFlagName, "o", "", "output file (default stdout)")
	return cmd
}
