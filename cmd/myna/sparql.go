package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aleksaelezovic/myna/pkg/preview"
	"github.com/aleksaelezovic/myna/pkg/sparql/scanner"
)

func newSPARQLCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sparql",
		Short: "Preview and apply a mapping to SPARQL queries",
	}
	cmd.AddCommand(newSPARQLPreviewCmd(), newSPARQLApplyCmd())
	return cmd
}

func newSPARQLPreviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview QUERY",
		Short: "List the IRI tokens of a query and their proposed replacements",
		Long: `List the prefix declarations, IRI references and prefixed names of a
query with the IRI each would be rewritten to. Nothing is stored.
Use "-" to read the query from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, query, err := readInput(cmd, args[0], "query.rq")
			if err != nil {
				return err
			}
			table, _, err := mappingSource(cmd).Load(cmd.Context())
			if err != nil {
				return err
			}

			prologue := scanner.ExtractDeclarations(string(query))
			tokens := scanner.ExtractTokens(string(query), prologue)
			return writeTabular(cmd.OutOrStdout(), preview.ForTokens(tokens, prologue, table))
		},
	}
	addMappingFlag(cmd)
	addFormatFlag(cmd)
	return cmd
}

func newSPARQLApplyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply QUERY",
		Short: "Rewrite the IRIs of a query",
		Long: `Rewrite the IRIs of a query and record the input and output as runs.
The rewritten query goes to --output, or stdout when unset.
Use "-" to read the query from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, query, err := readInput(cmd, args[0], "query.rq")
			if err != nil {
				return err
			}

			svc, closeStore, err := openService()
			if err != nil {
				return err
			}
			defer func() { _ = closeStore() }()

			input, err := svc.IngestSPARQL(cmd.Context(), name, string(query))
			if err != nil {
				return err
			}
			out, err := svc.ApplySPARQL(cmd.Context(), input.ID, mappingSource(cmd))
			if err != nil {
				return err
			}

			output, _ := cmd.Flags().GetString(outputFlagName)
			if err := writeOutput(cmd.OutOrStdout(), output, []byte(out.Payload)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "run %s: %d replacements in %d of %d tokens, %d mapping pairs applied\n",
				out.ID, out.Changes.Replacements, out.Changes.UnitsTouched, out.Changes.TotalUnits, out.Applied)
			return nil
		},
	}
	addMappingFlag(cmd)
	cmd.Flags().Bool(compactFlagName, viper.GetBool(compactQNamesKey), "write rewritten prefixed names as prefix:local when possible")
	cmd.Flags().StringP(outputFlagName, "o", "", "output file (default stdout)")
	return cmd
}

// readInput reads path, or stdin when path is "-". The returned name is the
// base file name, or stdinName for stdin.
func readInput(cmd *cobra.Command, path, stdinName string) (string, []byte, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", nil, fmt.Errorf("read stdin: %w", err)
		}
		return stdinName, data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, err
	}
	return filepath.Base(path), data, nil
}
