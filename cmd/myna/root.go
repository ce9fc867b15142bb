package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/aleksaelezovic/myna/pkg/preview"
)

const rootLongDescription = `Myna rewrites IRIs in RDF data and SPARQL queries using an
old -> new IRI mapping read from a CSV, TSV or XLSX file with
"Old IRI" and "New IRI" columns.

Every apply is recorded as a run in a local store so results can be
listed, inspected and exported again later.`

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "myna",
		Short:         "IRI remapping for RDF data and SPARQL queries",
		Long:          rootLongDescription,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			bindCommandFlags(cmd)
			configureLogger(viper.GetString(logFilenameKey), viper.GetBool(logVerboseKey))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	configureRootFlags(cmd)

	cmd.AddCommand(
		newMappingCmd(),
		newSPARQLCmd(),
		newRDFCmd(),
		newRunsCmd(),
		newServeCmd(),
	)
	return cmd
}

func configureRootFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()

	flags.String(storeFlagName, viper.GetString(storePathKey), "directory of the run store")
	bindFlagToConfig(flags.Lookup(storeFlagName), storePathKey)

	flags.BoolP(verboseFlagName, "v", viper.GetBool(logVerboseKey), "log at debug level")
	bindFlagToConfig(flags.Lookup(verboseFlagName), logVerboseKey)

	flags.String(logFileFlagName, viper.GetString(logFilenameKey), "log file path")
	bindFlagToConfig(flags.Lookup(logFileFlagName), logFilenameKey)
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// commandFlagKeys lists flags that several subcommands declare for the same
// config key. Viper keeps one flag per key, so they are bound only for the
// command that actually runs.
var commandFlagKeys = map[string]string{
	formatFlagName:       previewFormatKey,
	compactFlagName:      compactQNamesKey,
	exportFormatFlagName: exportFormatKey,
	baseIRIFlagName:      baseIRIKey,
	addrFlagName:         serverAddrKey,
}

// configKeyAnnotation on a flag overrides its commandFlagKeys entry
const configKeyAnnotation = "myna_config_key"

func bindCommandFlags(cmd *cobra.Command) {
	for name, key := range commandFlagKeys {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			continue
		}
		if keys := flag.Annotations[configKeyAnnotation]; len(keys) == 1 {
			key = keys[0]
		}
		bindFlagToConfig(flag, key)
	}
}

// addFormatFlag registers --format for preview.format
func addFormatFlag(cmd *cobra.Command) {
	cmd.Flags().StringP(formatFlagName, "f", viper.GetString(previewFormatKey), "output format: table, csv, tsv, json or yaml")
}

// addExportFormatFlag registers --export-format for rdf.export_format
func addExportFormatFlag(cmd *cobra.Command) {
	cmd.Flags().String(exportFormatFlagName, viper.GetString(exportFormatKey), "RDF output content type: text/turtle, application/n-triples or application/n-quads")
}

// writeTabular renders p in the configured preview format
func writeTabular(w io.Writer, p preview.Tabular) error {
	format, err := preview.ParseFormat(viper.GetString(previewFormatKey))
	if err != nil {
		return err
	}
	return preview.Write(w, format, p)
}

// writeOutput writes data to path, or to w when path is empty or "-"
func writeOutput(w io.Writer, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := w.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// execute runs the root command and exits non-zero on failure
func execute() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
		os.Exit(1)
	}
}
