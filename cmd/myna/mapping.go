package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aleksaelezovic/myna/internal/workflow"
	"github.com/aleksaelezovic/myna/pkg/mapping"
)

// mappingView is a loaded mapping file in exportable form
type mappingView struct {
	File  string          `json:"file" yaml:"file"`
	Meta  mapping.Meta    `json:"meta" yaml:"meta"`
	Pairs []mapping.Entry `json:"pairs" yaml:"pairs"`
}

func (v mappingView) Headers() []string {
	return []string{"Old IRI", "New IRI"}
}

func (v mappingView) Records() [][]string {
	records := make([][]string, len(v.Pairs))
	for i, p := range v.Pairs {
		records[i] = []string{p.Old, p.New}
	}
	return records
}

func (v mappingView) Footer() []string {
	return []string{
		fmt.Sprintf("%d rows", v.Meta.Rows),
		fmt.Sprintf("%d unique, %d duplicate", v.Meta.UniqueOld, v.Meta.DuplicateOld),
	}
}

func newMappingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mapping",
		Short: "Work with mapping files",
	}
	cmd.AddCommand(newMappingInspectCmd())
	return cmd
}

func newMappingInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect FILE",
		Short: "Show the pairs a mapping file resolves to",
		Long: `Decode a CSV, TSV or XLSX mapping file and print the resulting
old -> new pairs. Later rows win over earlier rows for the same old IRI.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, meta, err := workflow.LoadMappingFile(args[0])
			if err != nil {
				return err
			}
			return writeTabular(cmd.OutOrStdout(), mappingView{
				File:  args[0],
				Meta:  meta,
				Pairs: table.Entries(),
			})
		},
	}
	addFormatFlag(cmd)
	return cmd
}

// addMappingFlag registers the required --mapping flag
func addMappingFlag(cmd *cobra.Command) {
	cmd.Flags().StringP(mappingFlagName, "m", "", "mapping file (CSV, TSV or XLSX)")
	cobra.CheckErr(cmd.MarkFlagRequired(mappingFlagName))
}

func mappingSource(cmd *cobra.Command) workflow.MappingSource {
	path, _ := cmd.Flags().GetString(mappingFlagName)
	return workflow.MappingFile(path)
}
