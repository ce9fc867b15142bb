package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/aleksaelezovic/myna/internal/workflow"
	"github.com/aleksaelezovic/myna/pkg/preview"
	"github.com/aleksaelezovic/myna/pkg/store"
)

// runRow is one line of the run listing
type runRow struct {
	ID        string        `json:"id" yaml:"id"`
	Kind      store.RunKind `json:"kind" yaml:"kind"`
	Domain    store.Domain  `json:"domain" yaml:"domain"`
	FileName  string        `json:"fileName" yaml:"fileName"`
	ParentID  string        `json:"parentId,omitempty" yaml:"parentId,omitempty"`
	CreatedAt time.Time     `json:"createdAt" yaml:"createdAt"`
}

type runList struct {
	Runs []runRow `json:"runs" yaml:"runs"`
}

func (l runList) Headers() []string {
	return []string{"ID", "Kind", "Domain", "File", "Created"}
}

func (l runList) Records() [][]string {
	records := make([][]string, len(l.Runs))
	for i, r := range l.Runs {
		records[i] = []string{r.ID, string(r.Kind), string(r.Domain), r.FileName, r.CreatedAt.Local().Format(time.DateTime)}
	}
	return records
}

func (l runList) Footer() []string {
	return []string{fmt.Sprintf("%d runs", len(l.Runs)), "", "", "", ""}
}

func newRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect and manage recorded runs",
	}
	cmd.AddCommand(
		newRunsListCmd(),
		newRunsShowCmd(),
		newRunsPreviewCmd(),
		newRunsExportCmd(),
		newRunsDeleteCmd(),
		newRunsClearCmd(),
	)
	return cmd
}

// withRunStore opens the service for the duration of fn
func withRunStore(fn func(svc *workflow.Service) error) error {
	svc, closeStore, err := openService()
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()
	return fn(svc)
}

func newRunsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRunStore(func(svc *workflow.Service) error {
				runs, err := svc.Runs().List()
				if err != nil {
					return err
				}
				list := runList{Runs: make([]runRow, len(runs))}
				for i, r := range runs {
					list.Runs[i] = runRow{
						ID:        r.ID,
						Kind:      r.Kind,
						Domain:    r.Domain,
						FileName:  r.FileName,
						ParentID:  r.ParentID,
						CreatedAt: r.CreatedAt,
					}
				}
				return writeTabular(cmd.OutOrStdout(), list)
			})
		},
	}
	addFormatFlag(cmd)
	return cmd
}

func newRunsShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show RUN_ID",
		Short: "Print a run with its payload as JSON or YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRunStore(func(svc *workflow.Service) error {
				run, err := svc.Runs().Get(args[0])
				if err != nil {
					return err
				}
				format, err := preview.ParseFormat(viper.GetString(showFormatKey))
				if err != nil {
					return err
				}
				switch format {
				case preview.FormatYAML:
					enc := yaml.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent(2)
					if err := enc.Encode(run); err != nil {
						return err
					}
					return enc.Close()
				case preview.FormatJSON:
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					return enc.Encode(run)
				default:
					return fmt.Errorf("%w: %s (runs show prints json or yaml)", preview.ErrUnknownFormat, format)
				}
			})
		},
	}
	cmd.Flags().StringP(formatFlagName, "f", viper.GetString(showFormatKey), "output format: json or yaml")
	cobra.CheckErr(cmd.Flags().SetAnnotation(formatFlagName, configKeyAnnotation, []string{showFormatKey}))
	return cmd
}

func newRunsPreviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview RUN_ID",
		Short: "Preview a mapping against a stored input run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, _, err := mappingSource(cmd).Load(cmd.Context())
			if err != nil {
				return err
			}
			return withRunStore(func(svc *workflow.Service) error {
				run, err := svc.Runs().Get(args[0])
				if err != nil {
					return err
				}

				var p preview.Tabular
				if run.Domain == store.DomainSPARQL {
					p, err = svc.PreviewSPARQL(run.ID, table)
				} else {
					p, err = svc.PreviewRDF(run.ID, table)
				}
				if err != nil {
					return err
				}
				return writeTabular(cmd.OutOrStdout(), p)
			})
		},
	}
	addMappingFlag(cmd)
	addFormatFlag(cmd)
	return cmd
}

func newRunsExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export RUN_ID",
		Short: "Write a run out again; RDF runs use --export-format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRunStore(func(svc *workflow.Service) error {
				exp, err := svc.Export(args[0], viper.GetString(exportFormatKey))
				if err != nil {
					return err
				}
				output, _ := cmd.Flags().GetString(outputFlagName)
				if err := writeOutput(cmd.OutOrStdout(), output, exp.Data); err != nil {
					return err
				}
				if output != "" && output != "-" {
					fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (suggested name %s)\n", output, exp.FileName)
				}
				return nil
			})
		},
	}
	addExportFormatFlag(cmd)
	cmd.Flags().StringP(outputFlagName, "o", "", "output file (default stdout)")
	return cmd
}

func newRunsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete RUN_ID...",
		Short: "Delete runs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRunStore(func(svc *workflow.Service) error {
				for _, id := range args {
					if err := svc.Runs().Delete(id); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", id)
				}
				return nil
			})
		},
	}
}

func newRunsClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRunStore(func(svc *workflow.Service) error {
				n, err := svc.Runs().Clear()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %d runs\n", n)
				return nil
			})
		},
	}
}
