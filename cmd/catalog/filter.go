package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kingfs/go-llm-catalog/filter"
	"github.com/kingfs/go-llm-catalog/internal/service"
)

// readFilterInput decodes a filter definition file such as:
//
//	name: long context reasoning
//	visibility: team
//	rules:
//	  - {field: contextWindow, operator: gte, value: 128000, type: hard}
//	  - {field: capabilities, operator: contains, value: reasoning, type: soft, weight: 2}
func readFilterInput(path string) (service.FilterInput, error) {
	var in service.FilterInput
	if path == "" {
		return in, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return in, fmt.Errorf("open rules file: %w", err)
	}
	defer f.Close()
	if err := yaml.NewDecoder(f).Decode(&in); err != nil {
		return in, fmt.Errorf("decode rules file %s: %w", path, err)
	}
	return in, nil
}

type filterFlags struct {
	file        string
	name        string
	description string
	visibility  string
	teamID      string
}

func (ff *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&ff.file, "file", "f", "", "YAML or JSON file with the filter definition")
	cmd.Flags().StringVar(&ff.name, "name", "", "Filter name (overrides the file)")
	cmd.Flags().StringVar(&ff.description, "description", "", "Filter description (overrides the file)")
	cmd.Flags().StringVar(&ff.visibility, "visibility", "", "private, team or public (overrides the file)")
	cmd.Flags().StringVar(&ff.teamID, "team-id", "", "Team the filter is shared with (overrides the file)")
}

func (ff *filterFlags) input(cmd *cobra.Command) (service.FilterInput, error) {
	in, err := readFilterInput(ff.file)
	if err != nil {
		return in, err
	}
	if cmd.Flags().Changed("name") {
		in.Name = ff.name
	}
	if cmd.Flags().Changed("description") {
		in.Description = ff.description
	}
	if cmd.Flags().Changed("visibility") {
		in.Visibility = filter.Visibility(ff.visibility)
	}
	if cmd.Flags().Changed("team-id") {
		in.TeamID = ff.teamID
	}
	return in, nil
}

func newFilterCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "filter",
		Aliases: []string{"filters"},
		Short:   "Manage saved filters",
	}
	cmd.AddCommand(
		newFilterCreateCommand(a),
		newFilterListCommand(a),
		newFilterShowCommand(a),
		newFilterUpdateCommand(a),
		newFilterDeleteCommand(a),
		newFilterRunCommand(a),
	)
	return cmd
}

func newFilterCreateCommand(a *app) *cobra.Command {
	var ff filterFlags
	cmd := &cobra.Command{
		Use:     "create",
		Short:   "Create a filter from a rules file",
		Example: `  catalog filter create -f long-context.yaml --visibility team`,
		RunE: func(cmd *cobra.Command, args []string) error {
			caller, err := a.caller()
			if err != nil {
				return err
			}
			in, err := ff.input(cmd)
			if err != nil {
				return err
			}
			return a.withService(cmd.Context(), func(svc *service.Service) error {
				f, err := svc.CreateFilter(cmd.Context(), caller, in)
				if err != nil {
					return err
				}
				return render(cmd.OutOrStdout(), a.output, f, func(tw *tabwriter.Writer) {
					filterTable(tw, []*filter.Filter{f})
				})
			})
		},
	}
	ff.register(cmd)
	return cmd
}

func newFilterListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List filters visible to you",
		RunE: func(cmd *cobra.Command, args []string) error {
			caller, err := a.caller()
			if err != nil {
				return err
			}
			return a.withService(cmd.Context(), func(svc *service.Service) error {
				filters, err := svc.ListFilters(cmd.Context(), caller)
				if err != nil {
					return err
				}
				return render(cmd.OutOrStdout(), a.output, filters, func(tw *tabwriter.Writer) {
					filterTable(tw, filters)
				})
			})
		},
	}
}

func newFilterShowCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a filter and its rules",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			caller, err := a.caller()
			if err != nil {
				return err
			}
			return a.withService(cmd.Context(), func(svc *service.Service) error {
				f, err := svc.GetFilter(cmd.Context(), caller, args[0])
				if err != nil {
					return err
				}
				return render(cmd.OutOrStdout(), a.output, f, func(tw *tabwriter.Writer) {
					filterTable(tw, []*filter.Filter{f})
					fmt.Fprintln(tw)
					fmt.Fprintln(tw, "#\tTYPE\tRULE\tWEIGHT")
					for i, r := range f.Rules {
						weight := "-"
						if r.Type == filter.Soft {
							weight = fmt.Sprint(r.EffectiveWeight())
						}
						fmt.Fprintf(tw, "%d\t%s\t%s %s %v\t%s\n", i+1, r.Type, r.Field, r.Operator, r.Value, weight)
					}
				})
			})
		},
	}
}

func newFilterUpdateCommand(a *app) *cobra.Command {
	var (
		ff      filterFlags
		version int
	)
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace a filter you own",
		Long: `Replace a filter's name, description, visibility and rules. Fields not given
by flags or the rules file are taken from the stored filter.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			caller, err := a.caller()
			if err != nil {
				return err
			}
			return a.withService(cmd.Context(), func(svc *service.Service) error {
				current, err := svc.GetFilter(cmd.Context(), caller, args[0])
				if err != nil {
					return err
				}
				in, err := ff.input(cmd)
				if err != nil {
					return err
				}
				mergeInput(&in, current, cmd.Flags().Changed)

				f, err := svc.UpdateFilter(cmd.Context(), caller, args[0], version, in)
				if err != nil {
					return err
				}
				return render(cmd.OutOrStdout(), a.output, f, func(tw *tabwriter.Writer) {
					filterTable(tw, []*filter.Filter{f})
				})
			})
		},
	}
	ff.register(cmd)
	cmd.Flags().IntVar(&version, "version", 0, "Fail unless the stored filter is at this version")
	return cmd
}

// mergeInput fills fields left empty by the rules file from current. A field
// whose flag was set explicitly keeps the flag's value, even when empty.
func mergeInput(in *service.FilterInput, current *filter.Filter, changed func(flag string) bool) {
	if in.Name == "" && !changed("name") {
		in.Name = current.Name
	}
	if in.Description == "" && !changed("description") {
		in.Description = current.Description
	}
	if in.Visibility == "" && !changed("visibility") {
		in.Visibility = current.Visibility
	}
	if in.TeamID == "" && !changed("team-id") {
		in.TeamID = current.TeamID
	}
	if len(in.Rules) == 0 {
		in.Rules = current.Rules
	}
}

func newFilterDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a filter you own",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			caller, err := a.caller()
			if err != nil {
				return err
			}
			return a.withService(cmd.Context(), func(svc *service.Service) error {
				if err := svc.DeleteFilter(cmd.Context(), caller, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted filter %s\n", args[0])
				return nil
			})
		},
	}
}

func newFilterRunCommand(a *app) *cobra.Command {
	var (
		snapshot string
		top      int
		all      bool
	)
	cmd := &cobra.Command{
		Use:   "run <id>",
		Short: "Evaluate a filter against the synced catalog",
		Example: `  # Ten best matches
  catalog filter run 3f1c... --top 10

  # Every verdict, including rejections
  catalog filter run 3f1c... --all -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			caller, err := a.caller()
			if err != nil {
				return err
			}
			snap, err := a.loadSnapshot(snapshot)
			if err != nil {
				return err
			}
			return a.withService(cmd.Context(), func(svc *service.Service) error {
				report, err := svc.Run(cmd.Context(), caller, args[0], snap.Models)
				if err != nil {
					return err
				}
				if top > 0 && len(report.Ranked) > top {
					report.Ranked = report.Ranked[:top]
				}

				var v any = report.Ranked
				if all {
					v = report.Run
				}
				return render(cmd.OutOrStdout(), a.output, v, func(tw *tabwriter.Writer) {
					fmt.Fprintf(tw, "Run %s: %d of %d models matched\n\n", report.Run.ID, report.Run.Matched, report.Run.Total)
					if all {
						fmt.Fprintln(tw, "PROVIDER\tID\tVERDICT\tRATIONALE")
						for _, r := range report.Run.Results {
							fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Provider, r.ModelID, filter.FormatResult(r.Result), r.Rationale)
						}
						return
					}
					fmt.Fprintln(tw, "RANK\tPROVIDER\tID\tVERDICT")
					for i, r := range report.Ranked {
						fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i+1, r.Model.Provider, r.Model.ID, filter.FormatResult(r.Result))
					}
				})
			})
		},
	}
	cmd.Flags().StringVar(&snapshot, "snapshot", "", "Catalog snapshot (default $CATALOG_SNAPSHOT_PATH)")
	cmd.Flags().IntVar(&top, "top", 20, "Show at most this many ranked matches (0 for all)")
	cmd.Flags().BoolVar(&all, "all", false, "Show every model's verdict instead of ranked matches")
	return cmd
}

func filterTable(tw *tabwriter.Writer, filters []*filter.Filter) {
	fmt.Fprintln(tw, "ID\tNAME\tOWNER\tVISIBILITY\tRULES\tVERSION\tUSES\tLAST USED")
	for _, f := range filters {
		lastUsed := "-"
		if f.LastUsedAt != nil {
			lastUsed = f.LastUsedAt.Local().Format(time.DateTime)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			f.ID, f.Name, f.OwnerID, f.Visibility, len(f.Rules), f.Version, f.UsageCount, lastUsed)
	}
}
