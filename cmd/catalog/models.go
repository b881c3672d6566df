package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	llmcatalog "github.com/kingfs/go-llm-catalog"
)

func newModelsCommand(a *app) *cobra.Command {
	var (
		snapshot     string
		provider     string
		capabilities []string
		modalities   []string
		minContext   int64
		onlyNew      bool
	)

	cmd := &cobra.Command{
		Use:   "models [id]",
		Short: "List or show models in the synced catalog",
		Example: `  # Reasoning models with at least 200K context
  catalog models --capability reasoning --min-context 200000

  # One model as YAML
  catalog models gpt-4o -o yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := a.loadSnapshot(snapshot)
			if err != nil {
				return err
			}
			reg := llmcatalog.NewRegistry(snap.Models)

			if len(args) == 1 {
				m, ok := reg.Get(args[0])
				if provider != "" {
					m, ok = reg.GetFrom(provider, args[0])
				}
				if !ok {
					return fmt.Errorf("model %q not found", args[0])
				}
				return render(cmd.OutOrStdout(), a.output, m, func(tw *tabwriter.Writer) {
					modelTable(tw, []llmcatalog.Model{m})
				})
			}

			q := reg.Query().Provider(provider).MinContext(minContext)
			for _, c := range capabilities {
				q.Has(llmcatalog.Capability(c))
			}
			for _, m := range modalities {
				q.Modality(llmcatalog.Modality(m))
			}
			if onlyNew {
				q.New()
			}
			models := q.List()
			return render(cmd.OutOrStdout(), a.output, models, func(tw *tabwriter.Writer) {
				modelTable(tw, models)
			})
		},
	}

	cmd.Flags().StringVar(&snapshot, "snapshot", "", "Catalog snapshot (default $CATALOG_SNAPSHOT_PATH)")
	cmd.Flags().StringVar(&provider, "provider", "", "Only models from this provider")
	cmd.Flags().StringSliceVar(&capabilities, "capability", nil, "Required capability (repeatable)")
	cmd.Flags().StringSliceVar(&modalities, "modality", nil, "Required modality (repeatable)")
	cmd.Flags().Int64Var(&minContext, "min-context", 0, "Minimum context window in tokens")
	cmd.Flags().BoolVar(&onlyNew, "new", false, "Only recently released models")
	return cmd
}

func modelTable(tw *tabwriter.Writer, models []llmcatalog.Model) {
	fmt.Fprintln(tw, "PROVIDER\tID\tCONTEXT\tOUTPUT\tIN COST\tOUT COST\tCAPABILITIES\tNEW")
	for _, m := range models {
		isNew := ""
		if m.New {
			isNew = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			m.Provider, m.ID,
			formatTokens(m.ContextWindow), formatTokens(m.MaxOutputTokens),
			formatCost(m.InputCost), formatCost(m.OutputCost),
			joinOrDash(m.Capabilities), isNew)
	}
}
