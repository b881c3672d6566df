package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kingfs/go-llm-catalog/internal/service"
)

func newRunsCommand(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "runs <filter-id>",
		Short: "List past runs of a filter, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			caller, err := a.caller()
			if err != nil {
				return err
			}
			return a.withService(cmd.Context(), func(svc *service.Service) error {
				runs, err := svc.ListRuns(cmd.Context(), caller, args[0], limit)
				if err != nil {
					return err
				}
				return render(cmd.OutOrStdout(), a.output, runs, func(tw *tabwriter.Writer) {
					fmt.Fprintln(tw, "RUN\tEVALUATED\tFILTER VERSION\tMATCHED\tTOTAL")
					for _, r := range runs {
						fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\n",
							r.ID, r.EvaluatedAt.Local().Format(time.DateTime), r.Filter.Version, r.Matched, r.Total)
					}
				})
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum number of runs (0 for all)")
	return cmd
}
