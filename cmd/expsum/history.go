package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	v1 "github.com/tupyy/expsum/api/v1"
	"github.com/tupyy/expsum/internal/models"
	"github.com/tupyy/expsum/internal/report"
	"github.com/tupyy/expsum/internal/services"
)

func newHistoryCommand(l *loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect recorded runs",
	}
	cmd.AddCommand(
		newHistoryListCommand(l),
		newHistoryShowCommand(l),
		newHistoryExportCommand(l),
	)
	return cmd
}

// withRunService loads the configuration, opens the history and hands a
// RunService to fn. The service has no scheduler: it only reads.
func withRunService(cmd *cobra.Command, l *loader, fn func(*services.RunService) error) error {
	cfg, err := l.load()
	if err != nil {
		return err
	}
	defer func() { _ = zap.L().Sync() }()

	st, err := openStore(cmd, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	return fn(services.NewRunService(st, nil, nil))
}

func newHistoryListCommand(l *loader) *cobra.Command {
	var (
		statuses   []string
		mechanisms []string
		limit      uint64
		offset     uint64
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter, ok := v1.ParseRunStatuses(statuses)
			if !ok {
				return fmt.Errorf("invalid status in %v: want pending, running, completed or failed", statuses)
			}
			var byMechanism []models.Mechanism
			for _, m := range mechanisms {
				mechanism, err := models.ParseMechanism(m)
				if err != nil {
					return err
				}
				byMechanism = append(byMechanism, mechanism)
			}
			return withRunService(cmd, l, func(srv *services.RunService) error {
				res, err := srv.List(cmd.Context(), services.RunListParams{
					Statuses:   filter,
					Mechanisms: byMechanism,
					Limit:      limit,
					Offset:     offset,
				})
				if err != nil {
					return err
				}
				return writeRunTable(cmd.OutOrStdout(), res)
			})
		},
	}

	cmd.Flags().StringSliceVar(&statuses, "status", nil, "only list runs with these statuses")
	cmd.Flags().StringSliceVar(&mechanisms, "mechanism", nil, "only list runs using these wait mechanisms")
	cmd.Flags().Uint64Var(&limit, "limit", 20, "maximum number of runs to list, 0 for all")
	cmd.Flags().Uint64Var(&offset, "offset", 0, "number of runs to skip")
	return cmd
}

func writeRunTable(w io.Writer, res *services.RunListResult) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tBASE\tTERMS\tWORKERS\tMECHANISM\tTOTAL\tCREATED")
	for _, r := range res.Runs {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%s\t%.4f\t%s\n",
			r.ID, r.Status, r.Params.Base, r.Params.Terms, r.Params.Workers, r.Params.Mechanism,
			r.Result.Total, r.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d of %d runs\n", len(res.Runs), res.Total)
	return err
}

func newHistoryShowCommand(l *loader) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "show ID",
		Short: "Show one recorded run with its terms",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := report.ParseFormat(output)
			if err != nil {
				return err
			}
			return withRunService(cmd, l, func(srv *services.RunService) error {
				run, err := srv.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				terms, err := srv.Terms(cmd.Context(), run.ID)
				if err != nil {
					return err
				}
				run.Result.Terms = terms

				if format == report.FormatText {
					tracer := report.NewTracer(cmd.OutOrStdout(), run.Params.Base)
					for _, t := range terms {
						tracer.Observe(t)
					}
				}
				return report.Render(cmd.OutOrStdout(), format, *run)
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", string(report.FormatText), "output format: text, json or yaml")
	return cmd
}

func newHistoryExportCommand(l *loader) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every recorded run to an XLSX workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRunService(cmd, l, func(srv *services.RunService) error {
				res, err := srv.List(cmd.Context(), services.RunListParams{})
				if err != nil {
					return err
				}
				if err := report.ExportXLSX(file, res.Runs); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "exported %d runs to %s\n", len(res.Runs), file)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "runs.xlsx", "path of the workbook")
	return cmd
}
