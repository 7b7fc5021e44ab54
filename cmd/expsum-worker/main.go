// Command expsum-worker computes a single term base^power / power! and writes
// it to stdout. Stdout carries nothing else; logs go to stderr.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tupyy/expsum/pkg/series"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	zap.ReplaceGlobals(logger)
	defer func() { _ = logger.Sync() }()

	if err := newCommand().Execute(); err != nil {
		zap.S().Named("worker").Errorw("worker failed", "error", err)
		os.Exit(1)
	}
}

func newCommand() *cobra.Command {
	var base, power int

	cmd := &cobra.Command{
		Use:           "expsum-worker -x BASE -n POWER",
		Short:         "Compute BASE^POWER / POWER!",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if power < 0 {
				return fmt.Errorf("invalid power %d: must not be negative", power)
			}
			value := series.Term(base, power)
			if _, err := fmt.Fprint(cmd.OutOrStdout(), strconv.FormatFloat(value, 'g', -1, 64)); err != nil {
				return fmt.Errorf("writing result: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&base, "base", "x", 0, "base of the term")
	cmd.Flags().IntVarP(&power, "power", "n", 0, "power of the term")
	_ = cmd.MarkFlagRequired("base")
	_ = cmd.MarkFlagRequired("power")
	cmd.SetErr(os.Stderr)

	return cmd
}
