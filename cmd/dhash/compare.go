package main

import (
	"context"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"

	"github.com/theflywheel/dhash/internal/benchreport"
)

func compareCommand() *cli.Command {
	return &cli.Command{
		Name:      "compare",
		Usage:     "Compare two saved benchmark summaries and fail on significant regressions",
		ArgsUsage: "BASE CURRENT",
		Flags: []cli.Flag{
			&cli.FloatFlag{Name: "threshold", Value: 5, Usage: "Percent change considered significant"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 2 {
				return fmt.Errorf("expected BASE and CURRENT summary files, got %d arguments", cmd.NArg())
			}

			base, err := benchreport.Load(cmd.Args().Get(0))
			if err != nil {
				return err
			}
			current, err := benchreport.Load(cmd.Args().Get(1))
			if err != nil {
				return err
			}

			cmp := benchreport.Compare(base, current, cmd.Float("threshold"))
			printComparison(cmd.Root().Writer, cmp)

			if cmp.SignificantRegressions > 0 {
				return fmt.Errorf("%d significant performance regressions detected", cmp.SignificantRegressions)
			}
			return nil
		},
	}
}

func printComparison(w io.Writer, cmp benchreport.Comparison) {
	fmt.Fprintf(w, "Benchmark comparison: %s vs %s\n\n", cmp.BaseCommit, cmp.CurrentCommit)
	fmt.Fprintf(w, "- Total compared: %d\n", len(cmp.Results))
	fmt.Fprintf(w, "- Improvements: %d\n", cmp.Improved)
	fmt.Fprintf(w, "- Regressions: %d (significant: %d)\n", cmp.Regressed, cmp.SignificantRegressions)

	if len(cmp.Results) == 0 {
		fmt.Fprintln(w, "No matching benchmarks found for comparison")
		return
	}

	for _, rd := range cmp.Results {
		fmt.Fprintf(w, "\n%s %s (score %+.2f)\n", rd.Assessment, rd.Name, rd.Score)
		for _, m := range rd.Metrics {
			if m.PercentChange == 0 {
				continue
			}
			marker := " "
			switch {
			case m.Regression && m.Significant:
				marker = "▼"
			case m.Improvement && m.Significant:
				marker = "▲"
			}
			fmt.Fprintf(w, "  %s %-18s %+8.2f%% (%g → %g)\n", marker, m.Name, m.PercentChange, m.Base, m.Current)
		}
	}
}
