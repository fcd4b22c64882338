package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/theflywheel/dhash/internal/benchreport"
	"github.com/theflywheel/dhash/internal/logger"
	"github.com/theflywheel/dhash/internal/workload"
)

func benchCommand() *cli.Command {
	return &cli.Command{
		Name:  "bench",
		Usage: "Run the workload several times and save the timings as JSON",
		Flags: append(workloadFlags(),
			&cli.IntFlag{Name: "rounds", Value: 3, Usage: "Number of workload repetitions"},
			&cli.StringFlag{Name: "out", Value: "benchmark_history/latest.json", Usage: "Where to write the summary"},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			rounds := cmd.Int("rounds")
			if rounds < 1 {
				return fmt.Errorf("rounds must be at least 1, got %d", rounds)
			}

			l := logger.From(ctx)
			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get current directory: %w", err)
			}
			summary := benchreport.NewSummary(cwd)

			for i := 0; i < rounds; i++ {
				l.Info("starting round", "round", i+1, "of", rounds)
				report, err := workload.Run(ctx, cfg, workload.Options{
					Logger:    l,
					BatchSize: cmd.Int("batch"),
				})
				if err != nil {
					return fmt.Errorf("round %d failed: %w", i+1, err)
				}
				for _, r := range report.Results() {
					r.Name = fmt.Sprintf("%s/round%d", r.Name, i+1)
					summary.Add(r)
					printResult(cmd.Root().Writer, r)
				}
			}

			out := cmd.String("out")
			if err := benchreport.Save(out, summary); err != nil {
				return err
			}
			l.Info("benchmark results saved", "file", out)
			return nil
		},
	}
}
