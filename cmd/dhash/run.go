package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/theflywheel/dhash/internal/benchreport"
	"github.com/theflywheel/dhash/internal/config"
	"github.com/theflywheel/dhash/internal/logger"
	"github.com/theflywheel/dhash/internal/metrics"
	"github.com/theflywheel/dhash/internal/workload"
)

// workloadFlags tune the table and the random words fed to it. Each one
// overrides the config file and DHASH_ environment variables when set.
func workloadFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{Name: "words", Aliases: []string{"n"}, Usage: "Number of random key/value pairs to insert (default 2000)"},
		&cli.StringFlag{Name: "seed", Usage: "Seed for repeatable words; empty uses system randomness"},
		&cli.FloatFlag{Name: "delete-ratio", Usage: "Share of distinct keys deleted after inserting, 0 to 1"},
		&cli.IntFlag{Name: "grow-at", Usage: "Load factor percentage that doubles the table (default 70)"},
		&cli.IntFlag{Name: "shrink-below", Usage: "Load factor percentage that halves the table (default 10)"},
		&cli.IntFlag{Name: "min-base-size", Usage: "Initial and minimum base size (default 50)"},
		&cli.Int64Flag{Name: "memory-limit", Usage: "Exit when table memory exceeds this many bytes; 0 is unlimited"},
		&cli.IntFlag{Name: "batch", Value: workload.DefaultBatchSize, Usage: "Operations per timed batch"},
	}
}

// loadConfig merges the config file, environment and any workload flag the
// user set.
func loadConfig(cmd *cli.Command) (config.Config, error) {
	overrides := map[string]any{}
	for _, name := range []string{"words", "grow-at", "shrink-below", "min-base-size"} {
		if cmd.IsSet(name) {
			overrides[name] = cmd.Int(name)
		}
	}
	if cmd.IsSet("seed") {
		overrides["seed"] = cmd.String("seed")
	}
	if cmd.IsSet("delete-ratio") {
		overrides["delete-ratio"] = cmd.Float("delete-ratio")
	}
	if cmd.IsSet("memory-limit") {
		overrides["memory-limit"] = cmd.Int64("memory-limit")
	}
	return config.Load(cmd.String("config"), overrides)
}

func runCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Insert random words, verify every lookup and report timings",
		Flags: append(workloadFlags(),
			&cli.BoolFlag{Name: "metrics", Usage: "Print table metrics in Prometheus text format"},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			l := logger.From(ctx)
			collector := metrics.New()
			start := time.Now()
			report, err := workload.Run(ctx, cfg, workload.Options{
				Logger:    l,
				Observer:  collector,
				BatchSize: cmd.Int("batch"),
			})
			if err != nil {
				return fmt.Errorf("workload failed: %w", err)
			}

			out := cmd.Root().Writer
			printReport(out, report, time.Since(start))
			if cmd.Bool("metrics") {
				return collector.WriteText(out)
			}
			return nil
		},
	}
}

func printReport(w io.Writer, r *workload.Report, elapsed time.Duration) {
	fmt.Fprintf(w, "Inserted %s words, deleted %s in %s\n",
		humanize.Comma(int64(r.Inserted)), humanize.Comma(int64(r.Deleted)), elapsed.Round(time.Microsecond))
	fmt.Fprintf(w, "Table: size=%s capacity=%s base=%s load=%d%% tombstones=%d resizes=%d\n",
		humanize.Comma(int64(r.Stats.Count)),
		humanize.Comma(int64(r.Stats.Capacity)),
		humanize.Comma(int64(r.Stats.BaseSize)),
		r.Stats.LoadFactor,
		r.Stats.Tombstones,
		r.Stats.Resizes,
	)
	if r.PeakBytes > 0 {
		fmt.Fprintf(w, "Peak table memory: %s\n", humanize.IBytes(uint64(r.PeakBytes)))
	}
	fmt.Fprintf(w, "Fingerprint: %016x\n", r.Fingerprint)
	for _, res := range r.Results() {
		printResult(w, res)
	}
}

func printResult(w io.Writer, r benchreport.Result) {
	if r.Operations == 0 {
		fmt.Fprintf(w, "  %-7s skipped\n", r.Name)
		return
	}
	fmt.Fprintf(w, "  %-7s %10s ops  %8.1f ns/op  %14s ops/s  p99 %.1f ns/op\n",
		r.Name,
		humanize.Comma(int64(r.Operations)),
		r.NsPerOp,
		humanize.Commaf(r.Metrics["ops_per_sec"]),
		r.Metrics["batch_p99_ns"],
	)
}
