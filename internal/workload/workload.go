// Package workload drives a dhash table with random words and checks every
// answer it gives against an independent record of what was stored.
package workload

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/theflywheel/dhash"
	"github.com/theflywheel/dhash/internal/benchreport"
	"github.com/theflywheel/dhash/internal/config"
	"github.com/theflywheel/dhash/internal/wordgen"
)

const DefaultBatchSize = 250

// Options carries the collaborators a run reports to.
type Options struct {
	Logger    *slog.Logger
	Observer  dhash.Observer
	BatchSize int
	// Allocator overrides the allocator derived from the config's memory limit.
	Allocator dhash.Allocator
}

// Report is the outcome of a verified run.
type Report struct {
	Inserted    int
	Deleted     int
	Stats       dhash.Stats
	Fingerprint uint64
	PeakBytes   int64

	Insert benchreport.Result
	Search benchreport.Result
	Delete benchreport.Result
}

// Results returns the timed phases in execution order.
func (r *Report) Results() []benchreport.Result {
	return []benchreport.Result{r.Insert, r.Search, r.Delete}
}

// Run inserts cfg.Words random pairs, looks every key up, deletes a
// cfg.DeleteRatio share of the distinct keys and verifies the table after
// each phase. A wrong answer from the table is returned as an error.
func Run(ctx context.Context, cfg config.Config, o Options) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	if o.BatchSize <= 0 {
		o.BatchSize = DefaultBatchSize
	}

	alloc := o.Allocator
	var budget *dhash.BudgetAllocator
	if alloc == nil {
		alloc = dhash.DefaultAllocator()
		if cfg.MemoryLimit > 0 {
			budget = dhash.NewBudgetAllocator(cfg.MemoryLimit, nil)
			alloc = budget
		}
	}

	opts := []dhash.Option{
		dhash.WithPolicy(cfg.Policy()),
		dhash.WithAllocator(alloc),
		dhash.WithLogger(o.Logger),
	}
	if o.Observer != nil {
		opts = append(opts, dhash.WithObserver(o.Observer))
	}
	table, err := dhash.New(opts...)
	if err != nil {
		return nil, err
	}
	defer table.Destroy()

	gen := wordgen.New(cfg.Seed)
	keys := make([]string, cfg.Words)
	values := make([]string, cfg.Words)
	for i := range keys {
		keys[i] = gen.Word(cfg.MinKeyLen, cfg.MaxKeyLen)
		values[i] = gen.Word(cfg.MinValueLen, cfg.MaxValueLen)
	}

	// expected is the reference the table is checked against
	expected := make(map[string]string, len(keys))
	report := &Report{}

	o.Logger.Info("inserting", "words", len(keys), "seed", cfg.Seed)
	insertTimer := benchreport.NewTimer(o.BatchSize)
	err = batches(ctx, len(keys), o.BatchSize, func(lo, hi int) {
		insertTimer.Time(hi-lo, func() {
			for i := lo; i < hi; i++ {
				table.Insert(keys[i], values[i])
			}
		})
		for i := lo; i < hi; i++ {
			expected[keys[i]] = values[i]
		}
	})
	if err != nil {
		return nil, err
	}
	report.Inserted = len(keys)
	report.Insert = insertTimer.Result("Insert", "workload")

	if err := verify(table, expected); err != nil {
		return nil, fmt.Errorf("after insert: %w", err)
	}

	// map order is not seeded; sort before shuffling so seeded runs repeat
	distinct := slices.Sorted(maps.Keys(expected))
	gen.Shuffle(len(distinct), func(i, j int) { distinct[i], distinct[j] = distinct[j], distinct[i] })

	searchTimer := benchreport.NewTimer(o.BatchSize)
	var misses int
	err = batches(ctx, len(distinct), o.BatchSize, func(lo, hi int) {
		searchTimer.Time(hi-lo, func() {
			for _, k := range distinct[lo:hi] {
				if _, ok := table.Search(k); !ok {
					misses++
				}
			}
		})
	})
	if err != nil {
		return nil, err
	}
	if misses > 0 {
		return nil, fmt.Errorf("search missed %d stored keys", misses)
	}
	report.Search = searchTimer.Result("Search", "workload")

	toDelete := distinct[:int(float64(len(distinct))*cfg.DeleteRatio)]
	o.Logger.Info("deleting", "keys", len(toDelete))
	deleteTimer := benchreport.NewTimer(o.BatchSize)
	var absent int
	err = batches(ctx, len(toDelete), o.BatchSize, func(lo, hi int) {
		deleteTimer.Time(hi-lo, func() {
			for _, k := range toDelete[lo:hi] {
				if !table.Delete(k) {
					absent++
				}
			}
		})
		for _, k := range toDelete[lo:hi] {
			delete(expected, k)
		}
	})
	if err != nil {
		return nil, err
	}
	if absent > 0 {
		return nil, fmt.Errorf("delete reported %d stored keys absent", absent)
	}
	report.Deleted = len(toDelete)
	report.Delete = deleteTimer.Result("Delete", "workload")

	for _, k := range toDelete {
		if _, ok := table.Search(k); ok {
			return nil, fmt.Errorf("deleted key %q still found", k)
		}
	}
	if err := verify(table, expected); err != nil {
		return nil, fmt.Errorf("after delete: %w", err)
	}

	report.Stats = table.Stats()
	report.Fingerprint = benchreport.Fingerprint(table.All())
	if budget != nil {
		report.PeakBytes = budget.Peak()
	}

	o.Logger.Info("workload verified",
		"size", report.Stats.Count,
		"capacity", report.Stats.Capacity,
		"resizes", report.Stats.Resizes,
	)
	return report, nil
}

// batches calls fn for consecutive [lo, hi) windows of at most size items,
// stopping early when ctx is done.
func batches(ctx context.Context, n, size int, fn func(lo, hi int)) error {
	for lo := 0; lo < n; lo += size {
		if err := ctx.Err(); err != nil {
			return err
		}
		fn(lo, min(lo+size, n))
	}
	return nil
}

// verify checks size, every expected pair and the table's fingerprint.
func verify(table *dhash.Table, expected map[string]string) error {
	if table.Size() != len(expected) {
		return fmt.Errorf("size is %d, want %d", table.Size(), len(expected))
	}
	for k, want := range expected {
		got, ok := table.Search(k)
		if !ok {
			return fmt.Errorf("key %q not found", k)
		}
		if got != want {
			return fmt.Errorf("key %q has value %q, want %q", k, got, want)
		}
	}
	if benchreport.Fingerprint(table.All()) != benchreport.Fingerprint(maps.All(expected)) {
		return fmt.Errorf("table contents differ from the inserted entries")
	}
	return nil
}
