// Package benchreport records dhash workload results as JSON summaries and
// compares two summaries for regressions.
package benchreport

import (
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/sugawarayuuta/sonnet"
	"gonum.org/v1/gonum/stat"
)

// Result holds the metrics of one workload phase.
type Result struct {
	Name       string             `json:"name"`
	Category   string             `json:"category"`
	Operations int                `json:"operations"`
	NsPerOp    float64            `json:"ns_per_op"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Summary is a set of results taken from one build.
type Summary struct {
	Timestamp string   `json:"timestamp"`
	CommitID  string   `json:"commit_id"`
	Branch    string   `json:"branch"`
	GoVersion string   `json:"go_version"`
	Results   []Result `json:"results"`
}

// NewSummary returns an empty summary stamped with the current time, the Go
// version and the git revision of repoRoot when one can be read.
func NewSummary(repoRoot string) *Summary {
	commit, branch := gitInfo(repoRoot)
	return &Summary{
		Timestamp: time.Now().Format(time.RFC3339),
		CommitID:  commit,
		Branch:    branch,
		GoVersion: runtime.Version(),
	}
}

// Add appends r to the summary.
func (s *Summary) Add(r Result) {
	s.Results = append(s.Results, r)
}

// Save writes s to path as JSON, creating parent directories as needed.
func Save(path string, s *Summary) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	data, err := sonnet.Marshal(s)
	if err != nil {
		return fmt.Errorf("error marshaling summary: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("error writing %s: %w", path, err)
	}
	return nil
}

// Load reads a summary written by Save.
func Load(path string) (*Summary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", path, err)
	}
	s := &Summary{}
	if err := sonnet.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("error parsing %s: %w", path, err)
	}
	return s, nil
}

// gitInfo reads the branch and abbreviated commit from .git/HEAD, falling
// back to "local" and "dev".
func gitInfo(repoRoot string) (commit, branch string) {
	commit, branch = "local", "dev"

	head, err := os.ReadFile(filepath.Join(repoRoot, ".git", "HEAD"))
	if err != nil {
		return commit, branch
	}

	content := strings.TrimSpace(string(head))
	ref, isRef := strings.CutPrefix(content, "ref: ")
	if !isRef {
		// detached HEAD holds the commit itself
		return abbrev(content), branch
	}
	branch = strings.TrimPrefix(ref, "refs/heads/")

	if data, err := os.ReadFile(filepath.Join(repoRoot, ".git", ref)); err == nil {
		commit = abbrev(strings.TrimSpace(string(data)))
	}
	return commit, branch
}

func abbrev(commit string) string {
	if len(commit) > 8 {
		return commit[:8]
	}
	return commit
}

// Timer collects the duration of equally sized batches of operations.
type Timer struct {
	batch   int
	samples []float64 // ns per op of each batch
	total   time.Duration
	ops     int
}

// NewTimer returns a timer for batches of batchSize operations.
func NewTimer(batchSize int) *Timer {
	return &Timer{batch: batchSize}
}

// Record adds a batch of n operations that took d.
func (t *Timer) Record(n int, d time.Duration) {
	if n <= 0 {
		return
	}
	t.samples = append(t.samples, float64(d.Nanoseconds())/float64(n))
	t.total += d
	t.ops += n
}

// Time runs fn, which performs n operations, and records it as one batch.
func (t *Timer) Time(n int, fn func()) {
	start := time.Now()
	fn()
	t.Record(n, time.Since(start))
}

// BatchSize returns the batch size the timer was created with.
func (t *Timer) BatchSize() int { return t.batch }

// Result summarises the recorded batches: overall ns/op and rate, plus the
// mean, standard deviation, median and 99th percentile of per-batch ns/op.
func (t *Timer) Result(name, category string) Result {
	r := Result{
		Name:       name,
		Category:   category,
		Operations: t.ops,
		Metrics:    make(map[string]float64),
	}
	if t.ops == 0 {
		return r
	}

	r.NsPerOp = float64(t.total.Nanoseconds()) / float64(t.ops)
	if t.total > 0 {
		r.Metrics["ops_per_sec"] = float64(t.ops) / t.total.Seconds()
	}

	sorted := slices.Clone(t.samples)
	slices.Sort(sorted)
	mean, std := stat.MeanStdDev(sorted, nil)
	r.Metrics["batch_mean_ns"] = mean
	if len(sorted) > 1 {
		r.Metrics["batch_stddev_ns"] = std
	}
	r.Metrics["batch_p50_ns"] = stat.Quantile(0.5, stat.Empirical, sorted, nil)
	r.Metrics["batch_p99_ns"] = stat.Quantile(0.99, stat.Empirical, sorted, nil)
	return r
}

// Fingerprint hashes every key/value pair of seq into a value that does not
// depend on iteration order. Two tables holding the same entries have the
// same fingerprint whatever their capacity.
func Fingerprint(seq iter.Seq2[string, string]) uint64 {
	var sum uint64
	d := xxhash.New()
	for k, v := range seq {
		d.Reset()
		_, _ = d.WriteString(k)
		_, _ = d.Write([]byte{0})
		_, _ = d.WriteString(v)
		sum += d.Sum64()
	}
	return sum
}
