package benchreport

import (
	"math"
	"sort"
	"strings"
)

// Assessment classifies a result against its baseline.
type Assessment string

const (
	Regression  Assessment = "REGRESSION"
	Improvement Assessment = "IMPROVEMENT"
	Neutral     Assessment = "NEUTRAL"
)

// MetricDelta compares one metric of a result with its baseline.
type MetricDelta struct {
	Name          string  `json:"name"`
	Base          float64 `json:"base_value"`
	Current       float64 `json:"current_value"`
	PercentChange float64 `json:"percent_change"`
	Regression    bool    `json:"is_regression"`
	Improvement   bool    `json:"is_improvement"`
	Significant   bool    `json:"is_significant"`
}

// ResultDelta compares one result with the baseline result of the same name.
type ResultDelta struct {
	Name       string        `json:"name"`
	Category   string        `json:"category"`
	Metrics    []MetricDelta `json:"metric_comparisons"`
	Assessment Assessment    `json:"overall_assessment"`
	// Score averages the signed percentage changes, improvements positive.
	Score float64 `json:"score"`
}

// Comparison is the outcome of comparing two summaries.
type Comparison struct {
	BaseCommit             string        `json:"base_commit"`
	CurrentCommit          string        `json:"current_commit"`
	Improved               int           `json:"improved_benchmarks"`
	// Regressed counts every result that got worse overall, significant or not.
	Regressed              int           `json:"regression_benchmarks"`
	SignificantRegressions int           `json:"significant_regressions"`
	Results                []ResultDelta `json:"benchmark_comparisons"`
}

// Compare matches current results to base results by name. A metric change
// of at least threshold percent in the wrong direction marks the result as a
// regression. Results missing from base are skipped. The returned results
// are ordered worst first.
func Compare(base, current *Summary, threshold float64) Comparison {
	baseline := make(map[string]Result, len(base.Results))
	for _, r := range base.Results {
		baseline[r.Name] = r
	}

	cmp := Comparison{
		BaseCommit:    base.CommitID,
		CurrentCommit: current.CommitID,
	}

	for _, cur := range current.Results {
		old, ok := baseline[cur.Name]
		if !ok {
			continue
		}

		rd := ResultDelta{Name: cur.Name, Category: cur.Category}
		regressed := false
		score, n := 0.0, 0

		oldMetrics := flatten(old)
		for name, value := range flatten(cur) {
			baseValue, ok := oldMetrics[name]
			if !ok {
				continue
			}

			md := MetricDelta{Name: name, Base: baseValue, Current: value}
			if baseValue != 0 {
				md.PercentChange = (value - baseValue) / baseValue * 100
			}
			if higherIsBetter(name) {
				md.Regression = md.PercentChange < 0
				md.Improvement = md.PercentChange > 0
			} else {
				md.Regression = md.PercentChange > 0
				md.Improvement = md.PercentChange < 0
			}
			md.Significant = math.Abs(md.PercentChange) >= threshold

			if md.Regression && md.Significant {
				regressed = true
			}
			switch {
			case md.Improvement:
				score += math.Abs(md.PercentChange)
			case md.Regression:
				score -= math.Abs(md.PercentChange)
			}
			n++
			rd.Metrics = append(rd.Metrics, md)
		}

		if n > 0 {
			rd.Score = score / float64(n)
		}
		sort.Slice(rd.Metrics, func(i, j int) bool {
			return math.Abs(rd.Metrics[i].PercentChange) > math.Abs(rd.Metrics[j].PercentChange)
		})

		switch {
		case regressed:
			rd.Assessment = Regression
			cmp.Regressed++
			cmp.SignificantRegressions++
		case rd.Score > 0:
			rd.Assessment = Improvement
			cmp.Improved++
		default:
			rd.Assessment = Neutral
			if rd.Score < 0 {
				cmp.Regressed++
			}
		}
		cmp.Results = append(cmp.Results, rd)
	}

	sort.SliceStable(cmp.Results, func(i, j int) bool {
		ri, rj := cmp.Results[i], cmp.Results[j]
		if (ri.Assessment == Regression) != (rj.Assessment == Regression) {
			return ri.Assessment == Regression
		}
		return ri.Score < rj.Score
	})
	return cmp
}

// flatten merges the top level ns/op into the metric map.
func flatten(r Result) map[string]float64 {
	m := make(map[string]float64, len(r.Metrics)+1)
	for k, v := range r.Metrics {
		m[k] = v
	}
	if r.NsPerOp != 0 {
		m["ns_per_op"] = r.NsPerOp
	}
	return m
}

func higherIsBetter(metric string) bool {
	for _, pattern := range []string{"ops_per_sec", "rate", "throughput"} {
		if strings.Contains(metric, pattern) {
			return true
		}
	}
	// ns/op, latencies, probe lengths, bytes
	return false
}
