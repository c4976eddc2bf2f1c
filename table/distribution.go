package table

import (
	"regexp"
	"sort"
	"strconv"

	"github.com/010m010/PMSChartAnalyzer/density"
	"github.com/010m010/PMSChartAnalyzer/stats"
)

// Metric names a per-chart scalar usable for distribution summaries.
type Metric string

const (
	MetricPeak      Metric = "peak_density"
	MetricTail      Metric = "tail_density"
	MetricMean      Metric = "mean_density"
	MetricRMS       Metric = "rms_density"
	MetricHighRatio Metric = "high_density_ratio"
)

// Value extracts the metric from a density result.
func (m Metric) Value(r *density.Result) float64 {
	switch m {
	case MetricTail:
		return r.Metrics.TailDensity
	case MetricMean:
		return r.Metrics.MeanDensity
	case MetricRMS:
		return r.Metrics.RMSDensity
	case MetricHighRatio:
		return r.Metrics.HighDensityRatio
	default:
		return r.Metrics.PeakDensity
	}
}

// Distribution describes one difficulty label's metric distribution across
// the batch, ready for box-plot rendering.
type Distribution struct {
	Difficulty string `json:"difficulty"`
	// Count is the number of successfully analyzed charts in the group
	Count int `json:"count"`
	// Metric is the scalar the summary is computed over
	Metric Metric `json:"metric"`
	// Summary is the five-number summary of Metric across the group
	Summary stats.FiveNumber `json:"summary"`
	// Averages holds the per-group mean of every density metric
	Averages density.Metrics `json:"averages"`
}

// GroupDistributions groups successful entries by difficulty label in
// first-seen order and computes each group's order statistics over the chosen
// metric. Failed entries are left out; a label whose every entry failed gets
// no group.
func GroupDistributions(entries []EntryResult, metric Metric) []Distribution {
	if metric == "" {
		metric = MetricPeak
	}

	var order []string
	grouped := make(map[string][]*density.Result)
	for _, e := range entries {
		if e.Failed() || e.Result == nil {
			continue
		}
		label := e.Entry.Difficulty
		if _, seen := grouped[label]; !seen {
			order = append(order, label)
		}
		grouped[label] = append(grouped[label], e.Result)
	}

	distributions := make([]Distribution, 0, len(order))
	for _, label := range order {
		results := grouped[label]
		values := make([]float64, len(results))
		for i, r := range results {
			values[i] = metric.Value(r)
		}
		summary, err := stats.FiveNumberSummary(values)
		if err != nil {
			continue
		}
		distributions = append(distributions, Distribution{
			Difficulty: label,
			Count:      len(results),
			Metric:     metric,
			Summary:    summary,
			Averages:   averageMetrics(results),
		})
	}
	return distributions
}

func averageMetrics(results []*density.Result) density.Metrics {
	if len(results) == 0 {
		return density.Metrics{}
	}
	var sum density.Metrics
	for _, r := range results {
		sum.PeakDensity += r.Metrics.PeakDensity
		sum.TailDensity += r.Metrics.TailDensity
		sum.MeanDensity += r.Metrics.MeanDensity
		sum.RMSDensity += r.Metrics.RMSDensity
		sum.HighDensityRatio += r.Metrics.HighDensityRatio
	}
	n := float64(len(results))
	return density.Metrics{
		PeakDensity:      sum.PeakDensity / n,
		TailDensity:      sum.TailDensity / n,
		MeanDensity:      sum.MeanDensity / n,
		RMSDensity:       sum.RMSDensity / n,
		HighDensityRatio: sum.HighDensityRatio / n,
	}
}

var difficultyNumber = regexp.MustCompile(`[0-9]+(?:\.[0-9]+)?`)

// SortDifficulties orders labels numerically when they contain a number and
// lexically otherwise, with numeric labels first. Grouping itself stays in
// first-seen order; this is for callers that want a sorted display.
func SortDifficulties(labels []string) {
	sort.SliceStable(labels, func(i, j int) bool {
		ni, iNum := difficultyNumeric(labels[i])
		nj, jNum := difficultyNumeric(labels[j])
		switch {
		case iNum && jNum:
			if ni != nj {
				return ni < nj
			}
			return labels[i] < labels[j]
		case iNum:
			return true
		case jNum:
			return false
		default:
			return labels[i] < labels[j]
		}
	})
}

func difficultyNumeric(label string) (float64, bool) {
	m := difficultyNumber.FindString(label)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
