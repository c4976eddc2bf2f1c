package density

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/010m010/PMSChartAnalyzer/chart"
	"github.com/010m010/PMSChartAnalyzer/stats"
)

// Config controls density computation.
type Config struct {
	// BucketWidth is the window size in seconds
	BucketWidth float64 `json:"bucket_width"`
	// HighDensityMultiplier marks a bucket as high density when its total
	// reaches this multiple of the mean bucket total
	HighDensityMultiplier float64 `json:"high_density_multiplier"`
	// TailWindow is the length in seconds of the chart-end window used for
	// the tail density
	TailWindow float64 `json:"tail_window"`
}

// DefaultConfig returns the density defaults: 1-second buckets, 2x mean for
// the high-density threshold, 5-second tail window.
func DefaultConfig() *Config {
	return &Config{
		BucketWidth:           1.0,
		HighDensityMultiplier: 2.0,
		TailWindow:            5.0,
	}
}

// Metrics are the summary statistics of one chart's bucket series. All five
// derive from the same series and are recomputed together, never patched
// individually.
type Metrics struct {
	// PeakDensity is the maximum bucket total
	PeakDensity float64 `json:"peak_density"`
	// TailDensity is the mean bucket total over the last TailWindow seconds
	TailDensity float64 `json:"tail_density"`
	// MeanDensity is total notes divided by chart duration (a continuous
	// rate, not a bucket average)
	MeanDensity float64 `json:"mean_density"`
	// RMSDensity is the root mean square of bucket totals
	RMSDensity float64 `json:"rms_density"`
	// HighDensityRatio is the fraction of buckets at or above the
	// high-density threshold
	HighDensityRatio float64 `json:"high_density_ratio"`
}

// Result is the structured per-chart output handed to callers: the bucket
// series for rendering plus the derived metrics.
type Result struct {
	Buckets   *BucketSeries `json:"buckets"`
	Metrics   Metrics       `json:"metrics"`
	NoteCount int           `json:"note_count"`
	Duration  float64       `json:"duration"`
	// BurstInterval is the dominant density-oscillation period in seconds,
	// 0 when the series is too short or flat to tell
	BurstInterval float64 `json:"burst_interval"`
}

// Compute buckets the events and derives the density metrics. The duration
// should be the chart's total time; when it is not positive the maximum event
// timestamp is used instead. Either way the covered span is rounded up to a
// whole number of buckets. Zero events is an EmptyChart failure.
func Compute(events []chart.NoteEvent, duration float64, config *Config) (*Result, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if config.BucketWidth <= 0 {
		return nil, fmt.Errorf("bucket width must be positive, got %v", config.BucketWidth)
	}
	if len(events) == 0 {
		return nil, fmt.Errorf("%w: no events to bucket", chart.ErrEmptyChart)
	}

	if duration <= 0 {
		for _, ev := range events {
			if ev.Time > duration {
				duration = ev.Time
			}
		}
		if duration <= 0 {
			duration = config.BucketWidth
		}
	}
	series := makeBuckets(events, duration, config.BucketWidth)
	return fromSeries(series, len(events), duration, config), nil
}

// FromSeries derives the metrics from an existing bucket series, as when a
// cached analysis is rehydrated without re-parsing the chart. The metrics are
// always recomputed from the series, never trusted from the caller.
func FromSeries(series *BucketSeries, noteCount int, duration float64, config *Config) (*Result, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if series == nil || series.Len() == 0 {
		return nil, fmt.Errorf("%w: empty bucket series", chart.ErrEmptyChart)
	}
	if duration <= 0 {
		duration = series.Duration
	}
	return fromSeries(series, noteCount, duration, config), nil
}

func fromSeries(series *BucketSeries, noteCount int, duration float64, config *Config) *Result {
	totals := series.FloatTotals()
	meanBucket := stats.Mean(totals)

	metrics := Metrics{
		PeakDensity: floats.Max(totals),
		TailDensity: tailDensity(series, config.TailWindow),
		MeanDensity: float64(noteCount) / duration,
		RMSDensity:  stats.RMS(totals),
	}
	if meanBucket > 0 {
		threshold := config.HighDensityMultiplier * meanBucket
		high := 0
		for _, v := range totals {
			if v >= threshold {
				high++
			}
		}
		metrics.HighDensityRatio = float64(high) / float64(len(totals))
	}

	return &Result{
		Buckets:       series,
		Metrics:       metrics,
		NoteCount:     noteCount,
		Duration:      duration,
		BurstInterval: BurstInterval(series),
	}
}

// tailDensity is the overlap-weighted mean bucket total over the last
// min(window, duration) seconds. For charts shorter than the window the tail
// covers the whole chart.
func tailDensity(series *BucketSeries, window float64) float64 {
	if window <= 0 {
		return 0.0
	}
	if window > series.Duration {
		window = series.Duration
	}
	start := series.Duration - window

	weighted := 0.0
	for i, total := range series.Totals {
		bucketStart := float64(i) * series.Width
		bucketEnd := bucketStart + series.Width
		overlap := math.Min(bucketEnd, series.Duration) - math.Max(bucketStart, start)
		if overlap <= 0 {
			continue
		}
		weighted += float64(total) * overlap / series.Width
	}
	return weighted / window
}
