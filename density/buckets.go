// Package density turns a chart's note-event stream into fixed-width time
// buckets and the summary statistics derived from them.
package density

import (
	"math"

	"github.com/010m010/PMSChartAnalyzer/chart"
)

// BucketSeries is the chart's full duration split into fixed-width windows,
// each holding a note count per lane and in total. Buckets cover the whole
// duration with no gaps, so empty leading/trailing windows are present and a
// bar chart can render the series directly.
type BucketSeries struct {
	// Width is the bucket width in seconds
	Width float64 `json:"width"`
	// Duration is the covered time span, a whole multiple of Width
	Duration float64 `json:"duration"`
	// Totals holds the note count of each bucket
	Totals []int `json:"totals"`
	// PerLane holds each bucket's count split by lane, indexed
	// [bucket][lane]
	PerLane [][]int `json:"per_lane"`
}

// Len returns the number of buckets.
func (b *BucketSeries) Len() int {
	return len(b.Totals)
}

// FloatTotals returns the bucket totals as float64 for statistics.
func (b *BucketSeries) FloatTotals() []float64 {
	out := make([]float64, len(b.Totals))
	for i, v := range b.Totals {
		out[i] = float64(v)
	}
	return out
}

// makeBuckets assigns every event to the bucket whose half-open interval
// [start, start+width) contains its timestamp. The last bucket is closed so
// an event landing exactly on the final boundary is kept.
func makeBuckets(events []chart.NoteEvent, duration, width float64) *BucketSeries {
	numBuckets := int(math.Ceil(duration / width))
	if numBuckets < 1 {
		numBuckets = 1
	}

	perLane := make([][]int, numBuckets)
	for i := range perLane {
		perLane[i] = make([]int, chart.NumLanes)
	}
	totals := make([]int, numBuckets)

	for _, ev := range events {
		idx := int(ev.Time / width)
		if idx >= numBuckets {
			idx = numBuckets - 1
		}
		if idx < 0 {
			idx = 0
		}
		totals[idx]++
		if ev.Lane >= 0 && int(ev.Lane) < chart.NumLanes {
			perLane[idx][ev.Lane]++
		}
	}

	return &BucketSeries{
		Width:    width,
		Duration: float64(numBuckets) * width,
		Totals:   totals,
		PerLane:  perLane,
	}
}
