package density

import (
	"math"

	"github.com/010m010/PMSChartAnalyzer/chart"
)

// RangeStats are the statistics of a user-selected [start, end) slice of the
// bucket series, as shown when dragging a selection across the density chart.
type RangeStats struct {
	StartSeconds   float64  `json:"start_seconds"`
	EndSeconds     float64  `json:"end_seconds"`
	NoteCount      int      `json:"note_count"`
	AverageDensity float64  `json:"average_density"`
	RMSDensity     float64  `json:"rms_density"`
	CMSDensity     float64  `json:"cms_density"`
	// GaugeIncrease estimates the groove-gauge gain over the range from the
	// chart's #TOTAL value, nil when the chart declares none
	GaugeIncrease *float64 `json:"gauge_increase,omitempty"`
}

// RangeRMS computes the RMS of bucket totals over [start, end), weighting
// partially covered buckets by their overlap.
func RangeRMS(totals []int, width, start, end float64) float64 {
	if end <= start || len(totals) == 0 || width <= 0 {
		return 0.0
	}
	weighted := overlapWeightedSum(totals, width, start, end, func(v float64) float64 { return v * v })
	return math.Sqrt(weighted / (end - start))
}

// RangeCMS computes the cubic mean of bucket totals over [start, end) the
// same way. The cubic mean punishes short spikes harder than RMS and is the
// metric players compare for burst-heavy sections.
func RangeCMS(totals []int, width, start, end float64) float64 {
	if end <= start || len(totals) == 0 || width <= 0 {
		return 0.0
	}
	weighted := overlapWeightedSum(totals, width, start, end, func(v float64) float64 { return v * v * v })
	return math.Cbrt(weighted / (end - start))
}

func overlapWeightedSum(totals []int, width, start, end float64, f func(float64) float64) float64 {
	sum := 0.0
	for i, total := range totals {
		bucketStart := float64(i) * width
		bucketEnd := bucketStart + width
		overlap := math.Min(bucketEnd, end) - math.Max(bucketStart, start)
		if overlap <= 0 {
			continue
		}
		sum += f(float64(total)) * overlap
	}
	return sum
}

// ComputeRangeStats derives the selection statistics for the bucket range
// [startBucket, endBucket), given in fractional bucket indices. Returns nil
// for an empty series or a degenerate selection. Note counting is relative to
// the first note, matching how the rendered chart is anchored.
func ComputeRangeStats(series *BucketSeries, events []chart.NoteEvent, total *float64, startBucket, endBucket float64) *RangeStats {
	if series == nil || series.Len() == 0 || series.Duration <= 0 {
		return nil
	}

	bucketCount := float64(series.Len())
	lo := math.Max(math.Min(startBucket, endBucket), 0)
	hi := math.Min(math.Max(startBucket, endBucket), bucketCount)

	startIndex := int(lo)
	endIndex := int(hi)
	if endIndex <= startIndex && hi > lo {
		endIndex = startIndex + 1
		if endIndex > series.Len() {
			endIndex = series.Len()
		}
	}

	startSeconds := float64(startIndex) * series.Width
	endSeconds := math.Min(float64(endIndex)*series.Width, series.Duration)

	noteCount := 0
	if len(events) > 0 {
		firstNote := events[0].Time
		for _, ev := range events {
			offset := ev.Time - firstNote
			if offset >= startSeconds && offset <= endSeconds+1e-6 {
				noteCount++
			}
		}
	}

	span := endSeconds - startSeconds
	averageDensity := 0.0
	if span > 0 {
		averageDensity = float64(noteCount) / span
	}

	var gaugeIncrease *float64
	if total != nil && len(events) > 0 {
		gain := *total / float64(len(events)) * float64(noteCount)
		gaugeIncrease = &gain
	}

	return &RangeStats{
		StartSeconds:   startSeconds,
		EndSeconds:     endSeconds,
		NoteCount:      noteCount,
		AverageDensity: averageDensity,
		RMSDensity:     RangeRMS(series.Totals, series.Width, startSeconds, endSeconds),
		CMSDensity:     RangeCMS(series.Totals, series.Width, startSeconds, endSeconds),
		GaugeIncrease:  gaugeIncrease,
	}
}
