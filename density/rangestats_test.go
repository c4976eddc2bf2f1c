package density

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/010m010/PMSChartAnalyzer/chart"
)

func TestRangeRMSAndCMSPartialOverlap(t *testing.T) {
	totals := []int{1, 2, 3}

	rms := RangeRMS(totals, 1.0, 0.0, 2.0)
	cms := RangeCMS(totals, 1.0, 0.0, 2.0)

	assert.InDelta(t, math.Sqrt(5.0/2.0), rms, 1e-9)
	assert.InDelta(t, math.Cbrt(4.5), cms, 1e-9)
}

func TestRangeRMSFractionalBoundaries(t *testing.T) {
	totals := []int{2, 4}

	// [0.5, 1.5) covers half of each bucket
	rms := RangeRMS(totals, 1.0, 0.5, 1.5)
	assert.InDelta(t, math.Sqrt((4*0.5+16*0.5)/1.0), rms, 1e-9)
}

func TestRangeStatsDegenerateInputs(t *testing.T) {
	assert.Equal(t, 0.0, RangeRMS(nil, 1.0, 0, 1))
	assert.Equal(t, 0.0, RangeRMS([]int{1}, 1.0, 2, 1))
	assert.Equal(t, 0.0, RangeCMS([]int{1}, 0, 0, 1))
	assert.Nil(t, ComputeRangeStats(nil, nil, nil, 0, 1))
}

func TestComputeRangeStats(t *testing.T) {
	events := []chart.NoteEvent{
		{Time: 0.0, Lane: 0},
		{Time: 1.0, Lane: 1},
		{Time: 2.0, Lane: 2},
	}
	series := &BucketSeries{
		Width:    1.0,
		Duration: 3.0,
		Totals:   []int{1, 2, 1},
	}
	total := 100.0

	stats := ComputeRangeStats(series, events, &total, 0.0, 3.0)
	require.NotNil(t, stats)

	assert.Equal(t, 0.0, stats.StartSeconds)
	assert.Equal(t, 3.0, stats.EndSeconds)
	assert.Equal(t, 3, stats.NoteCount)
	assert.InDelta(t, 1.0, stats.AverageDensity, 1e-9)
	assert.Greater(t, stats.RMSDensity, 0.0)
	assert.Greater(t, stats.CMSDensity, 0.0)
	require.NotNil(t, stats.GaugeIncrease)
	assert.InDelta(t, 100.0, *stats.GaugeIncrease, 1e-9)
}

func TestComputeRangeStatsSubRange(t *testing.T) {
	events := []chart.NoteEvent{
		{Time: 0.5, Lane: 0},
		{Time: 1.5, Lane: 1},
		{Time: 2.5, Lane: 2},
	}
	series := &BucketSeries{
		Width:    1.0,
		Duration: 3.0,
		Totals:   []int{1, 1, 1},
	}

	// selection is swapped and out of bounds; it gets clamped and flipped
	stats := ComputeRangeStats(series, events, nil, 2.0, -1.0)
	require.NotNil(t, stats)
	assert.Equal(t, 0.0, stats.StartSeconds)
	assert.Equal(t, 2.0, stats.EndSeconds)
	// offsets from the first note: 0.0 and 1.0 fall inside, 2.0 is on the
	// inclusive edge
	assert.Equal(t, 3, stats.NoteCount)
	assert.Nil(t, stats.GaugeIncrease)
}
