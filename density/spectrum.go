package density

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"

	"github.com/010m010/PMSChartAnalyzer/stats"
)

// minSpectrumBuckets is the shortest series worth a frequency estimate.
const minSpectrumBuckets = 8

// BurstInterval estimates the dominant oscillation period of the bucket-total
// series in seconds, i.e. how far apart a chart's density bursts repeat.
// Returns 0 when the series is too short or has no clear periodic component.
func BurstInterval(series *BucketSeries) float64 {
	n := series.Len()
	if n < minSpectrumBuckets {
		return 0.0
	}

	totals := series.FloatTotals()
	mean := stats.Mean(totals)
	centered := make([]float64, n)
	flat := true
	for i, v := range totals {
		centered[i] = v - mean
		if centered[i] != 0 {
			flat = false
		}
	}
	if flat {
		return 0.0
	}

	spectrum := fft.FFTReal(centered)

	// Bin 0 is the (removed) mean; only the first half carries distinct
	// frequencies for a real signal.
	peakBin := 0
	peakMagnitude := 0.0
	for k := 1; k <= n/2; k++ {
		magnitude := cmplx.Abs(spectrum[k])
		if magnitude > peakMagnitude {
			peakMagnitude = magnitude
			peakBin = k
		}
	}
	if peakBin == 0 {
		return 0.0
	}

	return float64(n) * series.Width / float64(peakBin)
}
