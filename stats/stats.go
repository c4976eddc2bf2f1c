// Package stats provides the small set of statistical helpers shared by the
// density engine and the batch aggregator, using gonum for robustness.
package stats

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Mean calculates the arithmetic mean of a slice using gonum
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return stat.Mean(data, nil)
}

// RMS calculates the root mean square of a slice
func RMS(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	sumSquares := 0.0
	for _, val := range data {
		sumSquares += val * val
	}
	return math.Sqrt(sumSquares / float64(len(data)))
}

// CubicMean calculates the cubic mean of a slice, which weights spikes even
// harder than RMS
func CubicMean(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	sumCubes := 0.0
	for _, val := range data {
		sumCubes += val * val * val
	}
	return math.Cbrt(sumCubes / float64(len(data)))
}

// Variance calculates the sample variance of a slice using gonum
func Variance(data []float64) float64 {
	if len(data) < 2 {
		return 0.0
	}
	return stat.Variance(data, nil)
}

// StandardDeviation calculates the sample standard deviation
func StandardDeviation(data []float64) float64 {
	return math.Sqrt(Variance(data))
}

// Quantile calculates the q-th quantile (q between 0 and 1) of the data using
// linear interpolation between closest ranks (the R-7/Excel convention), so
// the median of {50, 70} is 60 rather than an observed sample value.
func Quantile(data []float64, q float64) float64 {
	if len(data) == 0 || q < 0 || q > 1 {
		return 0.0
	}

	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)

	return quantileSorted(sorted, q)
}

func quantileSorted(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}

	h := float64(n-1)*q + 1.0
	if h <= 1.0 {
		return sorted[0]
	}
	if h >= float64(n) {
		return sorted[n-1]
	}

	lower := int(math.Floor(h)) - 1
	upper := int(math.Ceil(h)) - 1
	if lower == upper {
		return sorted[lower]
	}

	fraction := h - math.Floor(h)
	return sorted[lower] + fraction*(sorted[upper]-sorted[lower])
}

// FiveNumber is the box-plot five-number summary of a sample.
type FiveNumber struct {
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
}

// IQR returns the interquartile range
func (f FiveNumber) IQR() float64 {
	return f.Q3 - f.Q1
}

// FiveNumberSummary computes min, Q1, median, Q3 and max for box plots.
func FiveNumberSummary(data []float64) (FiveNumber, error) {
	if len(data) == 0 {
		return FiveNumber{}, fmt.Errorf("empty data")
	}

	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)

	return FiveNumber{
		Min:    sorted[0],
		Q1:     quantileSorted(sorted, 0.25),
		Median: quantileSorted(sorted, 0.50),
		Q3:     quantileSorted(sorted, 0.75),
		Max:    sorted[len(sorted)-1],
	}, nil
}
