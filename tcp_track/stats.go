package tcp_track

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// ErrorStats aggregates the tracking-error sequence since the last reset.
type ErrorStats struct {
	Count  int
	Mean   float64
	RMS    float64
	StdDev float64
	MaxAbs float64
	P50    float64
	P90    float64
	P99    float64
}

// ErrorEvaluator accumulates instantaneous tracking errors for reporting.
//
// It is read-only with respect to the loop state; the loop feeds it one
// observation per completed tick and clears it on auto-reset.
type ErrorEvaluator struct {
	errs []float64
}

// Observe appends one instantaneous tracking error.
func (e *ErrorEvaluator) Observe(err float64) {
	e.errs = append(e.errs, err)
}

// Reset discards all accumulated observations.
func (e *ErrorEvaluator) Reset() {
	e.errs = e.errs[:0]
}

// Stats computes the running aggregates over the observed sequence.
func (e *ErrorEvaluator) Stats() ErrorStats {
	n := len(e.errs)
	if n == 0 {
		return ErrorStats{}
	}

	var sumSq, maxAbs float64
	sorted := make([]float64, n)
	for i, v := range e.errs {
		sumSq += v * v
		if abs := math.Abs(v); abs > maxAbs {
			maxAbs = abs
		}
		sorted[i] = v
	}
	sort.Float64s(sorted)

	st := ErrorStats{
		Count:  n,
		Mean:   stat.Mean(sorted, nil),
		RMS:    math.Sqrt(sumSq / float64(n)),
		MaxAbs: maxAbs,
		P50:    stat.Quantile(0.50, stat.Empirical, sorted, nil),
		P90:    stat.Quantile(0.90, stat.Empirical, sorted, nil),
		P99:    stat.Quantile(0.99, stat.Empirical, sorted, nil),
	}
	if n > 1 {
		st.StdDev = stat.StdDev(sorted, nil)
	}
	return st
}

// sensorVariance computes the population variance of the combined per-channel
// sample buffers, for the telemetry variance readout.
func sensorVariance(f1, f2 Filter) float64 {
	samples := append(f1.Samples(), f2.Samples()...)
	if len(samples) < 2 {
		return 0
	}
	return stat.PopVariance(samples, nil)
}
