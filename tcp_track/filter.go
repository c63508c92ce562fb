package tcp_track

import "fmt"

// Filter smooths the stream of raw readings on one beam channel.
//
// Implementations are stateful and single-channel; the control loop owns one
// instance per beam. Reset discards all accumulated history.
type Filter interface {
	Apply(raw float64) float64
	Reset()
	Samples() []float64
}

// MovingAverage keeps the last N raw readings and outputs their mean.
//
// N = 1 is an exact pass-through. The window introduces a group delay of
// roughly (N-1)/2 frames.
type MovingAverage struct {
	size   int
	window []float64
}

// NewMovingAverage constructs a moving-average filter with window size n.
func NewMovingAverage(n int) (*MovingAverage, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: moving-average window must be >= 1, got %d", ErrConfiguration, n)
	}
	return &MovingAverage{size: n}, nil
}

// Apply ingests one raw reading and returns the mean of the current window.
func (f *MovingAverage) Apply(raw float64) float64 {
	f.window = append(f.window, raw)
	if len(f.window) > f.size {
		f.window = f.window[1:]
	}
	var sum float64
	for _, v := range f.window {
		sum += v
	}
	return sum / float64(len(f.window))
}

// Reset clears the window.
func (f *MovingAverage) Reset() {
	f.window = f.window[:0]
}

// Samples returns a copy of the buffered raw readings.
func (f *MovingAverage) Samples() []float64 {
	out := make([]float64, len(f.window))
	copy(out, f.window)
	return out
}

// Exponential tracks estimate = alpha*raw + (1-alpha)*estimate.
//
// The first sample after construction or Reset primes the estimate directly.
type Exponential struct {
	alpha    float64
	estimate float64
	primed   bool
}

// NewExponential constructs an exponential filter with smoothing factor alpha.
func NewExponential(alpha float64) (*Exponential, error) {
	if alpha <= 0 || alpha >= 1 {
		return nil, fmt.Errorf("%w: exponential alpha must be in (0, 1), got %g", ErrConfiguration, alpha)
	}
	return &Exponential{alpha: alpha}, nil
}

// Apply ingests one raw reading and returns the updated estimate.
func (f *Exponential) Apply(raw float64) float64 {
	if !f.primed {
		f.estimate = raw
		f.primed = true
		return f.estimate
	}
	f.estimate = f.alpha*raw + (1-f.alpha)*f.estimate
	return f.estimate
}

// Reset discards the running estimate.
func (f *Exponential) Reset() {
	f.estimate = 0
	f.primed = false
}

// Samples reports no history; the exponential filter keeps only its estimate.
func (f *Exponential) Samples() []float64 { return nil }

// newFilter builds a cold filter instance for the configured mode.
func newFilter(cfg FilterConfig) (Filter, error) {
	switch cfg.Mode {
	case FilterMovingAverage:
		return NewMovingAverage(cfg.Window)
	case FilterExponential:
		return NewExponential(cfg.Alpha)
	default:
		return nil, fmt.Errorf("%w: unknown filter mode %v", ErrConfiguration, cfg.Mode)
	}
}
