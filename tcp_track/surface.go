package tcp_track

import "math"

// SurfaceModel is the ground-truth surface the beams intersect.
//
// Height must be defined and continuous over the whole traversal range.
// Slope is used for diagnostics and bootstrap only, never for control.
type SurfaceModel interface {
	Height(x float64) float64
	Slope(x float64) float64
}

// SineSurface is the demo surface z = Amplitude*sin(Wavenumber*x) + Base.
type SineSurface struct {
	Amplitude  float64
	Wavenumber float64
	Base       float64
}

// NewSineSurface builds the surface described by a SurfaceConfig.
func NewSineSurface(cfg SurfaceConfig) SineSurface {
	return SineSurface{Amplitude: cfg.Amplitude, Wavenumber: cfg.Wavenumber, Base: cfg.Base}
}

func (s SineSurface) Height(x float64) float64 {
	return s.Amplitude*math.Sin(s.Wavenumber*x) + s.Base
}

func (s SineSurface) Slope(x float64) float64 {
	return s.Amplitude * s.Wavenumber * math.Cos(s.Wavenumber*x)
}

// LineSurface is an exactly linear surface z = A*x + B.
//
// Tracking it is the reference scenario: the local line fit recovers A at
// every frame and the closed-form and numeric intersections coincide.
type LineSurface struct {
	A float64
	B float64
}

func (s LineSurface) Height(x float64) float64 { return s.A*x + s.B }

func (s LineSurface) Slope(float64) float64 { return s.A }

// finiteSlope estimates dz/dx by central difference with half-width h.
func finiteSlope(m SurfaceModel, x, h float64) float64 {
	return (m.Height(x+h) - m.Height(x-h)) / (2 * h)
}
