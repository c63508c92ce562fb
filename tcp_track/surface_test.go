package tcp_track

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSineSurface(t *testing.T) {
	t.Parallel()

	s := NewSineSurface(SurfaceConfig{Amplitude: 5, Wavenumber: 0.1, Base: 10})

	t.Run("height matches the demo surface", func(t *testing.T) {
		t.Parallel()
		assert.InDelta(t, 10.0, s.Height(0), 1e-12)
		assert.InDelta(t, 15.0, s.Height(3.14159265358979/0.2), 1e-6)
	})

	t.Run("analytic slope agrees with a finite difference", func(t *testing.T) {
		t.Parallel()
		for _, x := range []float64{0, 7.5, 31.4, 62.8, 99} {
			assert.InDelta(t, s.Slope(x), finiteSlope(s, x, 1e-4), 1e-6, "x = %g", x)
		}
	})
}

func TestLineSurface(t *testing.T) {
	t.Parallel()

	s := LineSurface{A: 0.1, B: 2}
	assert.Equal(t, 2.0, s.Height(0))
	assert.Equal(t, 12.0, s.Height(100))
	assert.Equal(t, 0.1, s.Slope(42))
	assert.InDelta(t, 0.1, finiteSlope(s, 13, 0.1), 1e-12)
}
