package tcp_track

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMovingAverage(t *testing.T) {
	t.Parallel()

	t.Run("outputs the mean of the last N readings", func(t *testing.T) {
		t.Parallel()
		f, err := NewMovingAverage(3)
		require.NoError(t, err)

		assert.InDelta(t, 1.0, f.Apply(1), 1e-12)
		assert.InDelta(t, 1.5, f.Apply(2), 1e-12)
		assert.InDelta(t, 2.0, f.Apply(3), 1e-12)
		// Window is full: the oldest reading drops out.
		assert.InDelta(t, 3.0, f.Apply(4), 1e-12)
		assert.InDelta(t, 4.0, f.Apply(5), 1e-12)
	})

	t.Run("window of one is a pass-through", func(t *testing.T) {
		t.Parallel()
		f, err := NewMovingAverage(1)
		require.NoError(t, err)

		for _, raw := range []float64{3.5, -2.25, 0, 17.125} {
			assert.Equal(t, raw, f.Apply(raw))
		}
	})

	t.Run("reset clears the window", func(t *testing.T) {
		t.Parallel()
		f, err := NewMovingAverage(4)
		require.NoError(t, err)

		f.Apply(10)
		f.Apply(20)
		require.Len(t, f.Samples(), 2)

		f.Reset()
		assert.Empty(t, f.Samples())
		assert.InDelta(t, 7.0, f.Apply(7), 1e-12)
	})

	t.Run("rejects a window below one", func(t *testing.T) {
		t.Parallel()
		_, err := NewMovingAverage(0)
		require.ErrorIs(t, err, ErrConfiguration)
	})
}

func TestExponential(t *testing.T) {
	t.Parallel()

	t.Run("first sample primes the estimate", func(t *testing.T) {
		t.Parallel()
		f, err := NewExponential(0.3)
		require.NoError(t, err)

		assert.Equal(t, 4.5, f.Apply(4.5))
	})

	t.Run("satisfies the recursion exactly", func(t *testing.T) {
		t.Parallel()
		const alpha = 0.25
		f, err := NewExponential(alpha)
		require.NoError(t, err)

		raws := []float64{1, 4, -2, 8, 8, 0.5}
		estimate := raws[0]
		assert.Equal(t, estimate, f.Apply(raws[0]))
		for _, raw := range raws[1:] {
			estimate = alpha*raw + (1-alpha)*estimate
			assert.Equal(t, estimate, f.Apply(raw))
		}
	})

	t.Run("reset forgets the estimate", func(t *testing.T) {
		t.Parallel()
		f, err := NewExponential(0.5)
		require.NoError(t, err)

		f.Apply(100)
		f.Reset()
		assert.Equal(t, 3.0, f.Apply(3))
	})

	t.Run("rejects alpha outside (0,1)", func(t *testing.T) {
		t.Parallel()
		for _, alpha := range []float64{0, 1, -0.1, 1.5} {
			_, err := NewExponential(alpha)
			assert.ErrorIs(t, err, ErrConfiguration, "alpha %g", alpha)
		}
	})
}

func TestNewFilter(t *testing.T) {
	t.Parallel()

	_, err := newFilter(FilterConfig{Mode: FilterMode(99)})
	require.ErrorIs(t, err, ErrConfiguration)

	f, err := newFilter(FilterConfig{Mode: FilterExponential, Alpha: 0.4})
	require.NoError(t, err)
	assert.IsType(t, &Exponential{}, f)

	f, err = newFilter(FilterConfig{Mode: FilterMovingAverage, Window: 5})
	require.NoError(t, err)
	assert.IsType(t, &MovingAverage{}, f)
}
