package tcp_track

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testConfig is the worked scenario: z(x) = 0.1x, leads 5 and 10, stand-off 5,
// smoothing disabled.
func testConfig() Config {
	return Config{
		Tracking: TrackingConfig{
			Offset:   5,
			Lead1:    5,
			Lead2:    10,
			StepSize: 0.5,
			XStart:   0,
			XEnd:     1000,
		},
		Filter: FilterConfig{Mode: FilterMovingAverage, Window: 1},
	}
}

func TestLinearSurfaceTracking(t *testing.T) {
	t.Parallel()

	surface := LineSurface{A: 0.1}
	loop, err := NewControlLoop(testConfig(), surface)
	require.NoError(t, err)

	for k := 0; k < 50; k++ {
		res, err := loop.Step()
		require.NoError(t, err, "frame %d", k)
		require.Equal(t, k, res.Frame)

		// The fitted slope recovers the true slope at every frame.
		assert.InDelta(t, 0.1, res.Slope, 1e-9, "frame %d", k)

		// The commanded height sits exactly one stand-off above the predicted
		// surface at the frame's x.
		intercept := res.Filtered[0] - res.Slope*res.Hits[0].Point.X
		zPred := res.Slope*res.Pose.X + intercept
		assert.InDelta(t, 5.0, loop.Pose().Z-zPred, 1e-9, "frame %d", k)

		if k == 0 {
			assert.InDelta(t, 0.0, res.TrackError, 1e-12)
		} else {
			// Feed-forward lag: the command reflects the slope one tick ago,
			// so a linear surface leaves a constant residual of -A*step.
			assert.InDelta(t, -0.05, res.TrackError, 1e-9, "frame %d", k)
		}
	}
}

// rampSurface is flat until rampStart, then climbs at rampSlope. It lets a
// test perturb readings beyond a chosen sensing horizon only.
type rampSurface struct {
	rampStart float64
	rampSlope float64
}

func (s rampSurface) Height(x float64) float64 {
	if x <= s.rampStart {
		return 0
	}
	return s.rampSlope * (x - s.rampStart)
}

func (s rampSurface) Slope(x float64) float64 {
	if x <= s.rampStart {
		return 0
	}
	return s.rampSlope
}

func TestCommandIsCausal(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Tracking.StepSize = 1

	// Both loops see identical surfaces for every reading through frame 5
	// (max sensed x = 5 + 10 = 15). Loop B's surface is perturbed beyond
	// that horizon, so the perturbation is first read at frame 6.
	loopA, err := NewControlLoop(cfg, rampSurface{rampStart: 1e9})
	require.NoError(t, err)
	loopB, err := NewControlLoop(cfg, rampSurface{rampStart: 15.5, rampSlope: 0.5})
	require.NoError(t, err)

	for k := 0; k <= 5; k++ {
		resA, err := loopA.Step()
		require.NoError(t, err)
		resB, err := loopB.Step()
		require.NoError(t, err)
		require.Equal(t, resA, resB, "frame %d", k)
	}

	// The frame-6 command was issued at frame 5 and must be identical: it is
	// a pure function of data available through frame 5.
	require.Equal(t, loopA.Pose(), loopB.Pose())

	resA, err := loopA.Step()
	require.NoError(t, err)
	resB, err := loopB.Step()
	require.NoError(t, err)

	assert.Equal(t, resA.Pose, resB.Pose, "frame-6 pose is part of the frame-6 command")
	assert.NotEqual(t, resA.Raw[1], resB.Raw[1], "the perturbation must be visible at frame 6")
	assert.NotEqual(t, loopA.Pose(), loopB.Pose(), "the frame-7 command reacts to it")
}

func TestAutoReset(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Tracking.StepSize = 1
	cfg.Tracking.XEnd = 100
	cfg.Filter = FilterConfig{Mode: FilterMovingAverage, Window: 5}
	surface := LineSurface{A: 0.2}

	loop, err := NewControlLoop(cfg, surface)
	require.NoError(t, err)

	for k := 0; k < 99; k++ {
		res, err := loop.Step()
		require.NoError(t, err)
		require.False(t, res.Reset, "no reset before the bound, frame %d", k)
		require.Equal(t, k, res.Frame)
	}

	// x = 99 at frame 99: the advance to 100 trips the bound.
	res, err := loop.Step()
	require.NoError(t, err)
	require.True(t, res.Reset)
	require.Equal(t, 99, res.Frame)

	assert.Equal(t, 0, loop.Frame())
	assert.Equal(t, 0.0, loop.Pose().X)
	assert.InDelta(t, surface.Height(0)+5, loop.Pose().Z, 1e-12)
	assert.Equal(t, StateRunning, loop.State())

	stats := loop.LastTraversalStats()
	assert.Equal(t, 100, stats.Count)
	assert.Equal(t, 0, loop.Stats().Count, "running stats restart after reset")

	// Cleared filter history: the first post-reset reading passes through
	// unchanged even though the window never filled from the old traversal.
	res, err = loop.Step()
	require.NoError(t, err)
	assert.Equal(t, 0, res.Frame)
	assert.Equal(t, res.Raw, res.Filtered)
}

func TestEqualLeadsRejected(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Tracking.Lead2 = cfg.Tracking.Lead1
	_, err := NewControlLoop(cfg, LineSurface{})
	require.ErrorIs(t, err, ErrConfiguration)

	loop, err := NewControlLoop(testConfig(), LineSurface{})
	require.NoError(t, err)
	require.ErrorIs(t, loop.SetConfig(cfg), ErrConfiguration)
	assert.Equal(t, 10.0, loop.Config().Tracking.Lead2, "rejected config must not stick")
}

func TestSetFilterMode(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Filter = FilterConfig{Mode: FilterMovingAverage, Window: 4}
	loop, err := NewControlLoop(cfg, LineSurface{A: 0.3})
	require.NoError(t, err)

	for k := 0; k < 6; k++ {
		_, err := loop.Step()
		require.NoError(t, err)
	}

	t.Run("switching starts the new mode cold", func(t *testing.T) {
		require.NoError(t, loop.SetFilterMode(FilterConfig{Mode: FilterExponential, Alpha: 0.5}))

		res, err := loop.Step()
		require.NoError(t, err)
		assert.Equal(t, res.Raw, res.Filtered, "first sample primes the estimate")

		prev := res.Filtered
		res, err = loop.Step()
		require.NoError(t, err)
		assert.InDelta(t, 0.5*res.Raw[0]+0.5*prev[0], res.Filtered[0], 1e-12)
		assert.InDelta(t, 0.5*res.Raw[1]+0.5*prev[1], res.Filtered[1], 1e-12)
	})

	t.Run("invalid parameters are rejected", func(t *testing.T) {
		require.ErrorIs(t, loop.SetFilterMode(FilterConfig{Mode: FilterExponential, Alpha: 2}), ErrConfiguration)
		require.ErrorIs(t, loop.SetFilterMode(FilterConfig{Mode: FilterMovingAverage, Window: 0}), ErrConfiguration)
	})
}

func TestRecoverableTickFailure(t *testing.T) {
	t.Parallel()

	// A negative stand-off drops the tool below the surface, so every beam
	// starts inside material and the tick must abort without side effects.
	cfg := testConfig()
	cfg.Tracking.Offset = -1
	loop, err := NewControlLoop(cfg, LineSurface{})
	require.NoError(t, err)

	before := loop.Pose()
	_, err = loop.Step()
	require.ErrorIs(t, err, ErrInvalidGeometry)

	assert.Equal(t, before, loop.Pose(), "pose unchanged on an aborted tick")
	assert.Equal(t, 0, loop.Frame())
	assert.Equal(t, StateRunning, loop.State(), "the loop keeps running and retries")

	_, err = loop.Step()
	require.ErrorIs(t, err, ErrInvalidGeometry)
}
