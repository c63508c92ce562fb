package tcp_track

import (
	"fmt"
	"math"
	"math/rand"
)

// bootstrapHalfWidth is the half-width of the central difference seeding the
// frame-0 orientation, before any fitted line exists.
const bootstrapHalfWidth = 0.1

// ControlLoop advances the feed-forward surface tracker one frame per tick.
//
// The update is causal: the pose commanded for frame k+1 is derived entirely
// from the line fitted at frame k. A single external caller drives Step; no
// internal concurrency exists.
type ControlLoop struct {
	cfg     Config
	surface SurfaceModel
	rig     *SensorRig
	f1, f2  Filter
	noise   *rand.Rand

	state   LoopState
	frame   int
	pose    Pose
	line    FittedLine // fitted at the previous frame, commands the current one
	eval    ErrorEvaluator
	lastRun ErrorStats // aggregates of the traversal completed by the last reset
}

// NewControlLoop constructs a loop over the given surface. The configuration
// is validated before any state is built.
func NewControlLoop(cfg Config, surface SurfaceModel) (*ControlLoop, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	f1, err := newFilter(cfg.Filter)
	if err != nil {
		return nil, err
	}
	f2, err := newFilter(cfg.Filter)
	if err != nil {
		return nil, err
	}
	loop := &ControlLoop{
		cfg:     cfg,
		surface: surface,
		rig:     NewSensorRig(surface, cfg.Rig),
		f1:      f1,
		f2:      f2,
		noise:   rand.New(rand.NewSource(cfg.Noise.Seed)),
		state:   StateRunning,
	}
	loop.bootstrap()
	return loop, nil
}

// bootstrap places the tool at the traversal start with an orientation seeded
// from a finite-difference slope of the true surface.
func (c *ControlLoop) bootstrap() {
	x := c.cfg.Tracking.XStart
	slope := finiteSlope(c.surface, x, bootstrapHalfWidth)
	tangent, normal := UnitFromSlope(slope)
	c.pose = Pose{
		X:       x,
		Z:       c.surface.Height(x) + c.cfg.Tracking.Offset,
		Tangent: tangent,
		Normal:  normal,
	}
	c.line = FittedLine{A: slope, B: c.surface.Height(x) - slope*x}
	c.frame = 0
}

// Step runs one tick: sense, filter, fit, command the next pose, and check
// the auto-reset bound.
//
// A recoverable failure (invalid geometry, no intersection, degenerate fit)
// aborts the tick with pose and filters unchanged; the loop stays running and
// retries with fresh sensor input on the next tick.
func (c *ControlLoop) Step() (StepResult, error) {
	s1 := SensorBody(c.pose, SensorSpec{Lead: c.cfg.Tracking.Lead1})
	s2 := SensorBody(c.pose, SensorSpec{Lead: c.cfg.Tracking.Lead2})

	hit1, err := c.rig.Cast(s1, c.pose.Normal, c.line)
	if err != nil {
		return StepResult{}, fmt.Errorf("beam 1: %w", err)
	}
	hit2, err := c.rig.Cast(s2, c.pose.Normal, c.line)
	if err != nil {
		return StepResult{}, fmt.Errorf("beam 2: %w", err)
	}

	// Guard the fit precondition before the filters consume the readings so
	// an aborted tick leaves no partial filter history behind.
	if math.Abs(hit2.Point.X-hit1.Point.X) < fitEpsilon {
		return StepResult{}, fmt.Errorf("%w: beams hit at coincident x", ErrDegenerateFit)
	}

	raw1, raw2 := hit1.Point.Z, hit2.Point.Z
	if c.cfg.Noise.Std > 0 {
		raw1 += c.noise.NormFloat64() * c.cfg.Noise.Std
		raw2 += c.noise.NormFloat64() * c.cfg.Noise.Std
	}
	flt1 := c.f1.Apply(raw1)
	flt2 := c.f2.Apply(raw2)

	line, err := FitLine(
		Vec2{X: hit1.Point.X, Z: flt1},
		Vec2{X: hit2.Point.X, Z: flt2},
	)
	if err != nil {
		return StepResult{}, err
	}

	trackErr := c.pose.Z - (c.surface.Height(c.pose.X) + c.cfg.Tracking.Offset)
	c.eval.Observe(trackErr)

	res := StepResult{
		Frame:          c.frame,
		Pose:           c.pose,
		Hits:           [2]HitPoint{hit1, hit2},
		Raw:            [2]float64{raw1, raw2},
		Filtered:       [2]float64{flt1, flt2},
		Slope:          line.A,
		TrackError:     trackErr,
		SensorVariance: sensorVariance(c.f1, c.f2),
	}

	// Predict the surface under the current x with the fresh fit and command
	// the next frame from it: stand-off above the prediction, orientation
	// from the fitted slope.
	zPred := line.HeightAt(c.pose.X)
	nextX := c.pose.X + c.cfg.Tracking.StepSize

	if nextX >= c.cfg.Tracking.XEnd {
		c.state = StateResetting
		c.lastRun = c.eval.Stats()
		c.f1.Reset()
		c.f2.Reset()
		c.eval.Reset()
		c.bootstrap()
		c.state = StateRunning
		res.Reset = true
		return res, nil
	}

	tangent, normal := UnitFromSlope(line.A)
	c.pose = Pose{
		X:       nextX,
		Z:       zPred + c.cfg.Tracking.Offset,
		Tangent: tangent,
		Normal:  normal,
	}
	c.line = line
	c.frame++
	return res, nil
}

// SetFilterMode swaps both beam channels to a cold instance of the given
// filter configuration. It takes effect on the next tick.
func (c *ControlLoop) SetFilterMode(cfg FilterConfig) error {
	f1, err := newFilter(cfg)
	if err != nil {
		return err
	}
	f2, err := newFilter(cfg)
	if err != nil {
		return err
	}
	c.f1, c.f2 = f1, f2
	c.cfg.Filter = cfg
	return nil
}

// Config returns the active tuning parameters.
func (c *ControlLoop) Config() Config {
	return c.cfg
}

// SetConfig replaces the tuning parameters after re-validation. Both filters
// restart cold; the pose and frame index are preserved.
func (c *ControlLoop) SetConfig(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := c.SetFilterMode(cfg.Filter); err != nil {
		return err
	}
	c.cfg = cfg
	c.rig = NewSensorRig(c.surface, cfg.Rig)
	c.noise = rand.New(rand.NewSource(cfg.Noise.Seed))
	return nil
}

// State reports the loop phase; outside a tick this is always RUNNING.
func (c *ControlLoop) State() LoopState {
	return c.state
}

// Frame returns the current frame index.
func (c *ControlLoop) Frame() int {
	return c.frame
}

// Pose returns the pose the next tick will sense from.
func (c *ControlLoop) Pose() Pose {
	return c.pose
}

// Stats returns the tracking-error aggregates since the last reset.
func (c *ControlLoop) Stats() ErrorStats {
	return c.eval.Stats()
}

// LastTraversalStats returns the aggregates of the traversal that ended at
// the most recent auto-reset.
func (c *ControlLoop) LastTraversalStats() ErrorStats {
	return c.lastRun
}
