package tcp_track

import "fmt"

// Vec2 is a point or direction in the vertical working plane.
//
// Conventions:
//   - X grows along the traversal direction.
//   - Z grows upward; the surface lies below the tool.
type Vec2 struct {
	X float64
	Z float64
}

// Pose is the tool reference point position together with its orientation frame.
//
// Tangent and Normal are orthogonal unit vectors; Normal.Z < 0 so the
// beams point toward the surface.
type Pose struct {
	X       float64
	Z       float64
	Tangent Vec2
	Normal  Vec2
}

// SensorSpec is the rigid mounting of one range sensor relative to the tool.
type SensorSpec struct {
	Lead float64 // distance from the tool along the tangent
}

// HitPoint is one beam/surface intersection.
type HitPoint struct {
	Point Vec2
	Range float64 // ray length from the sensor body to the hit
}

// FittedLine is the local linear surface estimate z = A*x + B.
type FittedLine struct {
	A float64
	B float64
}

// HeightAt evaluates the line at the given x.
func (l FittedLine) HeightAt(x float64) float64 {
	return l.A*x + l.B
}

// StepResult is the per-tick output handed to rendering and telemetry collaborators.
type StepResult struct {
	Frame          int
	Pose           Pose
	Hits           [2]HitPoint
	Raw            [2]float64 // noisy readings before filtering
	Filtered       [2]float64
	Slope          float64
	TrackError     float64
	SensorVariance float64
	Reset          bool
}

// LoopState selects which phase the control loop is in during a tick.
type LoopState int

const (
	StateRunning LoopState = iota + 1
	StateResetting
)

func (s LoopState) String() string {
	switch s {
	case StateRunning:
		return "RUNNING"
	case StateResetting:
		return "RESETTING"
	default:
		return fmt.Sprintf("LoopState(%d)", int(s))
	}
}

// FilterMode selects which smoothing policy a beam channel uses.
type FilterMode int

const (
	FilterMovingAverage FilterMode = iota + 1
	FilterExponential
)

func (m FilterMode) String() string {
	switch m {
	case FilterMovingAverage:
		return "MOVING_AVERAGE"
	case FilterExponential:
		return "EXPONENTIAL"
	default:
		return fmt.Sprintf("FilterMode(%d)", int(m))
	}
}
