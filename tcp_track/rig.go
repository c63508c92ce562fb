package tcp_track

import (
	"errors"
	"fmt"
	"math"
)

// tangentEpsilon bounds the beam/line denominator away from zero. Below it
// the beam is effectively parallel to the fitted line.
const tangentEpsilon = 1e-9

// UnitFromSlope returns the unit tangent and downward unit normal for a
// surface of slope m.
func UnitFromSlope(m float64) (tangent, normal Vec2) {
	norm := math.Hypot(1, m)
	tangent = Vec2{X: 1 / norm, Z: m / norm}
	// 90 degrees clockwise of the tangent, flipped to point at the surface.
	normal = Vec2{X: tangent.Z, Z: -tangent.X}
	if normal.Z > 0 {
		normal.X, normal.Z = -normal.X, -normal.Z
	}
	return tangent, normal
}

// SensorBody returns the world position of a sensor rigidly mounted at the
// given lead distance along the pose tangent.
func SensorBody(p Pose, spec SensorSpec) Vec2 {
	return Vec2{
		X: p.X + spec.Lead*p.Tangent.X,
		Z: p.Z + spec.Lead*p.Tangent.Z,
	}
}

// IntersectLine solves the beam/line system in closed form.
//
// The ray is origin + r*dir, r >= 0; the line is z = l.A*x + l.B. There is a
// single solution whenever the beam is not parallel to the line.
func IntersectLine(origin, dir Vec2, l FittedLine) (HitPoint, error) {
	denom := dir.Z - l.A*dir.X
	if math.Abs(denom) < tangentEpsilon {
		return HitPoint{}, fmt.Errorf("%w: beam nearly parallel to fitted line (denominator %g)", ErrInvalidGeometry, denom)
	}
	r := (l.A*origin.X + l.B - origin.Z) / denom
	if r < 0 {
		return HitPoint{}, fmt.Errorf("%w: fitted line behind the sensor (r = %g)", ErrInvalidGeometry, r)
	}
	return HitPoint{
		Point: Vec2{X: origin.X + r*dir.X, Z: origin.Z + r*dir.Z},
		Range: r,
	}, nil
}

// SensorRig casts beams from rigidly mounted sensors to the true surface.
type SensorRig struct {
	surface SurfaceModel
	cfg     RigConfig
}

// NewSensorRig constructs a rig over the given surface.
func NewSensorRig(surface SurfaceModel, cfg RigConfig) *SensorRig {
	return &SensorRig{surface: surface, cfg: cfg}
}

// March finds the first beam/surface crossing by bounded step marching
// followed by bisection refinement.
//
// The sensor must start above the surface. Failure to bracket a crossing
// within MaxRayLen is reported as ErrNoIntersection.
func (rig *SensorRig) March(origin, dir Vec2) (HitPoint, error) {
	above := func(r float64) float64 {
		x := origin.X + r*dir.X
		z := origin.Z + r*dir.Z
		return z - rig.surface.Height(x)
	}

	if above(0) <= 0 {
		return HitPoint{}, fmt.Errorf("%w: sensor starts at or below the surface", ErrInvalidGeometry)
	}

	lo := 0.0
	hi := rig.cfg.MarchStep
	bracketed := false
	for hi <= rig.cfg.MaxRayLen {
		if above(hi) <= 0 {
			bracketed = true
			break
		}
		lo = hi
		hi += rig.cfg.MarchStep
	}
	if !bracketed {
		return HitPoint{}, fmt.Errorf("%w: no surface crossing within ray length %g", ErrNoIntersection, rig.cfg.MaxRayLen)
	}

	// Bisect the bracketing interval down to ray-length tolerance.
	for i := 0; i < 64 && hi-lo > 1e-12; i++ {
		mid := 0.5 * (lo + hi)
		if above(mid) > 0 {
			lo = mid
		} else {
			hi = mid
		}
	}

	r := 0.5 * (lo + hi)
	x := origin.X + r*dir.X
	return HitPoint{Point: Vec2{X: x, Z: rig.surface.Height(x)}, Range: r}, nil
}

// Cast produces one sensor reading: the numeric march against the true
// surface, falling back to the closed-form intersection with the last fitted
// line when the march fails to bracket a crossing.
func (rig *SensorRig) Cast(origin, dir Vec2, fallback FittedLine) (HitPoint, error) {
	hit, err := rig.March(origin, dir)
	if err == nil {
		return hit, nil
	}
	if !errors.Is(err, ErrNoIntersection) {
		return HitPoint{}, err
	}
	hit, ferr := IntersectLine(origin, dir, fallback)
	if ferr != nil {
		return HitPoint{}, fmt.Errorf("march failed (%v); closed-form fallback: %w", err, ferr)
	}
	return hit, nil
}
