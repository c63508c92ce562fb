package tcp_track

import "errors"

// Sentinel errors for the per-tick failure taxonomy. The first three are
// recoverable: the tick that raised them leaves the loop state untouched and
// the caller retries on the next tick. ErrConfiguration is rejected before
// any tick runs.
var (
	// ErrInvalidGeometry marks a near-tangent beam or zero-length separation.
	ErrInvalidGeometry = errors.New("invalid geometry")

	// ErrNoIntersection marks a numeric march that failed to bracket the surface.
	ErrNoIntersection = errors.New("no intersection")

	// ErrDegenerateFit marks hit points with effectively coincident x-coordinates.
	ErrDegenerateFit = errors.New("degenerate fit")

	// ErrConfiguration marks invalid tuning parameters.
	ErrConfiguration = errors.New("invalid configuration")
)
