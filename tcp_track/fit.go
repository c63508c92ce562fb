package tcp_track

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// fitEpsilon is the minimum x-separation between the two hit points. Distinct
// fixed leads and a non-vertical tangent keep the separation well above it.
const fitEpsilon = 1e-9

// FitLine fits z = A*x + B through two hit points. The regression is exact
// for two points; coincident x-coordinates are a hard error.
func FitLine(p1, p2 Vec2) (FittedLine, error) {
	dx := p2.X - p1.X
	if math.Abs(dx) < fitEpsilon {
		return FittedLine{}, fmt.Errorf("%w: hit points coincide in x (dx = %g)", ErrDegenerateFit, dx)
	}
	b, a := stat.LinearRegression(
		[]float64{p1.X, p2.X},
		[]float64{p1.Z, p2.Z},
		nil,
		false,
	)
	return FittedLine{A: a, B: b}, nil
}
