package kinematics

import (
	"errors"
	"math"

	"polargraph/standalone"
)

// ErrNonFinite is returned for positions that cannot be mapped to cable lengths
var ErrNonFinite = errors.New("position is not finite")

// Kinematics defines the interface for coordinate transformations
type Kinematics interface {
	// CalcPosition converts plane coordinates to motor step positions
	CalcPosition(pos standalone.Position) [2]float64

	// GetAxisNames returns the names of the motors driven by this kinematics
	GetAxisNames() []string

	// CheckLimits validates that a position can be reached
	CheckLimits(pos standalone.Position) error
}

// Mag returns the length of the vector (x, y)
func Mag(x, y float64) float64 {
	return math.Sqrt(x*x + y*y)
}

// Distance returns the euclidean distance between two positions
func Distance(a, b standalone.Position) float64 {
	return Mag(b.X-a.X, b.Y-a.Y)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
