package planner

import (
	"errors"
	"math"

	"polargraph/standalone"
	"polargraph/standalone/kinematics"
)

// Arc errors
var (
	ErrDegenerateArc = errors.New("degenerate arc")
	ErrArcUndefined  = errors.New("arc needs R or I/J")
)

// degenerateEpsilon is the smallest radius or chord treated as non-zero
const degenerateEpsilon = 1e-6

// CenterFromRadius finds the center of the circle of radius r through p1 and
// p2. Of the two candidates, clockwise picks the one on the left of p1->p2
// for a positive r. A negative r flips the choice. The returned radius is |r|.
func CenterFromRadius(p1, p2 standalone.Position, r float64, clockwise bool) (standalone.Position, float64, error) {
	if r < 0 {
		r = -r
		clockwise = !clockwise
	}
	if r < degenerateEpsilon {
		return standalone.Position{}, 0, ErrDegenerateArc
	}

	q := kinematics.Distance(p1, p2)
	if q < degenerateEpsilon {
		return standalone.Position{}, 0, ErrDegenerateArc
	}

	mid := standalone.Position{
		X: (p1.X + p2.X) / 2,
		Y: (p1.Y + p2.Y) / 2,
	}

	// Abs guards the half circle case where rounding makes this negative
	h := math.Sqrt(math.Abs(r*r - (q/2)*(q/2)))
	offX := h * (p1.Y - p2.Y) / q
	offY := h * (p2.X - p1.X) / q

	if clockwise {
		return standalone.Position{X: mid.X + offX, Y: mid.Y + offY}, r, nil
	}
	return standalone.Position{X: mid.X - offX, Y: mid.Y - offY}, r, nil
}

// CenterFromOffset returns the center at p1 + (i, j) and its distance from p1
func CenterFromOffset(p1 standalone.Position, i, j float64) (standalone.Position, float64, error) {
	radius := kinematics.Mag(i, j)
	if radius < degenerateEpsilon {
		return standalone.Position{}, 0, ErrDegenerateArc
	}
	return standalone.Position{X: p1.X + i, Y: p1.Y + j}, radius, nil
}
