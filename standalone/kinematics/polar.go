package kinematics

import (
	"polargraph/standalone"
)

// Anchor selects one of the two cable anchors. The value is the sign
// applied to the half separation: the left anchor sits at x = -a.
type Anchor int

const (
	LeftAnchor  Anchor = 1
	RightAnchor Anchor = -1
)

// Polar implements two-cable hanging plotter kinematics.
// The origin sits midway between the anchors, AnchorHeight below them.
// Motor 0 winds the left cable and motor 1 the right one.
type Polar struct {
	geometry standalone.Geometry
}

// NewPolar creates a polar kinematics instance for the given geometry
func NewPolar(geometry standalone.Geometry) *Polar {
	return &Polar{
		geometry: geometry,
	}
}

// Geometry returns the machine geometry in use
func (k *Polar) Geometry() standalone.Geometry {
	return k.geometry
}

// Radius returns the cable length from the anchor to pos, in motor steps
func (k *Polar) Radius(anchor Anchor, pos standalone.Position) float64 {
	g := k.geometry
	dx := pos.X*g.ScaleFactor + float64(anchor)*g.HalfSeparation
	dy := g.AnchorHeight - pos.Y*g.ScaleFactor
	return Mag(dx, dy) * g.StepsPerMM
}

// CalcPosition converts a plane position to both cable lengths in steps
func (k *Polar) CalcPosition(pos standalone.Position) [2]float64 {
	return [2]float64{
		k.Radius(LeftAnchor, pos),
		k.Radius(RightAnchor, pos),
	}
}

// GetAxisNames returns the motor names in index order
func (k *Polar) GetAxisNames() []string {
	return []string{"left", "right"}
}

// CheckLimits rejects positions that have no cable length
func (k *Polar) CheckLimits(pos standalone.Position) error {
	if !isFinite(pos.X) || !isFinite(pos.Y) {
		return ErrNonFinite
	}
	return nil
}
