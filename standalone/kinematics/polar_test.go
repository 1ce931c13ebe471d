package kinematics

import (
	"math"
	"testing"

	"polargraph/standalone"
)

func testGeometry() standalone.Geometry {
	return standalone.Geometry{
		HalfSeparation: 450,
		AnchorHeight:   620,
		StepsPerMM:     53,
		ScaleFactor:    1,
	}
}

func TestRadiusAtOrigin(t *testing.T) {
	k := NewPolar(testGeometry())
	lengths := k.CalcPosition(standalone.Position{})

	expected := math.Sqrt(450*450+620*620) * 53
	for i, got := range lengths {
		if math.Abs(got-expected) > 1e-6 {
			t.Errorf("Motor %d: expected %f steps, got %f", i, expected, got)
		}
	}
	if lengths[0] != lengths[1] {
		t.Errorf("Expected equal cables at origin, got %f and %f", lengths[0], lengths[1])
	}
}

func TestRadiusUnderAnchor(t *testing.T) {
	k := NewPolar(testGeometry())

	// Directly below the left anchor the left cable is vertical
	pos := standalone.Position{X: -450, Y: 0}
	if got := k.Radius(LeftAnchor, pos); math.Abs(got-620*53) > 1e-6 {
		t.Errorf("Expected %f steps, got %f", 620.0*53, got)
	}
	if got := k.Radius(RightAnchor, pos); math.Abs(got-Mag(900, 620)*53) > 1e-6 {
		t.Errorf("Expected %f steps, got %f", Mag(900, 620)*53, got)
	}
}

func TestRadiusMirror(t *testing.T) {
	k := NewPolar(testGeometry())
	a := k.CalcPosition(standalone.Position{X: 37.5, Y: -120})
	b := k.CalcPosition(standalone.Position{X: -37.5, Y: -120})

	if math.Abs(a[0]-b[1]) > 1e-9 || math.Abs(a[1]-b[0]) > 1e-9 {
		t.Errorf("Expected mirrored lengths, got %v and %v", a, b)
	}
}

func TestScaleFactor(t *testing.T) {
	g := testGeometry()
	g.ScaleFactor = 2
	scaled := NewPolar(g)
	plain := NewPolar(testGeometry())

	got := scaled.CalcPosition(standalone.Position{X: 10, Y: 5})
	expected := plain.CalcPosition(standalone.Position{X: 20, Y: 10})
	if got != expected {
		t.Errorf("Expected scale to multiply coordinates, got %v want %v", got, expected)
	}
}

func TestCheckLimits(t *testing.T) {
	k := NewPolar(testGeometry())
	if err := k.CheckLimits(standalone.Position{X: 1, Y: 2}); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
	if err := k.CheckLimits(standalone.Position{X: math.NaN()}); err != ErrNonFinite {
		t.Errorf("Expected ErrNonFinite, got %v", err)
	}
	if err := k.CheckLimits(standalone.Position{Y: math.Inf(1)}); err != ErrNonFinite {
		t.Errorf("Expected ErrNonFinite, got %v", err)
	}
}

func TestDistance(t *testing.T) {
	d := Distance(standalone.Position{X: 1, Y: 1}, standalone.Position{X: 4, Y: 5})
	if d != 5 {
		t.Errorf("Expected 5, got %f", d)
	}
}
