package planner

import (
	"errors"
	"math"

	"polargraph/standalone"
	"polargraph/standalone/kinematics"
)

// Motion modes, matching the G register
const (
	ModeRapid  = 0
	ModeLinear = 1
	ModeCW     = 2
	ModeCCW    = 3
)

// ErrBadMode is returned for a mode that has no motion
var ErrBadMode = errors.New("unknown motion mode")

// Move is one command line's worth of motion request
type Move struct {
	Mode   int
	Target standalone.Position

	// Arc parameters. Offset wins when both forms are given.
	Radius     float64 // R word, signed
	OffsetI    float64
	OffsetJ    float64
	HasRadius  bool // R appeared on this line
	HasOffsets bool // I or J appeared on this line
}

// Plan holds the constants of one move and walks it waypoint by waypoint.
// A plan is used once and then discarded.
type Plan struct {
	Mode   int
	Start  standalone.Position
	Target standalone.Position

	// Linear interpolation
	stepX float64
	stepY float64

	// Circular interpolation
	Center     standalone.Position
	Radius     float64
	angle      float64
	angleDelta float64
	turned     float64

	segment float64 // longest step between waypoints, document units
	done    bool
}

// NewPlan prepares move starting from start
func NewPlan(move Move, start standalone.Position, cfg *standalone.MachineConfig) (*Plan, error) {
	p := &Plan{
		Mode:    move.Mode,
		Start:   start,
		Target:  move.Target,
		segment: cfg.Precision / cfg.Geometry.ScaleFactor,
	}

	switch move.Mode {
	case ModeRapid, ModeLinear:
		dx := move.Target.X - start.X
		dy := move.Target.Y - start.Y
		magnitude := kinematics.Mag(dx, dy)
		if magnitude > 0 {
			p.stepX = dx * p.segment / magnitude
			p.stepY = dy * p.segment / magnitude
		}

	case ModeCW, ModeCCW:
		var err error
		switch {
		case move.HasOffsets:
			p.Center, p.Radius, err = CenterFromOffset(start, move.OffsetI, move.OffsetJ)
		case move.HasRadius:
			p.Center, p.Radius, err = CenterFromRadius(start, move.Target, move.Radius, move.Mode == ModeCW)
		default:
			err = ErrArcUndefined
		}
		if err != nil {
			return nil, err
		}

		p.angle = math.Atan2(start.Y-p.Center.Y, start.X-p.Center.X)
		p.angleDelta = p.segment / p.Radius
		if move.Mode == ModeCW {
			p.angleDelta = -p.angleDelta
		}

	default:
		return nil, ErrBadMode
	}

	return p, nil
}

// Next returns the waypoint after from. The second result is true when the
// waypoint is the target and the move is finished.
func (p *Plan) Next(from standalone.Position) (standalone.Position, bool) {
	if p.done || kinematics.Distance(from, p.Target) < p.segment {
		p.done = true
		return p.Target, true
	}

	switch p.Mode {
	case ModeCW, ModeCCW:
		p.angle += p.angleDelta
		p.turned += math.Abs(p.angleDelta)
		if p.turned > 2*math.Pi {
			// Target is not on the circle, give up after one turn
			p.done = true
			return p.Target, true
		}
		return standalone.Position{
			X: math.Cos(p.angle)*p.Radius + p.Center.X,
			Y: math.Sin(p.angle)*p.Radius + p.Center.Y,
		}, false

	default:
		return standalone.Position{
			X: from.X + p.stepX,
			Y: from.Y + p.stepY,
		}, false
	}
}

// Done reports whether the target has been handed out
func (p *Plan) Done() bool {
	return p.done
}
