package stepgen

import (
	"math"

	"polargraph/core"
	"polargraph/standalone"
	"polargraph/standalone/kinematics"
)

// DualStepper drives the two cable motors in lockstep
type DualStepper struct {
	motors [2]core.StepperBackend
	enable *core.OutputPin
	delay  core.Delayer
	kin    kinematics.Kinematics

	baseDelay  float64 // microseconds after every step of the leading motor
	accelRatio float64 // squared step distance over which speed ramps
}

// NewDualStepper creates a driver for motors. enable is optional.
func NewDualStepper(motors [2]core.StepperBackend, enable *core.OutputPin, delay core.Delayer,
	kin kinematics.Kinematics, cfg *standalone.MachineConfig) *DualStepper {
	return &DualStepper{
		motors:     motors,
		enable:     enable,
		delay:      delay,
		kin:        kin,
		baseDelay:  cfg.SpeedDelayUS,
		accelRatio: cfg.AccelRatio,
	}
}

// Enable asserts the shared driver enable line
func (d *DualStepper) Enable() error {
	if d.enable == nil {
		return nil
	}
	return d.enable.Set(true)
}

// Disable releases the motors
func (d *DualStepper) Disable() error {
	if d.enable == nil {
		return nil
	}
	return d.enable.Set(false)
}

// Begin opens a session for a move from start to target.
// Both ends fix the speed ramp for every transition of the move.
func (d *DualStepper) Begin(start, target standalone.Position) *Session {
	return &Session{
		driver: d,
		start:  d.kin.CalcPosition(start),
		end:    d.kin.CalcPosition(target),
	}
}

// ShapeDelay returns the delay after a step with the motors at pos.
// Motion is slowest within the ramp distance of either end of the move.
func (d *DualStepper) ShapeDelay(start, end, pos [2]float64) uint32 {
	accel := d.accelRatio
	accel = math.Min(accel, squaredDistance(pos, start))
	accel = math.Min(accel, squaredDistance(pos, end))
	return uint32(d.baseDelay + (d.accelRatio-accel)/50)
}

// Session carries the sub-step remainders of one move between waypoints
type Session struct {
	driver *DualStepper

	start [2]float64 // motor positions at the move start, steps
	end   [2]float64 // motor positions at the move target, steps

	carry [2]float64 // steps still owed to each motor
	steps [2]int64   // net signed steps emitted
}

// Transition moves the motors from one waypoint to the next
func (s *Session) Transition(from, to standalone.Position) (taken [2]int64, err error) {
	d := s.driver
	position := d.kin.CalcPosition(from)
	next := d.kin.CalcPosition(to)
	for i := range s.carry {
		s.carry[i] += next[i] - position[i]
	}

	// Mirrored anchors: the motors wind in opposite senses
	if err := d.motors[0].SetDirection(s.carry[0] < 0); err != nil {
		return taken, err
	}
	if err := d.motors[1].SetDirection(s.carry[1] > 0); err != nil {
		return taken, err
	}

	// The motor with further to go leads, ties go to motor 1
	big, small := 1, 0
	if math.Abs(s.carry[0]) > math.Abs(s.carry[1]) {
		big, small = 0, 1
	}

	absBig := math.Abs(s.carry[big])
	absSmall := math.Abs(s.carry[small])
	bigSteps := int64(absBig)
	smallSteps := int64(absSmall)
	bigDir := unit(s.carry[big])
	smallDir := unit(s.carry[small])

	ratio := 0.0
	if absSmall > 0 {
		ratio = absBig / absSmall
	}

	var bigCount, smallCount int64
	for bigCount < bigSteps {
		if err := d.motors[big].Step(); err != nil {
			return taken, err
		}
		bigCount++
		s.carry[big] -= bigDir
		position[big] += bigDir

		if smallCount < smallSteps && float64(smallCount)*ratio < float64(bigCount) {
			if err := d.motors[small].Step(); err != nil {
				return taken, err
			}
			smallCount++
			s.carry[small] -= smallDir
			position[small] += smallDir
		}

		d.delay.DelayMicroseconds(d.ShapeDelay(s.start, s.end, position))
	}

	taken[big] = bigCount * int64(bigDir)
	taken[small] = smallCount * int64(smallDir)
	s.steps[0] += taken[0]
	s.steps[1] += taken[1]
	return taken, nil
}

// Carry returns the fractional steps still owed to each motor
func (s *Session) Carry() [2]float64 {
	return s.carry
}

// Steps returns the net signed steps emitted so far
func (s *Session) Steps() [2]int64 {
	return s.steps
}

func unit(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}

func squaredDistance(a, b [2]float64) float64 {
	dx := a[0] - b[0]
	dy := a[1] - b[1]
	return dx*dx + dy*dy
}
