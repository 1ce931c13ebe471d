package core

// StepperBackend defines the hardware abstraction for stepper control
// Implementations can use GPIO, PIO, or other methods
type StepperBackend interface {
	// Step generates a single step pulse
	// Must handle pulse width timing internally
	Step() error

	// SetDirection sets the direction output
	// dir: true = drive the direction line high
	SetDirection(dir bool) error

	// GetName returns backend implementation name
	GetName() string
}

// DefaultPulseWidthUS is the low time of a step pulse in microseconds
const DefaultPulseWidthUS = 5

// GPIOStepper drives a step/dir driver board through plain GPIO writes.
// A step is a low-then-high transition on the step line with a fixed
// low time in between; the line idles high.
type GPIOStepper struct {
	step       *OutputPin
	dir        *OutputPin
	delay      Delayer
	pulseWidth uint32
}

// NewGPIOStepper configures the step and direction pins and returns the backend
func NewGPIOStepper(driver GPIODriver, stepPin, dirPin GPIOPin, invertDir bool, delay Delayer, pulseWidthUS uint32) (*GPIOStepper, error) {
	step, err := NewOutputPin(driver, stepPin, false)
	if err != nil {
		return nil, err
	}
	dir, err := NewOutputPin(driver, dirPin, invertDir)
	if err != nil {
		return nil, err
	}
	if pulseWidthUS == 0 {
		pulseWidthUS = DefaultPulseWidthUS
	}

	// Idle high so the first Step produces a falling then rising edge
	if err := step.Set(true); err != nil {
		return nil, err
	}

	return &GPIOStepper{
		step:       step,
		dir:        dir,
		delay:      delay,
		pulseWidth: pulseWidthUS,
	}, nil
}

// Step emits one pulse
func (s *GPIOStepper) Step() error {
	if err := s.step.Set(false); err != nil {
		return err
	}
	s.delay.DelayMicroseconds(s.pulseWidth)
	return s.step.Set(true)
}

// SetDirection writes the direction line
func (s *GPIOStepper) SetDirection(dir bool) error {
	return s.dir.Set(dir)
}

// GetName returns the backend name
func (s *GPIOStepper) GetName() string {
	return "GPIO"
}
