package core

import "errors"

// PinEvent is one recorded level change
type PinEvent struct {
	Pin   GPIOPin
	Value bool
}

// RecordingGPIO is an in-memory GPIODriver. It keeps the current level of
// every configured output, counts rising edges per pin and, when Trace is
// set, keeps the full ordered list of writes.
type RecordingGPIO struct {
	Trace bool

	levels     map[GPIOPin]bool
	configured map[GPIOPin]bool
	rising     map[GPIOPin]uint64
	events     []PinEvent
}

// NewRecordingGPIO creates an empty recorder
func NewRecordingGPIO() *RecordingGPIO {
	return &RecordingGPIO{
		levels:     make(map[GPIOPin]bool),
		configured: make(map[GPIOPin]bool),
		rising:     make(map[GPIOPin]uint64),
	}
}

// ConfigureOutput marks pin as an output driven low
func (r *RecordingGPIO) ConfigureOutput(pin GPIOPin) error {
	if r.configured[pin] {
		return nil
	}
	r.configured[pin] = true
	r.levels[pin] = false
	return nil
}

// SetPin records the write
func (r *RecordingGPIO) SetPin(pin GPIOPin, value bool) error {
	if !r.configured[pin] {
		return errors.New("pin not configured as output")
	}
	if value && !r.levels[pin] {
		r.rising[pin]++
	}
	r.levels[pin] = value
	if r.Trace {
		r.events = append(r.events, PinEvent{Pin: pin, Value: value})
	}
	return nil
}

// GetPin reads back the last written level
func (r *RecordingGPIO) GetPin(pin GPIOPin) (bool, error) {
	if !r.configured[pin] {
		return false, errors.New("pin not configured as output")
	}
	return r.levels[pin], nil
}

// RisingEdges returns the number of low-to-high transitions seen on pin
func (r *RecordingGPIO) RisingEdges(pin GPIOPin) uint64 {
	return r.rising[pin]
}

// Events returns the ordered writes (only populated with Trace set)
func (r *RecordingGPIO) Events() []PinEvent {
	return r.events
}

// ClearEvents drops the recorded writes and edge counts, keeping levels
func (r *RecordingGPIO) ClearEvents() {
	r.events = r.events[:0]
	for pin := range r.rising {
		delete(r.rising, pin)
	}
}
