package core

// GPIOPin identifies a hardware GPIO pin number
type GPIOPin uint32

// GPIODriver is the abstract GPIO interface that core code uses.
// Platform-specific implementations handle actual hardware control.
type GPIODriver interface {
	// ConfigureOutput configures a pin as a digital output
	// Returns error if pin is invalid or already in use
	ConfigureOutput(pin GPIOPin) error

	// SetPin sets the pin to high (true) or low (false)
	SetPin(pin GPIOPin, value bool) error

	// GetPin reads the current pin state
	GetPin(pin GPIOPin) (bool, error)
}

// OutputPin binds a driver to one configured output, optionally inverted.
type OutputPin struct {
	driver GPIODriver
	pin    GPIOPin
	invert bool
}

// NewOutputPin configures pin as an output and returns a handle for it
func NewOutputPin(driver GPIODriver, pin GPIOPin, invert bool) (*OutputPin, error) {
	if err := driver.ConfigureOutput(pin); err != nil {
		return nil, err
	}
	return &OutputPin{driver: driver, pin: pin, invert: invert}, nil
}

// Set drives the logical level, applying inversion
func (p *OutputPin) Set(value bool) error {
	return p.driver.SetPin(p.pin, value != p.invert)
}

// Pin returns the hardware pin number
func (p *OutputPin) Pin() GPIOPin {
	return p.pin
}
