package config

import (
	"encoding/json"
	"errors"

	"polargraph/standalone"
)

var (
	ErrBadGeometry  = errors.New("geometry values must be positive")
	ErrBadPrecision = errors.New("precision must be positive")
	ErrPinConflict  = errors.New("step, direction and enable pins must be distinct")
	ErrBadBackend   = errors.New("step backend must be \"gpio\" or \"pio\"")
)

// LoadConfig parses a JSON configuration string and returns a MachineConfig
func LoadConfig(jsonData []byte) (*standalone.MachineConfig, error) {
	config := DefaultPolargraphConfig()
	// Derived from StepsPerMM unless set explicitly
	config.AccelRatio = 0

	err := json.Unmarshal(jsonData, config)
	if err != nil {
		return nil, err
	}

	// Apply defaults
	applyDefaults(config)

	if err := Validate(config); err != nil {
		return nil, err
	}

	return config, nil
}

// applyDefaults fills in missing configuration values with sensible defaults
func applyDefaults(config *standalone.MachineConfig) {
	if config.Geometry.ScaleFactor == 0 {
		config.Geometry.ScaleFactor = 1
	}
	if config.Precision == 0 {
		config.Precision = 1.0 // 1mm segments
	}

	// Ramp over the last 5mm of cable at either end of a move
	if config.AccelRatio == 0 {
		edge := config.Geometry.StepsPerMM * 5
		config.AccelRatio = edge * edge
	}
	if config.SpeedDelayUS == 0 {
		config.SpeedDelayUS = 200
	}
	if config.PulseWidthUS == 0 {
		config.PulseWidthUS = 5
	}
	if config.DefaultFeedRate == 0 {
		config.DefaultFeedRate = 6000 // mm/min; 100mm/s
	}
	if config.StepBackend == "" {
		config.StepBackend = "gpio"
	}
	if config.Baud == 0 {
		config.Baud = 9600
	}
}

// Validate rejects configurations the kinematics cannot work with
func Validate(config *standalone.MachineConfig) error {
	g := config.Geometry
	if g.HalfSeparation <= 0 || g.StepsPerMM <= 0 || g.ScaleFactor <= 0 {
		return ErrBadGeometry
	}
	if config.Precision <= 0 {
		return ErrBadPrecision
	}

	pins := []uint8{
		config.Motors[0].StepPin, config.Motors[0].DirPin,
		config.Motors[1].StepPin, config.Motors[1].DirPin,
		config.EnablePin,
	}
	seen := make(map[uint8]bool, len(pins))
	for _, pin := range pins {
		if seen[pin] {
			return ErrPinConflict
		}
		seen[pin] = true
	}

	if config.StepBackend != "gpio" && config.StepBackend != "pio" {
		return ErrBadBackend
	}
	return nil
}

// DefaultPolargraphConfig returns the reference calibration and wiring
func DefaultPolargraphConfig() *standalone.MachineConfig {
	config := &standalone.MachineConfig{
		Geometry: standalone.Geometry{
			HalfSeparation: 450.0,
			AnchorHeight:   620.0,
			StepsPerMM:     53.0,
			ScaleFactor:    1.0,
		},
		Motors: [2]standalone.MotorConfig{
			{StepPin: 4, DirPin: 7},
			{StepPin: 12, DirPin: 13},
		},
		EnablePin:       8,
		EnableActiveLow: true,
		Precision:       1.0,
	}
	applyDefaults(config)
	return config
}
