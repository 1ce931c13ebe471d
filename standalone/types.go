package standalone

// Position represents a point in the drawing plane (document units)
type Position struct {
	X float64
	Y float64
}

// Geometry describes where the two anchors sit relative to the drawing origin.
// It must not change while a move is executing.
type Geometry struct {
	HalfSeparation float64 // Half the distance between the anchors (mm)
	AnchorHeight   float64 // Height of the anchor line above the origin (mm)
	StepsPerMM     float64 // Motor steps per mm of cable
	ScaleFactor    float64 // Model zoom, document units to mm
}

// MotorConfig represents configuration for one cable motor
type MotorConfig struct {
	StepPin   uint8 // GPIO pin for step pulses
	DirPin    uint8 // GPIO pin for direction
	InvertDir bool  // Invert direction signal
}

// MachineConfig represents the complete plotter configuration
type MachineConfig struct {
	Geometry Geometry
	Motors   [2]MotorConfig // [0] left anchor, [1] right anchor

	EnablePin       uint8 // Shared driver enable line
	EnableActiveLow bool  // Driver is enabled when the line is low

	// Motion parameters
	Precision       float64 // Longest straight segment between waypoints (plotter units)
	AccelRatio      float64 // Squared step distance from the move ends over which to ramp
	SpeedDelayUS    float64 // Base delay after every step (microseconds)
	PulseWidthUS    uint32  // Low time of a step pulse (microseconds)
	DefaultFeedRate float64 // Initial F register value (units/min)

	// Firmware wiring
	StepBackend string // "gpio" or "pio"
	Baud        uint32 // Serial speed
}
