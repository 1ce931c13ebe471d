// Package controller runs the plotter command loop: prompt, parse one line,
// plan it, drive the motors to the target, repeat.
package controller

import (
	"errors"
	"io"

	"polargraph/core"
	"polargraph/protocol"
	"polargraph/standalone"
	"polargraph/standalone/gcode"
	"polargraph/standalone/kinematics"
	"polargraph/standalone/planner"
	"polargraph/standalone/stepgen"
)

var (
	ErrNotInitialized     = errors.New("manager not initialized")
	ErrAlreadyInitialized = errors.New("already initialized")
)

// MoveStats describes the last executed move
type MoveStats struct {
	Waypoints int
	Steps     [2]int64   // net signed steps per motor
	Carry     [2]float64 // sub-step remainder left over
}

// Manager coordinates the parser, planner and step generator
type Manager struct {
	config     *standalone.MachineConfig
	kinematics kinematics.Kinematics
	registers  *gcode.Registers
	parser     *gcode.Parser
	driver     *stepgen.DualStepper
	delay      core.Delayer
	out        io.Writer

	// Current Cartesian position of the pen
	position standalone.Position

	last  MoveStats
	total [2]int64

	initialized bool
	running     bool
}

// NewManager creates a manager reading commands from in and answering on out
func NewManager(cfg *standalone.MachineConfig, in io.ByteReader, out io.Writer) *Manager {
	return &Manager{
		config:     cfg,
		kinematics: kinematics.NewPolar(cfg.Geometry),
		registers:  gcode.NewRegisters(cfg.DefaultFeedRate),
		parser:     gcode.NewParser(in, out),
		out:        out,
	}
}

// Initialize sets up plain GPIO step generation for both motors
func (m *Manager) Initialize(gpio core.GPIODriver, delay core.Delayer) error {
	var motors [2]core.StepperBackend
	for i, motor := range m.config.Motors {
		stepper, err := core.NewGPIOStepper(gpio, core.GPIOPin(motor.StepPin), core.GPIOPin(motor.DirPin),
			motor.InvertDir, delay, m.config.PulseWidthUS)
		if err != nil {
			return err
		}
		motors[i] = stepper
	}
	return m.InitializeWithBackends(gpio, delay, motors)
}

// InitializeWithBackends uses the given step backends. The enable line is
// always driven through gpio.
func (m *Manager) InitializeWithBackends(gpio core.GPIODriver, delay core.Delayer, motors [2]core.StepperBackend) error {
	if m.initialized {
		return ErrAlreadyInitialized
	}

	enable, err := core.NewOutputPin(gpio, core.GPIOPin(m.config.EnablePin), m.config.EnableActiveLow)
	if err != nil {
		return err
	}

	m.delay = delay
	m.driver = stepgen.NewDualStepper(motors, enable, delay, m.kinematics, m.config)

	// Motors stay released until a move starts
	if err := m.driver.Disable(); err != nil {
		return err
	}

	m.initialized = true
	return nil
}

// Start prints the banner
func (m *Manager) Start() error {
	if !m.initialized {
		return ErrNotInitialized
	}

	m.running = true
	m.write(protocol.Banner + protocol.Newline)
	return nil
}

// Run serves command lines until the input closes
func (m *Manager) Run() error {
	if !m.running {
		if err := m.Start(); err != nil {
			return err
		}
	}

	for {
		err := m.RunOnce()
		if errors.Is(err, gcode.ErrStreamClosed) {
			m.running = false
			return nil
		}
		if err != nil {
			m.running = false
			return err
		}
	}
}

// RunOnce prompts for, parses and executes a single command line.
// It blocks until the move has finished.
func (m *Manager) RunOnce() error {
	if !m.initialized {
		return ErrNotInitialized
	}

	m.write(protocol.Ack + protocol.Newline)
	m.write(protocol.Prompt)

	line, err := m.parser.ParseLine(m.registers)
	if err != nil {
		return err
	}
	if !line.Motion {
		return nil
	}

	return m.execute(line)
}

func (m *Manager) execute(line gcode.Line) error {
	regs := m.registers
	mode := uint8(regs.Mode())
	move := planner.Move{
		Mode:       regs.Mode(),
		Target:     standalone.Position{X: regs.Get('X'), Y: regs.Get('Y')},
		Radius:     regs.Get('R'),
		OffsetI:    regs.Get('I'),
		OffsetJ:    regs.Get('J'),
		HasRadius:  line.CalculateCenter,
		HasOffsets: line.CalculateRadius,
	}

	if err := m.kinematics.CheckLimits(move.Target); err != nil {
		m.reject(mode, err)
		return nil
	}
	plan, err := planner.NewPlan(move, m.position, m.config)
	if err != nil {
		m.reject(mode, err)
		return nil
	}

	core.DebugPrintln("move: G" + core.Itoa(int(mode)) +
		" X" + core.Ftoa(move.Target.X, 3) + " Y" + core.Ftoa(move.Target.Y, 3))
	core.RecordTiming(core.EvtCommand, mode, m.now(), int32(move.Target.X), int32(move.Target.Y))

	if err := m.driver.Enable(); err != nil {
		return err
	}

	session := m.driver.Begin(m.position, move.Target)
	stats := MoveStats{}
	for {
		next, done := plan.Next(m.position)
		taken, err := session.Transition(m.position, next)
		if err != nil {
			// Keep the step fault, but a stuck enable line must still be seen
			if derr := m.driver.Disable(); derr != nil {
				core.DebugPrintln("disable after step fault: " + derr.Error())
			}
			return err
		}
		m.position = next
		stats.Waypoints++
		core.RecordTiming(core.EvtWaypoint, mode, m.now(), int32(taken[0]), int32(taken[1]))
		if done {
			break
		}
	}

	stats.Steps = session.Steps()
	stats.Carry = session.Carry()
	m.last = stats
	m.total[0] += stats.Steps[0]
	m.total[1] += stats.Steps[1]
	core.RecordTiming(core.EvtMoveDone, mode, m.now(), int32(stats.Steps[0]), int32(stats.Steps[1]))

	return m.driver.Disable()
}

func (m *Manager) reject(mode uint8, err error) {
	core.DebugPrintln("move rejected: " + err.Error())
	core.RecordTiming(core.EvtMoveRejected, mode, m.now(), 0, 0)
	m.write(protocol.RejectedMove(err.Error()) + protocol.Newline)
}

func (m *Manager) write(s string) {
	if m.out == nil {
		return
	}
	io.WriteString(m.out, s)
}

func (m *Manager) now() uint32 {
	if clock, ok := m.delay.(core.Clock); ok {
		return uint32(clock.NowMicros())
	}
	return 0
}

// Position returns the current Cartesian position
func (m *Manager) Position() standalone.Position {
	return m.position
}

// Registers returns the modal register bank
func (m *Manager) Registers() *gcode.Registers {
	return m.registers
}

// LastMove returns statistics for the most recent move
func (m *Manager) LastMove() MoveStats {
	return m.last
}

// TotalSteps returns the net steps per motor since startup
func (m *Manager) TotalSteps() [2]int64 {
	return m.total
}

// IsRunning returns whether the command loop is active
func (m *Manager) IsRunning() bool {
	return m.running
}
