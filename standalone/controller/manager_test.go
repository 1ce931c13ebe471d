package controller

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"polargraph/core"
	"polargraph/standalone"
	"polargraph/standalone/config"
	"polargraph/standalone/kinematics"
)

type rig struct {
	mgr   *Manager
	gpio  *core.RecordingGPIO
	clock *core.VirtualClock
	out   *bytes.Buffer
	cfg   *standalone.MachineConfig
}

func newRig(t *testing.T, input string) *rig {
	t.Helper()
	cfg := config.DefaultPolargraphConfig()
	out := &bytes.Buffer{}
	gpio := core.NewRecordingGPIO()
	clock := core.NewVirtualClock()

	mgr := NewManager(cfg, strings.NewReader(input), out)
	if err := mgr.Initialize(gpio, clock); err != nil {
		t.Fatalf("Failed to initialize: %v", err)
	}
	gpio.ClearEvents()
	return &rig{mgr: mgr, gpio: gpio, clock: clock, out: out, cfg: cfg}
}

func (r *rig) steps(motor int) uint64 {
	return r.gpio.RisingEdges(core.GPIOPin(r.cfg.Motors[motor].StepPin))
}

func TestRequiresInitialize(t *testing.T) {
	mgr := NewManager(config.DefaultPolargraphConfig(), strings.NewReader(""), nil)
	if err := mgr.Start(); err != ErrNotInitialized {
		t.Errorf("Expected ErrNotInitialized, got %v", err)
	}
	if err := mgr.RunOnce(); err != ErrNotInitialized {
		t.Errorf("Expected ErrNotInitialized, got %v", err)
	}
}

func TestLinearMoveEndToEnd(t *testing.T) {
	r := newRig(t, "G1 X10 Y0\n")
	if err := r.mgr.Run(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if pos := r.mgr.Position(); pos.X != 10 || pos.Y != 0 {
		t.Errorf("Expected to end at (10, 0), got (%f, %f)", pos.X, pos.Y)
	}

	kin := kinematics.NewPolar(r.cfg.Geometry)
	from := kin.CalcPosition(standalone.Position{})
	to := kin.CalcPosition(standalone.Position{X: 10})
	stats := r.mgr.LastMove()
	for i := 0; i < 2; i++ {
		delta := to[i] - from[i]
		if math.Abs(float64(stats.Steps[i])-delta) >= 1 {
			t.Errorf("Motor %d: expected about %f steps, got %d", i, delta, stats.Steps[i])
		}
		if math.Abs(stats.Carry[i]) >= 1 {
			t.Errorf("Motor %d: expected sub-step carry, got %f", i, stats.Carry[i])
		}
		if uint64(math.Abs(float64(stats.Steps[i]))) != r.steps(i) {
			t.Errorf("Motor %d: expected %d pulses, got %d", i, stats.Steps[i], r.steps(i))
		}
	}

	// Moving right lengthens the left cable and shortens the right one
	if stats.Steps[0] <= 0 || stats.Steps[1] >= 0 {
		t.Errorf("Unexpected step signs: %v", stats.Steps)
	}
	if stats.Waypoints < 10 {
		t.Errorf("Expected at least 10 waypoints, got %d", stats.Waypoints)
	}
	if r.clock.NowMicros() == 0 {
		t.Errorf("Expected the move to take time")
	}
}

func TestProtocolOutput(t *testing.T) {
	r := newRig(t, "G21\n(comment)\n")
	if err := r.mgr.Run(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	expected := "( Starting )\r\n" +
		"ok\r\n>>> " +
		"ok\r\n>>> " +
		"ok\r\n>>> "
	if r.out.String() != expected {
		t.Errorf("Expected %q, got %q", expected, r.out.String())
	}
	if r.steps(0) != 0 || r.steps(1) != 0 {
		t.Errorf("Expected no motion")
	}
}

func TestDiagnosticsFollowPrompt(t *testing.T) {
	r := newRig(t, "x1 M3\n")
	r.mgr.Run()

	expected := "( Starting )\r\n" +
		"ok\r\n>>> !! Invalid character: 120\r\n!! Unhandled command: M3.00\r\n" +
		"ok\r\n>>> "
	if r.out.String() != expected {
		t.Errorf("Expected %q, got %q", expected, r.out.String())
	}
}

func TestEnableOnlyDuringMotion(t *testing.T) {
	r := newRig(t, "G1 X2\n")
	r.gpio.Trace = true
	enable := core.GPIOPin(r.cfg.EnablePin)
	step0 := core.GPIOPin(r.cfg.Motors[0].StepPin)

	if level, _ := r.gpio.GetPin(enable); !level {
		t.Fatalf("Expected motors released after initialize")
	}

	if err := r.mgr.Run(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	enabled := false
	pulses := 0
	for _, ev := range r.gpio.Events() {
		switch ev.Pin {
		case enable:
			enabled = !ev.Value
		case step0:
			if !ev.Value {
				pulses++
				if !enabled {
					t.Fatalf("Step pulse with motors disabled")
				}
			}
		}
	}
	if pulses == 0 {
		t.Errorf("Expected step pulses")
	}
	if enabled {
		t.Errorf("Expected motors released after the move")
	}
}

func TestRejectedArc(t *testing.T) {
	r := newRig(t, "G2 X0 Y0 R5\nG3 X4\n")
	r.mgr.Run()

	out := r.out.String()
	if strings.Count(out, "!! Rejected move: degenerate arc\r\n") != 1 {
		t.Errorf("Expected degenerate arc diagnostic, got %q", out)
	}
	if strings.Count(out, "!! Rejected move: arc needs R or I/J\r\n") != 1 {
		t.Errorf("Expected undefined arc diagnostic, got %q", out)
	}
	if r.steps(0) != 0 || r.steps(1) != 0 {
		t.Errorf("Expected no motion for rejected moves")
	}
	if pos := r.mgr.Position(); pos != (standalone.Position{}) {
		t.Errorf("Expected position unchanged, got %v", pos)
	}
	// Registers keep what was parsed
	if r.mgr.Registers().Get('X') != 4 || r.mgr.Registers().Mode() != 3 {
		t.Errorf("Expected registers to keep parsed values")
	}
}

func TestArcMove(t *testing.T) {
	r := newRig(t, "G1 X-10 Y0\nG2 X10 Y0 I10 J0\n")
	if err := r.mgr.Run(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if pos := r.mgr.Position(); pos.X != 10 || pos.Y != 0 {
		t.Errorf("Expected to end at (10, 0), got %v", pos)
	}
	// Half circle of radius 10 in 1mm segments
	if n := r.mgr.LastMove().Waypoints; n < 29 || n > 33 {
		t.Errorf("Expected about 31 waypoints, got %d", n)
	}
}

func TestTotalStepsReturnHome(t *testing.T) {
	r := newRig(t, "G1 X25 Y-40\nG1 X0 Y0\n")
	if err := r.mgr.Run(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	total := r.mgr.TotalSteps()
	for i, n := range total {
		if n < -1 || n > 1 {
			t.Errorf("Motor %d: expected to return within a step of home, got %d", i, n)
		}
	}
}

func TestTimingEvents(t *testing.T) {
	core.ClearTimingRing()
	r := newRig(t, "G1 X3\nG2 X3\n")
	r.mgr.Run()

	events := core.TimingEvents()
	var commands, done, rejected int
	for _, ev := range events {
		switch ev.EventType {
		case core.EvtCommand:
			commands++
		case core.EvtMoveDone:
			done++
		case core.EvtMoveRejected:
			rejected++
		}
	}
	if commands != 1 || done != 1 || rejected != 1 {
		t.Errorf("Expected 1 command, 1 done and 1 rejected, got %d %d %d", commands, done, rejected)
	}
}

type stuckMotor struct{ err error }

func (m stuckMotor) Step() error             { return m.err }
func (m stuckMotor) SetDirection(bool) error { return nil }
func (m stuckMotor) GetName() string         { return "stuck" }

// faultyGPIO refuses to drive one pin high once armed. With an active-low
// enable that is the write releasing the motors.
type faultyGPIO struct {
	*core.RecordingGPIO
	pin   core.GPIOPin
	armed bool
}

func (g *faultyGPIO) SetPin(pin core.GPIOPin, value bool) error {
	if g.armed && pin == g.pin && value {
		return errors.New("enable line stuck")
	}
	return g.RecordingGPIO.SetPin(pin, value)
}

func TestStepFaultReleasesMotors(t *testing.T) {
	cfg := config.DefaultPolargraphConfig()
	gpio := &faultyGPIO{RecordingGPIO: core.NewRecordingGPIO(), pin: core.GPIOPin(cfg.EnablePin)}
	stepErr := errors.New("driver fault")
	motors := [2]core.StepperBackend{stuckMotor{stepErr}, stuckMotor{stepErr}}

	mgr := NewManager(cfg, strings.NewReader("G1 X5\n"), nil)
	if err := mgr.InitializeWithBackends(gpio, core.NewVirtualClock(), motors); err != nil {
		t.Fatalf("Failed to initialize: %v", err)
	}

	if err := mgr.Run(); err != stepErr {
		t.Errorf("Expected the step fault, got %v", err)
	}
	if level, _ := gpio.GetPin(gpio.pin); !level {
		t.Errorf("Expected motors released after a step fault")
	}
}

func TestStepFaultReportsStuckEnable(t *testing.T) {
	cfg := config.DefaultPolargraphConfig()
	gpio := &faultyGPIO{RecordingGPIO: core.NewRecordingGPIO(), pin: core.GPIOPin(cfg.EnablePin)}
	stepErr := errors.New("driver fault")
	motors := [2]core.StepperBackend{stuckMotor{stepErr}, stuckMotor{stepErr}}

	mgr := NewManager(cfg, strings.NewReader("G1 X5\n"), nil)
	if err := mgr.InitializeWithBackends(gpio, core.NewVirtualClock(), motors); err != nil {
		t.Fatalf("Failed to initialize: %v", err)
	}

	var lines []string
	core.SetDebugWriter(func(s string) { lines = append(lines, s) })
	core.SetDebugEnabled(true)
	defer func() {
		core.SetDebugEnabled(false)
		core.SetDebugWriter(func(string) {})
	}()

	gpio.armed = true
	if err := mgr.Run(); err != stepErr {
		t.Errorf("Expected the step fault to win, got %v", err)
	}

	found := false
	for _, line := range lines {
		if strings.Contains(line, "enable line stuck") {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected the failed release in the debug log, got %v", lines)
	}
}
