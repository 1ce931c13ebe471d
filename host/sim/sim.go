// Package sim runs the firmware command loop on the host. The control loop
// drives recorded GPIO with a virtual clock and is fed by the same sender
// used against real hardware.
package sim

import (
	"bufio"
	"context"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"polargraph/core"
	"polargraph/host/sender"
	"polargraph/standalone"
	"polargraph/standalone/controller"
)

// Result describes a finished simulation
type Result struct {
	Stats    sender.Stats
	Position standalone.Position
	Steps    [2]int64  // net signed steps per motor
	Pulses   [2]uint64 // step pulses per motor
	Elapsed  time.Duration
	Events   []core.PinEvent // only with trace
}

// Options control a simulation run
type Options struct {
	Trace bool // keep every pin write
}

// duplex joins the two pipe ends the sender sees as one port
type duplex struct {
	io.Reader
	io.Writer
}

// Run streams program through a simulated plotter built from cfg
func Run(ctx context.Context, cfg *standalone.MachineConfig, program io.Reader, log logrus.FieldLogger, opts Options) (*Result, error) {
	toDevice, hostOut := io.Pipe()
	hostIn, fromDevice := io.Pipe()

	gpio := core.NewRecordingGPIO()
	clock := core.NewVirtualClock()

	mgr := controller.NewManager(cfg, bufio.NewReader(toDevice), fromDevice)
	if err := mgr.Initialize(gpio, clock); err != nil {
		return nil, err
	}
	gpio.ClearEvents()
	gpio.Trace = opts.Trace

	done := make(chan error, 1)
	go func() {
		err := mgr.Run()
		fromDevice.Close()
		done <- err
	}()

	s := sender.New(duplex{Reader: hostIn, Writer: hostOut}, log)
	stats, err := s.Stream(ctx, program)

	// Closing the input ends the command loop
	err = multierr.Append(err, hostOut.Close())
	err = multierr.Append(err, <-done)
	err = multierr.Append(err, hostIn.Close())

	result := &Result{
		Stats:    stats,
		Position: mgr.Position(),
		Steps:    mgr.TotalSteps(),
		Elapsed:  time.Duration(clock.NowMicros()) * time.Microsecond,
		Events:   gpio.Events(),
	}
	for i, motor := range cfg.Motors {
		result.Pulses[i] = gpio.RisingEdges(core.GPIOPin(motor.StepPin))
	}
	return result, err
}
