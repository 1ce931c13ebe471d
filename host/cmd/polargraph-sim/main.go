package main

import (
	"context"
	"flag"
	"io"
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"polargraph/core"
	"polargraph/host/sim"
	"polargraph/standalone"
	"polargraph/standalone/config"
)

var (
	configPath = flag.String("config", "", "Machine configuration JSON (default: reference plotter)")
	trace      = flag.Bool("trace", false, "Print every pin write")
	verbose    = flag.Bool("verbose", false, "Enable firmware debug output")
)

func main() {
	flag.Parse()

	if *verbose {
		log.SetLevel(log.DebugLevel)
		core.SetDebugWriter(func(msg string) {
			log.WithField("src", "firmware").Debug(msg)
		})
		core.SetDebugEnabled(true)
	}

	if err := run(flag.Args()); err != nil {
		log.Fatalf("%v", err)
	}
}

func run(args []string) (err error) {
	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	var program io.Reader = os.Stdin
	if len(args) > 0 {
		var f *os.File
		f, err = os.Open(args[0])
		if err != nil {
			return errors.Wrap(err, "opening program")
		}
		defer func() {
			err = multierr.Append(err, f.Close())
		}()
		program = f
	}

	result, err := sim.Run(context.Background(), cfg, program, log.StandardLogger(), sim.Options{Trace: *trace})
	if err != nil {
		return err
	}

	for _, ev := range result.Events {
		log.WithFields(log.Fields{"pin": ev.Pin, "value": ev.Value}).Info("pin")
	}
	if *verbose {
		core.DumpTimingRing()
	}

	log.WithFields(log.Fields{
		"lines":       result.Stats.Lines,
		"diagnostics": len(result.Stats.Diagnostics),
		"x":           result.Position.X,
		"y":           result.Position.Y,
		"steps_left":  result.Steps[0],
		"steps_right": result.Steps[1],
		"pulses":      result.Pulses[0] + result.Pulses[1],
		"elapsed":     result.Elapsed,
	}).Info("simulation finished")
	return nil
}

func loadConfig(path string) (*standalone.MachineConfig, error) {
	if path == "" {
		return config.DefaultPolargraphConfig(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading config")
	}
	cfg, err := config.LoadConfig(data)
	if err != nil {
		return nil, errors.Wrapf(err, "loading %s", path)
	}
	return cfg, nil
}
