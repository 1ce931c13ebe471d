package main

import (
	"context"
	"flag"
	"io"
	"os"
	"os/signal"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"polargraph/host/sender"
	"polargraph/host/serial"
)

var (
	device  = flag.String("device", "", "Serial device path (default: first port found)")
	baud    = flag.Int("baud", 9600, "Baud rate (ignored for USB CDC)")
	driver  = flag.String("driver", serial.DriverTarm, "Serial library: tarm or bugst")
	list    = flag.Bool("list", false, "List serial ports and exit")
	verbose = flag.Bool("verbose", false, "Enable verbose output")
)

func main() {
	flag.Parse()

	if *verbose {
		log.SetLevel(log.DebugLevel)
	}

	if *list {
		ports, err := serial.ListPorts()
		if err != nil {
			log.Fatalf("%v", err)
		}
		for _, port := range ports {
			log.Info(port)
		}
		return
	}

	if err := run(flag.Args()); err != nil {
		log.Fatalf("%v", err)
	}
}

func run(files []string) (err error) {
	path := *device
	if path == "" {
		ports, err := serial.ListPorts()
		if err != nil {
			return err
		}
		if len(ports) == 0 {
			return errors.New("no serial ports found, use -device")
		}
		path = ports[0]
	}

	cfg := serial.DefaultConfig(path)
	cfg.Baud = *baud
	cfg.Driver = *driver

	log.Infof("opening %s", path)
	port, err := serial.Open(cfg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, port.Close())
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	s := sender.New(port, log.StandardLogger())
	for _, input := range inputs(files) {
		stats, err := streamFile(ctx, s, input)
		if err != nil {
			return err
		}
		log.WithFields(log.Fields{
			"file":        input,
			"lines":       stats.Lines,
			"diagnostics": len(stats.Diagnostics),
		}).Info("done")
	}
	return nil
}

// inputs maps no arguments to standard input
func inputs(files []string) []string {
	if len(files) == 0 {
		return []string{"-"}
	}
	return files
}

func streamFile(ctx context.Context, s *sender.Sender, name string) (stats sender.Stats, err error) {
	var r io.Reader = os.Stdin
	if name != "-" {
		var f *os.File
		f, err = os.Open(name)
		if err != nil {
			return stats, errors.Wrap(err, "opening program")
		}
		defer func() {
			err = multierr.Append(err, f.Close())
		}()
		r = f
	}
	return s.Stream(ctx, r)
}
