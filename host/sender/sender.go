// Package sender streams G-code to the plotter one line per acknowledgement.
package sender

import (
	"bufio"
	"context"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"polargraph/protocol"
)

// ErrPortClosed is returned when the firmware output ends while waiting for ok
var ErrPortClosed = errors.New("port closed before acknowledgement")

// Stats summarises a streaming session
type Stats struct {
	Lines       int      // lines sent
	Diagnostics []string // "!!" lines reported by the firmware
	Banners     int      // firmware restarts seen
}

// Sender talks to the firmware over a byte stream.
// Firmware output is read on a background goroutine so the device is never
// blocked writing its prompt.
type Sender struct {
	port io.Writer
	log  logrus.FieldLogger

	lines   chan string
	readErr error
	ready   bool // an ok was consumed and no line sent since

	stats Stats
}

// New starts reading firmware output from port
func New(port io.ReadWriter, log logrus.FieldLogger) *Sender {
	s := &Sender{
		port:  port,
		log:   log,
		lines: make(chan string, 16),
	}
	go s.readLoop(port)
	return s
}

func (s *Sender) readLoop(r io.Reader) {
	defer close(s.lines)
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			s.lines <- line
		}
		if err != nil {
			s.readErr = err
			return
		}
	}
}

// WaitReady consumes firmware output up to the next acknowledgement.
// It returns at once if the last acknowledgement has not been answered yet.
func (s *Sender) WaitReady(ctx context.Context) error {
	if s.ready {
		return nil
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case raw, ok := <-s.lines:
			if !ok {
				return s.closedErr()
			}
			s.handle(raw)
			if protocol.Classify(raw) == protocol.KindAck {
				s.ready = true
				return nil
			}
		}
	}
}

func (s *Sender) handle(raw string) {
	line := protocol.StripPrompt(raw)
	switch protocol.Classify(line) {
	case protocol.KindBanner:
		s.stats.Banners++
		s.log.Info("firmware started")
	case protocol.KindDiagnostic:
		s.stats.Diagnostics = append(s.stats.Diagnostics, line)
		s.log.WithField("line", s.stats.Lines).Warn(line)
	case protocol.KindAck, protocol.KindEmpty:
	default:
		s.log.Debug(line)
	}
}

func (s *Sender) closedErr() error {
	if s.readErr == nil || s.readErr == io.EOF {
		return ErrPortClosed
	}
	return errors.Wrap(s.readErr, "reading firmware output")
}

// SendLine waits until the firmware is ready and sends one command line
func (s *Sender) SendLine(ctx context.Context, line string) error {
	if err := s.WaitReady(ctx); err != nil {
		return errors.Wrap(err, "waiting for ok")
	}

	line = strings.TrimRight(line, "\r\n")
	if _, err := io.WriteString(s.port, line+"\n"); err != nil {
		return errors.Wrapf(err, "sending line %d", s.stats.Lines+1)
	}
	s.ready = false
	s.stats.Lines++
	s.log.WithField("line", s.stats.Lines).Debugf("sent %q", line)
	return nil
}

// Stream sends every line of r and waits for the last one to finish
func (s *Sender) Stream(ctx context.Context, r io.Reader) (Stats, error) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if err := s.SendLine(ctx, scanner.Text()); err != nil {
			return s.stats, err
		}
	}
	if err := scanner.Err(); err != nil {
		return s.stats, errors.Wrap(err, "reading input")
	}

	// The acknowledgement after the last line means its move is done
	if err := s.WaitReady(ctx); err != nil {
		return s.stats, errors.Wrap(err, "waiting for last move")
	}
	return s.stats, nil
}

// Stats returns what has been sent so far
func (s *Sender) Stats() Stats {
	return s.stats
}
