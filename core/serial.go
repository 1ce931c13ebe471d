package core

import "io"

// SerialPort is the byte-level view of the host link: "is a byte
// available" plus "read one byte".
type SerialPort interface {
	Buffered() int
	ReadByte() (byte, error)
}

// SerialReader turns a polled SerialPort into a blocking io.ByteReader by
// spinning until a byte is available. Yield, when set, runs on every empty
// poll.
type SerialReader struct {
	Port  SerialPort
	Yield func()
}

// ReadByte waits for and returns the next byte
func (r *SerialReader) ReadByte() (byte, error) {
	for r.Port.Buffered() < 1 {
		if r.Yield != nil {
			r.Yield()
		}
	}
	return r.Port.ReadByte()
}

var _ io.ByteReader = (*SerialReader)(nil)
