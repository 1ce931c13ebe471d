//go:build rp2040

package main

import (
	"machine"
)

// USBPort is the host link. On RP2040 machine.Serial is USB CDC, not UART.
type USBPort struct{}

// InitUSB initializes USB serial communication
func InitUSB(baud uint32) USBPort {
	// The baud rate only matters when Serial is routed to a UART
	machine.Serial.Configure(machine.UARTConfig{BaudRate: baud})
	return USBPort{}
}

// Buffered returns the number of bytes available to read from USB
func (USBPort) Buffered() int {
	return machine.Serial.Buffered()
}

// ReadByte reads a single byte from USB
func (USBPort) ReadByte() (byte, error) {
	return machine.Serial.ReadByte()
}

// Write writes multiple bytes to USB
func (USBPort) Write(data []byte) (int, error) {
	return machine.Serial.Write(data)
}
