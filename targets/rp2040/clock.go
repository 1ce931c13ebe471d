//go:build rp2040

package main

import (
	"runtime/volatile"
	"unsafe"
)

// RP2040 Timer peripheral memory map
const (
	timerBase     = 0x40054000
	timerTIMERAWH = timerBase + 0x08 // Raw timer high word
	timerTIMERAWL = timerBase + 0x0C // Raw timer low word
)

var (
	timerRAWH = (*volatile.Register32)(unsafe.Pointer(uintptr(timerTIMERAWH)))
	timerRAWL = (*volatile.Register32)(unsafe.Pointer(uintptr(timerTIMERAWL)))
)

// HardwareClock busy-waits on the 1MHz RP2040 timer.
// It implements core.Clock.
type HardwareClock struct{}

// DelayMicroseconds spins until us microseconds have passed
func (HardwareClock) DelayMicroseconds(us uint32) {
	// Unsigned subtraction handles the 32-bit wrap
	start := timerRAWL.Get()
	for timerRAWL.Get()-start < us {
	}
}

// NowMicros reads the full 64-bit RP2040 hardware timer
func (HardwareClock) NowMicros() uint64 {
	// Must read high first, then low, then high again to detect rollover
	for {
		high1 := timerRAWH.Get()
		low := timerRAWL.Get()
		high2 := timerRAWH.Get()

		// If high didn't change, we got a consistent reading
		if high1 == high2 {
			return (uint64(high1) << 32) | uint64(low)
		}
	}
}
