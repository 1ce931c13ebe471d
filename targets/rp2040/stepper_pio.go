//go:build rp2040

package main

import (
	"machine"

	rp2pio "github.com/tinygo-org/pio/rp2-pio"
)

// PIO program for step pulse generation
// Command word format (shifted out LSB first):
//
//	Bits 0-15:  pulse count minus one
//	Bits 16-23: delay cycles after each pulse
//	Bit 24:     direction level
//
// The step line idles high and each pulse drives it low for the pulse width.
// The state machine runs at 1MHz so one cycle is one microsecond.
func buildStepperProgram(pulseWidthUS uint32) []uint16 {
	low := pulseWidthUS
	if low < 1 {
		low = 1
	}
	if low > 32 {
		low = 32 // delay field is 5 bits
	}

	asm := rp2pio.AssemblerV0{SidesetBits: 0}
	return []uint16{
		// .wrap_target
		asm.Pull(false, true).Encode(),          // 0: pull block
		asm.Out(rp2pio.OutDestX, 16).Encode(),   // 1: out x, 16 (pulse count)
		asm.Out(rp2pio.OutDestY, 8).Encode(),    // 2: out y, 8 (delay cycles)
		asm.Out(rp2pio.OutDestPins, 1).Encode(), // 3: out pins, 1 (direction)
		// step_loop:
		asm.Set(rp2pio.SetDestPins, 0).Delay(uint8(low-1)).Encode(), // 4: set pins, 0 [low-1]
		asm.Set(rp2pio.SetDestPins, 1).Encode(),                     // 5: set pins, 1
		// delay_loop:
		asm.Jmp(6, rp2pio.JmpYNZeroDec).Encode(), // 6: jmp y--, 6
		asm.Jmp(4, rp2pio.JmpXNZeroDec).Encode(), // 7: jmp x--, 4
		// .wrap
	}
}

const stepperPIOOrigin = 0 // Load at offset 0 for correct jump addresses

// PIOStepperBackend generates step pulses on a PIO state machine.
// Direction travels with every command so it always matches the pulse.
type PIOStepperBackend struct {
	pio       *rp2pio.PIO
	sm        rp2pio.StateMachine
	stepPin   machine.Pin
	dirPin    machine.Pin
	invertDir bool
	direction bool
}

// pioOffset is shared by every state machine running the program
var (
	pioLoaded bool
	pioOffset uint8
)

// NewPIOStepperBackend creates a backend on PIO0 state machine smNum
func NewPIOStepperBackend(smNum uint8) *PIOStepperBackend {
	return &PIOStepperBackend{
		pio: rp2pio.PIO0,
		sm:  rp2pio.PIO0.StateMachine(smNum),
	}
}

// Init loads the program if needed and starts the state machine
func (b *PIOStepperBackend) Init(stepPin, dirPin uint8, invertDir bool, pulseWidthUS uint32) error {
	b.stepPin = machine.Pin(stepPin)
	b.dirPin = machine.Pin(dirPin)
	b.invertDir = invertDir

	// Claim the state machine first
	b.sm.TryClaim()

	program := buildStepperProgram(pulseWidthUS)
	if !pioLoaded {
		offset, err := b.pio.AddProgram(program, stepperPIOOrigin)
		if err != nil {
			return err
		}
		pioOffset = offset
		pioLoaded = true
	}
	offset := pioOffset

	// Configure pins for PIO
	b.stepPin.Configure(machine.PinConfig{Mode: b.pio.PinMode()})
	b.dirPin.Configure(machine.PinConfig{Mode: b.pio.PinMode()})

	cfg := rp2pio.DefaultStateMachineConfig()
	cfg.SetSetPins(b.stepPin, 1)
	cfg.SetOutPins(b.dirPin, 1)

	// Shift right, explicit PULL, 32-bit threshold
	cfg.SetOutShift(true, false, 32)
	cfg.SetWrap(offset, offset+uint8(len(program))-1)

	// One cycle per microsecond
	cfg.SetClkDivIntFrac(uint16(machine.CPUFrequency()/1000000), 0)

	// Initialize state machine before setting pin directions
	b.sm.Init(offset, cfg)
	b.sm.SetPindirsConsecutive(b.stepPin, 1, true)
	b.sm.SetPindirsConsecutive(b.dirPin, 1, true)

	// Step idles high
	b.sm.SetPinsConsecutive(b.stepPin, 1, true)
	b.sm.SetPinsConsecutive(b.dirPin, 1, invertDir)

	b.sm.SetEnabled(true)
	return nil
}

// Step queues a single pulse
func (b *PIOStepperBackend) Step() error {
	cmd := uint32(0) // one pulse, no trailing delay
	if b.direction {
		cmd |= 1 << 24
	}

	// Wait for FIFO space and write
	for b.sm.IsTxFIFOFull() {
	}
	b.sm.TxPut(cmd)
	return nil
}

// SetDirection sets the level sent with the next pulse
func (b *PIOStepperBackend) SetDirection(dir bool) error {
	b.direction = dir != b.invertDir
	return nil
}

// GetName returns the backend name
func (b *PIOStepperBackend) GetName() string {
	return "PIO"
}
