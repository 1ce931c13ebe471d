//go:build rp2040

package main

import (
	"machine"
	"time"

	"polargraph/core"
	"polargraph/standalone/config"
	"polargraph/standalone/controller"
)

func main() {
	// Disable watchdog on boot to clear any previous state
	err := machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0})
	if err != nil {
		return
	}

	cfg := config.DefaultPolargraphConfig()

	InitDebugUART()
	port := InitUSB(cfg.Baud)

	gpioDriver := NewRPGPIODriver()
	clock := HardwareClock{}

	// Blocking reads yield so the USB stack keeps running
	reader := &core.SerialReader{
		Port:  port,
		Yield: func() { time.Sleep(10 * time.Microsecond) },
	}
	manager := controller.NewManager(cfg, reader, port)

	switch cfg.StepBackend {
	case "pio":
		var motors [2]core.StepperBackend
		for i, motor := range cfg.Motors {
			backend := NewPIOStepperBackend(uint8(i))
			if err := backend.Init(motor.StepPin, motor.DirPin, motor.InvertDir, cfg.PulseWidthUS); err != nil {
				halt()
			}
			motors[i] = backend
		}
		err = manager.InitializeWithBackends(gpioDriver, clock, motors)
	default:
		err = manager.Initialize(gpioDriver, clock)
	}
	if err != nil {
		halt()
	}

	for {
		// Serial input never closes on hardware, only a fault returns
		if err := manager.Run(); err != nil {
			core.DebugPrintln("command loop: " + err.Error())
			core.DumpTimingRing()
		}
	}
}

// halt flashes the LED rapidly to indicate a setup error
func halt() {
	led := machine.LED
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})
	for {
		led.High()
		time.Sleep(100 * time.Millisecond)
		led.Low()
		time.Sleep(100 * time.Millisecond)
	}
}
