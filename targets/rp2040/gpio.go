//go:build rp2040

package main

import (
	"errors"

	"machine"

	"petfeeder/core"
)

// RPGPIODriver implements the GPIODriver interface for RP2040
type RPGPIODriver struct {
	// Track configured pins to prevent conflicts
	configuredPins map[core.GPIOPin]machine.Pin
	outputs        map[core.GPIOPin]bool
}

// NewRPGPIODriver creates a new RP2040 GPIO driver
func NewRPGPIODriver() *RPGPIODriver {
	return &RPGPIODriver{
		configuredPins: make(map[core.GPIOPin]machine.Pin),
		outputs:        make(map[core.GPIOPin]bool),
	}
}

// ConfigureOutput configures a pin as a digital output driven low
func (d *RPGPIODriver) ConfigureOutput(pin core.GPIOPin) error {
	if pin > 29 {
		return errors.New("invalid GPIO pin")
	}
	machinePin := machine.Pin(pin)
	machinePin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	machinePin.Low()

	d.configuredPins[pin] = machinePin
	d.outputs[pin] = true
	return nil
}

// ConfigureInputPullDown configures a pin as an input with pull-down
func (d *RPGPIODriver) ConfigureInputPullDown(pin core.GPIOPin) error {
	if pin > 29 {
		return errors.New("invalid GPIO pin")
	}
	machinePin := machine.Pin(pin)
	machinePin.Configure(machine.PinConfig{Mode: machine.PinInputPulldown})

	d.configuredPins[pin] = machinePin
	delete(d.outputs, pin)
	return nil
}

// SetPin drives an output pin
func (d *RPGPIODriver) SetPin(pin core.GPIOPin, value bool) error {
	machinePin, exists := d.configuredPins[pin]
	if !exists || !d.outputs[pin] {
		return errors.New("pin not configured as output")
	}
	machinePin.Set(value)
	return nil
}

// ReadPin reads the pin level
func (d *RPGPIODriver) ReadPin(pin core.GPIOPin) bool {
	machinePin, exists := d.configuredPins[pin]
	if !exists {
		return false
	}
	return machinePin.Get()
}
