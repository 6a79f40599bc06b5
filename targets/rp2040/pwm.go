//go:build rp2040

package main

import (
	"errors"

	"machine"

	"petfeeder/core"
)

// PWM_MAX is the full-scale duty value the driver accepts
const PWM_MAX = 255

// pwmPeripheral is an interface for PWM hardware peripherals
// This abstracts over TinyGo's unexported *pwmGroup type
type pwmPeripheral interface {
	Configure(config machine.PWMConfig) error
	Channel(pin machine.Pin) (uint8, error)
	Top() uint32
	Set(channel uint8, value uint32)
}

// RP2040PWMDriver implements the PWMDriver interface for RP2040
// Leverages RP2040's 8 hardware PWM slices with 2 channels each
type RP2040PWMDriver struct {
	// Key: slice number (0-7), Value: configured period in nanoseconds
	slices map[uint8]uint64

	// Key: pin number, Value: PWM channel
	channels map[uint32]uint8

	// Key: slice number (0-7), Value: PWM peripheral
	peripherals map[uint8]pwmPeripheral
}

// NewRP2040PWMDriver creates a new RP2040 PWM driver
func NewRP2040PWMDriver() *RP2040PWMDriver {
	return &RP2040PWMDriver{
		slices:      make(map[uint8]uint64),
		channels:    make(map[uint32]uint8),
		peripherals: make(map[uint8]pwmPeripheral),
	}
}

// GetMaxValue returns the maximum PWM value (255)
func (d *RP2040PWMDriver) GetMaxValue() uint32 {
	return PWM_MAX
}

// sliceOf maps a GPIO to its PWM slice: (N >> 1) & 0x7
func sliceOf(pinNum uint32) uint8 {
	return uint8((pinNum >> 1) & 0x7)
}

// ConfigureHardwarePWM configures a pin for hardware PWM output.
// cycleTicks is in core timer ticks (microseconds).
func (d *RP2040PWMDriver) ConfigureHardwarePWM(pin core.PWMPin, cycleTicks uint32) (uint32, error) {
	pinNum := uint32(pin)
	sliceNum := sliceOf(pinNum)

	// Both channels of a slice share one period
	period := uint64(core.TimerToUS(cycleTicks)) * 1000
	if existing, ok := d.slices[sliceNum]; ok && existing != period {
		return 0, errors.New("PWM slice already running at another period")
	}

	pwm, exists := d.peripherals[sliceNum]
	if !exists {
		pwm = d.getPWMPeripheral(sliceNum)
		d.peripherals[sliceNum] = pwm
	}

	err := pwm.Configure(machine.PWMConfig{
		Period: period,
	})
	if err != nil {
		return 0, err
	}

	channel, err := pwm.Channel(machine.Pin(pinNum))
	if err != nil {
		return 0, err
	}

	d.slices[sliceNum] = period
	d.channels[pinNum] = channel

	return cycleTicks, nil
}

// SetDutyCycle sets the PWM duty cycle for a pin
// value: 0 (fully off) to 255 (fully on)
func (d *RP2040PWMDriver) SetDutyCycle(pin core.PWMPin, value core.PWMValue) error {
	pinNum := uint32(pin)

	channel, exists := d.channels[pinNum]
	if !exists {
		return errors.New("PWM pin not configured")
	}
	pwm := d.peripherals[sliceOf(pinNum)]

	if value > PWM_MAX {
		value = PWM_MAX
	}
	// Scale 0-255 to the slice's 0-Top()
	dutyCycle := (uint32(value) * pwm.Top()) / PWM_MAX
	pwm.Set(channel, dutyCycle)

	return nil
}

// DisablePWM drives the pin low and forgets it. TinyGo has no way to hand
// the pin back to GPIO.
func (d *RP2040PWMDriver) DisablePWM(pin core.PWMPin) error {
	pinNum := uint32(pin)
	if channel, ok := d.channels[pinNum]; ok {
		d.peripherals[sliceOf(pinNum)].Set(channel, 0)
	}
	delete(d.channels, pinNum)
	return nil
}

// getPWMPeripheral returns the PWM peripheral for a given slice number
func (d *RP2040PWMDriver) getPWMPeripheral(sliceNum uint8) pwmPeripheral {
	switch sliceNum {
	case 0:
		return machine.PWM0
	case 1:
		return machine.PWM1
	case 2:
		return machine.PWM2
	case 3:
		return machine.PWM3
	case 4:
		return machine.PWM4
	case 5:
		return machine.PWM5
	case 6:
		return machine.PWM6
	default:
		return machine.PWM7
	}
}
