//go:build rp2040

package main

import (
	"machine"

	"petfeeder/feeder"
)

// Board wiring
var boardPins = feeder.Pins{
	Water:     2,  // GP2, valve driver
	Food:      3,  // GP3, auger PWM (slice 1 B)
	Buzzer:    4,  // GP4, buzzer PWM (slice 2 A)
	AlertLED:  5,  // GP5
	Presence:  6,  // GP6, PIR output
	Indicator: 25, // on-board LED
}

const (
	levelExcitePin = machine.GP14
	levelSensePin  = machine.GP15 // comparator output

	eepromSDA = machine.GP16 // I2C0
	eepromSCL = machine.GP17
)
