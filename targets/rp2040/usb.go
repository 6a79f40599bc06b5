//go:build rp2040

package main

import (
	"machine"
)

// InitUSB initializes USB serial communication. On RP2040 machine.Serial
// is USB CDC-ACM; the descriptors come from TinyGo's runtime.
func InitUSB() {
	err := machine.Serial.Configure(machine.UARTConfig{})
	if err != nil {
		return
	}
}

// USBAvailable returns the number of bytes available to read from USB
func USBAvailable() int {
	return machine.Serial.Buffered()
}

// USBRead reads a single byte from USB
func USBRead() (byte, error) {
	return machine.Serial.ReadByte()
}

// USBWriteBytes writes multiple bytes to USB
func USBWriteBytes(data []byte) (int, error) {
	return machine.Serial.Write(data)
}

// usbConsole adapts USB output to io.Writer for the controller. Writes
// that fail are counted and dropped; the console has no backpressure.
type usbConsole struct{}

func (usbConsole) Write(p []byte) (int, error) {
	written := 0
	for written < len(p) {
		n, err := USBWriteBytes(p[written:])
		if err != nil || n == 0 {
			writeFailures++
			return len(p), nil
		}
		written += n
	}
	return written, nil
}
