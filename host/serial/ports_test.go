package serial

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.bug.st/serial/enumerator"
)

func TestDescribe(t *testing.T) {
	usb := describe(&enumerator.PortDetails{
		Name:    "/dev/ttyACM0",
		IsUSB:   true,
		VID:     "2e8a",
		PID:     "000a",
		Product: "Pico",
	})
	assert.Equal(t, PortInfo{Name: "/dev/ttyACM0", Description: "/dev/ttyACM0 [2e8a:000a] Pico", USB: true}, usb)

	uart := describe(&enumerator.PortDetails{Name: "/dev/ttyS0"})
	assert.Equal(t, PortInfo{Name: "/dev/ttyS0", Description: "/dev/ttyS0"}, uart)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("/dev/ttyUSB0")
	assert.Equal(t, DefaultBaud, cfg.Baud)
	assert.Equal(t, 100, cfg.ReadTimeout)

	_, err := Open(nil)
	assert.Error(t, err)
}
