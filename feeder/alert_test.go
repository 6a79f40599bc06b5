package feeder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"petfeeder/core"
)

func TestAlertSequence(t *testing.T) {
	r := newRig(t)
	a := r.ctrl.Alert()

	require.True(t, a.Trigger())
	assert.True(t, a.Running())
	assert.True(t, r.gpio.out[testPins.AlertLED])
	assert.Equal(t, core.PWMValue(fakePWMMax/2), r.pwm.duty[testPins.Buzzer])

	r.run(AlertBurstMS)
	assert.False(t, r.gpio.out[testPins.AlertLED], "first gap")
	assert.Equal(t, core.PWMValue(0), r.pwm.duty[testPins.Buzzer])

	r.run(AlertGapMS)
	assert.True(t, r.gpio.out[testPins.AlertLED], "second burst")

	total := uint32(AlertBursts*AlertBurstMS + (AlertBursts-1)*AlertGapMS)
	r.run(total - AlertBurstMS - AlertGapMS - 10)
	assert.True(t, a.Running())
	r.run(10)
	assert.False(t, a.Running())
	assert.False(t, r.gpio.out[testPins.AlertLED])
	assert.Equal(t, core.PWMValue(0), r.pwm.duty[testPins.Buzzer])

	// LED on and off once per burst
	assert.Equal(t, 2*AlertBursts, r.gpio.writes[testPins.AlertLED])
}

func TestAlertIgnoresRequestWhileRunning(t *testing.T) {
	r := newRig(t)
	a := r.ctrl.Alert()

	require.True(t, a.Trigger())
	r.run(600)
	assert.False(t, a.Trigger())
	assert.Equal(t, uint32(1), a.Sequences())

	r.run(2000)
	assert.False(t, a.Running())
	assert.True(t, a.Trigger(), "a finished sequence can start again")
	assert.Equal(t, uint32(2), a.Sequences())
}
