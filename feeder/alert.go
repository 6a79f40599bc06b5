package feeder

import (
	"sync/atomic"

	"petfeeder/core"
)

// Alert pattern: three buzzer bursts with the LED lit, separated by quiet
// gaps. The buzzer is a 366us square wave (about 2.7kHz).
const (
	AlertBursts      = 3
	AlertBurstMS     = 500
	AlertGapMS       = 150
	BuzzerCycleTicks = 366
)

// AlertController plays the alert as a timer driven state machine. Each
// step is one short handler; nothing waits.
type AlertController struct {
	gpio core.GPIODriver
	pwm  core.PWMDriver
	pins Pins

	timer   core.Timer
	step    uint8 // even steps sound, odd steps are gaps
	running atomic.Bool
	count   atomic.Uint32
}

// NewAlertController creates the controller. The buzzer PWM must already
// be configured with BuzzerCycleTicks.
func NewAlertController(gpio core.GPIODriver, pwm core.PWMDriver, pins Pins) *AlertController {
	a := &AlertController{gpio: gpio, pwm: pwm, pins: pins}
	a.timer.Handler = a.advance
	return a
}

// Running reports whether a sequence is playing
func (a *AlertController) Running() bool {
	return a.running.Load()
}

// Sequences returns how many sequences have been started
func (a *AlertController) Sequences() uint32 {
	return a.count.Load()
}

// Trigger starts a sequence. It returns false, and does nothing, while a
// sequence is already playing.
func (a *AlertController) Trigger() bool {
	if !a.running.CompareAndSwap(false, true) {
		return false
	}
	a.count.Add(1)
	now := core.GetTime()
	core.RecordTiming(core.EvtAlert, 0, now, 0, 0)

	a.step = 0
	a.sound(true)
	a.timer.WakeTime = now + core.TimerFromMS(AlertBurstMS)
	core.ScheduleTimer(&a.timer)
	return true
}

func (a *AlertController) sound(on bool) {
	a.gpio.SetPin(a.pins.AlertLED, on)
	duty := core.PWMValue(0)
	if on {
		duty = core.PWMValue(a.pwm.GetMaxValue() / 2)
	}
	a.pwm.SetDutyCycle(a.pins.Buzzer, duty)
}

func (a *AlertController) advance(t *core.Timer) uint8 {
	a.step++
	if a.step >= 2*AlertBursts-1 {
		a.sound(false)
		a.running.Store(false)
		return core.SF_DONE
	}

	if a.step%2 == 1 {
		a.sound(false)
		t.WakeTime += core.TimerFromMS(AlertGapMS)
	} else {
		a.sound(true)
		t.WakeTime += core.TimerFromMS(AlertBurstMS)
	}
	return core.SF_RESCHEDULE
}
