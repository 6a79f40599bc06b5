package feeder

import (
	"sync/atomic"

	"github.com/chewxy/math32"

	"petfeeder/core"
)

// Actuator selects a dispensing output
type Actuator uint8

const (
	Water Actuator = iota
	Food
)

func (a Actuator) String() string {
	if a == Food {
		return "food"
	}
	return "water"
}

// Dispense timing
const (
	// DispenseChunkSeconds is the longest single arm of a dispense timer;
	// longer runs re-arm until done, staying inside the timer wrap window
	DispenseChunkSeconds = 1800

	RefillSeconds       = 15
	MotionRefillSeconds = 5
	MotionLevelML       = 400
	MotionCheckMS       = 2000

	FoodPWMCycleTicks = 50 // 20kHz at the 1MHz timer
)

type actuator struct {
	active    atomic.Bool
	timer     core.Timer
	remaining uint32 // seconds still to run after the armed chunk
}

// arm schedules the next chunk of the run from base
func (act *actuator) arm(base uint32) {
	chunk := act.remaining
	if chunk > DispenseChunkSeconds {
		chunk = DispenseChunkSeconds
	}
	act.remaining -= chunk
	act.timer.WakeTime = base + core.TimerFromSeconds(chunk)
}

// DispenseController drives the water valve and the food auger. Each run
// is a one-shot timer; a start request while the actuator runs is refused.
type DispenseController struct {
	gpio core.GPIODriver
	pwm  core.PWMDriver
	pins Pins

	settings *Settings
	alert    *AlertController

	water actuator
	food  actuator

	// OnFoodDone runs from the timer handler when a food dispense ends
	OnFoodDone func()
}

// NewDispenseController creates a controller. Pins must already be
// configured.
func NewDispenseController(gpio core.GPIODriver, pwm core.PWMDriver, pins Pins, settings *Settings, alert *AlertController) *DispenseController {
	d := &DispenseController{
		gpio:     gpio,
		pwm:      pwm,
		pins:     pins,
		settings: settings,
		alert:    alert,
	}
	d.water.timer.Handler = func(t *core.Timer) uint8 { return d.expire(Water) }
	d.food.timer.Handler = func(t *core.Timer) uint8 { return d.expire(Food) }
	return d
}

func (d *DispenseController) actuator(a Actuator) *actuator {
	if a == Food {
		return &d.food
	}
	return &d.water
}

// Active reports whether a is dispensing
func (d *DispenseController) Active(a Actuator) bool {
	return d.actuator(a).active.Load()
}

// Duty returns the auger duty for an intensity percentage
func (d *DispenseController) Duty(intensity uint32) core.PWMValue {
	if intensity > 100 {
		intensity = 100
	}
	full := float32(d.pwm.GetMaxValue())
	return core.PWMValue(math32.Round(float32(intensity) / 100 * full))
}

// Start runs a for seconds. intensity only applies to Food. It returns
// false, changing nothing, when a is already running.
func (d *DispenseController) Start(a Actuator, seconds, intensity uint32) bool {
	act := d.actuator(a)
	if !act.active.CompareAndSwap(false, true) {
		return false
	}
	var duty core.PWMValue
	if a == Food {
		duty = d.Duty(intensity)
		d.pwm.SetDutyCycle(d.pins.Food, duty)
	} else {
		d.gpio.SetPin(d.pins.Water, true)
	}

	now := core.GetTime()
	act.remaining = seconds
	act.arm(now)
	core.ScheduleTimer(&act.timer)
	core.RecordTiming(core.EvtDispenseStart, uint8(a), now, seconds, uint32(duty))
	return true
}

func (d *DispenseController) expire(a Actuator) uint8 {
	if act := d.actuator(a); act.remaining > 0 {
		act.arm(act.timer.WakeTime)
		return core.SF_RESCHEDULE
	}
	if a == Food {
		d.pwm.SetDutyCycle(d.pins.Food, 0)
	} else {
		d.gpio.SetPin(d.pins.Water, false)
	}
	d.actuator(a).active.Store(false)
	core.RecordTiming(core.EvtDispenseEnd, uint8(a), core.GetTime(), 0, 0)

	if a == Food && d.OnFoodDone != nil {
		d.OnFoodDone()
	}
	return core.SF_DONE
}

// Refill applies the automatic refill rule to a fresh reading: below
// target, in AUTO mode and trusted starts a refill if the valve is idle,
// and sounds the alert when enabled.
func (d *DispenseController) Refill(r Reading) {
	cfg := d.settings.Config()
	if r.Volume >= cfg.TargetLevel || cfg.Mode != FillAuto || !r.Trusted {
		return
	}
	if !d.Active(Water) {
		d.Start(Water, RefillSeconds, 0)
	}
	if cfg.AlertEnabled && d.alert != nil {
		d.alert.Trigger()
	}
}

// MotionMonitor polls the presence sensor. The indicator mirrors the
// sensor; in MOTION mode a present pet with a low bowl gets a short fill.
type MotionMonitor struct {
	gpio     core.GPIODriver
	pins     Pins
	settings *Settings
	state    StateView
	dispense *DispenseController
	timer    core.Timer
}

// NewMotionMonitor creates the monitor; call Start to begin polling
func NewMotionMonitor(gpio core.GPIODriver, pins Pins, settings *Settings, state StateView, dispense *DispenseController) *MotionMonitor {
	m := &MotionMonitor{
		gpio:     gpio,
		pins:     pins,
		settings: settings,
		state:    state,
		dispense: dispense,
	}
	m.timer.Handler = m.check
	return m
}

// Start schedules the first check one period after now
func (m *MotionMonitor) Start(now uint32) {
	m.timer.WakeTime = now + core.TimerFromMS(MotionCheckMS)
	core.ScheduleTimer(&m.timer)
}

func (m *MotionMonitor) check(t *core.Timer) uint8 {
	present := m.gpio.ReadPin(m.pins.Presence)
	m.gpio.SetPin(m.pins.Indicator, present)

	if present && m.settings.Config().Mode == FillMotion &&
		m.state.Level() < MotionLevelML && !m.dispense.Active(Water) {
		m.dispense.Start(Water, MotionRefillSeconds, 0)
	}

	t.WakeTime += core.TimerFromMS(MotionCheckMS)
	return core.SF_RESCHEDULE
}
