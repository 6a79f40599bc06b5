package feeder

import (
	"sync/atomic"

	"petfeeder/core"
)

// Level calibration, in capture counter ticks (core.CaptureFreq). The
// counter runs from the excitation pulse until the comparator trips; the
// charge time grows with the water column.
const (
	LevelOffsetTicks  = 2370 // ticks at an empty bowl
	LevelDivisorTicks = 48   // ticks per volume step
	LevelStepML       = 50   // mL per volume step
	MinTrustedTicks   = 100  // shorter captures are noise

	MeasurePeriodMS = 10000
)

// VolumeFromTicks converts a capture count into mL, clamped at zero
func VolumeFromTicks(ticks uint32) uint32 {
	if ticks <= LevelOffsetTicks {
		return 0
	}
	return LevelStepML * ((ticks - LevelOffsetTicks) / LevelDivisorTicks)
}

// LevelSensor runs the periodic level measurement. The timer starts a
// capture, the comparator edge stops it, and the reading is published from
// task context.
type LevelSensor struct {
	capture core.CaptureDriver
	out     LevelWriter
	timer   core.Timer

	inFlight atomic.Bool
	ready    atomic.Bool
	ticks    atomic.Uint32
	timeouts atomic.Uint32

	// OnReading runs in task context after each published reading
	OnReading func(Reading)
}

// NewLevelSensor creates a sensor that publishes through out
func NewLevelSensor(capture core.CaptureDriver, out LevelWriter) *LevelSensor {
	l := &LevelSensor{capture: capture, out: out}
	l.timer.Handler = l.measure
	capture.SetEdgeHandler(l.edge)
	return l
}

// Start schedules the first measurement for now and every period after
func (l *LevelSensor) Start(now uint32) {
	l.timer.WakeTime = now
	core.ScheduleTimer(&l.timer)
}

// Timeouts returns how many captures were abandoned without an edge
func (l *LevelSensor) Timeouts() uint32 {
	return l.timeouts.Load()
}

func (l *LevelSensor) measure(t *core.Timer) uint8 {
	if l.inFlight.Load() {
		l.capture.Halt()
		l.timeouts.Add(1)
		core.RecordTiming(core.EvtCaptureTimeout, 0, core.GetTime(), 0, 0)
	}

	if err := l.capture.Begin(); err != nil {
		l.inFlight.Store(false)
	} else {
		l.inFlight.Store(true)
	}

	t.WakeTime += core.TimerFromMS(MeasurePeriodMS)
	return core.SF_RESCHEDULE
}

// edge runs from the comparator interrupt
func (l *LevelSensor) edge() {
	if !l.inFlight.Load() {
		return
	}
	ticks := l.capture.Elapsed()
	l.capture.Halt()
	l.inFlight.Store(false)

	l.ticks.Store(ticks)
	l.ready.Store(true)
}

// Task publishes a completed capture. Runs from the main loop.
func (l *LevelSensor) Task() {
	if !l.ready.Swap(false) {
		return
	}
	ticks := l.ticks.Load()
	r := Reading{
		Ticks:   ticks,
		Volume:  VolumeFromTicks(ticks),
		Trusted: ticks > MinTrustedTicks,
	}
	l.out.Publish(r)
	core.RecordTiming(core.EvtCapture, 0, core.GetTime(), r.Ticks, r.Volume)

	if l.OnReading != nil {
		l.OnReading(r)
	}
}
