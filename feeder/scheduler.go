package feeder

import (
	"sync/atomic"

	"petfeeder/core"
)

// ClockRetryMS is how long the scheduler waits before retrying after an
// inconsistent clock read
const ClockRetryMS = 1000

// computeNext picks the slot whose next occurrence is soonest after the
// absolute time c. An event whose offset equals the current second of the
// day is treated as tomorrow's. Ties go to the lowest index.
func computeNext(slots [MaxEvents]Slot, c uint32) ScheduleState {
	ss := ScheduleState{NextIndex: NoEvent}
	t := TimeOfDay(c)

	var best uint32
	for i, slot := range slots {
		ev, ok := slot.Event()
		if !ok {
			continue
		}
		ss.EventCount++
		off := ev.Offset()
		if off > t && (ss.NextIndex == NoEvent || off < best) {
			ss.NextIndex = i
			best = off
		}
	}
	if ss.NextIndex != NoEvent {
		ss.HasEventToday = true
		ss.Armed = true
		ss.ArmAt = c - t + best
		return ss
	}
	if ss.EventCount == 0 {
		return ss
	}

	for i, slot := range slots {
		ev, ok := slot.Event()
		if !ok {
			continue
		}
		if ss.NextIndex == NoEvent || ev.Offset() < best {
			ss.NextIndex = i
			best = ev.Offset()
		}
	}
	ss.Armed = true
	ss.ArmAt = c - t + SecondsPerDay + best
	return ss
}

// AlarmScheduler keeps the RTC alarm armed for the next scheduled feeding
// and starts the feeding when the alarm fires.
//
// Phases: IDLE (nothing armed) -> SCHEDULED (alarm armed) -> FIRING (alarm
// fired, dispensing) -> back to SCHEDULED or IDLE once the dispense ends.
type AlarmScheduler struct {
	store    *EventStore
	clock    *Clock
	dispense *DispenseController
	out      ScheduleWriter
	view     StateView
	console  func(string)

	firing int
	retry  core.Timer

	alarmWake atomic.Bool
	doneWake  atomic.Bool
	retryWake atomic.Bool
}

// NewAlarmScheduler creates the scheduler and hooks it to the clock alarm
// and the end of food dispenses
func NewAlarmScheduler(store *EventStore, clock *Clock, dispense *DispenseController, out ScheduleWriter, view StateView, console func(string)) *AlarmScheduler {
	s := &AlarmScheduler{
		store:    store,
		clock:    clock,
		dispense: dispense,
		out:      out,
		view:     view,
		console:  console,
		firing:   NoEvent,
	}
	s.retry.Handler = func(t *core.Timer) uint8 {
		s.retryWake.Store(true)
		return core.SF_DONE
	}
	clock.OnAlarm(s.alarm)
	dispense.OnFoodDone = func() { s.doneWake.Store(true) }
	return s
}

// ComputeNextEvent rebuilds the schedule from the store and arms or
// disarms the alarm. On an inconsistent clock read the previous alarm is
// left as is, the error is reported and a retry is scheduled.
func (s *AlarmScheduler) ComputeNextEvent() error {
	slots, err := s.store.ReadAll()
	if err != nil {
		return err
	}

	now, err := s.clock.Now()
	if err != nil {
		s.console("ERROR: Invalid Read from RTC")
		s.retry.WakeTime = core.GetTime() + core.TimerFromMS(ClockRetryMS)
		core.ScheduleTimer(&s.retry)
		return err
	}

	ss := computeNext(slots, now)
	if ss.Armed {
		s.clock.ArmAlarm(ss.ArmAt)
		core.RecordTiming(core.EvtAlarmArmed, uint8(ss.NextIndex), core.GetTime(), ss.ArmAt, now)
		s.out.SetPhase(PhaseScheduled)
	} else {
		s.clock.Disarm()
		s.out.SetPhase(PhaseIdle)
	}
	s.out.Publish(ss)
	return nil
}

// alarm runs from the RTC interrupt
func (s *AlarmScheduler) alarm() {
	core.RecordTiming(core.EvtAlarmFire, uint8(s.view.Schedule().NextIndex), core.GetTime(), 0, 0)
	s.alarmWake.Store(true)
}

// OnAlarm handles a fired alarm: it starts the scheduled slot's dispense,
// or recomputes when there is nothing valid to run. A busy auger makes it
// a no-op; the running dispense re-arms when it ends.
func (s *AlarmScheduler) OnAlarm() {
	s.out.SetPhase(PhaseFiring)

	idx := s.view.Schedule().NextIndex
	if idx == NoEvent {
		s.ComputeNextEvent()
		return
	}
	slot, err := s.store.Read(idx)
	if err != nil {
		s.ComputeNextEvent()
		return
	}
	ev, ok := slot.Event()
	if !ok {
		s.ComputeNextEvent()
		return
	}

	if !s.dispense.Start(Food, ev.Duration, ev.Intensity) {
		return
	}
	s.firing = idx
	s.console("Event " + core.Itoa(idx) + " dispensing")
}

func (s *AlarmScheduler) completed() {
	idx := s.firing
	if idx == NoEvent {
		// the alarm fired while another dispense was running
		idx = s.view.Schedule().NextIndex
	}
	if idx != NoEvent {
		s.console("Event " + core.Itoa(idx) + " Completed. Reseeding...")
	}
	s.firing = NoEvent
	if err := s.ComputeNextEvent(); err != nil {
		return
	}
	ss := s.view.Schedule()
	if ss.Armed {
		s.console("Event " + core.Itoa(ss.NextIndex) + " Scheduled")
	} else {
		s.console("No events scheduled yet")
	}
}

// Task runs deferred alarm work from the main loop
func (s *AlarmScheduler) Task() {
	if s.alarmWake.Swap(false) {
		s.OnAlarm()
	}
	if s.doneWake.Swap(false) {
		s.completed()
	}
	if s.retryWake.Swap(false) {
		s.ComputeNextEvent()
	}
}
