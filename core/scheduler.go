package core

// Timer represents a scheduled event. Handlers run with interrupts disabled
// and must stay short; a handler that wants to run again updates WakeTime
// and returns SF_RESCHEDULE.
type Timer struct {
	WakeTime uint32
	Handler  func(*Timer) uint8
	Next     *Timer

	queued bool
}

const (
	SF_DONE       = 0
	SF_RESCHEDULE = 1
)

var (
	timerList   *Timer
	currentTime uint32
)

// ScheduleTimer adds a timer to the schedule. Scheduling a timer that is
// already queued moves it to its new WakeTime.
func ScheduleTimer(t *Timer) {
	state := DisableInterrupts()
	defer RestoreInterrupts(state)

	if t.queued {
		removeTimer(t)
	}
	insertTimer(t)
}

// TimerPending reports whether t is waiting in the schedule
func TimerPending(t *Timer) bool {
	state := DisableInterrupts()
	defer RestoreInterrupts(state)
	return t.queued
}

// NextWakeTime returns the wake time of the earliest queued timer
func NextWakeTime() (uint32, bool) {
	state := DisableInterrupts()
	defer RestoreInterrupts(state)
	if timerList == nil {
		return 0, false
	}
	return timerList.WakeTime, true
}

// ResetTimers drops every queued timer. Used on firmware reset and by tests.
func ResetTimers() {
	state := DisableInterrupts()
	defer RestoreInterrupts(state)
	for timerList != nil {
		t := timerList
		timerList = t.Next
		t.Next = nil
		t.queued = false
	}
}

// insertTimer inserts a timer in sorted order by WakeTime
func insertTimer(t *Timer) {
	t.queued = true
	if timerList == nil || TimerIsBefore(t.WakeTime, timerList.WakeTime) {
		t.Next = timerList
		timerList = t
		return
	}

	current := timerList
	for current.Next != nil && !TimerIsBefore(t.WakeTime, current.Next.WakeTime) {
		current = current.Next
	}

	t.Next = current.Next
	current.Next = t
}

func removeTimer(t *Timer) {
	if timerList == t {
		timerList = t.Next
	} else {
		for cur := timerList; cur != nil; cur = cur.Next {
			if cur.Next == t {
				cur.Next = t.Next
				break
			}
		}
	}
	t.Next = nil
	t.queued = false
}

// TimerDispatch processes due timers
func TimerDispatch() {
	state := DisableInterrupts()
	defer RestoreInterrupts(state)

	for timerList != nil && !TimerIsBefore(currentTime, timerList.WakeTime) {
		timer := timerList
		timerList = timer.Next
		timer.Next = nil
		timer.queued = false

		if timer.Handler(timer) == SF_RESCHEDULE {
			insertTimer(timer)
		}
	}
}
