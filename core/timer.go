package core

import "sync/atomic"

// TimerFreq is the rate of the system tick counter. The RP2040 exposes a
// 1MHz microsecond timer, so one tick is one microsecond.
const TimerFreq = 1000000

var (
	systemTicks uint32
	bootTime    uint32
)

// GetTime returns the current system time in timer ticks
func GetTime() uint32 {
	return atomic.LoadUint32(&systemTicks)
}

// SetTime sets the current system time (called by the target or simulator
// after reading the hardware counter)
func SetTime(ticks uint32) {
	atomic.StoreUint32(&systemTicks, ticks)
}

// GetUptime returns ticks elapsed since TimerInit
func GetUptime() uint32 {
	return GetTime() - bootTime
}

// TimerFromUS converts microseconds to timer ticks
func TimerFromUS(us uint32) uint32 {
	return us * (TimerFreq / 1000000)
}

// TimerFromMS converts milliseconds to timer ticks
func TimerFromMS(ms uint32) uint32 {
	return ms * (TimerFreq / 1000)
}

// TimerFromSeconds converts seconds to timer ticks. Callers must keep the
// result inside MaxTimerSpan.
func TimerFromSeconds(s uint32) uint32 {
	return s * TimerFreq
}

// TimerToUS converts timer ticks to microseconds
func TimerToUS(ticks uint32) uint32 {
	return ticks / (TimerFreq / 1000000)
}

// MaxTimerSpan is the longest delay a timer can be scheduled ahead of the
// current time and still compare correctly across counter wrap.
const MaxTimerSpan = 1<<31 - 1

// TimerIsBefore reports whether tick a is before tick b, tolerating wrap of
// the 32-bit counter (same as Klipper's timer_is_before).
func TimerIsBefore(a, b uint32) bool {
	return int32(a-b) < 0
}

// TimerInit records boot time for uptime calculation
func TimerInit() {
	bootTime = GetTime()
}

// ProcessTimers runs every timer that is due at the current system time
func ProcessTimers() {
	currentTime = GetTime()
	TimerDispatch()
}
