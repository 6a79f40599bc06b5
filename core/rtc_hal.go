package core

// RTCMatchNever is the match value the hardware treats as "never matches"
const RTCMatchNever = 0xFFFFFFFF

// RTCDriver abstracts a battery-backed seconds counter with one match
// (alarm) register, such as the TM4C hibernation RTC.
type RTCDriver interface {
	// Counter returns the seconds counter
	Counter() uint32

	// SubSeconds returns the sub-second counter. Reading it between two
	// Counter reads lets callers detect a seconds rollover mid-read.
	SubSeconds() uint32

	// LoadCounter sets the seconds counter, effective immediately
	LoadCounter(seconds uint32) error

	// SetMatch programs the match register. RTCMatchNever disarms it.
	SetMatch(seconds uint32)

	// Match returns the programmed match value
	Match() uint32

	// SetAlarmHandler registers the function called from the alarm interrupt
	SetAlarmHandler(h func())
}

// RTCAlarmDue reports whether a polled match should fire: the counter has
// reached or passed an armed match that has not fired yet. fired holds the
// last match value the alarm fired for.
func RTCAlarmDue(counter, match, fired uint32) bool {
	return match != RTCMatchNever && counter >= match && fired != match
}

var rtcDriver RTCDriver

// SetRTCDriver is called by target-specific code to register its driver.
func SetRTCDriver(d RTCDriver) {
	rtcDriver = d
}

// MustRTC returns the configured driver or panics if missing.
func MustRTC() RTCDriver {
	if rtcDriver == nil {
		panic("RTC driver not configured")
	}
	return rtcDriver
}
