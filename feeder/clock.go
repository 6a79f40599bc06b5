package feeder

import "petfeeder/core"

// Clock wraps the battery-backed seconds counter and its alarm
type Clock struct {
	rtc core.RTCDriver
}

// NewClock creates a clock on rtc
func NewClock(rtc core.RTCDriver) *Clock {
	return &Clock{rtc: rtc}
}

// Now returns the absolute seconds counter. The counter is read on both
// sides of the sub-second register; if the two reads differ a second
// boundary was crossed and ErrClockRead is returned.
func (c *Clock) Now() (uint32, error) {
	first := c.rtc.Counter()
	_ = c.rtc.SubSeconds()
	second := c.rtc.Counter()
	if first != second {
		return 0, ErrClockRead
	}
	return first, nil
}

// TimeOfDay returns seconds since midnight
func TimeOfDay(t uint32) uint32 {
	return t % SecondsPerDay
}

// SetTime loads the seconds counter immediately
func (c *Clock) SetTime(seconds uint32) error {
	return c.rtc.LoadCounter(seconds)
}

// ArmAlarm programs the alarm for absolute second abs
func (c *Clock) ArmAlarm(abs uint32) {
	c.rtc.SetMatch(abs)
}

// Disarm clears the alarm
func (c *Clock) Disarm() {
	c.rtc.SetMatch(core.RTCMatchNever)
}

// Alarm returns the programmed match and whether it is armed
func (c *Clock) Alarm() (uint32, bool) {
	m := c.rtc.Match()
	return m, m != core.RTCMatchNever
}

// OnAlarm registers h to run from the alarm interrupt
func (c *Clock) OnAlarm(h func()) {
	c.rtc.SetAlarmHandler(h)
}
