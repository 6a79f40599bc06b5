//go:build rp2040

package main

import "petfeeder/core"

// rtcSubFreq is the sub-second resolution reported, matching a 32.768kHz
// crystal RTC
const rtcSubFreq = 32768

// RPRTCDriver keeps a seconds counter on top of the 64-bit microsecond
// timer. The timer never wraps in practice, so the counter is the loaded
// value plus whole seconds since the load. The match is polled from the
// main loop.
type RPRTCDriver struct {
	base    uint32 // seconds at epoch
	epoch   uint64 // uptime in us when base was loaded
	match   uint32
	fired   uint32 // last match value the alarm fired for
	handler func()
}

// NewRPRTCDriver creates an RTC counting from zero
func NewRPRTCDriver() *RPRTCDriver {
	return &RPRTCDriver{
		epoch: GetHardwareUptime(),
		match: core.RTCMatchNever,
		fired: core.RTCMatchNever,
	}
}

func (d *RPRTCDriver) elapsed() uint64 {
	return GetHardwareUptime() - d.epoch
}

func (d *RPRTCDriver) Counter() uint32 {
	return d.base + uint32(d.elapsed()/1000000)
}

func (d *RPRTCDriver) SubSeconds() uint32 {
	return uint32(d.elapsed()%1000000) * rtcSubFreq / 1000000
}

func (d *RPRTCDriver) LoadCounter(seconds uint32) error {
	state := core.DisableInterrupts()
	d.base = seconds
	d.epoch = GetHardwareUptime()
	d.fired = core.RTCMatchNever
	core.RestoreInterrupts(state)
	return nil
}

func (d *RPRTCDriver) SetMatch(seconds uint32) {
	state := core.DisableInterrupts()
	d.match = seconds
	d.fired = core.RTCMatchNever
	core.RestoreInterrupts(state)
}

func (d *RPRTCDriver) Match() uint32 { return d.match }

func (d *RPRTCDriver) SetAlarmHandler(h func()) { d.handler = h }

// Poll fires the alarm handler once when the counter reaches or has passed the match
func (d *RPRTCDriver) Poll() {
	if d.match == core.RTCMatchNever || d.handler == nil {
		return
	}
	now := d.Counter()
	if core.RTCAlarmDue(now, d.match, d.fired) {
		d.fired = d.match
		d.handler()
	}
}
