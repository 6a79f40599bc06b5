//go:build rp2040

package main

import (
	"runtime/volatile"
	"unsafe"

	"petfeeder/core"
)

// RP2040 Timer peripheral memory map
const (
	timerBase     = 0x40054000
	timerTIMERAWH = timerBase + 0x08 // Raw timer high word
	timerTIMERAWL = timerBase + 0x0C // Raw timer low word
)

var (
	timerRAWH = (*volatile.Register32)(unsafe.Pointer(uintptr(timerTIMERAWH)))
	timerRAWL = (*volatile.Register32)(unsafe.Pointer(uintptr(timerTIMERAWL)))
)

// GetHardwareTime returns the low 32 bits of the 1MHz microsecond counter
func GetHardwareTime() uint32 {
	return timerRAWL.Get()
}

// GetHardwareUptime reads the full 64-bit RP2040 hardware timer
func GetHardwareUptime() uint64 {
	// Must read high first, then low, then high again to detect rollover
	for {
		high1 := timerRAWH.Get()
		low := timerRAWL.Get()
		high2 := timerRAWH.Get()

		if high1 == high2 {
			return (uint64(high1) << 32) | uint64(low)
		}
	}
}

// UpdateSystemTime updates the core timer with hardware time
func UpdateSystemTime() {
	core.SetTime(GetHardwareTime())
}
