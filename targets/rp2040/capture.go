//go:build rp2040

package main

import (
	"machine"

	"petfeeder/core"
)

// captureScale converts the microsecond timer to core.CaptureFreq ticks
const captureScale = core.CaptureFreq / core.TimerFreq

// RPCaptureDriver times the level probe with the microsecond timer. The
// excitation pin charges the probe and an external comparator on the
// sense pin raises an edge when the threshold is crossed. Resolution is
// one microsecond, i.e. captureScale counter ticks.
type RPCaptureDriver struct {
	excite  machine.Pin
	sense   machine.Pin
	start   uint32
	stop    uint32
	running bool
	handler func()
}

// NewRPCaptureDriver configures the excitation and sense pins
func NewRPCaptureDriver(excite, sense machine.Pin) *RPCaptureDriver {
	excite.Configure(machine.PinConfig{Mode: machine.PinOutput})
	excite.Low()
	sense.Configure(machine.PinConfig{Mode: machine.PinInputPulldown})
	return &RPCaptureDriver{excite: excite, sense: sense}
}

func (d *RPCaptureDriver) Begin() error {
	// discharge, then start timing on the rising excitation edge
	d.excite.Low()
	d.start = GetHardwareTime()
	d.stop = d.start
	d.running = true
	if err := d.sense.SetInterrupt(machine.PinRising, d.edge); err != nil {
		d.running = false
		return err
	}
	d.excite.High()
	return nil
}

func (d *RPCaptureDriver) edge(machine.Pin) {
	if !d.running {
		return
	}
	d.stop = GetHardwareTime()
	if d.handler != nil {
		d.handler()
	}
}

func (d *RPCaptureDriver) Elapsed() uint32 {
	return (d.stop - d.start) * captureScale
}

func (d *RPCaptureDriver) Halt() {
	d.running = false
	d.sense.SetInterrupt(0, nil)
	d.excite.Low()
}

func (d *RPCaptureDriver) SetEdgeHandler(h func()) { d.handler = h }
