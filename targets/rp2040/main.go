//go:build rp2040

package main

import (
	"machine"
	"time"

	"petfeeder/core"
	"petfeeder/feeder"
	"petfeeder/protocol"
)

var (
	inputBuffer *protocol.FifoBuffer
	ctrl        *feeder.Controller
	rtc         *RPRTCDriver

	// Debug counters
	msgerrors     uint32
	writeFailures uint32
	reportedErrs  uint32
)

func main() {
	// Disable watchdog on boot to clear any previous state
	err := machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0})
	if err != nil {
		return
	}

	InitUSB()

	UpdateSystemTime()
	core.TimerInit()
	core.SetDebugWriter(func(s string) {
		usbConsole{}.Write([]byte("# " + s + "\r\n"))
	})

	core.SetGPIODriver(NewRPGPIODriver())
	core.SetPWMDriver(NewRP2040PWMDriver())
	rtc = NewRPRTCDriver()
	core.SetRTCDriver(rtc)
	core.SetCaptureDriver(NewRPCaptureDriver(levelExcitePin, levelSensePin))

	nvm, err := NewRPNVMDriver(machine.I2C0, eepromSDA, eepromSCL)
	if err != nil {
		fatal("EEPROM: " + err.Error())
	}
	core.SetNVMDriver(nvm)

	inputBuffer = protocol.NewFifoBuffer(256)

	console := usbConsole{}
	ctrl = feeder.New(feeder.DefaultHardware(), feeder.Config{Pins: boardPins, Echo: true}, console)
	if err := ctrl.Init(); err != nil {
		fatal("init: " + err.Error())
	}
	console.Write([]byte("petfeeder " + protocol.Version + " ready\r\n"))

	go usbReaderLoop()

	for {
		// Recover from panics in the main loop to prevent a firmware crash
		func() {
			defer func() {
				if r := recover(); r != nil {
					msgerrors++
					inputBuffer.Reset()
				}
			}()

			UpdateSystemTime()

			for {
				b, ok := inputBuffer.PopByte()
				if !ok {
					break
				}
				ctrl.ReceiveByte(b)
			}

			rtc.Poll()
			core.ProcessTimers()
			ctrl.RunTasks()
			reportErrors()
		}()

		// Yield to other goroutines
		time.Sleep(10 * time.Microsecond)
	}
}

// reportErrors prints the error counters through the debug writer when
// they change and debug output is on
func reportErrors() {
	total := msgerrors + writeFailures
	if total == reportedErrs || !core.IsDebugEnabled() {
		return
	}
	reportedErrs = total
	core.DebugPrintln("errors: msg=" + core.Utoa(msgerrors) + " usb_write=" + core.Utoa(writeFailures))
}

// usbReaderLoop runs in a goroutine to continuously read USB data
func usbReaderLoop() {
	// Recover from panics to prevent a firmware crash
	defer func() {
		if r := recover(); r != nil {
			msgerrors++
			time.Sleep(100 * time.Millisecond)
			go usbReaderLoop()
		}
	}()

	for {
		if USBAvailable() > 0 {
			data, err := USBRead()
			if err != nil {
				msgerrors++
				time.Sleep(1 * time.Millisecond)
				continue
			}
			if !inputBuffer.PushByte(data) {
				// Buffer full - error condition
				msgerrors++
				time.Sleep(10 * time.Millisecond)
			}
		}
		// Yield to avoid a busy loop
		time.Sleep(100 * time.Microsecond)
	}
}

// fatal reports an unrecoverable boot error forever
func fatal(msg string) {
	for {
		usbConsole{}.Write([]byte("FATAL: " + msg + "\r\n"))
		time.Sleep(2 * time.Second)
	}
}
