package core

// CaptureFreq is the rate of the free-running capture counter. Level
// calibration constants are expressed in these ticks, so drivers running
// from a different clock scale their counts to it.
const CaptureFreq = 40000000

// CaptureDriver abstracts the timed analog measurement: an excitation pulse
// starts a free-running counter and an analog comparator edge marks the end.
type CaptureDriver interface {
	// Begin injects the excitation pulse, zeroes and starts the counter and
	// enables the comparator edge interrupt.
	Begin() error

	// Elapsed returns counter ticks since Begin, in CaptureFreq units
	Elapsed() uint32

	// Halt stops the counter and disables the edge interrupt
	Halt()

	// SetEdgeHandler registers the function called from the comparator interrupt
	SetEdgeHandler(h func())
}

var captureDriver CaptureDriver

// SetCaptureDriver is called by target-specific code to register its driver.
func SetCaptureDriver(d CaptureDriver) {
	captureDriver = d
}

// MustCapture returns the configured driver or panics if missing.
func MustCapture() CaptureDriver {
	if captureDriver == nil {
		panic("capture driver not configured")
	}
	return captureDriver
}
