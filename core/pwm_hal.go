package core

// PWMPin identifies a hardware pin capable of PWM output
type PWMPin uint32

// PWMValue is the duty cycle value (0 to GetMaxValue)
type PWMValue uint32

// PWMDriver is the abstract PWM interface that core code uses.
type PWMDriver interface {
	// ConfigureHardwarePWM configures a pin for hardware PWM output.
	// cycleTicks is the PWM period in timer ticks; the returned value is the
	// period actually used by the hardware.
	ConfigureHardwarePWM(pin PWMPin, cycleTicks uint32) (uint32, error)

	// SetDutyCycle sets the duty cycle, 0 (off) to GetMaxValue (always on)
	SetDutyCycle(pin PWMPin, value PWMValue) error

	// GetMaxValue returns the full-scale duty value
	GetMaxValue() uint32

	// DisablePWM stops PWM output on a pin
	DisablePWM(pin PWMPin) error
}

var pwmDriver PWMDriver

// SetPWMDriver is called by target-specific code to register its driver.
func SetPWMDriver(d PWMDriver) {
	pwmDriver = d
}

// MustPWM returns the configured driver or panics if missing.
func MustPWM() PWMDriver {
	if pwmDriver == nil {
		panic("PWM driver not configured")
	}
	return pwmDriver
}
