package core

// NVMErased is the value of a word that has never been written
const NVMErased = 0xFFFFFFFF

// NVMDriver is a flat, word-addressed non-volatile store. Each write is
// individually committed; there is no batching.
type NVMDriver interface {
	ReadWord(addr uint32) (uint32, error)
	WriteWord(addr uint32, value uint32) error
}

var nvmDriver NVMDriver

// SetNVMDriver is called by target-specific code to register its driver.
func SetNVMDriver(d NVMDriver) {
	nvmDriver = d
}

// MustNVM returns the configured driver or panics if missing.
func MustNVM() NVMDriver {
	if nvmDriver == nil {
		panic("NVM driver not configured")
	}
	return nvmDriver
}
