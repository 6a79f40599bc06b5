//go:build !tinygo

package core

// IRQState is a placeholder for interrupt state on regular Go
type IRQState uintptr

// DisableInterrupts is a no-op on regular Go. The simulator drives every
// handler from a single goroutine, which gives the same exclusion.
func DisableInterrupts() IRQState {
	return 0
}

// RestoreInterrupts is a no-op on regular Go
func RestoreInterrupts(state IRQState) {}
