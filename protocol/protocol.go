// Package protocol implements the feeder's line-oriented text protocol:
// receive buffering, line editing, field tokenizing and record checksums.
package protocol

// Version represents the firmware version reported by help
const Version = "1.0.0"

// Protocol constants
const (
	MaxChars  = 80 // Longest accepted command line
	MaxFields = 8  // Most fields kept from one line

	// Line terminators and editing keys
	KeyBackspace = 8
	KeyDelete    = 127
	KeyLF        = '\n'
	KeyCR        = '\r'
)
