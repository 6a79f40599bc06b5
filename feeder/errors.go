package feeder

// Error is a sentinel error of the control engine. Values compare with ==
// and errors.Is.
type Error string

func (e Error) Error() string { return string(e) }

const (
	// ErrSlotIndex is returned for an event slot outside 0..MaxEvents-1
	ErrSlotIndex = Error("event slot index out of range")
	// ErrSlotCorrupt marks a persisted slot whose checksum does not match
	ErrSlotCorrupt = Error("event slot checksum mismatch")
	// ErrClockRead means the seconds counter changed between two reads
	ErrClockRead = Error("inconsistent RTC read")
	// ErrInvalidArgument is returned by commands given a bad argument
	ErrInvalidArgument = Error("invalid argument")
	// ErrUnknownCommand is returned for lines that match no command
	ErrUnknownCommand = Error("invalid command")
)
