package core

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// TimingEvent captures a control-loop event for post-mortem analysis
type TimingEvent struct {
	EventType uint8  // Event type code
	ID        uint8  // Actuator or slot index
	Clock     uint32 // System clock at event
	Value1    uint32 // Context-dependent value
	Value2    uint32 // Context-dependent value
}

// Event type codes
const (
	EvtAlarmArmed     = 1 // alarm armed; Value1 = match seconds
	EvtAlarmFire      = 2 // alarm interrupt; ID = slot
	EvtDispenseStart  = 3 // ID = actuator, Value1 = seconds, Value2 = duty
	EvtDispenseEnd    = 4 // ID = actuator
	EvtCapture        = 5 // Value1 = ticks, Value2 = volume
	EvtCaptureTimeout = 6 // measurement abandoned without an edge
	EvtAlert          = 7 // alert sequence started
)

const (
	TimingRingSize = 32 // Keep last 32 events for post-mortem
)

var (
	// debugPrintln is the global debug print function (can be set by platform code)
	debugPrintln DebugWriter = func(s string) {}

	// debugEnabled controls whether debug output is active
	debugEnabled bool = false

	timingRing     [TimingRingSize]TimingEvent
	timingRingHead uint8
	timingEnabled  bool = true
)

// SetDebugWriter sets the platform-specific debug output function
func SetDebugWriter(writer DebugWriter) {
	debugPrintln = writer
}

// SetDebugEnabled enables or disables debug output
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// IsDebugEnabled returns whether debug output is enabled
func IsDebugEnabled() bool {
	return debugEnabled
}

// DebugPrintln writes a debug message using the platform-specific writer
func DebugPrintln(msg string) {
	if debugEnabled && debugPrintln != nil {
		debugPrintln(msg)
	}
}

// RecordTiming captures an event in the ring buffer. Safe to call from
// timer handlers; it never blocks.
func RecordTiming(eventType, id uint8, clock, value1, value2 uint32) {
	if !timingEnabled {
		return
	}
	state := DisableInterrupts()
	idx := timingRingHead
	timingRing[idx] = TimingEvent{
		EventType: eventType,
		ID:        id,
		Clock:     clock,
		Value1:    value1,
		Value2:    value2,
	}
	timingRingHead = (idx + 1) % TimingRingSize
	RestoreInterrupts(state)
}

// TimingEvents returns the recorded events, oldest first
func TimingEvents() []TimingEvent {
	state := DisableInterrupts()
	defer RestoreInterrupts(state)

	events := make([]TimingEvent, 0, TimingRingSize)
	start := timingRingHead
	for i := uint8(0); i < TimingRingSize; i++ {
		evt := timingRing[(start+i)%TimingRingSize]
		if evt.EventType == 0 {
			continue
		}
		events = append(events, evt)
	}
	return events
}

// DumpTimingRing writes the timing ring through the debug writer
func DumpTimingRing() {
	if debugPrintln == nil {
		return
	}

	debugPrintln("[TIMING] === Timing Ring Dump ===")
	for _, evt := range TimingEvents() {
		debugPrintln("[TIMING] " + FormatTimingEvent(evt))
	}
	debugPrintln("[TIMING] === End Dump ===")
}

// FormatTimingEvent renders one event on a single line
func FormatTimingEvent(evt TimingEvent) string {
	return timingEventName(evt.EventType) +
		" id=" + Itoa(int(evt.ID)) +
		" clock=" + Utoa(evt.Clock) +
		" v1=" + Utoa(evt.Value1) +
		" v2=" + Utoa(evt.Value2)
}

func timingEventName(t uint8) string {
	switch t {
	case EvtAlarmArmed:
		return "ALARM_ARMED"
	case EvtAlarmFire:
		return "ALARM_FIRE"
	case EvtDispenseStart:
		return "DISPENSE_START"
	case EvtDispenseEnd:
		return "DISPENSE_END"
	case EvtCapture:
		return "CAPTURE"
	case EvtCaptureTimeout:
		return "CAPTURE_TIMEOUT!"
	case EvtAlert:
		return "ALERT"
	default:
		return "UNKNOWN"
	}
}

// ClearTimingRing clears the timing buffer
func ClearTimingRing() {
	for i := range timingRing {
		timingRing[i] = TimingEvent{}
	}
	timingRingHead = 0
}
