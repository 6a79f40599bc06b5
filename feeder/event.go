package feeder

// MaxEvents is the number of user-addressable schedule slots
const MaxEvents = 10

// SecondsPerDay is the modulus used for time-of-day arithmetic
const SecondsPerDay = 86400

// ScheduledEvent is one daily food dispense
type ScheduledEvent struct {
	Duration  uint32 // seconds
	Intensity uint32 // auger PWM percent, 0..100
	Hour      uint32
	Minute    uint32
}

// Offset returns the event's seconds after midnight
func (e ScheduledEvent) Offset() uint32 {
	return e.Hour*3600 + e.Minute*60
}

// Slot is the content of one schedule slot: either empty or holding an
// event. The zero value is an empty slot.
type Slot struct {
	event    ScheduledEvent
	occupied bool
}

// EmptySlot returns a slot holding no event
func EmptySlot() Slot {
	return Slot{}
}

// OccupiedSlot returns a slot holding e
func OccupiedSlot(e ScheduledEvent) Slot {
	return Slot{event: e, occupied: true}
}

// Event returns the slot's event and whether the slot is occupied
func (s Slot) Event() (ScheduledEvent, bool) {
	return s.event, s.occupied
}

// IsEmpty reports whether the slot holds no event
func (s Slot) IsEmpty() bool {
	return !s.occupied
}
