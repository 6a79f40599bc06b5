package feeder

import (
	"petfeeder/core"
	"petfeeder/protocol"
)

// Persisted layout. Every record is 16 words; records 0..9 are event
// slots and records 10..12 hold the settings.
const (
	RecordWords = 16

	slotMarker    = 0
	slotDuration  = 1
	slotIntensity = 2
	slotHour      = 3
	slotMinute    = 4
	slotChecksum  = 5
)

func recordAddr(record int) uint32 {
	return uint32(record * RecordWords)
}

// EventStore persists the schedule slots in word-addressed NVM.
//
// A slot is occupied when its marker word holds the slot number. Writes
// invalidate the marker first and set it last, and a CRC16 over the marker
// and fields guards against a write torn by power loss. A slot whose
// checksum does not match reads as empty.
type EventStore struct {
	nvm      core.NVMDriver
	reported uint16 // corrupt slots already reported, one bit per slot
}

// NewEventStore creates a store on top of nvm
func NewEventStore(nvm core.NVMDriver) *EventStore {
	return &EventStore{nvm: nvm}
}

// Read returns slot i
func (s *EventStore) Read(i int) (Slot, error) {
	if i < 0 || i >= MaxEvents {
		return EmptySlot(), ErrSlotIndex
	}
	slot, err := s.load(i)
	if err == ErrSlotCorrupt {
		if s.reported&(1<<uint(i)) == 0 {
			s.reported |= 1 << uint(i)
			core.DebugPrintln("[STORE] slot " + core.Itoa(i) + " checksum mismatch, treated as empty")
		}
		return EmptySlot(), nil
	}
	return slot, err
}

// Verify checks slot i's integrity. It returns ErrSlotCorrupt for a slot
// that Read would silently treat as empty.
func (s *EventStore) Verify(i int) error {
	if i < 0 || i >= MaxEvents {
		return ErrSlotIndex
	}
	_, err := s.load(i)
	return err
}

// ReadAll returns every slot in index order
func (s *EventStore) ReadAll() ([MaxEvents]Slot, error) {
	var slots [MaxEvents]Slot
	for i := range slots {
		slot, err := s.Read(i)
		if err != nil {
			return slots, err
		}
		slots[i] = slot
	}
	return slots, nil
}

// Write stores e in slot i. Fields are not range checked here.
func (s *EventStore) Write(i int, e ScheduledEvent) error {
	if i < 0 || i >= MaxEvents {
		return ErrSlotIndex
	}
	base := recordAddr(i)
	marker := uint32(i)

	words := [...]struct {
		off uint32
		val uint32
	}{
		{slotMarker, core.NVMErased},
		{slotDuration, e.Duration},
		{slotIntensity, e.Intensity},
		{slotHour, e.Hour},
		{slotMinute, e.Minute},
		{slotChecksum, uint32(protocol.CRC16Words(marker, e.Duration, e.Intensity, e.Hour, e.Minute))},
		{slotMarker, marker},
	}
	for _, w := range words {
		if err := s.nvm.WriteWord(base+w.off, w.val); err != nil {
			return err
		}
	}
	s.reported &^= 1 << uint(i)
	return nil
}

// Delete empties slot i, erasing the marker first and then every field
func (s *EventStore) Delete(i int) error {
	if i < 0 || i >= MaxEvents {
		return ErrSlotIndex
	}
	base := recordAddr(i)
	for off := uint32(slotMarker); off <= slotChecksum; off++ {
		if err := s.nvm.WriteWord(base+off, core.NVMErased); err != nil {
			return err
		}
	}
	s.reported &^= 1 << uint(i)
	return nil
}

func (s *EventStore) load(i int) (Slot, error) {
	var w [slotChecksum + 1]uint32
	base := recordAddr(i)
	for off := range w {
		v, err := s.nvm.ReadWord(base + uint32(off))
		if err != nil {
			return EmptySlot(), err
		}
		w[off] = v
		if off == slotMarker && v == core.NVMErased {
			return EmptySlot(), nil
		}
	}

	if w[slotMarker] != uint32(i) {
		return EmptySlot(), ErrSlotCorrupt
	}
	sum := protocol.CRC16Words(w[slotMarker], w[slotDuration], w[slotIntensity], w[slotHour], w[slotMinute])
	if w[slotChecksum] != uint32(sum) {
		return EmptySlot(), ErrSlotCorrupt
	}

	return OccupiedSlot(ScheduledEvent{
		Duration:  w[slotDuration],
		Intensity: w[slotIntensity],
		Hour:      w[slotHour],
		Minute:    w[slotMinute],
	}), nil
}
