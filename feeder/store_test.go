package feeder

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"petfeeder/core"
)

func TestEventStoreRoundTrip(t *testing.T) {
	nvm := newFakeNVM()
	store := NewEventStore(nvm)

	ev := ScheduledEvent{Duration: 10, Intensity: 50, Hour: 7, Minute: 30}
	require.NoError(t, store.Write(3, ev))

	slot, err := store.Read(3)
	require.NoError(t, err)
	got, ok := slot.Event()
	require.True(t, ok)
	assert.Equal(t, ev, got)
	assert.NoError(t, store.Verify(3))

	// Marker holds the slot number, fields follow
	assert.Equal(t, uint32(3), nvm.words[3*RecordWords])
	assert.Equal(t, uint32(10), nvm.words[3*RecordWords+1])
	assert.Equal(t, uint32(30), nvm.words[3*RecordWords+4])

	require.NoError(t, store.Delete(3))
	slot, err = store.Read(3)
	require.NoError(t, err)
	assert.True(t, slot.IsEmpty())
}

func TestEventStoreDeleteErasesFields(t *testing.T) {
	nvm := newFakeNVM()
	store := NewEventStore(nvm)
	require.NoError(t, store.Write(2, ScheduledEvent{Duration: 10, Intensity: 50, Hour: 7, Minute: 30}))

	nvm.writes = nil
	require.NoError(t, store.Delete(2))

	base := uint32(2 * RecordWords)
	assert.Equal(t, base+slotMarker, nvm.writes[0], "marker erased first")
	for off := uint32(slotMarker); off <= slotChecksum; off++ {
		assert.Equal(t, uint32(core.NVMErased), nvm.words[base+off], "word %d", off)
	}
	assert.Len(t, nvm.writes, slotChecksum+1)
}

func TestEventStoreErasedIsEmpty(t *testing.T) {
	store := NewEventStore(newFakeNVM())

	slots, err := store.ReadAll()
	require.NoError(t, err)
	for i, s := range slots {
		assert.True(t, s.IsEmpty(), "slot %d", i)
	}
}

func TestEventStoreIndexRange(t *testing.T) {
	store := NewEventStore(newFakeNVM())

	_, err := store.Read(MaxEvents)
	assert.ErrorIs(t, err, ErrSlotIndex)
	_, err = store.Read(-1)
	assert.ErrorIs(t, err, ErrSlotIndex)
	assert.ErrorIs(t, store.Write(10, ScheduledEvent{}), ErrSlotIndex)
	assert.ErrorIs(t, store.Delete(42), ErrSlotIndex)
	assert.ErrorIs(t, store.Verify(10), ErrSlotIndex)
}

func TestEventStoreWriteOrder(t *testing.T) {
	nvm := newFakeNVM()
	store := NewEventStore(nvm)

	require.NoError(t, store.Write(1, ScheduledEvent{Duration: 5, Intensity: 80, Hour: 12, Minute: 0}))

	base := uint32(1 * RecordWords)
	require.NotEmpty(t, nvm.writes)
	assert.Equal(t, base, nvm.writes[0], "marker is invalidated first")
	assert.Equal(t, base, nvm.writes[len(nvm.writes)-1], "marker is written last")
	assert.Contains(t, nvm.writes, base+slotChecksum)
}

func TestEventStoreCorruptSlotReadsEmpty(t *testing.T) {
	nvm := newFakeNVM()
	store := NewEventStore(nvm)
	require.NoError(t, store.Write(2, ScheduledEvent{Duration: 10, Intensity: 50, Hour: 8, Minute: 0}))

	// Flip the hour as a torn write would
	nvm.words[2*RecordWords+slotHour] = 9

	slot, err := store.Read(2)
	require.NoError(t, err)
	assert.True(t, slot.IsEmpty())
	assert.ErrorIs(t, store.Verify(2), ErrSlotCorrupt)

	// A fresh write repairs it
	require.NoError(t, store.Write(2, ScheduledEvent{Duration: 1, Intensity: 1, Hour: 9, Minute: 0}))
	assert.NoError(t, store.Verify(2))
}

func TestEventStoreForeignMarker(t *testing.T) {
	nvm := newFakeNVM()
	store := NewEventStore(nvm)
	require.NoError(t, store.Write(4, ScheduledEvent{Duration: 10, Intensity: 50, Hour: 8, Minute: 0}))

	nvm.words[4*RecordWords] = 7

	slot, err := store.Read(4)
	require.NoError(t, err)
	assert.True(t, slot.IsEmpty())
	assert.ErrorIs(t, store.Verify(4), ErrSlotCorrupt)
}

func TestEventStoreReadError(t *testing.T) {
	nvm := newFakeNVM()
	store := NewEventStore(nvm)
	boom := errors.New("i2c nack")
	nvm.fail = boom

	_, err := store.Read(0)
	assert.ErrorIs(t, err, boom)
	_, err = store.ReadAll()
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, store.Write(0, ScheduledEvent{}), boom)
}

func TestSettingsErasedDefaults(t *testing.T) {
	s := NewSettings(newFakeNVM())

	cfg, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, Configuration{TargetLevel: 0, Mode: FillAuto, AlertEnabled: false}, cfg)
}

func TestSettingsPersist(t *testing.T) {
	nvm := newFakeNVM()
	s := NewSettings(nvm)

	require.NoError(t, s.SetTarget(300))
	require.NoError(t, s.SetMode(FillMotion))
	require.NoError(t, s.SetAlert(true))
	assert.ErrorIs(t, s.SetMode(FillMode(7)), ErrInvalidArgument)

	// Words 160, 176 and 192
	assert.Equal(t, uint32(300), nvm.words[160])
	assert.Equal(t, uint32(0), nvm.words[176])
	assert.Equal(t, uint32(1), nvm.words[192])

	reloaded, err := NewSettings(nvm).Load()
	require.NoError(t, err)
	assert.Equal(t, Configuration{TargetLevel: 300, Mode: FillMotion, AlertEnabled: true}, reloaded)
	assert.Equal(t, "motion", reloaded.Mode.String())
}

func TestSlotOption(t *testing.T) {
	var zero Slot
	assert.True(t, zero.IsEmpty())
	assert.True(t, EmptySlot().IsEmpty())

	s := OccupiedSlot(ScheduledEvent{Hour: 20})
	ev, ok := s.Event()
	assert.True(t, ok)
	assert.Equal(t, uint32(72000), ev.Offset())
}
