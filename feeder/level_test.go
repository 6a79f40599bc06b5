package feeder

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVolumeFromTicks(t *testing.T) {
	tests := []struct {
		ticks uint32
		want  uint32
	}{
		{0, 0},
		{100, 0},
		{LevelOffsetTicks, 0},
		{LevelOffsetTicks + 1, 0},
		{LevelOffsetTicks + LevelDivisorTicks - 1, 0},
		{LevelOffsetTicks + LevelDivisorTicks, LevelStepML},
		{LevelOffsetTicks + 8*LevelDivisorTicks, 400},
		{LevelOffsetTicks + 8*LevelDivisorTicks + 47, 400},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, VolumeFromTicks(tt.ticks), "ticks=%d", tt.ticks)
	}
}

func TestVolumeFromTicksMonotone(t *testing.T) {
	prev := VolumeFromTicks(0)
	for ticks := uint32(1); ticks < 20000; ticks++ {
		v := VolumeFromTicks(ticks)
		if v < prev {
			t.Fatalf("volume dropped at %d ticks: %d < %d", ticks, v, prev)
		}
		prev = v
	}
}

func TestLevelSensorReading(t *testing.T) {
	r := newRig(t).init()

	// First measurement starts immediately
	r.run(10)
	assert.Equal(t, 1, r.capture.begins)

	r.reading(LevelOffsetTicks + 8*LevelDivisorTicks)
	got, seen := r.ctrl.View().Reading()
	assert.True(t, seen)
	assert.Equal(t, Reading{Ticks: 2754, Volume: 400, Trusted: true}, got)
	assert.Equal(t, 1, r.capture.halts)

	// A second edge without a capture in flight is ignored
	r.reading(9000)
	assert.Equal(t, uint32(400), r.ctrl.View().Level())

	// Next period starts the next capture
	r.run(MeasurePeriodMS)
	assert.Equal(t, 2, r.capture.begins)
	assert.Equal(t, uint32(0), r.ctrl.Level().Timeouts())
}

func TestLevelSensorTimeout(t *testing.T) {
	r := newRig(t).init()
	r.run(10)

	// No edge for a whole period: abandoned and restarted
	r.run(MeasurePeriodMS)
	assert.Equal(t, 2, r.capture.begins)
	assert.Equal(t, 1, r.capture.halts)
	assert.Equal(t, uint32(1), r.ctrl.Level().Timeouts())

	_, seen := r.ctrl.View().Reading()
	assert.False(t, seen)
}

func TestLevelSensorUntrusted(t *testing.T) {
	r := newRig(t).init()
	r.run(10)

	r.reading(MinTrustedTicks)
	got, _ := r.ctrl.View().Reading()
	assert.False(t, got.Trusted)
	assert.Equal(t, uint32(0), got.Volume)
}
