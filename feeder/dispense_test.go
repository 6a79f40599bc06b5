package feeder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"petfeeder/core"
)

func TestDispenseSecondRequestIsNoop(t *testing.T) {
	r := newRig(t)
	d := r.ctrl.Dispenser()

	require.True(t, d.Start(Water, RefillSeconds, 0))
	assert.True(t, r.gpio.out[testPins.Water])

	r.run(5000)
	assert.False(t, d.Start(Water, RefillSeconds, 0))
	assert.True(t, d.Active(Water))

	// Runs for the original 15s only
	r.run(9990)
	assert.True(t, d.Active(Water))
	r.run(10)
	assert.False(t, d.Active(Water))
	assert.False(t, r.gpio.out[testPins.Water])
	assert.Equal(t, 2, r.gpio.writes[testPins.Water])
}

func TestDispenseDuty(t *testing.T) {
	d := newRig(t).ctrl.Dispenser()

	assert.Equal(t, core.PWMValue(0), d.Duty(0))
	assert.Equal(t, core.PWMValue(338), d.Duty(33))
	assert.Equal(t, core.PWMValue(512), d.Duty(50))
	assert.Equal(t, core.PWMValue(fakePWMMax), d.Duty(100))
	assert.Equal(t, core.PWMValue(fakePWMMax), d.Duty(250))
}

func TestDispenseLongRunRearms(t *testing.T) {
	r := newRig(t)
	d := r.ctrl.Dispenser()

	require.True(t, d.Start(Food, 3600, 50))
	wake, ok := core.NextWakeTime()
	require.True(t, ok)
	assert.Equal(t, core.TimerFromSeconds(DispenseChunkSeconds), wake)

	r.run(1801 * 1000)
	assert.True(t, d.Active(Food))
	assert.Equal(t, core.PWMValue(512), r.pwm.duty[testPins.Food])

	r.run(1798 * 1000)
	assert.True(t, d.Active(Food))
	r.run(1000)
	assert.False(t, d.Active(Food))
	assert.Equal(t, core.PWMValue(0), r.pwm.duty[testPins.Food])
}

func TestRefillDecision(t *testing.T) {
	trusted := Reading{Ticks: 2500, Volume: 100, Trusted: true}

	tests := []struct {
		name      string
		mode      FillMode
		alert     bool
		reading   Reading
		busy      bool
		wantWater bool
		wantAlert bool
	}{
		{name: "below target", mode: FillAuto, reading: trusted, wantWater: true},
		{name: "below target with alert", mode: FillAuto, alert: true, reading: trusted, wantWater: true, wantAlert: true},
		{name: "at target", mode: FillAuto, alert: true, reading: Reading{Ticks: 9000, Volume: 300, Trusted: true}},
		{name: "motion mode", mode: FillMotion, alert: true, reading: trusted},
		{name: "untrusted", mode: FillAuto, alert: true, reading: Reading{Ticks: 50, Trusted: false}},
		{name: "valve busy still alerts", mode: FillAuto, alert: true, reading: trusted, busy: true, wantAlert: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRig(t)
			s := r.ctrl.Settings()
			require.NoError(t, s.SetTarget(300))
			require.NoError(t, s.SetMode(tt.mode))
			require.NoError(t, s.SetAlert(tt.alert))

			d := r.ctrl.Dispenser()
			if tt.busy {
				require.True(t, d.Start(Water, 1, 0))
			}
			starts := r.gpio.writes[testPins.Water]

			d.Refill(tt.reading)

			if tt.busy {
				assert.Equal(t, starts, r.gpio.writes[testPins.Water], "busy valve untouched")
			} else {
				assert.Equal(t, tt.wantWater, d.Active(Water))
			}
			assert.Equal(t, tt.wantAlert, r.ctrl.Alert().Running())
		})
	}
}

func TestRefillFromMeasurement(t *testing.T) {
	r := newRig(t).init()
	r.send("water 300")

	r.run(10)
	r.reading(LevelOffsetTicks + 2*LevelDivisorTicks)

	assert.Equal(t, uint32(100), r.ctrl.View().Level())
	assert.True(t, r.ctrl.Dispenser().Active(Water))
}

func TestMotionMonitor(t *testing.T) {
	tests := []struct {
		name      string
		mode      FillMode
		present   bool
		level     uint32 // capture ticks
		wantWater bool
	}{
		{name: "pet at low bowl", mode: FillMotion, present: true, level: 0, wantWater: true},
		{name: "no pet", mode: FillMotion, present: false, level: 0},
		{name: "bowl full enough", mode: FillMotion, present: true, level: LevelOffsetTicks + 8*LevelDivisorTicks},
		{name: "auto mode ignores motion", mode: FillAuto, present: true, level: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRig(t).init()
			require.NoError(t, r.ctrl.Settings().SetMode(tt.mode))
			r.run(10)
			r.reading(tt.level)

			r.gpio.inputs[testPins.Presence] = tt.present
			r.run(MotionCheckMS)

			assert.Equal(t, tt.present, r.gpio.out[testPins.Indicator])
			assert.Equal(t, tt.wantWater, r.ctrl.Dispenser().Active(Water))
		})
	}
}

func TestMotionRefillDuration(t *testing.T) {
	r := newRig(t).init()
	require.NoError(t, r.ctrl.Settings().SetMode(FillMotion))
	r.gpio.inputs[testPins.Presence] = true

	r.run(MotionCheckMS)
	require.True(t, r.ctrl.Dispenser().Active(Water))

	r.gpio.inputs[testPins.Presence] = false
	r.run(MotionRefillSeconds * 1000)
	assert.False(t, r.ctrl.Dispenser().Active(Water))
}
