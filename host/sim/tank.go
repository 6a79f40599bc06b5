package sim

import (
	"time"

	"petfeeder/feeder"
)

// Tank models the water bowl, the food hopper and the pet
type Tank struct {
	cfg TankConfig
	pet PetConfig

	volume  float64 // mL
	food    float64 // grams dispensed
	drunk   float64 // mL drunk
	flowed  float64 // mL delivered through the valve
	present bool

	forcePet *bool
}

// NewTank creates a tank holding cfg.InitialML
func NewTank(cfg TankConfig, pet PetConfig) *Tank {
	return &Tank{cfg: cfg, pet: pet, volume: cfg.InitialML}
}

// Step advances the model by dt at virtual time since boot
func (t *Tank) Step(since, dt time.Duration, valveOpen bool, augerDuty float64) {
	secs := dt.Seconds()

	if t.forcePet != nil {
		t.present = *t.forcePet
	} else if t.pet.VisitEvery > 0 {
		t.present = since%t.pet.VisitEvery < t.pet.VisitLength
	}

	if valveOpen && !t.cfg.ValveStuck {
		in := t.cfg.FillRateML * secs
		t.flowed += in
		t.volume += in
	}
	if t.present {
		drink := t.pet.DrinkRateML * secs
		if drink > t.volume {
			drink = t.volume
		}
		t.drunk += drink
		t.volume -= drink
	}
	t.volume -= t.cfg.EvaporateMLH * secs / 3600

	if t.volume < 0 {
		t.volume = 0
	}
	if t.volume > t.cfg.CapacityML {
		t.volume = t.cfg.CapacityML
	}

	t.food += t.cfg.FoodRateG * augerDuty * secs
}

// CaptureTicks returns the comparator charge time for the current volume.
// It sits mid-step so the estimate rounds to the true volume's step.
func (t *Tank) CaptureTicks() uint32 {
	// integrated flow drifts just under whole steps
	steps := uint32((t.volume + 1e-6) / feeder.LevelStepML)
	return feeder.LevelOffsetTicks + steps*feeder.LevelDivisorTicks + feeder.LevelDivisorTicks/2
}

// Volume returns the water in the bowl in mL
func (t *Tank) Volume() float64 { return t.volume }

// SetVolume sets the water in the bowl
func (t *Tank) SetVolume(ml float64) { t.volume = ml }

// Food returns grams dispensed so far
func (t *Tank) Food() float64 { return t.food }

// PetPresent reports whether the pet is at the bowl
func (t *Tank) PetPresent() bool { return t.present }

// ForcePet overrides the visit schedule; nil restores it
func (t *Tank) ForcePet(present *bool) { t.forcePet = present }
