package feeder

import (
	"sync/atomic"

	"petfeeder/core"
)

// FillMode selects what triggers a water refill
type FillMode uint32

const (
	// FillMotion refills a little whenever the presence sensor fires
	FillMotion FillMode = 0
	// FillAuto refills whenever the measured level drops below target
	FillAuto FillMode = 1
)

func (m FillMode) String() string {
	if m == FillMotion {
		return "motion"
	}
	return "auto"
}

// Settings records, following the ten event slots
const (
	recordTarget = MaxEvents
	recordMode   = MaxEvents + 1
	recordAlert  = MaxEvents + 2
)

// Configuration is the persisted user configuration
type Configuration struct {
	TargetLevel  uint32 // mL
	Mode         FillMode
	AlertEnabled bool
}

// Settings persists the Configuration and keeps a copy that timer and
// interrupt handlers can read without touching NVM. Only the command layer
// writes it.
type Settings struct {
	nvm core.NVMDriver

	target atomic.Uint32
	mode   atomic.Uint32
	alert  atomic.Bool
}

// NewSettings creates settings backed by nvm. Call Load before use.
func NewSettings(nvm core.NVMDriver) *Settings {
	s := &Settings{nvm: nvm}
	s.mode.Store(uint32(FillAuto))
	return s
}

// Load reads the configuration from NVM. Erased words decode to a zero
// target, AUTO mode and alerts off.
func (s *Settings) Load() (Configuration, error) {
	target, err := s.nvm.ReadWord(recordAddr(recordTarget))
	if err != nil {
		return s.Config(), err
	}
	if target == core.NVMErased {
		target = 0
	}

	mode, err := s.nvm.ReadWord(recordAddr(recordMode))
	if err != nil {
		return s.Config(), err
	}
	fill := FillAuto
	if mode == uint32(FillMotion) {
		fill = FillMotion
	}

	alert, err := s.nvm.ReadWord(recordAddr(recordAlert))
	if err != nil {
		return s.Config(), err
	}

	s.target.Store(target)
	s.mode.Store(uint32(fill))
	s.alert.Store(alert == 1)
	return s.Config(), nil
}

// Config returns the current configuration
func (s *Settings) Config() Configuration {
	return Configuration{
		TargetLevel:  s.target.Load(),
		Mode:         FillMode(s.mode.Load()),
		AlertEnabled: s.alert.Load(),
	}
}

// SetTarget persists the target water level
func (s *Settings) SetTarget(ml uint32) error {
	if err := s.nvm.WriteWord(recordAddr(recordTarget), ml); err != nil {
		return err
	}
	s.target.Store(ml)
	return nil
}

// SetMode persists the fill mode
func (s *Settings) SetMode(m FillMode) error {
	if m != FillAuto && m != FillMotion {
		return ErrInvalidArgument
	}
	if err := s.nvm.WriteWord(recordAddr(recordMode), uint32(m)); err != nil {
		return err
	}
	s.mode.Store(uint32(m))
	return nil
}

// SetAlert persists whether a failed refill sounds the alert
func (s *Settings) SetAlert(on bool) error {
	v := uint32(0)
	if on {
		v = 1
	}
	if err := s.nvm.WriteWord(recordAddr(recordAlert), v); err != nil {
		return err
	}
	s.alert.Store(on)
	return nil
}
