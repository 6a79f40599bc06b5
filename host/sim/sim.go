// Package sim runs the feeder firmware against simulated hardware. The
// control engine is the same code the board runs; only the drivers and the
// world they observe are modeled here.
//
// The core timer list and time base are process globals, so only one
// Simulator may exist per process.
package sim

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"petfeeder/core"
	"petfeeder/feeder"
)

// DefaultPins matches the RP2040 board wiring
var DefaultPins = feeder.Pins{
	Water:     2,
	Food:      3,
	Buzzer:    4,
	AlertLED:  5,
	Presence:  6,
	Indicator: 25,
}

// Simulator owns a controller and the simulated world around it
type Simulator struct {
	mu sync.Mutex

	cfg  *Config
	pins feeder.Pins

	gpio    *GPIO
	pwm     *PWM
	rtc     *RTC
	capture *Capture
	nvm     *NVM
	tank    *Tank

	ctrl    *feeder.Controller
	console bytes.Buffer
	notices []string

	elapsed time.Duration
}

// Snapshot is the externally visible state of the simulation
type Snapshot struct {
	Feeder     feeder.Status `json:"feeder"`
	TimeOfDay  string        `json:"time_of_day"`
	VolumeML   float64       `json:"volume_ml"`
	FoodG      float64       `json:"food_g"`
	PetPresent bool          `json:"pet_present"`
	ValveOpen  bool          `json:"valve_open"`
	AugerDuty  float64       `json:"auger_duty"`
	BuzzerDuty float64       `json:"buzzer_duty"`
	Elapsed    time.Duration `json:"elapsed"`
}

// New builds and boots a simulator
func New(cfg *Config) (*Simulator, error) {
	start, err := cfg.StartSeconds()
	if err != nil {
		return nil, err
	}

	core.ResetTimers()
	core.SetTime(0)
	core.TimerInit()
	core.ClearTimingRing()
	core.SetDebugEnabled(cfg.Sim.Debug)
	core.SetDebugWriter(func(s string) { log.Printf("[fw] %s", s) })

	nvm, err := newNVM(cfg.Sim.NVMFile)
	if err != nil {
		return nil, err
	}

	s := &Simulator{
		cfg:  cfg,
		pins: DefaultPins,
		gpio: newGPIO(),
		pwm:  newPWM(),
		rtc:  newRTC(start),
		nvm:  nvm,
		tank: NewTank(cfg.Tank, cfg.Pet),
	}
	s.capture = newCapture(s.tank.CaptureTicks)

	hw := feeder.Hardware{GPIO: s.gpio, PWM: s.pwm, RTC: s.rtc, Capture: s.capture, NVM: s.nvm}
	s.ctrl = feeder.New(hw, feeder.Config{Pins: s.pins}, &s.console)
	if err := s.ctrl.Init(); err != nil {
		return nil, fmt.Errorf("controller init: %w", err)
	}
	s.flushConsole()

	for _, line := range cfg.Setup.Commands {
		for _, reply := range s.Command(line) {
			log.Printf("[setup] %s", reply)
		}
	}
	return s, nil
}

// Controller returns the simulated controller
func (s *Simulator) Controller() *feeder.Controller { return s.ctrl }

// Advance runs the simulation forward by d of virtual time
func (s *Simulator) Advance(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	step := s.cfg.Sim.Step
	for d > 0 {
		if d < step {
			step = d
		}
		s.step(step)
		d -= step
	}
	s.flushConsole()
}

func (s *Simulator) step(dt time.Duration) {
	us := uint32(dt / time.Microsecond)
	now := core.GetTime() + core.TimerFromUS(us)
	core.SetTime(now)
	s.elapsed += dt

	s.tank.Step(s.elapsed, dt, s.gpio.ReadPin(s.pins.Water), s.pwm.Fraction(s.pins.Food))
	s.gpio.SetInput(s.pins.Presence, s.tank.PetPresent())

	s.rtc.advance(uint32(dt / time.Millisecond))
	s.capture.poll(now)

	core.ProcessTimers()
	s.ctrl.RunTasks()
}

// flushConsole logs output the firmware produced on its own
func (s *Simulator) flushConsole() {
	for _, line := range splitLines(s.console.String()) {
		log.Printf("[console] %s", line)
		s.notices = append(s.notices, line)
	}
	s.console.Reset()
}

// Command runs one console line and returns its reply lines
func (s *Simulator) Command(line string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.flushConsole()
	s.ctrl.HandleLine(line)
	out := splitLines(s.console.String())
	s.console.Reset()
	return out
}

// Notices returns and clears the unsolicited console lines
func (s *Simulator) Notices() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.notices
	s.notices = nil
	return n
}

// SetPet forces the pet present or away; nil restores the visit schedule
func (s *Simulator) SetPet(present *bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tank.ForcePet(present)
}

// SetVolume sets the water in the bowl
func (s *Simulator) SetVolume(ml float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tank.SetVolume(ml)
}

// SetClockTear makes the next RTC read straddle a second boundary
func (s *Simulator) SetClockTear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rtc.Tear = true
}

// SetComparatorDead stops level measurements from completing
func (s *Simulator) SetComparatorDead(dead bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.capture.Dead = dead
}

// Status returns a snapshot of the simulation
func (s *Simulator) Status() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.ctrl.Status()
	tod := feeder.TimeOfDay(st.Now)
	return Snapshot{
		Feeder:     st,
		TimeOfDay:  fmt.Sprintf("%02d:%02d:%02d", tod/3600, tod/60%60, tod%60),
		VolumeML:   s.tank.Volume(),
		FoodG:      s.tank.Food(),
		PetPresent: s.tank.PetPresent(),
		ValveOpen:  s.gpio.ReadPin(s.pins.Water),
		AugerDuty:  s.pwm.Fraction(s.pins.Food),
		BuzzerDuty: s.pwm.Fraction(s.pins.Buzzer),
		Elapsed:    s.elapsed,
	}
}

// realTick is how often Run advances the simulation
const realTick = 10 * time.Millisecond

// Run advances virtual time at the configured speed until ctx is done
func (s *Simulator) Run(ctx context.Context) error {
	ticker := time.NewTicker(realTick)
	defer ticker.Stop()

	virtual := time.Duration(float64(realTick) * s.cfg.Sim.Speed)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Advance(virtual)
		}
	}
}

// Close persists the NVM
func (s *Simulator) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nvm.Save()
}

func splitLines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
