// Package feeder is the pet feeder's control engine: the persistent feeding
// schedule and its RTC alarm, the water level measurement, and the food,
// water and alert actuators.
//
// Hardware is reached only through the core HAL drivers. Interrupt and
// timer handlers do bounded work and wake tasks; RunTasks does the rest
// from the main loop.
package feeder

import (
	"errors"
	"io"

	"petfeeder/core"
	"petfeeder/protocol"
)

// Pins assigns the feeder's signals to hardware
type Pins struct {
	Water     core.GPIOPin // valve, active high
	Food      core.PWMPin  // auger motor
	Buzzer    core.PWMPin
	AlertLED  core.GPIOPin
	Presence  core.GPIOPin // motion sensor input
	Indicator core.GPIOPin // mirrors Presence
}

// Hardware bundles the drivers the controller needs
type Hardware struct {
	GPIO    core.GPIODriver
	PWM     core.PWMDriver
	RTC     core.RTCDriver
	Capture core.CaptureDriver
	NVM     core.NVMDriver
}

// DefaultHardware returns the drivers registered with core
func DefaultHardware() Hardware {
	return Hardware{
		GPIO:    core.MustGPIO(),
		PWM:     core.MustPWM(),
		RTC:     core.MustRTC(),
		Capture: core.MustCapture(),
		NVM:     core.MustNVM(),
	}
}

// Config holds controller options
type Config struct {
	Pins Pins
	Echo bool // echo received characters back to the console
}

// Controller wires the components together and owns the command console
type Controller struct {
	hw      Hardware
	cfg     Config
	console io.Writer

	state *State
	view  StateView

	store    *EventStore
	settings *Settings
	clock    *Clock
	level    *LevelSensor
	alert    *AlertController
	dispense *DispenseController
	motion   *MotionMonitor
	sched    *AlarmScheduler

	commands *core.CommandRegistry
	editor   *protocol.LineEditor
}

// New creates a controller. Replies and notices are written to console.
func New(hw Hardware, cfg Config, console io.Writer) *Controller {
	c := &Controller{
		hw:       hw,
		cfg:      cfg,
		console:  console,
		commands: core.NewCommandRegistry(),
	}

	state, levelW, schedW := NewState()
	c.state = state
	c.view = state.View()

	c.store = NewEventStore(hw.NVM)
	c.settings = NewSettings(hw.NVM)
	c.clock = NewClock(hw.RTC)
	c.level = NewLevelSensor(hw.Capture, levelW)
	c.alert = NewAlertController(hw.GPIO, hw.PWM, cfg.Pins)
	c.dispense = NewDispenseController(hw.GPIO, hw.PWM, cfg.Pins, c.settings, c.alert)
	c.motion = NewMotionMonitor(hw.GPIO, cfg.Pins, c.settings, c.view, c.dispense)
	c.sched = NewAlarmScheduler(c.store, c.clock, c.dispense, schedW, c.view, c.println)

	c.level.OnReading = c.dispense.Refill

	var echo func(byte)
	if cfg.Echo {
		echo = func(b byte) {
			if b == protocol.KeyBackspace || b == protocol.KeyDelete {
				io.WriteString(c.console, "\b \b")
				return
			}
			c.console.Write([]byte{b})
		}
	}
	c.editor = protocol.NewLineEditor(echo)

	c.registerCommands()
	return c
}

// Init configures the outputs, loads the settings, starts the periodic
// timers and arms the first alarm
func (c *Controller) Init() error {
	p := c.cfg.Pins
	for _, pin := range []core.GPIOPin{p.Water, p.AlertLED, p.Indicator} {
		if err := c.hw.GPIO.ConfigureOutput(pin); err != nil {
			return err
		}
	}
	if err := c.hw.GPIO.ConfigureInputPullDown(p.Presence); err != nil {
		return err
	}
	if _, err := c.hw.PWM.ConfigureHardwarePWM(p.Food, FoodPWMCycleTicks); err != nil {
		return err
	}
	if _, err := c.hw.PWM.ConfigureHardwarePWM(p.Buzzer, BuzzerCycleTicks); err != nil {
		return err
	}
	c.hw.PWM.SetDutyCycle(p.Food, 0)
	c.hw.PWM.SetDutyCycle(p.Buzzer, 0)

	if _, err := c.settings.Load(); err != nil {
		return err
	}

	now := core.GetTime()
	c.level.Start(now)
	c.motion.Start(now)

	if err := c.sched.ComputeNextEvent(); err != nil && !errors.Is(err, ErrClockRead) {
		return err
	}
	return nil
}

// RunTasks runs work deferred by interrupt and timer handlers. Call it
// from the main loop after core.ProcessTimers.
func (c *Controller) RunTasks() {
	c.level.Task()
	c.sched.Task()
}

// ReceiveByte feeds one console byte and runs the line when it completes
func (c *Controller) ReceiveByte(b byte) {
	line, ok := c.editor.Push(b)
	if !ok {
		return
	}
	if c.cfg.Echo {
		io.WriteString(c.console, "\r\n")
	}
	c.HandleLine(line)
}

// HandleLine parses and runs one command line
func (c *Controller) HandleLine(line string) {
	f, err := protocol.ParseFields(line)
	if err != nil {
		c.println("Invalid command")
		return
	}
	err = c.commands.Dispatch(f)
	switch {
	case err == nil:
	case errors.Is(err, core.ErrUnknownCommand), errors.Is(err, ErrUnknownCommand), errors.Is(err, ErrInvalidArgument):
		c.println("Invalid command")
	default:
		c.println("ERROR: " + err.Error())
	}
}

func (c *Controller) println(s string) {
	io.WriteString(c.console, s+"\n")
}

// Status is a snapshot for monitoring
type Status struct {
	Now         uint32
	ClockValid  bool
	Reading     Reading
	HaveReading bool
	Schedule    ScheduleState
	Phase       Phase
	Config      Configuration
	Watering    bool
	Feeding     bool
	Alerting    bool
	Alerts      uint32
	Timeouts    uint32
	Recomputes  uint32
}

// Status returns a snapshot of the controller
func (c *Controller) Status() Status {
	now, err := c.clock.Now()
	r, seen := c.view.Reading()
	return Status{
		Now:         now,
		ClockValid:  err == nil,
		Reading:     r,
		HaveReading: seen,
		Schedule:    c.view.Schedule(),
		Phase:       c.view.Phase(),
		Config:      c.settings.Config(),
		Watering:    c.dispense.Active(Water),
		Feeding:     c.dispense.Active(Food),
		Alerting:    c.alert.Running(),
		Alerts:      c.alert.Sequences(),
		Timeouts:    c.level.Timeouts(),
		Recomputes:  c.view.Recomputations(),
	}
}

// Store returns the event store
func (c *Controller) Store() *EventStore { return c.store }

// Settings returns the persisted settings
func (c *Controller) Settings() *Settings { return c.settings }

// View returns a read-only view of the shared state
func (c *Controller) View() StateView { return c.view }

// Dispenser returns the dispense controller
func (c *Controller) Dispenser() *DispenseController { return c.dispense }

// Alert returns the alert controller
func (c *Controller) Alert() *AlertController { return c.alert }

// Scheduler returns the alarm scheduler
func (c *Controller) Scheduler() *AlarmScheduler { return c.sched }

// Level returns the level sensor
func (c *Controller) Level() *LevelSensor { return c.level }
