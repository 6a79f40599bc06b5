package feeder

import (
	"strings"

	"petfeeder/core"
	"petfeeder/protocol"
)

func (c *Controller) registerCommands() {
	c.commands.Register("time", "[HH MM]", c.cmdTime)
	c.commands.Register("feed", "N DUR PWM HH MM | N delete", c.cmdFeed)
	c.commands.Register("water", "VOLUME", c.cmdWater)
	c.commands.Register("fill", "auto|motion", c.cmdFill)
	c.commands.Register("alert", "ON|OFF", c.cmdAlert)
	c.commands.Register("debug", "on|off|dump", c.cmdDebug)
	c.commands.Register("help", "", c.cmdHelp)
}

func clockString(secs uint32) string {
	return core.Pad2((secs/3600)%24) + ":" + core.Pad2((secs%3600)/60)
}

func eventLine(i int, slot Slot) string {
	prefix := "Event[" + core.Itoa(i) + "] --> "
	ev, ok := slot.Event()
	if !ok {
		return prefix + "empty"
	}
	return prefix + "Dur:" + core.Utoa(ev.Duration) +
		"   PWM:" + core.Utoa(ev.Intensity) +
		"   Hr:" + core.Utoa(ev.Hour) +
		"   Min:" + core.Utoa(ev.Minute)
}

// integers returns fields first..last as integers
func integers(f *protocol.Fields, first, last int) ([]uint32, bool) {
	vals := make([]uint32, 0, last-first+1)
	for i := first; i <= last; i++ {
		v, ok := f.Integer(i)
		if !ok {
			return nil, false
		}
		vals = append(vals, v)
	}
	return vals, true
}

func (c *Controller) cmdTime(f *protocol.Fields) error {
	switch f.Args() {
	case 2:
		v, ok := integers(f, 1, 2)
		if !ok || v[0] > 23 || v[1] > 59 {
			return ErrInvalidArgument
		}
		secs := v[0]*3600 + v[1]*60
		if err := c.clock.SetTime(secs); err != nil {
			return err
		}
		c.println("TIME SET -> " + clockString(secs))
		c.sched.ComputeNextEvent()
		return nil
	case 0:
		return c.showTime()
	}
	return ErrUnknownCommand
}

func (c *Controller) showTime() error {
	now, err := c.clock.Now()
	if err != nil {
		c.println("ERROR: Invalid Read from RTC")
		return nil
	}
	c.println("TIME IS -> " + clockString(TimeOfDay(now)))

	slots, err := c.store.ReadAll()
	if err != nil {
		return err
	}
	for i, slot := range slots {
		c.println(eventLine(i, slot))
	}

	ss := c.view.Schedule()
	switch {
	case ss.EventCount == 0:
		c.println("No events scheduled yet")
	case !ss.HasEventToday:
		c.println("No events today")
	default:
		c.println("Event " + core.Itoa(ss.NextIndex) + " scheduled later today")
	}
	c.println("Current Water level ~ " + core.Utoa(c.view.Level()) + " mL")
	return nil
}

func (c *Controller) cmdFeed(f *protocol.Fields) error {
	switch {
	case f.Args() == 5:
		v, ok := integers(f, 1, 5)
		if !ok {
			return ErrInvalidArgument
		}
		if v[0] >= MaxEvents {
			c.println("Error: Up to 10 events can be stored. [0-9]")
			return nil
		}
		ev := ScheduledEvent{Duration: v[1], Intensity: v[2], Hour: v[3], Minute: v[4]}
		if ev.Intensity > 100 || ev.Hour > 23 || ev.Minute > 59 {
			return ErrInvalidArgument
		}
		if err := c.store.Write(int(v[0]), ev); err != nil {
			return err
		}
		c.println(eventLine(int(v[0]), OccupiedSlot(ev)))
	case f.Args() == 2 && strings.EqualFold(f.String(2), "delete"):
		n, ok := f.Integer(1)
		if !ok {
			return ErrInvalidArgument
		}
		if n >= MaxEvents {
			c.println("Error: Up to 10 events can be stored. [0-9]")
			return nil
		}
		if err := c.store.Delete(int(n)); err != nil {
			return err
		}
		c.println(eventLine(int(n), EmptySlot()))
	default:
		return ErrUnknownCommand
	}
	c.sched.ComputeNextEvent()
	return nil
}

func (c *Controller) cmdWater(f *protocol.Fields) error {
	if f.Args() != 1 {
		return ErrUnknownCommand
	}
	ml, ok := f.Integer(1)
	if !ok {
		return ErrInvalidArgument
	}
	if err := c.settings.SetTarget(ml); err != nil {
		return err
	}
	c.println("TARGET --> [" + core.Utoa(ml) + " mL]")
	return nil
}

func (c *Controller) cmdFill(f *protocol.Fields) error {
	if f.Args() != 1 {
		return ErrUnknownCommand
	}
	var mode FillMode
	switch strings.ToLower(f.String(1)) {
	case "auto":
		mode = FillAuto
	case "motion":
		mode = FillMotion
	default:
		c.println("Error: Invalid Argument for [fill]")
		return nil
	}
	if err := c.settings.SetMode(mode); err != nil {
		return err
	}
	c.println("MODE --> [" + mode.String() + "]")
	return nil
}

func (c *Controller) cmdAlert(f *protocol.Fields) error {
	if f.Args() != 1 {
		return ErrUnknownCommand
	}
	var on bool
	switch strings.ToUpper(f.String(1)) {
	case "ON":
		on = true
	case "OFF":
	default:
		c.println("Error: Invalid Argument for [alert]")
		return nil
	}
	if err := c.settings.SetAlert(on); err != nil {
		return err
	}
	if on {
		c.println("ALERT --> [ON]")
	} else {
		c.println("ALERT --> [OFF]")
	}
	return nil
}

func (c *Controller) cmdDebug(f *protocol.Fields) error {
	if f.Args() != 1 {
		return ErrUnknownCommand
	}
	switch strings.ToLower(f.String(1)) {
	case "on":
		core.SetDebugEnabled(true)
	case "off":
		core.SetDebugEnabled(false)
	case "dump":
		c.println("UPTIME -> " + core.Utoa(core.TimerToUS(core.GetUptime())/1000) + " ms")
		for _, evt := range core.TimingEvents() {
			c.println(core.FormatTimingEvent(evt))
		}
		return nil
	default:
		c.println("Error: Invalid Argument for [debug]")
		return nil
	}
	if core.IsDebugEnabled() {
		c.println("DEBUG --> [ON]")
	} else {
		c.println("DEBUG --> [OFF]")
	}
	return nil
}

func (c *Controller) cmdHelp(f *protocol.Fields) error {
	if f.Args() != 0 {
		return ErrUnknownCommand
	}
	c.println("petfeeder " + protocol.Version)
	for _, line := range strings.Split(strings.TrimSuffix(c.commands.GetDictionary(), "\n"), "\n") {
		c.println("  " + line)
	}
	return nil
}
