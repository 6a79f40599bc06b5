package feeder

import (
	"bytes"
	"strings"
	"testing"

	"petfeeder/core"
)

type fakeNVM struct {
	words  map[uint32]uint32
	writes []uint32 // addresses in write order
	fail   error
}

func newFakeNVM() *fakeNVM {
	return &fakeNVM{words: make(map[uint32]uint32)}
}

func (n *fakeNVM) ReadWord(addr uint32) (uint32, error) {
	if n.fail != nil {
		return 0, n.fail
	}
	v, ok := n.words[addr]
	if !ok {
		return core.NVMErased, nil
	}
	return v, nil
}

func (n *fakeNVM) WriteWord(addr uint32, value uint32) error {
	if n.fail != nil {
		return n.fail
	}
	n.words[addr] = value
	n.writes = append(n.writes, addr)
	return nil
}

type fakeRTC struct {
	counter uint32
	match   uint32
	handler func()
	tear    bool // next Now straddles a second boundary
}

func newFakeRTC() *fakeRTC {
	return &fakeRTC{match: core.RTCMatchNever}
}

func (r *fakeRTC) Counter() uint32 {
	v := r.counter
	if r.tear {
		r.tear = false
		r.counter++
	}
	return v
}

func (r *fakeRTC) SubSeconds() uint32         { return 0 }
func (r *fakeRTC) LoadCounter(s uint32) error { r.counter = s; return nil }
func (r *fakeRTC) SetMatch(s uint32)          { r.match = s }
func (r *fakeRTC) Match() uint32              { return r.match }
func (r *fakeRTC) SetAlarmHandler(h func())   { r.handler = h }

// tick advances the counter one second and raises the alarm on a match
func (r *fakeRTC) tick() {
	r.counter++
	if r.counter == r.match && r.handler != nil {
		r.handler()
	}
}

type fakeGPIO struct {
	out    map[core.GPIOPin]bool
	inputs map[core.GPIOPin]bool
	writes map[core.GPIOPin]int
}

func newFakeGPIO() *fakeGPIO {
	return &fakeGPIO{
		out:    make(map[core.GPIOPin]bool),
		inputs: make(map[core.GPIOPin]bool),
		writes: make(map[core.GPIOPin]int),
	}
}

func (g *fakeGPIO) ConfigureOutput(pin core.GPIOPin) error {
	g.out[pin] = false
	return nil
}

func (g *fakeGPIO) ConfigureInputPullDown(pin core.GPIOPin) error {
	g.inputs[pin] = false
	return nil
}

func (g *fakeGPIO) SetPin(pin core.GPIOPin, value bool) error {
	g.out[pin] = value
	g.writes[pin]++
	return nil
}

func (g *fakeGPIO) ReadPin(pin core.GPIOPin) bool {
	if v, ok := g.inputs[pin]; ok {
		return v
	}
	return g.out[pin]
}

const fakePWMMax = 1023

type fakePWM struct {
	duty   map[core.PWMPin]core.PWMValue
	cycles map[core.PWMPin]uint32
}

func newFakePWM() *fakePWM {
	return &fakePWM{
		duty:   make(map[core.PWMPin]core.PWMValue),
		cycles: make(map[core.PWMPin]uint32),
	}
}

func (p *fakePWM) ConfigureHardwarePWM(pin core.PWMPin, cycleTicks uint32) (uint32, error) {
	p.cycles[pin] = cycleTicks
	return cycleTicks, nil
}

func (p *fakePWM) SetDutyCycle(pin core.PWMPin, value core.PWMValue) error {
	p.duty[pin] = value
	return nil
}

func (p *fakePWM) GetMaxValue() uint32 { return fakePWMMax }

func (p *fakePWM) DisablePWM(pin core.PWMPin) error {
	p.duty[pin] = 0
	return nil
}

type fakeCapture struct {
	begins  int
	halts   int
	elapsed uint32
	handler func()
}

func (c *fakeCapture) Begin() error            { c.begins++; return nil }
func (c *fakeCapture) Elapsed() uint32         { return c.elapsed }
func (c *fakeCapture) Halt()                   { c.halts++ }
func (c *fakeCapture) SetEdgeHandler(h func()) { c.handler = h }

// edge reports a comparator trip after ticks
func (c *fakeCapture) edge(ticks uint32) {
	c.elapsed = ticks
	if c.handler != nil {
		c.handler()
	}
}

var testPins = Pins{
	Water:     2,
	Food:      3,
	Buzzer:    4,
	AlertLED:  5,
	Presence:  6,
	Indicator: 7,
}

type rig struct {
	t       *testing.T
	ctrl    *Controller
	nvm     *fakeNVM
	rtc     *fakeRTC
	gpio    *fakeGPIO
	pwm     *fakePWM
	capture *fakeCapture
	out     bytes.Buffer
	subMS   uint32
}

func resetCore() {
	core.ResetTimers()
	core.SetTime(0)
	core.TimerInit()
	core.ClearTimingRing()
}

// newRig builds an uninitialized controller on fakes
func newRig(t *testing.T) *rig {
	t.Helper()
	resetCore()
	r := &rig{
		t:       t,
		nvm:     newFakeNVM(),
		rtc:     newFakeRTC(),
		gpio:    newFakeGPIO(),
		pwm:     newFakePWM(),
		capture: &fakeCapture{},
	}
	hw := Hardware{GPIO: r.gpio, PWM: r.pwm, RTC: r.rtc, Capture: r.capture, NVM: r.nvm}
	r.ctrl = New(hw, Config{Pins: testPins}, &r.out)
	return r
}

func (r *rig) init() *rig {
	r.t.Helper()
	if err := r.ctrl.Init(); err != nil {
		r.t.Fatalf("Init: %v", err)
	}
	return r
}

// run advances virtual time in 10ms steps, ticking the RTC every second
func (r *rig) run(ms uint32) {
	for elapsed := uint32(0); elapsed < ms; elapsed += 10 {
		core.SetTime(core.GetTime() + core.TimerFromMS(10))
		r.subMS += 10
		if r.subMS >= 1000 {
			r.subMS -= 1000
			r.rtc.tick()
		}
		core.ProcessTimers()
		r.ctrl.RunTasks()
	}
}

// send runs a command line and returns the reply lines
func (r *rig) send(line string) []string {
	r.out.Reset()
	r.ctrl.HandleLine(line)
	return r.lines()
}

func (r *rig) lines() []string {
	s := strings.TrimSuffix(r.out.String(), "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

// reading completes the capture started by the level timer
func (r *rig) reading(ticks uint32) {
	r.capture.edge(ticks)
	r.ctrl.RunTasks()
}
