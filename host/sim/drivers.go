package sim

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"petfeeder/core"
)

// GPIO is an in-memory GPIO driver
type GPIO struct {
	out    map[core.GPIOPin]bool
	inputs map[core.GPIOPin]bool
}

func newGPIO() *GPIO {
	return &GPIO{
		out:    make(map[core.GPIOPin]bool),
		inputs: make(map[core.GPIOPin]bool),
	}
}

func (g *GPIO) ConfigureOutput(pin core.GPIOPin) error {
	g.out[pin] = false
	return nil
}

func (g *GPIO) ConfigureInputPullDown(pin core.GPIOPin) error {
	g.inputs[pin] = false
	return nil
}

func (g *GPIO) SetPin(pin core.GPIOPin, value bool) error {
	if _, ok := g.out[pin]; !ok {
		return fmt.Errorf("gpio%d is not an output", pin)
	}
	g.out[pin] = value
	return nil
}

func (g *GPIO) ReadPin(pin core.GPIOPin) bool {
	if v, ok := g.inputs[pin]; ok {
		return v
	}
	return g.out[pin]
}

// SetInput drives an input pin from the outside world
func (g *GPIO) SetInput(pin core.GPIOPin, value bool) {
	g.inputs[pin] = value
}

// PWMMax is the simulated full-scale duty, matching a 10-bit generator
const PWMMax = 1023

// PWM is an in-memory PWM driver
type PWM struct {
	duty   map[core.PWMPin]core.PWMValue
	cycles map[core.PWMPin]uint32
}

func newPWM() *PWM {
	return &PWM{
		duty:   make(map[core.PWMPin]core.PWMValue),
		cycles: make(map[core.PWMPin]uint32),
	}
}

func (p *PWM) ConfigureHardwarePWM(pin core.PWMPin, cycleTicks uint32) (uint32, error) {
	if cycleTicks == 0 {
		return 0, fmt.Errorf("pwm%d: zero cycle", pin)
	}
	p.cycles[pin] = cycleTicks
	p.duty[pin] = 0
	return cycleTicks, nil
}

func (p *PWM) SetDutyCycle(pin core.PWMPin, value core.PWMValue) error {
	if _, ok := p.cycles[pin]; !ok {
		return fmt.Errorf("pwm%d not configured", pin)
	}
	if value > PWMMax {
		value = PWMMax
	}
	p.duty[pin] = value
	return nil
}

func (p *PWM) GetMaxValue() uint32 { return PWMMax }

func (p *PWM) DisablePWM(pin core.PWMPin) error {
	delete(p.cycles, pin)
	p.duty[pin] = 0
	return nil
}

// Fraction returns the pin's duty as 0..1
func (p *PWM) Fraction(pin core.PWMPin) float64 {
	return float64(p.duty[pin]) / PWMMax
}

// rtcSubFreq is the sub-second counter rate of a 32.768kHz RTC crystal
const rtcSubFreq = 32768

// RTC is a simulated battery-backed seconds counter with a match alarm
type RTC struct {
	counter uint32
	subMS   uint32
	match   uint32
	handler func()

	// Tear makes the next counter read straddle a second boundary
	Tear bool
}

func newRTC(start uint32) *RTC {
	return &RTC{counter: start, match: core.RTCMatchNever}
}

func (r *RTC) Counter() uint32 {
	v := r.counter
	if r.Tear {
		r.Tear = false
		r.counter++
	}
	return v
}

func (r *RTC) SubSeconds() uint32 {
	return r.subMS * rtcSubFreq / 1000
}

func (r *RTC) LoadCounter(seconds uint32) error {
	r.counter = seconds
	r.subMS = 0
	return nil
}

func (r *RTC) SetMatch(seconds uint32)  { r.match = seconds }
func (r *RTC) Match() uint32            { return r.match }
func (r *RTC) SetAlarmHandler(h func()) { r.handler = h }

// advance moves the RTC forward, raising the alarm on a match
func (r *RTC) advance(ms uint32) {
	r.subMS += ms
	for r.subMS >= 1000 {
		r.subMS -= 1000
		r.counter++
		if r.counter == r.match && r.handler != nil {
			r.handler()
		}
	}
}

// Capture simulates the comparator timing measurement. The charge time
// comes from the tank model when the pulse is injected and the edge fires
// once that much virtual time has passed.
type Capture struct {
	ticks   func() uint32
	handler func()

	running bool
	elapsed uint32
	due     uint32 // core time of the edge

	// Dead stops the comparator from ever tripping
	Dead bool
}

func newCapture(ticks func() uint32) *Capture {
	return &Capture{ticks: ticks}
}

func (c *Capture) Begin() error {
	c.running = true
	c.elapsed = c.ticks()
	us := c.elapsed / (core.CaptureFreq / 1000000)
	c.due = core.GetTime() + core.TimerFromUS(us)
	return nil
}

func (c *Capture) Elapsed() uint32 { return c.elapsed }

func (c *Capture) Halt() { c.running = false }

func (c *Capture) SetEdgeHandler(h func()) { c.handler = h }

func (c *Capture) poll(now uint32) {
	if !c.running || c.Dead || core.TimerIsBefore(now, c.due) {
		return
	}
	if c.handler != nil {
		c.handler()
	}
}

// NVM is a word store, optionally persisted to a YAML file
type NVM struct {
	words map[uint32]uint32
	path  string
}

type nvmFile struct {
	Words map[uint32]uint32 `yaml:"words"`
}

func newNVM(path string) (*NVM, error) {
	n := &NVM{words: make(map[uint32]uint32), path: path}
	if path == "" {
		return n, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return n, nil
		}
		return nil, fmt.Errorf("failed to read nvm file: %w", err)
	}
	var f nvmFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse nvm file: %w", err)
	}
	for addr, v := range f.Words {
		n.words[addr] = v
	}
	return n, nil
}

func (n *NVM) ReadWord(addr uint32) (uint32, error) {
	v, ok := n.words[addr]
	if !ok {
		return core.NVMErased, nil
	}
	return v, nil
}

func (n *NVM) WriteWord(addr uint32, value uint32) error {
	if value == core.NVMErased {
		delete(n.words, addr)
		return nil
	}
	n.words[addr] = value
	return nil
}

// Addresses returns the written addresses in order
func (n *NVM) Addresses() []uint32 {
	addrs := make([]uint32, 0, len(n.words))
	for a := range n.words {
		addrs = append(addrs, a)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })
	return addrs
}

// Save writes the store to its file, if it has one
func (n *NVM) Save() error {
	if n.path == "" {
		return nil
	}
	data, err := yaml.Marshal(nvmFile{Words: n.words})
	if err != nil {
		return fmt.Errorf("failed to marshal nvm: %w", err)
	}
	if err := os.WriteFile(n.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write nvm file: %w", err)
	}
	return nil
}
