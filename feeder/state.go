package feeder

import "sync/atomic"

// NoEvent is the NextIndex of a schedule with nothing armed
const NoEvent = -1

// Phase is the alarm scheduler's state
type Phase uint32

const (
	PhaseIdle Phase = iota
	PhaseScheduled
	PhaseFiring
)

func (p Phase) String() string {
	switch p {
	case PhaseScheduled:
		return "scheduled"
	case PhaseFiring:
		return "firing"
	default:
		return "idle"
	}
}

// Reading is one level measurement
type Reading struct {
	Ticks   uint32 // capture counter ticks, CaptureFreq units
	Volume  uint32 // mL
	Trusted bool
}

// ScheduleState is rebuilt by every schedule computation
type ScheduleState struct {
	NextIndex     int
	HasEventToday bool
	EventCount    int
	Armed         bool
	ArmAt         uint32 // absolute RTC seconds, valid when Armed
}

// State holds the volatile values shared between interrupt handlers and
// the main loop. Each group of fields has exactly one writer, which holds
// the matching writer handle; every other reader goes through a View.
type State struct {
	volume  atomic.Uint32
	ticks   atomic.Uint32
	trusted atomic.Bool
	seen    atomic.Bool

	next     atomic.Int32
	today    atomic.Bool
	count    atomic.Uint32
	armed    atomic.Bool
	armAt    atomic.Uint32
	phase    atomic.Uint32
	schedSeq atomic.Uint32
}

// LevelWriter is the only way to publish level readings
type LevelWriter struct{ s *State }

// ScheduleWriter is the only way to publish scheduler state
type ScheduleWriter struct{ s *State }

// StateView is a read-only view of State
type StateView struct{ s *State }

// NewState creates the shared state and its writer handles. Hand each
// writer to its one producer.
func NewState() (*State, LevelWriter, ScheduleWriter) {
	s := &State{}
	s.next.Store(NoEvent)
	return s, LevelWriter{s}, ScheduleWriter{s}
}

// View returns a read-only view
func (s *State) View() StateView {
	return StateView{s}
}

// Publish records a reading. The volume is last-wins.
func (w LevelWriter) Publish(r Reading) {
	w.s.ticks.Store(r.Ticks)
	w.s.trusted.Store(r.Trusted)
	w.s.volume.Store(r.Volume)
	w.s.seen.Store(true)
}

// Publish records a freshly computed schedule
func (w ScheduleWriter) Publish(ss ScheduleState) {
	w.s.next.Store(int32(ss.NextIndex))
	w.s.today.Store(ss.HasEventToday)
	w.s.count.Store(uint32(ss.EventCount))
	w.s.armAt.Store(ss.ArmAt)
	w.s.armed.Store(ss.Armed)
	w.s.schedSeq.Add(1)
}

// SetPhase records the scheduler phase
func (w ScheduleWriter) SetPhase(p Phase) {
	w.s.phase.Store(uint32(p))
}

// Level returns the last estimated volume in mL
func (v StateView) Level() uint32 {
	return v.s.volume.Load()
}

// Reading returns the last reading and whether any has been taken
func (v StateView) Reading() (Reading, bool) {
	return Reading{
		Ticks:   v.s.ticks.Load(),
		Volume:  v.s.volume.Load(),
		Trusted: v.s.trusted.Load(),
	}, v.s.seen.Load()
}

// Schedule returns the last computed schedule
func (v StateView) Schedule() ScheduleState {
	return ScheduleState{
		NextIndex:     int(v.s.next.Load()),
		HasEventToday: v.s.today.Load(),
		EventCount:    int(v.s.count.Load()),
		Armed:         v.s.armed.Load(),
		ArmAt:         v.s.armAt.Load(),
	}
}

// Phase returns the scheduler phase
func (v StateView) Phase() Phase {
	return Phase(v.s.phase.Load())
}

// Recomputations counts schedule computations; used to observe that a
// recompute happened.
func (v StateView) Recomputations() uint32 {
	return v.s.schedSeq.Load()
}
