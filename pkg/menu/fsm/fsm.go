// Package fsm is the finite state machine for one menu instance. It
// enforces legal lifecycle transitions and recovers stuck transitional
// states through a watchdog.
package fsm

import (
	"sync"
	"time"

	"tokencontextmenu/pkg/engine/logging"
	"tokencontextmenu/pkg/menu/timer"
)

// State is a menu lifecycle state.
type State int

const (
	StateClosed State = iota
	StateOpening
	StateOpen
	StateClosing
	StateError
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpening:
		return "OPENING"
	case StateOpen:
		return "OPEN"
	case StateClosing:
		return "CLOSING"
	case StateError:
		return "ERROR"
	}
	return "INVALID"
}

// WatchdogTimeout forces a menu stuck in OPENING or CLOSING into ERROR.
const WatchdogTimeout = 2 * time.Second

var legal = map[State][]State{
	StateClosed:  {StateOpening},
	StateOpening: {StateOpen, StateClosing, StateError},
	StateOpen:    {StateClosing},
	StateClosing: {StateClosed, StateError},
	StateError:   {StateClosed},
}

// Observer is notified after every successful transition.
type Observer func(from, to State)

var log = logging.For("fsm")

// Machine tracks the state of a single menu instance. The zero value is
// not usable; create machines with New.
type Machine struct {
	mu         sync.Mutex
	state      State
	observers  []Observer
	timers     *timer.Service
	watchdogID int
}

// New creates a machine in CLOSED. timers drives the stuck-transition
// watchdog; it may be nil, which disables the watchdog.
func New(timers *timer.Service) *Machine {
	return &Machine{state: StateClosed, timers: timers}
}

// State returns the current state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// IsStable reports whether the machine is in CLOSED or OPEN.
func (m *Machine) IsStable() bool {
	s := m.State()
	return s == StateClosed || s == StateOpen
}

// IsActive reports whether the machine is in OPENING or OPEN.
func (m *Machine) IsActive() bool {
	s := m.State()
	return s == StateOpening || s == StateOpen
}

// OnTransition registers an observer. Observers run after the state has
// changed, outside the machine's lock.
func (m *Machine) OnTransition(obs Observer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers, obs)
}

// TransitionTo moves the machine to the requested state. Illegal
// transitions are logged and return false without side effects.
func (m *Machine) TransitionTo(to State) bool {
	m.mu.Lock()
	from := m.state
	if !allowed(from, to) {
		m.mu.Unlock()
		log.Debug().Stringer("from", from).Stringer("to", to).Msg("illegal transition rejected")
		return false
	}
	m.state = to
	m.cancelWatchdogLocked()
	if to == StateOpening || to == StateClosing {
		m.armWatchdogLocked(to)
	}
	observers := make([]Observer, len(m.observers))
	copy(observers, m.observers)
	m.mu.Unlock()

	for _, obs := range observers {
		obs(from, to)
	}
	return true
}

// ForceClosed resets the machine to CLOSED regardless of current state.
// Used by emergency cleanup only; observers are not notified.
func (m *Machine) ForceClosed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelWatchdogLocked()
	m.state = StateClosed
}

func allowed(from, to State) bool {
	for _, s := range legal[from] {
		if s == to {
			return true
		}
	}
	return false
}

func (m *Machine) armWatchdogLocked(expected State) {
	if m.timers == nil {
		return
	}
	m.watchdogID = m.timers.Delay(func() {
		m.watchdogFired(expected)
	}, WatchdogTimeout, "fsm-watchdog-"+expected.String())
}

func (m *Machine) cancelWatchdogLocked() {
	if m.timers != nil && m.watchdogID != 0 {
		m.timers.Cancel(m.watchdogID)
		m.watchdogID = 0
	}
}

func (m *Machine) watchdogFired(expected State) {
	m.mu.Lock()
	if m.state != expected {
		m.mu.Unlock()
		return
	}
	from := m.state
	m.state = StateError
	m.watchdogID = 0
	observers := make([]Observer, len(m.observers))
	copy(observers, m.observers)
	m.mu.Unlock()

	log.Warn().Stringer("stuck", from).Msg("transition watchdog fired, entering ERROR")
	for _, obs := range observers {
		obs(from, StateError)
	}
}
