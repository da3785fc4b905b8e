package fsm

import (
	"testing"
	"time"

	"tokencontextmenu/pkg/engine/canvas"
	"tokencontextmenu/pkg/menu/timer"
)

func TestTransitionTo_LegalPath(t *testing.T) {
	m := New(nil)
	steps := []State{StateOpening, StateOpen, StateClosing, StateClosed}
	for _, s := range steps {
		if !m.TransitionTo(s) {
			t.Fatalf("TransitionTo(%v) = false from %v, want true", s, m.State())
		}
	}
	if m.State() != StateClosed {
		t.Errorf("final state = %v, want CLOSED", m.State())
	}
}

func TestTransitionTo_IllegalRejectedWithoutMutation(t *testing.T) {
	m := New(nil)
	cases := []struct {
		from State
		to   State
	}{
		{StateClosed, StateOpen},
		{StateClosed, StateClosing},
		{StateOpen, StateOpening},
		{StateOpen, StateError},
		{StateError, StateOpening},
	}
	for _, c := range cases {
		m.ForceClosed()
		walkTo(t, m, c.from)
		if m.TransitionTo(c.to) {
			t.Errorf("TransitionTo(%v) from %v = true, want false", c.to, c.from)
		}
		if m.State() != c.from {
			t.Errorf("state mutated to %v on illegal transition from %v", m.State(), c.from)
		}
	}
}

// walkTo drives the machine to the given state along legal edges.
func walkTo(t *testing.T, m *Machine, target State) {
	t.Helper()
	switch target {
	case StateClosed:
	case StateOpening:
		m.TransitionTo(StateOpening)
	case StateOpen:
		m.TransitionTo(StateOpening)
		m.TransitionTo(StateOpen)
	case StateClosing:
		m.TransitionTo(StateOpening)
		m.TransitionTo(StateOpen)
		m.TransitionTo(StateClosing)
	case StateError:
		m.TransitionTo(StateOpening)
		m.TransitionTo(StateError)
	}
	if m.State() != target {
		t.Fatalf("walkTo(%v) ended at %v", target, m.State())
	}
}

func TestObserver_NotifiedWithFromTo(t *testing.T) {
	m := New(nil)
	var gotFrom, gotTo State
	m.OnTransition(func(from, to State) { gotFrom, gotTo = from, to })

	m.TransitionTo(StateOpening)

	if gotFrom != StateClosed || gotTo != StateOpening {
		t.Errorf("observer got (%v, %v), want (CLOSED, OPENING)", gotFrom, gotTo)
	}
}

func TestObserver_NotNotifiedOnIllegalTransition(t *testing.T) {
	m := New(nil)
	calls := 0
	m.OnTransition(func(from, to State) { calls++ })

	m.TransitionTo(StateOpen) // illegal from CLOSED

	if calls != 0 {
		t.Errorf("observer calls = %d, want 0", calls)
	}
}

func TestIsStableIsActive(t *testing.T) {
	m := New(nil)
	if !m.IsStable() || m.IsActive() {
		t.Error("CLOSED: want stable, not active")
	}
	m.TransitionTo(StateOpening)
	if m.IsStable() || !m.IsActive() {
		t.Error("OPENING: want active, not stable")
	}
	m.TransitionTo(StateOpen)
	if !m.IsStable() || !m.IsActive() {
		t.Error("OPEN: want stable and active")
	}
	m.TransitionTo(StateClosing)
	if m.IsStable() || m.IsActive() {
		t.Error("CLOSING: want neither stable nor active")
	}
}

func TestWatchdog_StuckOpeningEntersError(t *testing.T) {
	tk := canvas.NewTicker()
	timers := timer.New(tk)
	m := New(timers)
	var transitions [][2]State
	m.OnTransition(func(from, to State) { transitions = append(transitions, [2]State{from, to}) })

	m.TransitionTo(StateOpening)
	time.Sleep(10 * time.Millisecond)
	tk.Tick(16)
	if m.State() != StateOpening {
		t.Fatalf("state = %v before timeout, want OPENING", m.State())
	}

	// Simulate the 2s deadline passing without driving a real clock:
	// fire the watchdog path directly.
	m.watchdogFired(StateOpening)

	if m.State() != StateError {
		t.Errorf("state = %v after watchdog, want ERROR", m.State())
	}
	last := transitions[len(transitions)-1]
	if last[0] != StateOpening || last[1] != StateError {
		t.Errorf("last transition = %v, want [OPENING ERROR]", last)
	}
}

func TestWatchdog_DisarmedOnCompletedTransition(t *testing.T) {
	tk := canvas.NewTicker()
	timers := timer.New(tk)
	m := New(timers)

	m.TransitionTo(StateOpening)
	m.TransitionTo(StateOpen)

	if timers.PendingCount() != 0 {
		t.Errorf("pending watchdogs = %d after reaching OPEN, want 0", timers.PendingCount())
	}

	// A stale watchdog firing for a state we already left is a no-op.
	m.watchdogFired(StateOpening)
	if m.State() != StateOpen {
		t.Errorf("state = %v, want OPEN", m.State())
	}
}

func TestForceClosed_FromAnyState(t *testing.T) {
	m := New(nil)
	m.TransitionTo(StateOpening)
	m.TransitionTo(StateError)
	m.ForceClosed()
	if m.State() != StateClosed {
		t.Errorf("state = %v, want CLOSED", m.State())
	}
}
