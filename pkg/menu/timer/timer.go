// Package timer provides cooperative delayed callbacks driven by the
// host's per-frame tick, plus named timestamp marks for debounce windows.
package timer

import (
	"sort"
	"sync"
	"time"

	"tokencontextmenu/pkg/engine/canvas"
	"tokencontextmenu/pkg/engine/logging"
)

var log = logging.For("timer")

// Current is the module-wide timer service, set during module init.
// Tests swap in their own instance.
var Current *Service

type entry struct {
	id       int
	seq      int
	deadline time.Time
	name     string
	fn       func()
}

// Service schedules callbacks against a host ticker. The tick hook is
// registered only while delays are pending and removed before callbacks
// run, so a callback scheduling new delays re-registers cleanly.
type Service struct {
	mu      sync.Mutex
	ticker  *canvas.Ticker
	tickID  int
	ticking bool
	pending map[int]*entry
	nextID  int
	seq     int
	marks   map[string]time.Time

	now func() time.Time
}

// New creates a timer service bound to the given ticker.
func New(ticker *canvas.Ticker) *Service {
	return &Service{
		ticker:  ticker,
		pending: make(map[int]*entry),
		marks:   make(map[string]time.Time),
		now:     time.Now,
	}
}

// Delay schedules fn to run once duration has elapsed and returns an id
// for Cancel. The name is for diagnostics only.
func (s *Service) Delay(fn func(), duration time.Duration, name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.seq++
	s.pending[s.nextID] = &entry{
		id:       s.nextID,
		seq:      s.seq,
		deadline: s.now().Add(duration),
		name:     name,
		fn:       fn,
	}
	if !s.ticking {
		s.ticking = true
		s.tickID = s.ticker.Add(s.onTick)
	}
	return s.nextID
}

// Cancel removes a pending delay. After Cancel returns the callback will
// not fire. Cancelling an unknown or already-fired id is a no-op.
func (s *Service) Cancel(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, id)
	s.stopTickingLocked()
}

// CancelAll removes every pending delay.
func (s *Service) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pending) > 0 {
		log.Debug().Int("count", len(s.pending)).Msg("cancelling all pending delays")
	}
	s.pending = make(map[int]*entry)
	s.stopTickingLocked()
}

// Mark records the current time under key.
func (s *Service) Mark(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.marks[key] = s.now()
}

// HasElapsed reports whether at least d has passed since Mark(key).
// An unknown key counts as elapsed.
func (s *Service) HasElapsed(key string, d time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	at, ok := s.marks[key]
	if !ok {
		return true
	}
	return s.now().Sub(at) >= d
}

// Elapsed returns the time since Mark(key); ok is false for unknown keys.
func (s *Service) Elapsed(key string) (elapsed time.Duration, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	at, found := s.marks[key]
	if !found {
		return 0, false
	}
	return s.now().Sub(at), true
}

// ClearMark removes a single mark.
func (s *Service) ClearMark(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.marks, key)
}

// ClearMarks removes every mark.
func (s *Service) ClearMarks() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.marks = make(map[string]time.Time)
}

// Reset cancels every delay and clears every mark. Run on canvas-ready.
func (s *Service) Reset() {
	s.CancelAll()
	s.ClearMarks()
}

// PendingCount returns the number of scheduled delays.
func (s *Service) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

func (s *Service) onTick(_ float64) {
	s.mu.Lock()
	now := s.now()
	var due []*entry
	for _, e := range s.pending {
		if !e.deadline.After(now) {
			due = append(due, e)
		}
	}
	if len(due) == 0 {
		s.mu.Unlock()
		return
	}
	// Equal deadlines fire in insertion order.
	sort.Slice(due, func(i, j int) bool {
		if due[i].deadline.Equal(due[j].deadline) {
			return due[i].seq < due[j].seq
		}
		return due[i].deadline.Before(due[j].deadline)
	})
	for _, e := range due {
		delete(s.pending, e.id)
	}
	// Drop the tick hook before invoking callbacks so a callback that
	// schedules a new delay re-registers it.
	s.stopTickingLocked()
	s.mu.Unlock()

	for _, e := range due {
		e.fn()
	}
}

func (s *Service) stopTickingLocked() {
	if s.ticking && len(s.pending) == 0 {
		s.ticker.Remove(s.tickID)
		s.ticking = false
		s.tickID = 0
	}
}
