package canvas

import "sync"

// TickerFunc runs once per host frame with the elapsed time in
// milliseconds since the previous frame.
type TickerFunc func(deltaMS float64)

// Ticker is the host's per-frame callback registry. Callbacks may add or
// remove entries (including themselves) while a tick is in progress.
type Ticker struct {
	mu      sync.Mutex
	entries map[int]TickerFunc
	order   []int
	nextID  int
}

// NewTicker creates an empty ticker.
func NewTicker() *Ticker {
	return &Ticker{entries: make(map[int]TickerFunc)}
}

// Add registers a per-frame callback and returns its id.
func (t *Ticker) Add(fn TickerFunc) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nextID++
	t.entries[t.nextID] = fn
	t.order = append(t.order, t.nextID)
	return t.nextID
}

// Remove unregisters a callback. Removing an unknown id is a no-op.
func (t *Ticker) Remove(id int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.entries[id]; !ok {
		return
	}
	delete(t.entries, id)
	for i, oid := range t.order {
		if oid == id {
			t.order = append(t.order[:i:i], t.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of registered callbacks.
func (t *Ticker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// Tick invokes every registered callback in registration order.
// Callbacks removed during the tick are skipped.
func (t *Ticker) Tick(deltaMS float64) {
	t.mu.Lock()
	ids := make([]int, len(t.order))
	copy(ids, t.order)
	t.mu.Unlock()

	for _, id := range ids {
		t.mu.Lock()
		fn, ok := t.entries[id]
		t.mu.Unlock()
		if ok {
			fn(deltaMS)
		}
	}
}
