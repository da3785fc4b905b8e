// Package queue serializes async menu operations. Operations run
// strictly one at a time in FIFO order; the next operation is scheduled
// on the host's next tick so a completing operation never recurses into
// the one behind it.
package queue

import (
	"errors"
	"fmt"
	"sync"

	"tokencontextmenu/pkg/engine/canvas"
	"tokencontextmenu/pkg/engine/logging"
)

// ErrCancelled is the base error for operations rejected by Clear.
var ErrCancelled = errors.New("cancelled")

var log = logging.For("queue")

// Operation is a unit of queued work. It runs on the host loop.
type Operation func() error

// Pending is the handle returned by Enqueue. Done is closed when the
// operation has finished or been cancelled; Err is valid after that.
type Pending struct {
	name string
	done chan struct{}
	err  error
}

// Name returns the operation's diagnostic name.
func (p *Pending) Name() string { return p.name }

// Done returns a channel closed once the operation has settled.
func (p *Pending) Done() <-chan struct{} { return p.done }

// Err returns the operation's result. Only meaningful after Done.
func (p *Pending) Err() error { return p.err }

type opEntry struct {
	pending *Pending
	fn      Operation
}

// Status is a diagnostic snapshot of the queue.
type Status struct {
	Length  int
	Running bool
	Current string
}

// Queue runs operations for one menu instance.
type Queue struct {
	mu        sync.Mutex
	ticker    *canvas.Ticker
	ops       []*opEntry
	running   bool
	current   string
	scheduled bool
	tickID    int
}

// New creates a queue driven by the given ticker.
func New(ticker *canvas.Ticker) *Queue {
	return &Queue{ticker: ticker}
}

// Enqueue appends an operation and schedules the queue to drain on the
// next tick. The returned handle settles when the operation does.
func (q *Queue) Enqueue(name string, fn Operation) *Pending {
	p := &Pending{name: name, done: make(chan struct{})}
	q.mu.Lock()
	q.ops = append(q.ops, &opEntry{pending: p, fn: fn})
	q.scheduleLocked()
	q.mu.Unlock()
	return p
}

// Clear rejects every queued operation with "cancelled: <name>". The
// operation currently running, if any, is not interrupted.
func (q *Queue) Clear() {
	q.mu.Lock()
	cleared := q.ops
	q.ops = nil
	if q.scheduled {
		q.ticker.Remove(q.tickID)
		q.scheduled = false
	}
	q.mu.Unlock()

	for _, e := range cleared {
		e.pending.err = fmt.Errorf("%w: %s", ErrCancelled, e.pending.name)
		close(e.pending.done)
	}
	if len(cleared) > 0 {
		log.Debug().Int("count", len(cleared)).Msg("queued operations cancelled")
	}
}

// Status returns a diagnostic snapshot.
func (q *Queue) Status() Status {
	q.mu.Lock()
	defer q.mu.Unlock()
	return Status{Length: len(q.ops), Running: q.running, Current: q.current}
}

func (q *Queue) scheduleLocked() {
	if q.scheduled || q.running || len(q.ops) == 0 {
		return
	}
	q.scheduled = true
	q.tickID = q.ticker.Add(func(_ float64) {
		q.mu.Lock()
		q.ticker.Remove(q.tickID)
		q.scheduled = false
		q.mu.Unlock()
		q.runNext()
	})
}

func (q *Queue) runNext() {
	q.mu.Lock()
	if q.running || len(q.ops) == 0 {
		q.mu.Unlock()
		return
	}
	e := q.ops[0]
	q.ops = q.ops[1:]
	q.running = true
	q.current = e.pending.name
	q.mu.Unlock()

	err := runOp(e)

	q.mu.Lock()
	q.running = false
	q.current = ""
	q.scheduleLocked()
	q.mu.Unlock()

	e.pending.err = err
	close(e.pending.done)
}

// runOp executes one operation, converting a panic into an error so a
// failing operation rejects only itself and the queue continues.
func runOp(e *opEntry) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("operation %s panicked: %v", e.pending.name, rec)
			log.Error().Str("operation", e.pending.name).Interface("panic", rec).Msg("queued operation panicked")
		}
	}()
	return e.fn()
}
