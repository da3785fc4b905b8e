// Package interaction turns raw token pointer and selection events into
// semantic gestures: selection, re-click toggle, drag, right-click.
package interaction

import (
	"sync"
	"time"

	"tokencontextmenu/pkg/engine/canvas"
	"tokencontextmenu/pkg/engine/document"
	"tokencontextmenu/pkg/engine/logging"
)

// Threshold is the pointer travel in pixels beyond which a gesture
// counts as a drag instead of a click.
const Threshold = 5.0

var dragLog = logging.For("drag")

// Callbacks receive the outcome of one tracked gesture.
type Callbacks struct {
	// OnDragStarted fires once, the moment travel exceeds Threshold.
	OnDragStarted func()
	// OnClick fires on release when the pointer never dragged.
	OnClick func()
	// OnDragEnded fires on release after a drag.
	OnDragEnded func()
}

type dragState struct {
	mesh     *canvas.Node
	start    canvas.Point
	dragging bool
	downAt   time.Time
	cb       Callbacks
}

// Drag tracks pointer-down gestures per token. Listeners are bound to
// the token mesh on Begin and always unbound on release.
type Drag struct {
	mu       sync.Mutex
	tracking map[string]*dragState
}

// NewDrag creates an empty drag tracker.
func NewDrag() *Drag {
	return &Drag{tracking: make(map[string]*dragState)}
}

// Begin starts tracking a pointer-down on the token at the given global
// position. A gesture already in progress for the token is abandoned.
func (d *Drag) Begin(token document.Token, start canvas.Point, cb Callbacks) {
	mesh := token.Mesh()
	if mesh == nil || mesh.Destroyed() {
		return
	}
	id := token.ID()

	d.mu.Lock()
	if prior, ok := d.tracking[id]; ok {
		d.unbindLocked(prior)
		delete(d.tracking, id)
	}
	st := &dragState{mesh: mesh, start: start, downAt: time.Now(), cb: cb}
	d.tracking[id] = st
	d.mu.Unlock()

	mesh.On(canvas.EventPointerMove, func(ev *canvas.PointerEvent) {
		d.handleMove(id, ev.Global)
	})
	finish := func(ev *canvas.PointerEvent) {
		d.finish(id)
	}
	mesh.On(canvas.EventPointerUp, finish)
	mesh.On(canvas.EventPointerUpOutside, finish)
}

// IsDragging reports whether the token's current gesture has crossed the
// drag threshold.
func (d *Drag) IsDragging(tokenID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	st, ok := d.tracking[tokenID]
	return ok && st.dragging
}

// Clear abandons tracking for one token, unbinding its listeners.
// Used when the token is deselected or the scene changes.
func (d *Drag) Clear(tokenID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if st, ok := d.tracking[tokenID]; ok {
		d.unbindLocked(st)
		delete(d.tracking, tokenID)
	}
}

// Reset abandons every tracked gesture.
func (d *Drag) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for id, st := range d.tracking {
		d.unbindLocked(st)
		delete(d.tracking, id)
	}
}

func (d *Drag) handleMove(tokenID string, at canvas.Point) {
	d.mu.Lock()
	st, ok := d.tracking[tokenID]
	if !ok || st.dragging {
		d.mu.Unlock()
		return
	}
	dx := at.X - st.start.X
	dy := at.Y - st.start.Y
	if dx < Threshold && dx > -Threshold && dy < Threshold && dy > -Threshold {
		d.mu.Unlock()
		return
	}
	st.dragging = true
	cb := st.cb
	d.mu.Unlock()

	dragLog.Debug().Str("token", tokenID).Msg("drag started")
	if cb.OnDragStarted != nil {
		cb.OnDragStarted()
	}
}

func (d *Drag) finish(tokenID string) {
	d.mu.Lock()
	st, ok := d.tracking[tokenID]
	if !ok {
		d.mu.Unlock()
		return
	}
	d.unbindLocked(st)
	delete(d.tracking, tokenID)
	dragged := st.dragging
	cb := st.cb
	d.mu.Unlock()

	if dragged {
		if cb.OnDragEnded != nil {
			cb.OnDragEnded()
		}
		return
	}
	if cb.OnClick != nil {
		cb.OnClick()
	}
}

func (d *Drag) unbindLocked(st *dragState) {
	st.mesh.Off(canvas.EventPointerMove)
	st.mesh.Off(canvas.EventPointerUp)
	st.mesh.Off(canvas.EventPointerUpOutside)
}
