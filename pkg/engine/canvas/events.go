package canvas

// Pointer event names dispatched through the scene graph.
const (
	EventPointerDown      = "pointerdown"
	EventPointerUp        = "pointerup"
	EventPointerUpOutside = "pointerupoutside"
	EventPointerMove      = "pointermove"
	EventPointerOver      = "pointerover"
	EventPointerOut       = "pointerout"
	EventRightDown        = "rightdown"
)

// PointerButton identifies which mouse button produced an event.
type PointerButton int

const (
	ButtonLeft   PointerButton = 0
	ButtonMiddle PointerButton = 1
	ButtonRight  PointerButton = 2
)

// PointerEvent carries the global pointer position and button for a
// dispatched event. StopPropagation halts delivery to nodes beneath the
// current one.
type PointerEvent struct {
	Global  Point
	Button  PointerButton
	stopped bool
}

// StopPropagation prevents nodes beneath the current target from
// receiving this event.
func (e *PointerEvent) StopPropagation() { e.stopped = true }

// Stopped reports whether StopPropagation was called.
func (e *PointerEvent) Stopped() bool { return e.stopped }

// Handler is a pointer event callback bound to a node.
type Handler func(ev *PointerEvent)

// On binds a handler for the named event on this node.
func (n *Node) On(event string, fn Handler) {
	if n.destroyed {
		return
	}
	n.handlers[event] = append(n.handlers[event], fn)
}

// Off removes every handler for the named event on this node.
func (n *Node) Off(event string) {
	delete(n.handlers, event)
}

// RemoveAllListeners removes every handler on this node.
func (n *Node) RemoveAllListeners() {
	n.handlers = make(map[string][]Handler)
}

// HasListeners reports whether any handler is bound to this node.
func (n *Node) HasListeners() bool {
	for _, hs := range n.handlers {
		if len(hs) > 0 {
			return true
		}
	}
	return false
}

// Emit invokes this node's handlers for the named event.
func (n *Node) Emit(event string, ev *PointerEvent) {
	if n.destroyed {
		return
	}
	for _, fn := range n.handlers[event] {
		fn(ev)
		if ev.stopped {
			return
		}
	}
}

// Dispatch delivers a positional event through the subtree rooted at n:
// topmost hit node first, then bubbling through its ancestors up to n.
// Returns the deepest node that was hit, or nil.
func Dispatch(n *Node, event string, ev *PointerEvent) *Node {
	target := HitTest(n, ev.Global)
	if target == nil {
		return nil
	}
	for at := target; at != nil && !ev.stopped; at = at.parent {
		at.Emit(event, ev)
		if at == n {
			break
		}
	}
	return target
}

// DispatchAll delivers a non-positional event (e.g. pointermove,
// pointerupoutside) to every interactive node in the subtree.
func DispatchAll(n *Node, event string, ev *PointerEvent) {
	if n == nil || n.destroyed || !n.Visible {
		return
	}
	for i := len(n.children) - 1; i >= 0; i-- {
		DispatchAll(n.children[i], event, ev)
		if ev.stopped {
			return
		}
	}
	if n.EventMode != EventModeNone {
		n.Emit(event, ev)
	}
}

// HitTest returns the deepest visible interactive node containing the
// global point, preferring later siblings (drawn on top).
func HitTest(n *Node, p Point) *Node {
	if n == nil || n.destroyed || !n.Visible {
		return nil
	}
	for i := len(n.children) - 1; i >= 0; i-- {
		if hit := HitTest(n.children[i], p); hit != nil {
			return hit
		}
	}
	if n.EventMode == EventModeNone {
		return nil
	}
	b := n.GlobalBounds()
	if b.W > 0 && b.H > 0 && b.Contains(p) {
		return n
	}
	return nil
}
