// Package targeting runs the at-most-one target-pick workflow: a
// canvas-wide hit surface, a cursor-follow prompt, and abort handling.
package targeting

import (
	"sync"
	"time"

	"github.com/leonelquinteros/gotext"

	"tokencontextmenu/pkg/engine/canvas"
	"tokencontextmenu/pkg/engine/document"
	"tokencontextmenu/pkg/engine/hooks"
	"tokencontextmenu/pkg/engine/logging"
	"tokencontextmenu/pkg/menu/tooltip"
)

// HitSurfaceName identifies the invisible canvas-wide pick surface.
const HitSurfaceName = "tokencontextmenu-target-hit"

// ManualAbortReason marks aborts initiated by the user (escape or
// right-click); callers suppress the user-visible warning for these.
const ManualAbortReason = "manually aborted"

var log = logging.For("targeting")

// Current is the module-wide targeting manager, set during module init.
var Current *Manager

// Options configure one targeting session.
type Options struct {
	// OnSelected fires when the user left-clicks a token. The token has
	// already replaced any prior user targets.
	OnSelected func(target document.Token)
	// OnAbort fires when the session ends without a pick.
	OnAbort func(reason string)
	// Cleanup always runs when the session ends, at most once.
	Cleanup func()
}

type session struct {
	id        string
	startedAt time.Time
	opts      Options
	ended     bool
}

// Manager owns the single active targeting session.
type Manager struct {
	mu         sync.Mutex
	host       document.Host
	tips       *tooltip.Manager
	session    *session
	hitNode    *canvas.Node
	keyHookID  int
	hoverToken document.Token
}

// NewManager creates a targeting manager for the given host.
func NewManager(host document.Host, tips *tooltip.Manager) *Manager {
	return &Manager{host: host, tips: tips}
}

// BindHooks subscribes the manager to host signals that must end any
// session: scene change and menu close.
func (m *Manager) BindHooks(bus *hooks.Bus, menuClosedHook string) {
	bus.On(hooks.EventCanvasReady, func(args ...any) {
		m.End("cancelled: scene changed")
	})
	bus.On(menuClosedHook, func(args ...any) {
		m.End("cancelled: menu closed")
	})
}

// Active reports whether a session is in progress.
func (m *Manager) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session != nil
}

// SessionID returns the active session's id, or "".
func (m *Manager) SessionID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return ""
	}
	return m.session.id
}

// Start begins a targeting session, ending any prior session first.
func (m *Manager) Start(id string, opts Options) {
	m.End("cancelled: replaced by " + id)

	m.mu.Lock()
	m.session = &session{id: id, startedAt: time.Now(), opts: opts}

	w, h := m.host.ScreenSize()
	hit := canvas.NewContainer(HitSurfaceName)
	hit.EventMode = canvas.EventModeStatic
	hit.HitArea = &canvas.Rect{X: 0, Y: 0, W: w, H: h}
	hit.Alpha = 0
	hit.On(canvas.EventPointerMove, m.onPointerMove)
	hit.On(canvas.EventPointerDown, m.onPointerDown)
	hit.On(canvas.EventRightDown, func(ev *canvas.PointerEvent) {
		ev.StopPropagation()
		m.End(ManualAbortReason + " (right-click)")
	})
	m.hitNode = hit
	m.host.Stage().AddChild(hit)

	m.keyHookID = hooks.On(hooks.EventKeyDown, func(args ...any) {
		if len(args) > 0 && args[0] == "Escape" {
			m.End(ManualAbortReason + " (escape)")
		}
	})
	m.mu.Unlock()

	log.Debug().Str("session", id).Msg("targeting session started")
	m.tips.Show([]string{gotext.Get("Select Target")}, canvas.Point{X: w / 2, Y: h / 2})
}

// End tears the session down: cleanup runs at most once, the hit
// surface and tooltip are removed, and OnAbort fires unless the session
// resolved through a selection. Idempotent.
func (m *Manager) End(reason string) {
	m.endWith(reason, nil)
}

func (m *Manager) endWith(reason string, selected document.Token) {
	m.mu.Lock()
	s := m.session
	if s == nil || s.ended {
		m.mu.Unlock()
		return
	}
	s.ended = true
	m.session = nil
	if m.hitNode != nil {
		m.hitNode.Destroy(true)
		m.hitNode = nil
	}
	if m.keyHookID != 0 {
		hooks.Off(hooks.EventKeyDown, m.keyHookID)
		m.keyHookID = 0
	}
	hover := m.hoverToken
	m.hoverToken = nil
	m.mu.Unlock()

	if hover != nil && hover.Mesh() != nil {
		hover.Mesh().Emit(canvas.EventPointerOut, &canvas.PointerEvent{})
	}
	m.tips.Hide()

	if selected != nil {
		log.Debug().Str("session", s.id).Str("target", selected.ID()).Msg("target selected")
		if s.opts.OnSelected != nil {
			s.opts.OnSelected(selected)
		}
	} else {
		log.Debug().Str("session", s.id).Str("reason", reason).Msg("targeting session aborted")
		if s.opts.OnAbort != nil {
			s.opts.OnAbort(reason)
		}
	}
	if s.opts.Cleanup != nil {
		s.opts.Cleanup()
	}
}

func (m *Manager) onPointerMove(ev *canvas.PointerEvent) {
	m.tips.MoveTo(ev.Global)

	target := m.tokenAt(ev.Global)
	m.mu.Lock()
	prior := m.hoverToken
	m.hoverToken = target
	m.mu.Unlock()

	if prior == target {
		return
	}
	// Host-native hover feedback through the token mesh.
	if prior != nil && prior.Mesh() != nil {
		prior.Mesh().Emit(canvas.EventPointerOut, &canvas.PointerEvent{Global: ev.Global})
	}
	if target != nil && target.Mesh() != nil {
		target.Mesh().Emit(canvas.EventPointerOver, &canvas.PointerEvent{Global: ev.Global})
	}
}

func (m *Manager) onPointerDown(ev *canvas.PointerEvent) {
	if ev.Button == canvas.ButtonRight {
		ev.StopPropagation()
		m.End(ManualAbortReason + " (right-click)")
		return
	}
	if ev.Button != canvas.ButtonLeft {
		return
	}
	target := m.tokenAt(ev.Global)
	if target == nil {
		// Clicks on empty canvas keep the session alive.
		return
	}
	ev.StopPropagation()
	target.SetTarget(true, true)
	m.endWith("", target)
}

func (m *Manager) tokenAt(p canvas.Point) document.Token {
	tokens := m.host.Tokens()
	// Later tokens draw on top; prefer them.
	for i := len(tokens) - 1; i >= 0; i-- {
		if tokens[i].Bounds().Contains(p) {
			return tokens[i]
		}
	}
	return nil
}
