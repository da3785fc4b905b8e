package menu

import (
	"sync"
	"time"

	"tokencontextmenu/pkg/engine/document"
	"tokencontextmenu/pkg/engine/logging"
	"tokencontextmenu/pkg/menu/effects"
	"tokencontextmenu/pkg/menu/interaction"
	"tokencontextmenu/pkg/menu/settings"
	"tokencontextmenu/pkg/menu/targeting"
	"tokencontextmenu/pkg/menu/timer"
	"tokencontextmenu/pkg/menu/tooltip"
)

const (
	// MenuClickDebounce guards the menu against the very click that
	// opened it.
	MenuClickDebounce = 75 * time.Millisecond
	// SelectionProcessingTimeout bounds how long the selection gate can
	// stay closed if an open sequence stalls.
	SelectionProcessingTimeout = 500 * time.Millisecond
)

var coordLog = logging.For("coordinator")

// Current is the module-wide coordinator, set during module init.
var Current *Coordinator

// Coordinator is the single source of truth for which menu is open. It
// owns the selection gate, the controlled-tokens cache and the movement
// trackers, and it wires the drag/targeting singletons together.
type Coordinator struct {
	host    document.Host
	timers  *timer.Service
	effects *effects.Manager
	targets *targeting.Manager
	tips    *tooltip.Manager
	adapter targeting.Adapter

	drag       *interaction.Drag
	classifier *interaction.Classifier

	mu              sync.Mutex
	menu            *Instance
	menuOpenedAt    time.Time
	processing      bool
	processingTimer int

	cacheVersion  int
	cachedVersion int
	cached        []document.Token

	trackers map[string]*movementTracker

	now func() time.Time
}

// NewCoordinator wires a coordinator and its interaction classifier for
// the host.
func NewCoordinator(host document.Host, timers *timer.Service, fx *effects.Manager, targets *targeting.Manager, tips *tooltip.Manager, adapter targeting.Adapter) *Coordinator {
	c := &Coordinator{
		host:     host,
		timers:   timers,
		effects:  fx,
		targets:  targets,
		tips:     tips,
		adapter:  adapter,
		drag:     interaction.NewDrag(),
		trackers: make(map[string]*movementTracker),
		now:      time.Now,
	}
	c.cacheVersion = 1
	c.classifier = interaction.NewClassifier(c.drag, interaction.Sink{
		IsMenuOpen:       c.IsMenuOpen,
		IsMenuOpenFor:    c.IsMenuOpenFor,
		OpenFor:          c.OpenFor,
		CloseMenu:        func(reason string) { c.CloseMenu(reason) },
		ControlledTokens: c.Controlled,
	})
	return c
}

// Classifier exposes the interaction classifier for host wiring.
func (c *Coordinator) Classifier() *interaction.Classifier { return c.classifier }

// Drag exposes the drag tracker for host wiring.
func (c *Coordinator) Drag() *interaction.Drag { return c.drag }

// Menu returns the registered menu instance, open or mid-transition.
func (c *Coordinator) Menu() *Instance {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.menu
}

// SetMenu registers the instance as the open menu.
func (c *Coordinator) SetMenu(i *Instance) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.menu = i
}

// ClearMenu drops the registration if it still points at i.
func (c *Coordinator) ClearMenu(i *Instance) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.menu == i {
		c.menu = nil
	}
}

// IsMenuOpen reports whether a menu is registered and active.
func (c *Coordinator) IsMenuOpen() bool {
	m := c.Menu()
	return m != nil && m.Rendered()
}

// IsMenuOpenFor reports whether the open menu belongs to the token.
func (c *Coordinator) IsMenuOpenFor(tokenID string) bool {
	m := c.Menu()
	return m != nil && m.Rendered() && m.Token().ID() == tokenID
}

// MenuTokenID returns the open menu's token id, or "".
func (c *Coordinator) MenuTokenID() string {
	m := c.Menu()
	if m == nil {
		return ""
	}
	return m.Token().ID()
}

// MarkOpened records the open timestamp for the debounce window.
func (c *Coordinator) MarkOpened() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.menuOpenedAt = c.now()
}

// WithinDebounce reports whether the menu opened less than the debounce
// window ago.
func (c *Coordinator) WithinDebounce() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.menuOpenedAt.IsZero() {
		return false
	}
	return c.now().Sub(c.menuOpenedAt) < MenuClickDebounce
}

// BeginSelectionProcessing closes the selection gate, with a timeout so
// a stalled open sequence can never wedge it shut.
func (c *Coordinator) BeginSelectionProcessing() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.processing {
		return
	}
	c.processing = true
	c.processingTimer = c.timers.Delay(func() {
		coordLog.Warn().Msg("selection processing timed out, reopening gate")
		c.EndSelectionProcessing()
	}, SelectionProcessingTimeout, "selection-processing")
}

// EndSelectionProcessing reopens the selection gate.
func (c *Coordinator) EndSelectionProcessing() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.processing {
		return
	}
	c.processing = false
	if c.processingTimer != 0 {
		c.timers.Cancel(c.processingTimer)
		c.processingTimer = 0
	}
}

// IsProcessingSelection reports whether the selection gate is closed.
func (c *Coordinator) IsProcessingSelection() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.processing
}

// InvalidateControlled bumps the cache version; call on every
// control-token event.
func (c *Coordinator) InvalidateControlled() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cacheVersion++
}

// Controlled returns the controlled tokens, cached per version.
func (c *Coordinator) Controlled() []document.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cachedVersion != c.cacheVersion {
		c.cached = c.host.ControlledTokens()
		c.cachedVersion = c.cacheVersion
	}
	return c.cached
}

// ControlledCount returns how many tokens are controlled.
func (c *Coordinator) ControlledCount() int { return len(c.Controlled()) }

// HasExactlyOneControlled reports whether a single token is controlled.
func (c *Coordinator) HasExactlyOneControlled() bool { return c.ControlledCount() == 1 }

// IsOnlyControlled reports whether the token is the sole controlled one.
func (c *Coordinator) IsOnlyControlled(token document.Token) bool {
	controlled := c.Controlled()
	return len(controlled) == 1 && controlled[0].ID() == token.ID()
}

// OpenFor opens (or re-renders) the menu for the token, gated by the
// selection-processing flag.
func (c *Coordinator) OpenFor(token document.Token) {
	if c.IsProcessingSelection() {
		coordLog.Debug().Str("token", token.ID()).Msg("selection gate closed, skipping open")
		return
	}
	c.BeginSelectionProcessing()

	inst := c.Menu()
	if inst == nil || inst.Token().ID() != token.ID() {
		inst = NewInstance(token, c.host, c)
	}
	inst.Render()
	// Release the gate on the tick after the render drains; the 500ms
	// timeout covers a render that never runs.
	c.timers.Delay(c.EndSelectionProcessing, 0, "selection-processing-release")
}

// CloseMenu closes the open menu, if any, and returns whether one was
// registered.
func (c *Coordinator) CloseMenu(reason string) bool {
	m := c.Menu()
	if m == nil {
		return false
	}
	m.Close(reason)
	return true
}

// Reset is the scene-change teardown: force-close the menu, end
// targeting, stop every tracker, clear timers and caches.
func (c *Coordinator) Reset() {
	coordLog.Debug().Msg("coordinator reset")
	if m := c.Menu(); m != nil {
		m.EmergencyCleanup()
	}
	c.targets.End("cancelled: scene changed")
	c.effects.EmergencyCleanup()
	c.StopTrackers()
	c.drag.Reset()
	c.classifier.Reset()
	c.timers.CancelAll()
	c.timers.ClearMarks()

	c.mu.Lock()
	c.menu = nil
	c.menuOpenedAt = time.Time{}
	c.processing = false
	c.processingTimer = 0
	c.cacheVersion++
	c.cached = nil
	c.mu.Unlock()
}

// DumpState logs a debug snapshot when debugMode is on.
func (c *Coordinator) DumpState() {
	if !settings.GetBool(settings.DebugMode) {
		return
	}
	c.mu.Lock()
	trackers := len(c.trackers)
	processing := c.processing
	c.mu.Unlock()
	ev := coordLog.Debug().
		Bool("processing", processing).
		Int("trackers", trackers).
		Str("menuToken", c.MenuTokenID())
	if m := c.Menu(); m != nil {
		ev = ev.Str("state", m.Status().State.String())
	}
	ev.Msg("coordinator state")
}
