package interaction

import (
	"sync"
	"time"

	"tokencontextmenu/pkg/engine/canvas"
	"tokencontextmenu/pkg/engine/document"
	"tokencontextmenu/pkg/engine/logging"
	"tokencontextmenu/pkg/menu/settings"
)

var log = logging.For("interaction")

// Sink is what the classifier drives: the coordinator supplies these so
// the classifier stays free of menu internals.
type Sink struct {
	IsMenuOpen       func() bool
	IsMenuOpenFor    func(tokenID string) bool
	OpenFor          func(token document.Token)
	CloseMenu        func(reason string)
	ControlledTokens func() []document.Token
}

// epoch marks a fresh selection of a token. The pointer-up completing
// that selection consumes it, so the same gesture is never re-read as a
// re-click toggle.
type epoch struct {
	consumed bool
	at       time.Time
}

// Classifier converts token pointer and selection events into exactly
// one of open, toggle, close or ignore.
type Classifier struct {
	mu     sync.Mutex
	drag   *Drag
	sink   Sink
	epochs map[string]*epoch
}

// NewClassifier creates a classifier over the given drag tracker.
func NewClassifier(drag *Drag, sink Sink) *Classifier {
	return &Classifier{
		drag:   drag,
		sink:   sink,
		epochs: make(map[string]*epoch),
	}
}

// HandleControlToken tracks selection state. Called for every host
// control-token event.
func (c *Classifier) HandleControlToken(token document.Token, controlled bool) {
	c.mu.Lock()
	if controlled {
		c.epochs[token.ID()] = &epoch{at: time.Now()}
		c.mu.Unlock()
		return
	}
	delete(c.epochs, token.ID())
	c.mu.Unlock()
	c.drag.Clear(token.ID())
}

// HandleClickLeft wraps the host's own left-click selection handler for
// a token. next runs the host's selection logic; it must always be
// invoked exactly once.
func (c *Classifier) HandleClickLeft(token document.Token, ev *canvas.PointerEvent, next func()) {
	if !token.IsOwner() {
		next()
		return
	}

	// Capture whether this token was already the sole selection before
	// the host mutates it.
	wasSoleBefore := c.isOnlySelected(token)

	next()

	c.drag.Begin(token, ev.Global, Callbacks{
		OnDragStarted: func() {
			if c.sink.IsMenuOpen() {
				c.sink.CloseMenu("drag")
			}
		},
		OnClick: func() {
			c.classifyRelease(token, wasSoleBefore)
		},
	})
}

// HandleRightDown handles a right-click on a token: close any open menu
// and consume the token's selection epoch.
func (c *Classifier) HandleRightDown(token document.Token) {
	if c.sink.IsMenuOpen() {
		c.sink.CloseMenu("right-click")
	}
	c.mu.Lock()
	if e, ok := c.epochs[token.ID()]; ok {
		e.consumed = true
	}
	c.mu.Unlock()
}

// Reset drops all epochs and drag tracking, e.g. on scene change.
func (c *Classifier) Reset() {
	c.mu.Lock()
	c.epochs = make(map[string]*epoch)
	c.mu.Unlock()
	c.drag.Reset()
}

func (c *Classifier) classifyRelease(token document.Token, wasSoleBefore bool) {
	if !c.isOnlySelected(token) {
		return
	}

	c.mu.Lock()
	e := c.epochs[token.ID()]
	freshSelection := e != nil && !e.consumed
	if freshSelection {
		e.consumed = true
	}
	c.mu.Unlock()

	if wasSoleBefore && !freshSelection {
		// Re-click on the already selected token: toggle.
		if c.sink.IsMenuOpenFor(token.ID()) {
			log.Debug().Str("token", token.ID()).Msg("re-click toggle: close")
			c.sink.CloseMenu("toggle")
			return
		}
		log.Debug().Str("token", token.ID()).Msg("re-click toggle: open")
		c.sink.OpenFor(token)
		return
	}

	// Fresh selection: the pointer-up that completed it yields at most
	// one open, never a toggle.
	if settings.GetBool(settings.ShowWeaponMenuOnSelection) {
		log.Debug().Str("token", token.ID()).Msg("fresh selection: open")
		c.sink.OpenFor(token)
	}
}

func (c *Classifier) isOnlySelected(token document.Token) bool {
	controlled := c.sink.ControlledTokens()
	return len(controlled) == 1 && controlled[0].ID() == token.ID()
}
