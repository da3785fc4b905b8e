package menu

import (
	"math"

	"tokencontextmenu/pkg/engine/canvas"
	"tokencontextmenu/pkg/engine/document"
	"tokencontextmenu/pkg/engine/hooks"
	"tokencontextmenu/pkg/menu/settings"
)

// Movement tracker tuning: a token counts as settled after this many
// consecutive frames moving less than the epsilon.
const (
	settleFrames  = 3
	settleEpsilon = 1.0
)

// movementTracker polls a token's center every frame and reopens its
// menu once the token stops moving.
type movementTracker struct {
	coord   *Coordinator
	token   document.Token
	tickID  int
	last    canvas.Point
	settled int
	stopped bool
}

func (t *movementTracker) tick(_ float64) {
	if t.stopped {
		return
	}
	at := t.token.Center()
	dx, dy := at.X-t.last.X, at.Y-t.last.Y
	t.last = at
	if math.Abs(dx) >= settleEpsilon || math.Abs(dy) >= settleEpsilon {
		t.settled = 0
		return
	}
	t.settled++
	if t.settled < settleFrames {
		return
	}
	t.coord.RemoveTracker(t.token.ID())
	if t.coord.IsOnlyControlled(t.token) && !t.coord.host.TokenHUDVisible() {
		coordLog.Debug().Str("token", t.token.ID()).Msg("token settled, reopening menu")
		t.coord.OpenFor(t.token)
	}
}

// AddTracker starts (or restarts) a movement tracker for the token.
func (c *Coordinator) AddTracker(token document.Token) {
	c.RemoveTracker(token.ID())
	t := &movementTracker{coord: c, token: token, last: token.Center()}
	c.mu.Lock()
	c.trackers[token.ID()] = t
	c.mu.Unlock()
	t.tickID = c.host.Ticker().Add(t.tick)
}

// RemoveTracker stops the token's tracker, if any.
func (c *Coordinator) RemoveTracker(tokenID string) {
	c.mu.Lock()
	t := c.trackers[tokenID]
	delete(c.trackers, tokenID)
	c.mu.Unlock()
	if t != nil {
		t.stopped = true
		c.host.Ticker().Remove(t.tickID)
	}
}

// StopTrackers stops every movement tracker.
func (c *Coordinator) StopTrackers() {
	c.mu.Lock()
	ids := make([]string, 0, len(c.trackers))
	for id := range c.trackers {
		ids = append(ids, id)
	}
	c.mu.Unlock()
	for _, id := range ids {
		c.RemoveTracker(id)
	}
}

// TrackerCount returns how many movement trackers are running.
func (c *Coordinator) TrackerCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.trackers)
}

// BindHooks subscribes the coordinator to the host's lifecycle events.
// The hook bus recovers handler panics, so a failure in one handler
// never reaches the host.
func (c *Coordinator) BindHooks(bus *hooks.Bus) {
	bus.On(hooks.EventControlToken, func(args ...any) {
		token, ok := arg[document.Token](args, 0)
		if !ok {
			return
		}
		controlled, _ := arg[bool](args, 1)
		c.InvalidateControlled()
		c.classifier.HandleControlToken(token, controlled)
	})

	bus.On(hooks.EventUpdateToken, func(args ...any) {
		token, ok := arg[document.Token](args, 0)
		if !ok {
			return
		}
		moved, _ := arg[bool](args, 1)
		if !moved || !token.Controlled() {
			return
		}
		c.CloseMenu("token moved")
		c.drag.Clear(token.ID())
		if settings.GetBool(settings.ReopenMenuAfterDrag) {
			c.AddTracker(token)
		}
	})

	bus.On(hooks.EventRenderTokenHUD, func(args ...any) {
		c.CloseMenu("token HUD opened")
		c.StopTrackers()
	})

	bus.On(hooks.EventDeleteToken, func(args ...any) {
		tokenID, ok := arg[string](args, 0)
		if !ok {
			return
		}
		if c.MenuTokenID() == tokenID {
			c.CloseMenu("token deleted")
		}
		c.RemoveTracker(tokenID)
	})

	bus.On(hooks.EventCanvasReady, func(args ...any) {
		c.Reset()
	})

	bus.On(hooks.EventCloseGame, func(args ...any) {
		c.Reset()
	})

	c.targets.BindHooks(bus, HookMenuClosed)
}

func arg[T any](args []any, i int) (T, bool) {
	var zero T
	if i >= len(args) {
		return zero, false
	}
	v, ok := args[i].(T)
	if !ok {
		return zero, false
	}
	return v, ok
}
