package menu

import (
	"errors"
	"sync"

	"github.com/leonelquinteros/gotext"

	"tokencontextmenu/pkg/engine/canvas"
	"tokencontextmenu/pkg/engine/document"
	"tokencontextmenu/pkg/engine/hooks"
	"tokencontextmenu/pkg/engine/logging"
	"tokencontextmenu/pkg/menu/builder"
	"tokencontextmenu/pkg/menu/equipment"
	"tokencontextmenu/pkg/menu/fsm"
	"tokencontextmenu/pkg/menu/queue"
	"tokencontextmenu/pkg/menu/settings"
)

const (
	containerPrefix = "tokencontextmenu-menu-"
	// anchorGap is the vertical offset between the token's bottom edge
	// and the menu's top edge.
	anchorGap = 10.0
)

var instLog = logging.For("instance")

// InstanceStatus is a diagnostic snapshot of one menu instance.
type InstanceStatus struct {
	State          fsm.State
	ContainerValid bool
	TokenID        string
	Queue          queue.Status
	HasListeners   bool
}

// Instance is one token's open menu: container, grid, event bindings
// and lifecycle state. All mutation happens through its operation queue
// so render and close never interleave.
type Instance struct {
	token   document.Token
	host    document.Host
	coord   *Coordinator
	machine *fsm.Machine
	ops     *queue.Queue

	mu         sync.Mutex
	container  *canvas.Node
	built      *builder.Built
	expanded   bool
	escapeHook int
	stageBound bool
}

// NewInstance creates a closed menu instance for the token.
func NewInstance(token document.Token, host document.Host, coord *Coordinator) *Instance {
	return &Instance{
		token:   token,
		host:    host,
		coord:   coord,
		machine: fsm.New(coord.timers),
		ops:     queue.New(host.Ticker()),
	}
}

// Token returns the token this menu belongs to.
func (i *Instance) Token() document.Token { return i.token }

// Rendered reports whether the menu is open or mid-transition.
func (i *Instance) Rendered() bool { return i.machine.IsActive() }

// Render enqueues the open sequence.
func (i *Instance) Render() *queue.Pending {
	return i.ops.Enqueue("render", i.open)
}

// Close enqueues the close sequence.
func (i *Instance) Close(reason string) *queue.Pending {
	return i.ops.Enqueue("close", func() error { return i.close(reason) })
}

// Status returns a diagnostic snapshot.
func (i *Instance) Status() InstanceStatus {
	i.mu.Lock()
	defer i.mu.Unlock()
	return InstanceStatus{
		State:          i.machine.State(),
		ContainerValid: i.containerValidLocked(),
		TokenID:        i.token.ID(),
		Queue:          i.ops.Status(),
		HasListeners:   i.stageBound,
	}
}

func (i *Instance) containerValidLocked() bool {
	c := i.container
	return c != nil && !c.Destroyed() && c.Parent() != nil && !c.Parent().Destroyed()
}

func (i *Instance) open() error {
	if other := i.coord.Menu(); other != nil && other != i {
		if other.token.ID() == i.token.ID() {
			return nil
		}
		if err := other.close("replaced"); err != nil {
			instLog.Warn().Err(err).Msg("closing prior menu failed, cleaning up")
			other.EmergencyCleanup()
		}
	}
	if !i.machine.TransitionTo(fsm.StateOpening) {
		return nil
	}
	if err := i.doOpen(); err != nil {
		i.machine.TransitionTo(fsm.StateError)
		i.EmergencyCleanup()
		return err
	}
	if !i.machine.TransitionTo(fsm.StateOpen) {
		i.EmergencyCleanup()
		return errors.New("menu state diverged during open")
	}
	return nil
}

func (i *Instance) doOpen() error {
	i.coord.SetMenu(i)
	i.coord.MarkOpened()

	b := i.token.Bounds()
	c := canvas.NewContainer(containerPrefix + i.token.ID())
	c.Position = canvas.Point{X: b.X + b.W/2, Y: b.Y + b.H + anchorGap}
	i.host.TokenLayer().AddChild(c)

	entries, meta := MenuEntries(i.token, i.expanded)
	built := builder.Build(c, entries, meta, i.host, i.expanded)

	if c.Destroyed() || c.Parent() == nil || c.Parent().Destroyed() {
		return errors.New("menu container detached during build")
	}

	i.mu.Lock()
	i.container = c
	i.built = built
	i.mu.Unlock()

	i.bindIcons(built)
	i.bindStage()
	i.host.SuppressContextMenu(true)

	tokenID := i.token.ID()
	i.coord.timers.Delay(func() {
		hooks.Call(HookMenuRendered, tokenID)
	}, 0, "menu-rendered")

	instLog.Debug().Str("token", tokenID).Bool("expanded", i.expanded).Msg("menu opened")
	return nil
}

func (i *Instance) close(reason string) error {
	switch i.machine.State() {
	case fsm.StateClosed, fsm.StateClosing:
		return nil
	case fsm.StateError:
		i.EmergencyCleanup()
		return nil
	}
	if !i.machine.TransitionTo(fsm.StateClosing) {
		return nil
	}
	instLog.Debug().Str("token", i.token.ID()).Str("reason", reason).Msg("closing menu")

	i.mu.Lock()
	wasExpanded := i.expanded
	i.expanded = false
	c := i.container
	i.container = nil
	i.built = nil
	i.mu.Unlock()

	if wasExpanded {
		i.coord.effects.ExitEquipmentMode()
	}
	i.coord.tips.Hide()
	i.unbindStage()
	if c != nil {
		c.Destroy(true)
	}
	i.host.SuppressContextMenu(false)
	i.coord.ClearMenu(i)

	i.machine.TransitionTo(fsm.StateClosed)
	hooks.Call(HookMenuClosed, i.token.ID())
	return nil
}

// EmergencyCleanup is the exception-suppressing teardown of last
// resort. Idempotent; leaves the instance in CLOSED.
func (i *Instance) EmergencyCleanup() {
	defer func() {
		if r := recover(); r != nil {
			instLog.Error().Interface("panic", r).Msg("panic during emergency cleanup")
		}
	}()

	i.mu.Lock()
	c := i.container
	i.container = nil
	i.built = nil
	i.expanded = false
	i.mu.Unlock()

	i.unbindStage()
	i.coord.tips.Hide()
	i.coord.effects.EmergencyCleanup()
	if c != nil {
		c.Destroy(true)
	}
	i.host.SuppressContextMenu(false)
	i.coord.ClearMenu(i)
	i.machine.ForceClosed()
}

// Rebuild refreshes the grid in place, keeping the outer container and
// its anchor. Used by the expand toggle and by item updates.
func (i *Instance) Rebuild() *queue.Pending {
	return i.ops.Enqueue("rebuild", i.rebuild)
}

func (i *Instance) rebuild() error {
	i.mu.Lock()
	c := i.container
	valid := i.containerValidLocked()
	expanded := i.expanded
	i.mu.Unlock()
	if !valid || !i.machine.IsActive() {
		return nil
	}

	entries, meta := MenuEntries(i.token, expanded)
	built := builder.Build(c, entries, meta, i.host, expanded)

	i.mu.Lock()
	i.built = built
	i.mu.Unlock()
	i.bindIcons(built)
	return nil
}

func (i *Instance) toggleExpanded() {
	i.mu.Lock()
	i.expanded = !i.expanded
	expanded := i.expanded
	i.mu.Unlock()

	if expanded {
		i.coord.effects.EnterEquipmentMode(i.token)
	} else {
		i.coord.effects.ExitEquipmentMode()
	}
	i.Rebuild()
	hooks.Call(HookSectionToggled, SectionToggle{Section: "all", Expanded: expanded, TokenID: i.token.ID()})
}

func (i *Instance) bindIcons(built *builder.Built) {
	for id, icon := range built.Icons {
		id := id
		icon.On(canvas.EventPointerOver, func(ev *canvas.PointerEvent) {
			built.SetHover(id, true)
			i.showTooltip(id, ev.Global)
		})
		icon.On(canvas.EventPointerOut, func(ev *canvas.PointerEvent) {
			built.SetHover(id, false)
			i.coord.tips.Hide()
		})
		icon.On(canvas.EventPointerDown, func(ev *canvas.PointerEvent) {
			ev.StopPropagation()
			if ev.Button == canvas.ButtonRight {
				i.openSheet(id)
				return
			}
			if ev.Button == canvas.ButtonLeft {
				i.handleIconClick(id)
			}
		})
		icon.On(canvas.EventRightDown, func(ev *canvas.PointerEvent) {
			ev.StopPropagation()
			i.openSheet(id)
		})
	}
	if built.Expand != nil {
		built.Expand.On(canvas.EventPointerDown, func(ev *canvas.PointerEvent) {
			ev.StopPropagation()
			if ev.Button == canvas.ButtonLeft {
				i.toggleExpanded()
			}
		})
	}
}

// handleIconClick routes a left-click per the current mode: equipment
// mode cycles states, normal mode rolls readied items and readies the
// rest.
func (i *Instance) handleIconClick(id string) {
	actor := i.token.Actor()
	if actor == nil {
		return
	}
	item, ok := actor.Item(id)
	if !ok {
		return
	}

	i.mu.Lock()
	equipmentMode := i.expanded
	i.mu.Unlock()

	if equipmentMode {
		switch item.Type() {
		case document.TypeWeapon:
			if equipment.CycleEquipStatus(actor, id) {
				i.Rebuild()
			}
		case document.TypePower:
			if equipment.TogglePowerFavorite(actor, id) {
				i.Rebuild()
			}
		}
		return
	}

	// hideMenu closes synchronously: a targeting session started after a
	// queued close would be torn down by its own menu-closed signal.
	hideMenu := func() {
		if err := i.close("roll"); err != nil {
			instLog.Warn().Err(err).Msg("closing menu before roll failed")
		}
	}

	switch item.Type() {
	case document.TypeWeapon:
		if item.IsReadied() {
			// An empty weapon reloads instead of rolling.
			if cur, _, hasShots := item.Shots(); hasShots && cur == 0 {
				if equipment.Reload(actor, id, i.coord.adapter) {
					i.Rebuild()
				}
				return
			}
			i.coord.targets.BeginWeaponRoll(i.token, id, i.coord.adapter, hideMenu)
			return
		}
		if equipment.Equip(actor, id) {
			i.Rebuild()
		}
	case document.TypePower:
		if item.IsFavorite() {
			i.coord.targets.BeginWeaponRoll(i.token, id, i.coord.adapter, hideMenu)
			return
		}
		if equipment.TogglePowerFavorite(actor, id) {
			i.Rebuild()
		}
	}
}

func (i *Instance) openSheet(id string) {
	actor := i.token.Actor()
	if actor == nil {
		return
	}
	if item, ok := actor.Item(id); ok {
		item.RenderSheet()
	}
}

func (i *Instance) showTooltip(id string, at canvas.Point) {
	actor := i.token.Actor()
	if actor == nil {
		return
	}
	item, ok := actor.Item(id)
	if !ok {
		return
	}
	lines := []string{item.Name()}
	if settings.GetBool(settings.DetailedWeaponTooltips) {
		if d := item.Damage(); d != "" {
			lines = append(lines, gotext.Get("Damage: %s", d))
		}
		if r := item.Range(); r != "" {
			lines = append(lines, gotext.Get("Range: %s", r))
		}
		if ap := item.AP(); ap != "" {
			lines = append(lines, gotext.Get("AP: %s", ap))
		}
		if cur, max, ok := item.Shots(); ok {
			lines = append(lines, gotext.Get("Shots: %d/%d", cur, max))
		}
	}
	i.coord.tips.Show(lines, at)
}

func (i *Instance) bindStage() {
	i.mu.Lock()
	if i.stageBound {
		i.mu.Unlock()
		return
	}
	i.stageBound = true
	i.mu.Unlock()

	stage := i.host.Stage()
	stage.On(canvas.EventPointerDown, i.onStagePointer)
	stage.On(canvas.EventRightDown, i.onStagePointer)
	i.escapeHook = hooks.On(hooks.EventKeyDown, func(args ...any) {
		if len(args) > 0 && args[0] == "Escape" && i.machine.State() == fsm.StateOpen {
			i.Close("escape")
		}
	})
}

func (i *Instance) unbindStage() {
	i.mu.Lock()
	bound := i.stageBound
	i.stageBound = false
	hook := i.escapeHook
	i.escapeHook = 0
	i.mu.Unlock()
	if !bound {
		return
	}
	stage := i.host.Stage()
	stage.Off(canvas.EventPointerDown)
	stage.Off(canvas.EventRightDown)
	if hook != 0 {
		hooks.Off(hooks.EventKeyDown, hook)
	}
}

// onStagePointer closes the menu when a press lands outside it, unless
// the press is the same one that just opened it.
func (i *Instance) onStagePointer(ev *canvas.PointerEvent) {
	if i.machine.State() != fsm.StateOpen {
		return
	}
	if i.coord.WithinDebounce() {
		return
	}
	i.mu.Lock()
	c := i.container
	i.mu.Unlock()
	if c != nil && !c.Destroyed() && c.ContainsGlobal(ev.Global) {
		return
	}
	i.Close("click outside")
}
