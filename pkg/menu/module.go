package menu

import (
	"tokencontextmenu/pkg/engine/document"
	"tokencontextmenu/pkg/engine/hooks"
	"tokencontextmenu/pkg/menu/effects"
	"tokencontextmenu/pkg/menu/targeting"
	"tokencontextmenu/pkg/menu/timer"
	"tokencontextmenu/pkg/menu/tooltip"
)

// Init builds the module singletons against the host and binds the
// lifecycle hooks. Call once, when the host reports ready.
func Init(host document.Host, adapter targeting.Adapter) *Coordinator {
	timer.Current = timer.New(host.Ticker())
	tooltip.Current = tooltip.New(host)
	effects.Current = effects.NewManager(host)
	targeting.Current = targeting.NewManager(host, tooltip.Current)

	Current = NewCoordinator(host, timer.Current, effects.Current, targeting.Current, tooltip.Current, adapter)
	Current.BindHooks(hooks.Default)
	return Current
}

// Shutdown tears the singletons down; the close-game path.
func Shutdown() {
	if Current != nil {
		Current.Reset()
	}
	Current = nil
	targeting.Current = nil
	effects.Current = nil
	tooltip.Current = nil
	timer.Current = nil
}
