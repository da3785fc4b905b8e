// Package menu ties the pieces together: item-list assembly, the menu
// instance lifecycle, the coordinator singleton and the host-event
// wiring.
package menu

// Hook names broadcast to the host for other modules to observe.
const (
	HookMenuRendered   = "tokencontextmenu.weaponMenuRendered"
	HookMenuClosed     = "tokencontextmenu.weaponMenuClosed"
	HookSectionToggled = "tokencontextmenu.sectionToggled"
)

// SectionToggle is the payload of HookSectionToggled.
type SectionToggle struct {
	Section  string
	Expanded bool
	TokenID  string
}
