// Package document declares the host-owned entities the menu module
// reads: tokens, actors, items, the user, and the host canvas surface.
// They are interfaces so the core can be exercised against fakes.
package document

import "tokencontextmenu/pkg/engine/canvas"

// EquipStatus is the host system's equip state for a weapon.
type EquipStatus int

const (
	EquipStored    EquipStatus = 0
	EquipCarried   EquipStatus = 1
	EquipOffHand   EquipStatus = 2
	EquipMainHand  EquipStatus = 4
	EquipTwoHanded EquipStatus = 5
)

// Readied reports whether the status counts as equipped (off-hand,
// main-hand or two-handed).
func (s EquipStatus) Readied() bool {
	return s == EquipOffHand || s == EquipMainHand || s == EquipTwoHanded
}

func (s EquipStatus) String() string {
	switch s {
	case EquipStored:
		return "stored"
	case EquipCarried:
		return "carried"
	case EquipOffHand:
		return "off-hand"
	case EquipMainHand:
		return "main-hand"
	case EquipTwoHanded:
		return "two-handed"
	}
	return "unknown"
}

// Item document types the menu cares about.
const (
	TypeWeapon = "weapon"
	TypePower  = "power"
)

// Update keys accepted by Item.Update.
const (
	FieldEquipStatus  = "system.equipStatus"
	FieldFavorite     = "system.favorite"
	FieldCurrentShots = "system.currentShots"
)

// Item is a host-owned document. The module never mutates one except
// through Update.
type Item interface {
	ID() string
	Type() string
	Name() string
	Img() string
	EquipStatus() EquipStatus
	IsReadied() bool
	IsFavorite() bool
	HasTemplateArea() bool
	// Shots returns current and maximum ammunition; ok is false for
	// items without an ammunition pool.
	Shots() (current, max int, ok bool)
	Damage() string
	Range() string
	AP() string
	Update(changes map[string]any) error
	RenderSheet()
}

// Actor owns a collection of items.
type Actor interface {
	ID() string
	Name() string
	IsOwner() bool
	Items() []Item
	Item(id string) (Item, bool)
}

// Token is a placed actor on the canvas.
type Token interface {
	ID() string
	Name() string
	Bounds() canvas.Rect
	Center() canvas.Point
	Controlled() bool
	IsOwner() bool
	Actor() Actor
	// Mesh is the token's interactive scene-graph node.
	Mesh() *canvas.Node
	// SetTarget marks or unmarks this token as the user's target.
	// releaseOthers drops any prior targets first.
	SetTarget(targeted bool, releaseOthers bool)
}

// User is the local player: target set and flag storage.
type User interface {
	Targets() []Token
	ClearTargets()
	GetFlag(key string) (any, bool)
	SetFlag(key string, value any) error
	UnsetFlag(key string) error
}

// Host is the canvas surface the module runs against. Named containers
// the module attaches under these layers are removed by name on close.
type Host interface {
	Ready() bool
	SceneID() string
	Stage() *canvas.Node
	// TokenLayer is where menus attach so they render with tokens.
	TokenLayer() *canvas.Node
	// BackgroundLayers are blurred in equipment mode: background, tiles,
	// drawings, notes. UI overlay layers are deliberately absent.
	BackgroundLayers() []*canvas.Node
	Tokens() []Token
	ControlledTokens() []Token
	Token(id string) (Token, bool)
	GridSize() float64
	ScreenSize() (w, h float64)
	Ticker() *canvas.Ticker
	Camera() canvas.Camera
	Textures() canvas.TextureLoader
	User() User
	// TokenHUDVisible reports whether the host's native token HUD is open.
	TokenHUDVisible() bool
	// SuppressContextMenu toggles the host's default right-click menu.
	SuppressContextMenu(suppress bool)
}
