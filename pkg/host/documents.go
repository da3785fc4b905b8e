package host

import (
	"fmt"
	"sync"

	"tokencontextmenu/pkg/engine/canvas"
	"tokencontextmenu/pkg/engine/document"
	"tokencontextmenu/pkg/engine/notify"
)

// Item is the demo host's concrete item document.
type Item struct {
	id           string
	kind         string
	name         string
	img          string
	status       document.EquipStatus
	favorite     bool
	templateArea bool
	needsTarget  bool
	shots        int
	maxShots     int
	hasShots     bool
	damage       string
	rng          string
	ap           string
}

func (i *Item) ID() string                        { return i.id }
func (i *Item) Type() string                      { return i.kind }
func (i *Item) Name() string                      { return i.name }
func (i *Item) Img() string                       { return i.img }
func (i *Item) EquipStatus() document.EquipStatus { return i.status }
func (i *Item) IsReadied() bool                   { return i.status.Readied() }
func (i *Item) IsFavorite() bool                  { return i.favorite }
func (i *Item) HasTemplateArea() bool             { return i.templateArea }
func (i *Item) Shots() (int, int, bool)           { return i.shots, i.maxShots, i.hasShots }
func (i *Item) Damage() string                    { return i.damage }
func (i *Item) Range() string                     { return i.rng }
func (i *Item) AP() string                        { return i.ap }

func (i *Item) Update(changes map[string]any) error {
	for key, v := range changes {
		switch key {
		case document.FieldEquipStatus:
			n, ok := v.(int)
			if !ok {
				return fmt.Errorf("equip status: unexpected %T", v)
			}
			i.status = document.EquipStatus(n)
		case document.FieldFavorite:
			b, ok := v.(bool)
			if !ok {
				return fmt.Errorf("favorite: unexpected %T", v)
			}
			i.favorite = b
		case document.FieldCurrentShots:
			n, ok := v.(int)
			if !ok {
				return fmt.Errorf("current shots: unexpected %T", v)
			}
			i.shots = n
		default:
			return fmt.Errorf("unknown update field %q", key)
		}
	}
	log.Debug().Str("item", i.id).Interface("changes", changes).Msg("item updated")
	return nil
}

func (i *Item) RenderSheet() {
	notify.Info(fmt.Sprintf("%s — %s", i.name, sheetSummary(i)))
}

func sheetSummary(i *Item) string {
	if i.kind == document.TypePower {
		return "power"
	}
	s := i.damage
	if i.rng != "" {
		s += ", range " + i.rng
	}
	return s
}

// Actor is the demo host's actor document.
type Actor struct {
	id    string
	name  string
	owner bool
	items []*Item
}

func (a *Actor) ID() string    { return a.id }
func (a *Actor) Name() string  { return a.name }
func (a *Actor) IsOwner() bool { return a.owner }

func (a *Actor) Items() []document.Item {
	out := make([]document.Item, len(a.items))
	for i, it := range a.items {
		out[i] = it
	}
	return out
}

func (a *Actor) Item(id string) (document.Item, bool) {
	for _, it := range a.items {
		if it.id == id {
			return it, true
		}
	}
	return nil, false
}

// Token is the demo host's placed token.
type Token struct {
	id         string
	actor      *Actor
	bounds     canvas.Rect
	controlled bool
	mesh       *canvas.Node
	host       *Host
}

func (t *Token) ID() string           { return t.id }
func (t *Token) Name() string         { return t.actor.name }
func (t *Token) Bounds() canvas.Rect  { return t.bounds }
func (t *Token) Center() canvas.Point { return t.bounds.Center() }
func (t *Token) Controlled() bool     { return t.controlled }
func (t *Token) IsOwner() bool        { return t.actor.owner }
func (t *Token) Actor() document.Actor {
	if t.actor == nil {
		return nil
	}
	return t.actor
}
func (t *Token) Mesh() *canvas.Node { return t.mesh }

func (t *Token) SetTarget(targeted, releaseOthers bool) {
	t.host.user.setTarget(t, targeted, releaseOthers)
}

// moveTo repositions the token and its mesh; the demo's stand-in for a
// host-side drag.
func (t *Token) moveTo(x, y float64) {
	t.bounds.X, t.bounds.Y = x, y
	t.mesh.Position = canvas.Point{X: x, Y: y}
}

// User is the demo host's local player.
type User struct {
	mu      sync.Mutex
	targets []*Token
	flags   map[string]any
}

func newUser() *User { return &User{flags: make(map[string]any)} }

func (u *User) Targets() []document.Token {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := make([]document.Token, len(u.targets))
	for i, t := range u.targets {
		out[i] = t
	}
	return out
}

func (u *User) ClearTargets() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.targets = nil
}

func (u *User) GetFlag(key string) (any, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	v, ok := u.flags[key]
	return v, ok
}

func (u *User) SetFlag(key string, value any) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.flags[key] = value
	return nil
}

func (u *User) UnsetFlag(key string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	delete(u.flags, key)
	return nil
}

func (u *User) setTarget(t *Token, targeted, releaseOthers bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if releaseOthers {
		u.targets = nil
	}
	if targeted {
		u.targets = append(u.targets, t)
		return
	}
	for i, cur := range u.targets {
		if cur == t {
			u.targets = append(u.targets[:i], u.targets[i+1:]...)
			return
		}
	}
}
