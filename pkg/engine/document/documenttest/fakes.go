// Package documenttest provides in-memory fakes of the host documents
// for exercising the menu core without a real canvas host.
package documenttest

import (
	"fmt"

	"tokencontextmenu/pkg/engine/canvas"
	"tokencontextmenu/pkg/engine/document"
)

// Item is a configurable fake item. Update applies recognized fields to
// the fake's state so policy round-trips behave like the host.
type Item struct {
	IDVal        string
	TypeVal      string
	NameVal      string
	ImgVal       string
	Status       document.EquipStatus
	Favorite     bool
	TemplateArea bool
	Current      int
	Max          int
	HasShots     bool
	DamageVal    string
	RangeVal     string
	APVal        string

	UpdateErr     error
	Updates       []map[string]any
	SheetRenders  int
}

func (i *Item) ID() string                        { return i.IDVal }
func (i *Item) Type() string                      { return i.TypeVal }
func (i *Item) Name() string                      { return i.NameVal }
func (i *Item) Img() string                       { return i.ImgVal }
func (i *Item) EquipStatus() document.EquipStatus { return i.Status }
func (i *Item) IsReadied() bool                   { return i.Status.Readied() }
func (i *Item) IsFavorite() bool                  { return i.Favorite }
func (i *Item) HasTemplateArea() bool             { return i.TemplateArea }
func (i *Item) Shots() (int, int, bool)           { return i.Current, i.Max, i.HasShots }
func (i *Item) Damage() string                    { return i.DamageVal }
func (i *Item) Range() string                     { return i.RangeVal }
func (i *Item) AP() string                        { return i.APVal }
func (i *Item) RenderSheet()                      { i.SheetRenders++ }

func (i *Item) Update(changes map[string]any) error {
	if i.UpdateErr != nil {
		return i.UpdateErr
	}
	i.Updates = append(i.Updates, changes)
	if v, ok := changes[document.FieldEquipStatus]; ok {
		i.Status = document.EquipStatus(v.(int))
	}
	if v, ok := changes[document.FieldFavorite]; ok {
		i.Favorite = v.(bool)
	}
	if v, ok := changes[document.FieldCurrentShots]; ok {
		i.Current = v.(int)
	}
	return nil
}

// Actor is a fake actor owning fake items.
type Actor struct {
	IDVal   string
	NameVal string
	Owner   bool
	ItemSet []*Item
}

func (a *Actor) ID() string    { return a.IDVal }
func (a *Actor) Name() string  { return a.NameVal }
func (a *Actor) IsOwner() bool { return a.Owner }

func (a *Actor) Items() []document.Item {
	items := make([]document.Item, len(a.ItemSet))
	for i, it := range a.ItemSet {
		items[i] = it
	}
	return items
}

func (a *Actor) Item(id string) (document.Item, bool) {
	for _, it := range a.ItemSet {
		if it.IDVal == id {
			return it, true
		}
	}
	return nil, false
}

// Token is a fake placed token. SetTarget updates the bound user's
// target set the way the host would.
type Token struct {
	IDVal         string
	NameVal       string
	BoundsVal     canvas.Rect
	ControlledVal bool
	Owner         bool
	ActorVal      *Actor
	MeshNode      *canvas.Node
	UserRef       *User
}

func (t *Token) ID() string            { return t.IDVal }
func (t *Token) Name() string          { return t.NameVal }
func (t *Token) Bounds() canvas.Rect   { return t.BoundsVal }
func (t *Token) Center() canvas.Point  { return t.BoundsVal.Center() }
func (t *Token) Controlled() bool      { return t.ControlledVal }
func (t *Token) IsOwner() bool         { return t.Owner }
func (t *Token) Mesh() *canvas.Node    { return t.MeshNode }

func (t *Token) Actor() document.Actor {
	if t.ActorVal == nil {
		return nil
	}
	return t.ActorVal
}

func (t *Token) SetTarget(targeted, releaseOthers bool) {
	if t.UserRef == nil {
		return
	}
	if releaseOthers {
		t.UserRef.TargetSet = nil
	}
	if targeted {
		t.UserRef.TargetSet = append(t.UserRef.TargetSet, t)
	} else {
		for i, tgt := range t.UserRef.TargetSet {
			if tgt == t {
				t.UserRef.TargetSet = append(t.UserRef.TargetSet[:i], t.UserRef.TargetSet[i+1:]...)
				break
			}
		}
	}
}

// User is a fake local player with target and flag storage.
type User struct {
	TargetSet []document.Token
	Flags     map[string]any
	FlagErr   error
}

func NewUser() *User { return &User{Flags: make(map[string]any)} }

func (u *User) Targets() []document.Token { return u.TargetSet }
func (u *User) ClearTargets()             { u.TargetSet = nil }

func (u *User) GetFlag(key string) (any, bool) {
	v, ok := u.Flags[key]
	return v, ok
}

func (u *User) SetFlag(key string, value any) error {
	if u.FlagErr != nil {
		return u.FlagErr
	}
	u.Flags[key] = value
	return nil
}

func (u *User) UnsetFlag(key string) error {
	if u.FlagErr != nil {
		return u.FlagErr
	}
	delete(u.Flags, key)
	return nil
}

// Camera is a fake canvas.Camera recording pan calls.
type AnimateCall struct {
	Center     canvas.Point
	Scale      float64
	DurationMS float64
}

type Camera struct {
	CenterVal    canvas.Point
	ScaleVal     float64
	PanCalls     []AnimateCall
	AnimateCalls []AnimateCall
}

func (c *Camera) View() (canvas.Point, float64) { return c.CenterVal, c.ScaleVal }

func (c *Camera) Pan(center canvas.Point, scale float64) {
	c.CenterVal, c.ScaleVal = center, scale
	c.PanCalls = append(c.PanCalls, AnimateCall{Center: center, Scale: scale})
}

func (c *Camera) AnimatePan(center canvas.Point, scale float64, durationMS float64) {
	c.CenterVal, c.ScaleVal = center, scale
	c.AnimateCalls = append(c.AnimateCalls, AnimateCall{Center: center, Scale: scale, DurationMS: durationMS})
}

// Texture is a fake canvas.Texture.
type Texture struct{ W, H int }

func (t *Texture) Size() (int, int) { return t.W, t.H }

// Textures is a fake loader. Paths in Missing fail; everything else
// resolves synchronously to a fixed-size texture.
type Textures struct {
	Missing map[string]bool
	Loads   []string
}

func (l *Textures) Load(path string, onDone func(canvas.Texture, error)) {
	l.Loads = append(l.Loads, path)
	if l.Missing[path] {
		onDone(nil, fmt.Errorf("texture not found: %s", path))
		return
	}
	onDone(&Texture{W: 64, H: 64}, nil)
}

// Host is a fake document.Host wiring the pieces above together.
type Host struct {
	ReadyVal     bool
	SceneIDVal   string
	StageNode    *canvas.Node
	TokenLayerN  *canvas.Node
	Backgrounds  []*canvas.Node
	TokenList    []*Token
	Grid         float64
	ScreenW      float64
	ScreenH      float64
	TickerVal    *canvas.Ticker
	CameraVal    *Camera
	TexturesVal  *Textures
	UserVal      *User
	HUDVisible   bool
	SuppressedCM bool
}

// NewHost builds a ready host with a stage, a token layer and sane
// defaults for a 100px grid on a 1600x900 screen.
func NewHost() *Host {
	stage := canvas.NewContainer("stage")
	tokens := canvas.NewContainer("tokens")
	background := canvas.NewContainer("background")
	stage.AddChild(background)
	stage.AddChild(tokens)
	return &Host{
		ReadyVal:    true,
		SceneIDVal:  "scene-1",
		StageNode:   stage,
		TokenLayerN: tokens,
		Backgrounds: []*canvas.Node{background},
		Grid:        100,
		ScreenW:     1600,
		ScreenH:     900,
		TickerVal:   canvas.NewTicker(),
		CameraVal:   &Camera{CenterVal: canvas.Point{X: 800, Y: 450}, ScaleVal: 1},
		TexturesVal: &Textures{},
		UserVal:     NewUser(),
	}
}

// AddToken registers a token with the host and attaches its mesh to the
// token layer.
func (h *Host) AddToken(t *Token) *Token {
	if t.MeshNode == nil {
		t.MeshNode = canvas.NewContainer("token-" + t.IDVal)
		t.MeshNode.Position = canvas.Point{X: t.BoundsVal.X, Y: t.BoundsVal.Y}
		t.MeshNode.Width = t.BoundsVal.W
		t.MeshNode.Height = t.BoundsVal.H
		t.MeshNode.EventMode = canvas.EventModeStatic
	}
	t.UserRef = h.UserVal
	h.TokenLayerN.AddChild(t.MeshNode)
	h.TokenList = append(h.TokenList, t)
	return t
}

func (h *Host) Ready() bool                         { return h.ReadyVal }
func (h *Host) SceneID() string                     { return h.SceneIDVal }
func (h *Host) Stage() *canvas.Node                 { return h.StageNode }
func (h *Host) TokenLayer() *canvas.Node            { return h.TokenLayerN }
func (h *Host) BackgroundLayers() []*canvas.Node    { return h.Backgrounds }
func (h *Host) GridSize() float64                   { return h.Grid }
func (h *Host) ScreenSize() (float64, float64)      { return h.ScreenW, h.ScreenH }
func (h *Host) Ticker() *canvas.Ticker              { return h.TickerVal }
func (h *Host) Camera() canvas.Camera               { return h.CameraVal }
func (h *Host) Textures() canvas.TextureLoader      { return h.TexturesVal }
func (h *Host) User() document.User                 { return h.UserVal }
func (h *Host) TokenHUDVisible() bool               { return h.HUDVisible }
func (h *Host) SuppressContextMenu(s bool)          { h.SuppressedCM = s }

func (h *Host) Tokens() []document.Token {
	tokens := make([]document.Token, len(h.TokenList))
	for i, t := range h.TokenList {
		tokens[i] = t
	}
	return tokens
}

func (h *Host) ControlledTokens() []document.Token {
	var controlled []document.Token
	for _, t := range h.TokenList {
		if t.ControlledVal {
			controlled = append(controlled, t)
		}
	}
	return controlled
}

func (h *Host) Token(id string) (document.Token, bool) {
	for _, t := range h.TokenList {
		if t.IDVal == id {
			return t, true
		}
	}
	return nil, false
}
