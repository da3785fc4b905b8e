// Package host is a self-contained ebiten host for the weapon menu: a
// small tabletop scene with a stage graph, camera, pointer routing and
// demo token documents. It stands in for the virtual-tabletop client the
// module normally runs inside.
package host

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"tokencontextmenu/pkg/engine/canvas"
	"tokencontextmenu/pkg/engine/document"
	"tokencontextmenu/pkg/engine/hooks"
	"tokencontextmenu/pkg/engine/logging"
	"tokencontextmenu/pkg/menu"
)

var log = logging.For("host")

const (
	defaultScreenW = 1280
	defaultScreenH = 800
	gridSize       = 100.0
	frameMS        = 1000.0 / 60.0
)

// Host implements ebiten.Game and the document host surface the menu
// module runs against.
type Host struct {
	stage      *canvas.Node
	background *canvas.Node
	tokenLayer *canvas.Node

	tokens  []*Token
	user    *User
	camera  *demoCamera
	ticker  *canvas.Ticker
	loader  *textureLoader
	sceneID string
	ready   bool

	screenW, screenH int
	hudVisible       bool
	suppressCM       bool

	// tokenDrag is the host's own move gesture, independent of the
	// menu module's click/drag classification.
	tokenDrag *tokenDrag

	lastCursor canvas.Point
	hovered    *canvas.Node
	downNode   *canvas.Node
}

type tokenDrag struct {
	token  *Token
	offset canvas.Point
	moved  bool
}

// New builds the host with an empty scene. Populate it with AddToken
// before Run.
func New(width, height int) *Host {
	if width <= 0 {
		width = defaultScreenW
	}
	if height <= 0 {
		height = defaultScreenH
	}
	stage := canvas.NewContainer("stage")
	background := canvas.NewContainer("background")
	tokenLayer := canvas.NewContainer("tokens")
	stage.AddChild(background)
	stage.AddChild(tokenLayer)

	h := &Host{
		stage:      stage,
		background: background,
		tokenLayer: tokenLayer,
		user:       newUser(),
		ticker:     canvas.NewTicker(),
		loader:     newTextureLoader(),
		sceneID:    "demo-scene",
		screenW:    width,
		screenH:    height,
	}
	h.camera = newDemoCamera(canvas.Point{X: float64(width) / 2, Y: float64(height) / 2}, 1)
	return h
}

// Host surface.

func (h *Host) Ready() bool                       { return h.ready }
func (h *Host) SceneID() string                   { return h.sceneID }
func (h *Host) Stage() *canvas.Node               { return h.stage }
func (h *Host) TokenLayer() *canvas.Node          { return h.tokenLayer }
func (h *Host) BackgroundLayers() []*canvas.Node  { return []*canvas.Node{h.background} }
func (h *Host) GridSize() float64                 { return gridSize }
func (h *Host) ScreenSize() (float64, float64)    { return float64(h.screenW), float64(h.screenH) }
func (h *Host) Ticker() *canvas.Ticker            { return h.ticker }
func (h *Host) Camera() canvas.Camera             { return h.camera }
func (h *Host) Textures() canvas.TextureLoader    { return h.loader }
func (h *Host) User() document.User               { return h.user }
func (h *Host) TokenHUDVisible() bool             { return h.hudVisible }
func (h *Host) SuppressContextMenu(suppress bool) { h.suppressCM = suppress }

func (h *Host) Tokens() []document.Token {
	out := make([]document.Token, len(h.tokens))
	for i, t := range h.tokens {
		out[i] = t
	}
	return out
}

func (h *Host) ControlledTokens() []document.Token {
	var out []document.Token
	for _, t := range h.tokens {
		if t.controlled {
			out = append(out, t)
		}
	}
	return out
}

func (h *Host) Token(id string) (document.Token, bool) {
	for _, t := range h.tokens {
		if t.id == id {
			return t, true
		}
	}
	return nil, false
}

// AddToken places an actor on the scene and wires its mesh into the
// menu module's gesture classifier.
func (h *Host) AddToken(id string, actor *Actor, x, y, w, hgt float64) *Token {
	t := &Token{
		id:     id,
		actor:  actor,
		bounds: canvas.Rect{X: x, Y: y, W: w, H: hgt},
		host:   h,
	}
	mesh := canvas.NewContainer("token-" + id)
	mesh.Position = canvas.Point{X: x, Y: y}
	mesh.Width, mesh.Height = w, hgt
	mesh.EventMode = canvas.EventModeStatic
	mesh.HitArea = &canvas.Rect{X: 0, Y: 0, W: w, H: hgt}

	art := canvas.NewSprite("art", w, hgt, nil)
	h.loader.Load("tokens/"+id+".webp", func(tex canvas.Texture, err error) {
		if err == nil {
			art.Texture = tex
		}
	})
	mesh.AddChild(art)
	t.mesh = mesh
	h.tokenLayer.AddChild(mesh)
	h.tokens = append(h.tokens, t)

	mesh.On(canvas.EventPointerDown, func(ev *canvas.PointerEvent) {
		if ev.Button == canvas.ButtonRight {
			return
		}
		h.onTokenLeftDown(t, ev)
	})
	mesh.On(canvas.EventRightDown, func(ev *canvas.PointerEvent) {
		h.onTokenRightDown(t)
	})
	return t
}

// RemoveToken deletes a token from the scene and announces it.
func (h *Host) RemoveToken(id string) {
	for i, t := range h.tokens {
		if t.id != id {
			continue
		}
		if t.controlled {
			t.controlled = false
			hooks.Call(hooks.EventControlToken, document.Token(t), false)
		}
		t.mesh.Destroy(true)
		h.tokens = append(h.tokens[:i], h.tokens[i+1:]...)
		hooks.Call(hooks.EventDeleteToken, id)
		return
	}
}

// Run declares the scene ready and hands control to ebiten.
func (h *Host) Run(title string) error {
	ebiten.SetWindowSize(h.screenW, h.screenH)
	ebiten.SetWindowTitle(title)
	h.ready = true
	hooks.Call(hooks.EventReady)
	hooks.Call(hooks.EventCanvasReady)
	if err := ebiten.RunGame(h); err != nil {
		return fmt.Errorf("run game: %w", err)
	}
	return nil
}

// Layout implements ebiten.Game.
func (h *Host) Layout(outsideWidth, outsideHeight int) (int, int) {
	return h.screenW, h.screenH
}

// Update implements ebiten.Game: pointer and key routing, then the
// frame tick that drives timers, queued operations and animations.
func (h *Host) Update() error {
	cx, cy := ebiten.CursorPosition()
	cursor := h.screenToStage(canvas.Point{X: float64(cx), Y: float64(cy)})

	if cursor != h.lastCursor {
		h.lastCursor = cursor
		h.pointerMoved(cursor)
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		h.pointerDown(cursor, canvas.ButtonLeft)
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		h.pointerUp(cursor)
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) {
		h.rightDown(cursor)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		hooks.Call(hooks.EventKeyDown, "Escape")
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		h.toggleHUD()
	}

	h.camera.tick(frameMS)
	h.ticker.Tick(frameMS)
	return nil
}

// pointerMoved feeds hover transitions, the drag tracker and any
// host-side token move in progress.
func (h *Host) pointerMoved(cursor canvas.Point) {
	if h.tokenDrag != nil {
		d := h.tokenDrag
		d.token.moveTo(cursor.X-d.offset.X, cursor.Y-d.offset.Y)
		d.moved = true
	}

	ev := &canvas.PointerEvent{Global: cursor}
	canvas.DispatchAll(h.stage, canvas.EventPointerMove, ev)

	target := canvas.HitTest(h.stage, cursor)
	if target != h.hovered {
		if h.hovered != nil && !h.hovered.Destroyed() {
			h.hovered.Emit(canvas.EventPointerOut, &canvas.PointerEvent{Global: cursor})
		}
		if target != nil {
			target.Emit(canvas.EventPointerOver, &canvas.PointerEvent{Global: cursor})
		}
		h.hovered = target
	}
}

func (h *Host) pointerDown(cursor canvas.Point, button canvas.PointerButton) {
	ev := &canvas.PointerEvent{Global: cursor, Button: button}
	target := canvas.Dispatch(h.stage, canvas.EventPointerDown, ev)
	if target == nil {
		// Empty canvas: the stage itself is the click-outside surface.
		h.stage.Emit(canvas.EventPointerDown, ev)
	}
	h.downNode = target
}

func (h *Host) pointerUp(cursor canvas.Point) {
	if d := h.tokenDrag; d != nil {
		h.tokenDrag = nil
		if d.moved {
			hooks.Call(hooks.EventUpdateToken, document.Token(d.token), true)
		}
	}

	ev := &canvas.PointerEvent{Global: cursor, Button: canvas.ButtonLeft}
	target := canvas.Dispatch(h.stage, canvas.EventPointerUp, ev)
	if h.downNode != nil && h.downNode != target && !h.downNode.Destroyed() {
		h.downNode.Emit(canvas.EventPointerUpOutside, &canvas.PointerEvent{Global: cursor, Button: canvas.ButtonLeft})
	}
	h.downNode = nil
}

func (h *Host) rightDown(cursor canvas.Point) {
	ev := &canvas.PointerEvent{Global: cursor, Button: canvas.ButtonRight}
	target := canvas.Dispatch(h.stage, canvas.EventRightDown, ev)
	if target == nil {
		h.stage.Emit(canvas.EventRightDown, ev)
	}
	// The host's own right-click menu would open here; honor the
	// module's suppression request.
	if !h.suppressCM && target == nil {
		log.Debug().Msg("host context menu (demo no-op)")
	}
}

// onTokenLeftDown routes a token click through the module's classifier,
// with the host's native selection as the wrapped step.
func (h *Host) onTokenLeftDown(t *Token, ev *canvas.PointerEvent) {
	begin := func() {
		h.selectToken(t)
		h.tokenDrag = &tokenDrag{
			token:  t,
			offset: canvas.Point{X: ev.Global.X - t.bounds.X, Y: ev.Global.Y - t.bounds.Y},
		}
	}
	if menu.Current == nil {
		begin()
		return
	}
	menu.Current.Classifier().HandleClickLeft(t, ev, begin)
}

func (h *Host) onTokenRightDown(t *Token) {
	if menu.Current != nil {
		menu.Current.Classifier().HandleRightDown(t)
	}
}

// selectToken makes t the sole controlled token, firing control hooks
// the way the real host does: releases first, then the new control.
func (h *Host) selectToken(t *Token) {
	for _, other := range h.tokens {
		if other != t && other.controlled {
			other.controlled = false
			hooks.Call(hooks.EventControlToken, document.Token(other), false)
		}
	}
	if !t.controlled {
		t.controlled = true
		hooks.Call(hooks.EventControlToken, document.Token(t), true)
	}
}

func (h *Host) toggleHUD() {
	h.hudVisible = !h.hudVisible
	if h.hudVisible {
		hooks.Call(hooks.EventRenderTokenHUD)
	}
	log.Debug().Bool("visible", h.hudVisible).Msg("token HUD toggled")
}

// screenToStage converts a window coordinate into stage space through
// the camera transform.
func (h *Host) screenToStage(p canvas.Point) canvas.Point {
	center, scale := h.camera.View()
	return canvas.Point{
		X: center.X + (p.X-float64(h.screenW)/2)/scale,
		Y: center.Y + (p.Y-float64(h.screenH)/2)/scale,
	}
}

// stageToScreen is the inverse transform, used by the renderer.
func (h *Host) stageToScreen(p canvas.Point) canvas.Point {
	center, scale := h.camera.View()
	return canvas.Point{
		X: (p.X-center.X)*scale + float64(h.screenW)/2,
		Y: (p.Y-center.Y)*scale + float64(h.screenH)/2,
	}
}
