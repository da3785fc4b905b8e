package host

import (
	"bytes"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/gofont/goregular"

	"tokencontextmenu/pkg/engine/canvas"
)

var (
	colorBackground = color.RGBA{0x1a, 0x1d, 0x24, 0xff}
	colorGrid       = color.RGBA{0x2c, 0x31, 0x3c, 0xff}
	colorControlled = color.RGBA{0xff, 0x98, 0x00, 0xff}
	colorTargeted   = color.RGBA{0xff, 0x3d, 0x3d, 0xff}
)

var sansFontSource = mustFontSource(goregular.TTF)

func mustFontSource(ttf []byte) *text.GoTextFaceSource {
	src, err := text.NewGoTextFaceSource(bytes.NewReader(ttf))
	if err != nil {
		panic(err)
	}
	return src
}

// appendRoundedRect adds a rounded rectangle to the path. (x, y) is
// top-left; w, h are size; r is corner radius.
func appendRoundedRect(p *vector.Path, x, y, w, h, r float32) {
	if r > w/2 {
		r = w / 2
	}
	if r > h/2 {
		r = h / 2
	}
	p.MoveTo(x+r, y)
	p.LineTo(x+w-r, y)
	p.ArcTo(x+w, y, x+w, y+r, r)
	p.LineTo(x+w, y+h-r)
	p.ArcTo(x+w, y+h, x+w-r, y+h, r)
	p.LineTo(x+r, y+h)
	p.ArcTo(x, y+h, x, y+h-r, r)
	p.LineTo(x, y+r)
	p.ArcTo(x, y, x+r, y, r)
	p.Close()
}

func fillRoundedRect(screen *ebiten.Image, x, y, w, h, r float32, c color.RGBA) {
	if c.A == 0 {
		return
	}
	var path vector.Path
	appendRoundedRect(&path, x, y, w, h, r)
	opts := &vector.DrawPathOptions{AntiAlias: true}
	opts.ColorScale.ScaleWithColor(c)
	vector.FillPath(screen, &path, nil, opts)
}

func strokeRoundedRect(screen *ebiten.Image, x, y, w, h, r, width float32, c color.RGBA) {
	if c.A == 0 || width <= 0 {
		return
	}
	var path vector.Path
	appendRoundedRect(&path, x, y, w, h, r)
	strokeOpts := &vector.StrokeOptions{Width: width, MiterLimit: 10}
	opts := &vector.DrawPathOptions{AntiAlias: true}
	opts.ColorScale.ScaleWithColor(c)
	vector.StrokePath(screen, &path, strokeOpts, opts)
}

// Draw implements ebiten.Game: background, grid, then the stage graph
// under the camera transform.
func (h *Host) Draw(screen *ebiten.Image) {
	screen.Fill(colorBackground)
	h.drawGrid(screen)
	h.drawNode(screen, h.stage, canvas.Point{}, 1)
	h.drawTokenRings(screen)
}

func (h *Host) drawGrid(screen *ebiten.Image) {
	_, scale := h.camera.View()
	step := gridSize * scale
	if step < 8 {
		return
	}
	origin := h.stageToScreen(canvas.Point{})
	w, hgt := float64(h.screenW), float64(h.screenH)

	var path vector.Path
	for x := mod(origin.X, step); x < w; x += step {
		path.MoveTo(float32(x), 0)
		path.LineTo(float32(x), float32(hgt))
	}
	for y := mod(origin.Y, step); y < hgt; y += step {
		path.MoveTo(0, float32(y))
		path.LineTo(float32(w), float32(y))
	}
	strokeOpts := &vector.StrokeOptions{Width: 1}
	opts := &vector.DrawPathOptions{}
	opts.ColorScale.ScaleWithColor(colorGrid)
	vector.StrokePath(screen, &path, strokeOpts, opts)
}

func mod(v, step float64) float64 {
	v = math.Mod(v, step)
	if v < 0 {
		v += step
	}
	return v
}

// drawNode renders one node and its children. parentPos is the parent's
// global position in stage space; alpha is the accumulated opacity.
func (h *Host) drawNode(screen *ebiten.Image, n *canvas.Node, parentPos canvas.Point, alpha float64) {
	if n == nil || n.Destroyed() || !n.Visible {
		return
	}
	global := canvas.Point{X: parentPos.X + n.Position.X, Y: parentPos.Y + n.Position.Y}
	alpha *= n.Alpha

	if alpha > 0 {
		switch n.Kind {
		case canvas.KindShape:
			h.drawShape(screen, n, global, alpha)
		case canvas.KindSprite:
			h.drawSprite(screen, n, global, alpha)
		case canvas.KindText:
			h.drawText(screen, n, global, alpha)
		}
	}
	for _, c := range n.Children() {
		h.drawNode(screen, c, global, alpha)
	}
}

func (h *Host) drawShape(screen *ebiten.Image, n *canvas.Node, global canvas.Point, alpha float64) {
	_, camScale := h.camera.View()
	p := h.stageToScreen(global)
	s := float32(camScale * n.Scale)
	w := float32(n.Width) * s
	hgt := float32(n.Height) * s
	r := float32(n.Shape.Radius) * s

	fill := scaleAlpha(n.Shape.Fill, alpha)
	stroke := scaleAlpha(n.Shape.Stroke, alpha)
	fillRoundedRect(screen, float32(p.X), float32(p.Y), w, hgt, r, fill)
	strokeRoundedRect(screen, float32(p.X), float32(p.Y), w, hgt, r, float32(n.Shape.StrokeWidth)*s, stroke)
}

func (h *Host) drawSprite(screen *ebiten.Image, n *canvas.Node, global canvas.Point, alpha float64) {
	tex, ok := n.Texture.(*texture)
	if !ok || tex == nil {
		return
	}
	_, camScale := h.camera.View()
	p := h.stageToScreen(global)
	tw, th := tex.Size()
	if tw == 0 || th == 0 {
		return
	}
	sx := n.Width * n.Scale * camScale / float64(tw)
	sy := n.Height * n.Scale * camScale / float64(th)

	blur := blurStrength(n)
	if blur > 0 {
		// Cheap blur: layered translucent offsets instead of a kernel.
		for _, off := range [][2]float64{{-blur, 0}, {blur, 0}, {0, -blur}, {0, blur}} {
			op := &ebiten.DrawImageOptions{}
			op.GeoM.Scale(sx, sy)
			op.GeoM.Translate(p.X+off[0]*camScale, p.Y+off[1]*camScale)
			op.ColorScale.ScaleAlpha(float32(alpha) * 0.2)
			screen.DrawImage(tex.img, op)
		}
		alpha *= 0.4
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(sx, sy)
	op.GeoM.Translate(p.X, p.Y)
	op.ColorScale.ScaleAlpha(float32(alpha))
	screen.DrawImage(tex.img, op)
}

func (h *Host) drawText(screen *ebiten.Image, n *canvas.Node, global canvas.Point, alpha float64) {
	content := n.Text.Content
	if content == "" {
		return
	}
	_, camScale := h.camera.View()
	p := h.stageToScreen(global)
	size := n.Text.Size
	if size <= 0 {
		size = 12
	}
	face := &text.GoTextFace{Source: sansFontSource, Size: size * camScale * n.Scale}

	op := &text.DrawOptions{}
	op.GeoM.Translate(p.X, p.Y)
	op.ColorScale.ScaleWithColor(scaleAlpha(n.Text.Color, alpha))
	text.Draw(screen, content, face, op)
}

// drawTokenRings outlines controlled and targeted tokens on top of the
// scene, the host's stand-in for selection and target indicators.
func (h *Host) drawTokenRings(screen *ebiten.Image) {
	_, camScale := h.camera.View()
	targets := make(map[string]bool)
	for _, t := range h.user.Targets() {
		targets[t.ID()] = true
	}
	for _, t := range h.tokens {
		if !t.controlled && !targets[t.id] {
			continue
		}
		b := t.bounds
		p := h.stageToScreen(canvas.Point{X: b.X, Y: b.Y})
		c := colorControlled
		if targets[t.id] {
			c = colorTargeted
		}
		strokeRoundedRect(screen,
			float32(p.X)-2, float32(p.Y)-2,
			float32(b.W*camScale)+4, float32(b.H*camScale)+4,
			6, 2, c)
	}
}

func blurStrength(n *canvas.Node) float64 {
	var s float64
	for at := n; at != nil; at = at.Parent() {
		for _, f := range at.Filters {
			if f.Strength > s {
				s = f.Strength
			}
		}
	}
	return s
}

func scaleAlpha(c color.RGBA, alpha float64) color.RGBA {
	if alpha >= 1 {
		return c
	}
	c.A = uint8(float64(c.A) * alpha)
	return c
}
