// Package tooltip manages the single on-canvas tooltip used by icon
// hover text and the targeting prompt.
package tooltip

import (
	"image/color"
	"strings"
	"sync"

	"tokencontextmenu/pkg/engine/canvas"
	"tokencontextmenu/pkg/engine/document"
)

// NodeName identifies tooltip containers attached to the host stage.
const NodeName = "tokencontextmenu-tooltip"

const (
	textSize   = 14.0
	padding    = 6.0
	lineGap    = 4.0
	cursorGapX = 14.0
	cursorGapY = 18.0
)

// Current is the module-wide tooltip manager, set during module init.
var Current *Manager

// Manager owns at most one tooltip node on the host stage.
type Manager struct {
	mu   sync.Mutex
	host document.Host
	node *canvas.Node
}

// New creates a tooltip manager for the given host.
func New(host document.Host) *Manager {
	return &Manager{host: host}
}

// Show displays the given lines near the anchor point, replacing any
// visible tooltip. Empty lines are dropped.
func (m *Manager) Show(lines []string, at canvas.Point) {
	var kept []string
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			kept = append(kept, l)
		}
	}
	if len(kept) == 0 {
		m.Hide()
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.destroyLocked()

	node := canvas.NewContainer(NodeName)
	w, h := measure(kept)
	bg := canvas.NewShape(NodeName+"-bg", w, h, canvas.ShapeSpec{
		Radius:      4,
		Fill:        color.RGBA{R: 20, G: 20, B: 28, A: 235},
		Stroke:      color.RGBA{R: 120, G: 120, B: 140, A: 255},
		StrokeWidth: 1,
	})
	node.AddChild(bg)
	y := padding
	for i, line := range kept {
		txt := canvas.NewText(NodeName+"-line", canvas.TextSpec{
			Content: line,
			Size:    textSize,
			Color:   color.RGBA{R: 230, G: 230, B: 235, A: 255},
		})
		txt.Position = canvas.Point{X: padding, Y: y}
		// The first line is the title; keep it visually distinct.
		if i == 0 && len(kept) > 1 {
			txt.Text.Color = color.RGBA{R: 255, G: 255, B: 255, A: 255}
		}
		node.AddChild(txt)
		y += textSize + lineGap
	}
	node.Width, node.Height = w, h
	m.node = node
	m.host.Stage().AddChild(node)
	m.positionLocked(at)
}

// MoveTo repositions the visible tooltip, clamped to the screen. Used
// by the cursor-follow targeting prompt. No-op when hidden.
func (m *Manager) MoveTo(at canvas.Point) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.node == nil {
		return
	}
	m.positionLocked(at)
}

// Hide destroys the tooltip node. Idempotent.
func (m *Manager) Hide() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.destroyLocked()
}

// Visible reports whether a tooltip is currently shown.
func (m *Manager) Visible() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.node != nil && !m.node.Destroyed()
}

func (m *Manager) positionLocked(at canvas.Point) {
	screenW, screenH := m.host.ScreenSize()
	x := at.X + cursorGapX
	y := at.Y + cursorGapY
	if x+m.node.Width > screenW {
		x = at.X - m.node.Width - cursorGapX
	}
	if y+m.node.Height > screenH {
		y = at.Y - m.node.Height - cursorGapY
	}
	m.node.Position = canvas.Point{X: x, Y: y}
}

func (m *Manager) destroyLocked() {
	if m.node != nil {
		m.node.Destroy(true)
		m.node = nil
	}
}

func measure(lines []string) (w, h float64) {
	longest := 0
	for _, l := range lines {
		if len(l) > longest {
			longest = len(l)
		}
	}
	// Approximate glyph advance; the host renderer draws with a
	// proportional face so this only needs to be generous enough.
	w = float64(longest)*textSize*0.55 + padding*2
	h = float64(len(lines))*(textSize+lineGap) - lineGap + padding*2
	return w, h
}
