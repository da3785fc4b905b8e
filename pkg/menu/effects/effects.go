// Package effects applies the equipment-mode canvas treatments: a
// grid-invariant zoom toward the active token and a blur over
// everything that is not the menu or its token.
package effects

import (
	"sync"

	"github.com/zyedidia/generic/mapset"

	"tokencontextmenu/pkg/engine/canvas"
	"tokencontextmenu/pkg/engine/document"
	"tokencontextmenu/pkg/engine/logging"
	"tokencontextmenu/pkg/menu/settings"
)

// BlurFilterName tags every filter this module attaches so removal
// never touches filters owned by the host or other modules.
const BlurFilterName = "tokencontextmenu-blur"

// Zoom scale bounds; the host clamps to the same range.
const (
	MinZoomScale = 0.25
	MaxZoomScale = 4.0
)

// referenceGridSize is the grid size the zoom level is calibrated
// against, so the on-screen magnification is the same on any scene.
const referenceGridSize = 100.0

var log = logging.For("effects")

// Current is the module-wide effects manager, set during module init.
var Current *Manager

type viewSnapshot struct {
	center canvas.Point
	scale  float64
}

// Manager owns the zoom snapshot and the set of blurred nodes.
type Manager struct {
	mu       sync.Mutex
	host     document.Host
	snapshot *viewSnapshot
	blurred  mapset.Set[*canvas.Node]
}

// NewManager creates an effects manager for the given host.
func NewManager(host document.Host) *Manager {
	return &Manager{host: host, blurred: mapset.New[*canvas.Node]()}
}

// EnterEquipmentMode applies zoom and blur around the token per the
// current settings. Animations are fire-and-forget; callers never wait.
func (m *Manager) EnterEquipmentMode(token document.Token) {
	if settings.GetBool(settings.EquipmentModeZoom) {
		m.zoomTo(token)
	}
	if settings.GetBool(settings.EquipmentModeBlur) {
		m.applyBlur(token)
	}
}

// ExitEquipmentMode restores the camera and removes the blur. Safe to
// call repeatedly and without a prior Enter.
func (m *Manager) ExitEquipmentMode() {
	m.restoreZoom()
	m.ClearBlur()
}

// EmergencyCleanup drops the snapshot and strips every filter this
// module ever attached, including ones left on nodes no longer tracked.
func (m *Manager) EmergencyCleanup() {
	m.restoreZoom()
	m.ClearBlur()
	for _, layer := range m.host.BackgroundLayers() {
		stripBlur(layer)
	}
	for _, tok := range m.host.Tokens() {
		if mesh := tok.Mesh(); mesh != nil {
			stripBlur(mesh)
		}
	}
}

func (m *Manager) zoomTo(token document.Token) {
	cam := m.host.Camera()
	center, scale := cam.View()

	m.mu.Lock()
	if m.snapshot == nil {
		m.snapshot = &viewSnapshot{center: center, scale: scale}
	}
	m.mu.Unlock()

	grid := m.host.GridSize()
	if grid <= 0 {
		grid = referenceGridSize
	}
	level := settings.GetFloat(settings.EquipmentModeZoomLevel)
	target := canvas.Clamp(level*(referenceGridSize/grid), MinZoomScale, MaxZoomScale)

	duration := float64(settings.GetInt(settings.EquipmentModeZoomDuration))
	log.Debug().Str("token", token.ID()).Float64("scale", target).Msg("zooming to token")
	cam.AnimatePan(token.Center(), target, duration)
}

func (m *Manager) restoreZoom() {
	m.mu.Lock()
	snap := m.snapshot
	m.snapshot = nil
	m.mu.Unlock()
	if snap == nil {
		return
	}
	duration := float64(settings.GetInt(settings.EquipmentModeZoomDuration))
	m.host.Camera().AnimatePan(snap.center, snap.scale, duration)
}

// Zoomed reports whether a zoom snapshot is being held.
func (m *Manager) Zoomed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot != nil
}

func (m *Manager) applyBlur(active document.Token) {
	filter := canvas.Filter{
		Name:     BlurFilterName,
		Strength: settings.GetFloat(settings.EquipmentModeBlurStrength),
		Quality:  settings.GetInt(settings.EquipmentModeBlurQuality),
	}

	var nodes []*canvas.Node
	nodes = append(nodes, m.host.BackgroundLayers()...)
	for _, tok := range m.host.Tokens() {
		if active != nil && tok.ID() == active.ID() {
			continue
		}
		if mesh := tok.Mesh(); mesh != nil {
			nodes = append(nodes, mesh)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range nodes {
		if m.blurred.Has(n) || hasBlur(n) {
			continue
		}
		n.Filters = append(n.Filters, filter)
		m.blurred.Put(n)
	}
	log.Debug().Int("nodes", m.blurred.Size()).Msg("blur applied")
}

// ClearBlur removes every tracked blur filter. Idempotent.
func (m *Manager) ClearBlur() {
	m.mu.Lock()
	nodes := m.blurred
	m.blurred = mapset.New[*canvas.Node]()
	m.mu.Unlock()
	nodes.Each(func(n *canvas.Node) {
		stripBlur(n)
	})
}

// BlurredCount returns how many nodes currently carry a tracked blur.
func (m *Manager) BlurredCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.blurred.Size()
}

func hasBlur(n *canvas.Node) bool {
	for _, f := range n.Filters {
		if f.Name == BlurFilterName {
			return true
		}
	}
	return false
}

// stripBlur removes module-named filters and nulls the slice when it
// ends up empty, matching how the host expects filter arrays cleared.
func stripBlur(n *canvas.Node) {
	if len(n.Filters) == 0 {
		return
	}
	kept := n.Filters[:0]
	for _, f := range n.Filters {
		if f.Name != BlurFilterName {
			kept = append(kept, f)
		}
	}
	if len(kept) == 0 {
		n.Filters = nil
		return
	}
	n.Filters = kept
}
