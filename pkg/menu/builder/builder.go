package builder

import (
	"fmt"
	"image/color"
	"unicode/utf8"

	"tokencontextmenu/pkg/engine/canvas"
	"tokencontextmenu/pkg/engine/document"
	"tokencontextmenu/pkg/engine/logging"
	"tokencontextmenu/pkg/menu/settings"
)

// Node names the builder attaches under the menu container.
const (
	BackgroundName = "menu-background"
	ExpandName     = "menu-expand"
	iconPrefix     = "menu-icon-"
	pillName       = "pill"
	badgeName      = "badge"
)

var log = logging.For("builder")

var (
	colBackground  = color.RGBA{R: 18, G: 18, B: 26, A: 235}
	colStroke      = color.RGBA{R: 90, G: 90, B: 110, A: 255}
	colPillPlain   = color.RGBA{R: 58, G: 58, B: 72, A: 255}
	colPillPower   = color.RGBA{R: 82, G: 54, B: 120, A: 255}
	colPillDesat   = color.RGBA{R: 66, G: 66, B: 66, A: 200}
	colPillHover   = color.RGBA{R: 96, G: 96, B: 120, A: 255}
	colSeparator   = color.RGBA{R: 255, G: 255, B: 255, A: 50}
	colGlyph       = color.RGBA{R: 235, G: 235, B: 235, A: 255}
	colExpandPlate = color.RGBA{R: 40, G: 40, B: 52, A: 255}
)

// Built is the assembled grid: the background node plus per-item icon
// nodes for the instance to bind interactions onto.
type Built struct {
	Layout     Layout
	Background *canvas.Node
	// Icons maps item id to its icon node.
	Icons  map[string]*canvas.Node
	Expand *canvas.Node

	meta    map[string]Metadata
	entries map[string]Entry
	mode    bool
}

// Build clears the container and assembles the grid into it. Sprite
// loads resolve asynchronously; until then (or on a failed load) the
// pill shows the item's initial glyph. Safe to call repeatedly on the
// same container.
func Build(container *canvas.Node, entries []Entry, meta map[string]Metadata, host document.Host, equipmentMode bool) *Built {
	for _, c := range container.RemoveChildren() {
		c.Destroy(true)
	}

	iconSize := host.GridSize() * settings.IconScale()
	layout := Compute(entries, settings.ItemsPerRow(), iconSize)

	built := &Built{
		Layout:  layout,
		Icons:   make(map[string]*canvas.Node),
		meta:    meta,
		entries: make(map[string]Entry),
		mode:    equipmentMode,
	}

	bg := layout.Background()
	built.Background = canvas.NewShape(BackgroundName, bg.W, bg.H, canvas.ShapeSpec{
		Radius:      10,
		Fill:        colBackground,
		Stroke:      colStroke,
		StrokeWidth: 1,
	})
	built.Background.Position = canvas.Point{X: bg.X, Y: bg.Y}
	container.AddChild(built.Background)

	for i, y := range layout.SeparatorYs {
		rule := canvas.NewShape(fmt.Sprintf("separator-%d", i), bg.W-2*padding, 1, canvas.ShapeSpec{Fill: colSeparator})
		rule.Position = canvas.Point{X: bg.X + padding, Y: y}
		container.AddChild(rule)
	}

	for _, p := range layout.Icons {
		built.entries[p.Entry.Item.ID()] = p.Entry
		icon := built.buildIcon(p, host)
		container.AddChild(icon)
		built.Icons[p.Entry.Item.ID()] = icon
	}

	if layout.Expand != nil {
		built.Expand = buildExpand(*layout.Expand)
		container.AddChild(built.Expand)
	}

	log.Debug().Int("icons", len(built.Icons)).Bool("equipmentMode", equipmentMode).Msg("menu grid built")
	return built
}

// SetHover applies or clears the hover treatment on an icon.
func (b *Built) SetHover(id string, hover bool) {
	icon, ok := b.Icons[id]
	if !ok || icon.Destroyed() {
		return
	}
	if hover {
		icon.Scale = 1.1
	} else {
		icon.Scale = 1.0
	}
	for _, c := range icon.Children() {
		if c.Name == pillName {
			c.Shape.Fill = b.pillFill(id, hover)
		}
	}
}

func (b *Built) buildIcon(p Placement, host document.Host) *canvas.Node {
	item := p.Entry.Item
	icon := canvas.NewContainer(iconPrefix + item.ID())
	icon.Position = p.Position
	icon.Width, icon.Height = p.Size, p.Size
	icon.EventMode = canvas.EventModeStatic
	icon.HitArea = &canvas.Rect{X: 0, Y: 0, W: p.Size, H: p.Size}

	pill := canvas.NewShape(pillName, p.Size, p.Size, canvas.ShapeSpec{
		Radius: 6,
		Fill:   b.pillFill(item.ID(), false),
	})
	icon.AddChild(pill)

	inset := p.Size * 0.12
	spriteSize := p.Size - 2*inset
	if img := item.Img(); img != "" {
		host.Textures().Load(img, func(tex canvas.Texture, err error) {
			if icon.Destroyed() {
				return
			}
			if err != nil {
				log.Debug().Err(err).Str("item", item.ID()).Msg("icon texture missing, using glyph")
				icon.AddChild(glyphNode(item.Name(), p.Size))
				return
			}
			sprite := canvas.NewSprite("art", spriteSize, spriteSize, tex)
			sprite.Position = canvas.Point{X: inset, Y: inset}
			icon.AddChild(sprite)
		})
	} else {
		icon.AddChild(glyphNode(item.Name(), p.Size))
	}

	if b.mode && settings.GetBool(settings.ShowEquipmentBadges) {
		icon.AddChild(badgeNode(p.Entry, p.Size))
	}
	return icon
}

func (b *Built) pillFill(id string, hover bool) color.RGBA {
	if hover {
		return colPillHover
	}
	m := b.meta[id]
	if m.Desaturated {
		return colPillDesat
	}
	if b.mode && !m.Power && settings.GetBool(settings.UseEquipmentStateColors) {
		if e, ok := b.entries[id]; ok && e.Kind == EntryWeapon {
			if e.Item.IsReadied() {
				return parseHexColor(settings.GetString(settings.EquipmentColorActive), colPillPlain)
			}
			if e.Item.EquipStatus() == document.EquipCarried {
				return parseHexColor(settings.GetString(settings.EquipmentColorCarried), colPillPlain)
			}
		}
	}
	if m.Power {
		return colPillPower
	}
	return colPillPlain
}

// glyphNode renders the item's initial as a stand-in for missing art.
func glyphNode(name string, size float64) *canvas.Node {
	initial := "?"
	if r, _ := utf8.DecodeRuneInString(name); r != utf8.RuneError {
		initial = string(r)
	}
	glyph := canvas.NewText("glyph", canvas.TextSpec{
		Content: initial,
		Size:    size * 0.5,
		Color:   colGlyph,
	})
	glyph.Position = canvas.Point{X: size * 0.35, Y: size * 0.25}
	return glyph
}

// badgeNode overlays the equipment-mode state marker: the equip glyph
// for weapons, the favorite star for powers.
func badgeNode(e Entry, size float64) *canvas.Node {
	text := favoriteGlyph(e.Item)
	if e.Kind == EntryWeapon {
		text = equipGlyph(e.Item.EquipStatus())
	}
	badgeSize := size * 0.34
	badge := canvas.NewShape(badgeName, badgeSize, badgeSize, canvas.ShapeSpec{
		Radius: badgeSize / 2,
		Fill:   parseHexColor(settings.GetString(settings.EquipmentBadgeBgColor), color.RGBA{R: 51, G: 51, B: 51, A: 255}),
	})
	badge.Position = canvas.Point{X: size - badgeSize, Y: size - badgeSize}
	label := canvas.NewText("badge-label", canvas.TextSpec{
		Content: text,
		Size:    badgeSize * 0.7,
		Color:   parseHexColor(settings.GetString(settings.EquipmentBadgeColor), color.RGBA{R: 255, G: 255, B: 255, A: 255}),
	})
	label.Position = canvas.Point{X: badgeSize * 0.25, Y: badgeSize * 0.15}
	badge.AddChild(label)
	return badge
}

func buildExpand(p Placement) *canvas.Node {
	btn := canvas.NewContainer(ExpandName)
	btn.Position = p.Position
	btn.Width, btn.Height = p.Size, p.Size
	btn.EventMode = canvas.EventModeStatic
	btn.HitArea = &canvas.Rect{X: 0, Y: 0, W: p.Size, H: p.Size}

	plate := canvas.NewShape(pillName, p.Size, p.Size, canvas.ShapeSpec{
		Radius: 6,
		Fill:   colExpandPlate,
		Stroke: colStroke,
	})
	btn.AddChild(plate)

	glyph := "▼"
	if p.Entry.Expanded {
		glyph = "▲"
	}
	label := canvas.NewText("glyph", canvas.TextSpec{
		Content: glyph,
		Size:    p.Size * 0.4,
		Color:   colGlyph,
	})
	label.Position = canvas.Point{X: p.Size * 0.3, Y: p.Size * 0.3}
	btn.AddChild(label)
	return btn
}

func equipGlyph(s document.EquipStatus) string {
	switch s {
	case document.EquipStored:
		return "—"
	case document.EquipCarried:
		return "c"
	case document.EquipOffHand:
		return "o"
	case document.EquipMainHand:
		return "m"
	case document.EquipTwoHanded:
		return "2"
	}
	return "?"
}

func favoriteGlyph(item document.Item) string {
	if item.IsFavorite() {
		return "★"
	}
	return "☆"
}

// parseHexColor reads "#rrggbb"; anything else yields the fallback.
func parseHexColor(s string, fallback color.RGBA) color.RGBA {
	if len(s) != 7 || s[0] != '#' {
		return fallback
	}
	var r, g, b uint8
	if _, err := fmt.Sscanf(s[1:], "%02x%02x%02x", &r, &g, &b); err != nil {
		return fallback
	}
	return color.RGBA{R: r, G: g, B: b, A: 255}
}
