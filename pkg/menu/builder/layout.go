package builder

import (
	"math"

	"tokencontextmenu/pkg/engine/canvas"
)

// Grid geometry in canvas pixels.
const (
	padding      = 8.0
	gap          = 6.0
	separatorGap = 10.0
)

// Placement is one resolved grid cell.
type Placement struct {
	Entry Entry
	// Position is the cell's top-left, relative to the menu container's
	// anchor (x centered on the anchor, y growing downward).
	Position canvas.Point
	Size     float64
}

// Layout is the computed grid: overall bounds plus every cell.
type Layout struct {
	Width  float64
	Height float64
	Icons  []Placement
	// SeparatorYs are the y midlines of the rules between sections.
	SeparatorYs []float64
	// Expand is the expand button's cell, nil when the list has none.
	Expand *Placement
}

// Background returns the rounded-rect bounds, centered on the anchor.
func (l Layout) Background() canvas.Rect {
	return canvas.Rect{X: -l.Width / 2, Y: 0, W: l.Width, H: l.Height}
}

type section struct {
	entries []Entry
	// expand is set on the section owning the expand button.
	expand *Entry
}

// Compute lays the entries out on a row-major grid, itemsPerRow cells
// wide, rows centered horizontally, sections separated by rules. The
// expand button occupies a cell at the end of its owning section.
func Compute(entries []Entry, itemsPerRow int, iconSize float64) Layout {
	if itemsPerRow < 1 {
		itemsPerRow = 1
	}
	sections := partition(entries)
	if len(sections) == 0 {
		return Layout{Width: 2 * padding, Height: 2 * padding}
	}

	widest := 0
	for _, sec := range sections {
		n := len(sec.entries)
		if sec.expand != nil {
			n++
		}
		if n > itemsPerRow {
			n = itemsPerRow
		}
		if n > widest {
			widest = n
		}
	}
	width := float64(widest)*iconSize + float64(widest-1)*gap + 2*padding

	var layout Layout
	layout.Width = width
	y := padding
	for si, sec := range sections {
		cells := sec.entries
		if sec.expand != nil {
			cells = append(append([]Entry{}, cells...), *sec.expand)
		}
		rows := int(math.Ceil(float64(len(cells)) / float64(itemsPerRow)))
		for r := 0; r < rows; r++ {
			row := cells[r*itemsPerRow : min(len(cells), (r+1)*itemsPerRow)]
			rowW := float64(len(row))*iconSize + float64(len(row)-1)*gap
			x := -rowW / 2
			for _, e := range row {
				p := Placement{Entry: e, Position: canvas.Point{X: x, Y: y}, Size: iconSize}
				if e.Kind == EntryExpand {
					layout.Expand = &p
				} else {
					layout.Icons = append(layout.Icons, p)
				}
				x += iconSize + gap
			}
			y += iconSize
			if r < rows-1 {
				y += gap
			}
		}
		if si < len(sections)-1 {
			layout.SeparatorYs = append(layout.SeparatorYs, y+separatorGap/2)
			y += separatorGap
		}
	}
	layout.Height = y + padding
	return layout
}

// partition splits on separator entries, drops empty sections, and
// pulls the expand button out of the flow onto its owning section.
func partition(entries []Entry) []section {
	var sections []section
	var cur section
	flush := func() {
		if len(cur.entries) > 0 || cur.expand != nil {
			sections = append(sections, cur)
		}
		cur = section{}
	}
	for _, e := range entries {
		switch e.Kind {
		case EntrySeparator:
			flush()
		case EntryExpand:
			e := e
			cur.expand = &e
		default:
			cur.entries = append(cur.entries, e)
		}
	}
	flush()
	return sections
}
