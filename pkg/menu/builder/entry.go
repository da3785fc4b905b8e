// Package builder turns an ordered entry list into the menu's icon grid:
// a rounded background, sectioned rows of pills, separator lines and an
// expand button.
package builder

import "tokencontextmenu/pkg/engine/document"

// EntryKind discriminates what a menu entry renders as.
type EntryKind int

const (
	EntryWeapon EntryKind = iota
	EntryPower
	EntrySeparator
	EntryExpand
)

// Entry is one slot of the menu's ordered item list.
type Entry struct {
	Kind EntryKind
	// Item backs weapon and power entries; nil for the other kinds.
	Item document.Item
	// Expanded is the current expansion state, for the expand glyph.
	Expanded bool
}

// Weapon wraps an item as a weapon entry.
func Weapon(item document.Item) Entry { return Entry{Kind: EntryWeapon, Item: item} }

// Power wraps an item as a power entry.
func Power(item document.Item) Entry { return Entry{Kind: EntryPower, Item: item} }

// Separator is a horizontal rule between sections.
func Separator() Entry { return Entry{Kind: EntrySeparator} }

// Expand is the section-expansion toggle button.
func Expand(expanded bool) Entry { return Entry{Kind: EntryExpand, Expanded: expanded} }

// Metadata styles one entry's pill, keyed by item id.
type Metadata struct {
	// Power pills get the power tint instead of the plain one.
	Power bool
	// Desaturated marks stored items in the expanded view.
	Desaturated bool
}
