package menu

import (
	"sort"

	"tokencontextmenu/pkg/engine/document"
	"tokencontextmenu/pkg/menu/builder"
)

// MenuEntries assembles the ordered entry list and its styling metadata
// for a token. Collapsed, the menu shows readied weapons and favorited
// powers with an expand button; expanded, it shows everything sorted by
// name with stored weapons and unfavorited powers desaturated.
func MenuEntries(token document.Token, expanded bool) ([]builder.Entry, map[string]builder.Metadata) {
	actor := token.Actor()
	if actor == nil {
		return nil, nil
	}

	var weapons, powers []document.Item
	for _, it := range actor.Items() {
		switch it.Type() {
		case document.TypeWeapon:
			if expanded || it.IsReadied() {
				weapons = append(weapons, it)
			}
		case document.TypePower:
			if expanded || it.IsFavorite() {
				powers = append(powers, it)
			}
		}
	}
	byName := func(items []document.Item) {
		sort.Slice(items, func(i, j int) bool { return items[i].Name() < items[j].Name() })
	}
	byName(weapons)
	byName(powers)

	meta := make(map[string]builder.Metadata)
	var entries []builder.Entry
	for _, w := range weapons {
		entries = append(entries, builder.Weapon(w))
		meta[w.ID()] = builder.Metadata{Desaturated: expanded && !w.IsReadied()}
	}
	if len(weapons) > 0 && len(powers) > 0 {
		entries = append(entries, builder.Separator())
	}
	for _, p := range powers {
		entries = append(entries, builder.Power(p))
		meta[p.ID()] = builder.Metadata{Power: true, Desaturated: expanded && !p.IsFavorite()}
	}
	entries = append(entries, builder.Expand(expanded))
	return entries, meta
}
