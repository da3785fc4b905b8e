package host

import "tokencontextmenu/pkg/engine/document"

// PopulateDemoScene fills the host with a small encounter: one owned
// hero with a mixed loadout and two unowned goblins to target.
func (h *Host) PopulateDemoScene() {
	valeros := &Actor{
		id:    "actor-valeros",
		name:  "Valeros",
		owner: true,
		items: []*Item{
			{
				id: "sword", kind: document.TypeWeapon, name: "Longsword",
				img: "icons/longsword.webp", status: document.EquipMainHand,
				damage: "Str+d8", ap: "0",
			},
			{
				id: "crossbow", kind: document.TypeWeapon, name: "Crossbow",
				img: "icons/crossbow.webp", status: document.EquipCarried,
				damage: "2d6", rng: "15/30/60", ap: "2", needsTarget: true,
				shots: 5, maxShots: 5, hasShots: true,
			},
			{
				id: "flamer", kind: document.TypeWeapon, name: "Flamethrower",
				img: "icons/flamethrower.webp", status: document.EquipCarried,
				damage: "2d10", rng: "cone", templateArea: true,
				shots: 10, maxShots: 10, hasShots: true,
			},
			{
				id: "dagger", kind: document.TypeWeapon, name: "Dagger",
				img: "icons/dagger.webp", status: document.EquipStored,
				damage: "Str+d4", rng: "3/6/12",
			},
			{
				id: "bolt", kind: document.TypePower, name: "Bolt",
				img: "icons/bolt.webp", favorite: true,
			},
			{
				id: "heal", kind: document.TypePower, name: "Healing",
				img: "icons/heal.webp",
			},
		},
	}
	h.AddToken("hero", valeros, 400, 300, gridSize, gridSize)

	for i, pos := range [][2]float64{{800, 250}, {900, 450}} {
		goblin := &Actor{
			id:   "actor-goblin",
			name: "Goblin",
			items: []*Item{
				{
					id: "spear", kind: document.TypeWeapon, name: "Spear",
					img: "icons/spear.webp", status: document.EquipMainHand,
					damage: "Str+d6",
				},
			},
		}
		h.AddToken(goblinID(i), goblin, pos[0], pos[1], gridSize, gridSize)
	}
}

func goblinID(i int) string {
	return "goblin-" + string(rune('a'+i))
}
