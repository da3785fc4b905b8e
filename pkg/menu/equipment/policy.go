// Package equipment holds the equip-status cycling rules and the
// owner-checked item actions built on them.
package equipment

import (
	"fmt"
	"strings"

	"tokencontextmenu/pkg/engine/document"
)

// Class partitions weapons by how their equip status may change.
type Class int

const (
	// ClassNormal weapons advance through the full stored/carried/
	// off-hand/main-hand/two-handed cycle.
	ClassNormal Class = iota
	// ClassTemplate weapons (area templates) only toggle stored/carried.
	ClassTemplate
	// ClassSpecial weapons (natural weapons like unarmed or claws) only
	// toggle carried/main-hand.
	ClassSpecial
)

func (c Class) String() string {
	switch c {
	case ClassTemplate:
		return "template"
	case ClassSpecial:
		return "special"
	}
	return "normal"
}

// specialWeaponNames are matched as lowercase substrings of the item name.
var specialWeaponNames = []string{"unarmed attack", "claws"}

// cycleOrder is the advance order for normal weapons.
var cycleOrder = []document.EquipStatus{
	document.EquipStored,
	document.EquipCarried,
	document.EquipOffHand,
	document.EquipMainHand,
	document.EquipTwoHanded,
}

// Classify determines which cycling rule applies to the item.
func Classify(item document.Item) Class {
	name := strings.ToLower(item.Name())
	for _, special := range specialWeaponNames {
		if strings.Contains(name, special) {
			return ClassSpecial
		}
	}
	if item.HasTemplateArea() {
		return ClassTemplate
	}
	return ClassNormal
}

// NextEquipStatus returns the status the item moves to on an
// equipment-mode click. Total over the whole status set.
func NextEquipStatus(item document.Item) document.EquipStatus {
	status := item.EquipStatus()
	switch Classify(item) {
	case ClassTemplate:
		if status == document.EquipStored {
			return document.EquipCarried
		}
		return document.EquipStored
	case ClassSpecial:
		if status == document.EquipCarried {
			return document.EquipMainHand
		}
		return document.EquipCarried
	default:
		for i, s := range cycleOrder {
			if s == status {
				return cycleOrder[(i+1)%len(cycleOrder)]
			}
		}
		// Unknown status values re-enter the cycle at stored.
		return document.EquipStored
	}
}

// Operation describes the concrete host update for an equipment-mode
// click. UseExternalHandler signals that the generic equip/unequip path
// should run instead, so side effects like ammo handling apply.
type Operation struct {
	Update             map[string]any
	Description        string
	UseExternalHandler bool
}

// EquipOperation builds the update that advances the item's status.
func EquipOperation(item document.Item) Operation {
	next := NextEquipStatus(item)
	class := Classify(item)
	return Operation{
		Update:             map[string]any{document.FieldEquipStatus: int(next)},
		Description:        fmt.Sprintf("%s %s: %s -> %s", class, item.Name(), item.EquipStatus(), next),
		UseExternalHandler: class == ClassNormal,
	}
}
