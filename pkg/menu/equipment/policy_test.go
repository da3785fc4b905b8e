package equipment

import (
	"testing"

	"tokencontextmenu/pkg/engine/document"
	"tokencontextmenu/pkg/engine/document/documenttest"
)

func weapon(name string, status document.EquipStatus, template bool) *documenttest.Item {
	return &documenttest.Item{
		IDVal:        "w1",
		TypeVal:      document.TypeWeapon,
		NameVal:      name,
		Status:       status,
		TemplateArea: template,
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name     string
		item     *documenttest.Item
		want     Class
	}{
		{"plain sword", weapon("Longsword", document.EquipCarried, false), ClassNormal},
		{"template weapon", weapon("Flamethrower", document.EquipStored, true), ClassTemplate},
		{"unarmed", weapon("Unarmed Attack", document.EquipCarried, false), ClassSpecial},
		{"claws substring", weapon("Bear Claws (Large)", document.EquipCarried, false), ClassSpecial},
		{"special wins over template", weapon("Claws", document.EquipCarried, true), ClassSpecial},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Classify(c.item); got != c.want {
				t.Errorf("Classify(%q) = %v, want %v", c.item.NameVal, got, c.want)
			}
		})
	}
}

func TestNextEquipStatus_NormalCyclesWithPeriodFive(t *testing.T) {
	w := weapon("Longsword", document.EquipStored, false)
	want := []document.EquipStatus{
		document.EquipCarried,
		document.EquipOffHand,
		document.EquipMainHand,
		document.EquipTwoHanded,
		document.EquipStored,
	}
	for i, expect := range want {
		next := NextEquipStatus(w)
		if next != expect {
			t.Fatalf("step %d: NextEquipStatus = %v, want %v", i, next, expect)
		}
		w.Status = next
	}
}

func TestNextEquipStatus_TemplateTogglesStoredCarried(t *testing.T) {
	w := weapon("Flamethrower", document.EquipStored, true)

	if got := NextEquipStatus(w); got != document.EquipCarried {
		t.Errorf("from stored: got %v, want carried", got)
	}
	w.Status = document.EquipCarried
	if got := NextEquipStatus(w); got != document.EquipStored {
		t.Errorf("from carried: got %v, want stored", got)
	}
	// Any readied status also drops back to stored.
	w.Status = document.EquipMainHand
	if got := NextEquipStatus(w); got != document.EquipStored {
		t.Errorf("from main-hand: got %v, want stored", got)
	}
}

func TestNextEquipStatus_SpecialTogglesCarriedMainHand(t *testing.T) {
	w := weapon("Unarmed Attack", document.EquipCarried, false)

	if got := NextEquipStatus(w); got != document.EquipMainHand {
		t.Errorf("from carried: got %v, want main-hand", got)
	}
	w.Status = document.EquipMainHand
	if got := NextEquipStatus(w); got != document.EquipCarried {
		t.Errorf("from main-hand: got %v, want carried", got)
	}
}

func TestNextEquipStatus_TotalOverUnknownStatus(t *testing.T) {
	w := weapon("Longsword", document.EquipStatus(3), false)
	if got := NextEquipStatus(w); got != document.EquipStored {
		t.Errorf("unknown status: got %v, want stored", got)
	}
}

func TestEquipOperation(t *testing.T) {
	normal := weapon("Longsword", document.EquipCarried, false)
	op := EquipOperation(normal)
	if got := op.Update[document.FieldEquipStatus]; got != int(document.EquipOffHand) {
		t.Errorf("normal update = %v, want %d", got, int(document.EquipOffHand))
	}
	if !op.UseExternalHandler {
		t.Error("normal weapon should use the external equip handler")
	}

	template := weapon("Flamethrower", document.EquipCarried, true)
	op = EquipOperation(template)
	if got := op.Update[document.FieldEquipStatus]; got != int(document.EquipStored) {
		t.Errorf("template update = %v, want %d", got, int(document.EquipStored))
	}
	if op.UseExternalHandler {
		t.Error("template weapon should not use the external handler")
	}
}
