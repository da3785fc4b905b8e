package equipment

import (
	"github.com/leonelquinteros/gotext"

	"tokencontextmenu/pkg/engine/document"
	"tokencontextmenu/pkg/engine/logging"
	"tokencontextmenu/pkg/engine/notify"
)

var log = logging.For("equipment")

// Reloader is implemented by roll adapters that expose a native reload.
type Reloader interface {
	Reload(item document.Item) (handled bool, err error)
}

// Equip sets the item to main-hand. Returns false when the actor is not
// owned or the update fails; denial surfaces a user-visible warning.
func Equip(actor document.Actor, itemID string) bool {
	return updateStatus(actor, itemID, document.EquipMainHand)
}

// Unequip sets the item back to carried.
func Unequip(actor document.Actor, itemID string) bool {
	return updateStatus(actor, itemID, document.EquipCarried)
}

func updateStatus(actor document.Actor, itemID string, status document.EquipStatus) bool {
	item, ok := requireOwned(actor, itemID)
	if !ok {
		return false
	}
	if err := item.Update(map[string]any{document.FieldEquipStatus: int(status)}); err != nil {
		log.Error().Err(err).Str("item", itemID).Msg("equip status update failed")
		notify.Error(gotext.Get("Could not update equipment"))
		return false
	}
	return true
}

// CycleEquipStatus applies the policy's next status to the item.
func CycleEquipStatus(actor document.Actor, itemID string) bool {
	item, ok := requireOwned(actor, itemID)
	if !ok {
		return false
	}
	op := EquipOperation(item)
	log.Debug().Str("op", op.Description).Msg("cycling equip status")
	if err := item.Update(op.Update); err != nil {
		log.Error().Err(err).Str("item", itemID).Msg("equip cycle failed")
		notify.Error(gotext.Get("Could not update equipment"))
		return false
	}
	return true
}

// Reload refills the item's ammunition. An adapter-native reload is
// preferred when the adapter exposes one.
func Reload(actor document.Actor, itemID string, adapter any) bool {
	item, ok := requireOwned(actor, itemID)
	if !ok {
		return false
	}
	if r, hasNative := adapter.(Reloader); hasNative {
		handled, err := r.Reload(item)
		if err != nil {
			log.Error().Err(err).Str("item", itemID).Msg("adapter reload failed")
			notify.Error(gotext.Get("Reload failed"))
			return false
		}
		if handled {
			return true
		}
	}
	_, max, hasShots := item.Shots()
	if !hasShots {
		notify.Warn(gotext.Get("%s has no ammunition to reload", item.Name()))
		return false
	}
	if err := item.Update(map[string]any{document.FieldCurrentShots: max}); err != nil {
		log.Error().Err(err).Str("item", itemID).Msg("reload update failed")
		notify.Error(gotext.Get("Reload failed"))
		return false
	}
	return true
}

// TogglePowerFavorite flips the power's favorite flag.
func TogglePowerFavorite(actor document.Actor, itemID string) bool {
	item, ok := requireOwned(actor, itemID)
	if !ok {
		return false
	}
	if err := item.Update(map[string]any{document.FieldFavorite: !item.IsFavorite()}); err != nil {
		log.Error().Err(err).Str("item", itemID).Msg("favorite toggle failed")
		notify.Error(gotext.Get("Could not update favorites"))
		return false
	}
	return true
}

// requireOwned resolves the item and enforces ownership. A denial is a
// user-visible warning, not an update attempt.
func requireOwned(actor document.Actor, itemID string) (document.Item, bool) {
	if actor == nil {
		return nil, false
	}
	if !actor.IsOwner() {
		notify.Warn(gotext.Get("You do not own this actor"))
		return nil, false
	}
	item, found := actor.Item(itemID)
	if !found {
		log.Warn().Str("item", itemID).Str("actor", actor.ID()).Msg("item not found on actor")
		return nil, false
	}
	return item, true
}
