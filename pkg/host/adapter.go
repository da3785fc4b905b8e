package host

import (
	"fmt"

	"tokencontextmenu/pkg/engine/document"
	"tokencontextmenu/pkg/engine/notify"
	"tokencontextmenu/pkg/menu/targeting"
)

// RollAdapter is the demo's stand-in for the host system's roll
// pipeline: cards land in the log and the notification sink instead of
// a chat window.
type RollAdapter struct{}

func (RollAdapter) CreateWeaponCard(actor document.Actor, itemID string, opts targeting.CardOptions) error {
	item, ok := actor.Item(itemID)
	if !ok {
		return fmt.Errorf("actor %s has no item %s", actor.ID(), itemID)
	}
	msg := fmt.Sprintf("%s rolls %s", actor.Name(), item.Name())
	if opts.TokenID != "" {
		msg += " against " + opts.TokenID
	}
	log.Info().
		Str("actor", actor.ID()).
		Str("item", itemID).
		Str("target", opts.TokenID).
		Msg("weapon card")
	notify.Info(msg)
	return nil
}

// RequiresTarget: weapons with a listed range need a picked target;
// template-area weapons and powers resolve without one.
func (RollAdapter) RequiresTarget(item document.Item) bool {
	if item.Type() != document.TypeWeapon {
		return false
	}
	if item.HasTemplateArea() {
		return false
	}
	if d, ok := item.(*Item); ok {
		return d.needsTarget
	}
	return item.Range() != ""
}
