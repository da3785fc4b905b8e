package targeting

import (
	"fmt"
	"strings"
	"time"

	"github.com/leonelquinteros/gotext"

	"tokencontextmenu/pkg/engine/document"
	"tokencontextmenu/pkg/engine/notify"
	"tokencontextmenu/pkg/menu/settings"
)

// FlagPendingRoll is the user-flag key holding roll state across the
// targeting phase.
const FlagPendingRoll = "pendingWeaponRoll"

// PendingRoll is stashed on the user while a targeting session runs so
// the deferred card creation can verify it resumes the right roll.
type PendingRoll struct {
	ActorID   string
	ItemID    string
	TokenID   string
	Timestamp int64
}

// CardOptions carry context for the host's weapon-card creation.
type CardOptions struct {
	TokenID string
}

// Adapter is the host-system bridge for weapon rolls.
type Adapter interface {
	// CreateWeaponCard posts the weapon's roll card to chat.
	CreateWeaponCard(actor document.Actor, itemID string, opts CardOptions) error
	// RequiresTarget reports whether the item's roll needs a user target.
	RequiresTarget(item document.Item) bool
}

// BeginWeaponRoll rolls a weapon for the token, interposing a targeting
// session when the item needs a target and the user has none. hideMenu
// runs before the session starts so the menu is out of the way.
func (m *Manager) BeginWeaponRoll(token document.Token, itemID string, adapter Adapter, hideMenu func()) {
	actor := token.Actor()
	if actor == nil {
		notify.Warn(gotext.Get("Token has no actor"))
		return
	}
	item, ok := actor.Item(itemID)
	if !ok {
		notify.Warn(gotext.Get("Item not found"))
		return
	}
	user := m.host.User()

	if !adapter.RequiresTarget(item) {
		// Targets from a prior pick must not leak into a roll that
		// resolves without one.
		user.ClearTargets()
		m.createCard(adapter, actor, itemID, token.ID())
		return
	}

	if settings.GetBool(settings.AutoRemoveTargets) {
		user.ClearTargets()
	} else if len(user.Targets()) > 0 {
		m.createCard(adapter, actor, itemID, token.ID())
		return
	}

	stash := PendingRoll{
		ActorID:   actor.ID(),
		ItemID:    itemID,
		TokenID:   token.ID(),
		Timestamp: time.Now().UnixMilli(),
	}
	if err := user.SetFlag(FlagPendingRoll, stash); err != nil {
		log.Warn().Err(err).Msg("stashing pending roll failed")
		notify.Error(gotext.Get("Could not start targeting"))
		return
	}
	if hideMenu != nil {
		hideMenu()
	}

	m.Start(fmt.Sprintf("weapon-%s-%d", itemID, stash.Timestamp), Options{
		OnSelected: func(target document.Token) {
			m.resumeRoll(adapter, stash)
		},
		OnAbort: func(reason string) {
			m.clearPendingRoll()
			if !strings.Contains(reason, ManualAbortReason) {
				notify.Warn(gotext.Get("Targeting cancelled: %s", reason))
			}
		},
	})
}

// resumeRoll completes the deferred card creation after a target pick.
// The stashed flag must still describe this roll; a mismatched or
// missing stash means a newer roll superseded it.
func (m *Manager) resumeRoll(adapter Adapter, stash PendingRoll) {
	user := m.host.User()
	raw, ok := user.GetFlag(FlagPendingRoll)
	if !ok {
		log.Debug().Str("item", stash.ItemID).Msg("pending roll already cleared")
		return
	}
	pending, ok := raw.(PendingRoll)
	if !ok || pending.Timestamp != stash.Timestamp {
		log.Debug().Str("item", stash.ItemID).Msg("pending roll superseded, dropping")
		m.clearPendingRoll()
		return
	}
	m.clearPendingRoll()

	actor := m.actorByID(pending.ActorID)
	if actor == nil {
		notify.Warn(gotext.Get("Actor is gone, roll cancelled"))
		return
	}
	if len(user.Targets()) == 0 {
		notify.Warn(gotext.Get("No target selected"))
		return
	}
	m.createCard(adapter, actor, pending.ItemID, pending.TokenID)
}

func (m *Manager) createCard(adapter Adapter, actor document.Actor, itemID, tokenID string) {
	if err := adapter.CreateWeaponCard(actor, itemID, CardOptions{TokenID: tokenID}); err != nil {
		log.Warn().Err(err).Str("item", itemID).Msg("weapon card creation failed")
		notify.Error(gotext.Get("Weapon roll failed"))
	}
}

func (m *Manager) clearPendingRoll() {
	if err := m.host.User().UnsetFlag(FlagPendingRoll); err != nil {
		log.Debug().Err(err).Msg("clearing pending roll flag failed")
	}
}

func (m *Manager) actorByID(id string) document.Actor {
	for _, tok := range m.host.Tokens() {
		if a := tok.Actor(); a != nil && a.ID() == id {
			return a
		}
	}
	return nil
}
