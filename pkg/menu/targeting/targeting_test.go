package targeting

import (
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokencontextmenu/pkg/engine/canvas"
	"tokencontextmenu/pkg/engine/document"
	"tokencontextmenu/pkg/engine/document/documenttest"
	"tokencontextmenu/pkg/engine/hooks"
	"tokencontextmenu/pkg/engine/notify"
	"tokencontextmenu/pkg/menu/settings"
	"tokencontextmenu/pkg/menu/tooltip"
)

type memorySink struct {
	warns  []string
	errors []string
}

func (s *memorySink) Info(msg string)  {}
func (s *memorySink) Warn(msg string)  { s.warns = append(s.warns, msg) }
func (s *memorySink) Error(msg string) { s.errors = append(s.errors, msg) }

type fakeAdapter struct {
	needsTarget bool
	cardErr     error
	cards       []CardOptions
	cardActors  []string
	cardItems   []string
}

func (a *fakeAdapter) CreateWeaponCard(actor document.Actor, itemID string, opts CardOptions) error {
	if a.cardErr != nil {
		return a.cardErr
	}
	a.cardActors = append(a.cardActors, actor.ID())
	a.cardItems = append(a.cardItems, itemID)
	a.cards = append(a.cards, opts)
	return nil
}

func (a *fakeAdapter) RequiresTarget(item document.Item) bool { return a.needsTarget }

func newRig(t *testing.T) (*documenttest.Host, *Manager, *memorySink) {
	t.Helper()
	require.NoError(t, settings.Register(""))
	t.Cleanup(viper.Reset)
	hooks.Default.Reset()
	t.Cleanup(hooks.Default.Reset)

	sink := &memorySink{}
	notify.SetSink(sink)
	t.Cleanup(func() { notify.SetSink(nil) })

	host := documenttest.NewHost()
	return host, NewManager(host, tooltip.New(host)), sink
}

func addToken(host *documenttest.Host, id string, x, y float64) *documenttest.Token {
	actor := &documenttest.Actor{IDVal: "actor-" + id, NameVal: id, Owner: true, ItemSet: []*documenttest.Item{
		{IDVal: "sword-" + id, TypeVal: document.TypeWeapon, NameVal: "Sword"},
	}}
	return host.AddToken(&documenttest.Token{
		IDVal:     id,
		NameVal:   id,
		BoundsVal: canvas.Rect{X: x, Y: y, W: 100, H: 100},
		Owner:     true,
		ActorVal:  actor,
	})
}

func findByName(root *canvas.Node, name string) *canvas.Node {
	if root.Name == name {
		return root
	}
	for _, c := range root.Children() {
		if found := findByName(c, name); found != nil {
			return found
		}
	}
	return nil
}

func TestStartInstallsHitSurfaceAndPrompt(t *testing.T) {
	host, mgr, _ := newRig(t)

	mgr.Start("session-1", Options{})

	assert.True(t, mgr.Active())
	assert.Equal(t, "session-1", mgr.SessionID())
	assert.NotNil(t, findByName(host.StageNode, HitSurfaceName))
	assert.NotNil(t, findByName(host.StageNode, tooltip.NodeName))
}

func TestLeftClickOnTokenSelects(t *testing.T) {
	host, mgr, _ := newRig(t)
	tok := addToken(host, "t1", 200, 200)

	var selected document.Token
	aborts := 0
	mgr.Start("session-1", Options{
		OnSelected: func(target document.Token) { selected = target },
		OnAbort:    func(reason string) { aborts++ },
	})

	canvas.Dispatch(host.StageNode, canvas.EventPointerDown, &canvas.PointerEvent{
		Global: canvas.Point{X: 250, Y: 250},
		Button: canvas.ButtonLeft,
	})

	require.NotNil(t, selected)
	assert.Equal(t, "t1", selected.ID())
	assert.Len(t, host.UserVal.TargetSet, 1)
	assert.Equal(t, tok, host.UserVal.TargetSet[0])
	assert.Zero(t, aborts)
	assert.False(t, mgr.Active())
	assert.Nil(t, findByName(host.StageNode, HitSurfaceName))
}

func TestLeftClickOnEmptyCanvasKeepsSession(t *testing.T) {
	host, mgr, _ := newRig(t)
	addToken(host, "t1", 200, 200)

	mgr.Start("session-1", Options{})
	canvas.Dispatch(host.StageNode, canvas.EventPointerDown, &canvas.PointerEvent{
		Global: canvas.Point{X: 900, Y: 100},
		Button: canvas.ButtonLeft,
	})

	assert.True(t, mgr.Active())
}

func TestRightClickAborts(t *testing.T) {
	host, mgr, _ := newRig(t)

	var reason string
	mgr.Start("session-1", Options{OnAbort: func(r string) { reason = r }})

	canvas.Dispatch(host.StageNode, canvas.EventPointerDown, &canvas.PointerEvent{
		Global: canvas.Point{X: 10, Y: 10},
		Button: canvas.ButtonRight,
	})

	assert.Contains(t, reason, ManualAbortReason)
	assert.False(t, mgr.Active())
}

func TestEscapeAborts(t *testing.T) {
	_, mgr, _ := newRig(t)

	var reason string
	mgr.Start("session-1", Options{OnAbort: func(r string) { reason = r }})

	hooks.Call(hooks.EventKeyDown, "Escape")

	assert.Contains(t, reason, ManualAbortReason)
	assert.False(t, mgr.Active())
}

func TestStartReplacesPriorSession(t *testing.T) {
	_, mgr, _ := newRig(t)

	var firstReason string
	mgr.Start("first", Options{OnAbort: func(r string) { firstReason = r }})
	mgr.Start("second", Options{})

	assert.Contains(t, firstReason, "replaced")
	assert.Equal(t, "second", mgr.SessionID())
}

func TestEndRunsCleanupOnce(t *testing.T) {
	_, mgr, _ := newRig(t)

	cleanups := 0
	mgr.Start("session-1", Options{Cleanup: func() { cleanups++ }})

	mgr.End("done")
	mgr.End("done again")

	assert.Equal(t, 1, cleanups)
}

func TestMoveFollowsCursorAndSwapsHover(t *testing.T) {
	host, mgr, _ := newRig(t)
	tok := addToken(host, "t1", 200, 200)

	overs, outs := 0, 0
	tok.MeshNode.On(canvas.EventPointerOver, func(ev *canvas.PointerEvent) { overs++ })
	tok.MeshNode.On(canvas.EventPointerOut, func(ev *canvas.PointerEvent) { outs++ })

	mgr.Start("session-1", Options{})
	canvas.Dispatch(host.StageNode, canvas.EventPointerMove, &canvas.PointerEvent{Global: canvas.Point{X: 250, Y: 250}})
	canvas.Dispatch(host.StageNode, canvas.EventPointerMove, &canvas.PointerEvent{Global: canvas.Point{X: 900, Y: 100}})

	assert.Equal(t, 1, overs)
	assert.Equal(t, 1, outs)
}

func TestBindHooksEndsOnSceneChange(t *testing.T) {
	_, mgr, _ := newRig(t)
	mgr.BindHooks(hooks.Default, "tokencontextmenu.weaponMenuClosed")

	mgr.Start("session-1", Options{})
	hooks.Call(hooks.EventCanvasReady)

	assert.False(t, mgr.Active())
}

func TestRollWithoutTargetRequirementPostsCard(t *testing.T) {
	host, mgr, _ := newRig(t)
	tok := addToken(host, "t1", 200, 200)
	adapter := &fakeAdapter{needsTarget: false}

	mgr.BeginWeaponRoll(tok, "sword-t1", adapter, nil)

	require.Len(t, adapter.cards, 1)
	assert.Equal(t, "t1", adapter.cards[0].TokenID)
	assert.Equal(t, "sword-t1", adapter.cardItems[0])
	assert.False(t, mgr.Active())
}

func TestRollWithoutTargetRequirementClearsStaleTargets(t *testing.T) {
	host, mgr, _ := newRig(t)
	tok := addToken(host, "t1", 200, 200)
	stale := addToken(host, "t2", 600, 200)
	stale.SetTarget(true, true)
	adapter := &fakeAdapter{needsTarget: false}

	mgr.BeginWeaponRoll(tok, "sword-t1", adapter, nil)

	require.Len(t, adapter.cards, 1)
	assert.Empty(t, host.UserVal.Targets(), "stale target must not survive a direct roll")
}

func TestRollWithExistingTargetSkipsSession(t *testing.T) {
	host, mgr, _ := newRig(t)
	tok := addToken(host, "t1", 200, 200)
	enemy := addToken(host, "t2", 600, 200)
	enemy.SetTarget(true, true)
	settings.Set(settings.AutoRemoveTargets, false)
	adapter := &fakeAdapter{needsTarget: true}

	mgr.BeginWeaponRoll(tok, "sword-t1", adapter, nil)

	assert.Len(t, adapter.cards, 1)
	assert.False(t, mgr.Active())
}

func TestRollStashesFlagAndResumesOnSelect(t *testing.T) {
	host, mgr, _ := newRig(t)
	tok := addToken(host, "t1", 200, 200)
	addToken(host, "t2", 600, 200)
	adapter := &fakeAdapter{needsTarget: true}

	menuHidden := false
	mgr.BeginWeaponRoll(tok, "sword-t1", adapter, func() { menuHidden = true })

	assert.True(t, menuHidden)
	assert.True(t, mgr.Active())
	raw, ok := host.UserVal.GetFlag(FlagPendingRoll)
	require.True(t, ok)
	pending := raw.(PendingRoll)
	assert.Equal(t, "sword-t1", pending.ItemID)
	assert.Equal(t, "t1", pending.TokenID)

	canvas.Dispatch(host.StageNode, canvas.EventPointerDown, &canvas.PointerEvent{
		Global: canvas.Point{X: 650, Y: 250},
		Button: canvas.ButtonLeft,
	})

	require.Len(t, adapter.cards, 1)
	assert.Equal(t, "actor-t1", adapter.cardActors[0])
	_, ok = host.UserVal.GetFlag(FlagPendingRoll)
	assert.False(t, ok)
}

func TestManualAbortClearsFlagSilently(t *testing.T) {
	host, mgr, sink := newRig(t)
	tok := addToken(host, "t1", 200, 200)
	adapter := &fakeAdapter{needsTarget: true}

	mgr.BeginWeaponRoll(tok, "sword-t1", adapter, nil)
	hooks.Call(hooks.EventKeyDown, "Escape")

	_, ok := host.UserVal.GetFlag(FlagPendingRoll)
	assert.False(t, ok)
	assert.Empty(t, adapter.cards)
	assert.Empty(t, sink.warns)
}

func TestNonManualAbortWarns(t *testing.T) {
	host, mgr, sink := newRig(t)
	tok := addToken(host, "t1", 200, 200)
	adapter := &fakeAdapter{needsTarget: true}

	mgr.BeginWeaponRoll(tok, "sword-t1", adapter, nil)
	mgr.End("cancelled: scene changed")

	require.Len(t, sink.warns, 1)
	assert.True(t, strings.Contains(sink.warns[0], "scene changed"))
}

func TestStaleStashDropsRoll(t *testing.T) {
	host, mgr, _ := newRig(t)
	tok := addToken(host, "t1", 200, 200)
	addToken(host, "t2", 600, 200)
	adapter := &fakeAdapter{needsTarget: true}

	mgr.BeginWeaponRoll(tok, "sword-t1", adapter, nil)

	// A newer roll overwrote the stash while targeting was live.
	require.NoError(t, host.UserVal.SetFlag(FlagPendingRoll, PendingRoll{
		ActorID: "actor-t1", ItemID: "sword-t1", TokenID: "t1", Timestamp: -1,
	}))

	canvas.Dispatch(host.StageNode, canvas.EventPointerDown, &canvas.PointerEvent{
		Global: canvas.Point{X: 650, Y: 250},
		Button: canvas.ButtonLeft,
	})

	assert.Empty(t, adapter.cards)
	_, ok := host.UserVal.GetFlag(FlagPendingRoll)
	assert.False(t, ok)
}
