package canvas

import "testing"

func makeStage(t *testing.T) *Node {
	t.Helper()
	stage := NewContainer("stage")
	stage.Width, stage.Height = 800, 600
	return stage
}

func TestAddChild_SetsParent(t *testing.T) {
	stage := makeStage(t)
	child := NewContainer("child")
	stage.AddChild(child)

	if child.Parent() != stage {
		t.Error("child.Parent() != stage")
	}
	if len(stage.Children()) != 1 {
		t.Errorf("len(stage.Children()) = %d, want 1", len(stage.Children()))
	}
}

func TestAddChild_Reparents(t *testing.T) {
	a := NewContainer("a")
	b := NewContainer("b")
	child := NewContainer("child")

	a.AddChild(child)
	b.AddChild(child)

	if len(a.Children()) != 0 {
		t.Errorf("len(a.Children()) = %d, want 0", len(a.Children()))
	}
	if child.Parent() != b {
		t.Error("child.Parent() != b after reparent")
	}
}

func TestDestroy_DetachesAndDestroysSubtree(t *testing.T) {
	stage := makeStage(t)
	menu := NewContainer("menu")
	icon := NewShape("icon", 32, 32, ShapeSpec{})
	stage.AddChild(menu)
	menu.AddChild(icon)

	menu.Destroy(true)

	if len(stage.Children()) != 0 {
		t.Errorf("stage children after destroy = %d, want 0", len(stage.Children()))
	}
	if !menu.Destroyed() || !icon.Destroyed() {
		t.Error("subtree not fully destroyed")
	}
}

func TestDestroy_Idempotent(t *testing.T) {
	n := NewContainer("n")
	n.Destroy(true)
	n.Destroy(true)
	if !n.Destroyed() {
		t.Error("node not destroyed")
	}
}

func TestGlobalPosition_SumsAncestors(t *testing.T) {
	stage := makeStage(t)
	outer := NewContainer("outer")
	outer.Position = Point{X: 10, Y: 20}
	inner := NewContainer("inner")
	inner.Position = Point{X: 5, Y: 5}
	stage.AddChild(outer)
	outer.AddChild(inner)

	got := inner.GlobalPosition()
	if got.X != 15 || got.Y != 25 {
		t.Errorf("GlobalPosition() = %+v, want {15 25}", got)
	}
}

func TestContainsGlobal_DescendantBounds(t *testing.T) {
	stage := makeStage(t)
	menu := NewContainer("menu")
	menu.Position = Point{X: 100, Y: 100}
	bg := NewShape("bg", 50, 40, ShapeSpec{})
	stage.AddChild(menu)
	menu.AddChild(bg)

	if !menu.ContainsGlobal(Point{X: 120, Y: 120}) {
		t.Error("point inside child bounds not contained")
	}
	if menu.ContainsGlobal(Point{X: 300, Y: 300}) {
		t.Error("point outside bounds reported contained")
	}
}

func TestHitTest_PrefersTopmost(t *testing.T) {
	stage := makeStage(t)
	under := NewShape("under", 100, 100, ShapeSpec{})
	under.EventMode = EventModeStatic
	over := NewShape("over", 100, 100, ShapeSpec{})
	over.EventMode = EventModeStatic
	stage.AddChild(under)
	stage.AddChild(over)

	hit := HitTest(stage, Point{X: 50, Y: 50})
	if hit != over {
		t.Errorf("HitTest hit %v, want the later sibling", hit.Name)
	}
}

func TestHitTest_SkipsInvisibleAndNonInteractive(t *testing.T) {
	stage := makeStage(t)
	hidden := NewShape("hidden", 100, 100, ShapeSpec{})
	hidden.EventMode = EventModeStatic
	hidden.Visible = false
	inert := NewShape("inert", 100, 100, ShapeSpec{})
	stage.AddChild(hidden)
	stage.AddChild(inert)

	if hit := HitTest(stage, Point{X: 50, Y: 50}); hit != nil {
		t.Errorf("HitTest = %v, want nil", hit.Name)
	}
}

func TestDispatch_BubblesToAncestors(t *testing.T) {
	stage := makeStage(t)
	menu := NewContainer("menu")
	icon := NewShape("icon", 32, 32, ShapeSpec{})
	icon.EventMode = EventModeStatic
	stage.AddChild(menu)
	menu.AddChild(icon)

	var seen []string
	icon.On(EventPointerDown, func(ev *PointerEvent) { seen = append(seen, "icon") })
	menu.On(EventPointerDown, func(ev *PointerEvent) { seen = append(seen, "menu") })

	Dispatch(stage, EventPointerDown, &PointerEvent{Global: Point{X: 10, Y: 10}})

	if len(seen) != 2 || seen[0] != "icon" || seen[1] != "menu" {
		t.Errorf("bubble order = %v, want [icon menu]", seen)
	}
}

func TestDispatch_StopPropagation(t *testing.T) {
	stage := makeStage(t)
	menu := NewContainer("menu")
	icon := NewShape("icon", 32, 32, ShapeSpec{})
	icon.EventMode = EventModeStatic
	stage.AddChild(menu)
	menu.AddChild(icon)

	parentSeen := false
	icon.On(EventPointerDown, func(ev *PointerEvent) { ev.StopPropagation() })
	menu.On(EventPointerDown, func(ev *PointerEvent) { parentSeen = true })

	Dispatch(stage, EventPointerDown, &PointerEvent{Global: Point{X: 10, Y: 10}})

	if parentSeen {
		t.Error("propagation not stopped")
	}
}

func TestHitArea_OverridesNaturalBounds(t *testing.T) {
	stage := makeStage(t)
	n := NewContainer("hit")
	n.EventMode = EventModeStatic
	n.HitArea = &Rect{X: 0, Y: 0, W: 200, H: 200}
	stage.AddChild(n)

	if HitTest(stage, Point{X: 150, Y: 150}) != n {
		t.Error("hit area not honored")
	}
}
