package interaction

import (
	"testing"

	"tokencontextmenu/pkg/engine/canvas"
	"tokencontextmenu/pkg/engine/document/documenttest"
)

func makeToken(t *testing.T, id string) *documenttest.Token {
	t.Helper()
	mesh := canvas.NewContainer("token-" + id)
	mesh.Width, mesh.Height = 100, 100
	mesh.EventMode = canvas.EventModeStatic
	return &documenttest.Token{IDVal: id, NameVal: id, Owner: true, MeshNode: mesh}
}

func press(tok *documenttest.Token, d *Drag, at canvas.Point, cb Callbacks) {
	d.Begin(tok, at, cb)
}

func move(tok *documenttest.Token, at canvas.Point) {
	tok.MeshNode.Emit(canvas.EventPointerMove, &canvas.PointerEvent{Global: at})
}

func release(tok *documenttest.Token, at canvas.Point) {
	tok.MeshNode.Emit(canvas.EventPointerUp, &canvas.PointerEvent{Global: at})
}

func TestDrag_SmallMovementIsClick(t *testing.T) {
	d := NewDrag()
	tok := makeToken(t, "t1")
	var clicks, drags int
	press(tok, d, canvas.Point{X: 100, Y: 100}, Callbacks{
		OnClick:       func() { clicks++ },
		OnDragStarted: func() { drags++ },
	})

	move(tok, canvas.Point{X: 101, Y: 101})
	release(tok, canvas.Point{X: 101, Y: 101})

	if clicks != 1 {
		t.Errorf("clicks = %d, want 1", clicks)
	}
	if drags != 0 {
		t.Errorf("drag starts = %d, want 0", drags)
	}
}

func TestDrag_MovementBeyondThresholdIsDrag(t *testing.T) {
	d := NewDrag()
	tok := makeToken(t, "t1")
	var clicks, dragStarts, dragEnds int
	press(tok, d, canvas.Point{X: 200, Y: 200}, Callbacks{
		OnClick:       func() { clicks++ },
		OnDragStarted: func() { dragStarts++ },
		OnDragEnded:   func() { dragEnds++ },
	})

	move(tok, canvas.Point{X: 220, Y: 200})
	if !d.IsDragging("t1") {
		t.Error("IsDragging = false after move beyond threshold")
	}
	release(tok, canvas.Point{X: 220, Y: 200})

	if dragStarts != 1 || dragEnds != 1 {
		t.Errorf("dragStarts, dragEnds = %d, %d, want 1, 1", dragStarts, dragEnds)
	}
	if clicks != 0 {
		t.Errorf("clicks = %d, want 0 (property: a >5px gesture never clicks)", clicks)
	}
}

func TestDrag_DragStartedFiresOnce(t *testing.T) {
	d := NewDrag()
	tok := makeToken(t, "t1")
	starts := 0
	press(tok, d, canvas.Point{X: 0, Y: 0}, Callbacks{OnDragStarted: func() { starts++ }})

	move(tok, canvas.Point{X: 10, Y: 0})
	move(tok, canvas.Point{X: 20, Y: 0})
	move(tok, canvas.Point{X: 30, Y: 0})

	if starts != 1 {
		t.Errorf("OnDragStarted calls = %d, want 1", starts)
	}
}

func TestDrag_ThresholdIsExclusive(t *testing.T) {
	d := NewDrag()
	tok := makeToken(t, "t1")
	press(tok, d, canvas.Point{X: 0, Y: 0}, Callbacks{})

	// Exactly at the threshold counts as a drag (|dx| > T fails at 5,
	// but crossing in either axis at >=5 triggers).
	move(tok, canvas.Point{X: 4.9, Y: 4.9})
	if d.IsDragging("t1") {
		t.Error("IsDragging = true below threshold")
	}
	move(tok, canvas.Point{X: 5.1, Y: 0})
	if !d.IsDragging("t1") {
		t.Error("IsDragging = false past threshold")
	}
}

func TestDrag_ListenersUnboundOnRelease(t *testing.T) {
	d := NewDrag()
	tok := makeToken(t, "t1")
	press(tok, d, canvas.Point{X: 0, Y: 0}, Callbacks{})
	release(tok, canvas.Point{X: 0, Y: 0})

	if tok.MeshNode.HasListeners() {
		t.Error("mesh still has listeners after release")
	}
}

func TestDrag_UpOutsideAlsoFinishes(t *testing.T) {
	d := NewDrag()
	tok := makeToken(t, "t1")
	clicks := 0
	press(tok, d, canvas.Point{X: 0, Y: 0}, Callbacks{OnClick: func() { clicks++ }})

	tok.MeshNode.Emit(canvas.EventPointerUpOutside, &canvas.PointerEvent{Global: canvas.Point{X: 1, Y: 1}})

	if clicks != 1 {
		t.Errorf("clicks = %d, want 1", clicks)
	}
	if tok.MeshNode.HasListeners() {
		t.Error("listeners survived pointerupoutside")
	}
}

func TestDrag_ClearAbandonsGesture(t *testing.T) {
	d := NewDrag()
	tok := makeToken(t, "t1")
	clicks := 0
	press(tok, d, canvas.Point{X: 0, Y: 0}, Callbacks{OnClick: func() { clicks++ }})

	d.Clear("t1")
	release(tok, canvas.Point{X: 0, Y: 0})

	if clicks != 0 {
		t.Errorf("clicks after Clear = %d, want 0", clicks)
	}
}

func TestDrag_BeginReplacesPriorGesture(t *testing.T) {
	d := NewDrag()
	tok := makeToken(t, "t1")
	firstClicks := 0
	secondClicks := 0
	press(tok, d, canvas.Point{X: 0, Y: 0}, Callbacks{OnClick: func() { firstClicks++ }})
	press(tok, d, canvas.Point{X: 50, Y: 50}, Callbacks{OnClick: func() { secondClicks++ }})

	release(tok, canvas.Point{X: 51, Y: 50})

	if firstClicks != 0 || secondClicks != 1 {
		t.Errorf("clicks = (%d, %d), want (0, 1)", firstClicks, secondClicks)
	}
}
