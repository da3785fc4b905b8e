package tooltip

import (
	"testing"

	"tokencontextmenu/pkg/engine/canvas"
	"tokencontextmenu/pkg/engine/document/documenttest"
)

func findTooltip(stage *canvas.Node) *canvas.Node {
	for _, c := range stage.Children() {
		if c.Name == NodeName {
			return c
		}
	}
	return nil
}

func TestShowAttachesSingleNode(t *testing.T) {
	host := documenttest.NewHost()
	m := New(host)

	m.Show([]string{"Longsword", "Damage: Str+d8"}, canvas.Point{X: 100, Y: 100})
	if !m.Visible() {
		t.Fatal("tooltip not visible after Show")
	}
	first := findTooltip(host.StageNode)
	if first == nil {
		t.Fatal("tooltip node not attached to stage")
	}

	m.Show([]string{"Crossbow"}, canvas.Point{X: 200, Y: 200})
	count := 0
	for _, c := range host.StageNode.Children() {
		if c.Name == NodeName {
			count++
		}
	}
	if count != 1 {
		t.Errorf("tooltip nodes on stage = %d, want 1", count)
	}
	if !first.Destroyed() {
		t.Error("replaced tooltip node not destroyed")
	}
}

func TestShowDropsBlankLines(t *testing.T) {
	host := documenttest.NewHost()
	m := New(host)

	m.Show([]string{"", "  "}, canvas.Point{})
	if m.Visible() {
		t.Error("tooltip visible for all-blank lines")
	}

	m.Show([]string{"Bolt", ""}, canvas.Point{})
	node := findTooltip(host.StageNode)
	if node == nil {
		t.Fatal("tooltip node not attached")
	}
	texts := 0
	for _, c := range node.Children() {
		if c.Kind == canvas.KindText {
			texts++
		}
	}
	if texts != 1 {
		t.Errorf("text lines = %d, want 1", texts)
	}
}

func TestPositionClampsToScreen(t *testing.T) {
	host := documenttest.NewHost()
	w, h := host.ScreenSize()
	m := New(host)

	m.Show([]string{"Select Target"}, canvas.Point{X: w - 1, Y: h - 1})
	node := findTooltip(host.StageNode)
	if node == nil {
		t.Fatal("tooltip node not attached")
	}
	if node.Position.X+node.Width > w {
		t.Errorf("tooltip overflows right edge: x=%v w=%v screen=%v", node.Position.X, node.Width, w)
	}
	if node.Position.Y+node.Height > h {
		t.Errorf("tooltip overflows bottom edge: y=%v h=%v screen=%v", node.Position.Y, node.Height, h)
	}
}

func TestMoveToFollowsCursor(t *testing.T) {
	host := documenttest.NewHost()
	m := New(host)

	// MoveTo before Show is a no-op.
	m.MoveTo(canvas.Point{X: 50, Y: 50})
	if m.Visible() {
		t.Fatal("MoveTo created a tooltip")
	}

	m.Show([]string{"Select Target"}, canvas.Point{X: 10, Y: 10})
	node := findTooltip(host.StageNode)
	before := node.Position

	m.MoveTo(canvas.Point{X: 300, Y: 300})
	if node.Position == before {
		t.Error("tooltip did not move with cursor")
	}
	if node.Position.X != 300+cursorGapX || node.Position.Y != 300+cursorGapY {
		t.Errorf("position = %v, want offset from cursor", node.Position)
	}
}

func TestHideIsIdempotent(t *testing.T) {
	host := documenttest.NewHost()
	m := New(host)

	m.Show([]string{"Dagger"}, canvas.Point{})
	node := findTooltip(host.StageNode)

	m.Hide()
	m.Hide()
	if m.Visible() {
		t.Error("tooltip still visible after Hide")
	}
	if !node.Destroyed() {
		t.Error("tooltip node not destroyed")
	}
	if findTooltip(host.StageNode) != nil {
		t.Error("tooltip node still attached to stage")
	}
}
