// Package canvas is the host's retained scene graph: a tree of named nodes
// with pointer event handlers, hit areas and named filters. The menu module
// attaches its own containers under host layers and removes them by name,
// so teardown never destroys host nodes.
package canvas

import "image/color"

// NodeKind discriminates what a node draws.
type NodeKind int

const (
	KindContainer NodeKind = iota
	KindShape
	KindSprite
	KindText
)

// EventMode controls whether a node participates in pointer hit testing.
type EventMode int

const (
	EventModeNone EventMode = iota
	EventModeStatic
)

// Filter is a named visual filter applied to a node. The name lets owners
// remove exactly the filters they added.
type Filter struct {
	Name     string
	Strength float64
	Quality  int
}

// ShapeSpec describes a KindShape node: a (rounded) rectangle fill with an
// optional stroke.
type ShapeSpec struct {
	Radius      float64
	Fill        color.RGBA
	Stroke      color.RGBA
	StrokeWidth float64
}

// TextSpec describes a KindText node.
type TextSpec struct {
	Content string
	Size    float64
	Color   color.RGBA
}

// Node is one element of the scene graph. Position is relative to the
// parent; Width/Height are the node's local bounds before scaling.
type Node struct {
	Name      string
	Kind      NodeKind
	Position  Point
	Width     float64
	Height    float64
	Scale     float64
	Alpha     float64
	Visible   bool
	EventMode EventMode
	HitArea   *Rect
	Filters   []Filter

	Shape   ShapeSpec
	Text    TextSpec
	Texture Texture

	parent    *Node
	children  []*Node
	handlers  map[string][]Handler
	destroyed bool
}

func newNode(name string, kind NodeKind) *Node {
	return &Node{
		Name:     name,
		Kind:     kind,
		Scale:    1,
		Alpha:    1,
		Visible:  true,
		handlers: make(map[string][]Handler),
	}
}

// NewContainer creates an empty container node.
func NewContainer(name string) *Node { return newNode(name, KindContainer) }

// NewShape creates a shape node with the given local size and spec.
func NewShape(name string, w, h float64, spec ShapeSpec) *Node {
	n := newNode(name, KindShape)
	n.Width, n.Height = w, h
	n.Shape = spec
	return n
}

// NewSprite creates a sprite node. The texture may be nil until an async
// load completes.
func NewSprite(name string, w, h float64, tex Texture) *Node {
	n := newNode(name, KindSprite)
	n.Width, n.Height = w, h
	n.Texture = tex
	return n
}

// NewText creates a text node.
func NewText(name string, spec TextSpec) *Node {
	n := newNode(name, KindText)
	n.Text = spec
	return n
}

// Parent returns the node's parent, or nil for a detached or root node.
func (n *Node) Parent() *Node { return n.parent }

// Children returns the node's children in draw order.
func (n *Node) Children() []*Node { return n.children }

// Destroyed reports whether Destroy has been called on this node.
func (n *Node) Destroyed() bool { return n.destroyed }

// AddChild appends child to this node, reparenting it if needed.
func (n *Node) AddChild(child *Node) {
	if child == nil || child.destroyed {
		return
	}
	if child.parent != nil {
		child.parent.RemoveChild(child)
	}
	child.parent = n
	n.children = append(n.children, child)
}

// RemoveChild detaches child from this node without destroying it.
func (n *Node) RemoveChild(child *Node) {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i:i], n.children[i+1:]...)
			child.parent = nil
			return
		}
	}
}

// RemoveChildren detaches every child without destroying them.
func (n *Node) RemoveChildren() []*Node {
	removed := n.children
	for _, c := range removed {
		c.parent = nil
	}
	n.children = nil
	return removed
}

// Destroy detaches the node from its parent, removes its listeners and,
// when children is true, destroys the whole subtree. Idempotent.
func (n *Node) Destroy(children bool) {
	if n.destroyed {
		return
	}
	n.destroyed = true
	if n.parent != nil {
		n.parent.RemoveChild(n)
	}
	n.handlers = make(map[string][]Handler)
	if children {
		for _, c := range n.RemoveChildren() {
			c.Destroy(true)
		}
	} else {
		n.RemoveChildren()
	}
}

// GlobalPosition returns the node's position in stage coordinates.
func (n *Node) GlobalPosition() Point {
	p := n.Position
	for a := n.parent; a != nil; a = a.parent {
		p.X += a.Position.X
		p.Y += a.Position.Y
	}
	return p
}

// GlobalBounds returns the node's hit bounds in stage coordinates. When a
// HitArea is set it is used instead of the node's natural size.
func (n *Node) GlobalBounds() Rect {
	g := n.GlobalPosition()
	if n.HitArea != nil {
		return Rect{X: g.X + n.HitArea.X, Y: g.Y + n.HitArea.Y, W: n.HitArea.W, H: n.HitArea.H}
	}
	return Rect{X: g.X, Y: g.Y, W: n.Width * n.Scale, H: n.Height * n.Scale}
}

// ContainsGlobal reports whether the global point lies inside the node's
// bounds or any descendant's bounds.
func (n *Node) ContainsGlobal(p Point) bool {
	if n.destroyed || !n.Visible {
		return false
	}
	b := n.GlobalBounds()
	if b.W > 0 && b.H > 0 && b.Contains(p) {
		return true
	}
	for _, c := range n.children {
		if c.ContainsGlobal(p) {
			return true
		}
	}
	return false
}
