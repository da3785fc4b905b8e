package host

import "tokencontextmenu/pkg/engine/canvas"

// demoCamera pans and zooms the scene. AnimatePan eases with a
// smoothstep curve driven from the host frame loop.
type demoCamera struct {
	center canvas.Point
	scale  float64

	animating   bool
	elapsed     float64
	duration    float64
	startCenter canvas.Point
	startScale  float64
	endCenter   canvas.Point
	endScale    float64
}

func newDemoCamera(center canvas.Point, scale float64) *demoCamera {
	return &demoCamera{center: center, scale: scale}
}

func (c *demoCamera) View() (canvas.Point, float64) {
	return c.center, c.scale
}

func (c *demoCamera) Pan(center canvas.Point, scale float64) {
	c.animating = false
	c.center = center
	c.scale = scale
}

func (c *demoCamera) AnimatePan(center canvas.Point, scale float64, durationMS float64) {
	if durationMS <= 0 {
		c.Pan(center, scale)
		return
	}
	c.animating = true
	c.elapsed = 0
	c.duration = durationMS
	c.startCenter = c.center
	c.startScale = c.scale
	c.endCenter = center
	c.endScale = scale
}

func (c *demoCamera) tick(deltaMS float64) {
	if !c.animating {
		return
	}
	c.elapsed += deltaMS
	t := c.elapsed / c.duration
	if t >= 1 {
		c.animating = false
		c.center = c.endCenter
		c.scale = c.endScale
		return
	}
	// Smoothstep ease in-out.
	t = t * t * (3 - 2*t)
	c.center.X = c.startCenter.X + (c.endCenter.X-c.startCenter.X)*t
	c.center.Y = c.startCenter.Y + (c.endCenter.Y-c.startCenter.Y)*t
	c.scale = c.startScale + (c.endScale-c.startScale)*t
}
