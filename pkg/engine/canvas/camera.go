package canvas

// Camera is the host's view onto the scene: a pan position (the stage
// point at the center of the screen) and a zoom scale. AnimatePan runs on
// the host's frame loop; callers never await it.
type Camera interface {
	// View returns the current pan center and scale.
	View() (center Point, scale float64)
	// Pan jumps immediately to the given center and scale.
	Pan(center Point, scale float64)
	// AnimatePan eases toward the given center and scale over durationMS,
	// replacing any animation in progress.
	AnimatePan(center Point, scale float64, durationMS float64)
}

// Texture is an opaque handle to a loaded image. The concrete type
// belongs to the host renderer.
type Texture interface {
	Size() (w, h int)
}

// TextureLoader resolves image paths asynchronously. onDone runs on the
// host loop with either a texture or an error; it may run synchronously
// when the texture is already cached.
type TextureLoader interface {
	Load(path string, onDone func(tex Texture, err error))
}
