package host

import (
	"hash/fnv"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"

	"tokencontextmenu/pkg/engine/canvas"
)

// texture wraps an ebiten image behind the canvas texture handle.
type texture struct {
	img *ebiten.Image
}

func (t *texture) Size() (int, int) {
	b := t.img.Bounds()
	return b.Dx(), b.Dy()
}

// textureLoader serves generated placeholder art. The demo ships no
// image assets; each path resolves to a flat tile tinted from a hash of
// the path so distinct items stay visually distinct. Loads complete
// synchronously, which the loader contract allows for cached textures.
type textureLoader struct {
	cache map[string]*texture
}

func newTextureLoader() *textureLoader {
	return &textureLoader{cache: make(map[string]*texture)}
}

func (l *textureLoader) Load(path string, onDone func(tex canvas.Texture, err error)) {
	if tex, ok := l.cache[path]; ok {
		onDone(tex, nil)
		return
	}
	img := ebiten.NewImage(64, 64)
	img.Fill(tintFor(path))
	tex := &texture{img: img}
	l.cache[path] = tex
	onDone(tex, nil)
}

// tintFor derives a stable mid-brightness color from a path.
func tintFor(path string) color.RGBA {
	h := fnv.New32a()
	h.Write([]byte(path))
	v := h.Sum32()
	return color.RGBA{
		R: 0x50 + uint8(v>>16)%0x80,
		G: 0x50 + uint8(v>>8)%0x80,
		B: 0x50 + uint8(v)%0x80,
		A: 0xff,
	}
}
