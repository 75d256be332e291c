package soft

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/scanout/scanout/internal/errors"
	"github.com/scanout/scanout/render"
)

// Canvas returns a draw.Image over the back buffer of the given window
// surface, mapping it on first use. Pixels written through the canvas
// land directly in the buffer that the next SwapBuffers finalizes.
func (b *Backend) Canvas(s render.Surface) (draw.Image, error) {
	surf, ok := b.surfaces[s]
	if !ok {
		return nil, errors.Errorf("soft: unknown surface handle %d", s)
	}
	back, err := surf.Back()
	if err != nil {
		return nil, errors.New(err)
	}
	data, err := back.Map()
	if err != nil {
		return nil, errors.New(err)
	}
	return &bgraImage{
		pix:    data,
		stride: int(back.Stride()),
		rect:   image.Rect(0, 0, int(back.Width()), int(back.Height())),
	}, nil
}

// bgraImage views an ARGB8888 little-endian scanout buffer (B,G,R,A byte
// order) as a draw.Image.
type bgraImage struct {
	pix    []byte
	stride int
	rect   image.Rectangle
}

func (p *bgraImage) ColorModel() color.Model { return color.RGBAModel }

func (p *bgraImage) Bounds() image.Rectangle { return p.rect }

func (p *bgraImage) At(x, y int) color.Color {
	if !(image.Point{x, y}.In(p.rect)) {
		return color.RGBA{}
	}
	i := p.pixOffset(x, y)
	return color.RGBA{R: p.pix[i+2], G: p.pix[i+1], B: p.pix[i], A: p.pix[i+3]}
}

func (p *bgraImage) Set(x, y int, c color.Color) {
	if !(image.Point{x, y}.In(p.rect)) {
		return
	}
	i := p.pixOffset(x, y)
	r, g, b, a := c.RGBA()
	p.pix[i] = uint8(b >> 8)
	p.pix[i+1] = uint8(g >> 8)
	p.pix[i+2] = uint8(r >> 8)
	p.pix[i+3] = uint8(a >> 8)
}

func (p *bgraImage) pixOffset(x, y int) int { return y*p.stride + x*4 }
