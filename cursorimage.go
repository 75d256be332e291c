package scanout

import (
	"image"

	xdraw "golang.org/x/image/draw"
)

// CursorImageRGBA converts an arbitrary image to the raw cursor byte
// contract: width*height*4 bytes, row-major, little-endian B,G,R,A.
// The image is scaled to the target dimensions with bilinear filtering.
func CursorImageRGBA(img image.Image, width, height int) []byte {
	scaled := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), img, img.Bounds(), xdraw.Over, nil)

	out := make([]byte, width*height*4)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			src := scaled.PixOffset(x, y)
			dst := (y*width + x) * 4
			out[dst] = scaled.Pix[src+2]
			out[dst+1] = scaled.Pix[src+1]
			out[dst+2] = scaled.Pix[src]
			out[dst+3] = scaled.Pix[src+3]
		}
	}
	return out
}
