package scanout

import (
	"image"
	"image/color"
	"testing"
)

func TestCursorImageRGBA(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			src.SetRGBA(x, y, color.RGBA{R: 0xff, A: 0xff})
		}
	}
	const w, h = 4, 4
	out := CursorImageRGBA(src, w, h)
	if len(out) != w*h*4 {
		t.Fatalf("len = %d, want %d", len(out), w*h*4)
	}
	// solid red in B,G,R,A order
	for px := 0; px < w*h; px++ {
		b, g, r, a := out[px*4], out[px*4+1], out[px*4+2], out[px*4+3]
		if b != 0 || g != 0 || r != 0xff || a != 0xff {
			t.Fatalf("pixel %d = (%d,%d,%d,%d), want (0,0,255,255)", px, b, g, r, a)
		}
	}
}
