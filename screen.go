package scanout

// NativeFormatBGRAPre identifies byte-order B,G,R,A with premultiplied
// alpha, the only pixel layout this backend scans out.
const NativeFormatBGRAPre = 1

// Screen describes one output's geometry as reported to the embedding
// application. Dimensions are in logical pixels, the mode's device
// pixels divided by the scale factor.
type Screen struct {
	Width        int
	Height       int
	OffsetX      int
	OffsetY      int
	Depth        int
	DPI          int
	Scale        float64
	NativeFormat int
}

// ScreenCount returns the number of outputs. A Display drives exactly
// one connector, so this is always 1 for a live handle.
func (d *Display) ScreenCount() int {
	if d == nil || d.closed {
		return 0
	}
	return 1
}

// Screen returns the geometry of the single output. Depth and DPI are
// fixed at 32 and 96; the kernel interface exposes neither.
func (d *Display) Screen() Screen {
	return Screen{
		Width:        int(float64(d.mode.HDisplay) / d.scale),
		Height:       int(float64(d.mode.VDisplay) / d.scale),
		Depth:        32,
		DPI:          96,
		Scale:        d.scale,
		NativeFormat: NativeFormatBGRAPre,
	}
}
