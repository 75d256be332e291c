package scanout

import (
	"log/slog"

	"github.com/scanout/scanout/gbuf"
	"github.com/scanout/scanout/internal/logx"
	"github.com/scanout/scanout/kms"
)

// cursorState is the overlay's private state: dimensions recorded by
// CursorInit, the single buffer object owned by the overlay, its kernel
// handle and the visibility flag. Independent of the frame pool.
type cursorState struct {
	width       uint32
	height      uint32
	bo          *gbuf.Object
	handle      uint32
	visible     bool
	premultiply bool
}

// CursorSize returns the device's hardware cursor plane dimensions,
// falling back to 64x64 when the driver reports none.
func (d *Display) CursorSize() (width, height uint32) {
	w, err := d.card.GetCap(kms.CapCursorWidth)
	if err != nil || w == 0 {
		w = 64
	}
	h, err := d.card.GetCap(kms.CapCursorHeight)
	if err != nil || h == 0 {
		h = 64
	}
	return uint32(w), uint32(h)
}

// CursorInit records the cursor dimensions. No buffer is allocated
// until the first CursorSetImage.
func (d *Display) CursorInit(width, height uint32) {
	if d == nil || d.closed {
		return
	}
	d.cursor.width = width
	d.cursor.height = height
}

// CursorSetImage uploads a new cursor image from raw packed 32-bit
// pixels, row-major, sized to the dimensions given to CursorInit. A
// source shorter than width*height*4 truncates the copy; later rows of
// the cursor buffer stay unwritten. The previous cursor buffer is
// destroyed and replaced even then, and if the cursor is visible the
// plane is repointed at the new buffer immediately.
//
// Like every cursor operation, failures are logged and swallowed; they
// never invalidate the Display.
func (d *Display) CursorSetImage(pixels []byte) {
	if d == nil || d.closed {
		return
	}
	if d.cursor.width == 0 || d.cursor.height == 0 {
		logx.Warn("cursor image before init", d.logger)
		return
	}
	bo, err := gbuf.NewObject(d.card, d.cursor.width, d.cursor.height,
		kms.FormatARGB8888, kms.ModifierLinear)
	if err != nil {
		logx.Warn("cursor buffer allocation failed", d.logger, "err", err)
		return
	}
	data, err := bo.Map()
	if err != nil {
		logx.Warn("cursor buffer map failed", d.logger, "err", err)
		logx.IsErr(bo.Destroy(), d.logger, slog.LevelWarn, "op", "cursor destroy")
		return
	}
	if d.cursor.premultiply {
		uploadPremultiplied(data, pixels, int(d.cursor.width), int(d.cursor.height), int(bo.Stride()))
	} else {
		uploadStraight(data, pixels, int(d.cursor.width), int(d.cursor.height), int(bo.Stride()))
	}
	logx.IsErr(bo.Unmap(), d.logger, slog.LevelWarn, "op", "cursor unmap")

	if d.cursor.bo != nil {
		logx.IsErr(d.cursor.bo.Destroy(), d.logger, slog.LevelWarn, "op", "cursor destroy")
	}
	d.cursor.bo = bo
	d.cursor.handle = bo.Handle()

	if d.cursor.visible {
		if err := d.card.SetCursor(d.crtcID, d.cursor.handle, d.cursor.width, d.cursor.height); err != nil {
			logx.Warn("cursor update failed", d.logger, "err", err)
		}
	}
}

// CursorSetVisible shows or hides the cursor plane. Hiding points the
// plane at the null handle; the buffer stays alive for the next show.
func (d *Display) CursorSetVisible(visible bool) {
	if d == nil || d.closed {
		return
	}
	var handle uint32
	if visible {
		handle = d.cursor.handle
	}
	if err := d.card.SetCursor(d.crtcID, handle, d.cursor.width, d.cursor.height); err != nil {
		logx.Warn("cursor visibility change failed", d.logger, "visible", visible, "err", err)
		return
	}
	d.cursor.visible = visible
}

// CursorSetLocation moves the cursor. Logical coordinates are scaled by
// the display scale factor into device pixels.
func (d *Display) CursorSetLocation(x, y int) {
	if d == nil || d.closed {
		return
	}
	dx := int32(float64(x) * d.scale)
	dy := int32(float64(y) * d.scale)
	if err := d.card.MoveCursor(d.crtcID, dx, dy); err != nil {
		logx.Warn("cursor move failed", d.logger, "x", dx, "y", dy, "err", err)
	}
}

// uploadStraight copies whole rows into the buffer, respecting its
// stride. The copy stops before any row the source cannot fill
// completely; no partial row is written.
func uploadStraight(dst, src []byte, width, height, stride int) {
	rowLen := width * 4
	for i := 0; i < height; i++ {
		if len(src) < rowLen*(i+1) {
			break
		}
		copy(dst[i*stride:i*stride+rowLen], src[i*rowLen:(i+1)*rowLen])
	}
}

// uploadPremultiplied copies pixel by pixel, scaling the color channels
// by alpha/255 and passing alpha through. Pixels are little-endian
// B,G,R,A in both source and destination. Stops at the first pixel the
// source cannot supply in full.
func uploadPremultiplied(dst, src []byte, width, height, stride int) {
	for i := 0; i < height; i++ {
		for j := 0; j < width; j++ {
			base := (i*width + j) * 4
			if base+3 >= len(src) {
				return
			}
			alpha := float64(src[base+3]) / 255
			out := i*stride + j*4
			dst[out] = byte(float64(src[base]) * alpha)
			dst[out+1] = byte(float64(src[base+1]) * alpha)
			dst[out+2] = byte(float64(src[base+2]) * alpha)
			dst[out+3] = src[base+3]
		}
	}
}
