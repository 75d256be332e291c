//go:build linux

package kms

import (
	"unsafe"

	"github.com/scanout/scanout/internal/errors"
)

const (
	cursorFlagBO   = 0x01
	cursorFlagMove = 0x02
)

type sysCursor struct {
	flags  uint32
	crtcID uint32
	x      int32
	y      int32
	width  uint32
	height uint32
	handle uint32
}

// SetCursor binds a buffer object to the CRTC's hardware cursor plane.
// A zero handle hides the cursor.
func (d *Device) SetCursor(crtcID, handle, width, height uint32) error {
	c := sysCursor{
		flags:  cursorFlagBO,
		crtcID: crtcID,
		width:  width,
		height: height,
		handle: handle,
	}
	if err := d.ioctl(iowr(0xa3, unsafe.Sizeof(c)), unsafe.Pointer(&c)); err != nil {
		return errors.WrapPrefix(err, "set cursor", 0)
	}
	return nil
}

type sysCursor2 struct {
	flags  uint32
	crtcID uint32
	x      int32
	y      int32
	width  uint32
	height uint32
	handle uint32
	hotX   int32
	hotY   int32
}

// SetCursor2 is SetCursor with a hotspot, for drivers that place the
// cursor image relative to it.
func (d *Device) SetCursor2(crtcID, handle, width, height uint32, hotX, hotY int32) error {
	c := sysCursor2{
		flags:  cursorFlagBO,
		crtcID: crtcID,
		width:  width,
		height: height,
		handle: handle,
		hotX:   hotX,
		hotY:   hotY,
	}
	if err := d.ioctl(iowr(0xbb, unsafe.Sizeof(c)), unsafe.Pointer(&c)); err != nil {
		return errors.WrapPrefix(err, "set cursor", 0)
	}
	return nil
}

// MoveCursor positions the hardware cursor in device pixels.
func (d *Device) MoveCursor(crtcID uint32, x, y int32) error {
	c := sysCursor{
		flags:  cursorFlagMove,
		crtcID: crtcID,
		x:      x,
		y:      y,
	}
	if err := d.ioctl(iowr(0xa3, unsafe.Sizeof(c)), unsafe.Pointer(&c)); err != nil {
		return errors.WrapPrefix(err, "move cursor", 0)
	}
	return nil
}
