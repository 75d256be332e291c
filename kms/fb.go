//go:build linux

package kms

import (
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/scanout/scanout/internal/errors"
)

type sysFBCmd2 struct {
	fbID      uint32
	width     uint32
	height    uint32
	format    uint32
	flags     uint32
	handles   [maxFBPlanes]uint32
	pitches   [maxFBPlanes]uint32
	offsets   [maxFBPlanes]uint32
	modifiers [maxFBPlanes]uint64
}

type sysCreateDumb struct {
	height uint32
	width  uint32
	bpp    uint32
	flags  uint32
	handle uint32
	pitch  uint32
	size   uint64
}

type sysMapDumb struct {
	handle uint32
	pad    uint32
	offset uint64
}

type sysDestroyDumb struct {
	handle uint32
}

// AddFB2 registers a scanout framebuffer for a buffer object using its
// per-plane handles, pitches and offsets. Pass FBModifiers in flags when
// the modifier entries are meaningful.
func (d *Device) AddFB2(width, height, format uint32, handles, pitches, offsets [4]uint32, modifiers [4]uint64, flags uint32) (uint32, error) {
	fb := sysFBCmd2{
		width:     width,
		height:    height,
		format:    format,
		flags:     flags,
		handles:   handles,
		pitches:   pitches,
		offsets:   offsets,
		modifiers: modifiers,
	}
	if err := d.ioctl(iowr(0xb8, unsafe.Sizeof(fb)), unsafe.Pointer(&fb)); err != nil {
		return 0, errors.WrapPrefix(err, "add framebuffer", 0)
	}
	return fb.fbID, nil
}

// RmFB releases a framebuffer registration.
func (d *Device) RmFB(id uint32) error {
	if err := d.ioctl(iowr(0xaf, unsafe.Sizeof(id)), unsafe.Pointer(&id)); err != nil {
		return errors.WrapPrefix(err, "remove framebuffer", 0)
	}
	return nil
}

// CreateDumb allocates a kernel dumb buffer and returns its handle,
// row pitch and total size.
func (d *Device) CreateDumb(width, height, bpp uint32) (handle, pitch uint32, size uint64, err error) {
	buf := sysCreateDumb{width: width, height: height, bpp: bpp}
	if err := d.ioctl(iowr(0xb2, unsafe.Sizeof(buf)), unsafe.Pointer(&buf)); err != nil {
		return 0, 0, 0, errors.WrapPrefix(err, "create dumb buffer", 0)
	}
	return buf.handle, buf.pitch, buf.size, nil
}

// MapDumb maps a dumb buffer for writing and returns the mapped bytes.
func (d *Device) MapDumb(handle uint32, size uint64) ([]byte, error) {
	m := sysMapDumb{handle: handle}
	if err := d.ioctl(iowr(0xb3, unsafe.Sizeof(m)), unsafe.Pointer(&m)); err != nil {
		return nil, errors.WrapPrefix(err, "map dumb buffer", 0)
	}
	data, err := unix.Mmap(int(d.file.Fd()), int64(m.offset), int(size),
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, errors.WrapPrefix(err, "mmap dumb buffer", 0)
	}
	return data, nil
}

// Unmap releases a mapping returned by MapDumb.
func (d *Device) Unmap(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	if err := unix.Munmap(data); err != nil {
		return errors.New(err)
	}
	return nil
}

// DestroyDumb frees a dumb buffer.
func (d *Device) DestroyDumb(handle uint32) error {
	buf := sysDestroyDumb{handle: handle}
	if err := d.ioctl(iowr(0xb4, unsafe.Sizeof(buf)), unsafe.Pointer(&buf)); err != nil {
		return errors.WrapPrefix(err, "destroy dumb buffer", 0)
	}
	return nil
}
