//go:build linux

package kms

import (
	"os"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/scanout/scanout/internal/errors"
)

// Device is an open DRM device node. All methods issue blocking ioctls
// on its file descriptor; the Device itself holds no display state.
type Device struct {
	file *os.File
}

// Open opens a display device node, e.g. /dev/dri/card0.
func Open(path string) (*Device, error) {
	file, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, errors.New(err)
	}
	return &Device{file: file}, nil
}

// Fd returns the underlying file descriptor.
func (d *Device) Fd() uintptr { return d.file.Fd() }

// Path returns the device node path the Device was opened with.
func (d *Device) Path() string { return d.file.Name() }

func (d *Device) Close() error {
	if d == nil || d.file == nil {
		return nil
	}
	if err := d.file.Close(); err != nil {
		return errors.New(err)
	}
	return nil
}

// ioctl issues one ioctl, retrying on EINTR/EAGAIN like libdrm does.
func (d *Device) ioctl(req uintptr, arg unsafe.Pointer) error {
	for {
		_, _, errno := unix.Syscall(unix.SYS_IOCTL, d.file.Fd(), req, uintptr(arg))
		if errno == 0 {
			return nil
		}
		if errno == unix.EINTR || errno == unix.EAGAIN {
			continue
		}
		return errors.New(errno)
	}
}

type sysCapability struct {
	id  uint64
	val uint64
}

// GetCap queries a device capability.
func (d *Device) GetCap(id uint64) (uint64, error) {
	c := sysCapability{id: id}
	if err := d.ioctl(iowr(0x0c, unsafe.Sizeof(c)), unsafe.Pointer(&c)); err != nil {
		return 0, errors.WrapPrefix(err, "get cap", 0)
	}
	return c.val, nil
}

// SetClientCap negotiates a client capability, e.g. atomic mode setting.
func (d *Device) SetClientCap(id, val uint64) error {
	c := sysCapability{id: id, val: val}
	if err := d.ioctl(iow(0x0d, unsafe.Sizeof(c)), unsafe.Pointer(&c)); err != nil {
		return errors.WrapPrefix(err, "set client cap", 0)
	}
	return nil
}
