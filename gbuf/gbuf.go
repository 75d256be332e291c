// Package gbuf manages scanout-capable GPU buffer objects and the
// fixed-pool swapchain surface the presentation engine renders through.
//
// Buffers are kernel dumb buffers with a linear memory layout. The
// Surface recycles a small fixed set of them: the renderer draws into
// the back buffer, Swap finalizes it as the next front buffer, LockFront
// hands it to the presentation engine and Release returns it to the
// pool once a newer frame is on screen.
package gbuf

import (
	stderrors "errors"

	"github.com/scanout/scanout/internal/errors"
)

// Allocator is the buffer allocation capability of an open device.
// *kms.Device implements it.
type Allocator interface {
	CreateDumb(width, height, bpp uint32) (handle, pitch uint32, size uint64, err error)
	MapDumb(handle uint32, size uint64) ([]byte, error)
	Unmap(data []byte) error
	DestroyDumb(handle uint32) error
}

var (
	ErrDestroyed = stderrors.New("buffer object destroyed")
)

// Object is one scanout-capable buffer object. It owns a kernel buffer
// handle and, after Map, a writable CPU mapping.
type Object struct {
	alloc     Allocator
	handle    uint32
	width     uint32
	height    uint32
	format    uint32
	stride    uint32
	modifier  uint64
	size      uint64
	data      []byte
	destroyed bool
}

// NewObject allocates a 32 bit-per-pixel buffer object.
func NewObject(alloc Allocator, width, height, format uint32, modifier uint64) (*Object, error) {
	handle, pitch, size, err := alloc.CreateDumb(width, height, 32)
	if err != nil {
		return nil, errors.New(err)
	}
	return &Object{
		alloc:    alloc,
		handle:   handle,
		width:    width,
		height:   height,
		format:   format,
		stride:   pitch,
		modifier: modifier,
		size:     size,
	}, nil
}

func (o *Object) Handle() uint32   { return o.handle }
func (o *Object) Width() uint32    { return o.width }
func (o *Object) Height() uint32   { return o.height }
func (o *Object) Format() uint32   { return o.format }
func (o *Object) Stride() uint32   { return o.stride }
func (o *Object) Size() uint64     { return o.size }
func (o *Object) Modifier() uint64 { return o.modifier }

// PlaneCount returns the number of memory planes. Linear dumb buffers
// are always single-plane.
func (o *Object) PlaneCount() int { return 1 }

func (o *Object) PlaneHandle(i int) uint32 {
	if i != 0 {
		return 0
	}
	return o.handle
}

func (o *Object) PlaneStride(i int) uint32 {
	if i != 0 {
		return 0
	}
	return o.stride
}

func (o *Object) PlaneOffset(i int) uint32 { return 0 }

// Map returns a writable mapping of the buffer, created on first use.
func (o *Object) Map() ([]byte, error) {
	if o.destroyed {
		return nil, errors.New(ErrDestroyed)
	}
	if o.data != nil {
		return o.data, nil
	}
	data, err := o.alloc.MapDumb(o.handle, o.size)
	if err != nil {
		return nil, errors.New(err)
	}
	o.data = data
	return data, nil
}

// Unmap drops the CPU mapping, if any.
func (o *Object) Unmap() error {
	if o.data == nil {
		return nil
	}
	data := o.data
	o.data = nil
	return o.alloc.Unmap(data)
}

// Destroy unmaps and frees the buffer object. Idempotent.
func (o *Object) Destroy() error {
	if o == nil || o.destroyed {
		return nil
	}
	o.destroyed = true
	err := o.Unmap()
	if derr := o.alloc.DestroyDumb(o.handle); derr != nil && err == nil {
		err = derr
	}
	return err
}
