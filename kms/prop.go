//go:build linux

package kms

import (
	"unsafe"

	"github.com/scanout/scanout/internal/errors"
)

const propNameLen = 32

type sysGetProperty struct {
	valuesPtr      uint64
	enumBlobPtr    uint64
	propID         uint32
	flags          uint32
	name           [propNameLen]byte
	countValues    uint32
	countEnumBlobs uint32
}

type sysObjGetProperties struct {
	propsPtr      uint64
	propValuesPtr uint64
	countProps    uint32
	objID         uint32
	objType       uint32
	pad           uint32
}

type sysCreateBlob struct {
	data   uint64
	length uint32
	blobID uint32
}

type sysDestroyBlob struct {
	blobID uint32
}

// ObjectProperties resolves the full property table of one display
// object: every property id with its name and current value, in the
// order the kernel reports them.
func (d *Device) ObjectProperties(objID, objType uint32) ([]Property, error) {
	req := iowr(0xb9, unsafe.Sizeof(sysObjGetProperties{}))
	counts := sysObjGetProperties{objID: objID, objType: objType}
	if err := d.ioctl(req, unsafe.Pointer(&counts)); err != nil {
		return nil, errors.WrapPrefix(err, "get object properties", 0)
	}
	if counts.countProps == 0 {
		return nil, nil
	}
	ids := make([]uint32, counts.countProps)
	values := make([]uint64, counts.countProps)
	fill := sysObjGetProperties{
		objID:         objID,
		objType:       objType,
		countProps:    counts.countProps,
		propsPtr:      slicePtr(ids),
		propValuesPtr: slicePtr(values),
	}
	if err := d.ioctl(req, unsafe.Pointer(&fill)); err != nil {
		return nil, errors.WrapPrefix(err, "get object properties", 0)
	}
	return d.resolveProperties(ids[:fill.countProps], values[:fill.countProps])
}

// resolveProperties fetches the name of each property id.
func (d *Device) resolveProperties(ids []uint32, values []uint64) ([]Property, error) {
	props := make([]Property, 0, len(ids))
	for i, id := range ids {
		p := sysGetProperty{propID: id}
		if err := d.ioctl(iowr(0xaa, unsafe.Sizeof(p)), unsafe.Pointer(&p)); err != nil {
			return nil, errors.WrapPrefix(err, "get property", 0)
		}
		var value uint64
		if i < len(values) {
			value = values[i]
		}
		props = append(props, Property{ID: id, Name: cString(p.name[:]), Value: value})
	}
	return props, nil
}

func cString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

// CreateBlob registers an opaque property blob and returns its id.
func (d *Device) CreateBlob(data []byte) (uint32, error) {
	blob := sysCreateBlob{data: slicePtr(data), length: uint32(len(data))}
	if err := d.ioctl(iowr(0xbd, unsafe.Sizeof(blob)), unsafe.Pointer(&blob)); err != nil {
		return 0, errors.WrapPrefix(err, "create property blob", 0)
	}
	return blob.blobID, nil
}

// CreateModeBlob registers a mode-timing blob for use as a CRTC MODE_ID.
func (d *Device) CreateModeBlob(mode *ModeInfo) (uint32, error) {
	data := unsafe.Slice((*byte)(unsafe.Pointer(mode)), unsafe.Sizeof(*mode))
	return d.CreateBlob(data)
}

// DestroyBlob releases a property blob.
func (d *Device) DestroyBlob(id uint32) error {
	blob := sysDestroyBlob{blobID: id}
	if err := d.ioctl(iowr(0xbe, unsafe.Sizeof(blob)), unsafe.Pointer(&blob)); err != nil {
		return errors.WrapPrefix(err, "destroy property blob", 0)
	}
	return nil
}
