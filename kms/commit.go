//go:build linux

package kms

import (
	"unsafe"

	"github.com/scanout/scanout/internal/errors"
)

type sysAtomic struct {
	flags         uint32
	countObjs     uint32
	objsPtr       uint64
	countPropsPtr uint64
	propsPtr      uint64
	propValuesPtr uint64
	reserved      uint64
	userData      uint64
}

// AtomicCommit applies all queued property changes of req in one
// all-or-nothing kernel transaction.
func (d *Device) AtomicCommit(req *AtomicRequest, flags uint32) error {
	objs, counts, propIDs, values := req.marshal()
	a := sysAtomic{
		flags:         flags,
		countObjs:     uint32(len(objs)),
		objsPtr:       slicePtr(objs),
		countPropsPtr: slicePtr(counts),
		propsPtr:      slicePtr(propIDs),
		propValuesPtr: slicePtr(values),
	}
	if err := d.ioctl(iowr(0xbc, unsafe.Sizeof(a)), unsafe.Pointer(&a)); err != nil {
		return errors.WrapPrefix(err, "atomic commit", 0)
	}
	return nil
}
