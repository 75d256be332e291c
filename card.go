package scanout

import (
	"github.com/scanout/scanout/gbuf"
	"github.com/scanout/scanout/kms"
)

// card is the kernel-device capability the Display drives. *kms.Device
// implements it; tests substitute a fake.
type card interface {
	gbuf.Allocator

	Fd() uintptr
	Close() error

	SetClientCap(id, val uint64) error
	GetCap(id uint64) (uint64, error)

	Resources() (*kms.Resources, error)
	Connector(id uint32) (*kms.Connector, error)
	Encoder(id uint32) (*kms.Encoder, error)
	CRTC(id uint32) (*kms.CRTC, error)
	PlaneResources() ([]uint32, error)
	Plane(id uint32) (*kms.Plane, error)
	ObjectProperties(objID, objType uint32) ([]kms.Property, error)

	CreateModeBlob(mode *kms.ModeInfo) (uint32, error)
	DestroyBlob(id uint32) error

	AddFB2(width, height, format uint32, handles, pitches, offsets [4]uint32, modifiers [4]uint64, flags uint32) (uint32, error)
	RmFB(id uint32) error

	AtomicCommit(req *kms.AtomicRequest, flags uint32) error

	SetCursor(crtcID, handle, width, height uint32) error
	MoveCursor(crtcID uint32, x, y int32) error
}
