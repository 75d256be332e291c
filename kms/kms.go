// Package kms is a pure Go wire layer over the Linux kernel mode-setting
// interface (DRM/KMS). It exposes the display objects the kernel
// enumerates on a device node - connectors, encoders, CRTCs, planes -
// together with their property tables, scanout framebuffer registration,
// dumb buffer allocation, the hardware cursor calls and atomic commits.
//
// The package is deliberately thin: every method is one blocking ioctl,
// errors carry the kernel's errno description, and no state is cached.
package kms

// Object types for property queries.
const (
	ObjectCRTC      = 0xcccccccc
	ObjectConnector = 0xc0c0c0c0
	ObjectEncoder   = 0xe0e0e0e0
	ObjectPlane     = 0xeeeeeeee
	ObjectAny       = 0
)

// Connector link states.
const (
	Connected         = 1
	Disconnected      = 2
	UnknownConnection = 3
)

// Mode type flags (drm_mode_modeinfo.type).
const (
	ModeTypePreferred = 1 << 3
	ModeTypeDriver    = 1 << 6
)

// Client capabilities negotiated with SetClientCap.
const (
	ClientCapStereo3D        = 1
	ClientCapUniversalPlanes = 2
	ClientCapAtomic          = 3
)

// Device capabilities queried with GetCap.
const (
	CapDumbBuffer      = 0x1
	CapCursorWidth     = 0x8
	CapCursorHeight    = 0x9
	CapAddFB2Modifiers = 0x10
)

// Atomic commit flags.
const (
	PageFlipEvent      = 0x01
	PageFlipAsync      = 0x02
	AtomicTestOnly     = 0x0100
	AtomicNonblock     = 0x0200
	AtomicAllowModeset = 0x0400
)

// Framebuffer registration flags (AddFB2).
const (
	FBModifiers = 0x2
)

// maxFBPlanes is the kernel's per-framebuffer plane limit.
const maxFBPlanes = 4

// fourcc packs a little-endian pixel format code.
func fourcc(a, b, c, d byte) uint32 {
	return uint32(a) | uint32(b)<<8 | uint32(c)<<16 | uint32(d)<<24
}

// Pixel formats.
var (
	FormatARGB8888 = fourcc('A', 'R', '2', '4')
	FormatXRGB8888 = fourcc('X', 'R', '2', '4')
)

// Memory layout modifiers.
const (
	ModifierLinear  uint64 = 0
	ModifierInvalid uint64 = 0x00ffffffffffffff
)
