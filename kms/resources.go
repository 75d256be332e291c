//go:build linux

package kms

import (
	"unsafe"

	"github.com/scanout/scanout/internal/errors"
)

// sys* mirror the drm_mode_* uapi structs. Array ioctls follow the
// kernel's two-pass protocol: first call with zero counts to learn the
// sizes, then again with caller-allocated arrays.

type sysResources struct {
	fbIDPtr        uint64
	crtcIDPtr      uint64
	connectorIDPtr uint64
	encoderIDPtr   uint64
	countFBs       uint32
	countCRTCs     uint32
	countConnects  uint32
	countEncoders  uint32
	minWidth       uint32
	maxWidth       uint32
	minHeight      uint32
	maxHeight      uint32
}

type sysGetConnector struct {
	encodersPtr   uint64
	modesPtr      uint64
	propsPtr      uint64
	propValuesPtr uint64
	countModes    uint32
	countProps    uint32
	countEncoders uint32
	encoderID     uint32
	connectorID   uint32
	connectorType uint32
	connectorTID  uint32
	connection    uint32
	mmWidth       uint32
	mmHeight      uint32
	subpixel      uint32
	pad           uint32
}

type sysGetEncoder struct {
	encoderID      uint32
	encoderType    uint32
	crtcID         uint32
	possibleCRTCs  uint32
	possibleClones uint32
}

type sysCRTC struct {
	setConnectorsPtr uint64
	countConnectors  uint32
	crtcID           uint32
	fbID             uint32
	x                uint32
	y                uint32
	gammaSize        uint32
	modeValid        uint32
	mode             ModeInfo
}

type sysGetPlaneRes struct {
	planeIDPtr  uint64
	countPlanes uint32
}

type sysGetPlane struct {
	planeID       uint32
	crtcID        uint32
	fbID          uint32
	possibleCRTCs uint32
	gammaSize     uint32
	countFormats  uint32
	formatTypePtr uint64
}

func slicePtr[T any](s []T) uint64 {
	if len(s) == 0 {
		return 0
	}
	return uint64(uintptr(unsafe.Pointer(&s[0])))
}

// Resources enumerates the device's framebuffer, CRTC, connector and
// encoder object ids.
func (d *Device) Resources() (*Resources, error) {
	req := iowr(0xa0, unsafe.Sizeof(sysResources{}))
	var counts sysResources
	if err := d.ioctl(req, unsafe.Pointer(&counts)); err != nil {
		return nil, errors.WrapPrefix(err, "get resources", 0)
	}
	res := &Resources{
		FBs:        make([]uint32, counts.countFBs),
		CRTCs:      make([]uint32, counts.countCRTCs),
		Connectors: make([]uint32, counts.countConnects),
		Encoders:   make([]uint32, counts.countEncoders),
	}
	fill := counts
	fill.fbIDPtr = slicePtr(res.FBs)
	fill.crtcIDPtr = slicePtr(res.CRTCs)
	fill.connectorIDPtr = slicePtr(res.Connectors)
	fill.encoderIDPtr = slicePtr(res.Encoders)
	if err := d.ioctl(req, unsafe.Pointer(&fill)); err != nil {
		return nil, errors.WrapPrefix(err, "get resources", 0)
	}
	res.FBs = res.FBs[:fill.countFBs]
	res.CRTCs = res.CRTCs[:fill.countCRTCs]
	res.Connectors = res.Connectors[:fill.countConnects]
	res.Encoders = res.Encoders[:fill.countEncoders]
	res.MinWidth, res.MaxWidth = fill.minWidth, fill.maxWidth
	res.MinHeight, res.MaxHeight = fill.minHeight, fill.maxHeight
	return res, nil
}

// Connector queries one connector with its modes, properties and the
// encoders it can drive.
func (d *Device) Connector(id uint32) (*Connector, error) {
	req := iowr(0xa7, unsafe.Sizeof(sysGetConnector{}))
	counts := sysGetConnector{connectorID: id}
	if err := d.ioctl(req, unsafe.Pointer(&counts)); err != nil {
		return nil, errors.WrapPrefix(err, "get connector", 0)
	}
	conn := &Connector{ID: id}
	modes := make([]ModeInfo, counts.countModes)
	propIDs := make([]uint32, counts.countProps)
	propValues := make([]uint64, counts.countProps)
	encoders := make([]uint32, counts.countEncoders)
	fill := sysGetConnector{
		connectorID:   id,
		countModes:    counts.countModes,
		countProps:    counts.countProps,
		countEncoders: counts.countEncoders,
		modesPtr:      slicePtr(modes),
		propsPtr:      slicePtr(propIDs),
		propValuesPtr: slicePtr(propValues),
		encodersPtr:   slicePtr(encoders),
	}
	if err := d.ioctl(req, unsafe.Pointer(&fill)); err != nil {
		return nil, errors.WrapPrefix(err, "get connector", 0)
	}
	conn.EncoderID = fill.encoderID
	conn.Type = fill.connectorType
	conn.TypeID = fill.connectorTID
	conn.Connection = fill.connection
	conn.MMWidth = fill.mmWidth
	conn.MMHeight = fill.mmHeight
	conn.Subpixel = fill.subpixel
	conn.Modes = modes[:fill.countModes]
	conn.Encoders = encoders[:fill.countEncoders]
	props, err := d.resolveProperties(propIDs[:fill.countProps], propValues[:fill.countProps])
	if err != nil {
		return nil, err
	}
	conn.Props = props
	return conn, nil
}

// Encoder queries one encoder.
func (d *Device) Encoder(id uint32) (*Encoder, error) {
	enc := sysGetEncoder{encoderID: id}
	if err := d.ioctl(iowr(0xa6, unsafe.Sizeof(enc)), unsafe.Pointer(&enc)); err != nil {
		return nil, errors.WrapPrefix(err, "get encoder", 0)
	}
	return &Encoder{
		ID:            enc.encoderID,
		Type:          enc.encoderType,
		CRTCID:        enc.crtcID,
		PossibleCRTCs: enc.possibleCRTCs,
		PossibleClone: enc.possibleClones,
	}, nil
}

// CRTC queries one display pipeline.
func (d *Device) CRTC(id uint32) (*CRTC, error) {
	crtc := sysCRTC{crtcID: id}
	if err := d.ioctl(iowr(0xa1, unsafe.Sizeof(crtc)), unsafe.Pointer(&crtc)); err != nil {
		return nil, errors.WrapPrefix(err, "get crtc", 0)
	}
	return &CRTC{
		ID:        crtc.crtcID,
		FBID:      crtc.fbID,
		X:         crtc.x,
		Y:         crtc.y,
		GammaSize: crtc.gammaSize,
		ModeValid: crtc.modeValid,
		Mode:      crtc.mode,
	}, nil
}

// PlaneResources enumerates all plane ids. Requires the universal-planes
// client capability to include primary and cursor planes.
func (d *Device) PlaneResources() ([]uint32, error) {
	req := iowr(0xb5, unsafe.Sizeof(sysGetPlaneRes{}))
	var counts sysGetPlaneRes
	if err := d.ioctl(req, unsafe.Pointer(&counts)); err != nil {
		return nil, errors.WrapPrefix(err, "get plane resources", 0)
	}
	planes := make([]uint32, counts.countPlanes)
	fill := sysGetPlaneRes{countPlanes: counts.countPlanes, planeIDPtr: slicePtr(planes)}
	if err := d.ioctl(req, unsafe.Pointer(&fill)); err != nil {
		return nil, errors.WrapPrefix(err, "get plane resources", 0)
	}
	return planes[:fill.countPlanes], nil
}

// Plane queries one scanout plane with its supported formats.
func (d *Device) Plane(id uint32) (*Plane, error) {
	req := iowr(0xb6, unsafe.Sizeof(sysGetPlane{}))
	counts := sysGetPlane{planeID: id}
	if err := d.ioctl(req, unsafe.Pointer(&counts)); err != nil {
		return nil, errors.WrapPrefix(err, "get plane", 0)
	}
	formats := make([]uint32, counts.countFormats)
	fill := sysGetPlane{
		planeID:       id,
		countFormats:  counts.countFormats,
		formatTypePtr: slicePtr(formats),
	}
	if err := d.ioctl(req, unsafe.Pointer(&fill)); err != nil {
		return nil, errors.WrapPrefix(err, "get plane", 0)
	}
	return &Plane{
		ID:            fill.planeID,
		CRTCID:        fill.crtcID,
		FBID:          fill.fbID,
		PossibleCRTCs: fill.possibleCRTCs,
		GammaSize:     fill.gammaSize,
		Formats:       formats[:fill.countFormats],
	}, nil
}
