package kms

// ModeInfo mirrors struct drm_mode_modeinfo. The layout must match the
// kernel ABI exactly: connector queries read it back to back and mode
// blobs are created from its raw bytes.
type ModeInfo struct {
	Clock      uint32
	HDisplay   uint16
	HSyncStart uint16
	HSyncEnd   uint16
	HTotal     uint16
	HSkew      uint16
	VDisplay   uint16
	VSyncStart uint16
	VSyncEnd   uint16
	VTotal     uint16
	VScan      uint16
	VRefresh   uint32
	Flags      uint32
	Type       uint32
	NameRaw    [displayModeNameLen]byte
}

const displayModeNameLen = 32

// Name returns the kernel's mode name, e.g. "1920x1080".
func (m *ModeInfo) Name() string {
	for i, b := range m.NameRaw {
		if b == 0 {
			return string(m.NameRaw[:i])
		}
	}
	return string(m.NameRaw[:])
}

// Preferred reports whether the connector marked this mode preferred.
func (m *ModeInfo) Preferred() bool { return m.Type&ModeTypePreferred != 0 }

// PixelCount returns hdisplay*vdisplay, the resolution tie-breaker.
func (m *ModeInfo) PixelCount() int { return int(m.HDisplay) * int(m.VDisplay) }

// Resources holds the object id lists of a device node.
type Resources struct {
	FBs        []uint32
	CRTCs      []uint32
	Connectors []uint32
	Encoders   []uint32

	MinWidth, MaxWidth   uint32
	MinHeight, MaxHeight uint32
}

// HasEncoder reports whether id is one of the device's encoders.
func (r *Resources) HasEncoder(id uint32) bool { return containsID(r.Encoders, id) }

// HasCRTC reports whether id is one of the device's CRTCs.
func (r *Resources) HasCRTC(id uint32) bool { return containsID(r.CRTCs, id) }

func containsID(ids []uint32, id uint32) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// Connector describes one physical display link.
type Connector struct {
	ID         uint32
	EncoderID  uint32 // currently bound encoder, 0 if none
	Type       uint32
	TypeID     uint32
	Connection uint32
	MMWidth    uint32
	MMHeight   uint32
	Subpixel   uint32

	Modes    []ModeInfo
	Props    []Property
	Encoders []uint32
}

// Encoder describes the signal encoder between connector and CRTC.
type Encoder struct {
	ID            uint32
	Type          uint32
	CRTCID        uint32 // currently bound CRTC, 0 if none
	PossibleCRTCs uint32
	PossibleClone uint32
}

// CRTC describes one display pipeline.
type CRTC struct {
	ID        uint32
	FBID      uint32 // currently scanned-out framebuffer, 0 if inactive
	X, Y      uint32
	GammaSize uint32
	ModeValid uint32
	Mode      ModeInfo
}

// Plane describes one scanout plane.
type Plane struct {
	ID            uint32
	CRTCID        uint32 // CRTC the plane is bound to, 0 if idle
	FBID          uint32 // framebuffer the plane scans out, 0 if idle
	PossibleCRTCs uint32
	GammaSize     uint32
	Formats       []uint32
}

// Property is one settable attribute of a display object: its kernel id,
// resolved name and the value it had when queried.
type Property struct {
	ID    uint32
	Name  string
	Value uint64
}
