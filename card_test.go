package scanout

import (
	"fmt"

	"github.com/scanout/scanout/kms"
)

// fakeCard is an in-memory card with a scriptable pipeline topology.
// It records every mutating call so tests can assert on call order and
// transaction contents.
type fakeCard struct {
	connectorOrder []uint32
	connectors     map[uint32]*kms.Connector
	connectorErr   map[uint32]error
	encoders       map[uint32]*kms.Encoder
	crtcs          map[uint32]*kms.CRTC
	planeOrder     []uint32
	planes         map[uint32]*kms.Plane
	props          map[uint32][]kms.Property

	clientCaps   map[uint64]uint64
	clientCapErr error
	caps         map[uint64]uint64

	// events records mutating calls in order, e.g. "destroydumb 1".
	events []string

	nextHandle uint32
	buffers    map[uint32]uint64 // live dumb handles -> size

	nextFB     uint32
	fbs        map[uint32]bool
	addFBCalls int
	addFBErr   error

	nextBlob uint32
	blobs    map[uint32]bool

	commits   []commitRecord
	commitErr error

	cursorSets  []cursorSetCall
	cursorMoves []cursorMoveCall
	cursorErr   error

	closed bool
}

type commitRecord struct {
	req   *kms.AtomicRequest
	flags uint32
}

type cursorSetCall struct{ crtc, handle, width, height uint32 }

type cursorMoveCall struct {
	crtc uint32
	x, y int32
}

func testMode(w, h uint16, preferred bool) kms.ModeInfo {
	m := kms.ModeInfo{HDisplay: w, VDisplay: h, VRefresh: 60}
	if preferred {
		m.Type = kms.ModeTypePreferred
	}
	copy(m.NameRaw[:], fmt.Sprintf("%dx%d", w, h))
	return m
}

// Standard object ids of the fake topology.
const (
	fakeConnDisconnected = 10
	fakeConnNoModes      = 11
	fakeConn             = 12
	fakeEncoder          = 20
	fakeCRTC             = 30
	fakePlaneIdle        = 40
	fakePlane            = 41
	fakeBootFB           = 99

	propConnCRTCID = 100
	propCRTCModeID = 200
	propCRTCActive = 201
	propPlaneFBID  = 300
	propPlaneCRTC  = 301
	propSrcX       = 302
	propSrcY       = 303
	propSrcW       = 304
	propSrcH       = 305
	propCRTCX      = 306
	propCRTCY      = 307
	propCRTCW      = 308
	propCRTCH      = 309
)

// newFakeCard builds the standard topology: a disconnected connector, a
// connected one without modes, and a usable one whose encoder, CRTC and
// active plane form a working pipeline.
func newFakeCard() *fakeCard {
	return &fakeCard{
		connectorOrder: []uint32{fakeConnDisconnected, fakeConnNoModes, fakeConn},
		connectors: map[uint32]*kms.Connector{
			fakeConnDisconnected: {ID: fakeConnDisconnected, Connection: kms.Disconnected},
			fakeConnNoModes:      {ID: fakeConnNoModes, Connection: kms.Connected},
			fakeConn: {
				ID:         fakeConn,
				Connection: kms.Connected,
				EncoderID:  fakeEncoder,
				Modes: []kms.ModeInfo{
					testMode(1920, 1080, false),
					testMode(1280, 720, true),
				},
			},
		},
		connectorErr: map[uint32]error{},
		encoders: map[uint32]*kms.Encoder{
			fakeEncoder: {ID: fakeEncoder, CRTCID: fakeCRTC},
		},
		crtcs: map[uint32]*kms.CRTC{
			fakeCRTC: {ID: fakeCRTC, FBID: fakeBootFB},
		},
		planeOrder: []uint32{fakePlaneIdle, fakePlane},
		planes: map[uint32]*kms.Plane{
			fakePlaneIdle: {ID: fakePlaneIdle},
			fakePlane:     {ID: fakePlane, CRTCID: fakeCRTC, FBID: fakeBootFB},
		},
		props: map[uint32][]kms.Property{
			fakeConn: {{ID: propConnCRTCID, Name: "CRTC_ID"}},
			fakeCRTC: {
				{ID: propCRTCModeID, Name: "MODE_ID"},
				{ID: propCRTCActive, Name: "ACTIVE"},
			},
			fakePlane: {
				{ID: propPlaneFBID, Name: "FB_ID"},
				{ID: propPlaneCRTC, Name: "CRTC_ID"},
				{ID: propSrcX, Name: "SRC_X"},
				{ID: propSrcY, Name: "SRC_Y"},
				{ID: propSrcW, Name: "SRC_W"},
				{ID: propSrcH, Name: "SRC_H"},
				{ID: propCRTCX, Name: "CRTC_X"},
				{ID: propCRTCY, Name: "CRTC_Y"},
				{ID: propCRTCW, Name: "CRTC_W"},
				{ID: propCRTCH, Name: "CRTC_H"},
			},
		},
		clientCaps: map[uint64]uint64{},
		caps:       map[uint64]uint64{},
		buffers:    map[uint32]uint64{},
		fbs:        map[uint32]bool{},
		blobs:      map[uint32]bool{},
	}
}

func (c *fakeCard) Fd() uintptr { return 3 }

func (c *fakeCard) Close() error {
	c.closed = true
	c.events = append(c.events, "close")
	return nil
}

func (c *fakeCard) SetClientCap(id, val uint64) error {
	if c.clientCapErr != nil {
		return c.clientCapErr
	}
	c.clientCaps[id] = val
	return nil
}

func (c *fakeCard) GetCap(id uint64) (uint64, error) { return c.caps[id], nil }

func (c *fakeCard) Resources() (*kms.Resources, error) {
	res := &kms.Resources{Connectors: c.connectorOrder}
	for id := range c.encoders {
		res.Encoders = append(res.Encoders, id)
	}
	for id := range c.crtcs {
		res.CRTCs = append(res.CRTCs, id)
	}
	return res, nil
}

func (c *fakeCard) Connector(id uint32) (*kms.Connector, error) {
	if err := c.connectorErr[id]; err != nil {
		return nil, err
	}
	conn, ok := c.connectors[id]
	if !ok {
		return nil, fmt.Errorf("no connector %d", id)
	}
	return conn, nil
}

func (c *fakeCard) Encoder(id uint32) (*kms.Encoder, error) {
	enc, ok := c.encoders[id]
	if !ok {
		return nil, fmt.Errorf("no encoder %d", id)
	}
	return enc, nil
}

func (c *fakeCard) CRTC(id uint32) (*kms.CRTC, error) {
	crtc, ok := c.crtcs[id]
	if !ok {
		return nil, fmt.Errorf("no crtc %d", id)
	}
	return crtc, nil
}

func (c *fakeCard) PlaneResources() ([]uint32, error) { return c.planeOrder, nil }

func (c *fakeCard) Plane(id uint32) (*kms.Plane, error) {
	plane, ok := c.planes[id]
	if !ok {
		return nil, fmt.Errorf("no plane %d", id)
	}
	return plane, nil
}

func (c *fakeCard) ObjectProperties(objID, objType uint32) ([]kms.Property, error) {
	return c.props[objID], nil
}

func (c *fakeCard) CreateModeBlob(mode *kms.ModeInfo) (uint32, error) {
	c.nextBlob++
	c.blobs[c.nextBlob] = true
	c.events = append(c.events, fmt.Sprintf("createblob %d", c.nextBlob))
	return c.nextBlob, nil
}

func (c *fakeCard) DestroyBlob(id uint32) error {
	if !c.blobs[id] {
		return fmt.Errorf("no blob %d", id)
	}
	delete(c.blobs, id)
	c.events = append(c.events, fmt.Sprintf("destroyblob %d", id))
	return nil
}

func (c *fakeCard) AddFB2(width, height, format uint32, handles, pitches, offsets [4]uint32, modifiers [4]uint64, flags uint32) (uint32, error) {
	c.addFBCalls++
	if c.addFBErr != nil {
		return 0, c.addFBErr
	}
	c.nextFB++
	c.fbs[c.nextFB] = true
	c.events = append(c.events, fmt.Sprintf("addfb %d", c.nextFB))
	return c.nextFB, nil
}

func (c *fakeCard) RmFB(id uint32) error {
	if !c.fbs[id] {
		return fmt.Errorf("no fb %d", id)
	}
	delete(c.fbs, id)
	c.events = append(c.events, fmt.Sprintf("rmfb %d", id))
	return nil
}

func (c *fakeCard) AtomicCommit(req *kms.AtomicRequest, flags uint32) error {
	if c.commitErr != nil {
		return c.commitErr
	}
	c.commits = append(c.commits, commitRecord{req: req, flags: flags})
	return nil
}

func (c *fakeCard) SetCursor(crtcID, handle, width, height uint32) error {
	if c.cursorErr != nil {
		return c.cursorErr
	}
	c.cursorSets = append(c.cursorSets, cursorSetCall{crtcID, handle, width, height})
	return nil
}

func (c *fakeCard) MoveCursor(crtcID uint32, x, y int32) error {
	if c.cursorErr != nil {
		return c.cursorErr
	}
	c.cursorMoves = append(c.cursorMoves, cursorMoveCall{crtcID, x, y})
	return nil
}

func (c *fakeCard) CreateDumb(width, height, bpp uint32) (uint32, uint32, uint64, error) {
	c.nextHandle++
	pitch := width * bpp / 8
	size := uint64(pitch) * uint64(height)
	c.buffers[c.nextHandle] = size
	c.events = append(c.events, fmt.Sprintf("createdumb %d", c.nextHandle))
	return c.nextHandle, pitch, size, nil
}

func (c *fakeCard) MapDumb(handle uint32, size uint64) ([]byte, error) {
	if _, ok := c.buffers[handle]; !ok {
		return nil, fmt.Errorf("no dumb buffer %d", handle)
	}
	return make([]byte, size), nil
}

func (c *fakeCard) Unmap(data []byte) error { return nil }

func (c *fakeCard) DestroyDumb(handle uint32) error {
	if _, ok := c.buffers[handle]; !ok {
		return fmt.Errorf("no dumb buffer %d", handle)
	}
	delete(c.buffers, handle)
	c.events = append(c.events, fmt.Sprintf("destroydumb %d", handle))
	return nil
}
