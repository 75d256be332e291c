package scanout

import (
	stderrors "errors"
	"log/slog"

	"github.com/scanout/scanout/gbuf"
	"github.com/scanout/scanout/internal/closer"
	"github.com/scanout/scanout/internal/errors"
	"github.com/scanout/scanout/internal/logx"
	"github.com/scanout/scanout/kms"
	"github.com/scanout/scanout/render"
)

var (
	// ErrDisplayBusy is returned by Acquire while another Display is
	// live. Close it first; overlapping acquisition is never implicit.
	ErrDisplayBusy = stderrors.New("a display handle is already active")
	// ErrClosed is returned by operations on a released Display.
	ErrClosed = stderrors.New("display handle closed")

	ErrNoConnector = stderrors.New("no connected connector with modes")
	ErrNoEncoder   = stderrors.New("no encoder bound to connector")
	ErrNoCRTC      = stderrors.New("no crtc bound to encoder")
	ErrNoPlane     = stderrors.New("no active plane on crtc")
)

// active is the process-wide live handle. Guarded by the single-thread
// contract, not by a lock: Acquire, Close and every Display method must
// be called from one owning thread.
var active *Display

// Display is the one live handle to a display pipeline: the device
// node, the selected connector/encoder/CRTC/plane with their property
// tables, the chosen mode, the swapchain and the rendering-context
// capability. All methods are single-thread-owner by contract.
type Display struct {
	card card

	connectorID uint32
	encoderID   uint32
	crtcID      uint32
	planeID     uint32

	connectorProps *PropertyTable
	crtcProps      *PropertyTable
	planeProps     *PropertyTable

	mode kms.ModeInfo

	surf *gbuf.Surface

	backend       render.Backend
	backendOpened bool

	// fbs memoizes buffer handle -> framebuffer id; entries live as
	// long as the pool buffer they describe.
	fbs      map[uint32]uint32
	previous *gbuf.Object
	modeBlob uint32

	needsModeset bool

	cursor cursorState

	scale       float64
	bufferCount int
	logger      *slog.Logger

	resources *closer.Closer
	closed    bool
}

// Acquire opens the display device node and discovers a usable pipeline:
// the first connected connector exposing at least one mode, its bound
// encoder and CRTC, and the plane currently scanning out on that CRTC.
// On any failure every previously acquired resource is released in
// reverse order and no handle is returned.
func Acquire(devicePath string, opts ...Option) (*Display, error) {
	if active != nil {
		return nil, errors.New(ErrDisplayBusy)
	}
	c, err := kms.Open(devicePath)
	if err != nil {
		return nil, errors.New(err)
	}
	return acquire(c, opts...)
}

func acquire(c card, opts ...Option) (d *Display, err error) {
	if active != nil {
		_ = c.Close()
		return nil, errors.New(ErrDisplayBusy)
	}
	d = &Display{
		card:         c,
		fbs:          map[uint32]uint32{},
		needsModeset: true,
		scale:        1,
		bufferCount:  3,
		resources:    closer.New(),
	}
	d.resources.AddClosers(c)
	resources := d.resources
	defer func() {
		if err != nil {
			_ = resources.Close()
		}
	}()

	if err := Options(opts).ApplyOption(d); err != nil {
		return nil, errors.New(err)
	}
	if d.backend == nil {
		d.backend = defaultBackend()
	}

	// Atomic mode setting is required, and universal planes with it so
	// the primary plane shows up in the plane list.
	if err := c.SetClientCap(kms.ClientCapAtomic, 1); err != nil {
		return nil, errors.WrapPrefix(err, "atomic mode setting unsupported", 0)
	}
	if err := c.SetClientCap(kms.ClientCapUniversalPlanes, 1); err != nil {
		return nil, errors.WrapPrefix(err, "universal planes unsupported", 0)
	}

	res, err := c.Resources()
	if err != nil {
		return nil, errors.New(err)
	}

	conn, err := pickConnector(c, res.Connectors, d.logger)
	if err != nil {
		return nil, err
	}
	d.connectorID = conn.ID
	d.mode = *pickMode(conn.Modes)

	d.connectorProps, err = newPropertyTable(c, conn.ID, kms.ObjectConnector)
	if err != nil {
		return nil, err
	}

	enc, err := findEncoder(c, res, conn)
	if err != nil {
		return nil, err
	}
	d.encoderID = enc.ID
	if enc.CRTCID == 0 {
		return nil, errors.Errorf("%w: encoder %d", ErrNoCRTC, enc.ID)
	}

	crtc, err := findCRTC(c, res, enc)
	if err != nil {
		return nil, err
	}
	d.crtcID = crtc.ID

	d.crtcProps, err = newPropertyTable(c, crtc.ID, kms.ObjectCRTC)
	if err != nil {
		return nil, err
	}

	plane, err := findActivePlane(c, crtc, d.logger)
	if err != nil {
		return nil, err
	}
	d.planeID = plane.ID

	d.planeProps, err = newPropertyTable(c, plane.ID, kms.ObjectPlane)
	if err != nil {
		return nil, err
	}

	d.surf, err = gbuf.NewSurface(c, uint32(d.mode.HDisplay), uint32(d.mode.VDisplay),
		kms.FormatARGB8888, kms.ModifierLinear, d.bufferCount)
	if err != nil {
		return nil, errors.New(err)
	}
	d.resources.OnClose(d.surf.Destroy)

	active = d
	return d, nil
}

// pickConnector selects the first connector in device order that is
// connected and exposes at least one mode. Query failures on individual
// connectors are logged and skipped.
func pickConnector(c card, ids []uint32, logger *slog.Logger) (*kms.Connector, error) {
	for _, id := range ids {
		conn, err := c.Connector(id)
		if err != nil {
			logx.Warn("connector query failed", logger, "connector", id, "err", err)
			continue
		}
		if conn.Connection == kms.Connected && len(conn.Modes) > 0 {
			return conn, nil
		}
	}
	return nil, errors.New(ErrNoConnector)
}

// pickMode returns the preferred mode if one is flagged, otherwise the
// mode with the highest pixel count, first encountered winning ties.
// The caller guarantees modes is non-empty.
func pickMode(modes []kms.ModeInfo) *kms.ModeInfo {
	chosen := &modes[0]
	for i := range modes {
		m := &modes[i]
		if m.Preferred() {
			return m
		}
		if m.PixelCount() > chosen.PixelCount() {
			chosen = m
		}
	}
	return chosen
}

// findEncoder resolves the encoder currently bound to the connector,
// requiring it to be one of the device's enumerated encoders.
func findEncoder(c card, res *kms.Resources, conn *kms.Connector) (*kms.Encoder, error) {
	if conn.EncoderID == 0 || !res.HasEncoder(conn.EncoderID) {
		return nil, errors.Errorf("%w: connector %d", ErrNoEncoder, conn.ID)
	}
	enc, err := c.Encoder(conn.EncoderID)
	if err != nil {
		return nil, errors.New(err)
	}
	return enc, nil
}

// findCRTC resolves the display pipeline currently bound to the encoder.
func findCRTC(c card, res *kms.Resources, enc *kms.Encoder) (*kms.CRTC, error) {
	if !res.HasCRTC(enc.CRTCID) {
		return nil, errors.Errorf("%w: encoder %d", ErrNoCRTC, enc.ID)
	}
	crtc, err := c.CRTC(enc.CRTCID)
	if err != nil {
		return nil, errors.New(err)
	}
	return crtc, nil
}

// findActivePlane resolves the plane currently scanning out the CRTC's
// active framebuffer. Idle planes are never considered; picking one
// would need format/possible-CRTC negotiation this backend does not do.
func findActivePlane(c card, crtc *kms.CRTC, logger *slog.Logger) (*kms.Plane, error) {
	if crtc.FBID == 0 {
		return nil, errors.Errorf("%w: crtc %d has no framebuffer", ErrNoPlane, crtc.ID)
	}
	ids, err := c.PlaneResources()
	if err != nil {
		return nil, errors.New(err)
	}
	for _, id := range ids {
		plane, err := c.Plane(id)
		if err != nil {
			logx.Warn("plane query failed", logger, "plane", id, "err", err)
			continue
		}
		if plane.CRTCID == crtc.ID && plane.FBID == crtc.FBID {
			return plane, nil
		}
	}
	return nil, errors.Errorf("%w: crtc %d", ErrNoPlane, crtc.ID)
}

// Mode returns the selected display mode.
func (d *Display) Mode() kms.ModeInfo { return d.mode }

// Surface returns the swapchain surface; it doubles as the native
// window handle for the rendering-context capability.
func (d *Display) Surface() *gbuf.Surface { return d.surf }

// ConnectorID returns the selected connector's object id.
func (d *Display) ConnectorID() uint32 { return d.connectorID }

// EncoderID returns the resolved encoder's object id.
func (d *Display) EncoderID() uint32 { return d.encoderID }

// CRTCID returns the resolved display pipeline's object id.
func (d *Display) CRTCID() uint32 { return d.crtcID }

// PlaneID returns the resolved scanout plane's object id.
func (d *Display) PlaneID() uint32 { return d.planeID }

// Close releases everything the handle owns: cursor buffer, framebuffer
// registrations, mode blob, the rendering-context binding, the
// swapchain and the device node, in reverse acquisition order.
// Idempotent.
func (d *Display) Close() error {
	if d == nil || d.closed {
		return nil
	}
	d.closed = true
	if active == d {
		active = nil
	}

	var errs []error
	if d.cursor.bo != nil {
		if err := d.cursor.bo.Destroy(); err != nil {
			errs = append(errs, err)
		}
		d.cursor.bo = nil
	}
	for handle, fb := range d.fbs {
		if err := d.card.RmFB(fb); err != nil {
			errs = append(errs, err)
		}
		delete(d.fbs, handle)
	}
	if d.modeBlob != 0 {
		if err := d.card.DestroyBlob(d.modeBlob); err != nil {
			errs = append(errs, err)
		}
		d.modeBlob = 0
	}
	if d.backendOpened {
		if err := d.backend.Terminate(); err != nil {
			errs = append(errs, err)
		}
		d.backendOpened = false
	}
	d.previous = nil
	if err := d.resources.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// invalidate tears the handle down after a handle-fatal failure. The
// caller must re-run Acquire to use the display again.
func (d *Display) invalidate() {
	logx.IsErr(d.Close(), d.logger, slog.LevelWarn, "op", "invalidate")
}
