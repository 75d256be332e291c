package scanout

import (
	"errors"
	"fmt"
	"testing"

	"github.com/scanout/scanout/kms"
	"github.com/scanout/scanout/render/soft"
)

func acquireTest(t *testing.T, fc *fakeCard, opts ...Option) *Display {
	t.Helper()
	opts = append([]Option{WithRenderer(soft.New())}, opts...)
	d, err := acquire(fc, opts...)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func TestAcquireSelectsUsableConnector(t *testing.T) {
	fc := newFakeCard()
	d := acquireTest(t, fc)
	if got := d.ConnectorID(); got != fakeConn {
		t.Errorf("connector id = %d, want %d", got, fakeConn)
	}
	if got := d.EncoderID(); got != fakeEncoder {
		t.Errorf("encoder id = %d, want %d", got, fakeEncoder)
	}
	if got := d.CRTCID(); got != fakeCRTC {
		t.Errorf("crtc id = %d, want %d", got, fakeCRTC)
	}
	if got := d.PlaneID(); got != fakePlane {
		t.Errorf("plane id = %d, want %d", got, fakePlane)
	}
}

func TestAcquireResolvedIDsConsistent(t *testing.T) {
	fc := newFakeCard()
	d := acquireTest(t, fc)
	conn := fc.connectors[d.ConnectorID()]
	if conn.EncoderID != d.EncoderID() {
		t.Errorf("connector bound to encoder %d, handle stores %d", conn.EncoderID, d.EncoderID())
	}
	enc := fc.encoders[d.EncoderID()]
	if enc.CRTCID != d.CRTCID() {
		t.Errorf("encoder bound to crtc %d, handle stores %d", enc.CRTCID, d.CRTCID())
	}
}

func TestAcquirePrefersPreferredMode(t *testing.T) {
	fc := newFakeCard()
	d := acquireTest(t, fc)
	if m := d.Mode(); m.HDisplay != 1280 || m.VDisplay != 720 {
		t.Errorf("mode = %dx%d, want preferred 1280x720", m.HDisplay, m.VDisplay)
	}
}

func TestPickModeHighestPixelCount(t *testing.T) {
	modes := []kms.ModeInfo{
		testMode(1280, 720, false),
		testMode(1920, 1080, false),
	}
	if m := pickMode(modes); m.HDisplay != 1920 {
		t.Errorf("picked %dx%d, want 1920x1080", m.HDisplay, m.VDisplay)
	}
}

func TestAcquireSkipsFailingConnector(t *testing.T) {
	fc := newFakeCard()
	fc.connectorErr[fakeConnDisconnected] = fmt.Errorf("query failed")
	d := acquireTest(t, fc)
	if got := d.ConnectorID(); got != fakeConn {
		t.Errorf("connector id = %d, want %d", got, fakeConn)
	}
}

func TestAcquireNoConnectorReleasesCard(t *testing.T) {
	fc := newFakeCard()
	fc.connectors[fakeConn].Connection = kms.Disconnected
	_, err := acquire(fc, WithRenderer(soft.New()))
	if !errors.Is(err, ErrNoConnector) {
		t.Fatalf("err = %v, want ErrNoConnector", err)
	}
	if !fc.closed {
		t.Error("device not closed after discovery failure")
	}
	if len(fc.buffers) != 0 {
		t.Errorf("%d dumb buffers leaked", len(fc.buffers))
	}
}

func TestAcquireRequiresActivePlane(t *testing.T) {
	fc := newFakeCard()
	fc.planes[fakePlane].FBID = 0
	_, err := acquire(fc, WithRenderer(soft.New()))
	if !errors.Is(err, ErrNoPlane) {
		t.Fatalf("err = %v, want ErrNoPlane", err)
	}
	if !fc.closed {
		t.Error("device not closed after discovery failure")
	}
}

func TestAcquireBusy(t *testing.T) {
	fc := newFakeCard()
	acquireTest(t, fc)

	fc2 := newFakeCard()
	_, err := acquire(fc2, WithRenderer(soft.New()))
	if !errors.Is(err, ErrDisplayBusy) {
		t.Fatalf("err = %v, want ErrDisplayBusy", err)
	}
	if !fc2.closed {
		t.Error("second device not closed")
	}
}

func TestAcquireAfterCloseSucceeds(t *testing.T) {
	fc := newFakeCard()
	d := acquireTest(t, fc)
	if err := d.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	acquireTest(t, newFakeCard())
}

func TestAcquireSetsClientCaps(t *testing.T) {
	fc := newFakeCard()
	acquireTest(t, fc)
	if fc.clientCaps[kms.ClientCapAtomic] != 1 {
		t.Error("atomic client cap not set")
	}
	if fc.clientCaps[kms.ClientCapUniversalPlanes] != 1 {
		t.Error("universal planes client cap not set")
	}
}

func TestBufferCountClamped(t *testing.T) {
	d := acquireTest(t, newFakeCard(), WithBufferCount(1))
	if got := len(d.Surface().Buffers()); got != 2 {
		t.Errorf("pool size = %d, want 2", got)
	}
	_ = d.Close()

	d = acquireTest(t, newFakeCard(), WithBufferCount(9))
	if got := len(d.Surface().Buffers()); got != 4 {
		t.Errorf("pool size = %d, want 4", got)
	}
}

func TestCloseReleasesCardLast(t *testing.T) {
	fc := newFakeCard()
	d := acquireTest(t, fc)
	if err := d.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if len(fc.events) == 0 || fc.events[len(fc.events)-1] != "close" {
		t.Errorf("device close not last, events: %v", fc.events)
	}
	if len(fc.buffers) != 0 {
		t.Errorf("%d dumb buffers leaked", len(fc.buffers))
	}
	if err := d.Close(); err != nil {
		t.Errorf("second close: %v", err)
	}
	if ActiveDisplay() != nil {
		t.Error("active handle survives close")
	}
}
