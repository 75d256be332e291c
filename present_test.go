package scanout

import (
	"errors"
	"fmt"
	"testing"

	"github.com/scanout/scanout/kms"
	"github.com/scanout/scanout/render"
)

func presentSetup(t *testing.T, fc *fakeCard, opts ...Option) (*Display, render.Surface) {
	t.Helper()
	d := acquireTest(t, fc, opts...)
	if err := d.InitBackend(); err != nil {
		t.Fatalf("init backend: %v", err)
	}
	cfg, err := d.ChooseSurfaceConfig([8]int32{8, 8, 8, 8, 0, 0, 1, 0})
	if err != nil {
		t.Fatalf("choose config: %v", err)
	}
	s, err := d.CreateWindowSurface(cfg, nil)
	if err != nil {
		t.Fatalf("create window surface: %v", err)
	}
	ctx, err := d.CreateRenderContext(cfg)
	if err != nil {
		t.Fatalf("create context: %v", err)
	}
	if err := d.MakeCurrent(s, s, ctx); err != nil {
		t.Fatalf("make current: %v", err)
	}
	return d, s
}

func TestPresentFirstCommitSetsMode(t *testing.T) {
	fc := newFakeCard()
	d, s := presentSetup(t, fc)
	if err := d.Present(s); err != nil {
		t.Fatalf("present: %v", err)
	}
	if len(fc.commits) != 1 {
		t.Fatalf("commits = %d, want 1", len(fc.commits))
	}
	c := fc.commits[0]
	if c.flags&kms.AtomicAllowModeset == 0 {
		t.Error("first commit not modeset-permitting")
	}
	if v, ok := c.req.Value(fakeConn, propConnCRTCID); !ok || v != fakeCRTC {
		t.Errorf("connector CRTC_ID = %d,%t, want %d", v, ok, fakeCRTC)
	}
	if v, ok := c.req.Value(fakeCRTC, propCRTCModeID); !ok || v == 0 {
		t.Errorf("crtc MODE_ID = %d,%t, want a blob id", v, ok)
	}
	if v, ok := c.req.Value(fakeCRTC, propCRTCActive); !ok || v != 1 {
		t.Errorf("crtc ACTIVE = %d,%t, want 1", v, ok)
	}

	w, h := uint64(d.Mode().HDisplay), uint64(d.Mode().VDisplay)
	for _, want := range []struct {
		prop  uint32
		value uint64
	}{
		{propPlaneCRTC, fakeCRTC},
		{propSrcX, 0},
		{propSrcY, 0},
		{propSrcW, w << 16},
		{propSrcH, h << 16},
		{propCRTCX, 0},
		{propCRTCY, 0},
		{propCRTCW, w},
		{propCRTCH, h},
	} {
		if v, ok := c.req.Value(fakePlane, want.prop); !ok || v != want.value {
			t.Errorf("plane prop %d = %d,%t, want %d", want.prop, v, ok, want.value)
		}
	}
	if _, ok := c.req.Value(fakePlane, propPlaneFBID); !ok {
		t.Error("plane FB_ID missing")
	}
}

func TestPresentSecondCommitOmitsModeset(t *testing.T) {
	fc := newFakeCard()
	d, s := presentSetup(t, fc)
	for i := 0; i < 2; i++ {
		if err := d.Present(s); err != nil {
			t.Fatalf("present %d: %v", i, err)
		}
	}
	c := fc.commits[1]
	if c.flags != 0 {
		t.Errorf("steady commit flags = %#x, want 0", c.flags)
	}
	if _, ok := c.req.Value(fakeConn, propConnCRTCID); ok {
		t.Error("steady commit carries connector binding")
	}
	if _, ok := c.req.Value(fakeCRTC, propCRTCActive); ok {
		t.Error("steady commit carries ACTIVE")
	}
	if _, ok := c.req.Value(fakePlane, propPlaneFBID); !ok {
		t.Error("steady commit misses plane FB_ID")
	}
	if len(fc.blobs) != 1 {
		t.Errorf("mode blobs alive = %d, want 1", len(fc.blobs))
	}
}

func TestPresentRecyclesPool(t *testing.T) {
	fc := newFakeCard()
	d, s := presentSetup(t, fc, WithBufferCount(3))
	for i := 0; i < 6; i++ {
		if err := d.Present(s); err != nil {
			t.Fatalf("present %d: %v", i, err)
		}
		if got := d.Surface().FreeCount(); got != 2 {
			t.Fatalf("after present %d free = %d, want 2", i, got)
		}
	}
	if fc.addFBCalls > 3 {
		t.Errorf("addfb called %d times for a 3-buffer pool", fc.addFBCalls)
	}
}

func TestPresentMemoizesFramebuffers(t *testing.T) {
	fc := newFakeCard()
	d, s := presentSetup(t, fc, WithBufferCount(2))
	for i := 0; i < 4; i++ {
		if err := d.Present(s); err != nil {
			t.Fatalf("present %d: %v", i, err)
		}
	}
	if fc.addFBCalls != 2 {
		t.Errorf("addfb called %d times, want one per pool buffer (2)", fc.addFBCalls)
	}
}

func TestPresentCommitFailureKeepsState(t *testing.T) {
	fc := newFakeCard()
	d, s := presentSetup(t, fc)
	if err := d.Present(s); err != nil {
		t.Fatalf("present: %v", err)
	}
	retained := d.previous
	freeBefore := d.Surface().FreeCount()

	fc.commitErr = fmt.Errorf("commit rejected")
	if err := d.Present(s); err == nil {
		t.Fatal("present succeeded through failing commit")
	}
	if d.previous != retained {
		t.Error("retained buffer changed on failed commit")
	}
	if got := d.Surface().FreeCount(); got != freeBefore {
		t.Errorf("free = %d, want %d; failed attempt leaked its buffer", got, freeBefore)
	}
	if d.closed {
		t.Error("frame-recoverable failure closed the handle")
	}

	fc.commitErr = nil
	if err := d.Present(s); err != nil {
		t.Fatalf("present after recovery: %v", err)
	}
}

func TestPresentFailedFirstCommitRetriesModeset(t *testing.T) {
	fc := newFakeCard()
	d, s := presentSetup(t, fc)
	fc.commitErr = fmt.Errorf("commit rejected")
	if err := d.Present(s); err == nil {
		t.Fatal("present succeeded through failing commit")
	}
	if got := d.Surface().FreeCount(); got != 3 {
		t.Errorf("free = %d, want full pool back", got)
	}

	fc.commitErr = nil
	if err := d.Present(s); err != nil {
		t.Fatalf("present: %v", err)
	}
	c := fc.commits[0]
	if c.flags&kms.AtomicAllowModeset == 0 {
		t.Error("retried first commit not modeset-permitting")
	}
	if _, ok := c.req.Value(fakeCRTC, propCRTCModeID); !ok {
		t.Error("retried first commit misses MODE_ID")
	}
	if len(fc.blobs) != 1 {
		t.Errorf("mode blobs alive = %d, want the one memoized blob", len(fc.blobs))
	}
}

func TestPresentMissingPlaneProperty(t *testing.T) {
	fc := newFakeCard()
	fc.props[fakePlane] = fc.props[fakePlane][1:] // drop FB_ID
	d, s := presentSetup(t, fc)
	err := d.Present(s)
	if !errors.Is(err, ErrNoProperty) {
		t.Fatalf("err = %v, want ErrNoProperty", err)
	}
	if got := d.Surface().FreeCount(); got != 3 {
		t.Errorf("free = %d, failed attempt leaked its buffer", got)
	}
}

func TestPresentOnClosedHandle(t *testing.T) {
	fc := newFakeCard()
	d, s := presentSetup(t, fc)
	if err := d.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := d.Present(s); !errors.Is(err, ErrClosed) {
		t.Errorf("err = %v, want ErrClosed", err)
	}
}

func TestCloseRemovesFramebuffersAndBlob(t *testing.T) {
	fc := newFakeCard()
	d, s := presentSetup(t, fc)
	for i := 0; i < 3; i++ {
		if err := d.Present(s); err != nil {
			t.Fatalf("present %d: %v", i, err)
		}
	}
	if err := d.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if len(fc.fbs) != 0 {
		t.Errorf("%d framebuffer registrations leaked", len(fc.fbs))
	}
	if len(fc.blobs) != 0 {
		t.Errorf("%d mode blobs leaked", len(fc.blobs))
	}
}
