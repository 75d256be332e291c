package scanout

import (
	"github.com/scanout/scanout/gbuf"
	"github.com/scanout/scanout/internal/errors"
	"github.com/scanout/scanout/kms"
	"github.com/scanout/scanout/render"
)

// Present puts the frame just rendered to s on screen: swap the
// rendering backend's buffers, lock the new front buffer, resolve its
// framebuffer registration and commit one atomic transaction binding it
// to the plane. The first commit after acquisition additionally binds
// connector to CRTC, sets the mode blob and activates the pipeline.
//
// Failures are frame-recoverable: the buffer locked for the attempt is
// released, the previously presented frame stays on screen and the next
// Present may retry.
func (d *Display) Present(s render.Surface) error {
	if d == nil || d.closed {
		return errors.New(ErrClosed)
	}
	if err := d.backend.SwapBuffers(s); err != nil {
		return errors.New(err)
	}
	bo, err := d.surf.LockFront()
	if err != nil {
		return errors.New(err)
	}
	if err := d.commit(bo); err != nil {
		d.surf.Release(bo)
		return err
	}
	d.needsModeset = false
	if d.previous != nil {
		d.surf.Release(d.previous)
	}
	d.previous = bo
	return nil
}

func (d *Display) commit(bo *gbuf.Object) error {
	fb, err := d.framebufferFor(bo)
	if err != nil {
		return err
	}

	req := &kms.AtomicRequest{}
	var flags uint32
	if d.needsModeset {
		flags |= kms.AtomicAllowModeset
		if err := d.connectorProps.add(req, "CRTC_ID", uint64(d.crtcID)); err != nil {
			return err
		}
		if d.modeBlob == 0 {
			blob, err := d.card.CreateModeBlob(&d.mode)
			if err != nil {
				return errors.New(err)
			}
			d.modeBlob = blob
		}
		if err := d.crtcProps.add(req, "MODE_ID", uint64(d.modeBlob)); err != nil {
			return err
		}
		if err := d.crtcProps.add(req, "ACTIVE", 1); err != nil {
			return err
		}
	}

	w, h := uint64(d.mode.HDisplay), uint64(d.mode.VDisplay)
	plane := [...]struct {
		name  string
		value uint64
	}{
		{"FB_ID", uint64(fb)},
		{"CRTC_ID", uint64(d.crtcID)},
		// source rectangle in 16.16 fixed point
		{"SRC_X", 0},
		{"SRC_Y", 0},
		{"SRC_W", w << 16},
		{"SRC_H", h << 16},
		// destination rectangle in device pixels
		{"CRTC_X", 0},
		{"CRTC_Y", 0},
		{"CRTC_W", w},
		{"CRTC_H", h},
	}
	for _, p := range plane {
		if err := d.planeProps.add(req, p.name, p.value); err != nil {
			return err
		}
	}

	if err := d.card.AtomicCommit(req, flags); err != nil {
		return errors.New(err)
	}
	return nil
}

// framebufferFor resolves the kernel framebuffer registration of a pool
// buffer, creating and memoizing it on the buffer's first presentation.
func (d *Display) framebufferFor(bo *gbuf.Object) (uint32, error) {
	if fb, ok := d.fbs[bo.Handle()]; ok {
		return fb, nil
	}
	var (
		handles   [4]uint32
		pitches   [4]uint32
		offsets   [4]uint32
		modifiers [4]uint64
	)
	for i := 0; i < bo.PlaneCount(); i++ {
		handles[i] = bo.PlaneHandle(i)
		pitches[i] = bo.PlaneStride(i)
		offsets[i] = bo.PlaneOffset(i)
		modifiers[i] = bo.Modifier()
	}
	var flags uint32
	if m := bo.Modifier(); m != 0 && m != kms.ModifierInvalid {
		flags = kms.FBModifiers
	}
	fb, err := d.card.AddFB2(bo.Width(), bo.Height(), bo.Format(), handles, pitches, offsets, modifiers, flags)
	if err != nil {
		return 0, errors.New(err)
	}
	d.fbs[bo.Handle()] = fb
	return fb, nil
}
