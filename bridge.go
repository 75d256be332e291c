package scanout

import (
	"github.com/scanout/scanout/internal/errors"
	"github.com/scanout/scanout/kms"
	"github.com/scanout/scanout/render"
)

// NativeWindow returns the handle the rendering-context capability
// renders into: the swapchain surface.
func (d *Display) NativeWindow() any { return d.surf }

// NativeDisplayHandle exposes the device file descriptor as the native
// display reference for capabilities that bind by fd.
func (d *Display) NativeDisplayHandle() uintptr { return d.card.Fd() }

// RenderingBackend resolves the rendering-context capability's display
// binding, lazily on first call and memoized after. A failed binding is
// handle-fatal: the Display is released and must be re-acquired.
func (d *Display) RenderingBackend() (render.Backend, error) {
	if d.closed {
		return nil, errors.New(ErrClosed)
	}
	if !d.backendOpened {
		if err := d.backend.Open(d); err != nil {
			d.invalidate()
			return nil, errors.New(err)
		}
		d.backendOpened = true
	}
	return d.backend, nil
}

// InitBackend initializes the rendering-context capability. Failure is
// handle-fatal.
func (d *Display) InitBackend() error {
	b, err := d.RenderingBackend()
	if err != nil {
		return err
	}
	if err := b.Initialize(); err != nil {
		d.invalidate()
		return errors.New(err)
	}
	return nil
}

// BindRenderingAPI selects the client rendering API. Unlike the other
// capability calls a failure here leaves the handle alive.
func (d *Display) BindRenderingAPI(api uint32) error {
	if d.closed {
		return errors.New(ErrClosed)
	}
	if err := d.backend.BindAPI(api); err != nil {
		return errors.New(err)
	}
	return nil
}

// ChooseSurfaceConfig resolves a surface configuration from the
// positional attribute array [r, g, b, a, depth, _, isWindow, _]. The
// configuration's native pixel format must equal the swapchain format.
// Failure is handle-fatal.
func (d *Display) ChooseSurfaceConfig(attrs [8]int32) (render.Config, error) {
	b, err := d.RenderingBackend()
	if err != nil {
		return 0, err
	}
	cfg, err := render.ChooseSurfaceConfig(b, attrs, kms.FormatARGB8888)
	if err != nil {
		d.invalidate()
		return 0, errors.New(err)
	}
	return cfg, nil
}

// CreateWindowSurface creates the renderable surface on a native
// window; nil means the Display's own swapchain surface. Failure is
// handle-fatal.
func (d *Display) CreateWindowSurface(cfg render.Config, nativeWindow any) (render.Surface, error) {
	b, err := d.RenderingBackend()
	if err != nil {
		return 0, err
	}
	if nativeWindow == nil {
		nativeWindow = d.surf
	}
	s, err := b.CreateWindowSurface(cfg, nativeWindow)
	if err != nil {
		d.invalidate()
		return 0, errors.New(err)
	}
	return s, nil
}

// CreateRenderContext creates an ES2-class rendering context. Failure
// is handle-fatal.
func (d *Display) CreateRenderContext(cfg render.Config) (render.Context, error) {
	b, err := d.RenderingBackend()
	if err != nil {
		return 0, err
	}
	ctx, err := b.CreateContext(cfg)
	if err != nil {
		d.invalidate()
		return 0, errors.New(err)
	}
	return ctx, nil
}

// MakeCurrent binds draw/read surfaces and the context to the calling
// thread. Failure is handle-fatal: the display is unusable past it.
func (d *Display) MakeCurrent(draw, read render.Surface, ctx render.Context) error {
	b, err := d.RenderingBackend()
	if err != nil {
		return err
	}
	if err := b.MakeCurrent(draw, read, ctx); err != nil {
		d.invalidate()
		return errors.New(err)
	}
	return nil
}
