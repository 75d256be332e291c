// Package soft is the CPU implementation of the rendering-context
// capability. It draws directly into the mapped bytes of the swapchain's
// back buffer and implements swap as the swapchain's own buffer
// rotation, so the full presentation path runs without a GPU stack.
package soft

import (
	stderrors "errors"

	"github.com/scanout/scanout/gbuf"
	"github.com/scanout/scanout/internal/errors"
	"github.com/scanout/scanout/kms"
	"github.com/scanout/scanout/render"
)

// Backend implements render.Backend. CreateWindowSurface accepts a
// *gbuf.Surface as the native window; Open and the config calls are
// bookkeeping only.
type Backend struct {
	opened      bool
	initialized bool
	surfaces    map[render.Surface]*gbuf.Surface
	nextHandle  render.Surface
	current     render.Surface
}

// ErrNotOpened is returned when the capability is used before Open and
// Initialize succeeded.
var ErrNotOpened = stderrors.New("soft: display not opened")

func New() *Backend {
	return &Backend{
		surfaces:   map[render.Surface]*gbuf.Surface{},
		nextHandle: 1,
	}
}

func (b *Backend) Open(native any) error {
	b.opened = true
	return nil
}

func (b *Backend) Initialize() error {
	if !b.opened {
		return errors.New(ErrNotOpened)
	}
	b.initialized = true
	return nil
}

func (b *Backend) BindAPI(api uint32) error { return nil }

// ChooseConfigs returns the single CPU configuration; it renders ARGB8888
// regardless of the requested channel depths.
func (b *Backend) ChooseConfigs(f render.FilterAttrs) ([]render.Config, error) {
	if !b.initialized {
		return nil, errors.New(ErrNotOpened)
	}
	return []render.Config{1}, nil
}

func (b *Backend) NativeVisual(c render.Config) (uint32, error) {
	return kms.FormatARGB8888, nil
}

func (b *Backend) CreateWindowSurface(c render.Config, nativeWindow any) (render.Surface, error) {
	surf, ok := nativeWindow.(*gbuf.Surface)
	if !ok {
		return 0, errors.Errorf("soft: native window is %T, want *gbuf.Surface", nativeWindow)
	}
	h := b.nextHandle
	b.nextHandle++
	b.surfaces[h] = surf
	return h, nil
}

func (b *Backend) CreateContext(c render.Config) (render.Context, error) {
	if !b.initialized {
		return 0, errors.New(ErrNotOpened)
	}
	return 1, nil
}

func (b *Backend) MakeCurrent(draw, read render.Surface, ctx render.Context) error {
	b.current = draw
	return nil
}

// SwapBuffers finalizes the back buffer by rotating the swapchain.
func (b *Backend) SwapBuffers(s render.Surface) error {
	surf, ok := b.surfaces[s]
	if !ok {
		return errors.Errorf("soft: unknown surface handle %d", s)
	}
	if err := surf.Swap(); err != nil {
		return errors.New(err)
	}
	return nil
}

func (b *Backend) Terminate() error {
	b.opened = false
	b.initialized = false
	b.surfaces = map[render.Surface]*gbuf.Surface{}
	b.current = 0
	return nil
}
