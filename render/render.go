// Package render defines the rendering-context capability the display
// backend drives: open a native display, initialize, choose a surface
// configuration, create context and window surface, make them current
// and swap buffers. The capability is pluggable; see render/libegl for
// the EGL implementation and render/soft for the CPU fallback.
package render

import (
	stderrors "errors"

	"github.com/scanout/scanout/internal/errors"
)

// Opaque capability handles. Zero is never a valid handle.
type (
	Config  uintptr
	Context uintptr
	Surface uintptr
)

// Rendering APIs for BindAPI.
const (
	APIOpenGLES = 0x30A0 // EGL_OPENGL_ES_API
	APIOpenGL   = 0x30A2 // EGL_OPENGL_API
)

// ErrNoConfig is returned when no enumerated configuration matches the
// requested attributes and native pixel format.
var ErrNoConfig = stderrors.New("render: no matching surface configuration")

// FilterAttrs are the driver-side configuration constraints: channel
// depths and whether a window (vs. off-screen) surface is wanted.
// ES2-class renderability is always required.
type FilterAttrs struct {
	Red, Green, Blue, Alpha int32
	Depth                   int32
	Window                  bool
}

// Backend is the fixed interface of the rendering-context capability.
// Implementations must be driven from the single rendering thread.
type Backend interface {
	// Open binds the native display target. The concrete type of native
	// is provider-specific; providers document what they accept.
	Open(native any) error

	// Initialize initializes the opened display.
	Initialize() error

	// BindAPI selects the client rendering API.
	BindAPI(api uint32) error

	// ChooseConfigs returns every configuration matching f, in driver
	// preference order.
	ChooseConfigs(f FilterAttrs) ([]Config, error)

	// NativeVisual returns the native pixel format of a configuration.
	NativeVisual(c Config) (uint32, error)

	// CreateWindowSurface creates a renderable surface on a native
	// window (the swapchain surface).
	CreateWindowSurface(c Config, nativeWindow any) (Surface, error)

	// CreateContext creates an ES2-class rendering context.
	CreateContext(c Config) (Context, error)

	// MakeCurrent binds surfaces and context to the calling thread.
	MakeCurrent(draw, read Surface, ctx Context) error

	// SwapBuffers finalizes the back buffer of s as the next frame.
	SwapBuffers(s Surface) error

	// Terminate releases the capability's display binding.
	Terminate() error
}

// ChooseSurfaceConfig resolves one configuration from a positional
// attribute array [red, green, blue, alpha, depth, _, isWindow, _]:
// driver-filtered by channel depths, surface type and ES2 renderability,
// then the first candidate whose native pixel format equals nativeFormat
// wins. No match is an error.
func ChooseSurfaceConfig(b Backend, attrs [8]int32, nativeFormat uint32) (Config, error) {
	f := FilterAttrs{
		Red:    attrs[0],
		Green:  attrs[1],
		Blue:   attrs[2],
		Alpha:  attrs[3],
		Depth:  attrs[4],
		Window: attrs[6] != 0,
	}
	configs, err := b.ChooseConfigs(f)
	if err != nil {
		return 0, errors.New(err)
	}
	for _, c := range configs {
		visual, err := b.NativeVisual(c)
		if err != nil {
			continue
		}
		if visual == nativeFormat {
			return c, nil
		}
	}
	return 0, errors.New(ErrNoConfig)
}
