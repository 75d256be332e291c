//go:build linux

// Package libegl implements the rendering-context capability over the
// system libEGL, loaded at runtime. No cgo: the library is dlopened and
// its entry points registered through purego on first use.
//
// Open accepts a uintptr native display pointer, anything implementing
// NativeDisplayHandle() uintptr, or nil for EGL_DEFAULT_DISPLAY.
package libegl

import (
	"sync"

	"github.com/ebitengine/purego"

	"github.com/scanout/scanout/internal/errors"
	"github.com/scanout/scanout/render"
)

const (
	eglFalse = 0

	eglSurfaceType          = 0x3033
	eglWindowBit            = 0x0004
	eglPbufferBit           = 0x0001
	eglAlphaSize            = 0x3021
	eglBlueSize             = 0x3022
	eglGreenSize            = 0x3023
	eglRedSize              = 0x3024
	eglDepthSize            = 0x3025
	eglRenderableType       = 0x3040
	eglOpenGLES2Bit         = 0x0004
	eglNativeVisualID       = 0x302E
	eglContextClientVersion = 0x3098
	eglNone                 = 0x3038
)

var (
	loadOnce sync.Once
	loadErr  error

	eglGetDisplay          func(display uintptr) uintptr
	eglInitialize          func(display uintptr, major, minor *int32) uint32
	eglBindAPI             func(api uint32) uint32
	eglGetConfigs          func(display uintptr, configs *uintptr, configSize int32, numConfig *int32) uint32
	eglChooseConfig        func(display uintptr, attribs *int32, configs *uintptr, configSize int32, numConfig *int32) uint32
	eglGetConfigAttrib     func(display, config uintptr, attribute int32, value *int32) uint32
	eglCreateWindowSurface func(display, config, nativeWindow uintptr, attribs *int32) uintptr
	eglCreateContext       func(display, config, shareContext uintptr, attribs *int32) uintptr
	eglMakeCurrent         func(display, draw, read, context uintptr) uint32
	eglSwapBuffers         func(display, surface uintptr) uint32
	eglTerminate           func(display uintptr) uint32
	eglGetError            func() int32
)

func load() error {
	loadOnce.Do(func() {
		lib, err := purego.Dlopen("libEGL.so.1", purego.RTLD_NOW|purego.RTLD_GLOBAL)
		if err != nil {
			loadErr = errors.WrapPrefix(err, "load libEGL", 0)
			return
		}
		purego.RegisterLibFunc(&eglGetDisplay, lib, "eglGetDisplay")
		purego.RegisterLibFunc(&eglInitialize, lib, "eglInitialize")
		purego.RegisterLibFunc(&eglBindAPI, lib, "eglBindAPI")
		purego.RegisterLibFunc(&eglGetConfigs, lib, "eglGetConfigs")
		purego.RegisterLibFunc(&eglChooseConfig, lib, "eglChooseConfig")
		purego.RegisterLibFunc(&eglGetConfigAttrib, lib, "eglGetConfigAttrib")
		purego.RegisterLibFunc(&eglCreateWindowSurface, lib, "eglCreateWindowSurface")
		purego.RegisterLibFunc(&eglCreateContext, lib, "eglCreateContext")
		purego.RegisterLibFunc(&eglMakeCurrent, lib, "eglMakeCurrent")
		purego.RegisterLibFunc(&eglSwapBuffers, lib, "eglSwapBuffers")
		purego.RegisterLibFunc(&eglTerminate, lib, "eglTerminate")
		purego.RegisterLibFunc(&eglGetError, lib, "eglGetError")
	})
	return loadErr
}

func eglErr(op string) error {
	return errors.Errorf("egl: %s failed: error 0x%04x", op, eglGetError())
}

// Backend implements render.Backend over libEGL.
type Backend struct {
	display uintptr
}

func New() *Backend { return &Backend{} }

func (b *Backend) Open(native any) error {
	if err := load(); err != nil {
		return err
	}
	var nd uintptr
	switch v := native.(type) {
	case nil:
	case uintptr:
		nd = v
	case interface{ NativeDisplayHandle() uintptr }:
		nd = v.NativeDisplayHandle()
	}
	b.display = eglGetDisplay(nd)
	if b.display == 0 {
		return eglErr("get display")
	}
	return nil
}

func (b *Backend) Initialize() error {
	if eglInitialize(b.display, nil, nil) == eglFalse {
		return eglErr("initialize")
	}
	return nil
}

func (b *Backend) BindAPI(api uint32) error {
	if eglBindAPI(api) == eglFalse {
		return eglErr("bind api")
	}
	return nil
}

func (b *Backend) ChooseConfigs(f render.FilterAttrs) ([]render.Config, error) {
	var total int32
	if eglGetConfigs(b.display, nil, 0, &total) == eglFalse {
		return nil, eglErr("get config count")
	}
	if total == 0 {
		return nil, nil
	}
	surfaceBit := int32(eglPbufferBit)
	if f.Window {
		surfaceBit = eglWindowBit
	}
	attribs := []int32{
		eglSurfaceType, surfaceBit,
		eglRedSize, f.Red,
		eglGreenSize, f.Green,
		eglBlueSize, f.Blue,
		eglAlphaSize, f.Alpha,
		eglDepthSize, f.Depth,
		eglRenderableType, eglOpenGLES2Bit,
		eglNone,
	}
	configs := make([]uintptr, total)
	var chosen int32
	if eglChooseConfig(b.display, &attribs[0], &configs[0], total, &chosen) == eglFalse {
		return nil, eglErr("choose config")
	}
	out := make([]render.Config, 0, chosen)
	for _, c := range configs[:chosen] {
		out = append(out, render.Config(c))
	}
	return out, nil
}

func (b *Backend) NativeVisual(c render.Config) (uint32, error) {
	var visual int32
	if eglGetConfigAttrib(b.display, uintptr(c), eglNativeVisualID, &visual) == eglFalse {
		return 0, eglErr("get native visual")
	}
	return uint32(visual), nil
}

func (b *Backend) CreateWindowSurface(c render.Config, nativeWindow any) (render.Surface, error) {
	var nw uintptr
	switch v := nativeWindow.(type) {
	case uintptr:
		nw = v
	case interface{ NativeWindowHandle() uintptr }:
		nw = v.NativeWindowHandle()
	default:
		return 0, errors.Errorf("egl: native window is %T, want uintptr or NativeWindowHandle", nativeWindow)
	}
	s := eglCreateWindowSurface(b.display, uintptr(c), nw, nil)
	if s == 0 {
		return 0, eglErr("create window surface")
	}
	return render.Surface(s), nil
}

func (b *Backend) CreateContext(c render.Config) (render.Context, error) {
	attribs := []int32{eglContextClientVersion, 2, eglNone}
	ctx := eglCreateContext(b.display, uintptr(c), 0, &attribs[0])
	if ctx == 0 {
		return 0, eglErr("create context")
	}
	return render.Context(ctx), nil
}

func (b *Backend) MakeCurrent(draw, read render.Surface, ctx render.Context) error {
	if eglMakeCurrent(b.display, uintptr(draw), uintptr(read), uintptr(ctx)) == eglFalse {
		return eglErr("make current")
	}
	return nil
}

func (b *Backend) SwapBuffers(s render.Surface) error {
	if eglSwapBuffers(b.display, uintptr(s)) == eglFalse {
		return eglErr("swap buffers")
	}
	return nil
}

func (b *Backend) Terminate() error {
	if b.display == 0 {
		return nil
	}
	if eglTerminate(b.display) == eglFalse {
		return eglErr("terminate")
	}
	b.display = 0
	return nil
}
