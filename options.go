package scanout

import (
	"log/slog"

	"github.com/scanout/scanout/render"
)

// Option configures a Display during Acquire, before any kernel
// resource is touched.
type Option interface {
	ApplyOption(d *Display) error
}

var _ Option = (OptFunc)(nil)

type OptFunc func(*Display) error

func (o OptFunc) ApplyOption(d *Display) error { return o(d) }

var _ Option = (Options)(nil)

type Options []Option

func (o Options) ApplyOption(d *Display) error {
	for _, opt := range o {
		if opt == nil {
			continue
		}
		if err := opt.ApplyOption(d); err != nil {
			return err
		}
	}
	return nil
}

// WithScale sets the display scale factor. Reported screen dimensions
// are divided by it, cursor positions multiplied. Values <= 0 are
// treated as 1.
func WithScale(scale float64) Option {
	return OptFunc(func(d *Display) error {
		if scale <= 0 {
			scale = 1
		}
		d.scale = scale
		return nil
	})
}

// WithLogger sets the logger for cursor-tier failures and diagnostics.
// The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return OptFunc(func(d *Display) error {
		d.logger = logger
		return nil
	})
}

// WithPremultipliedCursor selects the premultiplied cursor upload:
// color channels scaled by alpha/255 while copying, alpha passed
// through. The default is a straight row copy.
func WithPremultipliedCursor(enable bool) Option {
	return OptFunc(func(d *Display) error {
		d.cursor.premultiply = enable
		return nil
	})
}

// WithRenderer injects the rendering-context capability. The default is
// the libEGL backend.
func WithRenderer(b render.Backend) Option {
	return OptFunc(func(d *Display) error {
		d.backend = b
		return nil
	})
}

// WithBufferCount sets the swapchain pool size. Values outside [2,4]
// are clamped; the default is 3.
func WithBufferCount(n int) Option {
	return OptFunc(func(d *Display) error {
		if n < 2 {
			n = 2
		}
		if n > 4 {
			n = 4
		}
		d.bufferCount = n
		return nil
	})
}
