// Package closer implements scoped resource acquisition: release funcs
// registered in acquisition order run in exact reverse order on Close.
// Discovery uses this so that every early return releases everything
// acquired up to that point.
package closer

import (
	"github.com/scanout/scanout/internal/errors"
)

type Closer struct {
	onCloseFuncs []func() error
	closed       bool
}

func New() *Closer { return &Closer{} }

// OnClose registers a release func. Funcs run LIFO on Close.
func (c *Closer) OnClose(onClose func() error) {
	if c == nil || onClose == nil {
		return
	}
	c.onCloseFuncs = append(c.onCloseFuncs, onClose)
}

// AddClosers registers the Close methods of the given objects.
func (c *Closer) AddClosers(closers ...interface{ Close() error }) {
	if c == nil {
		return
	}
	for _, cl := range closers {
		if cl == nil {
			continue
		}
		cl := cl
		c.OnClose(cl.Close)
	}
}

// Close runs all registered funcs in reverse order. Idempotent; later
// calls are no-ops.
func (c *Closer) Close() error {
	if c == nil || c.closed {
		return nil
	}
	c.closed = true
	var errs []error
	for i := len(c.onCloseFuncs) - 1; i > -1; i-- {
		if onCloseFunc := c.onCloseFuncs[i]; onCloseFunc != nil {
			if err := onCloseFunc(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	c.onCloseFuncs = nil
	return errors.Join(errs...)
}
