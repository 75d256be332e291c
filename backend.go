package scanout

import (
	"github.com/scanout/scanout/render"
	"github.com/scanout/scanout/render/libegl"
)

// defaultBackend is the rendering-context capability used when no
// WithRenderer option is given.
func defaultBackend() render.Backend { return libegl.New() }
