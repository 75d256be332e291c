package gbuf

import (
	stderrors "errors"

	"github.com/scanout/scanout/internal/errors"
)

var (
	// ErrNoFreeBuffer means every pool buffer is locked or pending; the
	// caller must Release a presented buffer before rendering again.
	ErrNoFreeBuffer = stderrors.New("surface: no free buffer in pool")
	// ErrNoFrontBuffer means LockFront was called without a completed
	// Swap to finalize a frame first.
	ErrNoFrontBuffer = stderrors.New("surface: no finalized front buffer")
	// ErrFrontNotLocked means Swap was called twice without locking the
	// front buffer in between.
	ErrFrontNotLocked = stderrors.New("surface: previous front buffer not locked")
)

// Surface is the swapchain: a fixed pool of buffer objects recycled
// through back -> pending -> locked -> free states. Not safe for
// concurrent use; the single rendering thread owns it by contract.
type Surface struct {
	width    uint32
	height   uint32
	format   uint32
	modifier uint64

	bufs    []*Object // all pool buffers, fixed after creation
	free    []*Object
	back    *Object
	pending *Object
}

// NewSurface allocates a swapchain of count buffers sized width x height.
// count below 2 is raised to 2; a failed allocation destroys the buffers
// already acquired.
func NewSurface(alloc Allocator, width, height, format uint32, modifier uint64, count int) (*Surface, error) {
	if count < 2 {
		count = 2
	}
	s := &Surface{width: width, height: height, format: format, modifier: modifier}
	for i := 0; i < count; i++ {
		o, err := NewObject(alloc, width, height, format, modifier)
		if err != nil {
			_ = s.Destroy()
			return nil, errors.New(err)
		}
		s.bufs = append(s.bufs, o)
		s.free = append(s.free, o)
	}
	return s, nil
}

func (s *Surface) Width() uint32    { return s.width }
func (s *Surface) Height() uint32   { return s.height }
func (s *Surface) Format() uint32   { return s.format }
func (s *Surface) Modifier() uint64 { return s.modifier }

// Buffers returns the fixed pool, for teardown of per-buffer derived
// state (framebuffer registrations).
func (s *Surface) Buffers() []*Object { return s.bufs }

// Back returns the buffer the current frame renders into, designating a
// free pool buffer on first use after a swap.
func (s *Surface) Back() (*Object, error) {
	if s.back != nil {
		return s.back, nil
	}
	if len(s.free) == 0 {
		return nil, errors.New(ErrNoFreeBuffer)
	}
	s.back = s.free[0]
	s.free = s.free[1:]
	return s.back, nil
}

// Swap finalizes the back buffer as the next front buffer.
func (s *Surface) Swap() error {
	if s.pending != nil {
		return errors.New(ErrFrontNotLocked)
	}
	back, err := s.Back()
	if err != nil {
		return err
	}
	s.pending = back
	s.back = nil
	return nil
}

// LockFront acquires the most recently finalized buffer. The caller owns
// it until Release.
func (s *Surface) LockFront() (*Object, error) {
	if s.pending == nil {
		return nil, errors.New(ErrNoFrontBuffer)
	}
	o := s.pending
	s.pending = nil
	return o, nil
}

// Release returns a locked buffer to the free pool.
func (s *Surface) Release(o *Object) {
	if o == nil {
		return
	}
	s.free = append(s.free, o)
}

// FreeCount returns the number of buffers available for rendering.
func (s *Surface) FreeCount() int { return len(s.free) }

// Destroy frees every pool buffer. Idempotent.
func (s *Surface) Destroy() error {
	var errs []error
	for _, o := range s.bufs {
		if err := o.Destroy(); err != nil {
			errs = append(errs, err)
		}
	}
	s.bufs, s.free, s.back, s.pending = nil, nil, nil, nil
	return errors.Join(errs...)
}
