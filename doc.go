// Package scanout puts pixels on screen without a windowing system. It
// discovers a display pipeline through the kernel mode-setting
// interface (connector, encoder, CRTC, scanout plane), allocates a
// swapchain of dumb buffers, bridges them to a rendering capability
// (libEGL or a CPU renderer) and presents finished frames with atomic
// commits. A hardware cursor overlay runs independently beside the
// frame path.
//
// The package serves one rendering thread: Acquire once, then call
// Present and the cursor operations from that thread only. There is no
// internal locking.
package scanout
