package scanout

// Package-level call surface for embedding runtimes that carry no
// handle of their own. It targets the process-wide active Display set
// by Acquire; the single-thread-owner contract of Display applies to
// these functions too. With no active Display the queries return zero
// values and the cursor calls do nothing, matching the handle methods'
// behavior on a closed Display.

// OpenDisplay acquires the display at path and makes it the active
// Display.
func OpenDisplay(path string, opts ...Option) (*Display, error) {
	return Acquire(path, opts...)
}

// ActiveDisplay returns the live handle, or nil when none is active.
func ActiveDisplay() *Display { return active }

// ScreenCount returns the active Display's output count.
func ScreenCount() int { return active.ScreenCount() }

// ScreenGeometry returns the geometry of output index on the active
// Display. Only index 0 exists; anything else returns the zero Screen.
func ScreenGeometry(index int) Screen {
	if active == nil || index != 0 {
		return Screen{}
	}
	return active.Screen()
}

// CursorInit records cursor dimensions on the active Display.
func CursorInit(width, height uint32) { active.CursorInit(width, height) }

// CursorSetImage uploads a cursor image to the active Display.
func CursorSetImage(pixels []byte) { active.CursorSetImage(pixels) }

// CursorSetVisible toggles the active Display's cursor plane.
func CursorSetVisible(visible bool) { active.CursorSetVisible(visible) }

// CursorSetLocation moves the active Display's cursor.
func CursorSetLocation(x, y int) { active.CursorSetLocation(x, y) }
