package canvas

// Surface is the drawing target. Implementations draw on whatever backs the
// canvas (an HTML canvas over a bridge, an image buffer, a recorder in tests);
// the renderer only issues these primitives.
type Surface interface {
	// Clear erases the whole surface.
	Clear()
	// Line strokes a segment from (x1, y1) to (x2, y2).
	Line(x1, y1, x2, y2 float64)
	// Rect strokes a rectangle anchored at (x, y); w and h may be negative.
	Rect(x, y, w, h float64)
	// Circle strokes a circle centered at (x, y).
	Circle(x, y, r float64)
}
