// Package canvas holds the drawing core: the geometry codec, the pointer
// gesture state machine and the incremental renderer. It has no knowledge of
// networking or persistence.
package canvas

// Tool selects what a pointer gesture produces. Every tool except Select
// commits exactly one shape per gesture.
type Tool string

const (
	ToolSelect Tool = "select"
	ToolLine   Tool = "line"
	ToolRect   Tool = "rect"
	ToolCircle Tool = "circle"
	ToolArrow  Tool = "arrow"
	ToolPencil Tool = "pencil"
)

// Shape name constants as they travel on the wire and in the store.
const (
	ShapeLine   = "line"
	ShapeRect   = "rect"
	ShapeCircle = "circle"
	ShapeArrow  = "arrow"
	ShapePencil = "pencil"
)

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type (
	// Line is also the geometry of an arrow; the arrowhead is derived at
	// render time and never stored.
	Line struct {
		StartX float64 `json:"startX"`
		StartY float64 `json:"startY"`
		EndX   float64 `json:"endX"`
		EndY   float64 `json:"endY"`
	}

	// Rect width/height are signed: negative values extend left/up from
	// the anchor.
	Rect struct {
		StartX float64 `json:"startX"`
		StartY float64 `json:"startY"`
		Width  float64 `json:"width"`
		Height float64 `json:"height"`
	}

	Circle struct {
		StartX float64 `json:"startX"`
		StartY float64 `json:"startY"`
		Radius float64 `json:"radius"`
	}

	// Path is a freehand stroke, points in stroke order.
	Path struct {
		Points []Point `json:"points"`
	}
)
