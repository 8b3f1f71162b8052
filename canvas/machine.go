package canvas

import (
	"math"

	"github.com/Anas-Nayeem4922/draw-app/model"
)

// Gesture is the state of one pointer interaction, from pointer-down to
// pointer-up. It is a plain value: every handler takes the current gesture
// and returns the next one, so the machine carries no hidden state and can
// be driven without a live surface.
type Gesture struct {
	Active  bool
	Tool    Tool
	AnchorX float64
	AnchorY float64
	// Points accumulates the stroke for the pencil tool only.
	Points []Point
}

// PointerDown starts a gesture with the given tool, anchored at the pointer
// position. A pencil gesture seeds its stroke with the anchor.
func PointerDown(g Gesture, tool Tool, x, y float64) Gesture {
	g.Active = true
	g.Tool = tool
	g.AnchorX, g.AnchorY = x, y
	g.Points = nil
	if tool == ToolPencil {
		g.Points = []Point{{X: x, Y: y}}
	}
	return g
}

// PointerMove advances an active gesture and draws its live preview.
//
// For every tool but pencil the preview is a full frame: clear, all committed
// shapes, then the in-progress shape from anchor to pointer. A pencil stroke
// instead appends one point and draws only the new segment; freehand gestures
// produce far too many move events for a full redraw each.
//
// A move while no gesture is active is ignored.
func PointerMove(g Gesture, x, y float64, committed []model.Shape, surf Surface) Gesture {
	if !g.Active || g.Tool == ToolSelect {
		return g
	}

	if g.Tool == ToolPencil {
		last := g.Points[len(g.Points)-1]
		g.Points = append(g.Points, Point{X: x, Y: y})
		surf.Line(last.X, last.Y, x, y)
		return g
	}

	Redraw(surf, committed)
	switch g.Tool {
	case ToolLine:
		surf.Line(g.AnchorX, g.AnchorY, x, y)
	case ToolRect:
		surf.Rect(g.AnchorX, g.AnchorY, x-g.AnchorX, y-g.AnchorY)
	case ToolCircle:
		surf.Circle(g.AnchorX, g.AnchorY, distance(g.AnchorX, g.AnchorY, x, y))
	case ToolArrow:
		drawArrow(surf, Line{StartX: g.AnchorX, StartY: g.AnchorY, EndX: x, EndY: y})
	}
	return g
}

// PointerUp ends the gesture and commits its shape. The second return is
// false when nothing commits, which happens only for the select tool (and for
// a pointer-up with no gesture in progress). Zero-length drags still commit;
// there is no minimum-distance rejection.
func PointerUp(g Gesture, x, y float64) (Gesture, model.Shape, bool) {
	if !g.Active {
		return g, model.Shape{}, false
	}
	g.Active = false

	var (
		name string
		geom interface{}
	)
	switch g.Tool {
	case ToolLine:
		name = ShapeLine
		geom = Line{StartX: g.AnchorX, StartY: g.AnchorY, EndX: x, EndY: y}
	case ToolArrow:
		name = ShapeArrow
		geom = Line{StartX: g.AnchorX, StartY: g.AnchorY, EndX: x, EndY: y}
	case ToolRect:
		name = ShapeRect
		geom = Rect{StartX: g.AnchorX, StartY: g.AnchorY, Width: x - g.AnchorX, Height: y - g.AnchorY}
	case ToolCircle:
		name = ShapeCircle
		geom = Circle{StartX: g.AnchorX, StartY: g.AnchorY, Radius: distance(g.AnchorX, g.AnchorY, x, y)}
	case ToolPencil:
		name = ShapePencil
		geom = Path{Points: g.Points}
	default:
		// select and any future non-drawing tool
		g.Points = nil
		return g, model.Shape{}, false
	}
	g.Points = nil

	details, err := Encode(name, geom)
	if err != nil {
		// Unreachable for geometry built above; kept to satisfy the codec
		// contract without panicking.
		return g, model.Shape{}, false
	}
	return g, model.Shape{Name: name, Details: details}, true
}

func distance(x1, y1, x2, y2 float64) float64 {
	return math.Hypot(x2-x1, y2-y1)
}
