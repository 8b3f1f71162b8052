package canvas

import (
	"errors"
	"math"

	"github.com/Anas-Nayeem4922/draw-app/model"
	"github.com/labstack/gommon/log"
)

// Arrowheads are fixed-size, derived from the line direction on every draw.
const (
	arrowheadLength = 15.0
	arrowheadAngle  = math.Pi / 6
)

// Redraw clears the surface and draws every shape in insertion order, which
// is the z-order. A shape that fails to decode is logged and skipped; a shape
// of an unknown kind is skipped silently. Neither aborts the pass.
func Redraw(surf Surface, shapes []model.Shape) {
	surf.Clear()
	for _, s := range shapes {
		if err := drawShape(surf, s.Name, s.Details); err != nil {
			log.Warnf("skipping shape %q in room %s: %v", s.Name, s.RoomID, err)
		}
	}
}

// drawShape draws one committed shape. Unknown kinds return nil: another
// client may speak a newer shape vocabulary and must not break this canvas.
func drawShape(surf Surface, name, details string) error {
	g, err := Decode(name, details)
	if err != nil {
		if errors.Is(err, ErrUnknownShape) {
			return nil
		}
		return err
	}

	switch name {
	case ShapeLine:
		l := g.(Line)
		surf.Line(l.StartX, l.StartY, l.EndX, l.EndY)
	case ShapeRect:
		r := g.(Rect)
		surf.Rect(r.StartX, r.StartY, r.Width, r.Height)
	case ShapeCircle:
		c := g.(Circle)
		surf.Circle(c.StartX, c.StartY, c.Radius)
	case ShapeArrow:
		drawArrow(surf, g.(Line))
	case ShapePencil:
		drawPath(surf, g.(Path))
	}
	return nil
}

func drawArrow(surf Surface, l Line) {
	surf.Line(l.StartX, l.StartY, l.EndX, l.EndY)
	angle := math.Atan2(l.EndY-l.StartY, l.EndX-l.StartX)
	for _, side := range [2]float64{-1, 1} {
		hx := l.EndX - arrowheadLength*math.Cos(angle+side*arrowheadAngle)
		hy := l.EndY - arrowheadLength*math.Sin(angle+side*arrowheadAngle)
		surf.Line(l.EndX, l.EndY, hx, hy)
	}
}

func drawPath(surf Surface, p Path) {
	for i := 1; i < len(p.Points); i++ {
		prev, cur := p.Points[i-1], p.Points[i]
		surf.Line(prev.X, prev.Y, cur.X, cur.Y)
	}
}
