package canvas

import (
	"testing"

	"github.com/Anas-Nayeem4922/draw-app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drag(t *testing.T, tool Tool, downX, downY float64, moves [][2]float64, upX, upY float64) (model.Shape, bool) {
	t.Helper()
	surf := &recorder{}
	g := PointerDown(Gesture{}, tool, downX, downY)
	for _, m := range moves {
		g = PointerMove(g, m[0], m[1], nil, surf)
	}
	g, sh, ok := PointerUp(g, upX, upY)
	assert.False(t, g.Active)
	return sh, ok
}

func decodeShape(t *testing.T, sh model.Shape) interface{} {
	t.Helper()
	g, err := Decode(sh.Name, sh.Details)
	require.NoError(t, err)
	return g
}

func TestRectCommit(t *testing.T) {
	// Anchor (10,10), release at (30,5): width is signed pointer-anchor.
	sh, ok := drag(t, ToolRect, 10, 10, [][2]float64{{15, 12}, {25, 8}}, 30, 5)
	require.True(t, ok)
	assert.Equal(t, ShapeRect, sh.Name)
	assert.Equal(t, Rect{StartX: 10, StartY: 10, Width: 20, Height: -5}, decodeShape(t, sh))
}

func TestCircleCommit(t *testing.T) {
	sh, ok := drag(t, ToolCircle, 0, 0, nil, 3, 4)
	require.True(t, ok)
	assert.Equal(t, ShapeCircle, sh.Name)
	assert.Equal(t, Circle{StartX: 0, StartY: 0, Radius: 5}, decodeShape(t, sh))
}

func TestLineCommit(t *testing.T) {
	sh, ok := drag(t, ToolLine, 0, 0, [][2]float64{{4, 4}}, 10, 10)
	require.True(t, ok)
	assert.Equal(t, ShapeLine, sh.Name)
	assert.Equal(t, Line{StartX: 0, StartY: 0, EndX: 10, EndY: 10}, decodeShape(t, sh))
}

func TestArrowCommit(t *testing.T) {
	sh, ok := drag(t, ToolArrow, 1, 2, nil, 3, 4)
	require.True(t, ok)
	assert.Equal(t, ShapeArrow, sh.Name)
	assert.Equal(t, Line{StartX: 1, StartY: 2, EndX: 3, EndY: 4}, decodeShape(t, sh))
}

// A zero-length drag still commits; there is no minimum-distance rejection.
func TestZeroLengthDragCommits(t *testing.T) {
	sh, ok := drag(t, ToolLine, 5, 5, nil, 5, 5)
	require.True(t, ok)
	assert.Equal(t, Line{StartX: 5, StartY: 5, EndX: 5, EndY: 5}, decodeShape(t, sh))

	sh, ok = drag(t, ToolCircle, 5, 5, nil, 5, 5)
	require.True(t, ok)
	assert.Equal(t, Circle{StartX: 5, StartY: 5, Radius: 0}, decodeShape(t, sh))
}

func TestSelectToolCommitsNothing(t *testing.T) {
	_, ok := drag(t, ToolSelect, 0, 0, [][2]float64{{5, 5}}, 10, 10)
	assert.False(t, ok)
}

func TestPencilAccumulatesStroke(t *testing.T) {
	sh, ok := drag(t, ToolPencil, 0, 0, [][2]float64{{1, 1}, {2, 0}}, 3, 1)
	require.True(t, ok)
	assert.Equal(t, ShapePencil, sh.Name)
	// The anchor seeds the stroke; pointer-up does not add a point.
	assert.Equal(t, Path{Points: []Point{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 0}}}, decodeShape(t, sh))
}

// Pencil previews draw only the new segment; the other tools redraw the full
// frame on every move.
func TestMovePreviewSemantics(t *testing.T) {
	committed := []model.Shape{
		{Name: ShapeLine, Details: mustEncode(t, ShapeLine, Line{EndX: 1, EndY: 1})},
	}

	surf := &recorder{}
	g := PointerDown(Gesture{}, ToolPencil, 0, 0)
	g = PointerMove(g, 1, 1, committed, surf)
	g = PointerMove(g, 2, 2, committed, surf)
	require.Len(t, surf.ops, 2)
	assert.Equal(t, op{kind: "line", args: []float64{0, 0, 1, 1}}, surf.ops[0])
	assert.Equal(t, op{kind: "line", args: []float64{1, 1, 2, 2}}, surf.ops[1])

	surf = &recorder{}
	g = PointerDown(Gesture{}, ToolRect, 0, 0)
	PointerMove(g, 4, 4, committed, surf)
	// clear + committed line + preview rect
	require.Len(t, surf.ops, 3)
	assert.Equal(t, "clear", surf.ops[0].kind)
	assert.Equal(t, "line", surf.ops[1].kind)
	assert.Equal(t, op{kind: "rect", args: []float64{0, 0, 4, 4}}, surf.ops[2])
}

func TestMoveWhileIdleIsIgnored(t *testing.T) {
	surf := &recorder{}
	g := PointerMove(Gesture{}, 10, 10, nil, surf)
	assert.False(t, g.Active)
	assert.Empty(t, surf.ops)
}

func TestPointerUpWhileIdleCommitsNothing(t *testing.T) {
	_, _, ok := PointerUp(Gesture{}, 1, 1)
	assert.False(t, ok)
}
