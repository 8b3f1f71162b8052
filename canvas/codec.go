package canvas

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrMalformedGeometry reports details that do not parse as the geometry
	// of a known shape kind.
	ErrMalformedGeometry = errors.New("malformed shape geometry")
	// ErrUnknownShape reports a shape kind this codec does not understand.
	// Callers are expected to carry such shapes opaquely rather than fail.
	ErrUnknownShape = errors.New("unknown shape kind")
)

// Encode serializes geometry to the opaque details text stored and sent for
// a shape. The concrete type of g must match name: Line for line and arrow,
// Rect for rect, Circle for circle, Path for pencil.
func Encode(name string, g interface{}) (string, error) {
	switch name {
	case ShapeLine, ShapeArrow:
		if _, ok := g.(Line); !ok {
			return "", fmt.Errorf("%w: %q wants Line geometry", ErrMalformedGeometry, name)
		}
	case ShapeRect:
		if _, ok := g.(Rect); !ok {
			return "", fmt.Errorf("%w: %q wants Rect geometry", ErrMalformedGeometry, name)
		}
	case ShapeCircle:
		c, ok := g.(Circle)
		if !ok || c.Radius < 0 {
			return "", fmt.Errorf("%w: %q wants Circle geometry with radius >= 0", ErrMalformedGeometry, name)
		}
	case ShapePencil:
		if _, ok := g.(Path); !ok {
			return "", fmt.Errorf("%w: %q wants Path geometry", ErrMalformedGeometry, name)
		}
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownShape, name)
	}

	b, err := json.Marshal(g)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedGeometry, err)
	}
	return string(b), nil
}

// Decode parses the details text of a shape back into its geometry value.
// The returned value is Line, Rect, Circle or Path depending on name.
func Decode(name, details string) (interface{}, error) {
	switch name {
	case ShapeLine, ShapeArrow:
		var l Line
		if err := unmarshal(details, &l); err != nil {
			return nil, err
		}
		return l, nil
	case ShapeRect:
		var r Rect
		if err := unmarshal(details, &r); err != nil {
			return nil, err
		}
		return r, nil
	case ShapeCircle:
		var c Circle
		if err := unmarshal(details, &c); err != nil {
			return nil, err
		}
		if c.Radius < 0 {
			return nil, fmt.Errorf("%w: negative radius %v", ErrMalformedGeometry, c.Radius)
		}
		return c, nil
	case ShapePencil:
		var p Path
		if err := unmarshal(details, &p); err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownShape, name)
	}
}

func unmarshal(details string, v interface{}) error {
	if err := json.Unmarshal([]byte(details), v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedGeometry, err)
	}
	return nil
}
