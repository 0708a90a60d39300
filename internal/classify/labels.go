package classify

// ColorLabel is one of a closed set of color names.
type ColorLabel int

// Color labels. The order breaks scoring ties.
const (
	ColorUnknown ColorLabel = iota
	Red
	Green
	Blue
	Yellow
	Orange
	Purple
	Pink
	Cyan
	White
	Black
	Gray
)

var colorNames = map[ColorLabel]string{
	ColorUnknown: "unknown",
	Red:          "red",
	Green:        "green",
	Blue:         "blue",
	Yellow:       "yellow",
	Orange:       "orange",
	Purple:       "purple",
	Pink:         "pink",
	Cyan:         "cyan",
	White:        "white",
	Black:        "black",
	Gray:         "gray",
}

func (c ColorLabel) String() string {
	if name, ok := colorNames[c]; ok {
		return name
	}
	return "unknown"
}

// MarshalText encodes the label as its name.
func (c ColorLabel) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Achromatic reports whether the label is white, black or gray.
func (c ColorLabel) Achromatic() bool {
	return c == White || c == Black || c == Gray
}

// ShapeLabel is one of a closed set of shape names.
type ShapeLabel int

// Shape labels.
const (
	ShapeUnknown ShapeLabel = iota
	Circle
	Triangle
	Rectangle
	Square
	Pentagon
	Hexagon
	Polygon
)

var shapeNames = map[ShapeLabel]string{
	ShapeUnknown: "unknown",
	Circle:       "circle",
	Triangle:     "triangle",
	Rectangle:    "rectangle",
	Square:       "square",
	Pentagon:     "pentagon",
	Hexagon:      "hexagon",
	Polygon:      "polygon",
}

func (s ShapeLabel) String() string {
	if name, ok := shapeNames[s]; ok {
		return name
	}
	return "unknown"
}

// MarshalText encodes the label as its name.
func (s ShapeLabel) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
