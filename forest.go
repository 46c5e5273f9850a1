package forest

import (
	"fmt"
	"image/color"
)

// Color represents an RGB color with components in [0, 1].
type Color struct {
	R, G, B float32
}

// Array returns the color as the [3]float32 layout stored in a Vertex.
func (c Color) Array() [3]float32 {
	return [3]float32{c.R, c.G, c.B}
}

// toRGBA converts the color to an opaque color.RGBA for image fills.
func (c Color) toRGBA() color.RGBA {
	return color.RGBA{
		R: unitToByte(c.R),
		G: unitToByte(c.G),
		B: unitToByte(c.B),
		A: 255,
	}
}

func unitToByte(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}

// Standard colors used by the generator and viewer.
var (
	ColorLeaf   = Color{0, 1, 0}       // green, segments emitted at level 0
	ColorBranch = Color{0.25, 0.25, 0} // brown, segments emitted above level 0
	ColorClear  = Color{0.1, 0.2, 0.3} // viewer background
)

// Palette selects the colors assigned to generated segments.
type Palette struct {
	Leaf   Color
	Branch Color
}

// DefaultPalette is the green-leaf, brown-branch palette.
var DefaultPalette = Palette{Leaf: ColorLeaf, Branch: ColorBranch}

// colorFor returns the segment color for the given recursion level.
func (p Palette) colorFor(level uint8) Color {
	if level == 0 {
		return p.Leaf
	}
	return p.Branch
}

// Vec2 is a 2D vector in fractal/NDC space.
type Vec2 struct {
	X, Y float32
}

// DefaultScale converts one fractal unit into normalized device coordinates.
var DefaultScale = Vec2{X: 1.0 / 256.0, Y: 1.0 / 256.0}

// Rect is an axis-aligned rectangle in NDC space.
type Rect struct {
	X, Y, Width, Height float32
}

// Vertex is one endpoint of a line segment: a position with z fixed at 0 and
// an RGB color tag. The layout matches a tightly packed GPU vertex.
type Vertex struct {
	Position [3]float32
	Color    [3]float32
}

// NewVertex returns a vertex at (x, y, 0) with the given color.
func NewVertex(x, y float32, c Color) Vertex {
	return Vertex{
		Position: [3]float32{x, y, 0},
		Color:    c.Array(),
	}
}

// X returns the vertex's x coordinate.
func (v Vertex) X() float32 { return v.Position[0] }

// Y returns the vertex's y coordinate.
func (v Vertex) Y() float32 { return v.Position[1] }

// Forest is an ordered sequence of independently generated trees. The forest
// exclusively owns its trees.
type Forest struct {
	trees []*Tree
}

// NewForest returns an empty forest with room for n trees.
func NewForest(n int) *Forest {
	return &Forest{trees: make([]*Tree, 0, n)}
}

func (f *Forest) add(t *Tree) {
	f.trees = append(f.trees, t)
}

// Len returns the number of trees.
func (f *Forest) Len() int {
	return len(f.trees)
}

// Trees returns the tree list. The returned slice MUST NOT be mutated.
func (f *Forest) Trees() []*Tree {
	return f.trees
}

// Tree returns the i-th tree, or an error wrapping ErrNoGeometry when i is
// outside the forest.
func (f *Forest) Tree(i int) (*Tree, error) {
	if i < 0 || i >= len(f.trees) {
		return nil, fmt.Errorf("tree %d of %d: %w", i, len(f.trees), ErrNoGeometry)
	}
	return f.trees[i], nil
}

// First returns the first tree, the one the viewer renders by default.
// An empty forest yields ErrNoGeometry rather than an out-of-range access.
func (f *Forest) First() (*Tree, error) {
	return f.Tree(0)
}

// Stats sums vertex and segment counts over the whole forest.
func (f *Forest) Stats() (vertices, segments int) {
	for _, t := range f.trees {
		vertices += len(t.vertices)
		segments += t.NumSegments()
	}
	return vertices, segments
}
