package forest

import (
	"encoding/binary"
	"math"
)

// VertexStride is the packed size of a Vertex in bytes: six float32 values.
const VertexStride = 24

// Tree is an append-only accumulator of vertices and a line-list index buffer.
// Every segment adds a start vertex and an end vertex and the pair of their
// indices, so len(Indices()) is always even and every index refers to an
// already appended vertex.
//
// A Tree is owned by the call that builds it. Once generation returns it is
// treated as immutable.
type Tree struct {
	vertices []Vertex
	indices  []uint32
}

// NewTree creates an empty tree.
func NewTree() *Tree {
	return &Tree{}
}

// AddSegment appends start and end and records them as one line segment.
// It returns the indices assigned to the two vertices.
func (t *Tree) AddSegment(start, end Vertex) (uint32, uint32) {
	t.vertices = append(t.vertices, start)
	si := uint32(len(t.vertices) - 1)
	t.indices = append(t.indices, si)
	t.vertices = append(t.vertices, end)
	ei := uint32(len(t.vertices) - 1)
	t.indices = append(t.indices, ei)
	return si, ei
}

// Vertices returns the vertex buffer. The returned slice MUST NOT be mutated.
func (t *Tree) Vertices() []Vertex {
	return t.vertices
}

// Indices returns the line-list index buffer. The returned slice MUST NOT be
// mutated.
func (t *Tree) Indices() []uint32 {
	return t.indices
}

// NumSegments returns the number of line segments.
func (t *Tree) NumSegments() int {
	return len(t.indices) / 2
}

// Segment returns the two endpoints of segment k.
func (t *Tree) Segment(k int) (Vertex, Vertex) {
	return t.vertices[t.indices[2*k]], t.vertices[t.indices[2*k+1]]
}

// Empty reports whether the tree holds no geometry.
func (t *Tree) Empty() bool {
	return len(t.indices) == 0
}

// Bounds returns the axis-aligned bounding box of all vertices.
func (t *Tree) Bounds() Rect {
	if len(t.vertices) == 0 {
		return Rect{}
	}
	minX, minY := t.vertices[0].X(), t.vertices[0].Y()
	maxX, maxY := minX, minY
	for i := 1; i < len(t.vertices); i++ {
		x := t.vertices[i].X()
		y := t.vertices[i].Y()
		if x < minX {
			minX = x
		}
		if x > maxX {
			maxX = x
		}
		if y < minY {
			minY = y
		}
		if y > maxY {
			maxY = y
		}
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// VertexBytes returns the vertex buffer packed as little-endian float32
// values, position then color, VertexStride bytes per vertex.
func (t *Tree) VertexBytes() []byte {
	buf := make([]byte, 0, len(t.vertices)*VertexStride)
	for i := range t.vertices {
		v := &t.vertices[i]
		for _, f := range v.Position {
			buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(f))
		}
		for _, f := range v.Color {
			buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(f))
		}
	}
	return buf
}

// IndexBytes returns the index buffer packed as little-endian uint32 values.
func (t *Tree) IndexBytes() []byte {
	buf := make([]byte, 0, len(t.indices)*4)
	for _, idx := range t.indices {
		buf = binary.LittleEndian.AppendUint32(buf, idx)
	}
	return buf
}
