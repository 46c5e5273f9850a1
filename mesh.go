package forest

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// Ebitengine only rasterizes triangles, so each line-list segment is expanded
// into a screen-space quad: 4 vertices and 6 indices per segment.
const (
	quadVerts = 4
	quadInds  = 6
)

// lineMesh is the triangle form of a tree's line list, sized for one target.
// Buffers grow to a high-water mark and are reused across rebuilds.
type lineMesh struct {
	verts    []ebiten.Vertex
	inds     []uint32
	segments int
	width    int
	height   int
}

// build converts every segment of t into a quad of lineWidth pixels on a
// w x h target. A nil tree produces an empty mesh.
func (m *lineMesh) build(t *Tree, w, h int, lineWidth float64) {
	m.width, m.height = w, h
	if t == nil || t.Empty() {
		m.verts = m.verts[:0]
		m.inds = m.inds[:0]
		m.segments = 0
		return
	}

	segs := t.NumSegments()
	numVerts := segs * quadVerts
	numInds := segs * quadInds
	if cap(m.verts) < numVerts {
		m.verts = make([]ebiten.Vertex, numVerts)
	}
	m.verts = m.verts[:numVerts]
	if cap(m.inds) < numInds {
		m.inds = make([]uint32, numInds)
	}
	m.inds = m.inds[:numInds]
	m.segments = segs

	view := ndcTransform(w, h)
	halfW := lineWidth / 2
	for k := 0; k < segs; k++ {
		a, b := t.Segment(k)
		ax, ay := transformPoint(view, float64(a.X()), float64(a.Y()))
		bx, by := transformPoint(view, float64(b.X()), float64(b.Y()))
		nx, ny := perpendicular(ax, ay, bx, by)
		ox, oy := nx*halfW, ny*halfW

		vi := k * quadVerts
		m.verts[vi+0] = lineVertex(ax+ox, ay+oy, a.Color)
		m.verts[vi+1] = lineVertex(ax-ox, ay-oy, a.Color)
		m.verts[vi+2] = lineVertex(bx+ox, by+oy, b.Color)
		m.verts[vi+3] = lineVertex(bx-ox, by-oy, b.Color)

		ii := k * quadInds
		v := uint32(vi)
		m.inds[ii+0] = v
		m.inds[ii+1] = v + 1
		m.inds[ii+2] = v + 2
		m.inds[ii+3] = v + 1
		m.inds[ii+4] = v + 3
		m.inds[ii+5] = v + 2
	}
}

// indexCount returns how many indices draw the first segs segments.
func (m *lineMesh) indexCount(segs int) int {
	if segs > m.segments {
		segs = m.segments
	}
	if segs < 0 {
		segs = 0
	}
	return segs * quadInds
}

// lineVertex builds an untextured vertex sampling the centre of the white
// pixel, colored with rgb at full alpha.
func lineVertex(x, y float64, rgb [3]float32) ebiten.Vertex {
	return ebiten.Vertex{
		DstX:   float32(x),
		DstY:   float32(y),
		SrcX:   0.5,
		SrcY:   0.5,
		ColorR: rgb[0],
		ColorG: rgb[1],
		ColorB: rgb[2],
		ColorA: 1,
	}
}

// perpendicular returns the unit left-perpendicular of the segment from a to
// b. Degenerate segments get a vertical normal so they still cover a pixel.
func perpendicular(ax, ay, bx, by float64) (float64, float64) {
	dx := bx - ax
	dy := by - ay
	ln := math.Sqrt(dx*dx + dy*dy)
	if ln < 1e-10 {
		return 0, -1
	}
	return -dy / ln, dx / ln
}

// --- White pixel singleton ---

var whitePixelImage *ebiten.Image

// ensureWhitePixel returns a lazily-initialized 1x1 white pixel image used as
// the source texture for untextured line quads.
func ensureWhitePixel() *ebiten.Image {
	if whitePixelImage == nil {
		whitePixelImage = ebiten.NewImage(1, 1)
		whitePixelImage.Fill(color.RGBA{R: 255, G: 255, B: 255, A: 255})
	}
	return whitePixelImage
}
