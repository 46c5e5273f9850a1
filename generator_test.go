package forest

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"
)

// seqRand replays vals in order and counts the draws taken.
type seqRand struct {
	vals  []int
	i     int
	draws int
}

func (r *seqRand) IntN(n int) int {
	v := r.vals[r.i%len(r.vals)] % n
	r.i++
	r.draws++
	return v
}

// constRand always draws the same value.
type constRand int

func (r constRand) IntN(int) int { return int(r) }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestGenerator(t *testing.T, level, completeness uint8, numTrees uint16, opts ...Option) *TreeGenerator {
	t.Helper()
	opts = append([]Option{WithLogger(quietLogger())}, opts...)
	g, err := NewTreeGenerator(level, completeness, numTrees, opts...)
	if err != nil {
		t.Fatalf("NewTreeGenerator: %v", err)
	}
	return g
}

func segmentLength(a, b Vertex) float64 {
	return math.Hypot(float64(b.X()-a.X()), float64(b.Y()-a.Y()))
}

// --- Construction ---

func TestNewTreeGeneratorAccessors(t *testing.T) {
	g := newTestGenerator(t, 5, 100, 3)
	if g.FractalLevel() != 5 || g.CompletenessFactor() != 100 || g.NumTrees() != 3 {
		t.Errorf("accessors = %d/%d/%d", g.FractalLevel(), g.CompletenessFactor(), g.NumTrees())
	}
	if g.Scale() != DefaultScale {
		t.Errorf("Scale = %v, want %v", g.Scale(), DefaultScale)
	}
	if g.Palette() != DefaultPalette {
		t.Errorf("Palette = %v, want %v", g.Palette(), DefaultPalette)
	}
}

func TestNewTreeGeneratorLevelBound(t *testing.T) {
	if _, err := NewTreeGenerator(MaxFractalLevel, 0, 1); err != nil {
		t.Errorf("level %d rejected: %v", MaxFractalLevel, err)
	}
	_, err := NewTreeGenerator(MaxFractalLevel+1, 0, 1)
	if err == nil {
		t.Fatal("expected error for level above maximum")
	}
	var ce *ConfigurationError
	if !errors.As(err, &ce) {
		t.Fatalf("err = %T, want *ConfigurationError", err)
	}
	if ce.Field != "fractal_level" || ce.Value != "17" {
		t.Errorf("ConfigurationError = %+v", ce)
	}
	if !errors.Is(err, ErrLevelTooDeep) {
		t.Error("error does not wrap ErrLevelTooDeep")
	}
}

// --- Single tree ---

func TestMinimalTree(t *testing.T) {
	g := newTestGenerator(t, 0, 0, 1, WithSeed(1))
	f := g.GenerateForest()
	tree, err := f.First()
	if err != nil {
		t.Fatalf("First: %v", err)
	}

	verts := tree.Vertices()
	if len(verts) != 2 {
		t.Fatalf("len(vertices) = %d, want 2", len(verts))
	}
	if verts[0].Position != [3]float32{0, 0, 0} {
		t.Errorf("start = %v, want origin", verts[0].Position)
	}
	if verts[1].Position != [3]float32{0, -1.0 / 256, 0} {
		t.Errorf("end = %v, want [0 -0.00390625 0]", verts[1].Position)
	}
	for i, v := range verts {
		if v.Color != ColorLeaf.Array() {
			t.Errorf("vertex %d color = %v, want leaf", i, v.Color)
		}
	}
	idx := tree.Indices()
	if len(idx) != 2 || idx[0] != 0 || idx[1] != 1 {
		t.Errorf("indices = %v, want [0 1]", idx)
	}
}

func TestZeroCompletenessIsSingleSegment(t *testing.T) {
	for _, level := range []uint8{0, 1, 4, 10, MaxFractalLevel} {
		g := newTestGenerator(t, level, 0, 1, WithSeed(9))
		tree, err := g.GenerateForest().First()
		if err != nil {
			t.Fatalf("level %d: %v", level, err)
		}
		if tree.NumSegments() != 1 {
			t.Errorf("level %d: %d segments, want 1", level, tree.NumSegments())
		}
		_, end := tree.Segment(0)
		want := -float32(math.Ldexp(1, int(level))) / 256
		if end.X() != 0 || end.Y() != want {
			t.Errorf("level %d: end = (%v, %v), want (0, %v)", level, end.X(), end.Y(), want)
		}
		wantColor := ColorBranch.Array()
		if level == 0 {
			wantColor = ColorLeaf.Array()
		}
		if end.Color != wantColor {
			t.Errorf("level %d: color = %v, want %v", level, end.Color, wantColor)
		}
	}
}

func TestFullBranchingCounts(t *testing.T) {
	tests := []struct {
		level    uint8
		segments int
		draws    int
	}{
		{0, 1, 0},
		{1, 8, 8},
		{2, 57, 64},
	}
	for _, tt := range tests {
		r := &seqRand{vals: []int{0}}
		g := newTestGenerator(t, tt.level, 255, 1, WithRand(r))
		tree, err := g.GenerateForest().First()
		if err != nil {
			t.Fatal(err)
		}
		if tree.NumSegments() != tt.segments {
			t.Errorf("level %d: %d segments, want %d", tt.level, tree.NumSegments(), tt.segments)
		}
		if r.draws != tt.draws {
			t.Errorf("level %d: %d draws, want %d", tt.level, r.draws, tt.draws)
		}
	}
}

func TestIncomingDirectionSkipped(t *testing.T) {
	g := newTestGenerator(t, 1, 255, 1, WithRand(constRand(0)))
	tree, _ := g.GenerateForest().First()

	// Segment 0 is the trunk; its end is where every child starts.
	_, trunkEnd := tree.Segment(0)
	seen := map[[2]float32]bool{}
	for k := 1; k < tree.NumSegments(); k++ {
		a, b := tree.Segment(k)
		if a.Position != trunkEnd.Position {
			t.Errorf("child %d starts at %v, want %v", k, a.Position, trunkEnd.Position)
		}
		d := [2]float32{b.X() - a.X(), b.Y() - a.Y()}
		seen[d] = true
	}
	upX, upY := Up.Offset(0, DefaultScale)
	if seen[[2]float32{upX, upY}] {
		t.Error("child grew in the incoming direction")
	}
	downX, downY := Down.Offset(0, DefaultScale)
	if !seen[[2]float32{downX, downY}] {
		t.Error("opposite direction should not be excluded")
	}
	if len(seen) != NumDirections-1 {
		t.Errorf("%d distinct child directions, want %d", len(seen), NumDirections-1)
	}
}

func TestCompletenessThresholdIsStrict(t *testing.T) {
	g := newTestGenerator(t, 3, 128, 1, WithRand(constRand(128)))
	tree, _ := g.GenerateForest().First()
	if tree.NumSegments() != 1 {
		t.Errorf("draw == completeness branched: %d segments", tree.NumSegments())
	}

	g = newTestGenerator(t, 1, 128, 1, WithRand(constRand(127)))
	tree, _ = g.GenerateForest().First()
	if tree.NumSegments() != 8 {
		t.Errorf("draw < completeness: %d segments, want 8", tree.NumSegments())
	}
}

func TestDrawOrderFollowsDirections(t *testing.T) {
	// Only the fourth draw (UpperRight) is below the threshold.
	r := &seqRand{vals: []int{200, 200, 200, 0, 200, 200, 200, 200}}
	g := newTestGenerator(t, 1, 100, 1, WithRand(r))
	tree, _ := g.GenerateForest().First()
	if tree.NumSegments() != 2 {
		t.Fatalf("%d segments, want 2", tree.NumSegments())
	}
	a, b := tree.Segment(1)
	dx, dy := UpperRight.Offset(0, DefaultScale)
	if !approxEqual(float64(b.X()-a.X()), float64(dx), epsilon) || !approxEqual(float64(b.Y()-a.Y()), float64(dy), epsilon) {
		t.Errorf("child offset = (%v, %v), want UpperRight (%v, %v)", b.X()-a.X(), b.Y()-a.Y(), dx, dy)
	}
}

// --- Invariants over random trees ---

func TestTreeInvariants(t *testing.T) {
	const level = 6
	g := newTestGenerator(t, level, 160, 4, WithSeed(2024))
	f := g.GenerateForest()
	if f.Len() != 4 {
		t.Fatalf("Len = %d, want 4", f.Len())
	}
	unit := float64(DefaultScale.X)
	for ti, tree := range f.Trees() {
		idx := tree.Indices()
		if len(idx)%2 != 0 {
			t.Fatalf("tree %d: odd index count %d", ti, len(idx))
		}
		for i, v := range idx {
			if int(v) >= len(tree.Vertices()) {
				t.Fatalf("tree %d: index %d out of range", ti, v)
			}
			if v != uint32(i) {
				t.Fatalf("tree %d: index %d = %d, want %d", ti, i, v, i)
			}
		}
		for k := 0; k < tree.NumSegments(); k++ {
			a, b := tree.Segment(k)
			if a.Color != b.Color {
				t.Errorf("tree %d segment %d: endpoint colors differ", ti, k)
			}
			l := segmentLength(a, b)
			segLevel := math.Round(math.Log2(l / unit))
			if segLevel < 0 || segLevel > level {
				t.Errorf("tree %d segment %d: length %v outside level bounds", ti, k, l)
			}
			wantColor := ColorBranch.Array()
			if segLevel == 0 {
				wantColor = ColorLeaf.Array()
			}
			if a.Color != wantColor {
				t.Errorf("tree %d segment %d (level %v): color %v, want %v", ti, k, segLevel, a.Color, wantColor)
			}
		}
		trunkStart, trunkEnd := tree.Segment(0)
		if trunkStart.X() != 0 || trunkStart.Y() != 0 {
			t.Errorf("tree %d: trunk starts at (%v, %v)", ti, trunkStart.X(), trunkStart.Y())
		}
		if trunkEnd.Y() != -64*DefaultScale.Y {
			t.Errorf("tree %d: trunk ends at y=%v", ti, trunkEnd.Y())
		}
	}
}

func TestForestSize(t *testing.T) {
	for _, n := range []uint16{0, 1, 5} {
		g := newTestGenerator(t, 2, 128, n, WithSeed(3))
		f := g.GenerateForest()
		if f.Len() != int(n) {
			t.Errorf("N=%d: Len = %d", n, f.Len())
		}
		_, err := f.First()
		if n == 0 && !errors.Is(err, ErrNoGeometry) {
			t.Errorf("N=0: First err = %v, want ErrNoGeometry", err)
		}
		if n > 0 && err != nil {
			t.Errorf("N=%d: First err = %v", n, err)
		}
	}
}

func TestGenerateTreeFromArbitraryStart(t *testing.T) {
	g := newTestGenerator(t, 0, 0, 1, WithSeed(5))
	tree := NewTree()
	g.GenerateTree(tree, 2, 0.5, 0.5, 0, Right)
	if tree.NumSegments() != 1 {
		t.Fatalf("%d segments, want 1", tree.NumSegments())
	}
	_, end := tree.Segment(0)
	if end.X() != 0.5+4*DefaultScale.X || end.Y() != 0.5 {
		t.Errorf("end = (%v, %v)", end.X(), end.Y())
	}
}

// --- Determinism ---

func TestSeededGenerationIsDeterministic(t *testing.T) {
	a := newTestGenerator(t, 7, 180, 3, WithSeed(42)).GenerateForest()
	b := newTestGenerator(t, 7, 180, 3, WithSeed(42)).GenerateForest()
	for i := range a.Trees() {
		ta, tb := a.Trees()[i], b.Trees()[i]
		if !bytes.Equal(ta.VertexBytes(), tb.VertexBytes()) {
			t.Errorf("tree %d: vertex bytes differ", i)
		}
		if !bytes.Equal(ta.IndexBytes(), tb.IndexBytes()) {
			t.Errorf("tree %d: index bytes differ", i)
		}
	}
}

func TestInjectedSequenceIsDeterministic(t *testing.T) {
	vals := []int{3, 250, 17, 90, 140, 201, 66, 12, 180, 45}
	a := newTestGenerator(t, 4, 128, 2, WithRand(&seqRand{vals: vals})).GenerateForest()
	b := newTestGenerator(t, 4, 128, 2, WithRand(&seqRand{vals: vals})).GenerateForest()
	if a.Len() != b.Len() {
		t.Fatalf("Len = %d vs %d", a.Len(), b.Len())
	}
	for i := range a.Trees() {
		ta, tb := a.Trees()[i], b.Trees()[i]
		if !bytes.Equal(ta.VertexBytes(), tb.VertexBytes()) {
			t.Errorf("tree %d: vertex bytes differ", i)
		}
		if !bytes.Equal(ta.IndexBytes(), tb.IndexBytes()) {
			t.Errorf("tree %d: index bytes differ", i)
		}
	}
}

func TestGenerateForestParallelMatchesAcrossWorkers(t *testing.T) {
	ctx := context.Background()
	one, err := newTestGenerator(t, 6, 170, 6, WithSeed(11)).GenerateForestParallel(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	four, err := newTestGenerator(t, 6, 170, 6, WithSeed(11)).GenerateForestParallel(ctx, 4)
	if err != nil {
		t.Fatal(err)
	}
	unlimited, err := newTestGenerator(t, 6, 170, 6, WithSeed(11)).GenerateForestParallel(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if one.Len() != 6 || four.Len() != 6 || unlimited.Len() != 6 {
		t.Fatalf("Len = %d/%d/%d, want 6", one.Len(), four.Len(), unlimited.Len())
	}
	for i := range one.Trees() {
		want := one.Trees()[i].VertexBytes()
		if !bytes.Equal(want, four.Trees()[i].VertexBytes()) {
			t.Errorf("tree %d differs between 1 and 4 workers", i)
		}
		if !bytes.Equal(want, unlimited.Trees()[i].VertexBytes()) {
			t.Errorf("tree %d differs between 1 and unlimited workers", i)
		}
	}
}

func TestGenerateForestParallelWithoutUint64Source(t *testing.T) {
	g := newTestGenerator(t, 3, 200, 2, WithRand(&seqRand{vals: []int{1, 2, 3, 4}}))
	f, err := g.GenerateForestParallel(context.Background(), 2)
	if err != nil {
		t.Fatal(err)
	}
	if f.Len() != 2 {
		t.Errorf("Len = %d, want 2", f.Len())
	}
}

func TestGenerateForestParallelCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	g := newTestGenerator(t, 4, 128, 3, WithSeed(1))
	f, err := g.GenerateForestParallel(ctx, 2)
	if f != nil {
		t.Error("expected nil forest on cancellation")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

// --- Benchmarks ---

func BenchmarkGenerateForest(b *testing.B) {
	g, err := NewTreeGenerator(8, 160, 1, WithSeed(1), WithLogger(quietLogger()))
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	for b.Loop() {
		g.GenerateForest()
	}
}
