package forest

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"
)

// MaxFractalLevel bounds the recursion depth accepted by NewTreeGenerator.
// Vertex count grows combinatorially with the level, so deeper trees are
// rejected as a configuration error.
const MaxFractalLevel = 16

// Every tree grows from the origin, first segment pointing Up.
const (
	originX float32 = 0
	originY float32 = 0
)

// TreeGenerator holds the generation parameters and builds trees and forests.
// Parameters are fixed at construction. A generator may build any number of
// forests; each draws fresh values from the generator's random source.
//
// A TreeGenerator is not safe for concurrent use because its random source
// is shared. GenerateForestParallel handles its own fan-out.
type TreeGenerator struct {
	fractalLevel       uint8
	completenessFactor uint8
	numTrees           uint16

	scale   Vec2
	palette Palette
	rng     Rand
	logger  *slog.Logger
}

// Option configures a TreeGenerator.
type Option func(*TreeGenerator)

// WithRand sets the random source used for branch draws.
func WithRand(r Rand) Option {
	return func(g *TreeGenerator) {
		g.rng = r
	}
}

// WithSeed uses a PCG source seeded with seed, making output reproducible.
func WithSeed(seed uint64) Option {
	return func(g *TreeGenerator) {
		g.rng = NewRand(seed)
	}
}

// WithScale sets the per-axis conversion from fractal units to NDC. Segments
// of one level share a Euclidean length only when X equals Y.
func WithScale(scale Vec2) Option {
	return func(g *TreeGenerator) {
		g.scale = scale
	}
}

// WithPalette sets the leaf and branch colors.
func WithPalette(p Palette) Option {
	return func(g *TreeGenerator) {
		g.palette = p
	}
}

// WithLogger sets the logger used for generation diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(g *TreeGenerator) {
		g.logger = l
	}
}

// NewTreeGenerator creates a generator. fractalLevel is the maximum recursion
// depth, completenessFactor the branch-continuation threshold out of 256, and
// numTrees the forest size. A fractalLevel above MaxFractalLevel yields a
// *ConfigurationError.
func NewTreeGenerator(fractalLevel, completenessFactor uint8, numTrees uint16, opts ...Option) (*TreeGenerator, error) {
	if fractalLevel > MaxFractalLevel {
		return nil, &ConfigurationError{
			Field: "fractal_level",
			Value: strconv.Itoa(int(fractalLevel)),
			Err:   fmt.Errorf("%w: maximum is %d", ErrLevelTooDeep, MaxFractalLevel),
		}
	}
	g := &TreeGenerator{
		fractalLevel:       fractalLevel,
		completenessFactor: completenessFactor,
		numTrees:           numTrees,
		scale:              DefaultScale,
		palette:            DefaultPalette,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.rng == nil {
		g.rng = newRandomRand()
	}
	if g.logger == nil {
		g.logger = slog.Default()
	}
	return g, nil
}

// FractalLevel returns the maximum recursion depth.
func (g *TreeGenerator) FractalLevel() uint8 { return g.fractalLevel }

// CompletenessFactor returns the branch-continuation threshold.
func (g *TreeGenerator) CompletenessFactor() uint8 { return g.completenessFactor }

// NumTrees returns the forest size.
func (g *TreeGenerator) NumTrees() uint16 { return g.numTrees }

// Scale returns the NDC scale.
func (g *TreeGenerator) Scale() Vec2 { return g.scale }

// Palette returns the segment colors.
func (g *TreeGenerator) Palette() Palette { return g.palette }

// GenerateTree appends one segment grown from (startX, startY) in direction
// dir at the given level, then recursively appends its sub-branches using the
// generator's random source.
//
// For every direction except dir itself a value in [0, 255] is drawn; the
// branch recurses one level down when the draw is below completeness. Only
// the identical direction is skipped, not its geometric opposite. Level 0
// segments are leaves and end the recursion.
func (g *TreeGenerator) GenerateTree(t *Tree, level uint8, startX, startY float32, completeness uint8, dir GrowthDirection) {
	g.grow(t, level, startX, startY, completeness, dir, g.rng)
}

func (g *TreeGenerator) grow(t *Tree, level uint8, x, y float32, completeness uint8, dir GrowthDirection, rng Rand) {
	endX, endY := dir.Step(x, y, level, g.scale)
	c := g.palette.colorFor(level)
	t.AddSegment(NewVertex(x, y, c), NewVertex(endX, endY, c))

	if level == 0 {
		return
	}
	for _, next := range GrowthDirections {
		// The draw happens for the skipped direction too, so the sequence
		// consumed per node is always NumDirections values plus subtrees.
		n := rng.IntN(drawRange)
		if next != dir && n < int(completeness) {
			g.grow(t, level-1, endX, endY, completeness, next, rng)
		}
	}
}

// newTree builds one complete tree from the origin.
func (g *TreeGenerator) newTree(rng Rand) *Tree {
	t := NewTree()
	g.grow(t, g.fractalLevel, originX, originY, g.completenessFactor, Up, rng)
	return t
}

// GenerateForest builds NumTrees trees, each from the origin growing Up at
// FractalLevel. A generator with NumTrees == 0 returns an empty forest.
func (g *TreeGenerator) GenerateForest() *Forest {
	start := time.Now()
	f := NewForest(int(g.numTrees))
	for i := 0; i < int(g.numTrees); i++ {
		f.add(g.newTree(g.rng))
	}
	g.logForest(f, time.Since(start))
	return f
}

// GenerateForestParallel builds the same shape of forest as GenerateForest
// using up to workers goroutines (workers <= 0 means no limit). A seed per
// tree is drawn from the generator's source before fan-out and each tree gets
// its own PCG source, so the result depends only on the generator's source,
// not on scheduling or worker count.
//
// Cancelling ctx stops trees that have not started yet and returns ctx's error.
func (g *TreeGenerator) GenerateForestParallel(ctx context.Context, workers int) (*Forest, error) {
	start := time.Now()
	n := int(g.numTrees)
	seeds := make([]uint64, n)
	for i := range seeds {
		seeds[i] = nextSeed(g.rng)
	}

	trees := make([]*Tree, n)
	eg, egCtx := errgroup.WithContext(ctx)
	if workers > 0 {
		eg.SetLimit(workers)
	}
	for i := range n {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			trees[i] = g.newTree(NewRand(seeds[i]))
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("generate forest: %w", err)
	}

	f := &Forest{trees: trees}
	g.logForest(f, time.Since(start))
	return f, nil
}

func (g *TreeGenerator) logForest(f *Forest, elapsed time.Duration) {
	verts, segs := f.Stats()
	g.logger.Debug("forest generated",
		"trees", f.Len(),
		"fractal_level", g.fractalLevel,
		"completeness_factor", g.completenessFactor,
		"vertices", verts,
		"segments", segs,
		"elapsed", elapsed,
	)
}
