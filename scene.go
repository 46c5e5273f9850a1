package forest

import (
	"context"
	"log/slog"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// SceneConfig configures a Scene.
type SceneConfig struct {
	// Generator builds the forest. Required.
	Generator *TreeGenerator
	// Workers > 1 builds forests with GenerateForestParallel.
	Workers int
	// Clear is the background color. The zero value uses ColorClear.
	Clear *Color
	// LineWidth is the segment width in pixels (default 1).
	LineWidth float64
	// Grow, when positive, reveals each shown tree over this duration.
	Grow time.Duration
	// HUD draws FPS and tree statistics in the top-left corner.
	HUD bool
	// ScreenshotDir is where Screenshot writes PNGs (default "screenshots").
	ScreenshotDir string
	// Logger receives diagnostics. Defaults to slog.Default().
	Logger *slog.Logger
}

// Scene is an ebiten.Game that displays one tree of a generated forest as a
// line-list wireframe. Tree 0 is shown first; the others are reachable one at
// a time with NextTree, PrevTree and ShowTree.
type Scene struct {
	gen     *TreeGenerator
	workers int
	logger  *slog.Logger
	debug   bool

	forest  *Forest
	current int

	// Render state
	mesh      lineMesh
	meshDirty bool
	clear     Color
	lineWidth float64
	screenW   int
	screenH   int

	grow   time.Duration
	reveal *RevealTween
	hud    bool

	// ScreenshotDir is the directory PNG screenshots are written to.
	ScreenshotDir   string
	screenshotQueue []string

	runner *ScriptRunner
	quit   bool
}

// NewScene generates the initial forest and returns a scene showing its first
// tree. An empty forest is not an error: the scene draws only the background
// and Tree reports ErrNoGeometry.
func NewScene(cfg SceneConfig) (*Scene, error) {
	if cfg.Generator == nil {
		return nil, &ConfigurationError{Field: "generator", Err: errMissing}
	}
	s := &Scene{
		gen:           cfg.Generator,
		workers:       cfg.Workers,
		logger:        cfg.Logger,
		clear:         ColorClear,
		lineWidth:     cfg.LineWidth,
		grow:          cfg.Grow,
		hud:           cfg.HUD,
		ScreenshotDir: cfg.ScreenshotDir,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if cfg.Clear != nil {
		s.clear = *cfg.Clear
	}
	if s.lineWidth <= 0 {
		s.lineWidth = 1
	}
	if s.ScreenshotDir == "" {
		s.ScreenshotDir = defaultScreenshotDir
	}
	if err := s.Regenerate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Forest returns the forest currently on display.
func (s *Scene) Forest() *Forest {
	return s.forest
}

// Current returns the index of the tree on display.
func (s *Scene) Current() int {
	return s.current
}

// Tree returns the tree on display, or ErrNoGeometry for an empty forest.
func (s *Scene) Tree() (*Tree, error) {
	return s.forest.Tree(s.current)
}

// Regenerate builds a new forest with fresh randomness and shows its first tree.
func (s *Scene) Regenerate() error {
	var f *Forest
	if s.workers > 1 {
		var err error
		f, err = s.gen.GenerateForestParallel(context.Background(), s.workers)
		if err != nil {
			return err
		}
	} else {
		f = s.gen.GenerateForest()
	}
	s.forest = f
	if f.Len() == 0 {
		s.logger.Warn("forest is empty, nothing to draw", "err", ErrNoGeometry)
	}
	s.show(0)
	return nil
}

// ShowTree displays tree i of the current forest.
func (s *Scene) ShowTree(i int) error {
	if _, err := s.forest.Tree(i); err != nil {
		return err
	}
	s.show(i)
	return nil
}

// NextTree displays the following tree, wrapping around. No-op on an empty forest.
func (s *Scene) NextTree() {
	if n := s.forest.Len(); n > 0 {
		s.show((s.current + 1) % n)
	}
}

// PrevTree displays the preceding tree, wrapping around. No-op on an empty forest.
func (s *Scene) PrevTree() {
	if n := s.forest.Len(); n > 0 {
		s.show((s.current - 1 + n) % n)
	}
}

func (s *Scene) show(i int) {
	s.current = i
	s.meshDirty = true
	if s.grow > 0 {
		s.reveal = NewRevealTween(s.grow, nil)
	} else {
		s.reveal = nil
	}
}

// Quit makes the next Update end the game loop.
func (s *Scene) Quit() {
	s.quit = true
}

// SetDebugMode enables or disables debug mode. When enabled, per-frame mesh
// and draw timings are logged at debug level.
func (s *Scene) SetDebugMode(enabled bool) {
	s.debug = enabled
}

// Update processes keys, advances the script runner and reveal tween, and
// returns ebiten.Termination once the scene has been asked to quit.
func (s *Scene) Update() error {
	dt := float32(1.0 / float64(ebiten.TPS()))

	if err := s.handleKeys(); err != nil {
		return err
	}
	if s.runner != nil {
		if err := s.runner.step(s); err != nil {
			return err
		}
	}
	if s.reveal != nil {
		s.reveal.Update(dt)
	}
	if s.quit {
		return ebiten.Termination
	}
	return nil
}

func (s *Scene) handleKeys() error {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		s.Quit()
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		return s.Regenerate()
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowRight):
		s.NextTree()
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft):
		s.PrevTree()
	}
	return nil
}

// Draw clears the screen and draws the current tree with a single indexed
// triangle call covering every segment that is revealed.
func (s *Scene) Draw(screen *ebiten.Image) {
	var stats debugStats
	var t0 time.Time

	screen.Fill(s.clear.toRGBA())

	b := screen.Bounds()
	if s.meshDirty || b.Dx() != s.mesh.width || b.Dy() != s.mesh.height {
		if s.debug {
			t0 = time.Now()
		}
		s.rebuildMesh(b.Dx(), b.Dy())
		if s.debug {
			stats.meshTime = time.Since(t0)
		}
	}

	if s.debug {
		t0 = time.Now()
	}
	n := s.mesh.indexCount(s.reveal.Visible(s.mesh.segments))
	if n > 0 {
		var op ebiten.DrawTrianglesOptions
		screen.DrawTriangles32(s.mesh.verts, s.mesh.inds[:n], ensureWhitePixel(), &op)
	}
	if s.debug {
		stats.drawTime = time.Since(t0)
		stats.segmentCount = s.mesh.segments
		stats.indexCount = n
		s.debugLog(stats)
	}

	if s.hud {
		s.drawHUD(screen)
	}
	s.flushScreenshots(screen)
}

// rebuildMesh regenerates the quad mesh for the current tree.
func (s *Scene) rebuildMesh(w, h int) {
	t, err := s.Tree()
	if err != nil {
		t = nil
	}
	s.mesh.build(t, w, h, s.lineWidth)
	s.meshDirty = false
}

// Layout keeps the logical screen equal to the window size; the mesh is
// rebuilt on the next Draw when the size changes.
func (s *Scene) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != s.screenW || outsideHeight != s.screenH {
		s.screenW, s.screenH = outsideWidth, outsideHeight
		s.meshDirty = true
	}
	return outsideWidth, outsideHeight
}
