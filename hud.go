package forest

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// drawHUD prints FPS/TPS, the tree on display with its NDC extent, and the
// cursor position in NDC over the top-left corner of the screen.
func (s *Scene) drawHUD(screen *ebiten.Image) {
	cx, cy := ebiten.CursorPosition()
	b := screen.Bounds()
	nx, ny := ScreenToNDC(b.Dx(), b.Dy(), float64(cx), float64(cy))
	ebitenutil.DebugPrint(screen, s.hudText(ebiten.ActualFPS(), ebiten.ActualTPS(), nx, ny))
}

// hudText formats the HUD contents.
func (s *Scene) hudText(fps, tps, cursorX, cursorY float64) string {
	var shown, segs, verts int
	var extent Rect
	if t, err := s.Tree(); err == nil {
		shown = s.current + 1
		segs = t.NumSegments()
		verts = len(t.Vertices())
		extent = t.Bounds()
	}
	return fmt.Sprintf("FPS: %.1f\nTPS: %.1f\nTree: %d/%d\nSegments: %d\nVertices: %d\nExtent: %.3f x %.3f\nLevel: %d  Completeness: %d\nCursor: %.3f, %.3f",
		fps, tps,
		shown, s.forest.Len(),
		segs, verts,
		extent.Width, extent.Height,
		s.gen.FractalLevel(), s.gen.CompletenessFactor(),
		cursorX, cursorY,
	)
}
