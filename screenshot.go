package forest

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

const defaultScreenshotDir = "screenshots"

// Screenshot queues a labeled capture of the current tree. Queued captures
// are taken after the frame is drawn and written to ScreenshotDir as
// <timestamp>_tree<index>_<label>.png. Safe to call from Update or Draw.
func (s *Scene) Screenshot(label string) {
	s.screenshotQueue = append(s.screenshotQueue, label)
}

// flushScreenshots writes one PNG per queued label from a single read of the
// frame. Called at the end of Scene.Draw.
func (s *Scene) flushScreenshots(screen *ebiten.Image) {
	if len(s.screenshotQueue) == 0 {
		return
	}
	labels := s.screenshotQueue
	s.screenshotQueue = s.screenshotQueue[:0]

	if err := os.MkdirAll(s.ScreenshotDir, 0o755); err != nil {
		s.logger.Error("screenshot directory", "dir", s.ScreenshotDir, "err", err)
		return
	}

	frame := readFrame(screen)
	stamp := time.Now().Format("20060102_150405")
	for _, label := range labels {
		path := filepath.Join(s.ScreenshotDir, screenshotName(stamp, s.current, label))
		if err := savePNG(path, frame); err != nil {
			s.logger.Error("screenshot", "path", path, "err", err)
			continue
		}
		s.logger.Info("screenshot written", "path", path, "tree", s.current)
	}
}

func screenshotName(stamp string, tree int, label string) string {
	return fmt.Sprintf("%s_tree%d_%s.png", stamp, tree, fileLabel(label))
}

// readFrame copies the screen into a straight-alpha image for encoding.
func readFrame(screen *ebiten.Image) *image.NRGBA {
	size := screen.Bounds().Size()
	img := image.NewNRGBA(image.Rectangle{Max: size})
	screen.ReadPixels(img.Pix)
	straightenAlpha(img.Pix)
	return img
}

// straightenAlpha divides the color channels of premultiplied RGBA pixels by
// their alpha in place, rounding to nearest. Opaque and fully transparent
// pixels are left as they are.
func straightenAlpha(pix []byte) {
	for p := 0; p+3 < len(pix); p += 4 {
		a := int(pix[p+3])
		if a == 0 || a == 0xff {
			continue
		}
		for c := p; c < p+3; c++ {
			pix[c] = uint8(min((int(pix[c])*0xff+a/2)/a, 0xff))
		}
	}
}

// savePNG encodes img to a new file at path.
func savePNG(path string, img image.Image) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save png: %w", err)
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(f, img); err != nil {
		return fmt.Errorf("save png %s: %w", path, err)
	}
	return nil
}

// fileLabel keeps ASCII letters, digits, '-' and '.', maps everything else to
// '_' and names blank labels "unlabeled".
func fileLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "unlabeled"
	}
	return strings.Map(func(r rune) rune {
		if r == '-' || r == '.' ||
			('0' <= r && r <= '9') || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') {
			return r
		}
		return '_'
	}, label)
}
