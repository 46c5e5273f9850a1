package forest

import (
	"math"
	"time"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// RevealTween animates the fraction of a tree's segments that are drawn,
// from 0 to 1, so a tree appears to grow in the order it was generated.
// Call Update(dt) each frame. Once Done, the full index count is drawn.
//
// There is no global animation manager. The Scene owns its tween.
type RevealTween struct {
	tween    *gween.Tween
	fraction float64
	Done     bool
}

// NewRevealTween creates a reveal over the given duration using fn. A nil fn
// uses ease.OutQuad. A non-positive duration yields a tween that is already
// done.
func NewRevealTween(duration time.Duration, fn ease.TweenFunc) *RevealTween {
	if duration <= 0 {
		return &RevealTween{fraction: 1, Done: true}
	}
	if fn == nil {
		fn = ease.OutQuad
	}
	return &RevealTween{
		tween: gween.New(0, 1, float32(duration.Seconds()), fn),
	}
}

// Update advances the tween by dt seconds.
func (r *RevealTween) Update(dt float32) {
	if r.Done {
		return
	}
	val, finished := r.tween.Update(dt)
	r.fraction = float64(val)
	if finished {
		r.fraction = 1
		r.Done = true
	}
}

// Fraction returns the revealed share of segments in [0, 1].
func (r *RevealTween) Fraction() float64 {
	return r.fraction
}

// Visible returns how many of total segments are revealed.
func (r *RevealTween) Visible(total int) int {
	if r == nil || r.Done {
		return total
	}
	n := int(math.Ceil(r.fraction * float64(total)))
	if n > total {
		n = total
	}
	if n < 0 {
		n = 0
	}
	return n
}
