package forest

import "time"

// debugStats holds per-frame timing and geometry metrics.
// Only populated when Scene.debug is true.
type debugStats struct {
	meshTime     time.Duration
	drawTime     time.Duration
	segmentCount int
	indexCount   int
}

// debugLog reports timing and geometry stats through the scene's logger.
func (s *Scene) debugLog(stats debugStats) {
	if !s.debug {
		return
	}
	s.logger.Debug("frame",
		"mesh", stats.meshTime,
		"draw", stats.drawTime,
		"total", stats.meshTime+stats.drawTime,
		"segments", stats.segmentCount,
		"indices", stats.indexCount,
		"tree", s.current,
	)
}
