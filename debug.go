package lumen

import (
	"log"
	"os"
	"time"
)

// defaultLogger is used by engines and registries that were not given one.
var defaultLogger = log.New(os.Stderr, "[lumen] ", log.LstdFlags)

// tickStats holds per-tick counters and timing.
// Only reported when the engine is in debug mode.
type tickStats struct {
	recomputed int
	enqueued   int
	drained    int
	pending    int
	active     int
	frameRate  float64
	elapsed    time.Duration
}

// debugLog prints the tick stats through the engine's logger.
func (e *Engine) debugLog(stats tickStats) {
	if !e.debug {
		return
	}
	e.logger.Printf("tick %.3f | active: %d | recomputed: %d | enqueued: %d | drained: %d | pending: %d | avg fps: %.1f | took: %v",
		e.now, stats.active, stats.recomputed, stats.enqueued, stats.drained, stats.pending, stats.frameRate, stats.elapsed)
}

// debugMaxActive is the active-instance count above which debug mode warns.
const debugMaxActive = 256

func (e *Engine) debugCheckActive() {
	if e.debug && len(e.active) > debugMaxActive {
		e.logger.Printf("warning: %d active instances exceeds %d", len(e.active), debugMaxActive)
	}
}
