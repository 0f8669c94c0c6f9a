package bridge

import (
	"fmt"
	"sync"

	"github.com/ytget/fluxnet/internal/model"
)

// MegabitsPerSecond converts cumulative bytes over elapsed seconds to Mbps
func MegabitsPerSecond(bytes int64, elapsedSeconds float64) float64 {
	return float64(bytes) * 8 / 1_000_000 / elapsedSeconds
}

// FormatValue renders a measurement with two decimals
func FormatValue(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// Normalizer turns raw progress samples of one transfer phase into display
// values for a single target. The value is the average rate since the phase
// started, not a sliding window. Use a new Normalizer for every phase.
type Normalizer struct {
	poster   Poster
	target   model.Target
	onSample func()

	mu      sync.Mutex
	posted  bool
	stopped bool
}

// NewNormalizer creates a normalizer posting to target
func NewNormalizer(poster Poster, target model.Target) *Normalizer {
	return &Normalizer{poster: poster, target: target}
}

// OnSample registers a hook called for every raw sample, used for metrics
func (n *Normalizer) OnSample(fn func()) *Normalizer {
	n.onSample = fn
	return n
}

// Sample handles one progress callback. Samples without elapsed time post a
// single zero placeholder, and only if nothing was posted for the phase yet.
func (n *Normalizer) Sample(bytes int64, elapsedSeconds float64) {
	if n.onSample != nil {
		n.onSample()
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.stopped {
		return
	}

	if elapsedSeconds <= 0 {
		if !n.posted {
			n.posted = true
			PostText(n.poster, n.target, model.ZeroValue)
		}
		return
	}

	n.posted = true
	PostText(n.poster, n.target, FormatValue(MegabitsPerSecond(bytes, elapsedSeconds)))
}

// Stop discards every later sample so that a late callback can never
// overwrite the authoritative value posted after the phase.
func (n *Normalizer) Stop() {
	n.mu.Lock()
	n.stopped = true
	n.mu.Unlock()
}
