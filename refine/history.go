package refine

import (
	"sync"

	"github.com/ashfrnndz21/agentmesh/core"
)

// maxHistoryPerSession bounds how many ContextTransferSnapshot entries a
// History retains; once full, the oldest is dropped. This keeps context
// evolution reporting (§6 GET /traces/{sessionID}/context-evolution)
// bounded in memory regardless of how long a session runs.
const maxHistoryPerSession = 200

// History is a thread-safe, bounded log of context transfer snapshots for
// one session.
type History struct {
	mu      sync.Mutex
	entries []core.ContextTransferSnapshot
}

// NewHistory creates an empty History.
func NewHistory() *History {
	return &History{}
}

// Add appends a snapshot, evicting the oldest entry if the history is
// already at capacity.
func (h *History) Add(snapshot core.ContextTransferSnapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = append(h.entries, snapshot)
	if len(h.entries) > maxHistoryPerSession {
		h.entries = h.entries[len(h.entries)-maxHistoryPerSession:]
	}
}

// Snapshots returns a copy of the recorded history, oldest first.
func (h *History) Snapshots() []core.ContextTransferSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]core.ContextTransferSnapshot, len(h.entries))
	copy(out, h.entries)
	return out
}

// AverageQuality returns the mean Quality across recorded snapshots, or 0
// if none have been recorded.
func (h *History) AverageQuality() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.entries) == 0 {
		return 0
	}
	var sum float64
	for _, e := range h.entries {
		sum += e.Quality
	}
	return sum / float64(len(h.entries))
}
