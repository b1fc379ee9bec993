// Package memory implements Session Memory (C9): three parallel maps
// keyed by agent name (raw, cleaned, metadata) for one session. All
// writes go through Record, which is the only place raw text is ever
// cleaned; all downstream reads use Cleaned, never Raw.
package memory

import (
	"sync"
	"time"

	"github.com/ashfrnndz21/agentmesh/clean"
)

// Meta is the per-agent bookkeeping stamped by Record.
type Meta struct {
	RecordedAt time.Time
}

// SessionMemory holds one session's per-agent raw/cleaned/meta state and
// the quality analysis later derived from it.
type SessionMemory struct {
	mu       sync.RWMutex
	raw      map[string]string
	cleaned  map[string]string
	meta     map[string]Meta
	analysis map[string]QualityAnalysis
	order    []string // agentName insertion order, for deterministic reporting
}

// New creates an empty SessionMemory.
func New() *SessionMemory {
	return &SessionMemory{
		raw:      make(map[string]string),
		cleaned:  make(map[string]string),
		meta:     make(map[string]Meta),
		analysis: make(map[string]QualityAnalysis),
	}
}

// Record stores rawText for agentName, cleans it through C3, stores the
// cleaned result, and stamps meta. It also computes and stores the
// per-agent QualityAnalysis used by Reflect.
func (m *SessionMemory) Record(agentName, rawText string) {
	cleaned := clean.Clean(rawText)

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.raw[agentName]; !exists {
		m.order = append(m.order, agentName)
	}
	m.raw[agentName] = rawText
	m.cleaned[agentName] = cleaned
	m.meta[agentName] = Meta{RecordedAt: time.Now()}
	m.analysis[agentName] = analyze(agentName, cleaned)
}

// Raw returns the raw text recorded for agentName, for audit/debug paths
// only — downstream prompts must never consume this.
func (m *SessionMemory) Raw(agentName string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.raw[agentName]
	return v, ok
}

// Cleaned returns the cleaned text recorded for agentName; this is the
// only value downstream agents and the synthesizer may read.
func (m *SessionMemory) Cleaned(agentName string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.cleaned[agentName]
	return v, ok
}

// AllCleaned returns a copy of the full cleaned map. A map carries no
// order; AgentNames gives the recording order.
func (m *SessionMemory) AllCleaned() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string, len(m.cleaned))
	for k, v := range m.cleaned {
		out[k] = v
	}
	return out
}

// Analysis returns the QualityAnalysis computed when agentName was last
// recorded.
func (m *SessionMemory) Analysis(agentName string) (QualityAnalysis, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.analysis[agentName]
	return a, ok
}

// AgentNames returns the recorded agent names in first-write order.
func (m *SessionMemory) AgentNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}
