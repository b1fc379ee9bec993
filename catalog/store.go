// Package catalog implements the Agent Descriptor Store (C1): an
// in-memory, read-mostly set of registered worker agents. The external
// Agent Registry/Backend Manager owns agent lifecycle (process start/stop,
// port allocation); this package only holds the resulting descriptors and
// serves lookups to the rest of the orchestration engine.
package catalog

import (
	"sort"
	"sync"

	"github.com/ashfrnndz21/agentmesh/core"
)

// Store is a thread-safe, read-mostly collection of AgentDescriptors. It is
// one of exactly two process-wide singletons named by the design (the
// other is the tracer); updates are serialized by a reader-writer lock so
// reads never block each other.
type Store struct {
	mu              sync.RWMutex
	agents          map[string]core.AgentDescriptor
	capabilityIndex map[string][]string // capability -> agentIDs, rebuilt on every mutation

	logger core.Logger
}

// NewStore creates an empty descriptor store.
func NewStore() *Store {
	return &Store{
		agents:          make(map[string]core.AgentDescriptor),
		capabilityIndex: make(map[string][]string),
		logger:          core.NoOpLogger{},
	}
}

// SetLogger attaches a component-scoped logger.
func (s *Store) SetLogger(logger core.Logger) {
	if logger == nil {
		s.logger = core.NoOpLogger{}
		return
	}
	if cal, ok := logger.(core.ComponentAwareLogger); ok {
		s.logger = cal.WithComponent("orchestrator/catalog")
		return
	}
	s.logger = logger
}

// Register adds or replaces an agent descriptor.
func (s *Store) Register(agent core.AgentDescriptor) {
	if agent.MaxContextLength == 0 {
		agent.MaxContextLength = core.DefaultMaxContextLength
	}
	if agent.Status == "" {
		agent.Status = core.AgentStatusActive
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.agents[agent.AgentID] = agent
	s.rebuildIndexLocked()

	s.logger.Info("agent registered", map[string]interface{}{
		"agent_id":     agent.AgentID,
		"agent_name":   agent.Name,
		"capabilities": agent.Capabilities,
	})
}

// Unregister removes an agent descriptor. Returns false if the agent was
// not present.
func (s *Store) Unregister(agentID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.agents[agentID]; !ok {
		return false
	}
	delete(s.agents, agentID)
	s.rebuildIndexLocked()

	s.logger.Info("agent unregistered", map[string]interface{}{"agent_id": agentID})
	return true
}

// Get returns the descriptor for agentID, if registered.
func (s *Store) Get(agentID string) (core.AgentDescriptor, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.agents[agentID]
	return d, ok
}

// List returns a stable-ordered (by AgentID) snapshot of every registered
// descriptor. The returned slice is the isolated per-session snapshot
// required by §5: later registry changes do not retroactively affect a
// session that already took its snapshot.
func (s *Store) List() []core.AgentDescriptor {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.AgentDescriptor, 0, len(s.agents))
	for _, d := range s.agents {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AgentID < out[j].AgentID })
	return out
}

// FindByCapability returns every active agent advertising capability.
func (s *Store) FindByCapability(capability string) []core.AgentDescriptor {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.capabilityIndex[capability]
	out := make([]core.AgentDescriptor, 0, len(ids))
	for _, id := range ids {
		if d, ok := s.agents[id]; ok && d.Status == core.AgentStatusActive {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AgentID < out[j].AgentID })
	return out
}

// Snapshot returns the active-only subset of List(), in the same stable
// order. Session scheduling always builds its working set from a snapshot,
// never from the live store.
func (s *Store) Snapshot() []core.AgentDescriptor {
	all := s.List()
	out := make([]core.AgentDescriptor, 0, len(all))
	for _, d := range all {
		if d.Status == core.AgentStatusActive {
			out = append(out, d)
		}
	}
	return out
}

func (s *Store) rebuildIndexLocked() {
	idx := make(map[string][]string)
	for id, d := range s.agents {
		for _, cap := range d.Capabilities {
			idx[cap] = append(idx[cap], id)
		}
	}
	for _, ids := range idx {
		sort.Strings(ids)
	}
	s.capabilityIndex = idx
}
