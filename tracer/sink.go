package tracer

import "github.com/ashfrnndz21/agentmesh/core"

// Sink lets a completed trace be exported to an external store. Its
// absence is valid — Tracer works fully in-memory with a NoOpSink.
type Sink interface {
	Export(trace core.ConversationTrace) error
}

// NoOpSink discards every trace; it is the default when no sink is
// configured.
type NoOpSink struct{}

// Export implements Sink.
func (NoOpSink) Export(core.ConversationTrace) error { return nil }
