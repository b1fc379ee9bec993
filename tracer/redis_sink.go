package tracer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ashfrnndz21/agentmesh/core"
	"github.com/go-redis/redis/v8"
)

const (
	redisTraceKeyPrefix = "agentmesh:trace:"
	defaultTraceTTL     = 24 * time.Hour
)

// RedisSink exports completed traces to Redis as JSON, keyed by session
// ID, with a bounded TTL so the key space doesn't grow unbounded.
type RedisSink struct {
	client *redis.Client
	ttl    time.Duration
	logger core.Logger
}

// NewRedisSink builds a RedisSink against addr (host:port). Connection
// errors surface lazily on the first Export call, matching the teacher's
// "safe default, fail at the operation" pattern for optional stores.
func NewRedisSink(addr string, logger core.Logger) *RedisSink {
	if logger == nil {
		logger = core.NoOpLogger{}
	}
	return &RedisSink{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		ttl:    defaultTraceTTL,
		logger: logger,
	}
}

// Export implements Sink.
func (s *RedisSink) Export(trace core.ConversationTrace) error {
	payload, err := json.Marshal(trace)
	if err != nil {
		return fmt.Errorf("marshal trace: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	key := redisTraceKeyPrefix + trace.SessionID
	if err := s.client.Set(ctx, key, payload, s.ttl).Err(); err != nil {
		s.logger.Warn("failed to export trace to redis", map[string]interface{}{"session_id": trace.SessionID, "error": err.Error()})
		return err
	}
	return nil
}
