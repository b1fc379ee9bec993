package core

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds runtime configuration for the orchestration engine. It
// follows a three-layer priority, lowest to highest:
//  1. Defaults (DefaultConfig)
//  2. Environment variables (LoadFromEnv)
//  3. Functional options passed to NewConfig
type Config struct {
	// OrchestratorModel is an opaque identifier for the reasoning LLM used
	// for planning, scoring context and synthesis.
	OrchestratorModel string `json:"orchestrator_model" env:"ORCH_MODEL" default:"default"`

	// MultiAgentKeywords are connective markers that, when present in a
	// query alongside a single_agent plan, force promotion to multi_agent.
	MultiAgentKeywords []string `json:"multi_agent_keywords" env:"ORCH_MULTI_AGENT_KEYWORDS"`

	// TechnicalKeywords and CreativeKeywords are the two disjoint keyword
	// sets the query planner uses to detect a technical+creative query,
	// which also forces single_agent -> multi_agent promotion.
	TechnicalKeywords []string `json:"technical_keywords" env:"ORCH_TECHNICAL_KEYWORDS"`
	CreativeKeywords  []string `json:"creative_keywords" env:"ORCH_CREATIVE_KEYWORDS"`

	// MinAgentScoreThreshold is the minimum matcher score required before
	// an agent is considered eligible for a step.
	MinAgentScoreThreshold float64 `json:"min_agent_score_threshold" env:"ORCH_MIN_AGENT_SCORE" default:"0.3"`

	// MaxConcurrency bounds the number of agents in flight within a single
	// session (parallel/hybrid waves).
	MaxConcurrency int `json:"max_concurrency" env:"ORCH_MAX_CONCURRENCY" default:"5"`

	// MaxInFlightAgents bounds the number of agent invocations in flight
	// across the whole process.
	MaxInFlightAgents int `json:"max_in_flight_agents" env:"ORCH_MAX_INFLIGHT_AGENTS" default:"64"`

	// AgentExecutionTimeout is the hard per-agent invocation deadline.
	AgentExecutionTimeout time.Duration `json:"agent_execution_timeout" env:"ORCH_AGENT_TIMEOUT" default:"120s"`

	// ReasoningLLMTimeouts, one per use (planning/refinement/synthesis).
	PlanningTimeout    time.Duration `json:"planning_timeout" env:"ORCH_PLANNING_TIMEOUT" default:"60s"`
	RefinementTimeout  time.Duration `json:"refinement_timeout" env:"ORCH_REFINEMENT_TIMEOUT" default:"30s"`
	SynthesisTimeout   time.Duration `json:"synthesis_timeout" env:"ORCH_SYNTHESIS_TIMEOUT" default:"60s"`

	// CapabilityDependencies maps a capability to the capabilities it
	// depends on; used by the dependency graph builder (C7).
	CapabilityDependencies map[string][]string `json:"capability_dependencies"`

	// SynthesizeOnPartial controls whether the synthesizer still produces
	// an answer when a session was cancelled but at least one agent
	// completed.
	SynthesizeOnPartial bool `json:"synthesize_on_partial" env:"ORCH_SYNTHESIZE_ON_PARTIAL" default:"true"`

	// RedisAddr, when set, enables a Redis-backed trace/debug Sink instead
	// of the NoOp default.
	RedisAddr string `json:"redis_addr" env:"ORCH_REDIS_ADDR"`

	// HTTPPort is the port the orchestration HTTP server binds to.
	HTTPPort int `json:"http_port" env:"ORCH_HTTP_PORT" default:"8080"`

	// ServiceName identifies this process to the OpenTelemetry pipeline.
	ServiceName string `json:"service_name" env:"ORCH_SERVICE_NAME" default:"agentmesh-orchestrator"`

	// OTelEndpoint is the OTLP/HTTP collector endpoint used for trace and
	// metric export.
	OTelEndpoint string `json:"otel_endpoint" env:"ORCH_OTEL_ENDPOINT" default:"localhost:4318"`

	logger Logger
}

// Option mutates a Config during NewConfig; applied after env loading so
// options take highest priority.
type Option func(*Config) error

// DefaultConfig returns a Config populated with built-in defaults only.
func DefaultConfig() *Config {
	return &Config{
		OrchestratorModel:      "default",
		MultiAgentKeywords:     []string{"and then", "then use that to", "then create", "then write", "and create", "and write", "and generate"},
		TechnicalKeywords:      []string{"analyze", "calculate", "data", "code", "algorithm", "query", "statistics", "forecast", "metrics"},
		CreativeKeywords:       []string{"poem", "story", "write", "creative", "design", "imagine", "draw", "compose"},
		MinAgentScoreThreshold: 0.3,
		MaxConcurrency:         5,
		MaxInFlightAgents:      64,
		AgentExecutionTimeout:  120 * time.Second,
		PlanningTimeout:        60 * time.Second,
		RefinementTimeout:      30 * time.Second,
		SynthesisTimeout:       60 * time.Second,
		CapabilityDependencies: map[string][]string{},
		SynthesizeOnPartial:    true,
		HTTPPort:               8080,
		ServiceName:            "agentmesh-orchestrator",
		OTelEndpoint:           "localhost:4318",
	}
}

// LoadFromEnv overlays environment variables onto the config, leaving
// unset fields untouched.
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv("ORCH_MODEL"); v != "" {
		c.OrchestratorModel = v
	}
	if v := os.Getenv("ORCH_MULTI_AGENT_KEYWORDS"); v != "" {
		c.MultiAgentKeywords = splitCSV(v)
	}
	if v := os.Getenv("ORCH_TECHNICAL_KEYWORDS"); v != "" {
		c.TechnicalKeywords = splitCSV(v)
	}
	if v := os.Getenv("ORCH_CREATIVE_KEYWORDS"); v != "" {
		c.CreativeKeywords = splitCSV(v)
	}
	if v := os.Getenv("ORCH_MIN_AGENT_SCORE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("ORCH_MIN_AGENT_SCORE: %w", err)
		}
		c.MinAgentScoreThreshold = f
	}
	if v := os.Getenv("ORCH_MAX_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("ORCH_MAX_CONCURRENCY: %w", err)
		}
		c.MaxConcurrency = n
	}
	if v := os.Getenv("ORCH_MAX_INFLIGHT_AGENTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("ORCH_MAX_INFLIGHT_AGENTS: %w", err)
		}
		c.MaxInFlightAgents = n
	}
	if v := os.Getenv("ORCH_AGENT_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("ORCH_AGENT_TIMEOUT: %w", err)
		}
		c.AgentExecutionTimeout = d
	}
	if v := os.Getenv("ORCH_PLANNING_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("ORCH_PLANNING_TIMEOUT: %w", err)
		}
		c.PlanningTimeout = d
	}
	if v := os.Getenv("ORCH_REFINEMENT_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("ORCH_REFINEMENT_TIMEOUT: %w", err)
		}
		c.RefinementTimeout = d
	}
	if v := os.Getenv("ORCH_SYNTHESIS_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("ORCH_SYNTHESIS_TIMEOUT: %w", err)
		}
		c.SynthesisTimeout = d
	}
	if v := os.Getenv("ORCH_SYNTHESIZE_ON_PARTIAL"); v != "" {
		c.SynthesizeOnPartial = v == "true" || v == "1"
	}
	if v := os.Getenv("ORCH_REDIS_ADDR"); v != "" {
		c.RedisAddr = v
	}
	if v := os.Getenv("ORCH_HTTP_PORT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("ORCH_HTTP_PORT: %w", err)
		}
		c.HTTPPort = n
	}
	if v := os.Getenv("ORCH_SERVICE_NAME"); v != "" {
		c.ServiceName = v
	}
	if v := os.Getenv("ORCH_OTEL_ENDPOINT"); v != "" {
		c.OTelEndpoint = v
	}
	return nil
}

// Validate checks invariants that must hold before the config is used to
// construct the orchestrator.
func (c *Config) Validate() error {
	if c.MinAgentScoreThreshold < 0 || c.MinAgentScoreThreshold > 1 {
		return fmt.Errorf("%w: min_agent_score_threshold must be in [0,1]", ErrInvalidConfiguration)
	}
	if c.MaxConcurrency <= 0 {
		return fmt.Errorf("%w: max_concurrency must be positive", ErrInvalidConfiguration)
	}
	if c.MaxInFlightAgents <= 0 {
		return fmt.Errorf("%w: max_in_flight_agents must be positive", ErrInvalidConfiguration)
	}
	if c.AgentExecutionTimeout <= 0 {
		return fmt.Errorf("%w: agent_execution_timeout must be positive", ErrInvalidConfiguration)
	}
	return nil
}

// NewConfig builds a Config by layering defaults, environment, then opts.
func NewConfig(opts ...Option) (*Config, error) {
	cfg := DefaultConfig()
	if err := cfg.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("loading env config: %w", err)
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("applying option: %w", err)
		}
	}
	if cfg.logger == nil {
		cfg.logger = NoOpLogger{}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// WithLogger sets the logger used for configuration diagnostics.
func WithLogger(logger Logger) Option {
	return func(c *Config) error {
		c.logger = logger
		return nil
	}
}

// WithOrchestratorModel overrides the reasoning LLM identifier.
func WithOrchestratorModel(model string) Option {
	return func(c *Config) error {
		c.OrchestratorModel = model
		return nil
	}
}

// WithMaxConcurrency overrides the per-session concurrency bound.
func WithMaxConcurrency(n int) Option {
	return func(c *Config) error {
		if n <= 0 {
			return fmt.Errorf("%w: max concurrency must be positive", ErrInvalidConfiguration)
		}
		c.MaxConcurrency = n
		return nil
	}
}

// WithCapabilityDependencies sets the capability dependency table consumed
// by the dependency graph builder.
func WithCapabilityDependencies(deps map[string][]string) Option {
	return func(c *Config) error {
		c.CapabilityDependencies = deps
		return nil
	}
}

// WithRedisAddr enables a Redis-backed trace sink at the given address.
func WithRedisAddr(addr string) Option {
	return func(c *Config) error {
		c.RedisAddr = addr
		return nil
	}
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
