// Package matcher implements the Agent Matcher/Scorer (C6): it scores
// every (agent, step) pair, selects the agents a plan will use, and binds
// plan steps to agents as a task decomposition.
package matcher

import (
	"strings"

	"github.com/ashfrnndz21/agentmesh/core"
)

// analyticalMarkers and creativeMarkers classify a step's "type" for the
// cross-penalty/boost rule. This is a coarse, deterministic lexical
// classifier: a step counts as analytical/creative when its description
// contains one of these tokens.
var (
	analyticalMarkers = []string{"analy", "data", "report", "metric", "forecast", "calculat", "statist", "trend"}
	creativeMarkers   = []string{"creative", "write", "story", "poem", "poetry", "design", "imagine", "brainstorm"}
)

func containsAny(haystack string, markers []string) bool {
	lower := strings.ToLower(haystack)
	for _, m := range markers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

func isAnalyticalStep(step core.WorkflowStep) bool {
	return containsAny(step.Description+" "+step.RequiredCapability, analyticalMarkers)
}

func isCreativeStep(step core.WorkflowStep) bool {
	return containsAny(step.Description+" "+step.RequiredCapability, creativeMarkers)
}

func isCreativeAgent(agent core.AgentDescriptor) bool {
	return containsAny(agent.Specialization+" "+agent.Domain, creativeMarkers)
}

func isAnalyticalAgent(agent core.AgentDescriptor) bool {
	return containsAny(agent.Specialization+" "+agent.Domain, analyticalMarkers)
}

// canonicalToken reduces a capability name like "weather_forecasting" to
// its most distinguishing token for the "strong specialization" check.
func canonicalToken(capability string) string {
	token := strings.ToLower(capability)
	token = strings.ReplaceAll(token, "_", " ")
	fields := strings.Fields(token)
	if len(fields) == 0 {
		return token
	}
	return fields[0]
}

// Score computes the relevance score in [0,1] for binding agent to step,
// per the component design's additive-then-clamped formula.
func Score(agent core.AgentDescriptor, step core.WorkflowStep) float64 {
	s := 0.5

	canon := canonicalToken(step.RequiredCapability)
	if canon != "" {
		nameAndDomain := strings.ToLower(agent.Name + " " + agent.Domain)
		if strings.Contains(nameAndDomain, canon) {
			s += 0.95
		}
	}

	stepText := strings.ToLower(step.Description + " " + step.RequiredCapability)
	for _, cap := range agent.Capabilities {
		token := canonicalToken(cap)
		if token != "" && strings.Contains(stepText, token) {
			s += 0.4
		}
	}

	keywordMatches := 0
	for _, kw := range agent.Keywords {
		if kw != "" && strings.Contains(stepText, strings.ToLower(kw)) {
			keywordMatches++
		}
	}
	s += 0.2 * float64(keywordMatches)

	if agent.Domain != "" && strings.Contains(stepText, strings.ToLower(agent.Domain)) {
		s += 0.3
	}
	if agent.Specialization != "" && strings.Contains(stepText, strings.ToLower(agent.Specialization)) {
		s += 0.4
	}

	analytical := isAnalyticalStep(step)
	creative := isCreativeStep(step)
	switch {
	case analytical && isCreativeAgent(agent):
		s *= 0.7
	case creative && isAnalyticalAgent(agent):
		s *= 0.8
	case analytical && isAnalyticalAgent(agent), creative && isCreativeAgent(agent):
		s *= 1.2
	}

	if s < 0 {
		s = 0
	}
	if s > 1 {
		s = 1
	}
	return s
}

// ScoreTable computes Score for every (agent, step) pair, keyed
// "stepID|agentID".
func ScoreTable(agents []core.AgentDescriptor, steps []core.WorkflowStep) map[string]float64 {
	table := make(map[string]float64, len(agents)*len(steps))
	for _, step := range steps {
		for _, agent := range agents {
			table[key(step.StepID, agent.AgentID)] = Score(agent, step)
		}
	}
	return table
}

func key(stepID, agentID string) string {
	return stepID + "|" + agentID
}
