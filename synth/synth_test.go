package synth

import (
	"context"
	"errors"
	"testing"

	"github.com/ashfrnndz21/agentmesh/core"
	"github.com/stretchr/testify/assert"
)

type stubLLM struct {
	out string
	err error
}

func (s stubLLM) Complete(ctx context.Context, prompt string, opts core.CompletionOptions) (string, error) {
	return s.out, s.err
}

func basicInput() Input {
	return Input{
		Plan:       core.Plan{Query: "what's the weather in paris and write a poem about it"},
		AgentNames: []string{"WeatherAgent", "PoetAgent"},
		Cleaned: map[string]string{
			"WeatherAgent": "18C and cloudy in Paris.",
			"PoetAgent":    "Grey skies drape the Seine in silver light.",
		},
	}
}

func TestSynthesizeUsesLLMOutputWhenNonEmpty(t *testing.T) {
	in := basicInput()
	llm := stubLLM{out: "Executive Summary: It's cool and cloudy in Paris; a poem was written to match."}

	got := Synthesize(context.Background(), in, llm, core.CompletionOptions{}, nil)
	assert.Contains(t, got, "Executive Summary")
}

func TestSynthesizeFallsBackOnLLMError(t *testing.T) {
	in := basicInput()
	llm := stubLLM{err: errors.New("boom")}

	got := Synthesize(context.Background(), in, llm, core.CompletionOptions{}, nil)
	assert.Contains(t, got, "WeatherAgent: 18C and cloudy in Paris.")
	assert.Contains(t, got, "PoetAgent: Grey skies drape the Seine in silver light.")
}

func TestSynthesizeFallsBackOnEmptyLLMOutput(t *testing.T) {
	in := basicInput()
	llm := stubLLM{out: "   "}

	got := Synthesize(context.Background(), in, llm, core.CompletionOptions{}, nil)
	assert.Contains(t, got, "WeatherAgent:")
}

func TestSynthesizeWithNilLLMUsesConcatenation(t *testing.T) {
	in := basicInput()

	got := Synthesize(context.Background(), in, nil, core.CompletionOptions{}, nil)
	assert.Contains(t, got, "WeatherAgent: 18C and cloudy in Paris.")
}

func TestSynthesizeConcatenationSkipsEmptyAgents(t *testing.T) {
	in := Input{
		AgentNames: []string{"A", "B"},
		Cleaned: map[string]string{
			"A": "",
			"B": "result",
		},
	}

	got := synthesizeConcatenation(in)
	assert.NotContains(t, got, "A:")
	assert.Contains(t, got, "B: result")
}

func TestSynthesizeConcatenationAllEmptyReportsNoOutput(t *testing.T) {
	in := Input{AgentNames: []string{"A"}, Cleaned: map[string]string{"A": ""}}

	got := synthesizeConcatenation(in)
	assert.Equal(t, "No agent produced usable output for this request.", got)
}

func TestBuildSynthesisPromptIncludesReflectionRecommendations(t *testing.T) {
	in := basicInput()
	in.Reflections = []ReflectionNote{
		{AgentName: "WeatherAgent", Recommendations: []string{"output is unusually short"}},
	}

	prompt := buildSynthesisPrompt(in)
	assert.Contains(t, prompt, "Quality Notes")
	assert.Contains(t, prompt, "output is unusually short")
}
