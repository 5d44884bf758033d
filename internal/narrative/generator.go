package narrative

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/verte-zerg/testlens/internal/llm"
)

// ErrNoData is returned when there is nothing to give feedback on.
var ErrNoData = errors.New("no question data to give feedback on")

// Generator produces feedback text for one record.
type Generator interface {
	Generate(ctx context.Context, in Input) (string, error)
}

// LLMGenerator asks an LLM provider for the feedback.
type LLMGenerator struct {
	Provider    llm.Provider
	Temperature float64
	MaxTokens   int
}

// NewLLMGenerator returns a generator with the default sampling settings.
func NewLLMGenerator(p llm.Provider) *LLMGenerator {
	return &LLMGenerator{Provider: p, Temperature: 0.6, MaxTokens: 2048}
}

// Generate builds the briefing and prompt and returns the model's text.
func (g *LLMGenerator) Generate(ctx context.Context, in Input) (string, error) {
	if in.Summary.Empty() {
		return "", ErrNoData
	}
	system, user := BuildPrompt(BuildBriefing(in), in.StudentName())
	resp, err := g.Provider.Generate(ctx, llm.Request{
		System:      system,
		Prompt:      user,
		Temperature: g.Temperature,
		MaxTokens:   g.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("generate feedback: %w", err)
	}
	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", fmt.Errorf("generate feedback: %w", &llm.ErrEmptyResponse{Model: resp.Model})
	}
	return text, nil
}
