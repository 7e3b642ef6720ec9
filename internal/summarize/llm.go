package summarize

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nikhilbhutani/casebrief/internal/llm"
)

const legalSummaryPrompt = `You summarize legal case documents.
Write a faithful, neutral summary of the text you are given. Keep parties, court,
procedural posture, holdings and reasoning. Do not invent facts, citations or outcomes.
Reply with the summary text only, no headings or preamble.`

// LLMSummarizer produces abstractive summaries through the LLM gateway.
type LLMSummarizer struct {
	gateway  llm.Gateway
	provider string
	model    string
}

func NewLLMSummarizer(gw llm.Gateway, provider, model string) *LLMSummarizer {
	return &LLMSummarizer{gateway: gw, provider: provider, model: model}
}

func (s *LLMSummarizer) Summarize(ctx context.Context, text string, length Length) (string, error) {
	length = length.Normalize()

	resp, err := s.gateway.Chat(ctx, llm.ChatRequest{
		Provider: s.provider,
		Model:    s.model,
		Messages: []llm.Message{
			llm.SystemMessage(legalSummaryPrompt),
			llm.UserMessage(fmt.Sprintf("Summarize the following in %d to %d tokens.\n\n%s",
				length.Min, length.Max, text)),
		},
		MaxTokens:     length.Max,
		Deterministic: true,
	})
	if err != nil {
		return "", fmt.Errorf("llm summarize: %w", err)
	}

	slog.Debug("summary generated",
		"provider", resp.Provider,
		"model", resp.Model,
		"tokens", resp.Tokens(),
		"cost_usd", resp.CostUSD,
		"latency_ms", resp.LatencyMs,
	)

	out := strings.TrimSpace(resp.Content)
	if out == "" {
		return "", ErrEmptySummary
	}
	return out, nil
}
