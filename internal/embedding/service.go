package embedding

import (
	"context"
	"fmt"
	"strings"

	"github.com/nikhilbhutani/casebrief/internal/llm"
	"github.com/nikhilbhutani/casebrief/pkg/tokenizer"
)

const (
	// batchSize keeps requests under provider input limits.
	batchSize = 100
	// maxInputRunes keeps a single run-on sentence inside the embedding
	// model's context window.
	maxInputRunes = 8000
)

// Service embeds case sentences and questions through the LLM gateway.
// Judgments repeat boilerplate, so identical inputs are embedded once and
// the vector is shared.
type Service struct {
	gateway  llm.Gateway
	provider string
	model    string
}

func NewService(gw llm.Gateway, provider, model string) *Service {
	return &Service{gateway: gw, provider: provider, model: model}
}

// Embed returns one vector per input, in input order.
func (s *Service) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	unique := make([]string, 0, len(texts))
	slot := make([]int, len(texts))
	seen := make(map[string]int, len(texts))
	for i, t := range texts {
		t = normalizeInput(t)
		j, ok := seen[t]
		if !ok {
			j = len(unique)
			seen[t] = j
			unique = append(unique, t)
		}
		slot[i] = j
	}

	vectors := make([][]float32, 0, len(unique))
	for i := 0; i < len(unique); i += batchSize {
		end := min(i+batchSize, len(unique))

		resp, err := s.gateway.Embed(ctx, llm.EmbeddingRequest{
			Provider: s.provider,
			Model:    s.model,
			Input:    unique[i:end],
		})
		if err != nil {
			return nil, fmt.Errorf("embed batch %d: %w", i/batchSize, err)
		}
		if len(resp.Embeddings) != end-i {
			return nil, fmt.Errorf("embed batch %d: got %d vectors for %d inputs", i/batchSize, len(resp.Embeddings), end-i)
		}
		vectors = append(vectors, resp.Embeddings...)
	}

	out := make([][]float32, len(texts))
	for i, j := range slot {
		out[i] = vectors[j]
	}
	return out, nil
}

// normalizeInput collapses whitespace and caps length. Providers reject
// empty strings, so a blank input becomes a single space.
func normalizeInput(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return " "
	}
	return tokenizer.TruncateRunes(s, maxInputRunes)
}
