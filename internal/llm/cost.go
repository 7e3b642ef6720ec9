package llm

import (
	"strings"
	"sync"
)

// costPerToken stores USD pricing per 1K tokens: [input, output].
var costPerToken = map[string][2]float64{
	"gpt-4o":                 {0.0025, 0.01},
	"gpt-4o-mini":            {0.00015, 0.0006},
	"gpt-4.1-mini":           {0.0004, 0.0016},
	"text-embedding-3-small": {0.00002, 0},
	"text-embedding-3-large": {0.00013, 0},

	"claude-3-haiku":   {0.00025, 0.00125},
	"claude-3-5-haiku": {0.0008, 0.004},
	"claude-sonnet-4":  {0.003, 0.015},
}

// CalculateCost prices a call by the longest known model prefix, so dated
// snapshots such as gpt-4o-mini-2024-07-18 resolve to their family. Unknown
// and local models cost 0.
func CalculateCost(model string, inputTokens, outputTokens int) float64 {
	var prices [2]float64
	best := -1
	for name, p := range costPerToken {
		if strings.HasPrefix(model, name) && len(name) > best {
			prices, best = p, len(name)
		}
	}
	if best < 0 {
		return 0
	}
	return float64(inputTokens)/1000.0*prices[0] + float64(outputTokens)/1000.0*prices[1]
}

// Usage is what one provider consumed since the process started.
type Usage struct {
	Calls        int     `json:"calls"`
	Failures     int     `json:"failures"`
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	EmbedTokens  int     `json:"embedding_tokens"`
	CostUSD      float64 `json:"cost_usd"`
}

type usageMeter struct {
	mu         sync.Mutex
	byProvider map[string]*Usage
}

func newUsageMeter() *usageMeter {
	return &usageMeter{byProvider: make(map[string]*Usage)}
}

func (m *usageMeter) entry(provider string) *Usage {
	u, ok := m.byProvider[provider]
	if !ok {
		u = &Usage{}
		m.byProvider[provider] = u
	}
	return u
}

func (m *usageMeter) recordChat(provider string, resp *ChatResponse, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.entry(provider)
	u.Calls++
	if err != nil || resp == nil {
		u.Failures++
		return
	}
	u.InputTokens += resp.InputTokens
	u.OutputTokens += resp.OutputTokens
	u.CostUSD += resp.CostUSD
}

func (m *usageMeter) recordEmbed(provider string, resp *EmbeddingResponse, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.entry(provider)
	u.Calls++
	if err != nil || resp == nil {
		u.Failures++
		return
	}
	u.EmbedTokens += resp.Tokens
	u.CostUSD += resp.CostUSD
}

func (m *usageMeter) snapshot() map[string]Usage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]Usage, len(m.byProvider))
	for name, u := range m.byProvider {
		out[name] = *u
	}
	return out
}
