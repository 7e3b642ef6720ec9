package handlers

import (
	"net/http"

	"github.com/nikhilbhutani/casebrief/internal/llm"
)

// ModelsHandler reports which summarization backends are configured and
// what they have consumed.
type ModelsHandler struct {
	gateway      llm.Gateway
	breakerState func() string
}

func NewModelsHandler(gw llm.Gateway, breakerState func() string) *ModelsHandler {
	return &ModelsHandler{gateway: gw, breakerState: breakerState}
}

type modelsResponse struct {
	Models  []llm.ModelInfo      `json:"models"`
	Usage   map[string]llm.Usage `json:"usage"`
	Breaker string               `json:"breaker,omitempty"`
}

func (h *ModelsHandler) Models(w http.ResponseWriter, r *http.Request) {
	resp := modelsResponse{
		Models: []llm.ModelInfo{},
		Usage:  map[string]llm.Usage{},
	}
	if h.gateway != nil {
		if models := h.gateway.ListModels(); len(models) > 0 {
			resp.Models = models
		}
		resp.Usage = h.gateway.Usage()
	}
	if h.breakerState != nil {
		resp.Breaker = h.breakerState()
	}
	writeJSON(w, http.StatusOK, resp)
}
