package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/nikhilbhutani/casebrief/internal/auth"
	"github.com/nikhilbhutani/casebrief/internal/brief"
	"github.com/nikhilbhutani/casebrief/internal/summarize"
)

type SummarizeHandler struct {
	briefs *brief.Service
}

func NewSummarizeHandler(briefs *brief.Service) *SummarizeHandler {
	return &SummarizeHandler{briefs: briefs}
}

type summarizeRequest struct {
	Text   string `json:"text"`
	MaxLen int    `json:"max_len"`
	MinLen int    `json:"min_len"`
}

// Summarize runs the chunked pipeline on raw text. Lengths above the
// caller's tier are capped.
func (h *SummarizeHandler) Summarize(w http.ResponseWriter, r *http.Request) {
	var req summarizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "text required"})
		return
	}

	allowed := h.briefs.Length(auth.TierFromContext(r.Context()))
	length := summarize.Length{Max: req.MaxLen, Min: req.MinLen}
	if length.Max <= 0 || length.Max > allowed.Max {
		length.Max = allowed.Max
	}
	if req.MinLen <= 0 {
		length.Min = allowed.Min
	}

	writeJSON(w, http.StatusOK, h.briefs.Summarize(r.Context(), req.Text, length))
}
