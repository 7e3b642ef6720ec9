package queue

const (
	TypeCaseSummarize = "case:summarize"
)

// CaseSummarizePayload carries everything the worker needs, so the job does
// not depend on the API process still holding the upload.
type CaseSummarizePayload struct {
	JobID      string `json:"job_id"`
	Title      string `json:"title,omitempty"`
	SourceType string `json:"source_type,omitempty"`
	Text       string `json:"text"`
	Question   string `json:"question,omitempty"`
	Tier       string `json:"tier"`
	Highlight  bool   `json:"highlight,omitempty"`
}
