package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nikhilbhutani/casebrief/internal/auth"
	"github.com/nikhilbhutani/casebrief/internal/brief"
	"github.com/nikhilbhutani/casebrief/internal/document"
	"github.com/nikhilbhutani/casebrief/internal/issues"
	"github.com/nikhilbhutani/casebrief/internal/models"
	"github.com/nikhilbhutani/casebrief/internal/qa"
	"github.com/nikhilbhutani/casebrief/internal/queue"
	"github.com/nikhilbhutani/casebrief/internal/summarize"
)

const maxUploadBytes = 32 << 20

// Enqueuer schedules background case analysis.
type Enqueuer interface {
	EnqueueCaseSummarize(ctx context.Context, payload queue.CaseSummarizePayload) error
}

type CaseHandler struct {
	briefs  *brief.Service
	docs    *document.Service
	jobs    Enqueuer
	tracker *queue.Tracker
}

// NewCaseHandler builds the case endpoints. jobs and tracker may be nil, in
// which case the async endpoints answer 503.
func NewCaseHandler(briefs *brief.Service, docs *document.Service, jobs Enqueuer, tracker *queue.Tracker) *CaseHandler {
	return &CaseHandler{briefs: briefs, docs: docs, jobs: jobs, tracker: tracker}
}

type caseRequest struct {
	Title      string `json:"title"`
	Text       string `json:"text"`
	Question   string `json:"question"`
	Highlight  bool   `json:"highlight"`
	sourceType string
	form       bool
}

type caseResponse struct {
	*models.Brief
	IssuesText string            `json:"issues_text"`
	Result     *summarize.Result `json:"result,omitempty"`
}

// Create analyzes a case submitted as a multipart form (case_file,
// case_text, question, highlight, title) or as JSON.
func (h *CaseHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, status, err := h.readCase(r)
	if err != nil {
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}

	if strings.TrimSpace(req.Text) == "" {
		if req.form {
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"summary":     brief.NoTextSummary,
				"issues":      []string{},
				"issues_text": "",
				"answer":      "",
			})
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "text required"})
		return
	}

	b, res, err := h.briefs.Analyze(r.Context(), brief.Request{
		Title:      req.Title,
		SourceType: req.sourceType,
		Text:       req.Text,
		Question:   req.Question,
		Tier:       auth.TierFromContext(r.Context()),
		Highlight:  req.Highlight,
	})
	if err != nil {
		slog.Error("analyze case failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to analyze case"})
		return
	}

	writeJSON(w, http.StatusOK, caseResponse{Brief: b, IssuesText: issues.Bullets(b.Issues), Result: res})
}

func (h *CaseHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	briefs, err := h.briefs.List(r.Context(), limit, offset)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if briefs == nil {
		briefs = []models.Brief{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"cases": briefs, "count": len(briefs)})
}

func (h *CaseHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	b, err := h.briefs.Get(r.Context(), id)
	if err != nil {
		writeBriefError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, caseResponse{Brief: b, IssuesText: issues.Bullets(b.Issues)})
}

func (h *CaseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.briefs.Delete(r.Context(), id); err != nil {
		writeBriefError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type askRequest struct {
	Question string `json:"question"`
	TopK     int    `json:"top_k"`
}

func (h *CaseHandler) Ask(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	ans, err := h.briefs.Ask(r.Context(), id, req.Question, req.TopK)
	switch {
	case errors.Is(err, qa.ErrEmptyQuestion):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "question required"})
		return
	case errors.Is(err, brief.ErrNoAnswerer):
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		return
	case err != nil:
		writeBriefError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ans)
}

// Enqueue accepts the same input as Create and analyzes it in the background.
func (h *CaseHandler) Enqueue(w http.ResponseWriter, r *http.Request) {
	if h.jobs == nil || h.tracker == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "job queue not configured"})
		return
	}

	req, status, err := h.readCase(r)
	if err != nil {
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "text required"})
		return
	}

	id := uuid.New()
	if err := h.tracker.Set(r.Context(), id, models.JobStatusPending, ""); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "failed to record job"})
		return
	}

	err = h.jobs.EnqueueCaseSummarize(r.Context(), queue.CaseSummarizePayload{
		JobID:      id.String(),
		Title:      req.Title,
		SourceType: req.sourceType,
		Text:       req.Text,
		Question:   req.Question,
		Tier:       string(auth.TierFromContext(r.Context())),
		Highlight:  req.Highlight,
	})
	if err != nil {
		slog.Error("enqueue case failed", "job_id", id, "error", err)
		h.tracker.Set(r.Context(), id, models.JobStatusFailed, "enqueue failed")
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "failed to enqueue job"})
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"job_id": id.String(), "status": models.JobStatusPending})
}

func (h *CaseHandler) JobStatus(w http.ResponseWriter, r *http.Request) {
	if h.tracker == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "job queue not configured"})
		return
	}
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	job, err := h.tracker.Get(r.Context(), id)
	if errors.Is(err, queue.ErrJobNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "job not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	resp := map[string]interface{}{"job": job}
	if job.Status == models.JobStatusDone {
		if b, err := h.briefs.Get(r.Context(), id); err == nil {
			resp["case"] = caseResponse{Brief: b, IssuesText: issues.Bullets(b.Issues)}
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// readCase decodes a form or JSON submission. Uploaded file text replaces
// case_text when the file yields any.
func (h *CaseHandler) readCase(r *http.Request) (*caseRequest, int, error) {
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "application/json") {
		var req caseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, http.StatusBadRequest, errors.New("invalid request body")
		}
		req.sourceType = "text"
		return &req, 0, nil
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return nil, http.StatusBadRequest, errors.New("invalid multipart form")
	}
	if r.Form == nil {
		if err := r.ParseForm(); err != nil {
			return nil, http.StatusBadRequest, errors.New("invalid form")
		}
	}

	req := &caseRequest{
		Title:      strings.TrimSpace(r.FormValue("title")),
		Text:       strings.TrimSpace(r.FormValue("case_text")),
		Question:   strings.TrimSpace(r.FormValue("question")),
		Highlight:  formBool(r.FormValue("highlight")),
		sourceType: "text",
		form:       true,
	}

	if r.MultipartForm == nil {
		return req, 0, nil
	}
	file, header, err := r.FormFile("case_file")
	if errors.Is(err, http.ErrMissingFile) {
		return req, 0, nil
	}
	if err != nil {
		return nil, http.StatusBadRequest, errors.New("invalid case_file")
	}
	defer file.Close()

	if header.Filename == "" {
		return req, 0, nil
	}

	// An unreadable upload falls back to the pasted case_text, and to the
	// no-text reply when that is empty too.
	doc, err := h.docs.Load(r.Context(), header.Filename, header.Header.Get("Content-Type"), file)
	switch {
	case errors.Is(err, document.ErrTooLarge):
		return nil, http.StatusRequestEntityTooLarge, err
	case err != nil:
		slog.Warn("case file extraction failed, using case_text",
			"file", header.Filename,
			"unsupported", document.IsUnsupported(err),
			"error", err,
		)
		return req, 0, nil
	}

	if doc.Text != "" {
		req.Text = doc.Text
		req.sourceType = doc.Type
	}
	if req.Title == "" {
		req.Title = doc.Title
	}
	return req, 0, nil
}

func formBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid case ID"})
		return uuid.Nil, false
	}
	return id, true
}

func writeBriefError(w http.ResponseWriter, err error) {
	if errors.Is(err, brief.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "case not found"})
		return
	}
	slog.Error("case request failed", "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
}
