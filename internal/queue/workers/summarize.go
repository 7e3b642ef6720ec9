package workers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/nikhilbhutani/casebrief/internal/auth"
	"github.com/nikhilbhutani/casebrief/internal/brief"
	"github.com/nikhilbhutani/casebrief/internal/models"
	"github.com/nikhilbhutani/casebrief/internal/queue"
	"github.com/nikhilbhutani/casebrief/internal/summarize"
)

type Analyzer interface {
	Analyze(ctx context.Context, req brief.Request) (*models.Brief, *summarize.Result, error)
}

type SummarizeWorker struct {
	briefs  Analyzer
	tracker *queue.Tracker
}

func NewSummarizeWorker(briefs Analyzer, tracker *queue.Tracker) *SummarizeWorker {
	return &SummarizeWorker{briefs: briefs, tracker: tracker}
}

func (w *SummarizeWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload queue.CaseSummarizePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w: %w", err, asynq.SkipRetry)
	}

	jobID, err := uuid.Parse(payload.JobID)
	if err != nil {
		return fmt.Errorf("parse job ID: %w: %w", err, asynq.SkipRetry)
	}

	slog.Info("summarizing case", "job_id", jobID)
	w.setStatus(ctx, jobID, models.JobStatusProcessing, "")

	b, _, err := w.briefs.Analyze(ctx, brief.Request{
		ID:         jobID,
		Title:      payload.Title,
		SourceType: payload.SourceType,
		Text:       payload.Text,
		Question:   payload.Question,
		Tier:       auth.Tier(payload.Tier),
		Highlight:  payload.Highlight,
	})
	if err != nil {
		if errors.Is(err, brief.ErrNoText) || lastAttempt(ctx) {
			w.setStatus(ctx, jobID, models.JobStatusFailed, err.Error())
		} else {
			w.setStatus(ctx, jobID, models.JobStatusPending, err.Error())
		}
		if errors.Is(err, brief.ErrNoText) {
			return fmt.Errorf("analyze case: %w: %w", err, asynq.SkipRetry)
		}
		return fmt.Errorf("analyze case: %w", err)
	}

	w.setStatus(ctx, jobID, models.JobStatusDone, "")
	slog.Info("case summarized", "job_id", jobID, "degraded", b.Degraded, "chunks", b.Chunks)
	return nil
}

func (w *SummarizeWorker) setStatus(ctx context.Context, id uuid.UUID, status, msg string) {
	if w.tracker == nil {
		return
	}
	if err := w.tracker.Set(ctx, id, status, msg); err != nil {
		slog.Error("failed to update job status", "job_id", id, "status", status, "error", err)
	}
}

// lastAttempt reports whether asynq will not retry a failure of this run.
func lastAttempt(ctx context.Context) bool {
	retried, ok := asynq.GetRetryCount(ctx)
	if !ok {
		return true
	}
	maxRetry, ok := asynq.GetMaxRetry(ctx)
	if !ok {
		return true
	}
	return retried >= maxRetry
}
