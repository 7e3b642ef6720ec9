package workers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilbhutani/casebrief/internal/brief"
	"github.com/nikhilbhutani/casebrief/internal/cache"
	"github.com/nikhilbhutani/casebrief/internal/models"
	"github.com/nikhilbhutani/casebrief/internal/queue"
	"github.com/nikhilbhutani/casebrief/internal/summarize"
)

type fakeAnalyzer struct {
	got brief.Request
	err error
}

func (f *fakeAnalyzer) Analyze(_ context.Context, req brief.Request) (*models.Brief, *summarize.Result, error) {
	f.got = req
	if f.err != nil {
		return nil, nil, f.err
	}
	return &models.Brief{ID: req.ID, Summary: "ok"}, &summarize.Result{Summary: "ok"}, nil
}

func setup(t *testing.T, a Analyzer) (*SummarizeWorker, *queue.Tracker) {
	t.Helper()
	mr := miniredis.RunT(t)
	tr := queue.NewTracker(cache.NewCache(redis.NewClient(&redis.Options{Addr: mr.Addr()}), ""), time.Hour)
	return NewSummarizeWorker(a, tr), tr
}

func task(t *testing.T, p queue.CaseSummarizePayload) *asynq.Task {
	t.Helper()
	tk, err := queue.NewTask(queue.TypeCaseSummarize, p)
	require.NoError(t, err)
	return tk
}

func TestSummarizeWorkerDone(t *testing.T) {
	a := &fakeAnalyzer{}
	w, tr := setup(t, a)
	id := uuid.New()

	err := w.ProcessTask(context.Background(), task(t, queue.CaseSummarizePayload{
		JobID: id.String(), Text: "case text", Tier: "premium", Question: "why?",
	}))
	require.NoError(t, err)

	assert.Equal(t, id, a.got.ID)
	assert.Equal(t, "premium", string(a.got.Tier))
	assert.Equal(t, "why?", a.got.Question)

	job, err := tr.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusDone, job.Status)
}

func TestSummarizeWorkerNoTextSkipsRetry(t *testing.T) {
	w, tr := setup(t, &fakeAnalyzer{err: brief.ErrNoText})
	id := uuid.New()

	err := w.ProcessTask(context.Background(), task(t, queue.CaseSummarizePayload{JobID: id.String()}))
	require.Error(t, err)
	assert.ErrorIs(t, err, asynq.SkipRetry)

	job, err := tr.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusFailed, job.Status)
}

func TestSummarizeWorkerStorageFailure(t *testing.T) {
	w, tr := setup(t, &fakeAnalyzer{err: errors.New("db down")})
	id := uuid.New()

	err := w.ProcessTask(context.Background(), task(t, queue.CaseSummarizePayload{JobID: id.String(), Text: "x"}))
	require.Error(t, err)
	assert.NotErrorIs(t, err, asynq.SkipRetry)

	job, err := tr.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusFailed, job.Status, "no retry metadata means this was the last attempt")
	assert.Equal(t, "db down", job.Error)
}

func TestSummarizeWorkerBadPayload(t *testing.T) {
	w, _ := setup(t, &fakeAnalyzer{})

	err := w.ProcessTask(context.Background(), asynq.NewTask(queue.TypeCaseSummarize, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)

	err = w.ProcessTask(context.Background(), task(t, queue.CaseSummarizePayload{JobID: "not-a-uuid"}))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}
