package queue

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilbhutani/casebrief/internal/cache"
	"github.com/nikhilbhutani/casebrief/internal/models"
)

func newTracker(t *testing.T) (*Tracker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := cache.NewCache(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "casebrief:")
	return NewTracker(c, time.Hour), mr
}

func TestTrackerLifecycle(t *testing.T) {
	tr, mr := newTracker(t)
	ctx := context.Background()
	id := uuid.New()

	_, err := tr.Get(ctx, id)
	assert.ErrorIs(t, err, ErrJobNotFound)

	require.NoError(t, tr.Set(ctx, id, models.JobStatusPending, ""))
	job, err := tr.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusPending, job.Status)
	assert.Equal(t, id, job.ID)

	require.NoError(t, tr.Set(ctx, id, models.JobStatusFailed, "boom"))
	job, err = tr.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusFailed, job.Status)
	assert.Equal(t, "boom", job.Error)

	assert.True(t, mr.Exists("casebrief:job:"+id.String()))
	mr.FastForward(2 * time.Hour)
	_, err = tr.Get(ctx, id)
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestNewTask(t *testing.T) {
	task, err := NewTask(TypeCaseSummarize, CaseSummarizePayload{JobID: "abc", Text: "body", Tier: "free"})
	require.NoError(t, err)

	assert.Equal(t, "case:summarize", task.Type())
	var got CaseSummarizePayload
	require.NoError(t, json.Unmarshal(task.Payload(), &got))
	assert.Equal(t, "abc", got.JobID)
	assert.Equal(t, "body", got.Text)
}
