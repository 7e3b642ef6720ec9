package queue

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/nikhilbhutani/casebrief/internal/cache"
	"github.com/nikhilbhutani/casebrief/internal/models"
)

var ErrJobNotFound = errors.New("job not found")

// Tracker records job status in Redis so the API can report progress.
type Tracker struct {
	cache *cache.Cache
	ttl   time.Duration
}

func NewTracker(c *cache.Cache, ttl time.Duration) *Tracker {
	return &Tracker{cache: c, ttl: ttl}
}

func jobKey(id uuid.UUID) string {
	return "job:" + id.String()
}

func (t *Tracker) Set(ctx context.Context, id uuid.UUID, status, errMsg string) error {
	return t.cache.Set(ctx, jobKey(id), models.Job{
		ID:        id,
		Status:    status,
		Error:     errMsg,
		UpdatedAt: time.Now().UTC(),
	}, t.ttl)
}

func (t *Tracker) Get(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	var job models.Job
	if err := t.cache.Get(ctx, jobKey(id), &job); err != nil {
		if errors.Is(err, cache.ErrMiss) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}
	return &job, nil
}
