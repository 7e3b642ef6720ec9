package queue

import (
	"context"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryRoutesByType(t *testing.T) {
	var seen []string
	reg := NewHandlersRegistry()
	reg.Register(TypeCaseSummarize, asynq.HandlerFunc(func(_ context.Context, t *asynq.Task) error {
		seen = append(seen, string(t.Payload()))
		return nil
	}))
	reg.Register("case:reindex", asynq.HandlerFunc(func(context.Context, *asynq.Task) error {
		return errors.New("boom")
	}))

	require.NoError(t, reg.Mux().ProcessTask(context.Background(), asynq.NewTask(TypeCaseSummarize, []byte("p1"))))
	assert.Equal(t, []string{"p1"}, seen)

	err := reg.Mux().ProcessTask(context.Background(), asynq.NewTask("case:reindex", nil))
	assert.EqualError(t, err, "boom")

	assert.Equal(t, []string{"case:reindex", TypeCaseSummarize}, reg.Types())
}

func TestRegistryUnknownType(t *testing.T) {
	reg := NewHandlersRegistry()
	err := reg.Mux().ProcessTask(context.Background(), asynq.NewTask("nope", nil))
	assert.Error(t, err)
}
