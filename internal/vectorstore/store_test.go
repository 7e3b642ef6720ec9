package vectorstore

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, Cosine([]float32{1, 2}, []float32{2, 4}), 1e-9)
	assert.InDelta(t, 0.0, Cosine([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.Zero(t, Cosine([]float32{0, 0}, []float32{1, 1}))
	assert.Zero(t, Cosine([]float32{1}, []float32{1, 1}))
}

func TestRank(t *testing.T) {
	sents := []Sentence{
		{Index: 0, Text: "a", Embedding: []float32{0, 1}},
		{Index: 1, Text: "b", Embedding: []float32{1, 0}},
		{Index: 2, Text: "c", Embedding: []float32{1, 1}},
	}

	got := Rank([]float32{1, 0}, sents, 2)

	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].Text)
	assert.Equal(t, "c", got[1].Text)
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	id := uuid.New()

	require.NoError(t, store.Upsert(ctx, id, []Sentence{
		{Index: 0, Text: "x", Embedding: []float32{1, 0}},
		{Index: 1, Text: "y", Embedding: []float32{0, 1}},
	}))

	got, err := store.Search(ctx, id, []float32{0, 1}, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "y", got[0].Text)

	other, err := store.Search(ctx, uuid.New(), []float32{0, 1}, 1)
	require.NoError(t, err)
	assert.Empty(t, other)

	require.NoError(t, store.Delete(ctx, id))
	got, _ = store.Search(ctx, id, []float32{0, 1}, 1)
	assert.Empty(t, got)
}
