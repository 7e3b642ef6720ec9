package qa

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilbhutani/casebrief/internal/vectorstore"
	"github.com/nikhilbhutani/casebrief/pkg/sentence"
)

var vocab = []string{"contract", "damages", "appeal", "judge"}

// bagOfWords embeds text as keyword counts over vocab.
type bagOfWords struct{ err error }

func (b bagOfWords) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if b.err != nil {
		return nil, b.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v := make([]float32, len(vocab))
		lower := strings.ToLower(t)
		for j, w := range vocab {
			v[j] = float32(strings.Count(lower, w))
		}
		out[i] = v
	}
	return out, nil
}

var lineTokenizer = sentence.TokenizerFunc(func(text, _ string) []string {
	var out []string
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
})

const caseText = `The contract was signed in May.
Damages were assessed at ten thousand.
The appeal was heard by a single judge.`

func TestAnswerPicksClosestSentences(t *testing.T) {
	a := NewAnswerer(bagOfWords{}, lineTokenizer, nil, "en")

	ans, err := a.Answer(context.Background(), caseText, "What damages?", 1)
	require.NoError(t, err)

	assert.Equal(t, "Damages were assessed at ten thousand.", ans.Text)
	require.Len(t, ans.Matches, 1)
	assert.Equal(t, 1, ans.Matches[0].Index)
}

func TestAnswerJoinsTopK(t *testing.T) {
	a := NewAnswerer(bagOfWords{}, lineTokenizer, nil, "en")

	ans, err := a.Answer(context.Background(), caseText, "appeal judge contract", 2)
	require.NoError(t, err)

	assert.Equal(t, "The appeal was heard by a single judge.\n\nThe contract was signed in May.", ans.Text)
}

func TestAnswerNoText(t *testing.T) {
	a := NewAnswerer(bagOfWords{}, lineTokenizer, nil, "en")

	ans, err := a.Answer(context.Background(), "   ", "anything", 0)
	require.NoError(t, err)
	assert.Equal(t, NoTextReply, ans.Text)

	_, err = a.Answer(context.Background(), caseText, " ", 0)
	assert.ErrorIs(t, err, ErrEmptyQuestion)
}

func TestAnswerEmbedderError(t *testing.T) {
	boom := errors.New("embedding backend down")
	a := NewAnswerer(bagOfWords{err: boom}, lineTokenizer, nil, "en")

	_, err := a.Answer(context.Background(), caseText, "damages", 1)
	assert.ErrorIs(t, err, boom)
}

func TestIndexAndAnswerCase(t *testing.T) {
	ctx := context.Background()
	store := vectorstore.NewMemoryStore()
	a := NewAnswerer(bagOfWords{}, lineTokenizer, store, "en")
	id := uuid.New()

	n, err := a.Index(ctx, id, caseText)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	ans, err := a.AnswerCase(ctx, id, "who was the judge", 1)
	require.NoError(t, err)
	assert.Equal(t, "The appeal was heard by a single judge.", ans.Text)

	require.NoError(t, a.Forget(ctx, id))
	ans, err = a.AnswerCase(ctx, id, "judge", 1)
	require.NoError(t, err)
	assert.Equal(t, NoTextReply, ans.Text)
}
