package brief

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilbhutani/casebrief/internal/auth"
	"github.com/nikhilbhutani/casebrief/internal/cache"
	"github.com/nikhilbhutani/casebrief/internal/qa"
	"github.com/nikhilbhutani/casebrief/internal/summarize"
	"github.com/nikhilbhutani/casebrief/pkg/sentence"
)

const caseText = `The court held that the contract was breached by the defendant.
Damages were assessed at ten thousand pounds.
The appeal was dismissed by the judge with costs.`

var lineTokenizer = sentence.TokenizerFunc(func(text, _ string) []string {
	var out []string
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
})

var vocab = []string{"contract", "damages", "appeal", "judge"}

type bagOfWords struct{}

func (bagOfWords) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v := make([]float32, len(vocab))
		for j, w := range vocab {
			v[j] = float32(strings.Count(strings.ToLower(t), w))
		}
		out[i] = v
	}
	return out, nil
}

// recorder summarizes by echoing the requested length and counts calls.
type recorder struct {
	mu      sync.Mutex
	lengths []summarize.Length
	fail    bool
}

func (r *recorder) Summarize(_ context.Context, _ string, length summarize.Length) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lengths = append(r.lengths, length)
	if r.fail {
		return "", errors.New("backend down")
	}
	return "the judge dismissed the appeal", nil
}

func (r *recorder) calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.lengths)
}

var testLengths = Lengths{
	Free:    summarize.Length{Max: 180, Min: 40},
	Premium: summarize.Length{Max: 400, Min: 40},
}

func newService(t *testing.T, rec *recorder, c *cache.Cache) *Service {
	t.Helper()
	p := summarize.NewPipeline(rec, lineTokenizer, summarize.DefaultOptions())
	answerer := qa.NewAnswerer(bagOfWords{}, lineTokenizer, nil, "en")
	return NewService(p, lineTokenizer, answerer, nil, c, Config{Lengths: testLengths, CacheTTL: time.Hour})
}

func TestAnalyzeNoText(t *testing.T) {
	svc := newService(t, &recorder{}, nil)
	_, _, err := svc.Analyze(context.Background(), Request{Text: "  \n "})
	assert.ErrorIs(t, err, ErrNoText)
}

func TestAnalyzeTierLengths(t *testing.T) {
	for _, tc := range []struct {
		tier auth.Tier
		max  int
	}{
		{auth.TierFree, 180},
		{"", 180},
		{auth.TierPremium, 400},
	} {
		t.Run(string(tc.tier), func(t *testing.T) {
			rec := &recorder{}
			svc := newService(t, rec, nil)

			b, _, err := svc.Analyze(context.Background(), Request{Text: caseText, Tier: tc.tier})
			require.NoError(t, err)

			assert.Equal(t, tc.max, b.SummaryMaxLen)
			require.Equal(t, 2, rec.calls())
			assert.Equal(t, summarize.Length{Max: tc.max, Min: 40}, rec.lengths[1])
		})
	}
}

func TestAnalyzeBuildsBrief(t *testing.T) {
	svc := newService(t, &recorder{}, nil)

	b, res, err := svc.Analyze(context.Background(), Request{
		Title:     " Smith v Jones ",
		Text:      caseText,
		Question:  "What damages were awarded?",
		Highlight: true,
	})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, b.ID)
	assert.Equal(t, "Smith v Jones", b.Title)
	assert.Equal(t, "the judge dismissed the appeal", b.Summary)
	assert.Equal(t, "the **JUDGE** dismissed the **APPEAL**", b.Highlighted)
	assert.Equal(t, []string{
		"The court held that the contract was breached by the defendant.",
		"The appeal was dismissed by the judge with costs.",
	}, b.Issues)
	assert.True(t, strings.HasPrefix(b.Answer, "Damages were assessed at ten thousand pounds."))
	assert.False(t, b.Degraded)
	assert.Equal(t, 1, b.Chunks)
	assert.Len(t, res.Chunks, 1)

	stored, err := svc.Get(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.Summary, stored.Summary)
}

func TestAnalyzeKeepsRequestID(t *testing.T) {
	svc := newService(t, &recorder{}, nil)
	id := uuid.New()

	b, _, err := svc.Analyze(context.Background(), Request{ID: id, Text: caseText})
	require.NoError(t, err)
	assert.Equal(t, id, b.ID)
}

func TestAskStoredBrief(t *testing.T) {
	svc := newService(t, &recorder{}, nil)
	b, _, err := svc.Analyze(context.Background(), Request{Text: caseText})
	require.NoError(t, err)

	ans, err := svc.Ask(context.Background(), b.ID, "contract", 1)
	require.NoError(t, err)
	assert.Equal(t, "The court held that the contract was breached by the defendant.", ans.Text)

	_, err = svc.Ask(context.Background(), uuid.New(), "contract", 1)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, svc.Delete(context.Background(), b.ID))
	_, err = svc.Get(context.Background(), b.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAskWithoutAnswerer(t *testing.T) {
	p := summarize.NewPipeline(&recorder{}, lineTokenizer, summarize.DefaultOptions())
	svc := NewService(p, lineTokenizer, nil, nil, nil, Config{Lengths: testLengths})

	b, _, err := svc.Analyze(context.Background(), Request{Text: caseText, Question: "contract?"})
	require.NoError(t, err)
	assert.Empty(t, b.Answer)

	_, err = svc.Ask(context.Background(), b.ID, "contract?", 0)
	assert.ErrorIs(t, err, ErrNoAnswerer)
}

func TestSummaryCache(t *testing.T) {
	mr := miniredis.RunT(t)
	c := cache.NewCache(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "casebrief:")

	rec := &recorder{}
	svc := newService(t, rec, c)

	_, _, err := svc.Analyze(context.Background(), Request{Text: caseText})
	require.NoError(t, err)
	_, _, err = svc.Analyze(context.Background(), Request{Text: caseText})
	require.NoError(t, err)
	assert.Equal(t, 2, rec.calls(), "second analysis is served from cache")

	_, _, err = svc.Analyze(context.Background(), Request{Text: caseText, Tier: auth.TierPremium})
	require.NoError(t, err)
	assert.Equal(t, 4, rec.calls(), "cache is keyed by length")
}

func TestSummaryCacheSkipsDegraded(t *testing.T) {
	mr := miniredis.RunT(t)
	c := cache.NewCache(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "casebrief:")

	rec := &recorder{fail: true}
	svc := newService(t, rec, c)

	b, _, err := svc.Analyze(context.Background(), Request{Text: caseText})
	require.NoError(t, err)
	assert.True(t, b.Degraded)
	assert.Empty(t, mr.Keys())
}

func TestListMemoryRepository(t *testing.T) {
	svc := newService(t, &recorder{}, nil)
	for i := 0; i < 3; i++ {
		_, _, err := svc.Analyze(context.Background(), Request{Text: caseText})
		require.NoError(t, err)
	}

	all, err := svc.List(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	page, err := svc.List(context.Background(), 2, 2)
	require.NoError(t, err)
	assert.Len(t, page, 1)
}
