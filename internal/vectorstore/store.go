package vectorstore

import (
	"context"
	"math"
	"sort"

	"github.com/google/uuid"
)

// Sentence is one embedded sentence of a stored case.
type Sentence struct {
	CaseID    uuid.UUID
	Index     int
	Text      string
	Embedding []float32
}

type Match struct {
	Index int     `json:"index"`
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

// Store keeps sentence embeddings per case for question answering.
type Store interface {
	Upsert(ctx context.Context, caseID uuid.UUID, sentences []Sentence) error
	Search(ctx context.Context, caseID uuid.UUID, query []float32, topK int) ([]Match, error)
	Delete(ctx context.Context, caseID uuid.UUID) error
}

// Cosine returns the cosine similarity of a and b, or 0 when either is a
// zero vector or the lengths differ.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// Rank scores every sentence against query and returns the topK best,
// highest first. Equal scores keep sentence order.
func Rank(query []float32, sentences []Sentence, topK int) []Match {
	matches := make([]Match, len(sentences))
	for i, s := range sentences {
		matches[i] = Match{Index: s.Index, Text: s.Text, Score: Cosine(query, s.Embedding)}
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if topK > 0 && len(matches) > topK {
		matches = matches[:topK]
	}
	return matches
}
