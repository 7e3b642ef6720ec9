// Package qa answers questions about a case by retrieving the sentences
// closest to the question in embedding space.
package qa

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/nikhilbhutani/casebrief/internal/vectorstore"
	"github.com/nikhilbhutani/casebrief/pkg/sentence"
)

const (
	DefaultTopK = 3
	NoTextReply = "No text to search."
)

var ErrEmptyQuestion = errors.New("question is empty")

// Embedder turns texts into vectors, one per input, in order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

type Answer struct {
	Text    string              `json:"answer"`
	Matches []vectorstore.Match `json:"matches,omitempty"`
}

type Answerer struct {
	embedder  Embedder
	sentences sentence.Tokenizer
	store     vectorstore.Store
	locale    string
}

func NewAnswerer(e Embedder, tok sentence.Tokenizer, store vectorstore.Store, locale string) *Answerer {
	if store == nil {
		store = vectorstore.NewMemoryStore()
	}
	return &Answerer{embedder: e, sentences: tok, store: store, locale: locale}
}

// Answer ranks the sentences of text against question without storing them.
func (a *Answerer) Answer(ctx context.Context, text, question string, topK int) (*Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}

	sents, err := a.embedSentences(ctx, uuid.Nil, text)
	if err != nil {
		return nil, err
	}
	if len(sents) == 0 {
		return &Answer{Text: NoTextReply}, nil
	}

	q, err := a.embedQuestion(ctx, question)
	if err != nil {
		return nil, err
	}
	return render(vectorstore.Rank(q, sents, orDefault(topK))), nil
}

// Index embeds the sentences of text and stores them under caseID. It
// returns the number of sentences stored.
func (a *Answerer) Index(ctx context.Context, caseID uuid.UUID, text string) (int, error) {
	sents, err := a.embedSentences(ctx, caseID, text)
	if err != nil {
		return 0, err
	}
	if err := a.store.Upsert(ctx, caseID, sents); err != nil {
		return 0, fmt.Errorf("store sentences: %w", err)
	}
	return len(sents), nil
}

// AnswerCase answers from sentences previously stored with Index.
func (a *Answerer) AnswerCase(ctx context.Context, caseID uuid.UUID, question string, topK int) (*Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}

	q, err := a.embedQuestion(ctx, question)
	if err != nil {
		return nil, err
	}
	matches, err := a.store.Search(ctx, caseID, q, orDefault(topK))
	if err != nil {
		return nil, fmt.Errorf("search sentences: %w", err)
	}
	if len(matches) == 0 {
		return &Answer{Text: NoTextReply}, nil
	}
	return render(matches), nil
}

func (a *Answerer) Forget(ctx context.Context, caseID uuid.UUID) error {
	return a.store.Delete(ctx, caseID)
}

func (a *Answerer) embedSentences(ctx context.Context, caseID uuid.UUID, text string) ([]vectorstore.Sentence, error) {
	texts := a.sentences.Tokenize(text, a.locale)
	if len(texts) == 0 {
		return nil, nil
	}

	vecs, err := a.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed sentences: %w", err)
	}
	if len(vecs) != len(texts) {
		return nil, fmt.Errorf("embed sentences: got %d vectors for %d sentences", len(vecs), len(texts))
	}

	out := make([]vectorstore.Sentence, len(texts))
	for i, t := range texts {
		out[i] = vectorstore.Sentence{CaseID: caseID, Index: i, Text: t, Embedding: vecs[i]}
	}
	return out, nil
}

func (a *Answerer) embedQuestion(ctx context.Context, question string) ([]float32, error) {
	vecs, err := a.embedder.Embed(ctx, []string{question})
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}
	if len(vecs) == 0 {
		return nil, fmt.Errorf("embed question: no vector returned")
	}
	return vecs[0], nil
}

func render(matches []vectorstore.Match) *Answer {
	texts := make([]string, len(matches))
	for i, m := range matches {
		texts[i] = m.Text
	}
	return &Answer{Text: strings.Join(texts, "\n\n"), Matches: matches}
}

func orDefault(topK int) int {
	if topK <= 0 {
		return DefaultTopK
	}
	return topK
}
