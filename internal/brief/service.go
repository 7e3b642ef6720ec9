// Package brief turns case text into a stored brief: a tiered summary, the
// likely legal issues, an optional answer, and a keyword-highlighted view.
package brief

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/nikhilbhutani/casebrief/internal/auth"
	"github.com/nikhilbhutani/casebrief/internal/cache"
	"github.com/nikhilbhutani/casebrief/internal/issues"
	"github.com/nikhilbhutani/casebrief/internal/models"
	"github.com/nikhilbhutani/casebrief/internal/qa"
	"github.com/nikhilbhutani/casebrief/internal/summarize"
	"github.com/nikhilbhutani/casebrief/pkg/sentence"
)

// NoTextSummary is shown when a submission carries no readable text.
const NoTextSummary = "⚠️ No text found."

var (
	ErrNoText     = errors.New("no case text")
	ErrNotFound   = errors.New("brief not found")
	ErrNoAnswerer = errors.New("question answering is not configured")
)

// Lengths maps access tiers to summary lengths.
type Lengths struct {
	Free    summarize.Length
	Premium summarize.Length
}

func (l Lengths) For(t auth.Tier) summarize.Length {
	if t == auth.TierPremium {
		return l.Premium.Normalize()
	}
	return l.Free.Normalize()
}

type Request struct {
	ID         uuid.UUID
	Title      string
	SourceType string
	Text       string
	Question   string
	Tier       auth.Tier
	Highlight  bool
}

type Service struct {
	pipeline  *summarize.Pipeline
	sentences sentence.Tokenizer
	answerer  *qa.Answerer
	repo      Repository
	cache     *cache.Cache
	cacheTTL  time.Duration
	lengths   Lengths
	locale    string
}

type Config struct {
	Lengths  Lengths
	Locale   string
	CacheTTL time.Duration
}

// NewService wires the brief pipeline. answerer and c may be nil; repo
// defaults to an in-memory repository.
func NewService(p *summarize.Pipeline, tok sentence.Tokenizer, answerer *qa.Answerer, repo Repository, c *cache.Cache, cfg Config) *Service {
	if repo == nil {
		repo = NewMemoryRepository()
	}
	if cfg.Locale == "" {
		cfg.Locale = sentence.DefaultLocale
	}
	return &Service{
		pipeline:  p,
		sentences: tok,
		answerer:  answerer,
		repo:      repo,
		cache:     c,
		cacheTTL:  cfg.CacheTTL,
		lengths:   cfg.Lengths,
		locale:    cfg.Locale,
	}
}

// Analyze summarizes, extracts issues and answers the optional question,
// then stores the brief. Summarization never fails; only storage does.
func (s *Service) Analyze(ctx context.Context, req Request) (*models.Brief, *summarize.Result, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, nil, ErrNoText
	}

	id := req.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	tier := req.Tier
	if tier == "" {
		tier = auth.TierFree
	}
	length := s.lengths.For(tier)

	res := s.summary(ctx, text, length)

	var sents []string
	if s.sentences != nil {
		sents = s.sentences.Tokenize(text, s.locale)
	}

	b := &models.Brief{
		ID:            id,
		Title:         strings.TrimSpace(req.Title),
		SourceType:    req.SourceType,
		Tier:          string(tier),
		Summary:       res.Summary,
		Issues:        issues.Extract(sents, issues.DefaultTopN),
		Question:      strings.TrimSpace(req.Question),
		SummaryMaxLen: length.Max,
		Chunks:        len(res.Chunks),
		Degraded:      res.Degraded(),
		TextChars:     utf8.RuneCountInString(text),
		CreatedAt:     time.Now().UTC(),
	}
	if b.Issues == nil {
		b.Issues = []string{}
	}
	if req.Highlight {
		b.Highlighted = issues.Highlight(res.Summary)
	}

	if b.Question != "" && s.answerer != nil {
		ans, err := s.answerer.Answer(ctx, text, b.Question, qa.DefaultTopK)
		if err != nil {
			slog.Warn("answer question failed", "brief_id", id, "error", err)
		} else {
			b.Answer = ans.Text
		}
	}

	if err := s.repo.Save(ctx, b); err != nil {
		return nil, nil, fmt.Errorf("save brief: %w", err)
	}

	if s.answerer != nil {
		if n, err := s.answerer.Index(ctx, id, text); err != nil {
			slog.Warn("index case sentences failed", "brief_id", id, "error", err)
		} else {
			slog.Debug("indexed case sentences", "brief_id", id, "sentences", n)
		}
	}

	return b, res, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Brief, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]models.Brief, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, limit, offset)
}

// Ask answers a question against the sentences indexed for a stored brief.
func (s *Service) Ask(ctx context.Context, id uuid.UUID, question string, topK int) (*qa.Answer, error) {
	if s.answerer == nil {
		return nil, ErrNoAnswerer
	}
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.answerer.AnswerCase(ctx, id, question, topK)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if s.answerer != nil {
		if err := s.answerer.Forget(ctx, id); err != nil {
			slog.Warn("forget case sentences failed", "brief_id", id, "error", err)
		}
	}
	return nil
}

// Summarize runs the pipeline alone, through the summary cache.
func (s *Service) Summarize(ctx context.Context, text string, length summarize.Length) *summarize.Result {
	return s.summary(ctx, text, length.Normalize())
}

// Length returns the summary length granted to a tier.
func (s *Service) Length(t auth.Tier) summarize.Length {
	return s.lengths.For(t)
}

// summary consults the cache first. Degraded results are not cached so a
// later request can get a model summary once the backend recovers.
func (s *Service) summary(ctx context.Context, text string, length summarize.Length) *summarize.Result {
	key := summaryKey(text, length)
	if s.cache != nil {
		var cached summarize.Result
		err := s.cache.Get(ctx, key, &cached)
		if err == nil {
			return &cached
		}
		if !errors.Is(err, cache.ErrMiss) {
			slog.Warn("summary cache read failed", "error", err)
		}
	}

	res := s.pipeline.Summarize(ctx, text, length)

	if s.cache != nil && !res.Degraded() && !res.Skipped {
		if err := s.cache.Set(ctx, key, res, s.cacheTTL); err != nil {
			slog.Warn("summary cache write failed", "error", err)
		}
	}
	return res
}

func summaryKey(text string, length summarize.Length) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(text)))
	return fmt.Sprintf("summary:%s:%d:%d", hex.EncodeToString(sum[:]), length.Max, length.Min)
}
