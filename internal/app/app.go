// Package app wires configuration into the services shared by the API
// server, the worker and the CLI.
package app

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/nikhilbhutani/casebrief/internal/brief"
	"github.com/nikhilbhutani/casebrief/internal/cache"
	"github.com/nikhilbhutani/casebrief/internal/config"
	"github.com/nikhilbhutani/casebrief/internal/document"
	"github.com/nikhilbhutani/casebrief/internal/embedding"
	"github.com/nikhilbhutani/casebrief/internal/llm"
	"github.com/nikhilbhutani/casebrief/internal/qa"
	"github.com/nikhilbhutani/casebrief/internal/summarize"
	"github.com/nikhilbhutani/casebrief/internal/vectorstore"
	"github.com/nikhilbhutani/casebrief/pkg/chunker"
	"github.com/nikhilbhutani/casebrief/pkg/sentence"
)

const cachePrefix = "casebrief:"

// Backends are optional; nil members fall back to in-process storage.
type Backends struct {
	DB    *pgxpool.Pool
	Redis *redis.Client
}

type Components struct {
	Gateway   llm.Gateway
	Breaker   *summarize.BreakerSummarizer
	Pipeline  *summarize.Pipeline
	Sentences sentence.Tokenizer
	Answerer  *qa.Answerer
	Briefs    *brief.Service
	Documents *document.Service
	Cache     *cache.Cache
}

func Build(cfg *config.Config, b Backends) (*Components, error) {
	punkt, err := sentence.NewPunkt()
	if err != nil {
		return nil, fmt.Errorf("load sentence tokenizer: %w", err)
	}

	gw := llm.NewGateway(cfg.LLM)
	breaker := summarize.NewBreakerSummarizer(
		summarize.NewLLMSummarizer(gw, cfg.LLM.DefaultProvider, cfg.LLM.DefaultModel),
		summarize.BreakerSettings{
			Name:     "llm-summarizer",
			Failures: cfg.Summarizer.BreakerFailures,
			Cooldown: cfg.Summarizer.BreakerCooldown,
		},
	)
	pipeline := summarize.NewPipeline(breaker, punkt, PipelineOptions(cfg.Summarizer))

	var store vectorstore.Store = vectorstore.NewMemoryStore()
	var repo brief.Repository = brief.NewMemoryRepository()
	if b.DB != nil {
		store = vectorstore.NewPgVectorStore(b.DB)
		repo = brief.NewPgRepository(b.DB)
	}

	var c *cache.Cache
	if b.Redis != nil {
		c = cache.NewCache(b.Redis, cachePrefix)
	}

	embedder := embedding.NewService(gw, cfg.LLM.EmbeddingProvider, cfg.LLM.EmbeddingModel)
	answerer := qa.NewAnswerer(embedder, punkt, store, cfg.Summarizer.Locale)

	briefs := brief.NewService(pipeline, punkt, answerer, repo, c, brief.Config{
		Lengths:  TierLengths(cfg.Tiers),
		Locale:   cfg.Summarizer.Locale,
		CacheTTL: cfg.Cache.SummaryTTL,
	})

	return &Components{
		Gateway:   gw,
		Breaker:   breaker,
		Pipeline:  pipeline,
		Sentences: punkt,
		Answerer:  answerer,
		Briefs:    briefs,
		Documents: document.NewService(document.NewTextExtractor(document.NewOCRService("eng")), 0),
		Cache:     c,
	}, nil
}

// BreakerState reports the summarizer breaker for readiness output.
func (c *Components) BreakerState() string {
	return c.Breaker.State().String()
}

func PipelineOptions(cfg config.SummarizerConfig) summarize.Options {
	return summarize.Options{
		MinInputChars: cfg.MinInputChars,
		Chunk: chunker.ChunkOptions{
			ChunkSize: cfg.ChunkSize,
			Strategy:  chunker.StrategyParagraph,
		},
		ChunkLength:       summarize.Length{Max: cfg.ChunkMaxLen, Min: cfg.ChunkMinLen},
		FallbackSentences: cfg.FallbackSentences,
		FallbackFactor:    cfg.FallbackFactor,
		Locale:            cfg.Locale,
		CallTimeout:       cfg.CallTimeout,
	}
}

func TierLengths(cfg config.TierConfig) brief.Lengths {
	return brief.Lengths{
		Free:    summarize.Length{Max: cfg.FreeMaxLen, Min: cfg.MinLen},
		Premium: summarize.Length{Max: cfg.PremiumMaxLen, Min: cfg.MinLen},
	}
}
