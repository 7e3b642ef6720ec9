// Package sentence provides locale-aware sentence segmentation backed by the
// punkt models from github.com/neurosnap/sentences.
package sentence

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
)

// Tokenizer splits text into an ordered sequence of sentences.
type Tokenizer interface {
	Tokenize(text, locale string) []string
}

// TokenizerFunc adapts a plain function to Tokenizer.
type TokenizerFunc func(text, locale string) []string

func (f TokenizerFunc) Tokenize(text, locale string) []string { return f(text, locale) }

const DefaultLocale = "en"

// Punkt segments sentences with pretrained punkt models. Only English ships
// with the library; other locales fall back to it.
type Punkt struct {
	mu     sync.RWMutex
	models map[string]*sentences.DefaultSentenceTokenizer
}

func NewPunkt() (*Punkt, error) {
	en, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return nil, fmt.Errorf("load english punkt model: %w", err)
	}
	return &Punkt{
		models: map[string]*sentences.DefaultSentenceTokenizer{
			"en": en,
		},
	}, nil
}

func (p *Punkt) Tokenize(text, locale string) []string {
	model := p.model(locale)

	var out []string
	for _, s := range model.Tokenize(text) {
		if t := strings.TrimSpace(s.Text); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func (p *Punkt) model(locale string) *sentences.DefaultSentenceTokenizer {
	tag := normalizeLocale(locale)

	p.mu.RLock()
	defer p.mu.RUnlock()
	if m, ok := p.models[tag]; ok {
		return m
	}
	slog.Debug("no punkt model for locale, using english", "locale", locale)
	return p.models["en"]
}

// normalizeLocale maps tags like "en-US", "en_GB" or "english" to "en".
func normalizeLocale(locale string) string {
	tag := strings.ToLower(strings.TrimSpace(locale))
	if tag == "" || tag == "english" {
		return DefaultLocale
	}
	if i := strings.IndexAny(tag, "-_"); i > 0 {
		tag = tag[:i]
	}
	return tag
}

// First returns at most n sentences of text joined by a single space.
func First(tok Tokenizer, text, locale string, n int) string {
	sents := tok.Tokenize(text, locale)
	if len(sents) > n {
		sents = sents[:n]
	}
	return strings.Join(sents, " ")
}
