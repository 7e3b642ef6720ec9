package summarize

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

type BreakerSettings struct {
	Name     string
	Failures int           // consecutive failures that open the breaker
	Cooldown time.Duration // time spent open before a half-open probe
}

// BreakerSummarizer fails fast while the wrapped summarizer keeps failing,
// so pipelines go straight to their fallbacks instead of waiting on a dead
// backend for every chunk.
type BreakerSummarizer struct {
	next Summarizer
	cb   *gobreaker.CircuitBreaker
}

func NewBreakerSummarizer(next Summarizer, settings BreakerSettings) *BreakerSummarizer {
	if settings.Name == "" {
		settings.Name = "summarizer"
	}
	if settings.Failures <= 0 {
		settings.Failures = 5
	}
	if settings.Cooldown <= 0 {
		settings.Cooldown = 30 * time.Second
	}
	failures := uint32(settings.Failures)

	return &BreakerSummarizer{
		next: next,
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        settings.Name,
			MaxRequests: 1,
			Timeout:     settings.Cooldown,
			// A caller giving up is not a backend failure. Deadlines still count.
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, context.Canceled)
			},
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.ConsecutiveFailures >= failures
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				slog.Warn("summarizer breaker state changed", "name", name, "from", from.String(), "to", to.String())
			},
		}),
	}
}

func (b *BreakerSummarizer) Summarize(ctx context.Context, text string, length Length) (string, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.Summarize(ctx, text, length)
	})
	if err != nil {
		return "", err
	}
	return out.(string), nil
}

func (b *BreakerSummarizer) State() gobreaker.State {
	return b.cb.State()
}
