package translation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
)

const (
	DefaultBreakerFailures = 5
	DefaultBreakerCooldown = 30 * time.Second
)

// BreakerLocalizer wraps a hosted localizer with a circuit breaker so a
// failing API is not hammered on every request.
type BreakerLocalizer struct {
	next    Localizer
	breaker *gobreaker.CircuitBreaker
}

func NewBreakerLocalizer(next Localizer, failures uint32, cooldown time.Duration, logger zerolog.Logger) *BreakerLocalizer {
	if failures == 0 {
		failures = DefaultBreakerFailures
	}
	if cooldown <= 0 {
		cooldown = DefaultBreakerCooldown
	}

	settings := gobreaker.Settings{
		Name:        next.Name(),
		MaxRequests: 1,
		Timeout:     cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		// Caller mistakes and missing credentials say nothing about the
		// backend's health, and auth errors must reach the caller as auth.
		IsSuccessful: func(err error) bool {
			switch KindOf(err) {
			case "", KindInvalidRequest, KindAuth:
				return true
			}
			return false
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().
				Str("provider", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("hosted localizer circuit changed state")
		},
	}

	return &BreakerLocalizer{
		next:    next,
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

func (b *BreakerLocalizer) Name() string {
	return b.next.Name()
}

func (b *BreakerLocalizer) BatchLocalize(ctx context.Context, text, sourceLocale string, targetLocales []string) ([]string, error) {
	out, err := b.breaker.Execute(func() (interface{}, error) {
		return b.next.BatchLocalize(ctx, text, sourceLocale, targetLocales)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, newError(KindUnavailable, "", b.next.Name(), fmt.Errorf("circuit breaker: %w", err))
		}
		return nil, err
	}
	return out.([]string), nil
}

// State reports the breaker state (closed, half-open or open).
func (b *BreakerLocalizer) State() string {
	return b.breaker.State().String()
}
