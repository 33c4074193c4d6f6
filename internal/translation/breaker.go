package translation

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

// BreakerSettings configures the circuit breaker around a provider.
type BreakerSettings struct {
	Enabled bool

	// Consecutive failed calls that open the breaker
	FailureThreshold uint32

	// How long the breaker stays open before letting a probe call through
	OpenTimeout time.Duration
}

// DefaultBreakerSettings returns the default breaker configuration.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		Enabled:          true,
		FailureThreshold: 10,
		OpenTimeout:      30 * time.Second,
	}
}

// Breaker stops calling a provider that keeps failing. Calls rejected by
// an open breaker fail fast with a *ServiceError.
type Breaker struct {
	next   Translator
	cb     *gobreaker.CircuitBreaker
	logger *logrus.Logger
}

// NewBreaker wraps next in a circuit breaker.
func NewBreaker(next Translator, settings BreakerSettings, logger *logrus.Logger) *Breaker {
	if logger == nil {
		logger = logrus.New()
	}
	threshold := settings.FailureThreshold
	if threshold == 0 {
		threshold = DefaultBreakerSettings().FailureThreshold
	}

	b := &Breaker{next: next, logger: logger}
	b.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        next.Name(),
		MaxRequests: 1,
		Timeout:     settings.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"provider": name,
				"from":     from.String(),
				"to":       to.String(),
			}).Warn("Circuit breaker state changed")
		},
		IsSuccessful: func(err error) bool {
			// Cancellation says nothing about provider health
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
	return b
}

// TranslateBatch implements Translator.
func (b *Breaker) TranslateBatch(ctx context.Context, texts []string, sourceLang, targetLang string) ([]string, error) {
	result, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.TranslateBatch(ctx, texts, sourceLang, targetLang)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, &ServiceError{Provider: b.Name(), Err: err}
		}
		return nil, err
	}
	return result.([]string), nil
}

// State returns the current breaker state.
func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}

// Name returns the wrapped provider name
func (b *Breaker) Name() string {
	return b.next.Name()
}

// IsAvailable checks the wrapped provider
func (b *Breaker) IsAvailable() error {
	return b.next.IsAvailable()
}
