// Package retry runs a batch call with bounded linear backoff and falls
// back to one degraded per-item pass once the batch attempts are spent.
package retry

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"codeberg.org/snonux/decktranslate/internal/metrics"
)

// Default values.
const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = 5 * time.Second
	DefaultPaceDelay   = 300 * time.Millisecond
)

// BatchFunc translates a whole batch. It must return one value per text.
type BatchFunc func(ctx context.Context, texts []string) ([]string, error)

// ItemFunc translates a single text.
type ItemFunc func(ctx context.Context, text string) (string, error)

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Result of Execute. Values always has one entry per input text.
type Result struct {
	Values []string

	// Batch attempts made, at most MaxAttempts
	Attempts int

	// Degraded is set when the batch attempts were exhausted and Values
	// came from the per-item pass.
	Degraded bool

	// Failed holds the positions whose item call failed in the degraded
	// pass. Their values are "".
	Failed []int
}

// Controller retries batch calls.
type Controller struct {
	MaxAttempts int
	BaseDelay   time.Duration
	PaceDelay   time.Duration
	Sleep       SleepFunc
	Logger      *logrus.Logger
	Metrics     *metrics.Metrics
}

// NewController returns a controller with the default attempt count and
// delays.
func NewController(logger *logrus.Logger, m *metrics.Metrics) *Controller {
	return &Controller{
		MaxAttempts: DefaultMaxAttempts,
		BaseDelay:   DefaultBaseDelay,
		PaceDelay:   DefaultPaceDelay,
		Sleep:       Sleep,
		Logger:      logger,
		Metrics:     m,
	}
}

// Sleep waits for d, returning early with the context error when ctx is
// cancelled.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Backoff returns the wait after failed attempt number attempt (1-based).
func (c *Controller) Backoff(attempt int) time.Duration {
	return c.BaseDelay * time.Duration(attempt)
}

// Execute calls batch up to MaxAttempts times. When every attempt fails it
// runs item once per text, substituting "" for items that fail. The only
// error returned is the context error after cancellation.
func (c *Controller) Execute(ctx context.Context, texts []string, batch BatchFunc, item ItemFunc) (Result, error) {
	logger := c.logger()
	maxAttempts := c.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	result := Result{}
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		result.Attempts = attempt

		values, err := batch(ctx, texts)
		if err == nil && len(values) != len(texts) {
			err = fmt.Errorf("got %d results for %d texts", len(values), len(texts))
		}
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		c.Metrics.RecordProviderCall(metrics.ModeBatch, err)
		if err == nil {
			result.Values = values
			return result, nil
		}

		logger.WithFields(logrus.Fields{
			"attempt":      attempt,
			"max_attempts": maxAttempts,
			"texts":        len(texts),
		}).WithError(err).Warn("Batch call failed")

		if attempt < maxAttempts {
			c.Metrics.RecordRetry()
			if err := c.wait(ctx, c.Backoff(attempt)); err != nil {
				return result, err
			}
		}
	}

	return c.degrade(ctx, texts, item, result)
}

func (c *Controller) degrade(ctx context.Context, texts []string, item ItemFunc, result Result) (Result, error) {
	logger := c.logger()
	logger.WithField("texts", len(texts)).Warn("Batch attempts exhausted, translating items one by one")
	c.Metrics.RecordFallback()

	result.Degraded = true
	result.Values = make([]string, len(texts))

	called := false
	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			continue
		}
		if called {
			if err := c.wait(ctx, c.PaceDelay); err != nil {
				return result, err
			}
		}
		called = true

		value, err := item(ctx, text)
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		c.Metrics.RecordProviderCall(metrics.ModeItem, err)
		if err != nil {
			logger.WithFields(logrus.Fields{
				"position": i,
			}).WithError(err).Warn("Item call failed, leaving it empty")
			result.Failed = append(result.Failed, i)
			continue
		}
		result.Values[i] = value
	}

	c.Metrics.RecordFailedItems(len(result.Failed))
	return result, nil
}

func (c *Controller) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	sleep := c.Sleep
	if sleep == nil {
		sleep = Sleep
	}
	if err := sleep(ctx, d); err != nil {
		return err
	}
	c.Metrics.RecordWait(d.Seconds())
	return nil
}

func (c *Controller) logger() *logrus.Logger {
	if c.Logger == nil {
		c.Logger = logrus.New()
	}
	return c.Logger
}
