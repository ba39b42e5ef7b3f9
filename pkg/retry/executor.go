package retry

import (
	"context"
	"math"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/tripweave/itinerary-engine/pkg/errors"
)

// Strategy defines retry strategy interface
type Strategy interface {
	NextDelay(attempt int) time.Duration
}

// Config defines retry configuration
type Config struct {
	MaxAttempts int
	Strategy    Strategy
	// Jitter is the upper bound of the random delay added to every wait.
	Jitter  time.Duration
	OnRetry func(attempt int, err *errors.GenerationError)
	Logger  *zap.Logger
	// Random returns a value in [0, 1); defaults to math/rand.
	Random func() float64
}

// ExponentialBackoff implements exponential backoff strategy
type ExponentialBackoff struct {
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// NextDelay returns min(initial * multiplier^(attempt-1), max) for a 1-based attempt
func (e *ExponentialBackoff) NextDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := float64(e.InitialDelay) * math.Pow(e.Multiplier, float64(attempt-1))
	if e.MaxDelay > 0 && delay > float64(e.MaxDelay) {
		return e.MaxDelay
	}
	return time.Duration(delay)
}

// Policy is the flat, configuration-friendly form of a retry policy
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Multiplier  float64
	Jitter      time.Duration
}

// Config builds an exponential-backoff Config from the policy
func (p Policy) Config(logger *zap.Logger) Config {
	return Config{
		MaxAttempts: p.MaxAttempts,
		Strategy: &ExponentialBackoff{
			InitialDelay: p.BaseDelay,
			MaxDelay:     p.MaxDelay,
			Multiplier:   p.Multiplier,
		},
		Jitter: p.Jitter,
		Logger: logger,
	}
}

// DefaultPolicy is used when no policy is configured
var DefaultPolicy = Policy{
	MaxAttempts: 3,
	BaseDelay:   time.Second,
	MaxDelay:    10 * time.Second,
	Multiplier:  2,
	Jitter:      500 * time.Millisecond,
}

// ExecuteWithRetry runs operation until it succeeds, hits a fatal error, the
// context is cancelled or MaxAttempts is exhausted. Exhausted failures are
// surfaced tagged with defaultKind.
func ExecuteWithRetry[T any](
	ctx context.Context,
	operation func() (T, error),
	config Config,
	defaultKind errors.Kind,
) (T, error) {
	var zero T
	var lastErr *errors.GenerationError

	maxAttempts := config.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if ctx.Err() != nil {
			return zero, errors.Cancelled()
		}

		result, err := operation()
		if err == nil {
			return result, nil
		}

		if ctx.Err() != nil {
			return zero, errors.Cancelled()
		}

		classified := errors.Classify(err, defaultKind)
		if classified.Fatal() {
			logger.Debug("not retrying fatal error",
				zap.Int("attempt", attempt),
				zap.String("kind", string(classified.Kind)),
				zap.Error(err),
			)
			return zero, classified
		}
		lastErr = classified

		if attempt == maxAttempts {
			break
		}

		delay := nextDelay(config, attempt)
		if config.OnRetry != nil {
			config.OnRetry(attempt, classified)
		}
		logger.Debug("retrying operation",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", maxAttempts),
			zap.Duration("delay", delay),
			zap.Error(err),
		)

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return zero, errors.Cancelled()
		}
	}

	if lastErr.Kind == errors.KindTimeout {
		return zero, lastErr
	}
	surfaced := errors.Wrap(lastErr, defaultKind)
	surfaced.Message = lastErr.Message
	surfaced.Code = lastErr.Code
	return zero, surfaced
}

func nextDelay(config Config, attempt int) time.Duration {
	var delay time.Duration
	if config.Strategy != nil {
		delay = config.Strategy.NextDelay(attempt)
	}
	if config.Jitter > 0 {
		random := config.Random
		if random == nil {
			random = rand.Float64
		}
		delay += time.Duration(random() * float64(config.Jitter))
	}
	if delay < 0 {
		return 0
	}
	return delay
}
