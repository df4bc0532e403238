// Package resilience wraps sony/gobreaker for calls to external services.
package resilience

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
)

// BreakerConfig holds configuration for a circuit breaker.
type BreakerConfig struct {
	Name             string
	FailureThreshold uint32        // consecutive failures before opening
	HalfOpenRequests uint32        // trial calls allowed while half-open
	OpenTimeout      time.Duration // time spent open before probing
	Interval         time.Duration // closed-state counter reset period, 0 never resets

	OnStateChange func(name string, from, to gobreaker.State)
}

// DefaultBreakerConfig returns the settings used for the completion client.
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:             name,
		FailureThreshold: 5,
		HalfOpenRequests: 1,
		OpenTimeout:      30 * time.Second,
	}
}

// Breaker is a thin wrapper that exposes the open check callers need before
// deciding whether to try a remote at all.
type Breaker struct {
	cb *gobreaker.CircuitBreaker
}

func NewBreaker(cfg BreakerConfig) *Breaker {
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.HalfOpenRequests == 0 {
		cfg.HalfOpenRequests = 1
	}
	threshold := cfg.FailureThreshold

	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.HalfOpenRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// A caller walking away says nothing about the remote's health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: cfg.OnStateChange,
	}
	return &Breaker{cb: gobreaker.NewCircuitBreaker(settings)}
}

func (b *Breaker) Name() string {
	return b.cb.Name()
}

func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}

// Allow reports whether a call would currently be let through.
func (b *Breaker) Allow() bool {
	return b.cb.State() != gobreaker.StateOpen
}

// Do runs fn under the breaker.
func Do[T any](b *Breaker, fn func() (T, error)) (T, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return out.(T), nil
}

// IsRejected reports whether err came from the breaker rather than the call.
func IsRejected(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

// StateValue maps a state to the gauge value exported in metrics.
func StateValue(s gobreaker.State) int {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
