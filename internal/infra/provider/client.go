// Package provider provides HTTP client utilities for external providers.
package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// ClientConfig holds configuration for a provider client.
type ClientConfig struct {
	BaseURL string
	Referer string

	// TryTimeout bounds a single HTTP attempt.
	TryTimeout time.Duration
	// OverallTimeout bounds the whole call, retries and backoff included.
	OverallTimeout time.Duration

	Retry RetryConfig
	CB    CBConfig
}

// RetryConfig holds retry configuration.
type RetryConfig struct {
	Count       int
	WaitTime    time.Duration
	MaxWaitTime time.Duration
}

// CBConfig holds circuit breaker configuration.
type CBConfig struct {
	MaxRequests  uint32
	Interval     time.Duration
	Timeout      time.Duration
	FailureRatio float64
}

// NewRestyClient creates a new Resty HTTP client with per-try timeout and retry configuration.
func NewRestyClient(cfg ClientConfig, logger *zap.Logger) *resty.Client {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.TryTimeout).
		SetRetryCount(cfg.Retry.Count).
		SetRetryWaitTime(cfg.Retry.WaitTime).
		SetRetryMaxWaitTime(cfg.Retry.MaxWaitTime).
		SetLogger(newRestyLogger(logger)).
		SetHeader("Accept", "application/json").
		AddRetryCondition(IsTransient)

	if cfg.Referer != "" {
		client.SetHeader("Referer", cfg.Referer)
	}

	return client
}

// IsTransient reports whether an attempt failed in a way worth retrying:
// network errors (per-try timeouts included) and 5xx responses.
// Well-formed responses below 500 are final.
func IsTransient(r *resty.Response, err error) bool {
	if err != nil {
		return true
	}

	return r != nil && r.StatusCode() >= 500
}

// NewCircuitBreaker creates a new circuit breaker for a provider.
func NewCircuitBreaker[T any](name string, cfg CBConfig, logger *zap.Logger) *gobreaker.CircuitBreaker[T] {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)

			return counts.Requests >= 3 && failureRatio >= cfg.FailureRatio
		},
		IsSuccessful: func(err error) bool {
			// A caller giving up says nothing about the provider's health.
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}

	return gobreaker.NewCircuitBreaker[T](settings)
}

// Policy composes the resilience rules around one upstream call:
// an overall deadline wrapping a circuit breaker wrapping resty's retry loop,
// where every attempt is bounded by the client's per-try timeout.
type Policy struct {
	overall time.Duration
	cb      *gobreaker.CircuitBreaker[*resty.Response]
}

// NewPolicy creates a Policy for the named provider.
func NewPolicy(name string, cfg ClientConfig, logger *zap.Logger) *Policy {
	return &Policy{
		overall: cfg.OverallTimeout,
		cb:      NewCircuitBreaker[*resty.Response](name, cfg.CB, logger),
	}
}

// State returns the circuit breaker state.
func (p *Policy) State() gobreaker.State {
	return p.cb.State()
}

// Execute runs call under the policy. Responses with status >= 400 are
// returned together with an error so callers keep the response for diagnosis.
func (p *Policy) Execute(ctx context.Context, call func(ctx context.Context) (*resty.Response, error)) (*resty.Response, error) {
	if p.overall > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.overall)
		defer cancel()
	}

	return p.cb.Execute(func() (*resty.Response, error) {
		r, err := call(ctx)
		if err != nil {
			return r, err
		}
		if r.IsError() {
			return r, fmt.Errorf("provider returned status %d", r.StatusCode())
		}

		return r, nil
	})
}
