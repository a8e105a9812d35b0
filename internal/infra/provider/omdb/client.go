// Package omdb implements the metadata provider client for the OMDb API.
package omdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"media-search-service/internal/domain"
	"media-search-service/internal/infra/provider"
	"media-search-service/internal/metrics"
)

// Endpoint is the provider path; all lookups are query parameters on it.
const Endpoint = "/"

// maxBodyContext caps how much of a bad response body is kept for diagnosis.
const maxBodyContext = 512

// Config holds OMDb specific settings on top of the shared client config.
type Config struct {
	provider.ClientConfig
	APIKey string
}

// Client implements domain.MediaProvider for OMDb.
type Client struct {
	name    string
	apiKey  string
	baseURL string
	client  *resty.Client
	policy  *provider.Policy
	logger  *zap.Logger
}

// New creates a new OMDb client.
func New(cfg Config, logger *zap.Logger) *Client {
	return &Client{
		name:    "omdb",
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  provider.NewRestyClient(cfg.ClientConfig, logger),
		policy:  provider.NewPolicy("omdb", cfg.ClientConfig, logger),
		logger:  logger,
	}
}

// Name returns the provider identifier.
func (c *Client) Name() string {
	return c.name
}

// Lookup resolves the best match for name. It returns (nil, nil) when the
// provider has no such title; every other failure is a *domain.UpstreamError.
func (c *Client) Lookup(ctx context.Context, mediaType domain.MediaType, name string) (media *domain.Media, err error) {
	start := time.Now()
	params := c.queryParams(mediaType, name)

	var resp *resty.Response
	defer func() {
		if r := recover(); r != nil {
			media = nil
			err = c.upstreamError("classifying response", params, resp, fmt.Errorf("panic: %v", r))
		}
		c.observe(start, media, err)
	}()

	resp, err = c.policy.Execute(ctx, func(ctx context.Context) (*resty.Response, error) {
		return c.client.R().
			SetContext(ctx).
			SetQueryParams(params).
			Get(Endpoint)
	})
	if err != nil {
		return nil, c.upstreamError("requesting title", params, resp, err)
	}

	var payload Response
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return nil, c.upstreamError("decoding response", params, resp, err)
	}

	media, err = payload.ToDomain()
	if err != nil {
		return nil, c.upstreamError("classifying response", params, resp, err)
	}

	return media, nil
}

// queryParams builds the provider query for a lookup.
func (c *Client) queryParams(mediaType domain.MediaType, name string) map[string]string {
	return map[string]string{
		"apikey": c.apiKey,
		"type":   providerType(mediaType),
		"t":      name,
	}
}

// providerType maps a media type onto the provider's type vocabulary.
func providerType(t domain.MediaType) string {
	if t == domain.MediaTypeTVSeries {
		return "series"
	}

	return string(t)
}

func (c *Client) upstreamError(op string, params map[string]string, resp *resty.Response, err error) error {
	// Transport errors quote the full request URL, api key included.
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		urlErr.URL = provider.RedactSecrets(urlErr.URL)
	}

	uerr := &domain.UpstreamError{
		Op:     c.name + ": " + op,
		Method: resty.MethodGet,
		URL:    c.redactedURL(params),
		Err:    err,
	}

	if resp != nil {
		uerr.StatusCode = resp.StatusCode()
		uerr.Body = truncate(string(resp.Body()), maxBodyContext)
	}

	c.logger.Warn("upstream lookup failed",
		zap.String("provider", c.name),
		zap.String("op", op),
		zap.String("url", uerr.URL),
		zap.Int("status", uerr.StatusCode),
		zap.String("body", uerr.Body),
		zap.String("breaker_state", c.policy.State().String()),
		zap.Error(err),
	)

	return uerr
}

// redactedURL renders the request URL with the api key masked.
func (c *Client) redactedURL(params map[string]string) string {
	q := url.Values{}
	for k, v := range params {
		q.Set(k, v)
	}
	if q.Get("apikey") != "" {
		q.Set("apikey", "REDACTED")
	}

	return c.baseURL + Endpoint + "?" + q.Encode()
}

func (c *Client) observe(start time.Time, media *domain.Media, err error) {
	outcome := metrics.OutcomeFound
	switch {
	case err != nil:
		outcome = metrics.OutcomeError
	case media == nil:
		outcome = metrics.OutcomeNotFound
	}

	duration := time.Since(start)
	metrics.UpstreamRequestsTotal.WithLabelValues(c.name, outcome).Inc()
	metrics.UpstreamRequestDuration.WithLabelValues(c.name).Observe(duration.Seconds())

	c.logger.Debug("upstream lookup completed",
		zap.String("provider", c.name),
		zap.String("outcome", outcome),
		zap.Duration("duration", duration),
	)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}

	return s[:n] + "..."
}
