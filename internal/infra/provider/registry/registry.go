// Package registry builds the configured metadata provider.
package registry

import (
	"go.uber.org/zap"

	"media-search-service/internal/config"
	"media-search-service/internal/infra/provider"
	"media-search-service/internal/infra/provider/omdb"
)

// NewProvider creates the OMDb client from its configuration section,
// translating config durations and counts into the resilience policy.
func NewProvider(cfg config.OMDBConfig, logger *zap.Logger) *omdb.Client {
	return omdb.New(omdb.Config{
		ClientConfig: ClientConfig(cfg),
		APIKey:       cfg.APIKey,
	}, logger)
}

// ClientConfig maps the OMDb section onto the shared client settings.
func ClientConfig(cfg config.OMDBConfig) provider.ClientConfig {
	return provider.ClientConfig{
		BaseURL:        cfg.BaseURL,
		Referer:        cfg.Referer,
		TryTimeout:     cfg.TimeoutPerTry,
		OverallTimeout: cfg.TimeoutGlobal,
		Retry: provider.RetryConfig{
			Count:       cfg.Retries,
			WaitTime:    cfg.Retry.WaitTime,
			MaxWaitTime: cfg.Retry.MaxWaitTime,
		},
		CB: provider.CBConfig{
			MaxRequests:  cfg.CB.MaxRequests,
			Interval:     cfg.CB.Interval,
			Timeout:      cfg.CB.Timeout,
			FailureRatio: cfg.CB.FailureRatio,
		},
	}
}
