package service

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"media-search-service/internal/domain"
	"media-search-service/internal/metrics"
)

// defaultWarmupConcurrency bounds parallel provider lookups during a warm-up pass.
const defaultWarmupConcurrency = 4

// WarmupService pre-resolves a fixed list of titles so their first real
// request is served from the cache.
type WarmupService struct {
	search      *SearchService
	titles      []domain.LookupRequest
	concurrency int
	logger      *zap.Logger
}

// NewWarmupService creates a new WarmupService. A non-positive concurrency
// falls back to the default.
func NewWarmupService(search *SearchService, titles []domain.LookupRequest, concurrency int, logger *zap.Logger) *WarmupService {
	if concurrency <= 0 {
		concurrency = defaultWarmupConcurrency
	}

	return &WarmupService{
		search:      search,
		titles:      titles,
		concurrency: concurrency,
		logger:      logger,
	}
}

// WarmResult holds the outcome of warming a single title.
type WarmResult struct {
	Type     domain.MediaType
	Name     string
	Outcome  string // found, not_found, error
	Duration time.Duration
	Error    error
}

// Titles returns the configured warm-up titles.
func (s *WarmupService) Titles() []domain.LookupRequest {
	return s.titles
}

// WarmAll resolves every configured title. Partial failures are allowed;
// results keep the configured order.
func (s *WarmupService) WarmAll(ctx context.Context) []WarmResult {
	results := make([]WarmResult, len(s.titles))

	s.logger.Info("starting cache warm-up", zap.Int("title_count", len(s.titles)))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, title := range s.titles {
		g.Go(func() error {
			results[i] = s.warm(gctx, title)
			return nil
		})
	}
	_ = g.Wait()

	found, failed := 0, 0
	for _, r := range results {
		switch r.Outcome {
		case metrics.OutcomeFound:
			found++
		case metrics.OutcomeError:
			failed++
		}
	}

	s.logger.Info("cache warm-up completed",
		zap.Int("found", found),
		zap.Int("failed", failed),
	)

	return results
}

func (s *WarmupService) warm(ctx context.Context, title domain.LookupRequest) WarmResult {
	start := time.Now()
	result := WarmResult{Type: title.Type, Name: title.Name}

	media, err := s.search.Search(ctx, title.Type, title.Name)
	result.Duration = time.Since(start)

	switch {
	case err != nil:
		result.Outcome = metrics.OutcomeError
		result.Error = err
		s.logger.Warn("warm-up lookup failed",
			zap.String("type", title.Type.String()),
			zap.String("name", title.Name),
			zap.Error(err),
		)
	case media == nil:
		result.Outcome = metrics.OutcomeNotFound
	default:
		result.Outcome = metrics.OutcomeFound
	}

	return result
}
