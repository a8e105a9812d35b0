// Package service provides application use cases.
package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"media-search-service/internal/domain"
	"media-search-service/internal/infra/cache"
)

// minNameLength is the shortest trimmed name worth sending upstream.
const minNameLength = 2

// SearchService resolves a title by type and name, going to the provider
// only when no memoized resolution exists.
type SearchService struct {
	provider domain.MediaProvider
	lookup   *cache.Lookup[domain.Media]
	logger   *zap.Logger
}

// NewSearchService creates a new SearchService.
func NewSearchService(provider domain.MediaProvider, lookup *cache.Lookup[domain.Media], logger *zap.Logger) *SearchService {
	return &SearchService{
		provider: provider,
		lookup:   lookup,
		logger:   logger,
	}
}

// Search returns the best match for name, or nil when the provider has no
// such title. Invalid input fails with *domain.InvalidInputError before the
// cache or provider is touched.
func (s *SearchService) Search(ctx context.Context, mediaType domain.MediaType, name string) (*domain.Media, error) {
	trimmed, err := validate(mediaType, name)
	if err != nil {
		return nil, err
	}

	key := CacheKey(mediaType, trimmed)

	s.logger.Debug("searching media",
		zap.String("type", mediaType.String()),
		zap.String("name", trimmed),
		zap.String("key", key),
	)

	media, err := s.lookup.GetOrResolve(ctx, key, func(ctx context.Context) (*domain.Media, error) {
		return s.provider.Lookup(ctx, mediaType, trimmed)
	})
	if err != nil {
		s.logger.Error("search failed",
			zap.String("type", mediaType.String()),
			zap.String("name", trimmed),
			zap.Error(err),
		)
		return nil, err
	}

	return media, nil
}

// CacheKey derives the memoization key: "<type>_<name>" with the name
// lowercased and its spaces removed, so "The Matrix" and "the matrix" share one entry.
func CacheKey(mediaType domain.MediaType, name string) string {
	return mediaType.String() + "_" + strings.ReplaceAll(strings.ToLower(name), " ", "")
}

func validate(mediaType domain.MediaType, name string) (string, error) {
	if !mediaType.IsValid() {
		return "", domain.NewInvalidInputError("unsupported media type", mediaType.String())
	}
	if name == "" {
		return "", domain.NewInvalidInputError("name is empty", name)
	}

	trimmed := strings.TrimSpace(name)
	if utf8.RuneCountInString(trimmed) < minNameLength {
		return "", domain.NewInvalidInputError("name has too few characters", trimmed)
	}

	return trimmed, nil
}
