package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"media-search-service/internal/domain"
	"media-search-service/internal/infra/cache"
)

// fakeProvider counts lookups and answers from a fixed table.
type fakeProvider struct {
	calls  atomic.Int32
	titles map[string]*domain.Media
	err    error
	delay  time.Duration
	names  []string
	mu     sync.Mutex
}

func (p *fakeProvider) Lookup(ctx context.Context, mediaType domain.MediaType, name string) (*domain.Media, error) {
	p.calls.Add(1)
	p.mu.Lock()
	p.names = append(p.names, mediaType.String()+":"+name)
	p.mu.Unlock()

	if p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if p.err != nil {
		return nil, p.err
	}

	return p.titles[name], nil
}

func newTestService(p *fakeProvider) *SearchService {
	store := cache.NewMemoryCache(zap.NewNop(), "test")
	lookup := cache.NewLookup[domain.Media](store, cache.LookupConfig{TTL: time.Minute}, zap.NewNop())

	return NewSearchService(p, lookup, zap.NewNop())
}

func newTestLookupNoStore() *cache.Lookup[domain.Media] {
	return cache.NewLookup[domain.Media](nil, cache.LookupConfig{}, zap.NewNop())
}

var matrix = &domain.Media{ID: "tt0133093", Name: "The Matrix", Year: "1999", Runtime: "2.3h"}

func TestCacheKey(t *testing.T) {
	tests := []struct {
		mediaType domain.MediaType
		name      string
		want      string
	}{
		{domain.MediaTypeMovie, "the matri", "movie_thematri"},
		{domain.MediaTypeMovie, "The Matrix", "movie_thematrix"},
		{domain.MediaTypeTVSeries, "Breaking  Bad", "tv-series_breakingbad"},
		{domain.MediaTypeMovie, "Come Along, Do!", "movie_comealong,do!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CacheKey(tt.mediaType, tt.name))
		})
	}
}

func TestSearchService_Search_InvalidInput(t *testing.T) {
	tests := []struct {
		name      string
		mediaType domain.MediaType
		input     string
		message   string
		value     string
	}{
		{"empty name", domain.MediaTypeMovie, "", "name is empty", ""},
		{"single character", domain.MediaTypeMovie, "a", "name has too few characters", "a"},
		{"single character padded", domain.MediaTypeMovie, "  a  ", "name has too few characters", "a"},
		{"whitespace only", domain.MediaTypeTVSeries, "    ", "name has too few characters", ""},
		{"single multibyte rune", domain.MediaTypeMovie, "é", "name has too few characters", "é"},
		{"unknown type", domain.MediaType("episode"), "The Matrix", "unsupported media type", "episode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &fakeProvider{}
			svc := newTestService(p)

			media, err := svc.Search(context.Background(), tt.mediaType, tt.input)

			assert.Nil(t, media)
			var invalid *domain.InvalidInputError
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, tt.message, invalid.Message)
			assert.Equal(t, tt.value, invalid.Value, "the rejected value is reported trimmed")
			assert.Equal(t, int32(0), p.calls.Load(), "provider must not be called for invalid input")
		})
	}
}

func TestSearchService_Search_Found(t *testing.T) {
	p := &fakeProvider{titles: map[string]*domain.Media{"The Matrix": matrix}}
	svc := newTestService(p)

	media, err := svc.Search(context.Background(), domain.MediaTypeMovie, "  The Matrix ")

	require.NoError(t, err)
	require.NotNil(t, media)
	assert.Equal(t, *matrix, *media)
	assert.Equal(t, []string{"movie:The Matrix"}, p.names, "provider receives the trimmed name")
}

func TestSearchService_Search_NotFound(t *testing.T) {
	p := &fakeProvider{}
	svc := newTestService(p)

	media, err := svc.Search(context.Background(), domain.MediaTypeMovie, "qwertyuiop")

	require.NoError(t, err)
	assert.Nil(t, media)
}

func TestSearchService_Search_MemoizesByNormalizedName(t *testing.T) {
	p := &fakeProvider{titles: map[string]*domain.Media{"The Matrix": matrix}}
	svc := newTestService(p)
	ctx := context.Background()

	for _, name := range []string{"The Matrix", "the matrix", "THE MATRIX ", "TheMatrix"} {
		_, err := svc.Search(ctx, domain.MediaTypeMovie, name)
		require.NoError(t, err)
	}

	assert.Equal(t, int32(1), p.calls.Load())
}

func TestSearchService_Search_TypesAreSeparateEntries(t *testing.T) {
	p := &fakeProvider{titles: map[string]*domain.Media{"Fargo": {ID: "tt0116282", Name: "Fargo"}}}
	svc := newTestService(p)
	ctx := context.Background()

	_, err := svc.Search(ctx, domain.MediaTypeMovie, "Fargo")
	require.NoError(t, err)
	_, err = svc.Search(ctx, domain.MediaTypeTVSeries, "Fargo")
	require.NoError(t, err)

	assert.Equal(t, int32(2), p.calls.Load())
}

func TestSearchService_Search_ConcurrentCallersShareOneLookup(t *testing.T) {
	p := &fakeProvider{
		titles: map[string]*domain.Media{"The Matrix": matrix},
		delay:  100 * time.Millisecond,
	}
	svc := newTestService(p)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			media, err := svc.Search(context.Background(), domain.MediaTypeMovie, "The Matrix")
			assert.NoError(t, err)
			assert.Equal(t, matrix.ID, media.ID)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), p.calls.Load())
}

func TestSearchService_Search_UpstreamErrorIsNotMemoized(t *testing.T) {
	upstreamErr := &domain.UpstreamError{Op: "omdb: requesting title", StatusCode: 503}
	p := &fakeProvider{err: upstreamErr}
	svc := newTestService(p)
	ctx := context.Background()

	_, err := svc.Search(ctx, domain.MediaTypeMovie, "The Matrix")
	var target *domain.UpstreamError
	require.ErrorAs(t, err, &target)

	p.err = nil
	p.titles = map[string]*domain.Media{"The Matrix": matrix}

	media, err := svc.Search(ctx, domain.MediaTypeMovie, "The Matrix")
	require.NoError(t, err)
	assert.Equal(t, matrix.ID, media.ID)
	assert.Equal(t, int32(2), p.calls.Load())
}

func TestSearchService_Search_CallerCancelled(t *testing.T) {
	p := &fakeProvider{delay: time.Second}
	svc := newTestService(p)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := svc.Search(ctx, domain.MediaTypeMovie, "The Matrix")

	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}
