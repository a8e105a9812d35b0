package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"media-search-service/internal/domain"
	"media-search-service/internal/metrics"
)

func TestWarmupService_WarmAll(t *testing.T) {
	p := &fakeProvider{titles: map[string]*domain.Media{"The Matrix": matrix}}
	svc := newTestService(p)

	titles := []domain.LookupRequest{
		{Type: domain.MediaTypeMovie, Name: "The Matrix"},
		{Type: domain.MediaTypeMovie, Name: "qwertyuiop"},
		{Type: domain.MediaTypeMovie, Name: "x"},
	}
	warmup := NewWarmupService(svc, titles, 2, zap.NewNop())

	results := warmup.WarmAll(context.Background())

	require.Len(t, results, 3)
	assert.Equal(t, metrics.OutcomeFound, results[0].Outcome)
	assert.Equal(t, "The Matrix", results[0].Name)
	assert.Equal(t, metrics.OutcomeNotFound, results[1].Outcome)
	assert.Equal(t, metrics.OutcomeError, results[2].Outcome)
	var invalid *domain.InvalidInputError
	assert.ErrorAs(t, results[2].Error, &invalid)

	// Warmed titles are now served from the cache.
	calls := p.calls.Load()
	_, err := svc.Search(context.Background(), domain.MediaTypeMovie, "the matrix")
	require.NoError(t, err)
	assert.Equal(t, calls, p.calls.Load())
}

func TestWarmupService_BoundedConcurrency(t *testing.T) {
	var inFlight, peak atomic.Int32
	p := &trackingProvider{inFlight: &inFlight, peak: &peak}

	svc := NewSearchService(p, newTestLookupNoStore(), zap.NewNop())
	titles := make([]domain.LookupRequest, 8)
	for i := range titles {
		titles[i] = domain.LookupRequest{Type: domain.MediaTypeMovie, Name: string(rune('a'+i)) + "title"}
	}

	NewWarmupService(svc, titles, 2, zap.NewNop()).WarmAll(context.Background())

	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestWarmupService_DefaultConcurrency(t *testing.T) {
	w := NewWarmupService(nil, nil, 0, zap.NewNop())

	assert.Equal(t, defaultWarmupConcurrency, w.concurrency)
	assert.Empty(t, w.Titles())
}

type trackingProvider struct {
	inFlight *atomic.Int32
	peak     *atomic.Int32
}

func (p *trackingProvider) Lookup(_ context.Context, _ domain.MediaType, name string) (*domain.Media, error) {
	n := p.inFlight.Add(1)
	defer p.inFlight.Add(-1)
	for {
		old := p.peak.Load()
		if n <= old || p.peak.CompareAndSwap(old, n) {
			break
		}
	}
	time.Sleep(20 * time.Millisecond)

	return &domain.Media{ID: name}, nil
}
