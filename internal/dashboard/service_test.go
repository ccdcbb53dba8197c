package dashboard

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sky-orcamentos/sky-orcamentos/internal/shared"
)

type stubRepo struct {
	queries atomic.Int64
	counts  map[string]int
}

func (s *stubRepo) CountActive(ctx context.Context, scope shared.Scope, table string) (int, error) {
	s.queries.Add(1)
	return s.counts[table], nil
}

func (s *stubRepo) TotalsByStatus(ctx context.Context, scope shared.Scope) ([]StatusTotal, error) {
	s.queries.Add(1)
	return []StatusTotal{
		{Status: "rascunho", Count: 2, Total: 150},
		{Status: "aprovado", Count: 3, Total: 900.50},
	}, nil
}

func (s *stubRepo) MonthlyApproved(ctx context.Context, scope shared.Scope, months int) ([]MonthlyTotal, error) {
	s.queries.Add(1)
	return []MonthlyTotal{{Month: "2026-07", Total: 300}, {Month: "2026-08", Total: 600.50}}, nil
}

func (s *stubRepo) TopClients(ctx context.Context, scope shared.Scope, limit int) ([]ClientTotal, error) {
	s.queries.Add(1)
	id := int64(1)
	return []ClientTotal{{ClientID: &id, ClientName: "João Silva", Total: 900.50}}, nil
}

func newTestCache(t *testing.T, ttl time.Duration) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, ttl), mr
}

func testScope() shared.Scope {
	return shared.Scope{WorkspaceID: 7, UserID: 1, Level: shared.LevelViewer}
}

func TestSummaryAggregatesAllQueries(t *testing.T) {
	repo := &stubRepo{counts: map[string]int{
		"clientes": 4, "produtos_servicos": 10, "categorias": 3, "orcamentos": 5,
	}}
	cache, _ := newTestCache(t, time.Minute)
	svc := NewService(repo, cache)

	summary, err := svc.Summary(context.Background(), testScope())
	require.NoError(t, err)

	assert.Equal(t, 4, summary.Clients)
	assert.Equal(t, 10, summary.Products)
	assert.Equal(t, 3, summary.Categories)
	assert.Equal(t, 5, summary.Quotes)
	assert.Len(t, summary.TotalsByStatus, 2)
	assert.Equal(t, "2026-08", summary.MonthlySeries[1].Month)
	require.Len(t, summary.TopClients, 1)
	assert.Equal(t, "João Silva", summary.TopClients[0].ClientName)
	assert.EqualValues(t, 7, repo.queries.Load(), "four counts plus three aggregates")
}

func TestSummaryIsCachedPerWorkspace(t *testing.T) {
	repo := &stubRepo{counts: map[string]int{"clientes": 4}}
	cache, mr := newTestCache(t, time.Minute)
	svc := NewService(repo, cache)

	first, err := svc.Summary(context.Background(), testScope())
	require.NoError(t, err)
	queried := repo.queries.Load()

	second, err := svc.Summary(context.Background(), testScope())
	require.NoError(t, err)
	assert.Equal(t, first.Clients, second.Clients)
	assert.Equal(t, queried, repo.queries.Load(), "cache hit skips the repository")
	assert.True(t, mr.Exists("dashboard:summary:7"))

	other := testScope()
	other.WorkspaceID = 8
	_, err = svc.Summary(context.Background(), other)
	require.NoError(t, err)
	assert.Greater(t, repo.queries.Load(), queried, "other workspaces are cached separately")
}

func TestSummaryRebuildsAfterTTL(t *testing.T) {
	repo := &stubRepo{counts: map[string]int{"clientes": 4}}
	cache, mr := newTestCache(t, time.Minute)
	svc := NewService(repo, cache)

	_, err := svc.Summary(context.Background(), testScope())
	require.NoError(t, err)
	queried := repo.queries.Load()

	mr.FastForward(2 * time.Minute)

	_, err = svc.Summary(context.Background(), testScope())
	require.NoError(t, err)
	assert.Greater(t, repo.queries.Load(), queried)
}

func TestFetchSummaryWithoutRedisCallsLoader(t *testing.T) {
	var cache *Cache
	calls := 0
	summary, err := cache.FetchSummary(context.Background(), 7, func(context.Context) (*Summary, error) {
		calls++
		return &Summary{Clients: 1}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Clients)
	assert.Equal(t, 1, calls)
}

func TestFetchSummaryRecoversFromCorruptEntry(t *testing.T) {
	cache, mr := newTestCache(t, time.Minute)
	require.NoError(t, mr.Set("dashboard:summary:7", "{not json"))

	summary, err := cache.FetchSummary(context.Background(), 7, func(context.Context) (*Summary, error) {
		return &Summary{Clients: 2}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Clients)
}
