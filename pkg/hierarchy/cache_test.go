package hierarchy

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeReader serves canned raw values per context and counts fetches.
type fakeReader struct {
	mu     sync.Mutex
	values map[string][]string
	err    error
	calls  int
}

func (f *fakeReader) FetchEdges(ctx context.Context, kind Kind, contextID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.values[contextID], nil
}

func (f *fakeReader) fetchCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newTestCache(reader *fakeReader) *GraphCache {
	return NewGraphCache(KindRole, reader, nil, nil)
}

func TestGetGraphLazyLoad(t *testing.T) {
	reader := &fakeReader{values: map[string][]string{
		"": {"R2:R1", "R3:R1"},
	}}
	cache := newTestCache(reader)

	g, err := cache.GetGraph(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 2, g.EdgeCount())
	assert.Equal(t, 1, reader.fetchCalls())

	// Second read is served from cache.
	again, err := cache.GetGraph(context.Background(), "")
	require.NoError(t, err)
	assert.Same(t, g, again)
	assert.Equal(t, 1, reader.fetchCalls())
}

func TestGetGraphSkipsMalformedValues(t *testing.T) {
	reader := &fakeReader{values: map[string][]string{
		"": {"R2:R1", "garbage", "R3:R1"},
	}}
	cache := newTestCache(reader)

	g, err := cache.GetGraph(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 2, g.EdgeCount())
	assert.True(t, g.HasEdge("R2", "R1"))
	assert.True(t, g.HasEdge("R3", "R1"))
}

func TestGetGraphContextsAreIndependent(t *testing.T) {
	reader := &fakeReader{values: map[string][]string{
		"":        {"R2:R1"},
		"tenantA": {"A2:A1"},
	}}
	cache := newTestCache(reader)

	def, err := cache.GetGraph(context.Background(), "")
	require.NoError(t, err)
	tenant, err := cache.GetGraph(context.Background(), "tenantA")
	require.NoError(t, err)

	assert.True(t, def.HasEdge("R2", "R1"))
	assert.False(t, def.HasEdge("A2", "A1"))
	assert.True(t, tenant.HasEdge("A2", "A1"))
	assert.False(t, tenant.HasEdge("R2", "R1"))
}

func TestInvalidateForcesReload(t *testing.T) {
	reader := &fakeReader{values: map[string][]string{
		"": {"R2:R1"},
	}}
	cache := newTestCache(reader)

	before, err := cache.GetGraph(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 1, reader.fetchCalls())

	cache.Invalidate("")

	after, err := cache.GetGraph(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 2, reader.fetchCalls())

	// Unchanged store reloads an equal edge set.
	assert.ElementsMatch(t, before.Edges(), after.Edges())
}

func TestInvalidateAll(t *testing.T) {
	reader := &fakeReader{values: map[string][]string{
		"":        {"R2:R1"},
		"tenantA": {"A2:A1"},
	}}
	cache := newTestCache(reader)

	_, err := cache.GetGraph(context.Background(), "")
	require.NoError(t, err)
	_, err = cache.GetGraph(context.Background(), "tenantA")
	require.NoError(t, err)
	assert.Equal(t, 2, reader.fetchCalls())

	cache.InvalidateAll()

	_, err = cache.GetGraph(context.Background(), "")
	require.NoError(t, err)
	_, err = cache.GetGraph(context.Background(), "tenantA")
	require.NoError(t, err)
	assert.Equal(t, 4, reader.fetchCalls())
}

func TestGetGraphStoreFailurePropagates(t *testing.T) {
	storeErr := errors.New("directory unreachable")
	reader := &fakeReader{err: storeErr}
	cache := newTestCache(reader)

	_, err := cache.GetGraph(context.Background(), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, storeErr)

	// Nothing was published: a later successful fetch loads fresh data.
	reader.mu.Lock()
	reader.err = nil
	reader.values = map[string][]string{"": {"R2:R1"}}
	reader.mu.Unlock()

	g, err := cache.GetGraph(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 1, g.EdgeCount())
}

func TestGetGraphCorruptStoreIsIntegrityError(t *testing.T) {
	reader := &fakeReader{values: map[string][]string{
		"": {"A:B", "B:A"},
	}}
	cache := newTestCache(reader)

	_, err := cache.GetGraph(context.Background(), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCycleDetected)
}

func TestGetGraphConcurrentColdLoad(t *testing.T) {
	reader := &fakeReader{values: map[string][]string{
		"": {"R2:R1", "R3:R1", "R4:R2"},
	}}
	cache := newTestCache(reader)

	const workers = 32
	graphs := make([]*Graph, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			g, err := cache.GetGraph(context.Background(), "")
			assert.NoError(t, err)
			graphs[i] = g
		}(i)
	}
	wg.Wait()

	// Racing loads may build redundantly, but every caller sees the same
	// edge set.
	want := graphs[0].Edges()
	for _, g := range graphs[1:] {
		require.NotNil(t, g)
		assert.ElementsMatch(t, want, g.Edges())
	}
}

func TestCacheKey(t *testing.T) {
	cache := newTestCache(&fakeReader{})
	assert.Equal(t, "ROLE", cache.cacheKey(""))
	assert.Equal(t, "ROLE:tenantA", cache.cacheKey("tenantA"))
}
