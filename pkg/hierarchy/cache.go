package hierarchy

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// GraphCache owns the cached graphs for one hierarchy kind, keyed by
// context. Entries are created lazily on first read and removed by
// Invalidate after a committed mutation; there is no eviction policy
// because the number of contexts is small and bounded by deployment
// topology.
//
// Concurrent callers racing through a cold load each fetch and build
// redundantly; the last writer's graph wins. That is safe because a build
// is a pure function of the persisted edge set, and it avoids blocking all
// readers behind a rare, fast load.
//
// There is no cross-process invalidation: processes sharing a store observe
// each other's mutations only after their own entry is invalidated or
// refreshed. See Refresher.
type GraphCache struct {
	kind    Kind
	reader  EdgeReader
	log     logrus.FieldLogger
	metrics *Metrics

	mu     sync.RWMutex
	graphs map[string]*Graph
	locks  map[string]*sync.Mutex
}

// NewGraphCache creates a cache for one hierarchy kind backed by the given
// reader. The logger and metrics may be nil.
func NewGraphCache(kind Kind, reader EdgeReader, log logrus.FieldLogger, metrics *Metrics) *GraphCache {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &GraphCache{
		kind:    kind,
		reader:  reader,
		log:     log.WithField("kind", kind.String()),
		metrics: metrics,
		graphs:  make(map[string]*Graph),
		locks:   make(map[string]*sync.Mutex),
	}
}

// Kind returns the hierarchy kind this cache serves.
func (c *GraphCache) Kind() Kind {
	return c.kind
}

// GetGraph returns the graph for a context, loading it from the store on
// first access. A failed load publishes nothing and returns the error; an
// unreachable store must never masquerade as an empty hierarchy.
func (c *GraphCache) GetGraph(ctx context.Context, contextID string) (*Graph, error) {
	key := c.cacheKey(contextID)

	c.mu.RLock()
	g := c.graphs[key]
	c.mu.RUnlock()
	if g != nil {
		c.metrics.cacheHit(c.kind)
		return g, nil
	}
	c.metrics.cacheMiss(c.kind)

	g, err := c.load(ctx, contextID)
	if err != nil {
		c.metrics.graphLoadFailed(c.kind)
		return nil, err
	}

	lock := c.keyLock(key)
	lock.Lock()
	c.mu.Lock()
	c.graphs[key] = g
	c.mu.Unlock()
	lock.Unlock()

	c.metrics.graphLoaded(c.kind, contextID, g)
	return g, nil
}

// Invalidate removes a context's entry so the next GetGraph reloads from
// the store. Called after every successfully committed mutation.
func (c *GraphCache) Invalidate(contextID string) {
	key := c.cacheKey(contextID)

	lock := c.keyLock(key)
	lock.Lock()
	c.mu.Lock()
	delete(c.graphs, key)
	c.mu.Unlock()
	lock.Unlock()

	c.metrics.cacheInvalidated(c.kind)
	c.log.WithField("context", contextID).Debug("graph cache entry invalidated")
}

// InvalidateAll drops every cached context. Used by the periodic refresher
// to bound cross-process staleness.
func (c *GraphCache) InvalidateAll() {
	c.mu.Lock()
	n := len(c.graphs)
	c.graphs = make(map[string]*Graph)
	c.mu.Unlock()

	for i := 0; i < n; i++ {
		c.metrics.cacheInvalidated(c.kind)
	}
}

// load fetches the persisted edge set, decodes it and builds a fresh graph.
func (c *GraphCache) load(ctx context.Context, contextID string) (*Graph, error) {
	raws, err := c.reader.FetchEdges(ctx, c.kind, contextID)
	if err != nil {
		return nil, fmt.Errorf("fetch edges for %s context %q: %w", c.kind, contextID, err)
	}
	edges := DecodeRelationships(raws, c.log)
	g, err := BuildGraph(edges)
	if err != nil {
		return nil, fmt.Errorf("build graph for %s context %q: %w", c.kind, contextID, err)
	}
	c.log.WithFields(logrus.Fields{
		"context":  contextID,
		"edges":    g.EdgeCount(),
		"vertices": g.VertexCount(),
	}).Info("loaded hierarchy graph")
	return g, nil
}

// cacheKey builds the composite key, omitting the context segment for the
// default tenant.
func (c *GraphCache) cacheKey(contextID string) string {
	key := c.kind.String()
	if contextID != "" {
		key += Separator + contextID
	}
	return key
}

// keyLock returns the lock serializing cache writes for one context key,
// creating it on first use. Different contexts never contend.
func (c *GraphCache) keyLock(key string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	lock, ok := c.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		c.locks[key] = lock
	}
	return lock
}
