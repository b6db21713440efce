package hierarchy

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/lattice/pkg/audit"
)

// ServiceConfig tunes a hierarchy Service.
type ServiceConfig struct {
	// ClosureCacheSize caps the inherited-closure memo cache. Zero
	// disables memoization.
	ClosureCacheSize int

	// ClosureCacheTTL bounds how long a memoized closure may be served.
	// Zero disables memoization.
	ClosureCacheTTL time.Duration

	// Logger receives structured load and mutation logs. Nil falls back
	// to the standard logger.
	Logger logrus.FieldLogger

	// Metrics receives cache and validation metrics. May be nil.
	Metrics *Metrics
}

// DefaultServiceConfig returns the settings used when no configuration is
// supplied.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		ClosureCacheSize: 1024,
		ClosureCacheTTL:  5 * time.Minute,
	}
}

// Service exposes the traversal, validation and mutation operations for one
// hierarchy kind. Traversals resolve a graph snapshot through the kind's
// GraphCache and operate purely on that snapshot; mutations go through the
// EdgeWriter and invalidate the cache only after the write commits.
//
// Validation is advisory: the service does not make the validate-persist
// sequence atomic. The caller validates, persists, and the cache
// invalidation makes the change visible to subsequent reads in this
// process.
type Service struct {
	kind     Kind
	cache    *GraphCache
	writer   EdgeWriter
	log      logrus.FieldLogger
	metrics  *Metrics
	closures *lru.LRU[string, []string]
}

// NewService creates the service for one hierarchy kind over the given
// store.
func NewService(kind Kind, store EdgeStore, cfg ServiceConfig) *Service {
	log := cfg.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := &Service{
		kind:    kind,
		cache:   NewGraphCache(kind, store, log, cfg.Metrics),
		writer:  store,
		log:     log.WithField("kind", kind.String()),
		metrics: cfg.Metrics,
	}
	if cfg.ClosureCacheSize > 0 && cfg.ClosureCacheTTL > 0 {
		s.closures = lru.NewLRU[string, []string](cfg.ClosureCacheSize, nil, cfg.ClosureCacheTTL)
	}
	return s
}

// Kind returns the hierarchy kind this service operates on.
func (s *Service) Kind() Kind {
	return s.kind
}

// Cache returns the graph cache owned by this service.
func (s *Service) Cache() *GraphCache {
	return s.cache
}

// Descendants returns all nodes that have name as an ascendant. Unknown
// names yield an empty set.
func (s *Service) Descendants(ctx context.Context, name, contextID string) (NameSet, error) {
	g, err := s.cache.GetGraph(ctx, contextID)
	if err != nil {
		return nil, err
	}
	return g.Descendants(name)
}

// Ascendants returns all nodes reachable from name by following
// child->parent edges. Unknown names yield an empty set.
func (s *Service) Ascendants(ctx context.Context, name, contextID string) (NameSet, error) {
	g, err := s.cache.GetGraph(ctx, contextID)
	if err != nil {
		return nil, err
	}
	return g.Ascendants(name)
}

// Children returns the direct children of a node.
func (s *Service) Children(ctx context.Context, name, contextID string) (NameSet, error) {
	g, err := s.cache.GetGraph(ctx, contextID)
	if err != nil {
		return nil, err
	}
	return g.Children(name), nil
}

// Parents returns the direct parents of a node.
func (s *Service) Parents(ctx context.Context, name, contextID string) (NameSet, error) {
	g, err := s.cache.GetGraph(ctx, contextID)
	if err != nil {
		return nil, err
	}
	return g.Parents(name), nil
}

// ChildCount returns the number of direct children of a node.
func (s *Service) ChildCount(ctx context.Context, name, contextID string) (int, error) {
	g, err := s.cache.GetGraph(ctx, contextID)
	if err != nil {
		return 0, err
	}
	return g.ChildCount(name), nil
}

// InheritedClosure returns the union of every input name and its
// ascendants, collapsed case-insensitively and sorted. Session activation
// calls this on every role set, so results are memoized until the next
// mutation or TTL expiry.
func (s *Service) InheritedClosure(ctx context.Context, names []string, contextID string) ([]string, error) {
	normalized := make([]string, 0, len(names))
	seen := make(NameSet, len(names))
	for _, name := range names {
		upper := strings.ToUpper(name)
		if seen.Contains(upper) {
			continue
		}
		seen.Add(upper)
		normalized = append(normalized, upper)
	}
	sort.Strings(normalized)

	key := contextID + "\x00" + strings.Join(normalized, Separator)
	if s.closures != nil {
		if closure, ok := s.closures.Get(key); ok {
			out := make([]string, len(closure))
			copy(out, closure)
			return out, nil
		}
	}

	g, err := s.cache.GetGraph(ctx, contextID)
	if err != nil {
		return nil, err
	}
	closure := make(NameSet)
	for _, name := range normalized {
		closure.Add(name)
		ascendants, err := g.Ascendants(name)
		if err != nil {
			return nil, err
		}
		for ascendant := range ascendants {
			closure.Add(ascendant)
		}
	}
	out := closure.Values()

	if s.closures != nil {
		s.closures.Add(key, out)
	}
	return out, nil
}

// ValidateRelationship checks the legality of a child-parent relationship
// against the current graph snapshot. Three checks run in order, first
// failure wins:
//
//  1. child may not equal parent (case-insensitive), regardless of
//     mustExist;
//  2. with mustExist, the edge must already be present;
//  3. without mustExist, the edge must be absent and adding it must not
//     make child reachable from itself.
//
// Rejections are *ValidationError values with a distinct Reason per case.
func (s *Service) ValidateRelationship(ctx context.Context, child, parent, contextID string, mustExist bool) error {
	if strings.EqualFold(child, parent) {
		return s.reject(&ValidationError{Reason: ReasonSelfRelationship, Child: strings.ToUpper(child), Parent: strings.ToUpper(parent)})
	}

	g, err := s.cache.GetGraph(ctx, contextID)
	if err != nil {
		return err
	}

	childUpper := strings.ToUpper(child)
	parentUpper := strings.ToUpper(parent)

	if mustExist {
		if !g.HasEdge(childUpper, parentUpper) {
			return s.reject(&ValidationError{Reason: ReasonNotFound, Child: childUpper, Parent: parentUpper})
		}
		return nil
	}

	if g.HasEdge(childUpper, parentUpper) {
		return s.reject(&ValidationError{Reason: ReasonExists, Child: childUpper, Parent: parentUpper})
	}
	descendants, err := g.Descendants(childUpper)
	if err != nil {
		return err
	}
	if descendants.Contains(parentUpper) {
		return s.reject(&ValidationError{Reason: ReasonCycle, Child: childUpper, Parent: parentUpper})
	}
	return nil
}

func (s *Service) reject(verr *ValidationError) error {
	s.metrics.validationRejected(s.kind, verr.Reason)
	return verr
}

// Apply persists a unit of work through the edge writer and, only after the
// write commits, invalidates the context's cached graph and the closure
// memo so subsequent reads observe the change. A failed write leaves the
// cache untouched.
func (s *Service) Apply(ctx context.Context, hier *Hier, contextID string, ac *audit.Context) error {
	if hier.Kind() != s.kind {
		return fmt.Errorf("applying %s unit of work to %s service: %w", hier.Kind(), s.kind, ErrKindMismatch)
	}

	batch := BuildMutationBatch(hier.Relationships(), hier.Op())
	if err := s.writer.ApplyMutation(ctx, s.kind, contextID, batch, ac); err != nil {
		return fmt.Errorf("apply %s mutation for context %q: %w", hier.Op(), contextID, err)
	}

	s.cache.Invalidate(contextID)
	if s.closures != nil {
		s.closures.Purge()
	}
	s.log.WithFields(logrus.Fields{
		"context": contextID,
		"op":      string(hier.Op()),
		"edges":   len(batch),
	}).Info("hierarchy mutation applied")
	return nil
}
