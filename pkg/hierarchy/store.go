package hierarchy

import (
	"context"

	"github.com/platinummonkey/lattice/pkg/audit"
)

// EdgeReader fetches the persisted edge set for a hierarchy. It is consulted
// only during a cache load. An empty store yields an empty slice, not an
// error; a store failure propagates unchanged so that an unreachable store
// is never mistaken for an empty hierarchy.
type EdgeReader interface {
	// FetchEdges returns all directly persisted relationship values for
	// the given kind and context, encoded as CHILD:PARENT.
	FetchEdges(ctx context.Context, kind Kind, contextID string) ([]string, error)
}

// EdgeWriter applies a batch of attribute mutations to the persisted edge
// set. The audit context, when non-nil, is attached to the write and
// otherwise ignored by the core. A failed write must leave the persisted
// set unchanged; the caller will not invalidate its cache on failure.
type EdgeWriter interface {
	ApplyMutation(ctx context.Context, kind Kind, contextID string, batch []Mutation, ac *audit.Context) error
}

// EdgeStore combines reading and writing of persisted edges.
type EdgeStore interface {
	EdgeReader
	EdgeWriter
}
