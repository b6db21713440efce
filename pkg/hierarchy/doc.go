// Package hierarchy is the hierarchy-management core of the Lattice RBAC
// engine.
//
// # Overview
//
// Role-based access control leans on four directed-acyclic hierarchies:
// RBAC roles, administrative roles, user organizational units and
// permission organizational units. This package maintains an in-memory
// graph per (kind, context) pair, loads it lazily from a persisted edge
// set, and provides the traversal and mutation-validation primitives the
// rest of the engine (session activation, permission checks, delegated
// administration) builds on.
//
// # Data model
//
// An edge is a Relationship: an ordered (child, parent) pair of node names,
// upper-cased at construction. Nodes have no entity of their own; they are
// the implicit vertices referenced by edges. An edge reads "child inherits
// from parent". Graphs must stay acyclic: self-loops are always illegal,
// duplicate edges collapse, and a persisted edge set containing a cycle is
// a data-integrity failure that aborts the load rather than producing a
// broken graph.
//
// The wire form of an edge is the UTF-8 string "CHILD:PARENT". Node names
// never contain the separator; no escaping is performed. Malformed stored
// values are logged and skipped during a load, never fatal to the whole
// batch.
//
// # Components
//
//   1. Relationship codec: encode/decode edges and build attribute-mutation
//      batches (add/replace/delete value) for the store.
//   2. Hier: a unit of work bundling a kind, an operation and the edges of
//      one mutation request.
//   3. GraphCache: one per kind, caching an immutable Graph per context
//      with lazy loads and post-commit invalidation.
//   4. Service: traversal (ascendants, descendants, children, parents,
//      inherited closure) and relationship validation over cache
//      snapshots, plus the mutation path.
//   5. Engine: the composition root wiring one Service per kind over a
//      shared store.
//
// # Reading
//
// Runtime callers only read. Obtaining a graph may block while a cold
// entry loads; traversing one never does, because published graphs are
// immutable and every rebuild creates a fresh Graph:
//
//	engine := hierarchy.NewEngine(store, hierarchy.DefaultServiceConfig())
//
//	// All roles activated directly or through inheritance.
//	closure, err := engine.Role().InheritedClosure(ctx, sessionRoles, tenant)
//
//	// Everything below ENGINEERING in the user OU tree.
//	subordinates, err := engine.UserOU().Descendants(ctx, "ENGINEERING", tenant)
//
// Unknown names yield empty sets, not errors. Traversals are iterative and
// bounded by MaxTraversalDepth; overrunning the bound signals corruption
// and surfaces ErrDepthExceeded.
//
// # Mutating
//
// Administrative callers validate, persist, then invalidate:
//
//	err := engine.Role().ValidateRelationship(ctx, "ENGINEER", "EMPLOYEE", tenant, false)
//	if err != nil {
//		var verr *hierarchy.ValidationError
//		if errors.As(err, &verr) {
//			// verr.Reason is one of self_relationship, relationship_exists,
//			// relationship_not_found, relationship_cycle
//		}
//		return err
//	}
//
//	hier := hierarchy.NewHier(hierarchy.KindRole, hierarchy.OpAdd)
//	hier.AddRelationship("ENGINEER", "EMPLOYEE")
//	err = engine.Role().Apply(ctx, hier, tenant, audit.New("admin1", "role.addInheritance"))
//
// Apply invalidates the context's cache entry only after the write
// commits; a failed write leaves the cache untouched. Validation is
// advisory: the validate-persist sequence is not atomic, and the store is
// the final arbiter.
//
// # Consistency
//
// Within one process, any read after a committed mutation observes the new
// edge set. Across processes sharing a store there is no invalidation
// protocol: each process caches independently and converges eventually.
// Deployments that need a staleness bound run a Refresher, which drops all
// cached graphs on a cron schedule.
//
// # Related packages
//
//   - pkg/store: edge store implementations (memory, SQL, Redis)
//   - pkg/audit: audit context attached to mutations
//   - pkg/config: environment-driven configuration
package hierarchy
