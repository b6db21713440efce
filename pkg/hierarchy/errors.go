package hierarchy

import (
	"errors"
	"fmt"
)

var (
	// ErrCycleDetected indicates the persisted edge set for a context
	// contains a cycle. This is a data-integrity failure: the graph is
	// never silently repaired.
	ErrCycleDetected = errors.New("hierarchy: cycle detected in edge set")

	// ErrDepthExceeded indicates a traversal overran the fixed depth
	// bound, which should be impossible on a well-formed graph and points
	// at corruption.
	ErrDepthExceeded = errors.New("hierarchy: traversal exceeded maximum depth")

	// ErrKindMismatch indicates a unit of work was submitted to a service
	// bound to a different hierarchy kind.
	ErrKindMismatch = errors.New("hierarchy: unit of work kind does not match service kind")
)

// Reason classifies why a relationship failed validation. Callers use it to
// present a precise message; "already exists" and "would create a cycle"
// are deliberately distinct.
type Reason string

const (
	// ReasonSelfRelationship rejects an edge whose child and parent are
	// the same node.
	ReasonSelfRelationship Reason = "self_relationship"

	// ReasonNotFound rejects a mustExist check for an edge that is not in
	// the graph.
	ReasonNotFound Reason = "relationship_not_found"

	// ReasonExists rejects adding an edge that is already in the graph.
	ReasonExists Reason = "relationship_exists"

	// ReasonCycle rejects adding an edge that would make a node reachable
	// from itself.
	ReasonCycle Reason = "relationship_cycle"
)

// ValidationError reports a rejected relationship with the specific reason.
type ValidationError struct {
	Reason Reason
	Child  string
	Parent string
}

func (e *ValidationError) Error() string {
	switch e.Reason {
	case ReasonSelfRelationship:
		return fmt.Sprintf("hierarchy: node %q may not relate to itself", e.Child)
	case ReasonNotFound:
		return fmt.Sprintf("hierarchy: relationship %s%s%s does not exist", e.Child, Separator, e.Parent)
	case ReasonExists:
		return fmt.Sprintf("hierarchy: relationship %s%s%s already exists", e.Child, Separator, e.Parent)
	case ReasonCycle:
		return fmt.Sprintf("hierarchy: relationship %s%s%s would create a cycle", e.Child, Separator, e.Parent)
	default:
		return fmt.Sprintf("hierarchy: relationship %s%s%s rejected", e.Child, Separator, e.Parent)
	}
}

// MalformedRelationshipError reports a stored value that could not be
// decoded. Decoding a batch skips these records rather than failing the
// whole load.
type MalformedRelationshipError struct {
	Raw string
}

func (e *MalformedRelationshipError) Error() string {
	return fmt.Sprintf("hierarchy: malformed relationship value %q", e.Raw)
}
