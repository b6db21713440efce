package hierarchy

// Kind identifies which logical hierarchy a graph belongs to. Each kind has
// its own independent graph per context; kinds never share edges or cache
// slots.
type Kind string

const (
	// KindRole is the RBAC role inheritance hierarchy.
	KindRole Kind = "ROLE"

	// KindAdminRole is the administrative role inheritance hierarchy.
	KindAdminRole Kind = "AROLE"

	// KindUserOU is the user organizational unit hierarchy.
	KindUserOU Kind = "USO"

	// KindPermOU is the permission organizational unit hierarchy.
	KindPermOU Kind = "PSO"
)

// String returns the kind's stable identifier, used in cache keys and store
// partitions.
func (k Kind) String() string {
	return string(k)
}

// Op specifies whether a unit of work adds, replaces or removes
// relationships.
type Op string

const (
	// OpAdd adds new relationship values.
	OpAdd Op = "ADD"

	// OpMod replaces existing relationship values.
	OpMod Op = "MOD"

	// OpRem removes existing relationship values.
	OpRem Op = "REM"
)

// Hier is a unit of work bundling a hierarchy kind, an operation and the
// edges affected by one mutation request. It performs no validation; that
// is the service's responsibility before the mutation is committed. A Hier
// is constructed by the caller, consumed once by Service.Apply, then
// discarded.
type Hier struct {
	kind          Kind
	op            Op
	relationships []Relationship
}

// NewHier creates an empty unit of work for the given kind and operation.
func NewHier(kind Kind, op Op) *Hier {
	return &Hier{kind: kind, op: op}
}

// Kind returns the hierarchy kind this unit of work targets.
func (h *Hier) Kind() Kind {
	return h.kind
}

// Op returns the operation to perform.
func (h *Hier) Op() Op {
	return h.op
}

// AddRelationship appends an edge, preserving insertion order.
func (h *Hier) AddRelationship(child, parent string) {
	h.relationships = append(h.relationships, NewRelationship(child, parent))
}

// Relationships returns the accumulated edges in insertion order. The
// returned slice is a copy; mutating it does not affect the unit of work.
func (h *Hier) Relationships() []Relationship {
	out := make([]Relationship, len(h.relationships))
	copy(out, h.relationships)
	return out
}
