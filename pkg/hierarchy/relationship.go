package hierarchy

import (
	"strings"
)

// Separator joins the child and parent components of a persisted
// relationship value. Node names must never contain this character; the
// codec performs no escaping.
const Separator = ":"

// Relationship is a directed child->parent inheritance edge between two
// named nodes. Both names are upper-cased at construction; a Relationship
// is immutable once built and two relationships are the same edge iff both
// components match exactly.
type Relationship struct {
	Child  string `json:"child"`
	Parent string `json:"parent"`
}

// NewRelationship builds an edge from a child and parent name, normalizing
// both to upper case.
func NewRelationship(child, parent string) Relationship {
	return Relationship{
		Child:  strings.ToUpper(child),
		Parent: strings.ToUpper(parent),
	}
}

// String returns the persisted wire form, CHILD:PARENT.
func (r Relationship) String() string {
	return r.Child + Separator + r.Parent
}

// Equal reports whether both components of the two edges match.
func (r Relationship) Equal(other Relationship) bool {
	return r.Child == other.Child && r.Parent == other.Parent
}
