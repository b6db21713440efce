package hierarchy

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// MutationOp is the attribute-level operation a single mutation record asks
// the store to perform.
type MutationOp string

const (
	// MutationAdd adds a value to the persisted edge set.
	MutationAdd MutationOp = "add"

	// MutationReplace replaces a value in the persisted edge set.
	MutationReplace MutationOp = "replace"

	// MutationDelete deletes a value from the persisted edge set.
	MutationDelete MutationOp = "delete"
)

// Mutation is one attribute-mutation record: an operation applied to a
// single encoded relationship value.
type Mutation struct {
	Op    MutationOp
	Value string
}

// EncodeRelationship produces the persisted wire form of an edge,
// CHILD:PARENT. Node names must not contain the separator; no escaping is
// performed.
func EncodeRelationship(r Relationship) string {
	return r.String()
}

// DecodeRelationship parses a persisted value back into an edge, splitting
// on the first occurrence of the separator. A value with no separator, or
// with the separator in the first position, is malformed and yields a
// *MalformedRelationshipError.
func DecodeRelationship(raw string) (Relationship, error) {
	idx := strings.Index(raw, Separator)
	if idx < 1 {
		return Relationship{}, &MalformedRelationshipError{Raw: raw}
	}
	return NewRelationship(raw[:idx], raw[idx+1:]), nil
}

// DecodeRelationships decodes a batch of persisted values, preserving
// encounter order. Malformed records are logged and skipped; a bad record
// never aborts the batch.
func DecodeRelationships(raws []string, log logrus.FieldLogger) []Relationship {
	if log == nil {
		log = logrus.StandardLogger()
	}
	edges := make([]Relationship, 0, len(raws))
	for _, raw := range raws {
		rel, err := DecodeRelationship(raw)
		if err != nil {
			log.WithField("value", raw).Warn("skipping malformed relationship value")
			continue
		}
		edges = append(edges, rel)
	}
	return edges
}

// BuildMutationBatch converts the edges of a unit of work into one mutation
// record per edge: add-value for OpAdd, replace-value for OpMod and
// delete-value for OpRem. The batch is not deduplicated.
func BuildMutationBatch(edges []Relationship, op Op) []Mutation {
	var mop MutationOp
	switch op {
	case OpAdd:
		mop = MutationAdd
	case OpMod:
		mop = MutationReplace
	case OpRem:
		mop = MutationDelete
	}
	batch := make([]Mutation, 0, len(edges))
	for _, edge := range edges {
		batch = append(batch, Mutation{Op: mop, Value: EncodeRelationship(edge)})
	}
	return batch
}
