package hierarchy

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/lattice/pkg/audit"
)

// fakeStore is an in-test edge store with injectable failures.
type fakeStore struct {
	mu         sync.Mutex
	values     map[string][]string
	fetchErr   error
	applyErr   error
	fetchCalls int
	lastAudit  *audit.Context
	lastBatch  []Mutation
}

func newFakeStore(values map[string][]string) *fakeStore {
	if values == nil {
		values = make(map[string][]string)
	}
	return &fakeStore{values: values}
}

func (f *fakeStore) FetchEdges(ctx context.Context, kind Kind, contextID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchCalls++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.values[contextID], nil
}

func (f *fakeStore) ApplyMutation(ctx context.Context, kind Kind, contextID string, batch []Mutation, ac *audit.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.applyErr != nil {
		return f.applyErr
	}
	f.lastAudit = ac
	f.lastBatch = batch
	for _, m := range batch {
		switch m.Op {
		case MutationAdd, MutationReplace:
			f.values[contextID] = append(f.values[contextID], m.Value)
		case MutationDelete:
			kept := f.values[contextID][:0]
			for _, v := range f.values[contextID] {
				if v != m.Value {
					kept = append(kept, v)
				}
			}
			f.values[contextID] = kept
		}
	}
	return nil
}

func newTestService(store EdgeStore) *Service {
	return NewService(KindRole, store, DefaultServiceConfig())
}

func TestServiceTraversal(t *testing.T) {
	store := newFakeStore(map[string][]string{
		"": {"R2:R1", "R3:R1"},
	})
	svc := newTestService(store)
	ctx := context.Background()

	ascendants, err := svc.Ascendants(ctx, "R2", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"R1"}, ascendants.Values())

	descendants, err := svc.Descendants(ctx, "R1", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"R2", "R3"}, descendants.Values())

	children, err := svc.Children(ctx, "R1", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"R2", "R3"}, children.Values())

	parents, err := svc.Parents(ctx, "R2", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"R1"}, parents.Values())

	count, err := svc.ChildCount(ctx, "R1", "")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestValidateRelationshipSelf(t *testing.T) {
	svc := newTestService(newFakeStore(nil))
	ctx := context.Background()

	for _, mustExist := range []bool{true, false} {
		err := svc.ValidateRelationship(ctx, "R1", "r1", "", mustExist)
		require.Error(t, err)
		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, ReasonSelfRelationship, verr.Reason)
	}
}

func TestValidateRelationshipMustExist(t *testing.T) {
	store := newFakeStore(map[string][]string{
		"": {"R2:R1", "R3:R1"},
	})
	svc := newTestService(store)
	ctx := context.Background()

	// Existing edge passes.
	assert.NoError(t, svc.ValidateRelationship(ctx, "R2", "R1", "", true))

	// Missing edge rejects with a precise reason.
	err := svc.ValidateRelationship(ctx, "R4", "R1", "", true)
	require.Error(t, err)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, ReasonNotFound, verr.Reason)
}

func TestValidateRelationshipMustNotExist(t *testing.T) {
	store := newFakeStore(map[string][]string{
		"": {"R2:R1", "R3:R1"},
	})
	svc := newTestService(store)
	ctx := context.Background()

	// A brand new legal edge passes.
	assert.NoError(t, svc.ValidateRelationship(ctx, "R4", "R1", "", false))

	// A duplicate rejects as existing, not as a cycle.
	err := svc.ValidateRelationship(ctx, "R2", "R1", "", false)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, ReasonExists, verr.Reason)

	// Adding R1->R2 would let R1 reach itself through R2.
	err = svc.ValidateRelationship(ctx, "R1", "R2", "", false)
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, ReasonCycle, verr.Reason)
}

func TestValidateRelationshipTransitiveCycle(t *testing.T) {
	store := newFakeStore(map[string][]string{
		"": {"R2:R1", "R3:R2", "R4:R3"},
	})
	svc := newTestService(store)

	err := svc.ValidateRelationship(context.Background(), "R1", "R4", "", false)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, ReasonCycle, verr.Reason)
}

func TestInheritedClosure(t *testing.T) {
	store := newFakeStore(map[string][]string{
		"": {"R2:R1", "R3:R2", "R4:R1"},
	})
	svc := newTestService(store)

	closure, err := svc.InheritedClosure(context.Background(), []string{"r3", "R3", "R4"}, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"R1", "R2", "R3", "R4"}, closure)
}

func TestInheritedClosureEmptyInput(t *testing.T) {
	svc := newTestService(newFakeStore(nil))
	closure, err := svc.InheritedClosure(context.Background(), nil, "")
	require.NoError(t, err)
	assert.Empty(t, closure)
}

func TestApplyPersistsAndInvalidates(t *testing.T) {
	store := newFakeStore(map[string][]string{
		"": {"R2:R1"},
	})
	svc := newTestService(store)
	ctx := context.Background()

	// Warm the cache.
	_, err := svc.Descendants(ctx, "R1", "")
	require.NoError(t, err)

	hier := NewHier(KindRole, OpAdd)
	hier.AddRelationship("R3", "R1")
	ac := audit.New("admin1", "role.addInheritance")
	require.NoError(t, svc.Apply(ctx, hier, "", ac))

	// The audit context passes through untouched.
	assert.Equal(t, ac, store.lastAudit)
	require.Len(t, store.lastBatch, 1)
	assert.Equal(t, Mutation{Op: MutationAdd, Value: "R3:R1"}, store.lastBatch[0])

	// The next read observes the mutation.
	descendants, err := svc.Descendants(ctx, "R1", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"R2", "R3"}, descendants.Values())
}

func TestApplyRemove(t *testing.T) {
	store := newFakeStore(map[string][]string{
		"": {"R2:R1", "R3:R1"},
	})
	svc := newTestService(store)
	ctx := context.Background()

	hier := NewHier(KindRole, OpRem)
	hier.AddRelationship("R3", "R1")
	require.NoError(t, svc.Apply(ctx, hier, "", nil))

	descendants, err := svc.Descendants(ctx, "R1", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"R2"}, descendants.Values())
}

func TestApplyWriteFailureKeepsCache(t *testing.T) {
	store := newFakeStore(map[string][]string{
		"": {"R2:R1"},
	})
	svc := newTestService(store)
	ctx := context.Background()

	_, err := svc.Descendants(ctx, "R1", "")
	require.NoError(t, err)
	fetchesBefore := store.fetchCalls

	store.mu.Lock()
	store.applyErr = errors.New("directory write failed")
	store.mu.Unlock()

	hier := NewHier(KindRole, OpAdd)
	hier.AddRelationship("R3", "R1")
	err = svc.Apply(ctx, hier, "", nil)
	require.Error(t, err)

	// The cache was not invalidated: the next read is served without a
	// reload and still shows the old edge set.
	descendants, err := svc.Descendants(ctx, "R1", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"R2"}, descendants.Values())
	assert.Equal(t, fetchesBefore, store.fetchCalls)
}

func TestApplyKindMismatch(t *testing.T) {
	svc := newTestService(newFakeStore(nil))

	hier := NewHier(KindUserOU, OpAdd)
	hier.AddRelationship("OU2", "OU1")
	err := svc.Apply(context.Background(), hier, "", nil)
	assert.ErrorIs(t, err, ErrKindMismatch)
}

func TestClosureCachePurgedOnApply(t *testing.T) {
	store := newFakeStore(map[string][]string{
		"": {"R2:R1"},
	})
	svc := NewService(KindRole, store, ServiceConfig{
		ClosureCacheSize: 16,
		ClosureCacheTTL:  time.Minute,
	})
	ctx := context.Background()

	closure, err := svc.InheritedClosure(ctx, []string{"R2"}, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"R1", "R2"}, closure)

	hier := NewHier(KindRole, OpAdd)
	hier.AddRelationship("R1", "R0")
	require.NoError(t, svc.Apply(ctx, hier, "", nil))

	closure, err = svc.InheritedClosure(ctx, []string{"R2"}, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"R0", "R1", "R2"}, closure)
}
