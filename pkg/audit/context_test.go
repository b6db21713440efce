package audit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	ac := New("cn=admin,ou=people", "role.addInheritance")
	require.NotNil(t, ac)
	assert.Equal(t, "cn=admin,ou=people", ac.Modifier)
	assert.Equal(t, "role.addInheritance", ac.ModCode)
	assert.NotEmpty(t, ac.ModID)

	// Modification IDs must be unique per call
	other := New("cn=admin,ou=people", "role.addInheritance")
	assert.NotEqual(t, ac.ModID, other.ModID)
}

func TestContextRoundTrip(t *testing.T) {
	ac := New("admin1", "ou.delInheritance")

	ctx := WithContext(context.Background(), ac)
	got := FromContext(ctx)
	require.NotNil(t, got)
	assert.Equal(t, ac, got)
}

func TestFromContextMissing(t *testing.T) {
	assert.Nil(t, FromContext(context.Background()))
}
