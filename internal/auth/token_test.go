package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"craftmart/internal/domain"
)

func TestIssueVerify(t *testing.T) {
	tok, err := Issue(42, domain.RoleSeller, "secret", time.Hour)
	require.NoError(t, err)

	c, err := Verify(tok, "secret")
	require.NoError(t, err)
	assert.Equal(t, int64(42), c.UserID)
	assert.Equal(t, domain.RoleSeller, c.Role)
	assert.False(t, c.Expired(time.Now()))
}

func TestVerify_WrongSecret(t *testing.T) {
	tok, err := Issue(42, domain.RoleSeller, "secret", time.Hour)
	require.NoError(t, err)

	_, err = Verify(tok, "other")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestVerify_Expired(t *testing.T) {
	tok, err := Issue(42, domain.RoleSeller, "secret", -time.Minute)
	require.NoError(t, err)

	_, err = Verify(tok, "secret")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestInspect_NoSecretNeeded(t *testing.T) {
	tok, err := Issue(7, domain.RoleBuyer, "secret", time.Hour)
	require.NoError(t, err)

	c, err := Inspect(tok)
	require.NoError(t, err)
	assert.Equal(t, int64(7), c.UserID)
	assert.True(t, c.Expired(time.Now().Add(2*time.Hour)))

	_, err = Inspect("garbage")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}
