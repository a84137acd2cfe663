package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storyhub/internal/domain"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("p4ssw0rd")
	require.NoError(t, err)
	assert.NotEqual(t, "p4ssw0rd", hash)

	assert.True(t, CheckPassword("p4ssw0rd", hash))
	assert.False(t, CheckPassword("wrong", hash))
}

func TestCheckPassword_GarbageHash(t *testing.T) {
	t.Parallel()

	assert.False(t, CheckPassword("anything", "not-a-bcrypt-hash"))
}

func TestCodec_IssueAndVerify(t *testing.T) {
	t.Parallel()

	codec := NewCodec("super-secret", time.Hour)

	token, err := codec.IssueToken("user-123", domain.RoleAdmin)
	require.NoError(t, err)

	userID, role, err := codec.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", userID)
	assert.Equal(t, domain.RoleAdmin, role)
}

func TestCodec_Expired(t *testing.T) {
	t.Parallel()

	codec := NewCodec("secret", time.Hour)
	codec.ttl = -time.Second

	token, err := codec.IssueToken("u1", domain.RoleUser)
	require.NoError(t, err)

	_, _, err = codec.VerifyToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCodec_WrongSecret(t *testing.T) {
	t.Parallel()

	token, err := NewCodec("right-secret", time.Hour).IssueToken("u2", domain.RoleUser)
	require.NoError(t, err)

	_, _, err = NewCodec("wrong-secret", time.Hour).VerifyToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCodec_TamperedPayload(t *testing.T) {
	t.Parallel()

	codec := NewCodec("secret", time.Hour)
	token, err := codec.IssueToken("u3", domain.RoleUser)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	// flip the payload, keep the original signature
	parts[1] = "eyJ1aWQiOiJzb21lYm9keS1lbHNlIn0"
	_, _, err = codec.VerifyToken(strings.Join(parts, "."))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCodec_Malformed(t *testing.T) {
	t.Parallel()

	_, _, err := NewCodec("k", time.Hour).VerifyToken("not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
