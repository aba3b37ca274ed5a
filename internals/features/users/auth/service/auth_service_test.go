package service

import (
	"testing"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"classku_backend/internals/configs"
	userModel "classku_backend/internals/features/users/user/model"
)

func TestBuildAccessToken_CarriesIdentityClaims(t *testing.T) {
	configs.JWTSecret = "test-secret"

	user := &userModel.UserModel{ID: uuid.New(), Role: "teacher"}
	signed, err := buildAccessToken(user)
	require.NoError(t, err)

	parsed, err := jwt.Parse(signed, func(tok *jwt.Token) (any, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, user.ID.String(), claims["id"])
	assert.Equal(t, "teacher", claims["role"])
	assert.NotZero(t, claims["exp"])
}

func TestComputeRefreshHash_StableAndSecretBound(t *testing.T) {
	a := computeRefreshHash("tok", "s1")
	b := computeRefreshHash("tok", "s1")
	assert.Equal(t, a, b, "same input must hash the same")
	assert.Len(t, a, 32)

	assert.NotEqual(t, a, computeRefreshHash("tok", "s2"), "a different secret must change the hash")
	assert.NotEqual(t, a, computeRefreshHash("other", "s1"))
}

func TestRandomToken_Length(t *testing.T) {
	seen := map[string]struct{}{}
	for i := 0; i < 50; i++ {
		tok := randomToken()
		assert.Len(t, tok, 64) // 32 bytes hex-encoded
		seen[tok] = struct{}{}
	}
	assert.Len(t, seen, 50)
}
