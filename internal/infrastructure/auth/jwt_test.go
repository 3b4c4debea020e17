package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nextstock/backend/internal/infrastructure/config"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		RefreshSecret:          "test-refresh-secret-key-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "test-issuer",
		MaxRefreshCount:        10,
	}
}

func cashierInput() GenerateTokenInput {
	storeID := uuid.New()
	return GenerateTokenInput{
		UserID:      uuid.New(),
		Username:    "cashier1",
		StoreID:     &storeID,
		RoleIDs:     []uuid.UUID{uuid.New(), uuid.New()},
		Permissions: []string{"product:read", "product:create", "sale:create"},
	}
}

func TestNewJWTService(t *testing.T) {
	t.Run("takes all settings from config", func(t *testing.T) {
		cfg := testJWTConfig()
		svc := NewJWTService(cfg)

		assert.Equal(t, []byte(cfg.Secret), svc.accessSecret)
		assert.Equal(t, []byte(cfg.RefreshSecret), svc.refreshSecret)
		assert.Equal(t, cfg.AccessTokenExpiration, svc.accessExpiration)
		assert.Equal(t, cfg.RefreshTokenExpiration, svc.refreshExpiration)
		assert.Equal(t, cfg.Issuer, svc.issuer)
		assert.Equal(t, cfg.MaxRefreshCount, svc.maxRefreshCount)
	})

	t.Run("empty refresh secret falls back to access secret", func(t *testing.T) {
		cfg := testJWTConfig()
		cfg.RefreshSecret = ""

		svc := NewJWTService(cfg)

		assert.Equal(t, []byte(cfg.Secret), svc.refreshSecret)
	})
}

func TestGenerateTokenPair(t *testing.T) {
	svc := NewJWTService(testJWTConfig())

	pair, err := svc.GenerateTokenPair(cashierInput())
	require.NoError(t, err)

	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.True(t, pair.AccessTokenExpiresAt.After(time.Now()))
	assert.True(t, pair.RefreshTokenExpiresAt.After(pair.AccessTokenExpiresAt))
}

func TestValidateAccessToken(t *testing.T) {
	t.Run("round-trips all claims", func(t *testing.T) {
		svc := NewJWTService(testJWTConfig())
		input := cashierInput()
		pair, err := svc.GenerateTokenPair(input)
		require.NoError(t, err)

		claims, err := svc.ValidateAccessToken(pair.AccessToken)
		require.NoError(t, err)

		assert.Equal(t, input.UserID.String(), claims.UserID)
		assert.Equal(t, input.Username, claims.Username)
		assert.Equal(t, input.StoreID.String(), claims.StoreID)
		assert.Equal(t, TokenTypeAccess, claims.TokenType)
		assert.Len(t, claims.RoleIDs, len(input.RoleIDs))
		assert.Equal(t, input.Permissions, claims.Permissions)
	})

	t.Run("nil store means all stores", func(t *testing.T) {
		svc := NewJWTService(testJWTConfig())
		input := cashierInput()
		input.StoreID = nil
		pair, err := svc.GenerateTokenPair(input)
		require.NoError(t, err)

		claims, err := svc.ValidateAccessToken(pair.AccessToken)
		require.NoError(t, err)
		assert.Empty(t, claims.StoreID)

		storeID, err := claims.GetStoreUUID()
		require.NoError(t, err)
		assert.Nil(t, storeID)
	})

	t.Run("expired token", func(t *testing.T) {
		cfg := testJWTConfig()
		cfg.AccessTokenExpiration = -time.Hour
		svc := NewJWTService(cfg)
		pair, err := svc.GenerateTokenPair(cashierInput())
		require.NoError(t, err)

		_, err = svc.ValidateAccessToken(pair.AccessToken)

		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("garbage token", func(t *testing.T) {
		svc := NewJWTService(testJWTConfig())

		_, err := svc.ValidateAccessToken("not-a-jwt")

		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("refresh token rejected as access token", func(t *testing.T) {
		// one secret for both types so only the token_type claim differs
		cfg := testJWTConfig()
		cfg.RefreshSecret = cfg.Secret
		svc := NewJWTService(cfg)
		pair, err := svc.GenerateTokenPair(cashierInput())
		require.NoError(t, err)

		_, err = svc.ValidateAccessToken(pair.RefreshToken)

		assert.ErrorIs(t, err, ErrInvalidTokenType)
	})

	t.Run("token signed with another secret", func(t *testing.T) {
		issuing := NewJWTService(testJWTConfig())
		pair, err := issuing.GenerateTokenPair(cashierInput())
		require.NoError(t, err)

		other := testJWTConfig()
		other.Secret = "different-secret-key-32-chars!!!"
		validating := NewJWTService(other)

		_, err = validating.ValidateAccessToken(pair.AccessToken)

		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestValidateRefreshToken(t *testing.T) {
	svc := NewJWTService(testJWTConfig())
	input := cashierInput()
	pair, err := svc.GenerateTokenPair(input)
	require.NoError(t, err)

	claims, err := svc.ValidateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)

	assert.Equal(t, input.UserID.String(), claims.UserID)
	assert.Equal(t, TokenTypeRefresh, claims.TokenType)
	assert.Zero(t, claims.RefreshCount)
}

func TestRefreshTokenPair(t *testing.T) {
	t.Run("rotates tokens and applies new permissions", func(t *testing.T) {
		svc := NewJWTService(testJWTConfig())
		pair, err := svc.GenerateTokenPair(cashierInput())
		require.NoError(t, err)

		rotated, err := svc.RefreshTokenPair(pair.RefreshToken, []string{"updated:permission"})
		require.NoError(t, err)

		assert.NotEqual(t, pair.AccessToken, rotated.AccessToken)
		assert.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

		claims, err := svc.ValidateAccessToken(rotated.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, []string{"updated:permission"}, claims.Permissions)
	})

	t.Run("counts rotations", func(t *testing.T) {
		svc := NewJWTService(testJWTConfig())
		pair, err := svc.GenerateTokenPair(cashierInput())
		require.NoError(t, err)

		for want := 1; want <= 2; want++ {
			pair, err = svc.RefreshTokenPair(pair.RefreshToken, nil)
			require.NoError(t, err)

			claims, err := svc.ValidateRefreshToken(pair.RefreshToken)
			require.NoError(t, err)
			assert.Equal(t, want, claims.RefreshCount)
		}
	})

	t.Run("caps rotations at the limit", func(t *testing.T) {
		cfg := testJWTConfig()
		cfg.MaxRefreshCount = 2
		svc := NewJWTService(cfg)
		pair, err := svc.GenerateTokenPair(cashierInput())
		require.NoError(t, err)

		for range 2 {
			pair, err = svc.RefreshTokenPair(pair.RefreshToken, nil)
			require.NoError(t, err)
		}

		_, err = svc.RefreshTokenPair(pair.RefreshToken, nil)

		assert.ErrorIs(t, err, ErrMaxRefreshExceeded)
	})

	t.Run("rejects invalid refresh token", func(t *testing.T) {
		svc := NewJWTService(testJWTConfig())

		_, err := svc.RefreshTokenPair("not-a-jwt", nil)

		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestClaims_UUIDAccessors(t *testing.T) {
	svc := NewJWTService(testJWTConfig())
	input := cashierInput()
	pair, err := svc.GenerateTokenPair(input)
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)

	userID, err := claims.GetUserUUID()
	require.NoError(t, err)
	assert.Equal(t, input.UserID, userID)

	storeID, err := claims.GetStoreUUID()
	require.NoError(t, err)
	require.NotNil(t, storeID)
	assert.Equal(t, *input.StoreID, *storeID)

	roleIDs, err := claims.GetRoleUUIDs()
	require.NoError(t, err)
	assert.Equal(t, input.RoleIDs, roleIDs)
}

func TestClaims_Permissions(t *testing.T) {
	claims := &Claims{Permissions: []string{"product:read", "product:create"}}

	assert.True(t, claims.HasPermission("product:read"))
	assert.False(t, claims.HasPermission("product:delete"))

	assert.True(t, claims.HasAnyPermission("product:delete", "product:create"))
	assert.False(t, claims.HasAnyPermission("product:delete", "sale:void"))

	assert.True(t, claims.HasAllPermissions("product:read", "product:create"))
	assert.False(t, claims.HasAllPermissions("product:read", "product:delete"))

	admin := &Claims{Permissions: []string{PermissionWildcard}}
	assert.True(t, admin.HasPermission("anything:at:all"))
	assert.True(t, admin.HasAllPermissions("product:read", "sale:void"))
}
