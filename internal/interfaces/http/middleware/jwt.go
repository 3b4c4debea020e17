package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nextstock/backend/internal/infrastructure/auth"
	"github.com/nextstock/backend/internal/infrastructure/logger"
	"github.com/nextstock/backend/internal/interfaces/http/dto"
)

// Context keys set by the JWT middleware
const (
	ContextKeyClaims      = "jwt_claims"
	ContextKeyUserID      = "jwt_user_id"
	ContextKeyStoreID     = "jwt_store_id"
	ContextKeyUsername    = "jwt_username"
	ContextKeyRoleIDs     = "jwt_role_ids"
	ContextKeyPermissions = "jwt_permissions"
)

// JWTAuthConfig holds JWT middleware configuration
type JWTAuthConfig struct {
	// SkipPaths lists exact paths that bypass authentication
	SkipPaths []string
	// SkipPathPrefixes lists path prefixes that bypass authentication
	SkipPathPrefixes []string
	// TokenBlacklist is optional; when set, revoked tokens are rejected
	TokenBlacklist auth.TokenBlacklist
}

// JWTAuthMiddleware creates a JWT authentication middleware with default config
func JWTAuthMiddleware(jwtService *auth.JWTService) gin.HandlerFunc {
	return JWTAuthMiddlewareWithConfig(jwtService, JWTAuthConfig{})
}

// JWTAuthMiddlewareWithConfig creates a JWT authentication middleware.
// It validates bearer tokens, checks the blacklist when configured, and
// stores the claims on the gin and request contexts.
func JWTAuthMiddlewareWithConfig(jwtService *auth.JWTService, cfg JWTAuthConfig) gin.HandlerFunc {
	skipPaths := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skipPaths[p] = struct{}{}
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if _, ok := skipPaths[path]; ok {
			c.Next()
			return
		}
		for _, prefix := range cfg.SkipPathPrefixes {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}

		tokenString, ok := extractBearerToken(c)
		if !ok {
			abortUnauthorized(c, "MISSING_TOKEN", "authorization token is required")
			return
		}

		claims, err := jwtService.ValidateAccessToken(tokenString)
		if err != nil {
			code := "TOKEN_INVALID"
			message := "invalid authorization token"
			if err == auth.ErrExpiredToken {
				code = "TOKEN_EXPIRED"
				message = "authorization token has expired"
			}
			abortUnauthorized(c, code, message)
			return
		}

		if cfg.TokenBlacklist != nil {
			// Blacklist lookups fail open: an unreachable Redis must not take
			// down every authenticated endpoint.
			if jti := claims.ID; jti != "" {
				if revoked, err := cfg.TokenBlacklist.IsBlacklisted(c.Request.Context(), jti); err == nil && revoked {
					abortUnauthorized(c, "TOKEN_REVOKED", "authorization token has been revoked")
					return
				}
			}
			if invalidated, err := cfg.TokenBlacklist.IsUserTokenInvalidated(c.Request.Context(), claims.UserID, claims.GetIssuedAtTime()); err == nil && invalidated {
				abortUnauthorized(c, "TOKEN_REVOKED", "authorization token has been revoked")
				return
			}
		}

		c.Set(ContextKeyClaims, claims)
		c.Set(ContextKeyUserID, claims.UserID)
		c.Set(ContextKeyStoreID, claims.StoreID)
		c.Set(ContextKeyUsername, claims.Username)
		c.Set(ContextKeyRoleIDs, claims.RoleIDs)
		c.Set(ContextKeyPermissions, claims.Permissions)

		log := logger.FromContext(c.Request.Context())
		ctx, log := logger.WithUserID(c.Request.Context(), log, claims.UserID)
		if claims.StoreID != "" {
			ctx, _ = logger.WithStoreID(ctx, log, claims.StoreID)
		}
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func extractBearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func abortUnauthorized(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponseWithRequestID(code, message, GetRequestID(c)))
}

// GetClaims retrieves the JWT claims stored by the auth middleware
func GetClaims(c *gin.Context) (*auth.Claims, bool) {
	value, exists := c.Get(ContextKeyClaims)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*auth.Claims)
	return claims, ok
}

// GetUserID retrieves the authenticated user ID from the gin context
func GetUserID(c *gin.Context) (string, bool) {
	id := c.GetString(ContextKeyUserID)
	return id, id != ""
}

// GetStoreID retrieves the authenticated user's store ID from the gin
// context. An empty value means the user is not bound to a single store.
func GetStoreID(c *gin.Context) string {
	return c.GetString(ContextKeyStoreID)
}
