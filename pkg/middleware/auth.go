package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/weiawesome/wes-io-live/support-service/pkg/jwt"
	"github.com/weiawesome/wes-io-live/support-service/pkg/response"
)

const (
	UserIDKey     = "user_id"
	EmailKey      = "email"
	UserKindKey   = "user_kind"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
	TokenQueryKey = "token"
)

// TokenVerifier validates a bearer token and returns its claims.
type TokenVerifier interface {
	ValidateToken(token string) (*jwt.Claims, error)
}

// AuthMiddleware validates JWT tokens locally against the shared secret.
type AuthMiddleware struct {
	verifier TokenVerifier
}

// NewAuthMiddleware creates a new auth middleware.
func NewAuthMiddleware(verifier TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier}
}

// RequireAuth returns a Gin middleware that validates JWT tokens.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(AuthHeaderKey)
		if authHeader == "" {
			response.Abort(c, http.StatusUnauthorized, response.CodeUnauthorized, "missing authorization header")
			return
		}

		if !strings.HasPrefix(authHeader, BearerPrefix) {
			response.Abort(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid authorization format")
			return
		}

		claims, err := m.verifier.ValidateToken(strings.TrimPrefix(authHeader, BearerPrefix))
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, response.CodeUnauthorized, err.Error())
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(EmailKey, claims.Email)
		c.Set(UserKindKey, claims.Kind)

		c.Next()
	}
}

// TokenFromRequest returns the token from the query string or, failing that,
// the bearer header. Browsers cannot set headers on WebSocket upgrades.
func TokenFromRequest(r *http.Request) string {
	if token := r.URL.Query().Get(TokenQueryKey); token != "" {
		return token
	}
	if h := r.Header.Get(AuthHeaderKey); strings.HasPrefix(h, BearerPrefix) {
		return strings.TrimPrefix(h, BearerPrefix)
	}
	return ""
}

// GetUserID extracts user ID from Gin context.
func GetUserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}

// GetEmail extracts email from Gin context.
func GetEmail(c *gin.Context) string {
	return c.GetString(EmailKey)
}

// GetUserKind extracts the user kind from Gin context.
func GetUserKind(c *gin.Context) string {
	return c.GetString(UserKindKey)
}
