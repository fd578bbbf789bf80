package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/hannakang/schedhub/internal/actorctx"
	"github.com/hannakang/schedhub/internal/auth"
)

// Keep this small interface so tests can fake it easily.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

type AuthMiddleware struct {
	jwt TokenVerifier
}

func NewAuthMiddleware(jwt TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt}
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "missing_token",
					"message": "Missing or invalid Authorization header",
				},
			})
			return
		}

		raw := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "missing_token",
					"message": "Missing access token",
				},
			})
			return
		}

		claims, err := m.jwt.Verify(raw)
		if err != nil {
			code := "invalid_token"
			message := "Invalid access token"

			if errors.Is(err, auth.ErrTokenExpired) {
				code = "token_expired"
				message = "Access token has expired"
			}

			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    code,
					"message": message,
				},
			})
			return
		}

		// Stash the caller identity on the gin context and the request context
		c.Set(ctxUserNameKey, claims.Name)
		c.Set(ctxRoleKey, claims.Role)
		c.Request = c.Request.WithContext(
			actorctx.WithActor(c.Request.Context(), claims.Name, claims.Role),
		)

		c.Next()
	}
}

// Optional helpers so handlers don’t need to know the magic keys.

func UserNameFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxUserNameKey)
	if !ok {
		return "", false
	}
	name, ok := v.(string)
	return name, ok
}

func RoleFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxRoleKey)
	if !ok {
		return "", false
	}
	role, ok := v.(string)
	return role, ok
}
