package auth

import (
	"net/http"
	"strings"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"

	"github.com/formforge/formbuilder-service/internal/config"
)

const (
	// ContextUserIDKey is where the middleware stores the authenticated
	// user's id in the Gin context.
	ContextUserIDKey = "user_id"
	// ContextUserNameKey holds the display name when the token carries one.
	ContextUserNameKey = "user_name"
)

// Init configures the Casdoor SDK. Call once at startup before mounting
// RequireAuth.
func Init(cfg config.CasdoorConfig) {
	casdoorsdk.InitConfig(
		cfg.Endpoint,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.Certificate,
		cfg.Organization,
		cfg.Application,
	)
}

// RequireAuth validates the bearer token on author routes and stores the
// user id in the context. Respondent routes stay unauthenticated.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "missing bearer token",
			})
			return
		}

		claims, err := casdoorsdk.ParseJwtToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid token",
			})
			return
		}

		c.Set(ContextUserIDKey, claims.User.Id)
		c.Set(ContextUserNameKey, claims.User.Name)
		c.Next()
	}
}

// UserID returns the authenticated user's id from the context.
func UserID(c *gin.Context) string {
	return c.GetString(ContextUserIDKey)
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, prefix))
}
