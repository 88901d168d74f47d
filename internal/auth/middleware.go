package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"ideomatch/backend/pkg/jwt"
)

const userIDKey = "userID"

// AuthMiddleware requires a valid bearer token and stores the user id in the
// context.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}
		authenticate(c, parts[1], secret)
	}
}

// StreamAuthMiddleware authenticates clients that cannot set headers, such
// as EventSource and browser websockets. A bearer header is used when
// present, then the :token path parameter, then the token query parameter.
func StreamAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var token string
		if parts := strings.Split(c.GetHeader("Authorization"), " "); len(parts) == 2 && parts[0] == "Bearer" {
			token = parts[1]
		}
		if token == "" {
			token = c.Param("token")
		}
		if token == "" {
			token = c.Query("token")
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token is required"})
			return
		}
		authenticate(c, token, secret)
	}
}

func authenticate(c *gin.Context, token, secret string) {
	userID, err := jwt.ParseToken(token, secret)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}
	c.Set(userIDKey, userID)
	c.Next()
}

// UserID returns the authenticated user id.
func UserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
