package httpapi

import (
	"net/http"
	"strings"

	"github.com/aequatio-app/aequatio/internal/server/auth"
	"github.com/gin-gonic/gin"
)

// userIDKey is the gin context key the bearer middleware stores the
// authenticated user id under.
const userIDKey = "user_id"

func (s *Server) bearerAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			s.unauthorized(c, "not authenticated")
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			s.unauthorized(c, "invalid authorization header")
			return
		}

		userID, err := auth.GetUserIDFromToken(parts[1], s.jwtSecret)
		if err != nil {
			s.unauthorized(c, "invalid or expired token")
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

func (s *Server) unauthorized(c *gin.Context, msg string) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
}

func currentUserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}
