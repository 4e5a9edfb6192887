package middleware

import "github.com/gin-gonic/gin"

// userIDKey is the key used to store the requesting user's ID in the Gin context.
const userIDKey = contextKey("userID")

// defaultUserID identifies the single local operator when no identity header is
// sent. The service is single-tenant; the header exists so shared deployments
// can attribute audit records per person.
const defaultUserID = "local"

// RequestIdentity resolves the acting user for audit attribution from the
// X-User-ID header, falling back to the local default.
func RequestIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader("X-User-ID")
		if userID == "" {
			userID = defaultUserID
		}
		c.Set(string(userIDKey), userID)
		c.Next()
	}
}

// GetUserIDFromContext retrieves the acting user ID from the Gin context.
// It returns the user ID and a boolean indicating if it was found.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userIDVal, exists := c.Get(string(userIDKey))
	if !exists {
		return "", false
	}

	userID, ok := userIDVal.(string)
	if !ok {
		return "", false
	}
	return userID, true
}
