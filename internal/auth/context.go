package auth

import "github.com/gin-gonic/gin"

// GetUserID returns the authenticated user's ID.
// ok is false when the request did not pass AuthRequired.
func GetUserID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}
