package utilities

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Context keys set by the middlewares.
const (
	ContextOrganizationID = "organization_id"
	ContextRequestID      = "request_id"
)

// AdminKeyHeader carries the admin key; the admin_key query parameter is
// accepted too.
const AdminKeyHeader = "X-Admin-Key"

// AuthMiddleware requires a valid bearer token and stores the organization
// id in the context.
func AuthMiddleware(jwtManager *JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}

		tokenStr, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header"})
			return
		}

		orgID, err := jwtManager.Validate(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set(ContextOrganizationID, orgID)
		c.Next()
	}
}

// OrganizationID returns the id stored by AuthMiddleware.
func OrganizationID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(ContextOrganizationID)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

// AdminKeyMiddleware compares the supplied admin key with secret in constant
// time. An empty secret rejects every request.
func AdminKeyMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(AdminKeyHeader)
		if key == "" {
			key = c.Query("admin_key")
		}
		if secret == "" || subtle.ConstantTimeCompare([]byte(key), []byte(secret)) != 1 {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "invalid admin key"})
			return
		}
		c.Next()
	}
}
