package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	pkgAuth "github.com/polkiloo/earnbot/internal/pkg/auth"
	"github.com/polkiloo/earnbot/internal/server/http/dto"
)

const (
	// AdminIDContextKey is a gin context key for the acting administrator.
	AdminIDContextKey = "adminID"
	// AdminIDHeader names the administrator performing the request.
	AdminIDHeader = "X-Admin-ID"
)

// KeyVerifier checks the presented API key.
type KeyVerifier interface {
	Enabled() bool
	Verify(key string) error
}

// AdminChecker reports whether a user id belongs to an administrator.
type AdminChecker interface {
	IsAdmin(userID int64) bool
}

// AdminRequired authenticates the API key and the acting administrator.
func AdminRequired(verifier KeyVerifier, admins AdminChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !verifier.Enabled() {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.ErrorResponse{Error: "admin_api_disabled"})
			return
		}

		key := extractBearer(c)
		if key == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "unauthorized"})
			return
		}
		if err := verifier.Verify(key); err != nil {
			if errors.Is(err, pkgAuth.ErrKeyNotConfigured) {
				c.AbortWithStatusJSON(http.StatusForbidden, dto.ErrorResponse{Error: "admin_api_disabled"})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "unauthorized"})
			return
		}

		adminID, err := strconv.ParseInt(c.GetHeader(AdminIDHeader), 10, 64)
		if err != nil || !admins.IsAdmin(adminID) {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.ErrorResponse{Error: "unauthorized"})
			return
		}

		c.Set(AdminIDContextKey, adminID)
		c.Next()
	}
}

func extractBearer(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}
