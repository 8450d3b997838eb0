package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mcm-alerts/mcm-alerts/internal/auth"
	"github.com/mcm-alerts/mcm-alerts/internal/types"
)

type AuthenticatedUser struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// AuthMiddleware resolves the session cookie to a user and stores it in the
// request context. A missing or expired session is an expected condition,
// not a fault: respond 401 and let the client redirect to login.
func AuthMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		sid, err := ctx.Cookie(types.SessionCookieName)

		if err != nil || sid == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		user, err := auth.LookupSession(sid)

		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired session"})
			return
		}

		ctx.Set(types.ContextUserKey, AuthenticatedUser{
			ID:        user.ID,
			Username:  user.Username,
			Email:     user.Email,
			FirstName: user.FirstName,
			LastName:  user.LastName,
		})
		ctx.Next()
	}
}
