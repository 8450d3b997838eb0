package handlers

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/mcm-alerts/mcm-alerts/db"
	"github.com/mcm-alerts/mcm-alerts/internal/auth"
	"github.com/mcm-alerts/mcm-alerts/internal/models"
	"github.com/mcm-alerts/mcm-alerts/internal/types"
	"github.com/mcm-alerts/mcm-alerts/internal/utils"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type UserResponse struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

var (
	Domain = os.Getenv("DOMAIN")
)

// CreateSession handles POST /api/sessions (login).
func CreateSession(ctx *gin.Context) {
	var req LoginRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	var user models.User

	if err := db.DB.Where("username = ?", req.Username).First(&user).Error; err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	session, err := auth.CreateSession(user.ID, ctx.Request.UserAgent())

	if err != nil {
		logger.Error("failed to create session", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	http.SetCookie(ctx.Writer, &http.Cookie{
		Name:     types.SessionCookieName,
		Value:    session.SID,
		Path:     "/",
		Domain:   Domain,
		MaxAge:   int(auth.SessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	ctx.JSON(http.StatusOK, gin.H{
		"user": UserResponse{
			ID:        user.ID,
			Username:  user.Username,
			Email:     user.Email,
			FirstName: user.FirstName,
			LastName:  user.LastName,
		},
	})
}

// DestroySession handles DELETE /api/sessions (logout).
func DestroySession(ctx *gin.Context) {
	if sid, err := ctx.Cookie(types.SessionCookieName); err == nil && sid != "" {
		if err := auth.DestroySession(sid); err != nil {
			logger.Error("failed to destroy session", zap.Error(err))
		}
	}

	http.SetCookie(ctx.Writer, &http.Cookie{
		Name:     types.SessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   Domain,
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	ctx.JSON(http.StatusOK, gin.H{"success": true})
}

// Me handles GET /api/users/me.
func Me(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"user": UserResponse{
			ID:        currentUser.ID,
			Username:  currentUser.Username,
			Email:     currentUser.Email,
			FirstName: currentUser.FirstName,
			LastName:  currentUser.LastName,
		},
	})
}
