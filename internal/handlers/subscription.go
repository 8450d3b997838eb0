package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mcm-alerts/mcm-alerts/db"
	"github.com/mcm-alerts/mcm-alerts/internal/models"
	"github.com/mcm-alerts/mcm-alerts/internal/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type UpsertSubscriptionRequest struct {
	Type          string `json:"type" binding:"required"`
	Enabled       bool   `json:"enabled"`
	EnableSound   bool   `json:"enable_sound"`
	EnableBrowser bool   `json:"enable_browser"`
	EnableEmail   bool   `json:"enable_email"`
	FCMToken      string `json:"fcm_token"`
}

type UpdateTokenRequest struct {
	Type     string `json:"type" binding:"required"`
	FCMToken string `json:"fcm_token" binding:"required"`
}

type SubscriptionResponse struct {
	ID            uint   `json:"id"`
	UserID        uint   `json:"user_id"`
	Type          string `json:"type"`
	Enabled       bool   `json:"enabled"`
	EnableSound   bool   `json:"enable_sound"`
	EnableBrowser bool   `json:"enable_browser"`
	EnableEmail   bool   `json:"enable_email"`
	FCMToken      string `json:"fcm_token"`
}

func subscriptionResponse(s models.Subscription) SubscriptionResponse {
	return SubscriptionResponse{
		ID:            s.ID,
		UserID:        s.UserID,
		Type:          s.Type,
		Enabled:       s.Enabled,
		EnableSound:   s.EnableSound,
		EnableBrowser: s.EnableBrowser,
		EnableEmail:   s.EnableEmail,
		FCMToken:      s.FCMToken,
	}
}

// GetSubscription handles GET /api/subscriptions/:type. A user without a
// subscription of that type gets a null body, not a 404.
func GetSubscription(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	subType := ctx.Param("type")

	var subscription models.Subscription

	if err := db.DB.Where("user_id = ? AND type = ?", userID, subType).First(&subscription).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusOK, nil)
			return
		}
		logger.Error("failed to fetch subscription", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch subscription"})
		return
	}

	ctx.JSON(http.StatusOK, subscriptionResponse(subscription))
}

// UpsertSubscription handles POST /api/subscriptions. One row per
// (user, type): the second call with the same type updates in place.
func UpsertSubscription(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req UpsertSubscriptionRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	var subscription models.Subscription

	err = db.DB.Where("user_id = ? AND type = ?", userID, req.Type).First(&subscription).Error

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("failed to fetch subscription", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update subscription"})
		return
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		subscription = models.Subscription{
			UserID: userID,
			Type:   req.Type,
		}
	}

	subscription.Enabled = req.Enabled
	subscription.EnableSound = req.EnableSound
	subscription.EnableBrowser = req.EnableBrowser
	subscription.EnableEmail = req.EnableEmail

	if req.FCMToken != "" {
		subscription.FCMToken = req.FCMToken
	}

	if err := db.DB.Save(&subscription).Error; err != nil {
		logger.Error("failed to save subscription", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update subscription"})
		return
	}

	ctx.JSON(http.StatusOK, subscriptionResponse(subscription))
}

// UpdateSubscriptionToken handles POST /api/subscriptions/token, refreshing
// the delivery token without touching the preference flags.
func UpdateSubscriptionToken(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req UpdateTokenRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	result := db.DB.Model(&models.Subscription{}).
		Where("user_id = ? AND type = ?", userID, req.Type).
		Updates(map[string]interface{}{"fcm_token": req.FCMToken, "updated_at": time.Now()})

	if result.Error != nil {
		logger.Error("failed to update token", zap.Error(result.Error))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update token"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true})
}
