package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mcm-alerts/mcm-alerts/db"
	"github.com/mcm-alerts/mcm-alerts/internal/models"
	"github.com/mcm-alerts/mcm-alerts/internal/services"
	"github.com/mcm-alerts/mcm-alerts/internal/types"
	"go.uber.org/zap"
)

// TriggerRequest is the payload posted by an external monitoring probe. The
// endpoint is deliberately unauthenticated; see the deployment notes.
type TriggerRequest struct {
	Type    string `json:"type" binding:"required,oneof=site_up site_down slow_response"`
	Title   string `json:"title" binding:"required"`
	Message string `json:"message" binding:"required"`
	Site    string `json:"site"`
}

type TriggerResponse struct {
	Message              string `json:"message"`
	SubscriberCount      int    `json:"subscriberCount"`
	NotificationsCreated int    `json:"notificationsCreated"`
}

// Trigger handles POST /api/trigger: validate, fan out one notification row
// per enabled subscriber, then attempt best-effort push delivery. Creation is
// independent per subscriber; one failed insert does not abort the rest, and
// a failed push never rolls back a persisted row.
func Trigger(ctx *gin.Context) {
	var req TriggerRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid trigger payload"})
		return
	}

	var subscribers []models.Subscription

	if err := db.DB.Where("type = ? AND enabled = ?", types.SubscriptionSiteMonitoring, true).
		Find(&subscribers).Error; err != nil {
		logger.Error("failed to resolve subscribers", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to trigger notifications"})
		return
	}

	logger.Info("notification triggered",
		zap.String("type", req.Type),
		zap.String("title", req.Title),
		zap.String("site", req.Site),
		zap.Int("subscribers", len(subscribers)))

	created := 0
	var tokens []string

	for _, subscriber := range subscribers {
		notification := models.Notification{
			UserID:  subscriber.UserID,
			Title:   req.Title,
			Message: req.Message,
			Type:    req.Type,
			Status:  types.StatusUnread,
		}

		if err := db.DB.Create(&notification).Error; err != nil {
			logger.Error("failed to create notification",
				zap.Uint("user_id", subscriber.UserID),
				zap.Error(err))
			continue
		}

		created++

		BroadcastNotification(subscriber.UserID, notificationResponse(notification))

		if subscriber.EnableBrowser && subscriber.FCMToken != "" {
			tokens = append(tokens, subscriber.FCMToken)
		}
	}

	if push != nil && len(tokens) > 0 {
		payload := services.NotificationPayload{
			Title: req.Title,
			Body:  req.Message,
			Type:  req.Type,
			Site:  req.Site,
		}

		go push.SendToTokens(tokens, payload)
	}

	ctx.JSON(http.StatusOK, TriggerResponse{
		Message:              "Notifications sent successfully",
		SubscriberCount:      len(subscribers),
		NotificationsCreated: created,
	})
}
