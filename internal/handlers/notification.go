package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mcm-alerts/mcm-alerts/db"
	"github.com/mcm-alerts/mcm-alerts/internal/models"
	"github.com/mcm-alerts/mcm-alerts/internal/types"
	"github.com/mcm-alerts/mcm-alerts/internal/utils"
	"go.uber.org/zap"
)

type NotificationResponse struct {
	ID        uint      `json:"id"`
	UserID    uint      `json:"user_id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func notificationResponse(n models.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		UserID:    n.UserID,
		Title:     n.Title,
		Message:   n.Message,
		Type:      n.Type,
		Status:    n.Status,
		CreatedAt: n.CreatedAt,
	}
}

// ListNotifications handles GET /api/notifications?limit=N, newest first.
func ListNotifications(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	limit := 10

	if raw := ctx.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	var notifications []models.Notification

	if err := db.DB.Where("user_id = ?", userID).
		Order("id DESC").
		Limit(limit).
		Find(&notifications).Error; err != nil {
		logger.Error("failed to fetch notifications", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notifications"})
		return
	}

	response := make([]NotificationResponse, 0, len(notifications))

	for _, n := range notifications {
		response = append(response, notificationResponse(n))
	}

	ctx.JSON(http.StatusOK, response)
}

// TodayNotificationCount handles GET /api/notifications/count/today. Counts
// rows created within the current calendar day, not at exactly midnight.
func TodayNotificationCount(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	var count int64

	if err := db.DB.Model(&models.Notification{}).
		Where("user_id = ? AND created_at >= ? AND created_at < ?", userID, dayStart, dayEnd).
		Count(&count).Error; err != nil {
		logger.Error("failed to count notifications", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notification count"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"count": count})
}

// MarkNotificationRead handles PATCH /api/notifications/:id/read. Marking an
// already-read notification again is a no-op success.
func MarkNotificationRead(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid notification id"})
		return
	}

	if err := db.DB.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("status", types.StatusRead).Error; err != nil {
		logger.Error("failed to mark notification read", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark notification as read"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true})
}
