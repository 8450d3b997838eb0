package client_test

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/mcm-alerts/mcm-alerts/db"
	"github.com/mcm-alerts/mcm-alerts/internal/auth"
	"github.com/mcm-alerts/mcm-alerts/internal/client"
	"github.com/mcm-alerts/mcm-alerts/internal/handlers"
	"github.com/mcm-alerts/mcm-alerts/internal/models"
	"github.com/mcm-alerts/mcm-alerts/internal/router"
	"github.com/mcm-alerts/mcm-alerts/internal/services"
	"github.com/mcm-alerts/mcm-alerts/internal/types"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// startTestServer runs the real router over an in-memory database and
// returns an authenticated API client.
func startTestServer(t *testing.T) (*client.Client, models.User) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("Failed to access database pool: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	db.DB = gdb

	if err := db.MigrateDatabase(); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	handlers.Configure(zap.NewNop(), services.NewPushSender("", "", zap.NewNop()))

	user, err := auth.EnsureDefaultUser("user", "MCM alerts")
	if err != nil {
		t.Fatalf("Failed to seed user: %v", err)
	}

	server := httptest.NewServer(router.NewRouter())
	t.Cleanup(server.Close)

	api, err := client.New(server.URL)
	if err != nil {
		t.Fatalf("Failed to build client: %v", err)
	}

	logged, err := api.Login(context.Background(), "user", "MCM alerts")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if logged.Username != "user" {
		t.Fatalf("Expected logged-in user, got %+v", logged)
	}

	return api, user
}

func TestLatestNotificationEmpty(t *testing.T) {
	api, _ := startTestServer(t)

	latest, err := api.LatestNotification(context.Background())
	if err != nil {
		t.Fatalf("LatestNotification failed: %v", err)
	}
	if latest != nil {
		t.Errorf("Expected nil for empty feed, got %+v", latest)
	}
}

func TestNotificationFlow(t *testing.T) {
	api, user := startTestServer(t)
	ctx := context.Background()

	for _, title := range []string{"first", "second"} {
		notification := models.Notification{
			UserID:  user.ID,
			Title:   title,
			Message: "details",
			Type:    types.EventSiteDown,
			Status:  types.StatusUnread,
		}
		if err := db.DB.Create(&notification).Error; err != nil {
			t.Fatalf("Failed to insert notification: %v", err)
		}
	}

	latest, err := api.LatestNotification(ctx)
	if err != nil {
		t.Fatalf("LatestNotification failed: %v", err)
	}
	if latest == nil || latest.Title != "second" {
		t.Fatalf("Expected newest notification, got %+v", latest)
	}

	count, err := api.TodayCount(ctx)
	if err != nil {
		t.Fatalf("TodayCount failed: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected today count 2, got %d", count)
	}

	if err := api.MarkRead(ctx, latest.ID); err != nil {
		t.Fatalf("MarkRead failed: %v", err)
	}

	refreshed, err := api.LatestNotification(ctx)
	if err != nil {
		t.Fatalf("LatestNotification failed: %v", err)
	}
	if refreshed.Status != types.StatusRead {
		t.Errorf("Expected status read, got %q", refreshed.Status)
	}
}

func TestSubscriptionFlow(t *testing.T) {
	api, _ := startTestServer(t)
	ctx := context.Background()

	missing, err := api.Subscription(ctx, types.SubscriptionSiteMonitoring)
	if err != nil {
		t.Fatalf("Subscription failed: %v", err)
	}
	if missing != nil {
		t.Fatalf("Expected nil before any upsert, got %+v", missing)
	}

	saved, err := api.UpsertSubscription(ctx, client.Subscription{
		Type:          types.SubscriptionSiteMonitoring,
		Enabled:       true,
		EnableSound:   true,
		EnableBrowser: true,
		FCMToken:      "device-token",
	})
	if err != nil {
		t.Fatalf("UpsertSubscription failed: %v", err)
	}
	if !saved.Enabled || saved.FCMToken != "device-token" {
		t.Errorf("Unexpected saved subscription %+v", saved)
	}

	if err := api.UpdateToken(ctx, types.SubscriptionSiteMonitoring, "rotated-token"); err != nil {
		t.Fatalf("UpdateToken failed: %v", err)
	}

	fetched, err := api.Subscription(ctx, types.SubscriptionSiteMonitoring)
	if err != nil {
		t.Fatalf("Subscription failed: %v", err)
	}
	if fetched == nil || fetched.FCMToken != "rotated-token" {
		t.Errorf("Expected rotated token, got %+v", fetched)
	}
}

func TestLogoutInvalidatesClient(t *testing.T) {
	api, _ := startTestServer(t)
	ctx := context.Background()

	if err := api.Logout(ctx); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}

	if _, err := api.Me(ctx); err == nil {
		t.Fatal("Expected Me to fail after logout")
	}
}
