package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/mcm-alerts/mcm-alerts/db"
	"github.com/mcm-alerts/mcm-alerts/internal/auth"
	"github.com/mcm-alerts/mcm-alerts/internal/handlers"
	"github.com/mcm-alerts/mcm-alerts/internal/models"
	"github.com/mcm-alerts/mcm-alerts/internal/router"
	"github.com/mcm-alerts/mcm-alerts/internal/services"
	"github.com/mcm-alerts/mcm-alerts/internal/types"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// setupTest wires the handlers against a fresh in-memory database and
// returns the full router.
func setupTest(t *testing.T) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// A single connection keeps every query on the same in-memory database.
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

	return router.NewRouter()
}

// createTestUser seeds a user with a bcrypt-hashed password.
func createTestUser(t *testing.T, username, password string) models.User {
	t.Helper()

	user, err := auth.EnsureDefaultUser(username, password)
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// login performs a real login and returns the session cookie.
func login(t *testing.T, r *gin.Engine, username, password string) *http.Cookie {
	t.Helper()

	w := doJSON(t, r, http.MethodPost, "/api/sessions", map[string]string{
		"username": username,
		"password": password,
	}, nil)

	if w.Code != http.StatusOK {
		t.Fatalf("Login failed with status %d: %s", w.Code, w.Body.String())
	}

	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == types.SessionCookieName {
			return cookie
		}
	}

	t.Fatal("Login response did not set a session cookie")
	return nil
}

// createTestSubscription inserts a subscription row directly.
func createTestSubscription(t *testing.T, userID uint, enabled bool, token string) models.Subscription {
	t.Helper()

	subscription := models.Subscription{
		UserID:        userID,
		Type:          types.SubscriptionSiteMonitoring,
		Enabled:       enabled,
		EnableSound:   true,
		EnableBrowser: true,
		FCMToken:      token,
	}

	if err := db.DB.Create(&subscription).Error; err != nil {
		t.Fatalf("Failed to create test subscription: %v", err)
	}

	return subscription
}

// doJSON performs a request against the router, optionally authenticated.
func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request

	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to encode request body: %v", err)
		}
		req = httptest.NewRequest(method, path, bytes.NewReader(encoded))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	if cookie != nil {
		req.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// decodeJSON decodes the response body into v.
func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()

	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
