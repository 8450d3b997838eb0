package types

import (
	"os"
	"strings"
)

const ContextUserKey = "user"

// SubscriptionSiteMonitoring is the only subscription category the trigger
// fan-out resolves against.
const SubscriptionSiteMonitoring = "site_monitoring"

// Event types accepted by the trigger endpoint.
const (
	EventSiteUp       = "site_up"
	EventSiteDown     = "site_down"
	EventSlowResponse = "slow_response"
)

// Notification read states.
const (
	StatusUnread = "unread"
	StatusRead   = "read"
)

// SessionCookieName carries the opaque session id.
const SessionCookieName = "mcm_session"

var (
	// Default allowed origins for development
	defaultOrigins = []string{
		"http://localhost:3000",
		"http://localhost:5173",
	}

	AllowedOrigins = initAllowedOrigins()
)

func initAllowedOrigins() []string {
	origins := make([]string, len(defaultOrigins))
	copy(origins, defaultOrigins)

	if clientURL := os.Getenv("CLIENT_URL"); clientURL != "" {
		origins = append(origins, clientURL)
	}

	if allowedOrigins := os.Getenv("ALLOWED_ORIGINS"); allowedOrigins != "" {
		envOrigins := strings.Split(allowedOrigins, ",")
		for _, origin := range envOrigins {
			trimmed := strings.TrimSpace(origin)
			if trimmed != "" {
				origins = append(origins, trimmed)
			}
		}
	}

	return origins
}
