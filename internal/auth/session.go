package auth

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/mcm-alerts/mcm-alerts/db"
	"github.com/mcm-alerts/mcm-alerts/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SessionTTL matches the cookie max age (7 days).
const SessionTTL = 7 * 24 * time.Hour

var ErrSessionNotFound = errors.New("session not found or expired")

type sessionData struct {
	UserAgent string    `json:"user_agent,omitempty"`
	LoginAt   time.Time `json:"login_at"`
}

// CreateSession issues an opaque session id for the user and persists it.
func CreateSession(userID uint, userAgent string) (models.Session, error) {
	data, err := json.Marshal(sessionData{
		UserAgent: userAgent,
		LoginAt:   time.Now(),
	})

	if err != nil {
		return models.Session{}, err
	}

	session := models.Session{
		SID:       uuid.NewString(),
		UserID:    userID,
		Data:      datatypes.JSON(data),
		ExpiresAt: time.Now().Add(SessionTTL),
	}

	if err := db.DB.Create(&session).Error; err != nil {
		return models.Session{}, err
	}

	return session, nil
}

// LookupSession resolves a session id to its user. Expired sessions are
// treated as missing.
func LookupSession(sid string) (models.User, error) {
	var session models.Session

	err := db.DB.Where("sid = ? AND expires_at > ?", sid, time.Now()).First(&session).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrSessionNotFound
		}
		return models.User{}, err
	}

	var user models.User

	if err := db.DB.First(&user, session.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrSessionNotFound
		}
		return models.User{}, err
	}

	return user, nil
}

// DestroySession removes the session row. Destroying an unknown id is not an
// error.
func DestroySession(sid string) error {
	return db.DB.Where("sid = ?", sid).Delete(&models.Session{}).Error
}

// DeleteExpiredSessions purges sessions past their expiry and returns how
// many rows were removed.
func DeleteExpiredSessions() (int64, error) {
	result := db.DB.Where("expires_at <= ?", time.Now()).Delete(&models.Session{})
	return result.RowsAffected, result.Error
}

// EnsureDefaultUser seeds the login user on first boot. Existing users are
// left untouched, including their password hash.
func EnsureDefaultUser(username, password string) (models.User, error) {
	var user models.User

	err := db.DB.Where("username = ?", username).First(&user).Error

	if err == nil {
		return user, nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

	if err != nil {
		return models.User{}, err
	}

	user = models.User{
		Username:     username,
		Email:        username + "@mcm-alerts.com",
		FirstName:    "MCM",
		LastName:     "User",
		PasswordHash: string(passwordHash),
	}

	if err := db.DB.Create(&user).Error; err != nil {
		return models.User{}, err
	}

	return user, nil
}
