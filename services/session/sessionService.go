package session

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"voting-system/logger"
	"voting-system/models/session"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const defaultTTLMinutes = 30

// Service owns the session-to-voter binding. Sessions live server-side; the
// bearer token only carries the session id.
type Service struct {
	DB     *gorm.DB
	secret []byte
	TTL    time.Duration
}

// NewService creates a new session service. SESSION_SECRET signs tokens and
// SESSION_TTL_MINUTES overrides the 30-minute default lifetime.
func NewService(db *gorm.DB) *Service {
	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		logger.Warning("SESSION_SECRET is not set, using an insecure development secret")
		secret = "voting-system-dev-secret"
	}
	ttl := defaultTTLMinutes
	if v := os.Getenv("SESSION_TTL_MINUTES"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			ttl = parsed
		}
	}
	return &Service{
		DB:     db,
		secret: []byte(secret),
		TTL:    time.Duration(ttl) * time.Minute,
	}
}

// BeginOTPPending moves a session into the OTPPending state for the phone
// number. When sessionID names an existing session, its binding is
// overwritten, a pending or authenticated identity never merges with the new
// phone number. Otherwise a fresh session is created.
func (s *Service) BeginOTPPending(sessionID, phoneNumber string) (*session.Session, error) {
	if sessionID != "" {
		var existing session.Session
		err := s.DB.Where("id = ?", sessionID).First(&existing).Error
		switch {
		case err == nil:
			existing.PhoneNumber = phoneNumber
			existing.VoterID = nil
			existing.State = session.StateOTPPending
			existing.ExpiresAt = time.Now().Add(s.TTL)
			if err := s.DB.Save(&existing).Error; err != nil {
				return nil, fmt.Errorf("failed to rebind session: %w", err)
			}
			return &existing, nil
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, fmt.Errorf("failed to load session: %w", err)
		}
	}

	sess := &session.Session{
		ID:          uuid.NewString(),
		PhoneNumber: phoneNumber,
		State:       session.StateOTPPending,
		ExpiresAt:   time.Now().Add(s.TTL),
	}
	if err := s.DB.Create(sess).Error; err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return sess, nil
}

// Authenticate binds the voter to a pending session after a successful OTP
// verification and refreshes the session lifetime.
func (s *Service) Authenticate(sessionID string, voterID uint) (*session.Session, error) {
	sess, err := s.Get(sessionID)
	if err != nil {
		return nil, err
	}

	sess.VoterID = &voterID
	sess.State = session.StateAuthenticated
	sess.ExpiresAt = time.Now().Add(s.TTL)
	if err := s.DB.Save(sess).Error; err != nil {
		return nil, fmt.Errorf("failed to authenticate session: %w", err)
	}
	return sess, nil
}

// Get loads a live session by id. Expired sessions are deleted and reported
// as ErrExpired, which sends the client back to the anonymous state.
func (s *Service) Get(sessionID string) (*session.Session, error) {
	var sess session.Session
	if err := s.DB.Where("id = ?", sessionID).First(&sess).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if sess.IsExpired() {
		if err := s.DB.Delete(&sess).Error; err != nil {
			logger.Error("Failed to delete expired session "+sess.ID, err)
		}
		return nil, ErrExpired
	}
	return &sess, nil
}

// Logout destroys the session, returning the client to the anonymous state.
func (s *Service) Logout(sessionID string) error {
	return s.DB.Where("id = ?", sessionID).Delete(&session.Session{}).Error
}

// IssueToken signs a bearer token for the session.
func (s *Service) IssueToken(sess *session.Session) (string, error) {
	claims := jwt.MapClaims{
		"sid": sess.ID,
		"exp": sess.ExpiresAt.Unix(),
		"iat": time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// ParseToken validates a bearer token and returns the session id it carries.
func (s *Service) ParseToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	sid, ok := claims["sid"].(string)
	if !ok || sid == "" {
		return "", ErrInvalidToken
	}
	return sid, nil
}

// CleanupExpired removes sessions past their expiry.
func (s *Service) CleanupExpired() error {
	return s.DB.Where("expires_at < ?", time.Now()).Delete(&session.Session{}).Error
}
