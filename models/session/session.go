package session

import (
	"time"
)

// SessionState tracks where a client is in the OTP login flow.
type SessionState string

const (
	// StateOTPPending means an OTP was issued for PhoneNumber and the
	// client has not verified it yet.
	StateOTPPending SessionState = "otp_pending"
	// StateAuthenticated means the OTP was verified and the session is
	// bound to VoterID.
	StateAuthenticated SessionState = "authenticated"
)

// Session is the server-side record behind a session token. It references a
// voter by id once authenticated; it never owns voter data.
type Session struct {
	ID          string       `gorm:"type:varchar(36);primaryKey" json:"id"`
	PhoneNumber string       `gorm:"type:varchar(20);not null" json:"phone_number"`
	VoterID     *uint        `gorm:"index" json:"voter_id,omitempty"`
	State       SessionState `gorm:"type:varchar(20);not null" json:"state"`
	ExpiresAt   time.Time    `gorm:"not null;index" json:"expires_at"`
	CreatedAt   time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsExpired checks if the session has passed its expiry.
func (s *Session) IsExpired() bool {
	return !time.Now().Before(s.ExpiresAt)
}

// IsAuthenticated reports whether the session is bound to a voter and still live.
func (s *Session) IsAuthenticated() bool {
	return s.State == StateAuthenticated && s.VoterID != nil && !s.IsExpired()
}
