package otp

import (
	"time"
)

// OTP represents an OTP challenge for phone verification. Superseded and
// consumed rows stay in the table flagged is_used; only the newest unused
// row per phone number is authoritative.
type OTP struct {
	ID          uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	PhoneNumber string     `gorm:"type:varchar(20);not null;index" json:"phone_number"`
	Code        string     `gorm:"type:varchar(6);not null" json:"code"`
	Purpose     OTPPurpose `gorm:"type:varchar(50);not null" json:"purpose"`
	IsUsed      bool       `gorm:"default:false" json:"is_used"`
	ExpiresAt   time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// OTPPurpose represents the purpose of the OTP
type OTPPurpose string

const (
	OTPPurposeVoterLogin OTPPurpose = "voter_login_verification"
)

// IsExpired checks if the OTP has expired. A code is already invalid at the
// exact expiry instant.
func (o *OTP) IsExpired() bool {
	return !time.Now().Before(o.ExpiresAt)
}

// IsValid checks if the OTP is valid (not used and not expired)
func (o *OTP) IsValid() bool {
	return !o.IsUsed && !o.IsExpired()
}
