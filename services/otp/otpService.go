package otp

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"os"
	"strconv"
	"time"

	"voting-system/httpServices/sms"
	"voting-system/logger"
	"voting-system/models/otp"
	"voting-system/models/voter"

	"gorm.io/gorm"
)

const (
	defaultTTLMinutes = 5

	codeMin  = 100000
	codeSpan = 900000 // codes are uniform over [100000, 999999]
)

// Service handles OTP operations
type Service struct {
	DB         *gorm.DB
	SMSService *sms.SMSService
	TTL        time.Duration
}

// NewService creates a new OTP service. OTP_TTL_MINUTES overrides the
// 5-minute default validity window.
func NewService(db *gorm.DB) *Service {
	ttl := defaultTTLMinutes
	if v := os.Getenv("OTP_TTL_MINUTES"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			ttl = parsed
		}
	}
	return &Service{
		DB:         db,
		SMSService: sms.NewSMSService(),
		TTL:        time.Duration(ttl) * time.Minute,
	}
}

// GenerateCode generates a random 6-digit code
func (s *Service) GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeSpan))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+codeMin), nil
}

// Issue creates and stores a challenge for the given phone number and hands
// the code to the SMS service. Any previously issued, unconsumed code for the
// phone number is invalidated so at most one challenge is live at a time.
// The phone number must belong to a registered voter.
func (s *Service) Issue(phoneNumber string) (*otp.OTP, error) {
	var v voter.Voter
	if err := s.DB.Where("phone_number = ?", phoneNumber).First(&v).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidPhoneNumber
		}
		return nil, fmt.Errorf("failed to look up voter: %w", err)
	}

	code, err := s.GenerateCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate code: %w", err)
	}

	newOTP := &otp.OTP{
		PhoneNumber: phoneNumber,
		Code:        code,
		Purpose:     otp.OTPPurposeVoterLogin,
		IsUsed:      false,
		ExpiresAt:   time.Now().Add(s.TTL),
	}

	// Supersede-then-create runs in one transaction so a concurrent Verify
	// never sees two live challenges for the phone number.
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&otp.OTP{}).
			Where("phone_number = ? AND is_used = false", phoneNumber).
			Update("is_used", true).Error; err != nil {
			return fmt.Errorf("failed to invalidate existing codes: %w", err)
		}
		if err := tx.Create(newOTP).Error; err != nil {
			return fmt.Errorf("failed to create OTP record: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Delivery failure is non-fatal: the stored code stays valid.
	if err := s.SMSService.SendOTP(phoneNumber, code); err != nil {
		logger.Error("Failed to send OTP SMS to "+phoneNumber, err)
	}

	return newOTP, nil
}

// Verify checks the submitted code against the live challenge for the phone
// number and consumes it on success, returning the voter it authenticates.
// It fails closed: no challenge, an expired challenge, and a mismatched code
// are each rejected, and a consumed code can never be replayed.
func (s *Service) Verify(phoneNumber, code string) (*voter.Voter, error) {
	var record otp.OTP
	err := s.DB.Where("phone_number = ? AND is_used = false", phoneNumber).
		Order("created_at DESC").
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find OTP record: %w", err)
	}

	if record.IsExpired() {
		return nil, ErrExpired
	}

	if record.Code != code {
		return nil, ErrMismatch
	}

	// Consume the code before reporting success. The is_used guard in the
	// UPDATE makes the consume atomic: of any number of concurrent
	// verifications with the same code, exactly one flips the flag and the
	// rest see zero affected rows.
	res := s.DB.Model(&otp.OTP{}).
		Where("id = ? AND is_used = false", record.ID).
		Update("is_used", true)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to mark OTP as used: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	var v voter.Voter
	if err := s.DB.Where("phone_number = ?", phoneNumber).First(&v).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidPhoneNumber
		}
		return nil, fmt.Errorf("failed to look up voter: %w", err)
	}

	return &v, nil
}

// CleanupExpired removes expired challenge rows from the database
func (s *Service) CleanupExpired() error {
	return s.DB.Where("expires_at < ?", time.Now()).Delete(&otp.OTP{}).Error
}
