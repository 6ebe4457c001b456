package auth

import (
	"errors"
	"fmt"
	"strings"

	"voting-system/logger"
	"voting-system/middleware"
	voterModel "voting-system/models/voter"
	otpService "voting-system/services/otp"
	sessionService "voting-system/services/session"
	"voting-system/types"
	authTypes "voting-system/types/auth"
	"voting-system/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Controller handles registration and the OTP login flow
type Controller struct {
	DB       *gorm.DB
	Logger   *logger.AsyncLogger
	OTP      *otpService.Service
	Sessions *sessionService.Service
	Validate *validator.Validate
}

// NewAuthController creates a new auth controller
func NewAuthController(db *gorm.DB, asyncLogger *logger.AsyncLogger, otp *otpService.Service, sessions *sessionService.Service) *Controller {
	return &Controller{
		DB:       db,
		Logger:   asyncLogger,
		OTP:      otp,
		Sessions: sessions,
		Validate: validator.New(),
	}
}

// Register creates a new voter record
func (ac *Controller) Register(c *fiber.Ctx) error {
	var req authTypes.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", err)
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	if err := ac.Validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Validation failed: " + err.Error(),
		})
	}

	phone := utils.NormalizePhoneNumber(req.PhoneNumber)
	if !utils.ValidatePhoneNumber(phone) {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid phone number format",
		})
	}

	v := voterModel.Voter{
		PhoneNumber: phone,
		FirstName:   strings.TrimSpace(req.FirstName),
		LastName:    strings.TrimSpace(req.LastName),
	}
	if err := ac.DB.Create(&v).Error; err != nil {
		// The unique index on phone_number backs this up under races.
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "duplicate") || strings.Contains(err.Error(), "UNIQUE") {
			return c.Status(fiber.StatusConflict).JSON(types.ApiResponse{
				Status:  fiber.StatusConflict,
				Message: "A voter with this phone number is already registered",
			})
		}
		logger.Error("Failed to create voter", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to register voter",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(types.ApiResponse{
		Status:  fiber.StatusCreated,
		Message: "Registration successful, you can now request a verification code",
		Data: authTypes.VoterResponse{
			ID:          v.ID,
			PhoneNumber: v.PhoneNumber,
			FirstName:   v.FirstName,
			LastName:    v.LastName,
		},
	})
}

// RequestOTP issues a verification code for a registered phone number and
// returns a pending session token. A request carrying an existing session
// token rebinds that session to the new phone number.
func (ac *Controller) RequestOTP(c *fiber.Ctx) error {
	var req authTypes.RequestOTPRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", err)
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	if err := ac.Validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Validation failed: " + err.Error(),
		})
	}

	phone := utils.NormalizePhoneNumber(req.PhoneNumber)
	if !utils.ValidatePhoneNumber(phone) {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid phone number format",
		})
	}

	challenge, err := ac.OTP.Issue(phone)
	if err != nil {
		if errors.Is(err, otpService.ErrInvalidPhoneNumber) {
			return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
				Status:  fiber.StatusNotFound,
				Message: "Phone number not found, please register first",
			})
		}
		logger.Error("Failed to issue OTP", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to send verification code",
		})
	}

	// Carry over an existing session if the client presented one.
	sessionID := ""
	if token, ok := bearerToken(c); ok {
		if sid, err := ac.Sessions.ParseToken(token); err == nil {
			sessionID = sid
		}
	}

	sess, err := ac.Sessions.BeginOTPPending(sessionID, phone)
	if err != nil {
		logger.Error("Failed to begin pending session", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to create session",
		})
	}

	token, err := ac.Sessions.IssueToken(sess)
	if err != nil {
		logger.Error("Failed to issue session token", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to create session",
		})
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Verification code sent",
		Token:   token,
		Data: authTypes.OTPResponse{
			Message:   "Verification code sent to your phone number",
			ExpiresAt: challenge.ExpiresAt.Format("2006-01-02 15:04:05"),
			Success:   true,
		},
	})
}

// VerifyOTP checks the submitted code against the session's pending phone
// number and, on success, binds the voter to the session.
func (ac *Controller) VerifyOTP(c *fiber.Ctx) error {
	sess := middleware.SessionFromContext(c)
	if sess == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
			Status:  fiber.StatusUnauthorized,
			Message: "Session required, request a verification code first",
		})
	}

	var req authTypes.VerifyOTPRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", err)
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	if err := ac.Validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Validation failed: " + err.Error(),
		})
	}

	v, err := ac.OTP.Verify(sess.PhoneNumber, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, otpService.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
				Status:  fiber.StatusNotFound,
				Message: "No verification code found, please request a new one",
			})
		case errors.Is(err, otpService.ErrExpired):
			return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
				Status:  fiber.StatusBadRequest,
				Message: "Verification code has expired, please request a new one",
			})
		case errors.Is(err, otpService.ErrMismatch):
			// The session stays pending; the client may retry until expiry.
			return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
				Status:  fiber.StatusBadRequest,
				Message: "Invalid verification code",
			})
		}
		logger.Error("Failed to verify OTP", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to verify code",
		})
	}

	authSess, err := ac.Sessions.Authenticate(sess.ID, v.ID)
	if err != nil {
		logger.Error("Failed to authenticate session", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to authenticate session",
		})
	}

	token, err := ac.Sessions.IssueToken(authSess)
	if err != nil {
		logger.Error("Failed to issue session token", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to issue session token",
		})
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: fmt.Sprintf("Welcome %s %s, your phone number is verified", v.FirstName, v.LastName),
		Token:   token,
		Data: authTypes.VoterResponse{
			ID:          v.ID,
			PhoneNumber: v.PhoneNumber,
			FirstName:   v.FirstName,
			LastName:    v.LastName,
		},
	})
}

// Logout destroys the session
func (ac *Controller) Logout(c *fiber.Ctx) error {
	sess := middleware.SessionFromContext(c)
	if sess != nil {
		if err := ac.Sessions.Logout(sess.ID); err != nil {
			logger.Error("Failed to delete session", err)
			return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
				Status:  fiber.StatusInternalServerError,
				Message: "Failed to log out",
			})
		}
	}
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Logged out",
	})
}

func bearerToken(c *fiber.Ctx) (string, bool) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}
