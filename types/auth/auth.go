package auth

// RegisterRequest represents the request payload for voter registration
type RegisterRequest struct {
	PhoneNumber string `json:"phone_number" validate:"required,min=10,max=20"`
	FirstName   string `json:"first_name" validate:"required,min=1,max=100"`
	LastName    string `json:"last_name" validate:"required,min=1,max=100"`
}

// RequestOTPRequest represents the request payload for requesting an OTP
type RequestOTPRequest struct {
	PhoneNumber string `json:"phone_number" validate:"required,min=10,max=20"`
}

// VerifyOTPRequest represents the request payload for verifying an OTP.
// The phone number comes from the pending session, not the client.
type VerifyOTPRequest struct {
	Code string `json:"code" validate:"required,len=6,numeric"`
}

// OTPResponse represents the response for OTP operations
type OTPResponse struct {
	Message   string `json:"message"`
	ExpiresAt string `json:"expires_at,omitempty"`
	Success   bool   `json:"success"`
}

// VoterResponse is the public view of an authenticated voter
type VoterResponse struct {
	ID          uint   `json:"id"`
	PhoneNumber string `json:"phone_number"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
}
