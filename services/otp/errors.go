package otp

import "errors"

var (
	// ErrInvalidPhoneNumber means the phone number does not belong to a
	// registered voter, so no code is issued for it.
	ErrInvalidPhoneNumber = errors.New("phone number is not registered to a voter")

	// ErrNotFound means no live challenge exists for the phone number.
	ErrNotFound = errors.New("no verification code found for this phone number")

	// ErrExpired means the challenge's validity window has passed.
	ErrExpired = errors.New("verification code has expired")

	// ErrMismatch means the submitted code does not match the live challenge.
	ErrMismatch = errors.New("verification code does not match")
)
