package domain

import (
	"errors"
	"time"
)

var (
	ErrMissingFields      = errors.New("all fields are required")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already exists")
	ErrOTPNotPending      = errors.New("otp not generated, please resend otp")
	ErrOTPMismatch        = errors.New("invalid otp")
	ErrOTPExpired         = errors.New("otp expired, please resend otp")
	ErrAlreadyVerified    = errors.New("user already verified")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrOTPDelivery        = errors.New("failed to send otp email")
)

type User struct {
	ID           int64
	Name         string
	Gender       string
	BirthDate    string
	Email        string
	Phone        string
	PasswordHash string

	EmailVerified  bool
	OTP            *string
	OTPGeneratedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CheckOTP reports whether code is a valid verification attempt at the
// given instant. Checks run in the same order the API documents them:
// pending, match, freshness.
func (u *User) CheckOTP(code string, window time.Duration, now time.Time) error {
	if u.OTP == nil || u.OTPGeneratedAt == nil {
		return ErrOTPNotPending
	}
	if *u.OTP != code {
		return ErrOTPMismatch
	}
	if now.Sub(*u.OTPGeneratedAt) > window {
		return ErrOTPExpired
	}
	return nil
}
