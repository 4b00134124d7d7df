package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/expensetracker/api/internal/domain"
	"github.com/expensetracker/api/internal/email"
	"github.com/expensetracker/api/internal/metrics"
	"github.com/expensetracker/api/internal/otp"
	"github.com/expensetracker/api/internal/repository"
	"github.com/golang-jwt/jwt/v5"
)

const (
	defaultOTPTTL = 1 * time.Minute
	defaultJWTTTL = 1 * time.Hour
)

type AuthUsecase struct {
	users  repository.UserRepository
	email  email.Sender
	codes  otp.Source
	jwtKey []byte
	jwtTTL time.Duration
	otpTTL time.Duration
}

func NewAuthUsecase(users repository.UserRepository, emailSender email.Sender, codes otp.Source, jwtKey []byte) *AuthUsecase {
	return &AuthUsecase{
		users:  users,
		email:  emailSender,
		codes:  codes,
		jwtKey: jwtKey,
		jwtTTL: defaultJWTTTL,
		otpTTL: defaultOTPTTL,
	}
}

type RegisterInput struct {
	Name         string
	Email        string
	PasswordHash string
	Gender       string
	BirthDate    string
	Phone        string
}

// Register creates an unverified account with a fresh passcode and mails
// the passcode out. The account is committed before the mail call, so a
// delivery failure leaves the row in place: the created user is returned
// together with a domain.ErrOTPDelivery error and the caller decides how
// to surface that.
func (u *AuthUsecase) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	if input.Name == "" || input.Email == "" || input.PasswordHash == "" ||
		input.Gender == "" || input.BirthDate == "" || input.Phone == "" {
		return nil, domain.ErrMissingFields
	}

	code, err := u.codes.Code()
	if err != nil {
		return nil, fmt.Errorf("generate otp: %w", err)
	}

	now := time.Now()
	user := &domain.User{
		Name:           input.Name,
		Email:          strings.ToLower(input.Email),
		PasswordHash:   input.PasswordHash,
		Gender:         input.Gender,
		BirthDate:      input.BirthDate,
		Phone:          input.Phone,
		EmailVerified:  false,
		OTP:            &code,
		OTPGeneratedAt: &now,
	}

	created, err := u.users.Create(ctx, user)
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return nil, domain.ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	metrics.RegistrationsTotal.Inc()

	if err := u.sendOTP(ctx, created.Email, code); err != nil {
		return created, err
	}
	return created, nil
}

// VerifyOTP promotes an account to verified when the submitted code is
// pending, matches and is still fresh. The check-and-update runs under a
// row lock in the repository.
func (u *AuthUsecase) VerifyOTP(ctx context.Context, userID int64, code string) error {
	err := u.users.VerifyOTP(ctx, userID, code, u.otpTTL)
	switch {
	case err == nil:
		metrics.OTPVerificationsTotal.WithLabelValues("success").Inc()
		return nil
	case errors.Is(err, domain.ErrUserNotFound):
		metrics.OTPVerificationsTotal.WithLabelValues("not_found").Inc()
		return err
	case errors.Is(err, domain.ErrOTPNotPending):
		metrics.OTPVerificationsTotal.WithLabelValues("not_pending").Inc()
		return err
	case errors.Is(err, domain.ErrOTPMismatch):
		metrics.OTPVerificationsTotal.WithLabelValues("mismatch").Inc()
		return err
	case errors.Is(err, domain.ErrOTPExpired):
		metrics.OTPVerificationsTotal.WithLabelValues("expired").Inc()
		return err
	default:
		metrics.OTPVerificationsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("verify otp: %w", err)
	}
}

// ResendOTP invalidates any pending passcode, stores a fresh one and
// re-attempts delivery.
func (u *AuthUsecase) ResendOTP(ctx context.Context, userID int64) error {
	code, err := u.codes.Code()
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}

	user, err := u.users.RotateOTP(ctx, userID, code, time.Now())
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) || errors.Is(err, domain.ErrAlreadyVerified) {
			return err
		}
		return fmt.Errorf("rotate otp: %w", err)
	}

	return u.sendOTP(ctx, user.Email, code)
}

// Login checks credentials against a verified account and returns a
// signed session token plus the subject id. Unknown email and wrong
// credential are deliberately indistinguishable.
func (u *AuthUsecase) Login(ctx context.Context, emailAddr, passwordHash string) (string, int64, error) {
	user, err := u.users.FindByEmail(ctx, strings.ToLower(emailAddr))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
			return "", 0, domain.ErrInvalidCredentials
		}
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return "", 0, fmt.Errorf("find user: %w", err)
	}

	if user.PasswordHash != passwordHash {
		metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		return "", 0, domain.ErrInvalidCredentials
	}

	if !user.EmailVerified {
		metrics.LoginsTotal.WithLabelValues("unverified").Inc()
		return "", 0, domain.ErrEmailNotVerified
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   strconv.FormatInt(user.ID, 10),
		"email": user.Email,
		"name":  user.Name,
		"iat":   now.Unix(),
		"exp":   now.Add(u.jwtTTL).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(u.jwtKey)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return "", 0, fmt.Errorf("sign jwt: %w", err)
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return signed, user.ID, nil
}

func (u *AuthUsecase) sendOTP(ctx context.Context, to, code string) error {
	subject, body := email.OTPMessage(code, "1 minute")
	if err := u.email.Send(ctx, to, subject, body); err != nil {
		metrics.OTPEmailsTotal.WithLabelValues("failed").Inc()
		return fmt.Errorf("%w: %v", domain.ErrOTPDelivery, err)
	}
	metrics.OTPEmailsTotal.WithLabelValues("sent").Inc()
	return nil
}
