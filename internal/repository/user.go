package repository

import (
	"context"
	"time"

	"github.com/expensetracker/api/internal/domain"
)

type UserRepository interface {
	// Create inserts an unverified user. A duplicate email (compared
	// case-insensitively) yields domain.ErrEmailTaken.
	Create(ctx context.Context, u *domain.User) (*domain.User, error)

	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)

	// VerifyOTP atomically checks the pending code under a row lock and,
	// on success, marks the user verified and clears the code. Failures
	// map to domain.ErrUserNotFound, ErrOTPNotPending, ErrOTPMismatch
	// or ErrOTPExpired.
	VerifyOTP(ctx context.Context, id int64, code string, window time.Duration) error

	// RotateOTP replaces the pending code and its issuance timestamp
	// under the same row lock, so a resend cannot interleave with a
	// verification. Returns the user so callers can deliver the new
	// code. Fails with domain.ErrAlreadyVerified on verified accounts.
	RotateOTP(ctx context.Context, id int64, code string, generatedAt time.Time) (*domain.User, error)

	Update(ctx context.Context, u *domain.User) (*domain.User, error)

	// Delete removes the user and all their expenses in one transaction.
	Delete(ctx context.Context, id int64) error

	// ClearStaleOTPs nulls out codes issued more than olderThan ago and
	// reports how many rows were touched.
	ClearStaleOTPs(ctx context.Context, olderThan time.Duration) (int64, error)
}
