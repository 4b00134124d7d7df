package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/expensetracker/api/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `id, name, gender, bdate, email, phone, password_hash,
	       email_verified, otp, otp_generated_at, created_at, updated_at`

func (r *UserRepository) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	query := `
		INSERT INTO users (
			name, gender, bdate, email, phone, password_hash,
			email_verified, otp, otp_generated_at
		) VALUES ($1, $2, $3, lower($4), $5, $6, $7, $8, $9)
		RETURNING ` + userColumns

	row := r.pool.QueryRow(ctx, query,
		u.Name, u.Gender, u.BirthDate, u.Email, u.Phone, u.PasswordHash,
		u.EmailVerified, u.OTP, u.OTPGeneratedAt,
	)

	created, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrEmailTaken
		}
		return nil, err
	}
	return created, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = lower($1)`
	return scanUser(r.pool.QueryRow(ctx, query, email))
}

func (r *UserRepository) List(ctx context.Context) ([]*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// VerifyOTP holds a row lock across the check-and-promote so a concurrent
// resend cannot swap the code mid-verification.
func (r *UserRepository) VerifyOTP(ctx context.Context, id int64, code string, window time.Duration) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	u, err := lockUser(ctx, tx, id)
	if err != nil {
		return err
	}

	if err := u.CheckOTP(code, window, time.Now()); err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		UPDATE users
		SET    email_verified   = TRUE,
		       otp              = NULL,
		       otp_generated_at = NULL,
		       updated_at       = NOW()
		WHERE  id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark verified: %w", err)
	}

	return tx.Commit(ctx)
}

// RotateOTP overwrites the pending code under the same row lock
// discipline as VerifyOTP.
func (r *UserRepository) RotateOTP(ctx context.Context, id int64, code string, generatedAt time.Time) (*domain.User, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	u, err := lockUser(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if u.EmailVerified {
		return nil, domain.ErrAlreadyVerified
	}

	_, err = tx.Exec(ctx, `
		UPDATE users
		SET    otp              = $2,
		       otp_generated_at = $3,
		       updated_at       = NOW()
		WHERE  id = $1`, id, code, generatedAt)
	if err != nil {
		return nil, fmt.Errorf("rotate otp: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	u.OTP = &code
	u.OTPGeneratedAt = &generatedAt
	return u, nil
}

func (r *UserRepository) Update(ctx context.Context, u *domain.User) (*domain.User, error) {
	query := `
		UPDATE users
		SET    name          = $2,
		       gender        = $3,
		       bdate         = $4,
		       email         = lower($5),
		       phone         = $6,
		       password_hash = $7,
		       updated_at    = NOW()
		WHERE  id = $1
		RETURNING ` + userColumns

	row := r.pool.QueryRow(ctx, query,
		u.ID, u.Name, u.Gender, u.BirthDate, u.Email, u.Phone, u.PasswordHash,
	)

	updated, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrEmailTaken
		}
		return nil, err
	}
	return updated, nil
}

// Delete removes the user and their expenses in one transaction.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM expenses WHERE user_id = $1`, id); err != nil {
		return fmt.Errorf("delete user expenses: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}

	return tx.Commit(ctx)
}

func (r *UserRepository) ClearStaleOTPs(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)

	tag, err := r.pool.Exec(ctx, `
		UPDATE users
		SET    otp              = NULL,
		       otp_generated_at = NULL,
		       updated_at       = NOW()
		WHERE  otp IS NOT NULL
		  AND  otp_generated_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("clear stale otps: %w", err)
	}
	return tag.RowsAffected(), nil
}

func lockUser(ctx context.Context, tx pgx.Tx, id int64) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 FOR UPDATE`
	return scanUser(tx.QueryRow(ctx, query, id))
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID, &u.Name, &u.Gender, &u.BirthDate, &u.Email, &u.Phone,
		&u.PasswordHash, &u.EmailVerified, &u.OTP, &u.OTPGeneratedAt,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}
