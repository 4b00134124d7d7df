package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/expensetracker/api/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ExpenseRepository struct {
	pool *pgxpool.Pool
}

func NewExpenseRepository(pool *pgxpool.Pool) *ExpenseRepository {
	return &ExpenseRepository{pool: pool}
}

const expenseColumns = `id, user_id, title, amount, category, payment_method,
	       date, created_at, updated_at`

func (r *ExpenseRepository) Create(ctx context.Context, e *domain.Expense) (*domain.Expense, error) {
	query := `
		INSERT INTO expenses (
			user_id, title, amount, category, payment_method, date
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + expenseColumns

	row := r.pool.QueryRow(ctx, query,
		e.UserID, e.Title, e.Amount, e.Category, e.PaymentMethod, e.Date,
	)
	return scanExpense(row)
}

func (r *ExpenseRepository) FindByID(ctx context.Context, id, userID int64) (*domain.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE id = $1 AND user_id = $2`
	return scanExpense(r.pool.QueryRow(ctx, query, id, userID))
}

func (r *ExpenseRepository) ListByUser(ctx context.Context, userID int64) ([]*domain.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE user_id = $1 ORDER BY date DESC, id DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*domain.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

func (r *ExpenseRepository) Update(ctx context.Context, e *domain.Expense) (*domain.Expense, error) {
	query := `
		UPDATE expenses
		SET    title          = $3,
		       amount         = $4,
		       category       = $5,
		       payment_method = $6,
		       date           = $7,
		       updated_at     = NOW()
		WHERE  id = $1 AND user_id = $2
		RETURNING ` + expenseColumns

	row := r.pool.QueryRow(ctx, query,
		e.ID, e.UserID, e.Title, e.Amount, e.Category, e.PaymentMethod, e.Date,
	)
	return scanExpense(row)
}

func (r *ExpenseRepository) Delete(ctx context.Context, id, userID int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM expenses WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrExpenseNotFound
	}
	return nil
}

func scanExpense(row pgx.Row) (*domain.Expense, error) {
	var e domain.Expense
	err := row.Scan(
		&e.ID, &e.UserID, &e.Title, &e.Amount, &e.Category,
		&e.PaymentMethod, &e.Date, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrExpenseNotFound
		}
		return nil, fmt.Errorf("scan expense: %w", err)
	}
	return &e, nil
}
