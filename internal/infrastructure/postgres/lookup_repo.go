package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/expensetracker/api/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LookupRepository reads the seeded categories and payment_methods tables.
type LookupRepository struct {
	pool *pgxpool.Pool
}

func NewLookupRepository(pool *pgxpool.Pool) *LookupRepository {
	return &LookupRepository{pool: pool}
}

func (r *LookupRepository) FindCategory(ctx context.Context, id int64) (*domain.Category, error) {
	var c domain.Category
	err := r.pool.QueryRow(ctx, `SELECT id, name FROM categories WHERE id = $1`, id).
		Scan(&c.ID, &c.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("find category: %w", err)
	}
	return &c, nil
}

func (r *LookupRepository) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []*domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, &c)
	}
	return categories, rows.Err()
}

func (r *LookupRepository) FindPaymentMethod(ctx context.Context, id int64) (*domain.PaymentMethod, error) {
	var pm domain.PaymentMethod
	err := r.pool.QueryRow(ctx, `SELECT id, name FROM payment_methods WHERE id = $1`, id).
		Scan(&pm.ID, &pm.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPaymentMethodNotFound
		}
		return nil, fmt.Errorf("find payment method: %w", err)
	}
	return &pm, nil
}

func (r *LookupRepository) ListPaymentMethods(ctx context.Context) ([]*domain.PaymentMethod, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM payment_methods ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list payment methods: %w", err)
	}
	defer rows.Close()

	var methods []*domain.PaymentMethod
	for rows.Next() {
		var pm domain.PaymentMethod
		if err := rows.Scan(&pm.ID, &pm.Name); err != nil {
			return nil, fmt.Errorf("scan payment method: %w", err)
		}
		methods = append(methods, &pm)
	}
	return methods, rows.Err()
}
