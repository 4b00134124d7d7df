package repository

import (
	"context"

	"github.com/expensetracker/api/internal/domain"
)

type ExpenseRepository interface {
	Create(ctx context.Context, e *domain.Expense) (*domain.Expense, error)
	FindByID(ctx context.Context, id, userID int64) (*domain.Expense, error)
	ListByUser(ctx context.Context, userID int64) ([]*domain.Expense, error)
	Update(ctx context.Context, e *domain.Expense) (*domain.Expense, error)
	Delete(ctx context.Context, id, userID int64) error
}

// LookupRepository serves the seeded category and payment-method tables.
// This service only reads them; management lives elsewhere.
type LookupRepository interface {
	FindCategory(ctx context.Context, id int64) (*domain.Category, error)
	ListCategories(ctx context.Context) ([]*domain.Category, error)
	FindPaymentMethod(ctx context.Context, id int64) (*domain.PaymentMethod, error)
	ListPaymentMethods(ctx context.Context) ([]*domain.PaymentMethod, error)
}
