package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/expensetracker/api/internal/domain"
	"github.com/expensetracker/api/internal/repository"
)

type ExpenseUsecase struct {
	expenses repository.ExpenseRepository
	lookups  repository.LookupRepository
	users    repository.UserRepository
}

func NewExpenseUsecase(expenses repository.ExpenseRepository, lookups repository.LookupRepository, users repository.UserRepository) *ExpenseUsecase {
	return &ExpenseUsecase{expenses: expenses, lookups: lookups, users: users}
}

type ExpenseInput struct {
	UserID          int64
	Title           string
	Amount          float64
	CategoryID      int64
	PaymentMethodID int64
	Date            time.Time
}

// Add validates the referenced user, category and payment method, then
// stores the expense with the lookup names denormalized onto the row.
func (u *ExpenseUsecase) Add(ctx context.Context, input ExpenseInput) (*domain.Expense, error) {
	if _, err := u.users.FindByID(ctx, input.UserID); err != nil {
		return nil, err
	}

	category, paymentMethod, err := u.resolveLookups(ctx, input)
	if err != nil {
		return nil, err
	}

	expense := &domain.Expense{
		UserID:        input.UserID,
		Title:         input.Title,
		Amount:        input.Amount,
		Category:      category.Name,
		PaymentMethod: paymentMethod.Name,
		Date:          input.Date,
	}

	created, err := u.expenses.Create(ctx, expense)
	if err != nil {
		return nil, fmt.Errorf("create expense: %w", err)
	}
	return created, nil
}

func (u *ExpenseUsecase) ListByUser(ctx context.Context, userID int64) ([]*domain.Expense, error) {
	expenses, err := u.expenses.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return expenses, nil
}

func (u *ExpenseUsecase) Update(ctx context.Context, expenseID int64, input ExpenseInput) (*domain.Expense, error) {
	expense, err := u.expenses.FindByID(ctx, expenseID, input.UserID)
	if err != nil {
		return nil, err
	}

	category, paymentMethod, err := u.resolveLookups(ctx, input)
	if err != nil {
		return nil, err
	}

	expense.Title = input.Title
	expense.Amount = input.Amount
	expense.Category = category.Name
	expense.PaymentMethod = paymentMethod.Name
	expense.Date = input.Date

	updated, err := u.expenses.Update(ctx, expense)
	if err != nil {
		return nil, fmt.Errorf("update expense: %w", err)
	}
	return updated, nil
}

func (u *ExpenseUsecase) Delete(ctx context.Context, expenseID, userID int64) error {
	if err := u.expenses.Delete(ctx, expenseID, userID); err != nil {
		return err
	}
	return nil
}

func (u *ExpenseUsecase) Categories(ctx context.Context) ([]*domain.Category, error) {
	return u.lookups.ListCategories(ctx)
}

func (u *ExpenseUsecase) PaymentMethods(ctx context.Context) ([]*domain.PaymentMethod, error) {
	return u.lookups.ListPaymentMethods(ctx)
}

func (u *ExpenseUsecase) resolveLookups(ctx context.Context, input ExpenseInput) (*domain.Category, *domain.PaymentMethod, error) {
	category, err := u.lookups.FindCategory(ctx, input.CategoryID)
	if err != nil {
		return nil, nil, err
	}
	paymentMethod, err := u.lookups.FindPaymentMethod(ctx, input.PaymentMethodID)
	if err != nil {
		return nil, nil, err
	}
	return category, paymentMethod, nil
}
