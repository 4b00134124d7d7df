package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/expensetracker/api/internal/domain"
	"github.com/expensetracker/api/internal/repository"
)

type UserUsecase struct {
	users repository.UserRepository
}

func NewUserUsecase(users repository.UserRepository) *UserUsecase {
	return &UserUsecase{users: users}
}

func (u *UserUsecase) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return u.users.FindByID(ctx, id)
}

type UpdateUserInput struct {
	Name         string
	Email        string
	PasswordHash string
	Gender       string
	BirthDate    string
	Phone        string
}

func (u *UserUsecase) Update(ctx context.Context, id int64, input UpdateUserInput) (*domain.User, error) {
	user, err := u.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user.Name = input.Name
	user.Email = strings.ToLower(input.Email)
	user.PasswordHash = input.PasswordHash
	user.Gender = input.Gender
	user.BirthDate = input.BirthDate
	user.Phone = input.Phone

	updated, err := u.users.Update(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return updated, nil
}

// Delete removes the user together with their expenses.
func (u *UserUsecase) Delete(ctx context.Context, id int64) error {
	return u.users.Delete(ctx, id)
}
