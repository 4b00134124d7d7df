package domain

import (
	"errors"
	"time"
)

var (
	ErrExpenseNotFound       = errors.New("expense not found")
	ErrCategoryNotFound      = errors.New("selected category does not exist")
	ErrPaymentMethodNotFound = errors.New("selected payment method does not exist")
)

type Expense struct {
	ID     int64
	UserID int64

	Title         string
	Amount        float64
	Category      string // denormalized category name
	PaymentMethod string // denormalized payment method name
	Date          time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

type Category struct {
	ID   int64
	Name string
}

type PaymentMethod struct {
	ID   int64
	Name string
}
