package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/expensetracker/api/internal/domain"
	"github.com/expensetracker/api/internal/usecase"
	"github.com/gin-gonic/gin"
)

type expenseUsecaser interface {
	Add(ctx context.Context, input usecase.ExpenseInput) (*domain.Expense, error)
	ListByUser(ctx context.Context, userID int64) ([]*domain.Expense, error)
	Update(ctx context.Context, expenseID int64, input usecase.ExpenseInput) (*domain.Expense, error)
	Delete(ctx context.Context, expenseID, userID int64) error
	Categories(ctx context.Context) ([]*domain.Category, error)
	PaymentMethods(ctx context.Context) ([]*domain.PaymentMethod, error)
}

type ExpenseHandler struct {
	expenseUsecase expenseUsecaser
	logger         *slog.Logger
}

func NewExpenseHandler(expenseUsecase expenseUsecaser, logger *slog.Logger) *ExpenseHandler {
	return &ExpenseHandler{
		expenseUsecase: expenseUsecase,
		logger:         logger.With("component", "expense_handler"),
	}
}

type expenseRequest struct {
	Title           string    `json:"title"  binding:"required"`
	Amount          float64   `json:"amount" binding:"required,gt=0"`
	CategoryID      int64     `json:"cid"    binding:"required"`
	PaymentMethodID int64     `json:"pmid"   binding:"required"`
	Date            time.Time `json:"date"   binding:"required"`
}

type expenseResponse struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	Amount        float64   `json:"amount"`
	Category      string    `json:"category"`
	PaymentMethod string    `json:"payment_method"`
	Date          time.Time `json:"date"`
	CreatedAt     time.Time `json:"created_at"`
}

func toExpenseResponse(e *domain.Expense) expenseResponse {
	return expenseResponse{
		ID:            e.ID,
		Title:         e.Title,
		Amount:        e.Amount,
		Category:      e.Category,
		PaymentMethod: e.PaymentMethod,
		Date:          e.Date,
		CreatedAt:     e.CreatedAt,
	}
}

// POST /expenses
func (h *ExpenseHandler) Create(c *gin.Context) {
	var req expenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	expense, err := h.expenseUsecase.Add(c.Request.Context(), usecase.ExpenseInput{
		UserID:          c.GetInt64("userID"),
		Title:           req.Title,
		Amount:          req.Amount,
		CategoryID:      req.CategoryID,
		PaymentMethodID: req.PaymentMethodID,
		Date:            req.Date,
	})
	if err != nil {
		h.writeExpenseError(c, err, "add expense")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Expense added successfully.",
		"expense": toExpenseResponse(expense),
	})
}

// GET /expenses
func (h *ExpenseHandler) List(c *gin.Context) {
	expenses, err := h.expenseUsecase.ListByUser(c.Request.Context(), c.GetInt64("userID"))
	if err != nil {
		h.logger.Error("list expenses", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	out := make([]expenseResponse, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, toExpenseResponse(e))
	}
	c.JSON(http.StatusOK, out)
}

// PUT /expenses/:id
func (h *ExpenseHandler) Update(c *gin.Context) {
	expenseID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid expense id"})
		return
	}

	var req expenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	expense, err := h.expenseUsecase.Update(c.Request.Context(), expenseID, usecase.ExpenseInput{
		UserID:          c.GetInt64("userID"),
		Title:           req.Title,
		Amount:          req.Amount,
		CategoryID:      req.CategoryID,
		PaymentMethodID: req.PaymentMethodID,
		Date:            req.Date,
	})
	if err != nil {
		h.writeExpenseError(c, err, "update expense")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Expense updated successfully!",
		"expense": toExpenseResponse(expense),
	})
}

// DELETE /expenses/:id
func (h *ExpenseHandler) Delete(c *gin.Context) {
	expenseID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid expense id"})
		return
	}

	if err := h.expenseUsecase.Delete(c.Request.Context(), expenseID, c.GetInt64("userID")); err != nil {
		h.writeExpenseError(c, err, "delete expense")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Expense deleted successfully"})
}

type lookupResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// GET /categories
func (h *ExpenseHandler) Categories(c *gin.Context) {
	categories, err := h.expenseUsecase.Categories(c.Request.Context())
	if err != nil {
		h.logger.Error("list categories", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	out := make([]lookupResponse, 0, len(categories))
	for _, cat := range categories {
		out = append(out, lookupResponse{ID: cat.ID, Name: cat.Name})
	}
	c.JSON(http.StatusOK, out)
}

// GET /payment-methods
func (h *ExpenseHandler) PaymentMethods(c *gin.Context) {
	methods, err := h.expenseUsecase.PaymentMethods(c.Request.Context())
	if err != nil {
		h.logger.Error("list payment methods", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	out := make([]lookupResponse, 0, len(methods))
	for _, pm := range methods {
		out = append(out, lookupResponse{ID: pm.ID, Name: pm.Name})
	}
	c.JSON(http.StatusOK, out)
}

func (h *ExpenseHandler) writeExpenseError(c *gin.Context, err error, op string) {
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": errUserNotFound})
	case errors.Is(err, domain.ErrExpenseNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": errExpenseNotFound})
	case errors.Is(err, domain.ErrCategoryNotFound),
		errors.Is(err, domain.ErrPaymentMethodNotFound):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.Error(op, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
	}
}
