package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/expensetracker/api/internal/domain"
	"github.com/expensetracker/api/internal/usecase"
	"github.com/gin-gonic/gin"
)

type userUsecaser interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	Update(ctx context.Context, id int64, input usecase.UpdateUserInput) (*domain.User, error)
	Delete(ctx context.Context, id int64) error
}

type UserHandler struct {
	userUsecase userUsecaser
	logger      *slog.Logger
}

func NewUserHandler(userUsecase userUsecaser, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		userUsecase: userUsecase,
		logger:      logger.With("component", "user_handler"),
	}
}

type userResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Gender    string    `json:"gender"`
	BirthDate string    `json:"bdate"`
	Phone     string    `json:"pno"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Gender:    u.Gender,
		BirthDate: u.BirthDate,
		Phone:     u.Phone,
		Verified:  u.EmailVerified,
		CreatedAt: u.CreatedAt,
	}
}

// GET /users/me
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.userUsecase.GetByID(c.Request.Context(), c.GetInt64("userID"))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": errUserNotFound})
			return
		}
		h.logger.Error("get user", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusOK, toUserResponse(user))
}

type updateUserRequest struct {
	Name         string `json:"name"         binding:"required"`
	Email        string `json:"email"        binding:"required,email"`
	PasswordHash string `json:"passwordhash" binding:"required"`
	Gender       string `json:"gender"       binding:"required"`
	BirthDate    string `json:"bdate"        binding:"required"`
	Phone        string `json:"pno"          binding:"required"`
}

// PUT /users/me
func (h *UserHandler) Update(c *gin.Context) {
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userUsecase.Update(c.Request.Context(), c.GetInt64("userID"), usecase.UpdateUserInput{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: req.PasswordHash,
		Gender:       req.Gender,
		BirthDate:    req.BirthDate,
		Phone:        req.Phone,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": errUserNotFound})
		case errors.Is(err, domain.ErrEmailTaken):
			c.JSON(http.StatusConflict, gin.H{"error": errEmailTaken})
		default:
			h.logger.Error("update user", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User updated successfully",
		"user":    toUserResponse(user),
	})
}

// DELETE /users/me
// Removes the account and every expense belonging to it.
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.userUsecase.Delete(c.Request.Context(), c.GetInt64("userID")); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": errUserNotFound})
			return
		}
		h.logger.Error("delete user", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User and their expenses deleted successfully"})
}
