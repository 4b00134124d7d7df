package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/expensetracker/api/internal/domain"
	"github.com/expensetracker/api/internal/usecase"
	"github.com/gin-gonic/gin"
)

// authUsecaser is the subset of AuthUsecase the handler needs.
// Defined here (point of use) so tests can inject a fake.
type authUsecaser interface {
	Register(ctx context.Context, input usecase.RegisterInput) (*domain.User, error)
	VerifyOTP(ctx context.Context, userID int64, code string) error
	ResendOTP(ctx context.Context, userID int64) error
	Login(ctx context.Context, email, passwordHash string) (string, int64, error)
}

type AuthHandler struct {
	authUsecase authUsecaser
	logger      *slog.Logger
}

func NewAuthHandler(authUsecase authUsecaser, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authUsecase: authUsecase,
		logger:      logger.With("component", "auth_handler"),
	}
}

type registerRequest struct {
	Name         string `json:"name"         binding:"required"`
	Email        string `json:"email"        binding:"required,email"`
	PasswordHash string `json:"passwordhash" binding:"required"`
	Gender       string `json:"gender"       binding:"required"`
	BirthDate    string `json:"bdate"        binding:"required"`
	Phone        string `json:"pno"          binding:"required"`
}

// POST /register
// Creates the account even when OTP delivery fails; the delivery error is
// surfaced alongside the new user id.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.authUsecase.Register(c.Request.Context(), usecase.RegisterInput{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: req.PasswordHash,
		Gender:       req.Gender,
		BirthDate:    req.BirthDate,
		Phone:        req.Phone,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrMissingFields):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrEmailTaken):
			c.JSON(http.StatusConflict, gin.H{"error": errEmailTaken})
		case errors.Is(err, domain.ErrOTPDelivery):
			h.logger.Error("send otp email", "error", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": errOTPDelivery, "userId": user.ID})
		default:
			h.logger.Error("register", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User registered successfully. OTP sent to your email.",
		"userId":  user.ID,
	})
}

type verifyOTPRequest struct {
	UserID int64  `json:"userId" binding:"required"`
	OTP    string `json:"OTP"    binding:"required"`
}

// POST /verify-otp
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req verifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.authUsecase.VerifyOTP(c.Request.Context(), req.UserID, req.OTP)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": errUserNotFound})
		case errors.Is(err, domain.ErrOTPNotPending),
			errors.Is(err, domain.ErrOTPMismatch),
			errors.Is(err, domain.ErrOTPExpired):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.logger.Error("verify otp", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Email verified successfully"})
}

type resendOTPRequest struct {
	UserID int64 `json:"userId" binding:"required"`
}

// POST /resend-otp
func (h *AuthHandler) ResendOTP(c *gin.Context) {
	var req resendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.authUsecase.ResendOTP(c.Request.Context(), req.UserID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": errUserNotFound})
		case errors.Is(err, domain.ErrAlreadyVerified):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrOTPDelivery):
			h.logger.Error("send otp email", "error", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": errOTPDelivery})
		default:
			h.logger.Error("resend otp", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "OTP resent successfully"})
}

type loginRequest struct {
	Email        string `json:"email"        binding:"required,email"`
	PasswordHash string `json:"passwordhash" binding:"required"`
}

// POST /login
// Unknown email and wrong credential both return the same 401 body.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, userID, err := h.authUsecase.Login(c.Request.Context(), req.Email, req.PasswordHash)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"error": errInvalidCredentials})
		case errors.Is(err, domain.ErrEmailNotVerified):
			c.JSON(http.StatusUnauthorized, gin.H{"error": errEmailNotVerified})
		default:
			h.logger.Error("login", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":   token,
		"userId":  userID,
		"message": "Login successful",
	})
}
