package httptransport

import (
	"log/slog"

	"github.com/expensetracker/api/internal/transport/http/handler"
	"github.com/expensetracker/api/internal/transport/http/middleware"
	"github.com/gin-gonic/gin"

	sloggin "github.com/samber/slog-gin"
)

func NewRouter(logger *slog.Logger, authHandler *handler.AuthHandler, expenseHandler *handler.ExpenseHandler, userHandler *handler.UserHandler, jwtKey []byte) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(sloggin.New(logger))
	r.Use(middleware.Metrics())

	// Public auth routes
	r.POST("/register", authHandler.Register)
	r.POST("/verify-otp", authHandler.VerifyOTP)
	r.POST("/resend-otp", authHandler.ResendOTP)
	r.POST("/login", authHandler.Login)

	authMW := middleware.Auth(jwtKey)

	// Protected expense routes
	expenses := r.Group("/expenses", authMW)
	expenses.POST("", expenseHandler.Create)
	expenses.GET("", expenseHandler.List)
	expenses.PUT("/:id", expenseHandler.Update)
	expenses.DELETE("/:id", expenseHandler.Delete)

	// Lookup tables consumed by the expense form
	r.GET("/categories", authMW, expenseHandler.Categories)
	r.GET("/payment-methods", authMW, expenseHandler.PaymentMethods)

	// Protected account routes
	users := r.Group("/users", authMW)
	users.GET("/me", userHandler.Get)
	users.PUT("/me", userHandler.Update)
	users.DELETE("/me", userHandler.Delete)

	return r
}
