package handler

import (
	"database/sql"

	"expense_tracker/internal/config"
	"expense_tracker/internal/expense"
	"expense_tracker/internal/middleware"
	"expense_tracker/internal/report"
	"expense_tracker/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/rabbitmq/amqp091-go"
)

// SetupHandler initializes all dependencies and routes.
func SetupHandler(db *sql.DB, conn *amqp091.Connection, redisClient *redis.Client, cfg *config.Config) *gin.Engine {
	r := gin.Default()

	userRepo := user.NewUserRepository()
	expenseRepo := expense.NewExpenseRepository()
	reportRepo := report.NewReportRepository()

	userService := user.NewUserService(userRepo, db)
	expenseService := expense.NewExpenseService(expenseRepo, db, redisClient)
	reportService := report.NewReportService(reportRepo, db, conn)

	userController := user.NewUserController(userService, cfg.JWT.Secret)
	expenseController := expense.NewExpenseController(expenseService)
	reportController := report.NewReportController(reportService)

	setupRoutes(r, userController, expenseController, reportController, cfg.JWT.Secret)

	return r
}

// setupRoutes configures all application routes.
func setupRoutes(r *gin.Engine, userCtrl *user.UserController, expenseCtrl *expense.ExpenseController, reportCtrl *report.ReportController, jwtSecret string) {
	// Public routes - Authentication
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/signup", userCtrl.Signup)
		authGroup.POST("/login", userCtrl.Login)
	}

	// Protected routes - API v1
	api := r.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(jwtSecret))
	{
		api.GET("/expenses", expenseCtrl.ListExpenses)
		api.POST("/expenses", expenseCtrl.CreateExpense)
		api.GET("/expenses/:id", expenseCtrl.GetExpense)
		api.PUT("/expenses/:id", expenseCtrl.UpdateExpense)
		api.DELETE("/expenses/:id", expenseCtrl.DeleteExpense)

		api.POST("/reports", reportCtrl.CreateReport)
		api.GET("/reports/:id", reportCtrl.GetReport)
	}
}
