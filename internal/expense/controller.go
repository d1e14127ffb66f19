package expense

import (
	"errors"
	"net/http"

	"expense_tracker/internal/auth"

	"github.com/gin-gonic/gin"
)

type ExpenseController struct {
	service ExpenseServiceInterface
}

func NewExpenseController(service ExpenseServiceInterface) *ExpenseController {
	return &ExpenseController{
		service: service,
	}
}

type createExpenseRequest struct {
	Title    string   `json:"title"`
	Category string   `json:"category"`
	Amount   *float64 `json:"amount"`
	Date     string   `json:"date"`
}

type updateExpenseRequest struct {
	Title    *string  `json:"title"`
	Category *string  `json:"category"`
	Amount   *float64 `json:"amount"`
	Date     *string  `json:"date"`
}

// ListExpenses returns the caller's expenses, optionally narrowed by
// category and an inclusive date range. The owner scope is always imposed;
// no filter can widen it.
func (ec *ExpenseController) ListExpenses(c *gin.Context) {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Authentication error", "error": "User not authenticated"})
		return
	}

	var filter ListFilter
	filter.Category = c.Query("category")
	if raw := c.Query("startDate"); raw != "" {
		if t, err := ParseDate(raw); err == nil {
			filter.StartDate = &t
		}
	}
	if raw := c.Query("endDate"); raw != "" {
		if t, err := ParseDate(raw); err == nil {
			filter.EndDate = &t
		}
	}

	expenses, err := ec.service.ListExpenses(userID, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error fetching expenses", "error": "Failed to fetch expenses"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Expenses fetched successfully",
		"data":    expenses,
		"count":   len(expenses),
	})
}

// CreateExpense validates every field before any write: title, category,
// amount, date, first failure wins.
func (ec *ExpenseController) CreateExpense(c *gin.Context) {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Authentication error", "error": "User not authenticated"})
		return
	}

	var req createExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Validation error", "error": "Invalid request body"})
		return
	}

	title, err := ValidateTitle(req.Title)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Validation error", "error": err.Error()})
		return
	}

	if req.Category == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Validation error", "error": "Category is required"})
		return
	}
	if err := ValidateCategory(req.Category); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Validation error", "error": err.Error()})
		return
	}

	if req.Amount == nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Validation error", "error": ErrAmountInvalid.Error()})
		return
	}
	if err := ValidateAmount(*req.Amount); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Validation error", "error": err.Error()})
		return
	}

	date, err := ParseDate(req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Validation error", "error": err.Error()})
		return
	}

	e := &Expense{
		UserID:   userID,
		Title:    title,
		Category: req.Category,
		Amount:   *req.Amount,
		Date:     date,
	}

	if err := ec.service.CreateExpense(e); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error creating expense", "error": "Failed to create expense"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Expense created successfully",
		"data":    e,
	})
}

// GetExpense fetches a single owned expense. An unknown id and another
// user's id answer the same way.
func (ec *ExpenseController) GetExpense(c *gin.Context) {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Authentication error", "error": "User not authenticated"})
		return
	}

	e, err := ec.service.GetExpense(c.Param("id"), userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Expense not found", "error": "Expense not found or you do not have permission to access it"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error fetching expense", "error": "Failed to fetch expense"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Expense fetched successfully",
		"data":    e,
	})
}

// UpdateExpense applies a partial update. Ownership is checked before field
// validation; every supplied field is validated before any is applied, so a
// late validation failure leaves the record untouched.
func (ec *ExpenseController) UpdateExpense(c *gin.Context) {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Authentication error", "error": "User not authenticated"})
		return
	}

	id := c.Param("id")

	if _, err := ec.service.GetExpense(id, userID); err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Expense not found", "error": "Expense not found or you do not have permission to update it"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error updating expense", "error": "Failed to update expense"})
		return
	}

	var req updateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Validation error", "error": "Invalid request body"})
		return
	}

	var fields UpdateFields

	if req.Title != nil {
		title, err := ValidateTitle(*req.Title)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Validation error", "error": err.Error()})
			return
		}
		fields.Title = &title
	}

	if req.Category != nil {
		if err := ValidateCategory(*req.Category); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Validation error", "error": err.Error()})
			return
		}
		fields.Category = req.Category
	}

	if req.Amount != nil {
		if err := ValidateAmount(*req.Amount); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Validation error", "error": err.Error()})
			return
		}
		fields.Amount = req.Amount
	}

	if req.Date != nil {
		date, err := ParseDate(*req.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Validation error", "error": err.Error()})
			return
		}
		fields.Date = &date
	}

	updated, err := ec.service.UpdateExpense(id, userID, fields)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Expense not found", "error": "Expense not found or you do not have permission to update it"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error updating expense", "error": "Failed to update expense"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Expense updated successfully",
		"data":    updated,
	})
}

// DeleteExpense removes an owned expense.
func (ec *ExpenseController) DeleteExpense(c *gin.Context) {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Authentication error", "error": "User not authenticated"})
		return
	}

	if err := ec.service.DeleteExpense(c.Param("id"), userID); err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Expense not found", "error": "Expense not found or you do not have permission to delete it"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error deleting expense", "error": "Failed to delete expense"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Expense deleted successfully",
	})
}
