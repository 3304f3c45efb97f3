package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/cnc-shop-api/config"
	"github.com/kendall-kelly/cnc-shop-api/models"
	"github.com/kendall-kelly/cnc-shop-api/services"
	"github.com/shopspring/decimal"
)

// ExpenseRequest represents the request body for recording or replacing an expense
type ExpenseRequest struct {
	Type        string           `json:"type" binding:"required"`
	Description *string          `json:"description"`
	Amount      *decimal.Decimal `json:"amount"`
	ExpenseDate *string          `json:"expense_date"`
}

func bindExpense(c *gin.Context, e *models.Expense) bool {
	var req ExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return false
	}
	expenseType := strings.TrimSpace(req.Type)
	if !models.IsValidExpenseType(expenseType) {
		respondError(c, http.StatusBadRequest, "INVALID_EXPENSE_TYPE", "Type must be one of "+strings.Join(models.ExpenseTypes, ", "))
		return false
	}
	if req.Amount == nil || !req.Amount.IsPositive() || !services.HasMoneyScale(*req.Amount) {
		respondError(c, http.StatusBadRequest, "INVALID_AMOUNT", "amount must be greater than zero with at most two decimal places")
		return false
	}
	date, err := parseDate(req.ExpenseDate)
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_DATE", "expense_date must be a date in YYYY-MM-DD format")
		return false
	}
	if date == nil {
		y, m, d := time.Now().Date()
		today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		date = &today
	}

	e.Type = expenseType
	e.Description = blankToNil(req.Description)
	e.Amount = req.Amount.Round(2)
	e.ExpenseDate = *date
	return true
}

// ListExpenses handles GET /api/v1/expenses - filters by expense date
// (from/to, inclusive) and ?type=
func ListExpenses(c *gin.Context) {
	from, to, ok := parseDateRange(c)
	if !ok {
		return
	}

	query := config.GetDB().WithContext(c.Request.Context()).Model(&models.Expense{})
	if t := c.Query("type"); t != "" {
		if !models.IsValidExpenseType(t) {
			respondError(c, http.StatusBadRequest, "INVALID_EXPENSE_TYPE", "Unknown expense type filter")
			return
		}
		query = query.Where("type = ?", t)
	}
	if from != nil {
		query = query.Where("expense_date >= ?", *from)
	}
	if to != nil {
		query = query.Where("expense_date < ?", *to)
	}

	var expenses []models.Expense
	if err := query.Order("expense_date DESC").Order("id DESC").Find(&expenses).Error; err != nil {
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to fetch expenses")
		return
	}

	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}
	respondOK(c, http.StatusOK, gin.H{
		"expenses": expenses,
		"total":    total,
	})
}

// GetExpense handles GET /api/v1/expenses/:id
func GetExpense(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	expense, ok := findRecord[models.Expense](c, config.GetDB(), id, "EXPENSE_NOT_FOUND", "Expense not found")
	if !ok {
		return
	}
	respondOK(c, http.StatusOK, expense)
}

// CreateExpense handles POST /api/v1/expenses
func CreateExpense(c *gin.Context) {
	var expense models.Expense
	if !bindExpense(c, &expense) {
		return
	}
	if err := config.GetDB().WithContext(c.Request.Context()).Create(&expense).Error; err != nil {
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create expense")
		return
	}
	respondOK(c, http.StatusCreated, expense)
}

// UpdateExpense handles PUT /api/v1/expenses/:id
func UpdateExpense(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	db := config.GetDB()
	expense, ok := findRecord[models.Expense](c, db, id, "EXPENSE_NOT_FOUND", "Expense not found")
	if !ok {
		return
	}
	if !bindExpense(c, expense) {
		return
	}
	if err := db.WithContext(c.Request.Context()).Save(expense).Error; err != nil {
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update expense")
		return
	}
	respondOK(c, http.StatusOK, expense)
}

// DeleteExpense handles DELETE /api/v1/expenses/:id
func DeleteExpense(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	result := config.GetDB().WithContext(c.Request.Context()).Delete(&models.Expense{}, id)
	if result.Error != nil {
		_ = c.Error(result.Error)
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete expense")
		return
	}
	if result.RowsAffected == 0 {
		respondError(c, http.StatusNotFound, "EXPENSE_NOT_FOUND", "Expense not found")
		return
	}
	respondOK(c, http.StatusOK, gin.H{"id": id})
}
