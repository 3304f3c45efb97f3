package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	ExpenseBill             = "bill"
	ExpenseMaterialPurchase = "material_purchase"
	ExpenseSupplierPayment  = "supplier_payment"
	ExpenseSalary           = "salary"
	ExpenseOther            = "other"
)

// ExpenseTypes lists the accepted expense categories.
var ExpenseTypes = []string{ExpenseBill, ExpenseMaterialPurchase, ExpenseSupplierPayment, ExpenseSalary, ExpenseOther}

// IsValidExpenseType reports whether t is an accepted expense category.
func IsValidExpenseType(t string) bool {
	for _, et := range ExpenseTypes {
		if et == t {
			return true
		}
	}
	return false
}

// Expense is money spent by the shop.
type Expense struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Type        string          `gorm:"not null;index" json:"type"`
	Description *string         `gorm:"type:text" json:"description"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	ExpenseDate time.Time       `gorm:"type:date;not null;index" json:"expense_date"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// TableName specifies the table name for the Expense model
func (Expense) TableName() string {
	return "expenses"
}
