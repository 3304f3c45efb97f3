package services

import (
	"sort"

	"github.com/kendall-kelly/cnc-shop-api/models"
	"github.com/shopspring/decimal"
)

// TotalPaid sums the payment amounts exactly.
func TotalPaid(payments []models.Payment) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p.Amount)
	}
	return total
}

// Remaining is the final price minus everything paid so far. It goes negative
// when the price was lowered after payments were taken.
func Remaining(order *models.Order, payments []models.Payment) decimal.Decimal {
	return order.FinalPrice.Sub(TotalPaid(payments))
}

// RecordPayment validates p against the order's balance and returns the
// payment list with p appended. Amounts must be positive whole paise. The
// input slice is never modified.
func RecordPayment(order *models.Order, payments []models.Payment, p models.Payment) ([]models.Payment, error) {
	if !p.Amount.IsPositive() || !HasMoneyScale(p.Amount) {
		return nil, ErrInvalidPaymentAmount
	}
	remaining := Remaining(order, payments)
	if p.Amount.GreaterThan(remaining) {
		return nil, &BalanceError{Remaining: remaining}
	}

	out := make([]models.Payment, len(payments), len(payments)+1)
	copy(out, payments)
	return append(out, p), nil
}

// SortPaymentsForDisplay orders payments newest first by payment date.
func SortPaymentsForDisplay(payments []models.Payment) {
	sort.SliceStable(payments, func(i, j int) bool {
		return payments[i].PaymentDate.After(payments[j].PaymentDate)
	})
}
