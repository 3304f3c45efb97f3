package services

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrOrderNotFound         = errors.New("order not found")
	ErrMaterialNotFound      = errors.New("material not found")
	ErrServiceNotFound       = errors.New("service not found")
	ErrMachineNotFound       = errors.New("machine not found")
	ErrStaffNotFound         = errors.New("staff member not found")
	ErrPaymentNotFound       = errors.New("payment not found")
	ErrInvalidPaymentAmount  = errors.New("payment amount must be greater than zero with at most two decimal places")
	ErrPaymentExceedsBalance = errors.New("payment exceeds remaining balance")
	ErrInvalidPaymentMode    = errors.New("invalid payment mode")
	ErrUnknownStatus         = errors.New("unknown order status")
	ErrTransitionNotAllowed  = errors.New("status transition not allowed")
	ErrMaterialQtyRequired   = errors.New("material quantity is required when a material is selected")
	ErrNegativeQuantity      = errors.New("material quantity cannot be negative")
	ErrQuantityPrecision     = errors.New("material quantity can have at most two decimal places")
	ErrChargesPrecision      = errors.New("additional charges can have at most two decimal places")
)

// BalanceError rejects a payment larger than what is still owed. It matches
// ErrPaymentExceedsBalance with errors.Is.
type BalanceError struct {
	Remaining decimal.Decimal
}

func (e *BalanceError) Error() string {
	return fmt.Sprintf("%s: remaining balance is %s", ErrPaymentExceedsBalance, e.Remaining.StringFixed(2))
}

func (e *BalanceError) Unwrap() error {
	return ErrPaymentExceedsBalance
}
