package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	PaymentModeCash   = "cash"
	PaymentModeCard   = "card"
	PaymentModeUPI    = "upi"
	PaymentModeCredit = "credit"
)

// PaymentModes lists the accepted payment modes.
var PaymentModes = []string{PaymentModeCash, PaymentModeCard, PaymentModeUPI, PaymentModeCredit}

// IsValidPaymentMode reports whether m is an accepted payment mode.
func IsValidPaymentMode(m string) bool {
	for _, mode := range PaymentModes {
		if mode == m {
			return true
		}
	}
	return false
}

// NormalizePaymentMode coerces an unknown stored mode to cash.
func NormalizePaymentMode(m string) string {
	if IsValidPaymentMode(m) {
		return m
	}
	return PaymentModeCash
}

// Payment is an amount received against an order.
type Payment struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	OrderID     uint            `gorm:"not null;index" json:"order_id"`
	PaymentMode string          `gorm:"not null;default:'cash'" json:"payment_mode"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	PaymentDate time.Time       `gorm:"type:date;not null;index" json:"payment_date"`
	CreatedAt   time.Time       `json:"created_at"`
}

// TableName specifies the table name for the Payment model
func (Payment) TableName() string {
	return "payments"
}

// AfterFind coerces unknown stored modes to cash.
func (p *Payment) AfterFind(tx *gorm.DB) error {
	p.PaymentMode = NormalizePaymentMode(p.PaymentMode)
	return nil
}
