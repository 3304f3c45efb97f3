package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Supplier is a vendor the shop buys stock from.
type Supplier struct {
	ID                 uint            `gorm:"primaryKey" json:"id"`
	Name               string          `gorm:"not null" json:"name"`
	ContactInfo        *string         `json:"contact_info"`
	OutstandingPayment decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"outstanding_payment"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// TableName specifies the table name for the Supplier model
func (Supplier) TableName() string {
	return "suppliers"
}
