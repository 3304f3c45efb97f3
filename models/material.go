package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Material is a stock item (sheet, rod, board) that orders consume.
type Material struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Name          string          `gorm:"not null" json:"name"`
	Thickness     *string         `json:"thickness"`
	PurchasePrice decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"purchase_price"`
	SellingPrice  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"selling_price"`
	CurrentStock  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"current_stock"`
	MinQuantity   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"min_quantity"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// TableName specifies the table name for the Material model
func (Material) TableName() string {
	return "materials"
}

// LowStock reports whether the stock level has dropped below the reorder threshold.
func (m Material) LowStock() bool {
	return m.CurrentStock.LessThan(m.MinQuantity)
}
