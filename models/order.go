package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Order statuses in pipeline display order.
const (
	StatusLead        = "lead"
	StatusContacted   = "contacted"
	StatusConfirmed   = "confirmed"
	StatusProgressing = "progressing"
	StatusCompleted   = "completed"
	StatusCancelled   = "cancelled"
)

// OrderStatuses is the fixed set of pipeline stages, ordered as the board columns.
var OrderStatuses = []string{
	StatusLead,
	StatusContacted,
	StatusConfirmed,
	StatusProgressing,
	StatusCompleted,
	StatusCancelled,
}

// IsValidOrderStatus reports whether s is one of the six pipeline stages.
func IsValidOrderStatus(s string) bool {
	for _, status := range OrderStatuses {
		if status == s {
			return true
		}
	}
	return false
}

// NormalizeOrderStatus coerces a stored status to a known stage. Anything
// outside the set reads back as lead.
func NormalizeOrderStatus(s string) string {
	if IsValidOrderStatus(s) {
		return s
	}
	return StatusLead
}

// Order is a customer job moving through the sales pipeline.
//
// MaterialID, ServiceID and MachineID are plain references with no foreign
// key, so deleting a material leaves the order pointing at a missing row.
type Order struct {
	ID                uint             `gorm:"primaryKey" json:"id"`
	ClientName        string           `gorm:"not null" json:"client_name"`
	Phone             *string          `json:"phone"`
	Location          *string          `json:"location"`
	MaterialID        *uint            `gorm:"index" json:"material_id"`
	MaterialQty       *decimal.Decimal `gorm:"type:decimal(12,2)" json:"material_qty"`
	ServiceID         *uint            `gorm:"index" json:"service_id"`
	MachineID         *uint            `gorm:"index" json:"machine_id"`
	BasePrice         decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0" json:"base_price"`
	AdditionalCharges decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0" json:"additional_charges"`
	FinalPrice        decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0" json:"final_price"`
	Status            string           `gorm:"not null;default:'lead';index" json:"status"`
	DesignFileKey     *string          `json:"design_file_key"`
	DesignFileURL     *string          `gorm:"-" json:"design_file_url,omitempty"`
	Staff             []Staff          `gorm:"many2many:order_staff;" json:"staff"`
	Payments          []Payment        `gorm:"foreignKey:OrderID" json:"payments"`
	Notes             []OrderNote      `gorm:"foreignKey:OrderID" json:"notes,omitempty"`
	CreatedAt         time.Time        `gorm:"<-:create;index" json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// AfterFind coerces unknown stored statuses to lead.
func (o *Order) AfterFind(tx *gorm.DB) error {
	o.Status = NormalizeOrderStatus(o.Status)
	return nil
}

// OrderStaff links an order to an assigned staff member.
type OrderStaff struct {
	OrderID uint `gorm:"primaryKey" json:"order_id"`
	StaffID uint `gorm:"primaryKey" json:"staff_id"`
}

// TableName specifies the table name for the OrderStaff join model
func (OrderStaff) TableName() string {
	return "order_staff"
}
