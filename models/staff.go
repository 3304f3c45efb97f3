package models

import "time"

// Staff is a shop worker that can be assigned to orders.
type Staff struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	Role        *string   `json:"role"` // operator, designer, helper...
	ContactInfo *string   `json:"contact_info"`
	IsAvailable bool      `gorm:"not null;default:true" json:"is_available"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Staff model
func (Staff) TableName() string {
	return "staff"
}
