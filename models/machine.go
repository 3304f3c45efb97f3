package models

import "time"

const (
	MachineAvailable   = "available"
	MachineMaintenance = "maintenance"
	MachineUnavailable = "unavailable"
)

// MachineStatuses lists the accepted machine states.
var MachineStatuses = []string{MachineAvailable, MachineMaintenance, MachineUnavailable}

// IsValidMachineStatus reports whether s is an accepted machine state.
func IsValidMachineStatus(s string) bool {
	for _, status := range MachineStatuses {
		if status == s {
			return true
		}
	}
	return false
}

// Machine is a CNC machine on the shop floor.
type Machine struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Model     *string   `json:"model"`
	Status    string    `gorm:"not null;default:'available';index" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Machine model
func (Machine) TableName() string {
	return "machines"
}
