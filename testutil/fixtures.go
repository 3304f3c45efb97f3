package testutil

import (
	"testing"

	"github.com/kendall-kelly/cnc-shop-api/models"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// CreateMaterial inserts a material with the given selling price.
func CreateMaterial(t *testing.T, db *gorm.DB, name, sellingPrice string) models.Material {
	t.Helper()
	m := models.Material{
		Name:          name,
		PurchasePrice: Dec(t, "0"),
		SellingPrice:  Dec(t, sellingPrice),
		CurrentStock:  Dec(t, "10"),
		MinQuantity:   Dec(t, "2"),
	}
	require.NoError(t, db.Create(&m).Error)
	return m
}

// CreateService inserts a service with the given price.
func CreateService(t *testing.T, db *gorm.DB, name, price string) models.Service {
	t.Helper()
	s := models.Service{Name: name, Price: Dec(t, price)}
	require.NoError(t, db.Create(&s).Error)
	return s
}

// CreateMachine inserts a machine in the given state.
func CreateMachine(t *testing.T, db *gorm.DB, name, status string) models.Machine {
	t.Helper()
	m := models.Machine{Name: name, Status: status}
	require.NoError(t, db.Create(&m).Error)
	return m
}

// CreateStaff inserts an available staff member.
func CreateStaff(t *testing.T, db *gorm.DB, name string) models.Staff {
	t.Helper()
	s := models.Staff{Name: name, IsAvailable: true}
	require.NoError(t, db.Create(&s).Error)
	return s
}

// CreateOrder inserts an order as-is, without going through pricing.
func CreateOrder(t *testing.T, db *gorm.DB, order models.Order) models.Order {
	t.Helper()
	if order.Status == "" {
		order.Status = models.StatusLead
	}
	require.NoError(t, db.Omit("Staff", "Payments", "Notes").Create(&order).Error)
	return order
}
