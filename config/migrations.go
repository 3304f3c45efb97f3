package config

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/kendall-kelly/cnc-shop-api/models"
	"gorm.io/gorm"
)

// Migrations brings the schema up to date.
func Migrations(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "20250301_create_shop_tables",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.Material{}, &models.Service{}, &models.Machine{}, &models.Staff{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("staff", "machines", "services", "materials")
			},
		},
		{
			ID: "20250301_create_order_tables",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.SetupJoinTable(&models.Order{}, "Staff", &models.OrderStaff{}); err != nil {
					return err
				}
				return tx.AutoMigrate(&models.Order{}, &models.OrderStaff{}, &models.Payment{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("payments", "order_staff", "orders")
			},
		},
		{
			ID: "20250315_create_expense_tables",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.Expense{}, &models.Supplier{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("suppliers", "expenses")
			},
		},
		{
			ID: "20250402_add_order_notes_and_design_files",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.SetupJoinTable(&models.Order{}, "Staff", &models.OrderStaff{}); err != nil {
					return err
				}
				return tx.AutoMigrate(&models.Order{}, &models.OrderNote{})
			},
			Rollback: func(tx *gorm.DB) error {
				if err := tx.Migrator().DropTable("order_notes"); err != nil {
					return err
				}
				return tx.Migrator().DropColumn(&models.Order{}, "design_file_key")
			},
		},
	})

	return m.Migrate()
}
