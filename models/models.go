package models

// All returns every persisted model, in dependency order, for migrations.
func All() []interface{} {
	return []interface{}{
		&Material{},
		&Service{},
		&Machine{},
		&Staff{},
		&Order{},
		&OrderStaff{},
		&Payment{},
		&OrderNote{},
		&Expense{},
		&Supplier{},
	}
}
