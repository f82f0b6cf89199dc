package migrations

import (
	"github.com/kopisahaja/kopisahaja/app/models"
	"github.com/kopisahaja/kopisahaja/pkg/migration"
	"gorm.io/gorm"
)

func init() {
	migration.Register("20260101000000_create_users_table", &CreateUsersTable{})
	migration.Register("20260101000001_create_password_resets_table", &CreatePasswordResetsTable{})
	migration.Register("20260101000002_create_drinks_table", &CreateDrinksTable{})
	migration.Register("20260101000003_create_orders_table", &CreateOrdersTable{})
}

// -------- 0000: users --------

type CreateUsersTable struct{}

func (m *CreateUsersTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.User{})
}

func (m *CreateUsersTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("users")
}

// -------- 0001: password resets --------

type CreatePasswordResetsTable struct{}

func (m *CreatePasswordResetsTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.PasswordReset{})
}

func (m *CreatePasswordResetsTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("password_resets")
}

// -------- 0002: drinks --------

type CreateDrinksTable struct{}

func (m *CreateDrinksTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Drink{})
}

func (m *CreateDrinksTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("drinks")
}

// -------- 0003: orders + items --------

type CreateOrdersTable struct{}

func (m *CreateOrdersTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Order{}, &models.OrderItem{})
}

func (m *CreateOrdersTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("order_items", "orders")
}
