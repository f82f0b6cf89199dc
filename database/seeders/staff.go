package seeders

import (
	"fmt"

	"github.com/kopisahaja/kopisahaja/app/models"
	"github.com/kopisahaja/kopisahaja/config"
	"github.com/kopisahaja/kopisahaja/pkg/auth"
	"gorm.io/gorm"
)

func init() {
	Register("staff", SeedStaff)
}

// SeedStaff creates the staff account from ADMIN_USERNAME / ADMIN_EMAIL /
// ADMIN_PASSWORD. Skipped when no password is configured or the account
// already exists.
func SeedStaff(db *gorm.DB) error {
	password := config.AdminPassword()
	if password == "" {
		fmt.Print("(ADMIN_PASSWORD not set, skipping) ")
		return nil
	}

	var n int64
	if err := db.Model(&models.User{}).
		Where("username = ?", config.AdminUsername()).
		Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	return db.Create(&models.User{
		Username:     config.AdminUsername(),
		Email:        config.AdminEmail(),
		PasswordHash: hash,
		AuthMethod:   models.AuthMethodEmail,
		Role:         models.RoleStaff,
	}).Error
}
