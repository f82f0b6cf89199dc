package repositories

import (
	"time"

	"github.com/kopisahaja/kopisahaja/app/models"
	"github.com/kopisahaja/kopisahaja/pkg/orm"
)

// PasswordResetRepository handles reset-token persistence. Only token
// digests are stored; the opaque token never touches the database.
type PasswordResetRepository struct{}

func NewPasswordResetRepository() *PasswordResetRepository {
	return &PasswordResetRepository{}
}

// Create stores a new reset-token digest, replacing any previous token for
// the same email so only the latest one is usable.
func (r *PasswordResetRepository) Create(reset *models.PasswordReset) error {
	return orm.Transaction(func(tx *orm.Query) error {
		if err := tx.Model(&models.PasswordReset{}).
			Where("email = ?", reset.Email).
			Delete(&models.PasswordReset{}); err != nil {
			return err
		}
		return tx.Create(reset)
	})
}

// FindByTokenHash looks up a reset row by token digest.
func (r *PasswordResetRepository) FindByTokenHash(hash string) (models.PasswordReset, error) {
	var reset models.PasswordReset
	err := orm.DB().Model(&models.PasswordReset{}).Where("token_hash = ?", hash).First(&reset)
	return reset, err
}

// Delete consumes a reset row. A token can be used exactly once.
func (r *PasswordResetRepository) Delete(id uint) error {
	return orm.DB().Model(&models.PasswordReset{}).Where("id = ?", id).Delete(&models.PasswordReset{})
}

// PurgeExpired removes rows whose validity window has passed.
func (r *PasswordResetRepository) PurgeExpired(now time.Time) error {
	return orm.DB().Model(&models.PasswordReset{}).
		Where("expires_at < ?", now).
		Delete(&models.PasswordReset{})
}
