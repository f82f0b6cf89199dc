package repositories

import (
	"github.com/kopisahaja/kopisahaja/app/models"
	"github.com/kopisahaja/kopisahaja/pkg/orm"
)

// UserRepository handles database operations for User.
type UserRepository struct{}

func NewUserRepository() *UserRepository {
	return &UserRepository{}
}

// FindByEmail looks up a user by their email address.
func (r *UserRepository) FindByEmail(email string) (models.User, error) {
	var user models.User
	err := orm.DB().Model(&models.User{}).Where("email = ?", email).First(&user)
	return user, err
}

// FindByUsername looks up a user by username.
func (r *UserRepository) FindByUsername(username string) (models.User, error) {
	var user models.User
	err := orm.DB().Model(&models.User{}).Where("username = ?", username).First(&user)
	return user, err
}

// FindByGoogleID looks up a user by their linked Google subject id.
func (r *UserRepository) FindByGoogleID(googleID string) (models.User, error) {
	var user models.User
	err := orm.DB().Model(&models.User{}).Where("google_id = ?", googleID).First(&user)
	return user, err
}

// FindByID looks up a user by primary key.
func (r *UserRepository) FindByID(id uint) (models.User, error) {
	var user models.User
	err := orm.DB().Model(&models.User{}).Where("id = ?", id).First(&user)
	return user, err
}

// Create persists a new user record.
func (r *UserRepository) Create(user *models.User) error {
	return orm.DB().Create(user)
}

// Update persists changes to an existing user.
func (r *UserRepository) Update(user *models.User) error {
	return orm.DB().Save(user)
}

// UsernameTaken reports whether a username is already in use.
func (r *UserRepository) UsernameTaken(username string) (bool, error) {
	var n int64
	err := orm.DB().Model(&models.User{}).Where("username = ?", username).Count(&n)
	return n > 0, err
}

// EmailTaken reports whether an email is already registered.
func (r *UserRepository) EmailTaken(email string) (bool, error) {
	var n int64
	err := orm.DB().Model(&models.User{}).Where("email = ?", email).Count(&n)
	return n > 0, err
}

// All returns all users with pagination.
func (r *UserRepository) All(page, limit int) ([]models.User, orm.Pagination, error) {
	var users []models.User
	pagination, err := orm.DB().Model(&models.User{}).GetWithPagination(&users, page, limit)
	return users, pagination, err
}
