package services_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/kopisahaja/kopisahaja/app/models"
	"github.com/kopisahaja/kopisahaja/app/repositories"
	"github.com/kopisahaja/kopisahaja/app/services"
	"github.com/kopisahaja/kopisahaja/pkg/auth"
	"github.com/kopisahaja/kopisahaja/pkg/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthService(t *testing.T) *services.AuthService {
	t.Helper()
	setupDB(t)
	return services.NewAuthService(
		repositories.NewUserRepository(),
		repositories.NewPasswordResetRepository(),
	)
}

func registered(t *testing.T, svc *services.AuthService) services.AuthResult {
	t.Helper()
	result, err := svc.Register(services.RegisterInput{
		Email:     "adit@example.com",
		Password:  "secret123",
		FirstName: "Adit",
		Phone:     "0812000111",
	})
	require.NoError(t, err)
	return result
}

func TestRegister(t *testing.T) {
	svc := newAuthService(t)

	result := registered(t, svc)
	assert.Equal(t, "adit@example.com", result.User.Email)
	// Username defaults to the email local part.
	assert.Equal(t, "adit", result.User.Username)
	assert.Equal(t, models.AuthMethodEmail, result.User.AuthMethod)
	assert.Equal(t, models.RoleCustomer, result.User.Role)

	// Issued token carries the identity claims.
	claims, err := auth.ValidateToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, claims.UserID)
	assert.Equal(t, "adit", claims.Username)
	assert.Equal(t, models.RoleCustomer, claims.Role)
}

func TestRegisterNormalizesEmail(t *testing.T) {
	svc := newAuthService(t)

	result, err := svc.Register(services.RegisterInput{
		Email:    "  Siti@Example.COM ",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.Equal(t, "siti@example.com", result.User.Email)
}

func TestRegisterDuplicates(t *testing.T) {
	svc := newAuthService(t)
	registered(t, svc)

	_, err := svc.Register(services.RegisterInput{
		Email: "adit@example.com", Password: "another1",
	})
	assert.ErrorIs(t, err, services.ErrDuplicateEmail)

	_, err = svc.Register(services.RegisterInput{
		Username: "adit", Email: "other@example.com", Password: "another1",
	})
	assert.ErrorIs(t, err, services.ErrDuplicateUsername)
}

func TestLogin(t *testing.T) {
	svc := newAuthService(t)
	registered(t, svc)

	result, err := svc.Login("adit@example.com", "secret123")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)

	_, err = svc.Login("adit@example.com", "wrong")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)

	_, err = svc.Login("nobody@example.com", "secret123")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
}

func TestStaffLogin(t *testing.T) {
	svc := newAuthService(t)

	hash, err := auth.HashPassword("staffpass")
	require.NoError(t, err)
	staff := models.User{
		Username: "barista", Email: "barista@example.com",
		PasswordHash: hash, Role: models.RoleStaff,
	}
	require.NoError(t, database.DB.Create(&staff).Error)

	result, err := svc.StaffLogin("barista", "staffpass")
	require.NoError(t, err)
	assert.Equal(t, models.RoleStaff, result.User.Role)

	// Email works in place of the username.
	_, err = svc.StaffLogin("barista@example.com", "staffpass")
	assert.NoError(t, err)

	// A customer account is rejected even with valid credentials.
	registered(t, svc)
	_, err = svc.StaffLogin("adit", "secret123")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	svc := newAuthService(t)

	// Unknown addresses get the same empty answer as known ones, so the
	// endpoint cannot be used to enumerate accounts.
	token, err := svc.ForgotPassword("ghost@example.com")
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestResetPassword(t *testing.T) {
	svc := newAuthService(t)
	registered(t, svc)

	token, err := svc.ForgotPassword("adit@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	// 32 random bytes, hex encoded.
	assert.Len(t, token, 64)

	require.NoError(t, svc.ResetPassword(token, "newsecret1"))

	_, err = svc.Login("adit@example.com", "secret123")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	_, err = svc.Login("adit@example.com", "newsecret1")
	assert.NoError(t, err)

	// Single use: the same token is dead after consumption.
	err = svc.ResetPassword(token, "thirdsecret")
	assert.ErrorIs(t, err, services.ErrInvalidResetToken)
}

func TestResetPasswordExpiredToken(t *testing.T) {
	svc := newAuthService(t)
	registered(t, svc)

	token, err := svc.ForgotPassword("adit@example.com")
	require.NoError(t, err)

	// Age the row past its window.
	require.NoError(t, database.DB.Model(&models.PasswordReset{}).
		Where("email = ?", "adit@example.com").
		Update("expires_at", time.Now().Add(-time.Minute)).Error)

	err = svc.ResetPassword(token, "newsecret1")
	assert.ErrorIs(t, err, services.ErrInvalidResetToken)

	// The expired row was consumed as well.
	var n int64
	require.NoError(t, database.DB.Model(&models.PasswordReset{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestResetPasswordBadToken(t *testing.T) {
	svc := newAuthService(t)
	err := svc.ResetPassword("deadbeef", "newsecret1")
	assert.ErrorIs(t, err, services.ErrInvalidResetToken)
}

func TestForgotPasswordReplacesPriorToken(t *testing.T) {
	svc := newAuthService(t)
	registered(t, svc)

	first, err := svc.ForgotPassword("adit@example.com")
	require.NoError(t, err)
	second, err := svc.ForgotPassword("adit@example.com")
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	// Only the newest token is live.
	assert.ErrorIs(t, svc.ResetPassword(first, "newsecret1"), services.ErrInvalidResetToken)
	assert.NoError(t, svc.ResetPassword(second, "newsecret1"))
}

func TestProfile(t *testing.T) {
	svc := newAuthService(t)
	result := registered(t, svc)

	user, err := svc.Profile(result.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "adit@example.com", user.Email)

	_, err = svc.Profile(9999)
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestUpdateProfile(t *testing.T) {
	svc := newAuthService(t)
	result := registered(t, svc)

	user, err := svc.UpdateProfile(result.User.ID, services.ProfileInput{
		FirstName: "Aditya", LastName: "Pratama", Phone: "0812111222",
	})
	require.NoError(t, err)
	assert.Equal(t, "Aditya", user.FirstName)
	assert.Equal(t, "Pratama", user.LastName)
	assert.Equal(t, "0812111222", user.Phone)

	stored, err := svc.Profile(result.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "Aditya Pratama", stored.DisplayName())
}

func TestUploadPictureRejectsBadInput(t *testing.T) {
	svc := newAuthService(t)
	result := registered(t, svc)

	_, err := svc.UploadPicture(result.User.ID, "avatar.bmp", []byte("x"))
	ve, ok := services.AsValidation(err)
	require.True(t, ok)
	assert.Contains(t, ve.Fields, "picture")

	huge := make([]byte, services.MaxPictureBytes+1)
	_, err = svc.UploadPicture(result.User.ID, "avatar.png", huge)
	_, ok = services.AsValidation(err)
	assert.True(t, ok)
}

func TestPurgeExpiredResets(t *testing.T) {
	svc := newAuthService(t)
	registered(t, svc)

	token, err := svc.ForgotPassword("adit@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	require.NoError(t, database.DB.Model(&models.PasswordReset{}).
		Where("email = ?", "adit@example.com").
		Update("expires_at", time.Now().Add(-time.Hour)).Error)

	require.NoError(t, svc.PurgeExpiredResets())

	var n int64
	require.NoError(t, database.DB.Model(&models.PasswordReset{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestListUsersPaginates(t *testing.T) {
	svc := newAuthService(t)

	for i := 0; i < 5; i++ {
		_, err := svc.Register(services.RegisterInput{
			Email:    fmt.Sprintf("customer%d@example.com", i),
			Password: "secret123",
		})
		require.NoError(t, err)
	}

	page, err := svc.ListUsers(1, 2)
	require.NoError(t, err)
	assert.Len(t, page.Users, 2)
	assert.Equal(t, int64(5), page.Pagination.Total)
	assert.Equal(t, 3, page.Pagination.TotalPages)

	last, err := svc.ListUsers(3, 2)
	require.NoError(t, err)
	assert.Len(t, last.Users, 1)
	assert.Equal(t, 3, last.Pagination.Page)

	// Out-of-range inputs fall back to sane defaults.
	fallback, err := svc.ListUsers(0, 0)
	require.NoError(t, err)
	assert.Len(t, fallback.Users, 5)
	assert.Equal(t, 1, fallback.Pagination.Page)
}
