package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/kopisahaja/kopisahaja/app/models"
	"github.com/kopisahaja/kopisahaja/app/notifications"
	"github.com/kopisahaja/kopisahaja/app/repositories"
	"github.com/kopisahaja/kopisahaja/config"
	"github.com/kopisahaja/kopisahaja/pkg/auth"
	"github.com/kopisahaja/kopisahaja/pkg/crypt"
	"github.com/kopisahaja/kopisahaja/pkg/event"
	"github.com/kopisahaja/kopisahaja/pkg/googleid"
	"github.com/kopisahaja/kopisahaja/pkg/notification"
	"github.com/kopisahaja/kopisahaja/pkg/orm"
	"github.com/kopisahaja/kopisahaja/pkg/storage"
	"gorm.io/gorm"
)

const resetTokenTTL = time.Hour

// RegisterInput is the payload for account creation.
type RegisterInput struct {
	Username  string `json:"username"  validate:"nullable,alpha_dash,min=3,max=50"`
	Email     string `json:"email"     validate:"required,email"`
	Password  string `json:"password"  validate:"required,min=6,max=100"`
	FirstName string `json:"firstName" validate:"nullable,max=50"`
	LastName  string `json:"lastName"  validate:"nullable,max=50"`
	Phone     string `json:"phone"     validate:"nullable,max=20"`
}

// ProfileInput is the payload for profile updates.
type ProfileInput struct {
	FirstName string `json:"firstName" validate:"nullable,max=50"`
	LastName  string `json:"lastName"  validate:"nullable,max=50"`
	Phone     string `json:"phone"     validate:"nullable,max=20"`
}

// AuthResult pairs an issued token with the account it belongs to.
type AuthResult struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// AuthService owns identity, credentials and profiles.
type AuthService struct {
	users  *repositories.UserRepository
	resets *repositories.PasswordResetRepository
}

func NewAuthService(
	users *repositories.UserRepository,
	resets *repositories.PasswordResetRepository,
) *AuthService {
	return &AuthService{users: users, resets: resets}
}

// Register creates an email/password account and signs the user in.
func (s *AuthService) Register(input RegisterInput) (AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	taken, err := s.users.EmailTaken(email)
	if err != nil {
		return AuthResult{}, fmt.Errorf("check email: %w", err)
	}
	if taken {
		return AuthResult{}, ErrDuplicateEmail
	}

	username := input.Username
	if username == "" {
		username = models.UsernameFromEmail(email)
	}
	taken, err = s.users.UsernameTaken(username)
	if err != nil {
		return AuthResult{}, fmt.Errorf("check username: %w", err)
	}
	if taken {
		return AuthResult{}, ErrDuplicateUsername
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return AuthResult{}, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Phone:        input.Phone,
		AuthMethod:   models.AuthMethodEmail,
		Role:         models.RoleCustomer,
	}
	if err := s.users.Create(&user); err != nil {
		return AuthResult{}, fmt.Errorf("create user: %w", err)
	}

	event.FireAsync("user.registered", user)
	return s.issue(user)
}

// Login authenticates with email and password.
func (s *AuthService) Login(email, password string) (AuthResult, error) {
	user, err := s.users.FindByEmail(strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return AuthResult{}, ErrInvalidCredentials
	}
	if err != nil {
		return AuthResult{}, fmt.Errorf("load user: %w", err)
	}

	if user.PasswordHash == "" || !auth.CheckPassword(user.PasswordHash, password) {
		return AuthResult{}, ErrInvalidCredentials
	}
	return s.issue(user)
}

// StaffLogin authenticates a staff account by username (or email).
func (s *AuthService) StaffLogin(username, password string) (AuthResult, error) {
	user, err := s.users.FindByUsername(username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user, err = s.users.FindByEmail(strings.ToLower(username))
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return AuthResult{}, ErrInvalidCredentials
	}
	if err != nil {
		return AuthResult{}, fmt.Errorf("load user: %w", err)
	}

	if !user.IsStaff() || user.PasswordHash == "" || !auth.CheckPassword(user.PasswordHash, password) {
		return AuthResult{}, ErrInvalidCredentials
	}
	return s.issue(user)
}

// GoogleSignIn verifies a Google ID token, then signs in the matching
// account, links an existing email account, or creates a fresh one.
func (s *AuthService) GoogleSignIn(ctx context.Context, credential string) (AuthResult, error) {
	identity, err := googleid.Verify(ctx, credential, config.GoogleClientID())
	if err != nil {
		return AuthResult{}, fmt.Errorf("%w: %s", ErrInvalidCredentials, "google verification failed")
	}

	user, err := s.users.FindByGoogleID(identity.Sub)
	if err == nil {
		return s.issue(user)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return AuthResult{}, fmt.Errorf("load user: %w", err)
	}

	email := strings.ToLower(identity.Email)
	user, err = s.users.FindByEmail(email)
	if err == nil {
		// Existing email account: link the Google identity to it.
		user.GoogleID = identity.Sub
		if user.AuthMethod == models.AuthMethodEmail {
			user.AuthMethod = models.AuthMethodBoth
		}
		if user.ProfilePicture == "" {
			user.ProfilePicture = identity.Picture
		}
		if err := s.users.Update(&user); err != nil {
			return AuthResult{}, fmt.Errorf("link google account: %w", err)
		}
		return s.issue(user)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return AuthResult{}, fmt.Errorf("load user: %w", err)
	}

	username, err := s.uniqueUsername(models.UsernameFromEmail(email))
	if err != nil {
		return AuthResult{}, err
	}
	user = models.User{
		Username:       username,
		Email:          email,
		GoogleID:       identity.Sub,
		FirstName:      identity.GivenName,
		LastName:       identity.FamilyName,
		ProfilePicture: identity.Picture,
		AuthMethod:     models.AuthMethodGoogle,
		Role:           models.RoleCustomer,
	}
	if err := s.users.Create(&user); err != nil {
		return AuthResult{}, fmt.Errorf("create google user: %w", err)
	}
	return s.issue(user)
}

// ForgotPassword creates a one-hour reset token and mails it to the
// account. An unknown email returns an empty token and no error, so the
// endpoint can't be used to probe which addresses are registered.
func (s *AuthService) ForgotPassword(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	_, err := s.users.FindByEmail(email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load user: %w", err)
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	token := hex.EncodeToString(raw)

	reset := models.PasswordReset{
		Email:     email,
		TokenHash: crypt.Hash(token),
		ExpiresAt: time.Now().Add(resetTokenTTL),
	}
	if err := s.resets.Create(&reset); err != nil {
		return "", fmt.Errorf("store reset token: %w", err)
	}

	notification.SendAsync(email, &notifications.ResetPassword{Email: email, Token: token})
	return token, nil
}

// ResetPassword consumes a reset token and sets a new password. Expired
// and unknown tokens are indistinguishable to the caller.
func (s *AuthService) ResetPassword(token, newPassword string) error {
	reset, err := s.resets.FindByTokenHash(crypt.Hash(token))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrInvalidResetToken
	}
	if err != nil {
		return fmt.Errorf("load reset token: %w", err)
	}

	if reset.Expired(time.Now()) {
		_ = s.resets.Delete(reset.ID)
		return ErrInvalidResetToken
	}

	user, err := s.users.FindByEmail(reset.Email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		_ = s.resets.Delete(reset.ID)
		return ErrInvalidResetToken
	}
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = hash
	if user.AuthMethod == models.AuthMethodGoogle {
		user.AuthMethod = models.AuthMethodBoth
	}
	if err := s.users.Update(&user); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	return s.resets.Delete(reset.ID)
}

// Profile returns the account for an authenticated user id.
func (s *AuthService) Profile(userID uint) (models.User, error) {
	user, err := s.users.FindByID(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, ErrNotFound
	}
	return user, err
}

// UpdateProfile changes the editable profile fields.
func (s *AuthService) UpdateProfile(userID uint, input ProfileInput) (models.User, error) {
	user, err := s.Profile(userID)
	if err != nil {
		return models.User{}, err
	}
	user.FirstName = input.FirstName
	user.LastName = input.LastName
	user.Phone = input.Phone
	if err := s.users.Update(&user); err != nil {
		return models.User{}, fmt.Errorf("update profile: %w", err)
	}
	return user, nil
}

var allowedPictureExts = map[string]bool{
	".jpeg": true, ".jpg": true, ".png": true, ".gif": true,
}

// MaxPictureBytes caps profile picture uploads at 5 MB.
const MaxPictureBytes = 5 << 20

// UploadPicture stores a profile picture on the configured disk and records
// its public URL on the account.
func (s *AuthService) UploadPicture(userID uint, filename string, content []byte) (models.User, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedPictureExts[ext] {
		return models.User{}, NewValidationError("picture",
			"Picture must be a jpeg, jpg, png or gif file.")
	}
	if len(content) > MaxPictureBytes {
		return models.User{}, NewValidationError("picture", "Picture must be 5 MB or smaller.")
	}

	user, err := s.Profile(userID)
	if err != nil {
		return models.User{}, err
	}

	suffix := make([]byte, 8)
	if _, err := rand.Read(suffix); err != nil {
		return models.User{}, fmt.Errorf("generate filename: %w", err)
	}
	path := fmt.Sprintf("profiles/%d_%s%s", userID, hex.EncodeToString(suffix), ext)

	if err := storage.Put(path, content); err != nil {
		return models.User{}, fmt.Errorf("store picture: %w", err)
	}

	user.ProfilePicture = storage.URL(path)
	if err := s.users.Update(&user); err != nil {
		return models.User{}, fmt.Errorf("update profile: %w", err)
	}
	return user, nil
}

// PurgeExpiredResets removes stale reset tokens. Run hourly by the scheduler.
func (s *AuthService) PurgeExpiredResets() error {
	return s.resets.PurgeExpired(time.Now())
}

// UserPage is one page of accounts for the staff dashboard.
type UserPage struct {
	Users      []models.User  `json:"users"`
	Pagination orm.Pagination `json:"pagination"`
}

// ListUsers returns a page of registered accounts, newest pages by id order.
func (s *AuthService) ListUsers(page, perPage int) (UserPage, error) {
	users, p, err := s.users.All(page, perPage)
	if err != nil {
		return UserPage{}, err
	}
	return UserPage{Users: users, Pagination: p}, nil
}

// uniqueUsername appends a numeric suffix until the name is free.
func (s *AuthService) uniqueUsername(base string) (string, error) {
	candidate := base
	for i := 1; ; i++ {
		taken, err := s.users.UsernameTaken(candidate)
		if err != nil {
			return "", fmt.Errorf("check username: %w", err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s%d", base, i)
	}
}

// issue signs a token for the user.
func (s *AuthService) issue(user models.User) (AuthResult, error) {
	token, err := auth.GenerateToken(user.ID, user.Username, user.Email, user.Role)
	if err != nil {
		return AuthResult{}, fmt.Errorf("sign token: %w", err)
	}
	return AuthResult{Token: token, User: user}, nil
}
