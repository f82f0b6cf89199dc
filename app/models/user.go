package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Auth methods recorded on a user account.
const (
	AuthMethodEmail  = "email"
	AuthMethodGoogle = "google"
	AuthMethodBoth   = "both"
)

// Roles understood by the authorization layer.
const (
	RoleCustomer = "customer"
	RoleStaff    = "staff"
)

// User is a registered customer or staff member. A user carries either a
// bcrypt password hash, a linked Google account, or both after linking.
type User struct {
	gorm.Model
	Username       string `gorm:"uniqueIndex;size:50"        json:"username"`
	Email          string `gorm:"uniqueIndex;size:100;not null" json:"email"`
	PasswordHash   string `gorm:"size:255"                   json:"-"`
	GoogleID       string `gorm:"index;size:100"             json:"-"`
	FirstName      string `gorm:"size:50"                    json:"first_name"`
	LastName       string `gorm:"size:50"                    json:"last_name"`
	Phone          string `gorm:"size:20"                    json:"phone"`
	ProfilePicture string `gorm:"size:255"                   json:"profile_picture"`
	AuthMethod     string `gorm:"size:10;default:email"      json:"auth_method"`
	Role           string `gorm:"size:20;default:customer"   json:"role"`
}

// DisplayName returns "First Last", trimmed, falling back to the username.
func (u *User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

// IsStaff reports whether the user may access admin endpoints.
func (u *User) IsStaff() bool { return u.Role == RoleStaff }

// UsernameFromEmail derives a default username from the local part of an
// email address, matching the behaviour of Google sign-ups.
func UsernameFromEmail(email string) string {
	if idx := strings.IndexByte(email, '@'); idx > 0 {
		return email[:idx]
	}
	return email
}

// PasswordReset is a single-use, time-limited password reset token.
// Only the SHA-256 digest of the opaque token is stored.
type PasswordReset struct {
	ID        uint      `gorm:"primaryKey"`
	Email     string    `gorm:"size:100;index;not null"`
	TokenHash string    `gorm:"size:64;uniqueIndex;not null"`
	ExpiresAt time.Time `gorm:"not null"`
	CreatedAt time.Time
}

// Expired reports whether the token's validity window has passed.
func (p *PasswordReset) Expired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}
