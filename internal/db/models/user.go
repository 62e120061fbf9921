package models

import (
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/rs/zerolog/log"
)

// AuthSource represents the authentication source for a user account.
type AuthSource string

const (
	// AuthSourceLocal indicates the user signs in with email and password.
	AuthSourceLocal AuthSource = "local"
	// AuthSourceOIDC indicates the user signs in via OpenID Connect.
	AuthSourceOIDC AuthSource = "oidc"
)

// User is a reader account and its public profile.
type User struct {
	// ID is the unique identifier for the user.
	ID uint64 `gorm:"primaryKey" json:"id"`
	// Active indicates whether the account can sign in.
	Active bool `json:"active"`
	// Email is the login name, unique per account.
	Email string `gorm:"unique;size:255;not null" json:"email"`
	// Username is the display name shown in the community.
	Username string `gorm:"size:100" json:"username"`
	// AvatarURL points to the profile picture.
	AvatarURL string `gorm:"size:512" json:"avatar_url"`
	// Password is the Argon2id hash (only set for local accounts).
	Password string `gorm:"size:255" json:"-"`
	// RoleID is the ID of the role assigned to this user.
	RoleID uint `gorm:"column:role_id;not null" json:"role_id"`
	// Role is the associated role.
	Role Role `gorm:"foreignKey:RoleID;references:ID;constraint:OnDelete:RESTRICT,OnUpdate:CASCADE" json:"-"`
	// AuthSource indicates how this user authenticates.
	AuthSource AuthSource `gorm:"type:varchar(20);not null;default:'local'" json:"auth_source"`
	// ExternalID is the OIDC subject claim.
	ExternalID string `gorm:"size:255" json:"-"`
	// TOTPSecret is the base32 secret of the second factor, empty until enrolled.
	TOTPSecret string `gorm:"size:64" json:"-"`
	// TOTPEnabled is set once the enrolled secret was confirmed with a valid code.
	TOTPEnabled bool      `json:"totp_enabled"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName specifies the database table name for the User model.
func (User) TableName() string {
	return "users"
}

// HashPassword hashes a plaintext password using Argon2id with the default parameters.
func HashPassword(password string) string {
	hashedPassword, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	if err != nil {
		log.Fatal().Msgf("failed to hash password: %v", err)
	}

	return hashedPassword
}

// VerifyPassword verifies a plaintext password against the stored hash in constant time.
func (u *User) VerifyPassword(password string) bool {
	if u.Password == "" {
		return false
	}

	match, err := argon2id.ComparePasswordAndHash(password, u.Password)
	if err != nil {
		log.Error().Msgf("failed to verify password: %v", err)
		return false
	}

	return match
}
