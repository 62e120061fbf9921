package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"gorm.io/gorm"

	"github.com/biblia-online/biblia/internal/db/models"
)

const defaultTOTPIssuer = "Bíblia Online"

// Enrollment is returned when a second factor is enrolled, before it is confirmed.
type Enrollment struct {
	Secret string `json:"secret"`
	URL    string `json:"url"`
}

// TOTP manages the optional time-based one-time password of an account.
type TOTP struct {
	db     *gorm.DB
	issuer string
	now    func() time.Time
}

// NewTOTP creates the second factor manager. An empty issuer falls back to the site name.
func NewTOTP(db *gorm.DB, issuer string) *TOTP {
	if issuer == "" {
		issuer = defaultTOTPIssuer
	}

	return &TOTP{db: db, issuer: issuer, now: time.Now}
}

// Enroll generates a new secret for the user. It stays inactive until Confirm.
func (t *TOTP) Enroll(userID uint64) (*Enrollment, error) {
	user, err := t.user(userID)
	if err != nil {
		return nil, err
	}

	if user.TOTPEnabled {
		return nil, ErrTOTPAlreadyEnabled
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      t.issuer,
		AccountName: user.Email,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate totp secret: %w", err)
	}

	if err = t.db.Model(&models.User{}).Where(whereID, userID).
		Update("totp_secret", key.Secret()).Error; err != nil {
		return nil, fmt.Errorf("failed to store totp secret: %w", err)
	}

	return &Enrollment{Secret: key.Secret(), URL: key.URL()}, nil
}

// Confirm activates the enrolled secret once the user proves it with a valid code.
func (t *TOTP) Confirm(userID uint64, code string) error {
	user, err := t.user(userID)
	if err != nil {
		return err
	}

	if user.TOTPSecret == "" {
		return ErrTOTPNotEnrolled
	}

	if !t.valid(user.TOTPSecret, code) {
		return ErrInvalidTOTPCode
	}

	return t.db.Model(&models.User{}).Where(whereID, userID).
		Update("totp_enabled", true).Error
}

// Disable removes the second factor. A valid current code is required.
func (t *TOTP) Disable(userID uint64, code string) error {
	user, err := t.user(userID)
	if err != nil {
		return err
	}

	if !user.TOTPEnabled {
		return ErrTOTPNotEnrolled
	}

	if !t.valid(user.TOTPSecret, code) {
		return ErrInvalidTOTPCode
	}

	return t.db.Model(&models.User{}).Where(whereID, userID).
		Updates(map[string]any{"totp_secret": "", "totp_enabled": false}).Error
}

// Verify checks the sign-in code of a user. Accounts without an active second factor always pass.
func (t *TOTP) Verify(user *models.User, code string) error {
	if user == nil || !user.TOTPEnabled {
		return nil
	}

	if strings.TrimSpace(code) == "" {
		return ErrTOTPRequired
	}

	if !t.valid(user.TOTPSecret, code) {
		return ErrInvalidTOTPCode
	}

	return nil
}

func (t *TOTP) valid(secret, code string) bool {
	ok, err := totp.ValidateCustom(strings.TrimSpace(code), secret, t.now().UTC(), totp.ValidateOpts{
		Period:    30, //nolint:mnd
		Skew:      1,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})

	return err == nil && ok
}

func (t *TOTP) user(userID uint64) (*models.User, error) {
	var user models.User
	if err := t.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}

		return nil, err
	}

	return &user, nil
}
