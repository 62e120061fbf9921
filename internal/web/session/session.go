// Package session keeps signed-in users in the fiber session storage.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"

	"github.com/biblia-online/biblia/internal/db/models"
)

const (
	// CookieName is the name of the login cookie.
	CookieName = "session"
	// LocalData is the fiber.Locals key holding the *Data of the request.
	LocalData = "session"
	// LocalUser is the fiber.Locals key holding the models.User for templates.
	LocalUser = "CurrentUser"
	// LocalUserID is the fiber.Locals key holding the user id as string, read by the access log.
	LocalUserID = "user_id"
)

// ErrNoSession is returned when a session id has no stored data.
var ErrNoSession = errors.New("session not found")

// Store is the global session store instance.
var Store *session.Store //nolint:gochecknoglobals

// Data represents the session data structure.
type Data struct {
	User models.User
	// IDToken is the raw OIDC ID token, sent as logout hint.
	IDToken string `json:",omitempty"`
}

// Write writes the session data for the given session ID with an expiration duration.
func (s *Data) Write(sessionID string, exp time.Duration) error {
	out, err := json.Marshal(s)
	if err != nil {
		return err
	}

	return Store.Storage.Set(sessionID, out, exp)
}

// Read reads the session data for the given session ID.
func (s *Data) Read(sessionID string) error {
	byteData, err := Store.Storage.Get(sessionID)
	if err != nil {
		return err
	}

	if len(byteData) == 0 {
		return ErrNoSession
	}

	return json.Unmarshal(byteData, s)
}

// Delete removes the session data of the given session ID.
func Delete(sessionID string) error {
	return Store.Storage.Delete(sessionID)
}

// Init initializes the session store with the provided storage backend.
// A nil storage keeps sessions in memory.
func Init(storage fiber.Storage) {
	Store = session.New(session.Config{
		Storage: storage,
	})
}

// GenerateSessionID generates a new secure random session ID.
func GenerateSessionID() (string, error) {
	// 32 bytes = 256 bits
	b := make([]byte, 32) //nolint:mnd
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}

// Current returns the session of the request, reading it from the storage once per request.
func Current(c *fiber.Ctx) (*Data, bool) {
	if d, ok := c.Locals(LocalData).(*Data); ok {
		return d, d.User.ID > 0
	}

	sessionID := c.Cookies(CookieName)
	if sessionID == "" || Store == nil {
		return nil, false
	}

	d := new(Data)
	if err := d.Read(sessionID); err != nil || d.User.ID == 0 {
		return nil, false
	}

	c.Locals(LocalData, d)
	c.Locals(LocalUser, d.User)
	c.Locals(LocalUserID, strconv.FormatUint(d.User.ID, 10))

	return d, true
}

// Start creates a session for user and sets the login cookie.
// Cookies are only marked Secure outside dev mode.
func Start(c *fiber.Ctx, data *Data, expiry time.Duration, devMode bool) error {
	sessionID, err := GenerateSessionID()
	if err != nil {
		return err
	}

	if err = data.Write(sessionID, expiry); err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     CookieName,
		Value:    sessionID,
		MaxAge:   int(expiry.Seconds()),
		Secure:   !devMode,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	c.Locals(LocalData, data)

	return nil
}

// End deletes the session of the request and clears the login cookie.
func End(c *fiber.Ctx, devMode bool) error {
	var err error
	if sessionID := c.Cookies(CookieName); sessionID != "" && Store != nil {
		err = Delete(sessionID)
	}

	c.Cookie(&fiber.Cookie{
		Name:     CookieName,
		Value:    "",
		MaxAge:   -1,
		Secure:   !devMode,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return err
}

// Refresh rewrites the user stored in the current session, e.g. after a profile update.
func Refresh(c *fiber.Ctx, user models.User, expiry time.Duration) error {
	sessionID := c.Cookies(CookieName)
	if sessionID == "" {
		return ErrNoSession
	}

	d, ok := Current(c)
	if !ok {
		return ErrNoSession
	}

	d.User = user
	c.Locals(LocalUser, user)

	return d.Write(sessionID, expiry)
}
