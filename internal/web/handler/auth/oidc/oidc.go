package oidc

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/biblia-online/biblia/internal/auth"
	"github.com/biblia-online/biblia/internal/config"
	"github.com/biblia-online/biblia/internal/db/models"
	"github.com/biblia-online/biblia/internal/web/handler"
	"github.com/biblia-online/biblia/internal/web/session"
)

const (
	// LoginPath is the path to initiate OIDC login.
	LoginPath = handler.RootPath + "auth/oidc/login"

	// CallbackPath is the path for OIDC callback.
	CallbackPath = handler.RootPath + "auth/oidc/callback"

	stateLifetime        = 5 * time.Minute
	defaultSessionExpiry = 24 * time.Hour
)

var errNilDeps = errors.New("oidc: app or dependencies are nil")

// Provider is the part of auth.OIDCProvider the handler uses.
type Provider interface {
	GetAuthURL(state string) string
	HandleCallback(ctx context.Context, code string) (*models.User, string, error)
	GetLogoutURL(idToken, postLogoutRedirectURI string) string
}

// Service is the OIDC handler service.
type Service struct {
	cfg      *config.Config
	provider Provider

	mu         sync.Mutex
	stateStore map[string]time.Time
	now        func() time.Time
}

// Handler is the OIDC handler.
var Handler = Service{} //nolint:gochecknoglobals

// Init initializes the OIDC handler. When OIDC is disabled or the provider cannot be
// discovered the routes answer 503 and the login page hides the OIDC button.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if app == nil || deps == nil || deps.Config == nil || deps.DB == nil {
		return errNilDeps
	}

	s.cfg = deps.Config
	s.now = time.Now
	s.stateStore = make(map[string]time.Time)

	if oidcCfg := deps.Config.Auth.OIDC; oidcCfg.Enabled {
		provider, err := auth.NewOIDCProvider(context.Background(), &auth.OIDCConfig{
			Enabled:      oidcCfg.Enabled,
			ProviderURL:  oidcCfg.ProviderURL,
			ClientID:     oidcCfg.ClientID,
			ClientSecret: oidcCfg.ClientSecret,
			RedirectURL:  oidcCfg.RedirectURL,
			Scopes:       oidcCfg.Scopes,
		}, deps.DB)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize OIDC provider - OIDC authentication will be disabled")
		} else {
			s.provider = provider

			log.Info().Msg("OIDC authentication provider initialized")
		}
	}

	s.register(app)

	return nil
}

// InitWithProvider wires an already built provider, used by tests and custom setups.
func (s *Service) InitWithProvider(app *fiber.App, cfg *config.Config, provider Provider) {
	s.cfg = cfg
	s.provider = provider
	s.now = time.Now
	s.stateStore = make(map[string]time.Time)

	s.register(app)
}

func (s *Service) register(app *fiber.App) {
	app.Get(LoginPath, s.Login)
	app.Get(CallbackPath, s.Callback)
}

// Enabled reports whether a provider is available.
func (s *Service) Enabled() bool {
	return s.provider != nil
}

// LogoutURL returns the provider end session url for idToken, "" when not supported.
func (s *Service) LogoutURL(idToken string) string {
	if s.provider == nil {
		return ""
	}

	return s.provider.GetLogoutURL(idToken, s.cfg.Webserver.URL)
}

// Login initiates the OIDC login flow.
func (s *Service) Login(c *fiber.Ctx) error {
	if s.provider == nil {
		return c.Status(fiber.StatusServiceUnavailable).SendString("OIDC authentication is not available")
	}

	state, err := auth.GenerateStateToken()
	if err != nil {
		log.Error().Err(err).Msg("Failed to generate state token")

		return c.Status(fiber.StatusInternalServerError).SendString("Internal server error")
	}

	s.mu.Lock()
	s.pruneStates()
	s.stateStore[state] = s.now().Add(stateLifetime)
	s.mu.Unlock()

	return c.Redirect(s.provider.GetAuthURL(state))
}

// Callback handles the OIDC callback.
func (s *Service) Callback(c *fiber.Ctx) error {
	if s.provider == nil {
		return c.Status(fiber.StatusServiceUnavailable).SendString("OIDC authentication is not available")
	}

	code := c.Query("code")
	state := c.Query("state")

	if code == "" || state == "" {
		log.Error().Msg("Missing code or state in OIDC callback")

		return c.Status(fiber.StatusBadRequest).SendString("Invalid callback parameters")
	}

	if !s.consumeState(state) {
		log.Error().Msg("Invalid or expired state token")

		return c.Status(fiber.StatusBadRequest).SendString("Invalid state token")
	}

	user, idToken, err := s.provider.HandleCallback(c.UserContext(), code)
	if err != nil {
		log.Error().Err(err).Msg("OIDC authentication failed")

		return c.Status(fiber.StatusUnauthorized).SendString("Authentication failed")
	}

	if !user.Active {
		log.Warn().Uint64("user_id", user.ID).Msg("OIDC login of a disabled account")

		return c.Status(fiber.StatusForbidden).SendString("Account disabled")
	}

	expiry := s.cfg.Webserver.Session.ExpiryTime
	if expiry == 0 {
		expiry = defaultSessionExpiry
	}

	if err = session.Start(c, &session.Data{User: *user, IDToken: idToken}, expiry, s.cfg.DevMode); err != nil {
		log.Error().Err(err).Msg("Failed to write session")

		return c.Status(fiber.StatusInternalServerError).SendString("Internal server error")
	}

	log.Info().Uint64("user_id", user.ID).Msg("User logged in successfully via OIDC")

	return c.Redirect(handler.RootPath)
}

// consumeState removes state and reports whether it was issued and is still valid.
func (s *Service) consumeState(state string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiration, ok := s.stateStore[state]
	delete(s.stateStore, state)

	return ok && !s.now().After(expiration)
}

// pruneStates drops expired state tokens. Callers hold s.mu.
func (s *Service) pruneStates() {
	now := s.now()
	for state, expiration := range s.stateStore {
		if now.After(expiration) {
			delete(s.stateStore, state)
		}
	}
}
