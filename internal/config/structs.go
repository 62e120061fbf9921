package config

import (
	"time"

	"github.com/biblia-online/biblia/internal/logger"
)

// Session settings.
type Session struct {
	ExpiryTime time.Duration
}

// Config overall data structure.
type Config struct {
	DevMode     bool // enable dev mode for development
	Title       string
	DB          DB
	Legacy      Legacy
	Log         logger.Log
	Webserver   Webserver
	Auth        Auth
	Scripture   Scripture
	SimpleVerse SimpleVerse
	Bible       Bible
	Chat        Chat
	Scheduler   Scheduler
}

// Webserver implement webserver settings.
type Webserver struct {
	BrowseStatic     bool          // enable static file browsing (for development purposes only)
	CacheEnabled     bool          // cache GET responses of the bible api
	CacheExpiration  time.Duration // lifetime of a cached bible api response
	CORSAllowOrigins string        // comma separated, "*" mirrors the hosted functions
	DisableRecover   bool          // disable recover middleware
	Port             int           // listening port for the webserver
	ShutDownTime     int           // wait time for shutdown
	URL              string        // base url for the webserver
	Session          Session       // session settings
}

// Auth groups the account related settings.
type Auth struct {
	LocalDB      LocalDBAuth
	Registration bool // allow self sign-up
	OIDC         OIDCAuth
	TOTP         TOTPAuth
}

// LocalDBAuth enables email/password accounts.
type LocalDBAuth struct {
	Enabled bool
}

// OIDCAuth configures the external login provider.
type OIDCAuth struct {
	Enabled      bool
	ProviderURL  string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
}

// TOTPAuth configures the optional second factor.
type TOTPAuth struct {
	Issuer string
}

// Scripture configures the api.scripture.api.bible client.
type Scripture struct {
	BaseURL           string
	APIKey            string
	DefaultBibleID    string
	Timeout           time.Duration
	RequestsPerSecond float64
}

// SimpleVerse configures the bible-api.com client.
type SimpleVerse struct {
	BaseURL            string
	DefaultTranslation string
	Timeout            time.Duration
}

// Bible configures content resolution.
type Bible struct {
	ImportOnMiss      bool // import from the scripture api when the primary db has no rows
	ImportConcurrency int  // parallel verse content requests
}

// Chat configures the assistant webhook.
type Chat struct {
	WebhookURL string
	Timeout    time.Duration
}

// Scheduler configures the background jobs.
type Scheduler struct {
	Enabled           bool
	SubscriptionSweep string // cron spec
	DailyVerseWarmup  string // cron spec
}
