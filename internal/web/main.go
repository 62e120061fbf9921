// Package web assembles the fiber application: middleware, pages, JSON api and functions.
package web

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cache"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/template/html/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/biblia-online/biblia/internal/auth"
	"github.com/biblia-online/biblia/internal/config"
	fiberlog "github.com/biblia-online/biblia/internal/logger/adapter/fiber"
	"github.com/biblia-online/biblia/internal/web/handler"
	settingsscripture "github.com/biblia-online/biblia/internal/web/handler/admin/settings/scriptureapi"
	"github.com/biblia-online/biblia/internal/web/handler/api/account"
	adminapi "github.com/biblia-online/biblia/internal/web/handler/api/admin"
	"github.com/biblia-online/biblia/internal/web/handler/api/assistant"
	"github.com/biblia-online/biblia/internal/web/handler/api/bibleapi"
	"github.com/biblia-online/biblia/internal/web/handler/api/community"
	"github.com/biblia-online/biblia/internal/web/handler/api/library"
	"github.com/biblia-online/biblia/internal/web/handler/api/subscription"
	oidchandler "github.com/biblia-online/biblia/internal/web/handler/auth/oidc"
	"github.com/biblia-online/biblia/internal/web/handler/functions"
	"github.com/biblia-online/biblia/internal/web/handler/home"
	"github.com/biblia-online/biblia/internal/web/handler/login"
	"github.com/biblia-online/biblia/internal/web/handler/logout"
	"github.com/biblia-online/biblia/internal/web/handler/reader"
	authmiddleware "github.com/biblia-online/biblia/internal/web/middleware/auth"
	"github.com/biblia-online/biblia/internal/web/session"
)

const (
	// CheckAlivePath answers 200 while serving and 503 while draining.
	CheckAlivePath = "/checkalive"

	// MetricsPath exposes the prometheus collectors.
	MetricsPath = "/metrics"

	corsAllowHeaders = "authorization, x-client-info, apikey, content-type"
)

var errNilDeps = errors.New("web: config or dependencies are nil")

// Service represents the web service.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
}

// Start starts the web service on the given address and blocks until it stops.
func (s *Service) Start(addr string) error {
	s.alive.Store(true)

	if err := s.App.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("fiber listen: %w", err)
	}

	return nil
}

// Alive reports whether /checkalive answers 200.
func (s *Service) Alive() bool {
	return s.alive.Load()
}

// WaitShutdown waits for SIGINT or SIGTERM, drains and stops the server.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	s.Shutdown()
}

// Shutdown lets load balancers see the 503 of /checkalive for ShutDownTime seconds, then stops fiber.
func (s *Service) Shutdown() {
	s.alive.Store(false)

	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 while %d seconds to let LB to remove this pod from active targets",
			s.cfg.Webserver.ShutDownTime,
		)

		time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)
	}

	log.Info().Msg("stopping http server ...")

	if err := s.App.Shutdown(); err != nil {
		log.Error().Err(err).Msg("http server shutdown failed")
	}

	log.Info().Msg("http server was stopped ... good bye...")
}

// Options tune New for tests.
type Options struct {
	// Views replaces the embedded template engine.
	Views fiber.Views
	// FastShutDown skips the drain delay.
	FastShutDown bool
}

// New creates the web service and registers every handler.
func New(deps *handler.Deps, opts Options) (*Service, error) {
	if deps == nil || deps.Config == nil {
		return nil, errNilDeps
	}

	cfg := deps.Config

	views := opts.Views
	if views == nil {
		views = newTemplateEngine(cfg)
	}

	app := fiber.New(
		fiber.Config{
			ReadBufferSize: 8192,
			AppName:        appName(cfg),
			CaseSensitive:  true,
			Prefork:        false,
			Immutable:      true,
			Views:          views,
			// CurrentUser and hasPermission are read by the layout
			PassLocalsToViews: true,
		},
	)

	service := &Service{App: app, cfg: cfg, fastShutDown: opts.FastShutDown}
	service.alive.Store(true)

	if !cfg.Webserver.DisableRecover {
		app.Use(recover.New(recover.Config{EnableStackTrace: cfg.DevMode}))
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins: corsOrigins(cfg),
		AllowHeaders: corsAllowHeaders,
	}))

	app.Use(fiberlog.New(fiberlog.Config{
		Config:        cfg.Log,
		CheckAliveURI: CheckAlivePath,
		UserLocal:     session.LocalUserID,
	}))

	app.Get(CheckAlivePath, func(c *fiber.Ctx) error {
		if !service.Alive() {
			return c.SendStatus(fiber.StatusServiceUnavailable)
		}

		return c.SendString("OK")
	})
	app.Get(MetricsPath, adaptor.HTTPHandler(promhttp.Handler()))

	if cfg.Webserver.CacheEnabled {
		app.Use(bibleapi.Path, cache.New(cache.Config{
			Expiration: cfg.Webserver.CacheExpiration,
			Next: func(c *fiber.Ctx) bool {
				return c.Method() != fiber.MethodGet ||
					strings.HasPrefix(c.Path(), bibleapi.SearchPath) ||
					strings.HasPrefix(c.Path(), bibleapi.LookupPath)
			},
			KeyGenerator: func(c *fiber.Ctx) string {
				return c.OriginalURL()
			},
		}))
	}

	app.Use("/static",
		filesystem.New(
			filesystem.Config{
				Root:   subFS(embeddedStatic, "static"),
				Browse: cfg.Webserver.BrowseStatic,
			},
		),
	)

	app.Use(authmiddleware.Middleware)

	if deps.Auth == nil {
		deps.Auth = auth.NewService(deps.DB)
	}

	app.Use(auth.AddPermissionsToLocals(deps.Auth))

	if err := initHandlers(app, deps); err != nil {
		return nil, err
	}

	return service, nil
}

func initHandlers(app *fiber.App, deps *handler.Deps) error {
	services := []struct {
		name string
		svc  handler.Service
	}{
		{"functions", &functions.Handler},
		{"bible api", &bibleapi.Handler},
		{"account api", &account.Handler},
		{"library api", &library.Handler},
		{"community api", &community.Handler},
		{"subscription api", &subscription.Handler},
		{"chat api", &assistant.Handler},
		{"admin api", &adminapi.Handler},
		{"login", &login.Handler},
		{"oidc", &oidchandler.Handler},
		{"home", &home.Handler},
		{"reader", &reader.Handler},
		{"scripture api settings", &settingsscripture.Handler},
	}

	for _, s := range services {
		if err := s.svc.Init(app, deps); err != nil {
			return fmt.Errorf("init %s handler: %w", s.name, err)
		}
	}

	if err := logout.Handler.Init(app, deps, oidchandler.Handler.LogoutURL); err != nil {
		return fmt.Errorf("init logout handler: %w", err)
	}

	return nil
}

func newTemplateEngine(cfg *config.Config) *html.Engine {
	templateEngine := html.NewFileSystem(subFS(embeddedTemplates, "templates"), ".gohtml")

	// in dev mode, use local filesystem for templates
	if cfg.DevMode {
		templateEngine = html.New("./internal/web/templates", ".gohtml")
		templateEngine.ShouldReload = true

		log.Warn().Msg("dev mode enabled: using local filesystem for templates")
	}

	templateEngine.AddFunc("add", func(a, b int) int {
		return a + b
	})
	templateEngine.AddFunc("sub", func(a, b int) int {
		return a - b
	})

	return templateEngine
}

func appName(cfg *config.Config) string {
	if cfg.Title != "" {
		return cfg.Title
	}

	return "Biblia"
}

func corsOrigins(cfg *config.Config) string {
	if cfg.Webserver.CORSAllowOrigins != "" {
		return cfg.Webserver.CORSAllowOrigins
	}

	return "*"
}
