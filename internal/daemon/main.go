// Package daemon wires the databases, services, scheduler and web server of the start command.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	sessionmysql "github.com/gofiber/storage/mysql/v2"
	sessionpostgres "github.com/gofiber/storage/postgres/v3"
	"github.com/rs/zerolog/log"

	"github.com/biblia-online/biblia/internal/config"
	"github.com/biblia-online/biblia/internal/db/dsn"
	"github.com/biblia-online/biblia/internal/scheduler"
	"github.com/biblia-online/biblia/internal/web"
	"github.com/biblia-online/biblia/internal/web/handler"
	"github.com/biblia-online/biblia/internal/web/session"
)

const sessionTable = "sessions"

var errNilConfig = errors.New("daemon: config is nil")

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	webService *web.Service
	scheduler  *scheduler.Scheduler
}

// New opens the databases and builds the web service with the provided configuration.
func New(cfg *config.Config) (*Daemon, error) {
	deps, err := Open(cfg)
	if err != nil {
		return nil, err
	}

	session.Init(sessionStorage(cfg))

	webService, err := web.New(deps, web.Options{})
	if err != nil {
		return nil, err
	}

	d := &Daemon{cfg: cfg, webService: webService}

	if cfg.Scheduler.Enabled {
		if d.scheduler, err = newScheduler(cfg, deps); err != nil {
			return nil, err
		}
	}

	return d, nil
}

// Start serves http until SIGINT or SIGTERM, running the scheduled jobs meanwhile.
func (d *Daemon) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if d.scheduler != nil {
		d.scheduler.Start(ctx)
		defer d.scheduler.Stop()
	}

	errCh := make(chan error, 1)

	go func() {
		errCh <- d.webService.Start(fmt.Sprintf(":%d", d.cfg.Webserver.Port))
	}()

	go d.webService.WaitShutdown()

	return <-errCh
}

func newScheduler(cfg *config.Config, deps *handler.Deps) (*scheduler.Scheduler, error) {
	s := scheduler.New()

	jobs := []scheduler.Job{
		scheduler.SubscriptionSweep(cfg.Scheduler.SubscriptionSweep, deps.DB, time.Now),
		scheduler.DailyVerseWarmup(cfg.Scheduler.DailyVerseWarmup, deps.Resolver, time.Now),
	}

	for _, job := range jobs {
		if err := s.Add(job); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// sessionStorage keeps sessions in the primary database. SQLite falls back to memory.
func sessionStorage(cfg *config.Config) fiber.Storage {
	switch cfg.DB.GormEngine {
	case config.EngineSQLite:
		log.Warn().Msg("sqlite engine: sessions are kept in memory")

		return nil
	case config.EnginePostgres:
		return sessionpostgres.New(sessionpostgres.Config{
			ConnectionURI: dsn.PostgresURL(cfg),
			Table:         sessionTable,
		})
	default:
		return sessionmysql.New(sessionmysql.Config{
			ConnectionURI: dsn.Create(cfg),
			Table:         sessionTable,
		})
	}
}
