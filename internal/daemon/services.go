package daemon

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/biblia-online/biblia/internal/auth"
	"github.com/biblia-online/biblia/internal/bible"
	"github.com/biblia-online/biblia/internal/chat"
	"github.com/biblia-online/biblia/internal/config"
	"github.com/biblia-online/biblia/internal/db"
	"github.com/biblia-online/biblia/internal/db/controller/scriptureapi"
	"github.com/biblia-online/biblia/internal/db/controller/setting"
	"github.com/biblia-online/biblia/internal/importer"
	"github.com/biblia-online/biblia/internal/legacy"
	"github.com/biblia-online/biblia/internal/scripture"
	"github.com/biblia-online/biblia/internal/versesapi"
	"github.com/biblia-online/biblia/internal/web/handler"
)

// Open connects the databases, migrates and seeds them, and builds the shared services.
func Open(cfg *config.Config) (*handler.Deps, error) {
	if cfg == nil {
		return nil, errNilConfig
	}

	primary, err := db.Open(cfg)
	if err != nil {
		return nil, err
	}

	if err = db.Migrate(primary); err != nil {
		return nil, err
	}

	if err = seed(cfg, primary); err != nil {
		return nil, err
	}

	legacyDB, err := db.OpenLegacy(cfg)
	if err != nil {
		return nil, err
	}

	var legacyStore *legacy.Store
	if legacyDB != nil {
		legacyStore = legacy.New(legacyDB)
	}

	remote := scripture.New(cfg.Scripture)
	if err = loadScriptureSettings(primary, remote); err != nil {
		return nil, err
	}

	verses := versesapi.New(cfg.SimpleVerse)
	imp := importer.New(primary, remote, cfg.Bible.ImportConcurrency)

	resolver := bible.New(bible.Options{
		DB:           primary,
		Legacy:       legacyStore,
		Remote:       remote,
		Verses:       verses,
		Importer:     imp,
		ImportOnMiss: cfg.Bible.ImportOnMiss,
		Concurrency:  cfg.Bible.ImportConcurrency,
	})

	return &handler.Deps{
		Config:    cfg,
		DB:        primary,
		Auth:      auth.NewService(primary),
		Resolver:  resolver,
		Importer:  imp,
		Scripture: remote,
		Verses:    verses,
		Legacy:    legacyStore,
		Chat:      chat.New(cfg.Chat),
	}, nil
}

// loadScriptureSettings applies the connection saved on the admin page over the config file.
func loadScriptureSettings(db *gorm.DB, remote *scripture.Client) error {
	settings := &scriptureapi.Settings{}

	err := settings.Load(db)

	switch {
	case errors.Is(err, setting.ErrSettingNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("load scripture api settings: %w", err)
	}

	remote.Configure(settings.BaseURL, settings.APIKey, settings.DefaultBibleID)
	log.Info().Str("base_url", settings.BaseURL).Msg("scripture api settings loaded from database")

	return nil
}
