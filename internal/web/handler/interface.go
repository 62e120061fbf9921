package handler

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/biblia-online/biblia/internal/auth"
	"github.com/biblia-online/biblia/internal/bible"
	"github.com/biblia-online/biblia/internal/chat"
	"github.com/biblia-online/biblia/internal/config"
	"github.com/biblia-online/biblia/internal/importer"
	"github.com/biblia-online/biblia/internal/legacy"
	"github.com/biblia-online/biblia/internal/scripture"
	"github.com/biblia-online/biblia/internal/versesapi"
)

// Deps are the services shared by the handlers.
type Deps struct {
	Config    *config.Config
	DB        *gorm.DB
	Auth      *auth.Service
	Resolver  *bible.Resolver
	Importer  *importer.Importer
	Scripture *scripture.Client
	Verses    *versesapi.Client
	Legacy    *legacy.Store
	Chat      *chat.Client
}

// Service is the interface for a web handler service.
type Service interface {
	Init(app *fiber.App, deps *Deps) error
}
