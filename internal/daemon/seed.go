package daemon

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/biblia-online/biblia/internal/auth"
	"github.com/biblia-online/biblia/internal/config"
	"github.com/biblia-online/biblia/internal/db/controller/community"
	"github.com/biblia-online/biblia/internal/db/models"
)

const (
	defaultAdminEmail    = "admin@biblia.local"
	defaultAdminPassword = "changeme"
)

func defaultCategories() []models.CommunityCategory {
	return []models.CommunityCategory{
		{Name: "Estudo Bíblico", Description: "Estudos e reflexões sobre as Escrituras"},
		{Name: "Testemunhos", Description: "Compartilhe o que Deus tem feito"},
		{Name: "Pergunte ao Pastor", Description: "Dúvidas sobre fé e doutrina"},
		{Name: "Quiz Bíblico", Description: "Perguntas e desafios"},
	}
}

// seed creates the roles, the community categories and, on an empty user table
// with local accounts enabled, the default administrator.
func seed(cfg *config.Config, db *gorm.DB) error {
	if err := auth.SeedRBAC(db); err != nil {
		return err
	}

	if err := community.EnsureCategories(db, defaultCategories()); err != nil {
		return fmt.Errorf("seed community categories: %w", err)
	}

	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count users: %w", err)
	}

	if count > 0 || !cfg.Auth.LocalDB.Enabled {
		return nil
	}

	admin, err := auth.NewLocalProvider(db).Register(defaultAdminEmail, defaultAdminPassword, "admin")
	if err != nil {
		return fmt.Errorf("create default admin: %w", err)
	}

	if err = auth.NewService(db).AssignRoleToUser(admin.ID, models.RoleAdmin); err != nil {
		return err
	}

	log.Warn().Str("email", defaultAdminEmail).Msg("default admin created, change its password")

	return nil
}
