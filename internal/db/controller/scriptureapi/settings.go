// Package scriptureapi persists the scripture api connection settings edited by administrators.
package scriptureapi

import (
	"errors"

	"gorm.io/gorm"

	"github.com/biblia-online/biblia/internal/db/controller/setting"
)

// SettingKey is the settings row holding the scripture api connection.
const SettingKey = "scripture_api"

// Settings overrides the [Scripture] config section at runtime.
type Settings struct {
	BaseURL        string `form:"base_url"         json:"baseUrl"        validate:"required,url"`
	APIKey         string `form:"api_key"          json:"apiKey"         validate:"required,min=8"`
	DefaultBibleID string `form:"default_bible_id" json:"defaultBibleId" validate:"required"`
}

// Load loads the settings from the database.
func (s *Settings) Load(db *gorm.DB) error {
	return setting.LoadJSON(db, SettingKey, s)
}

// Save stores the settings in the database.
func (s *Settings) Save(db *gorm.DB) error {
	return setting.SaveJSON(db, SettingKey, s)
}

// Reset removes the stored settings so the [Scripture] config section applies again.
func Reset(db *gorm.DB) error {
	err := setting.Delete(db, SettingKey)
	if errors.Is(err, setting.ErrSettingNotFound) {
		return nil
	}

	return err
}
