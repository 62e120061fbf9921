// Package searchhistory records the bible searches of signed-in users.
package searchhistory

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/biblia-online/biblia/internal/db/models"
)

// DefaultLimit of List.
const DefaultLimit = 20

var (
	// ErrQueryEmpty is returned when recording a blank query.
	ErrQueryEmpty = errors.New("search query cannot be empty")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Record stores a search.
func Record(db *gorm.DB, userID uint64, query, version string) error {
	if db == nil {
		return ErrDBNil
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return ErrQueryEmpty
	}

	return db.Create(&models.VerseSearch{UserID: userID, Query: query, Version: version}).Error
}

// List returns the latest searches of a user, newest first.
func List(db *gorm.DB, userID uint64, limit int) ([]models.VerseSearch, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if limit <= 0 {
		limit = DefaultLimit
	}

	out := []models.VerseSearch{}
	if err := db.Where("user_id = ?", userID).Order("created_at DESC").Limit(limit).Find(&out).Error; err != nil {
		return nil, err
	}

	return out, nil
}
