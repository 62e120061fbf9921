// Package favorite stores the verses users save.
package favorite

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/biblia-online/biblia/internal/bible/canon"
	"github.com/biblia-online/biblia/internal/db/models"
)

var (
	// ErrNotFound is returned when the favorite does not exist or belongs to someone else.
	ErrNotFound = errors.New("favorite not found")
	// ErrInvalidReference is returned for references not shaped like "Book C:V".
	ErrInvalidReference = errors.New("reference must look like João 3:16")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Save stores a verse for a user. reference is split at its last space into book and "C:V".
func Save(db *gorm.DB, userID uint64, reference, version, text string) (*models.FavoriteVerse, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	book, chapter, verse, err := canon.SplitFavoriteReference(reference)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidReference, reference)
	}

	f := models.FavoriteVerse{
		UserID:  userID,
		Book:    book,
		Chapter: chapter,
		Verse:   verse,
		Version: strings.TrimSpace(version),
		Text:    strings.TrimSpace(text),
	}

	if err = db.Create(&f).Error; err != nil {
		return nil, err
	}

	return &f, nil
}

// List returns the favorites of a user, newest first.
func List(db *gorm.DB, userID uint64) ([]models.FavoriteVerse, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	out := []models.FavoriteVerse{}
	if err := db.Where("user_id = ?", userID).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}

	return out, nil
}

// Delete removes a favorite owned by userID.
func Delete(db *gorm.DB, userID uint64, id string) error {
	if db == nil {
		return ErrDBNil
	}

	res := db.Where("id = ? AND user_id = ?", id, userID).Delete(&models.FavoriteVerse{})
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
