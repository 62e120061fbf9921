// Package highlight stores the colored markers users put on verses.
package highlight

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/biblia-online/biblia/internal/db/models"
)

var (
	// ErrNotFound is returned when the highlight does not exist or belongs to someone else.
	ErrNotFound = errors.New("highlight not found")
	// ErrInvalidColor is returned for colors outside models.HighlightColors.
	ErrInvalidColor = errors.New("invalid highlight color")
	// ErrVerseIDEmpty is returned when no verse id is given.
	ErrVerseIDEmpty = errors.New("verse id cannot be empty")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Create marks a verse.
func Create(db *gorm.DB, userID uint64, verseID, reference, content string, color models.HighlightColor) (*models.HighlightedVerse, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if verseID == "" {
		return nil, ErrVerseIDEmpty
	}

	if !color.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidColor, color)
	}

	h := models.HighlightedVerse{
		UserID:    userID,
		VerseID:   verseID,
		Reference: reference,
		Content:   content,
		Color:     color,
	}

	if err := db.Create(&h).Error; err != nil {
		return nil, err
	}

	return &h, nil
}

// List returns the highlights of a user, newest first.
func List(db *gorm.DB, userID uint64) ([]models.HighlightedVerse, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	out := []models.HighlightedVerse{}
	if err := db.Where("user_id = ?", userID).Order("created_at DESC").Order("id DESC").Find(&out).Error; err != nil {
		return nil, err
	}

	return out, nil
}

// InChapter returns the highlights of a user within a chapter (JHN.3), ordered by verse.
func InChapter(db *gorm.DB, userID uint64, chapterID string) ([]models.HighlightedVerse, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	out := []models.HighlightedVerse{}
	err := db.Where("user_id = ? AND verse_id LIKE ?", userID, chapterID+".%").
		Order("verse_id").
		Find(&out).Error

	return out, err
}

// Delete removes a highlight owned by userID.
func Delete(db *gorm.DB, userID, id uint64) error {
	if db == nil {
		return ErrDBNil
	}

	res := db.Where("id = ? AND user_id = ?", id, userID).Delete(&models.HighlightedVerse{})
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
