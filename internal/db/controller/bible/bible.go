// Package bible reads and writes imported bible content in the primary database.
//
// Lookups take the external ids of the scripture api (the bible id, JHN, JHN.3,
// JHN.3.16). Rows reference their parent by its uuid primary key.
package bible

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/biblia-online/biblia/internal/db/models"
)

var (
	// ErrNotFound is returned when the requested version, book, chapter or verse is not imported.
	ErrNotFound = errors.New("bible content not found")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Versions lists the imported versions ordered by language and name.
func Versions(db *gorm.DB) ([]models.BibleVersion, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	out := []models.BibleVersion{}
	if err := db.Order("language").Order("name").Find(&out).Error; err != nil {
		return nil, err
	}

	return out, nil
}

// Version finds a version by its external bible id.
func Version(db *gorm.DB, versionID string) (*models.BibleVersion, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var v models.BibleVersion

	if err := db.Where("version_id = ?", versionID).First(&v).Error; err != nil {
		return nil, notFound(err, "version %s", versionID)
	}

	return &v, nil
}

// Books lists the books of a version ordered by canonical position.
// An unknown version yields an empty list.
func Books(db *gorm.DB, versionID string) ([]models.BibleBook, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	out := []models.BibleBook{}
	err := db.Select("bible_books.*").
		Joins("JOIN bible_versions ON bible_versions.id = bible_books.version_id").
		Where("bible_versions.version_id = ?", versionID).
		Order("bible_books.position").
		Find(&out).Error

	return out, err
}

// Book finds a book of a version by its USFM id.
func Book(db *gorm.DB, versionID, bookID string) (*models.BibleBook, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var b models.BibleBook

	err := db.Select("bible_books.*").
		Joins("JOIN bible_versions ON bible_versions.id = bible_books.version_id").
		Where("bible_versions.version_id = ? AND bible_books.book_id = ?", versionID, bookID).
		First(&b).Error
	if err != nil {
		return nil, notFound(err, "book %s/%s", versionID, bookID)
	}

	return &b, nil
}

// Chapters lists the chapters of a book ordered by number.
func Chapters(db *gorm.DB, versionID, bookID string) ([]models.BibleChapter, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	out := []models.BibleChapter{}
	err := chapterScope(db, versionID).
		Where("bible_books.book_id = ?", bookID).
		Order("bible_chapters.number").
		Find(&out).Error

	return out, err
}

// Chapter finds a chapter of a version by its id (JHN.3).
func Chapter(db *gorm.DB, versionID, chapterID string) (*models.BibleChapter, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var c models.BibleChapter

	err := chapterScope(db, versionID).
		Where("bible_chapters.chapter_id = ?", chapterID).
		First(&c).Error
	if err != nil {
		return nil, notFound(err, "chapter %s/%s", versionID, chapterID)
	}

	return &c, nil
}

// Verses lists the verses of a chapter ordered by number.
func Verses(db *gorm.DB, versionID, chapterID string) ([]models.BibleVerse, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	out := []models.BibleVerse{}
	err := verseScope(db, versionID).
		Where("bible_chapters.chapter_id = ?", chapterID).
		Order("bible_verses.number").
		Find(&out).Error

	return out, err
}

// VerseRange lists the verses from..to (inclusive) of a chapter.
func VerseRange(db *gorm.DB, versionID, chapterID string, from, to int) ([]models.BibleVerse, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	out := []models.BibleVerse{}
	err := verseScope(db, versionID).
		Where("bible_chapters.chapter_id = ?", chapterID).
		Where("bible_verses.number BETWEEN ? AND ?", from, to).
		Order("bible_verses.number").
		Find(&out).Error

	return out, err
}

// Verse finds a verse of a version by its id (JHN.3.16).
func Verse(db *gorm.DB, versionID, verseID string) (*models.BibleVerse, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var v models.BibleVerse

	err := verseScope(db, versionID).
		Where("bible_verses.verse_id = ?", verseID).
		First(&v).Error
	if err != nil {
		return nil, notFound(err, "verse %s/%s", versionID, verseID)
	}

	return &v, nil
}

// Search matches verse text with LIKE. An empty versionID searches every version.
func Search(db *gorm.DB, versionID, query string, limit, offset int) ([]models.BibleVerse, int64, error) {
	if db == nil {
		return nil, 0, ErrDBNil
	}

	scope := func() *gorm.DB {
		q := db.Model(&models.BibleVerse{}).Where("bible_verses.text LIKE ?", "%"+query+"%")
		if versionID != "" {
			q = verseJoins(q, versionID)
		}

		return q
	}

	var total int64
	if err := scope().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	out := []models.BibleVerse{}

	q := scope().Select("bible_verses.*").Order("bible_verses.verse_id").Offset(offset)
	if limit > 0 {
		q = q.Limit(limit)
	}

	if err := q.Find(&out).Error; err != nil {
		return nil, 0, err
	}

	return out, total, nil
}

// UpsertVersion creates the version or refreshes its metadata.
func UpsertVersion(db *gorm.DB, v models.BibleVersion) (*models.BibleVersion, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var row models.BibleVersion

	err := db.Where(models.BibleVersion{VersionID: v.VersionID}).
		Assign(map[string]any{"name": v.Name, "abbreviation": v.Abbreviation, "language": v.Language}).
		FirstOrCreate(&row).Error
	if err != nil {
		return nil, err
	}

	return &row, nil
}

// UpsertBook creates or refreshes a book keyed on (book_id, version_id).
func UpsertBook(db *gorm.DB, b models.BibleBook) (*models.BibleBook, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var row models.BibleBook

	err := db.Where(models.BibleBook{BookID: b.BookID, VersionID: b.VersionID}).
		Assign(map[string]any{
			"name":         b.Name,
			"abbreviation": b.Abbreviation,
			"testament":    b.Testament,
			"position":     b.Position,
		}).
		FirstOrCreate(&row).Error
	if err != nil {
		return nil, err
	}

	return &row, nil
}

// SetChapterCount stores the number of chapters of a book row.
func SetChapterCount(db *gorm.DB, bookRowID string, count int) error {
	if db == nil {
		return ErrDBNil
	}

	return db.Model(&models.BibleBook{}).Where("id = ?", bookRowID).Update("chapter_count", count).Error
}

// UpsertChapter creates or refreshes a chapter keyed on (chapter_id, book_id).
func UpsertChapter(db *gorm.DB, c models.BibleChapter) (*models.BibleChapter, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var row models.BibleChapter

	err := db.Where(models.BibleChapter{ChapterID: c.ChapterID, BookID: c.BookID}).
		Assign(map[string]any{"number": c.Number}).
		FirstOrCreate(&row).Error
	if err != nil {
		return nil, err
	}

	return &row, nil
}

// UpsertVerse creates or refreshes a verse keyed on (verse_id, chapter_id).
func UpsertVerse(db *gorm.DB, v models.BibleVerse) (*models.BibleVerse, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var row models.BibleVerse

	err := db.Where(models.BibleVerse{VerseID: v.VerseID, ChapterID: v.ChapterID}).
		Assign(map[string]any{"number": v.Number, "text": v.Text, "reference": v.Reference}).
		FirstOrCreate(&row).Error
	if err != nil {
		return nil, err
	}

	return &row, nil
}

func chapterScope(db *gorm.DB, versionID string) *gorm.DB {
	return db.Select("bible_chapters.*").
		Joins("JOIN bible_books ON bible_books.id = bible_chapters.book_id").
		Joins("JOIN bible_versions ON bible_versions.id = bible_books.version_id").
		Where("bible_versions.version_id = ?", versionID)
}

func verseScope(db *gorm.DB, versionID string) *gorm.DB {
	return verseJoins(db.Select("bible_verses.*"), versionID)
}

func verseJoins(db *gorm.DB, versionID string) *gorm.DB {
	return db.Joins("JOIN bible_chapters ON bible_chapters.id = bible_verses.chapter_id").
		Joins("JOIN bible_books ON bible_books.id = bible_chapters.book_id").
		Joins("JOIN bible_versions ON bible_versions.id = bible_books.version_id").
		Where("bible_versions.version_id = ?", versionID)
}

func notFound(err error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: "+format, append([]any{ErrNotFound}, args...)...)
	}

	return err
}
