package models

// BibleVersion is an imported translation. VersionID is the scripture api bible id.
type BibleVersion struct {
	UUIDModel
	VersionID    string `gorm:"uniqueIndex;size:64;not null" json:"version_id"`
	Name         string `gorm:"size:255;not null" json:"name"`
	Abbreviation string `gorm:"size:32" json:"abbreviation"`
	Language     string `gorm:"size:8" json:"language"`
}

// TableName specifies the database table name for the BibleVersion model.
func (BibleVersion) TableName() string {
	return "bible_versions"
}

// BibleBook is a book of an imported version, BookID is the USFM code (GEN, JHN, ...).
type BibleBook struct {
	UUIDModel
	BookID       string       `gorm:"size:16;not null;uniqueIndex:idx_book_version" json:"book_id"`
	Name         string       `gorm:"size:255;not null" json:"name"`
	Abbreviation string       `gorm:"size:32" json:"abbreviation"`
	Testament    string       `gorm:"size:16" json:"testament"`
	Position     int          `json:"position"`
	ChapterCount int          `json:"chapter_count"`
	VersionID    string       `gorm:"size:36;not null;uniqueIndex:idx_book_version" json:"version_id"`
	Version      BibleVersion `gorm:"foreignKey:VersionID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the database table name for the BibleBook model.
func (BibleBook) TableName() string {
	return "bible_books"
}

// BibleChapter is a chapter of a book, ChapterID looks like JHN.3 (JHN.intro for introductions).
type BibleChapter struct {
	UUIDModel
	ChapterID string    `gorm:"size:32;not null;uniqueIndex:idx_chapter_book" json:"chapter_id"`
	Number    int       `json:"number"`
	BookID    string    `gorm:"size:36;not null;uniqueIndex:idx_chapter_book" json:"book_id"`
	Book      BibleBook `gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the database table name for the BibleChapter model.
func (BibleChapter) TableName() string {
	return "bible_chapters"
}

// BibleVerse is a verse with its text, VerseID looks like JHN.3.16.
type BibleVerse struct {
	UUIDModel
	VerseID   string       `gorm:"size:48;not null;uniqueIndex:idx_verse_chapter" json:"verse_id"`
	Number    int          `json:"number"`
	Text      string       `gorm:"type:text" json:"text"`
	Reference string       `gorm:"size:128" json:"reference"`
	ChapterID string       `gorm:"size:36;not null;uniqueIndex:idx_verse_chapter" json:"chapter_id"`
	Chapter   BibleChapter `gorm:"foreignKey:ChapterID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the database table name for the BibleVerse model.
func (BibleVerse) TableName() string {
	return "bible_verses"
}
