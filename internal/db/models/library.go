package models

import "time"

// HighlightColor is one of the marker colors offered by the reader.
type HighlightColor string

// Highlight colors.
const (
	HighlightYellow HighlightColor = "yellow"
	HighlightGreen  HighlightColor = "green"
	HighlightBlue   HighlightColor = "blue"
	HighlightPink   HighlightColor = "pink"
	HighlightPurple HighlightColor = "purple"
)

// HighlightColors lists the accepted colors in display order.
var HighlightColors = []HighlightColor{ //nolint:gochecknoglobals
	HighlightYellow, HighlightGreen, HighlightBlue, HighlightPink, HighlightPurple,
}

// Valid reports whether c is a known highlight color.
func (c HighlightColor) Valid() bool {
	for _, known := range HighlightColors {
		if c == known {
			return true
		}
	}

	return false
}

// FavoriteVerse is a verse saved by a user.
type FavoriteVerse struct {
	UUIDModel
	UserID  uint64 `gorm:"index;not null" json:"user_id"`
	User    User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Book    string `gorm:"size:100;not null" json:"book"`
	Chapter int    `json:"chapter"`
	Verse   int    `json:"verse"`
	Version string `gorm:"size:64" json:"version"`
	Text    string `gorm:"type:text" json:"text"`
}

// TableName specifies the database table name for the FavoriteVerse model.
func (FavoriteVerse) TableName() string {
	return "favorite_verses"
}

// HighlightedVerse is a colored marker on a verse.
type HighlightedVerse struct {
	ID        uint64         `gorm:"primaryKey" json:"id"`
	UserID    uint64         `gorm:"index;not null" json:"user_id"`
	User      User           `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	VerseID   string         `gorm:"size:48;not null" json:"verse_id"`
	Reference string         `gorm:"size:128" json:"reference"`
	Content   string         `gorm:"type:text" json:"content"`
	Color     HighlightColor `gorm:"type:varchar(16);not null" json:"color"`
	CreatedAt time.Time      `json:"created_at"`
}

// TableName specifies the database table name for the HighlightedVerse model.
func (HighlightedVerse) TableName() string {
	return "highlighted_verses"
}

// VerseSearch records a bible search of a signed-in user.
type VerseSearch struct {
	UUIDModel
	UserID  uint64 `gorm:"index;not null" json:"user_id"`
	User    User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Query   string `gorm:"size:255;not null" json:"query"`
	Version string `gorm:"size:64" json:"version"`
}

// TableName specifies the database table name for the VerseSearch model.
func (VerseSearch) TableName() string {
	return "verse_searches"
}
