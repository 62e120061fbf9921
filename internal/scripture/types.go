package scripture

import (
	"encoding/json"
	"strconv"
)

// Language of a bible as reported by the api ("por", "eng").
type Language struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Bible is a translation listed by /bibles.
type Bible struct {
	ID                string   `json:"id"`
	DblID             string   `json:"dblId"`
	Name              string   `json:"name"`
	NameLocal         string   `json:"nameLocal"`
	Abbreviation      string   `json:"abbreviation"`
	AbbreviationLocal string   `json:"abbreviationLocal"`
	Description       string   `json:"description"`
	Language          Language `json:"language"`
}

// DisplayAbbreviation prefers the local abbreviation.
func (b Bible) DisplayAbbreviation() string {
	if b.AbbreviationLocal != "" {
		return b.AbbreviationLocal
	}

	return b.Abbreviation
}

// Book of a bible.
type Book struct {
	ID           string `json:"id"`
	BibleID      string `json:"bibleId"`
	Abbreviation string `json:"abbreviation"`
	Name         string `json:"name"`
	NameLong     string `json:"nameLong"`
}

// Chapter of a book. Number is a string because introductions use "intro".
type Chapter struct {
	ID        string `json:"id"`
	BibleID   string `json:"bibleId"`
	BookID    string `json:"bookId"`
	Number    string `json:"number"`
	Reference string `json:"reference"`
}

// Verse as listed by a chapter or fetched on its own. Content is only set by Verse.
type Verse struct {
	ID        string `json:"id"`
	OrgID     string `json:"orgId"`
	BibleID   string `json:"bibleId"`
	BookID    string `json:"bookId"`
	ChapterID string `json:"chapterId"`
	Reference string `json:"reference"`
	Content   string `json:"content,omitempty"`
	Copyright string `json:"copyright,omitempty"`
}

// Passage is a chapter, verse or verse range with content.
type Passage struct {
	ID         string `json:"id"`
	BibleID    string `json:"bibleId"`
	OrgID      string `json:"orgId"`
	Reference  string `json:"reference"`
	Content    string `json:"content"`
	VerseCount int    `json:"verseCount"`
	Copyright  string `json:"copyright"`
}

// SearchVerse is a keyword hit.
type SearchVerse struct {
	ID        string `json:"id"`
	OrgID     string `json:"orgId"`
	BibleID   string `json:"bibleId"`
	BookID    string `json:"bookId"`
	ChapterID string `json:"chapterId"`
	Reference string `json:"reference"`
	Text      string `json:"text"`
}

// SearchResult of /search.
type SearchResult struct {
	Query      string        `json:"query"`
	Limit      int           `json:"limit"`
	Offset     int           `json:"offset"`
	Total      int           `json:"total"`
	VerseCount int           `json:"verseCount"`
	Verses     []SearchVerse `json:"verses"`
}

// envelope wraps every api payload in "data".
type envelope[T any] struct {
	Data T `json:"data"`
}

// APIError is returned for non 2xx answers. Body holds the upstream JSON (or text) unchanged.
type APIError struct {
	Status int
	Body   json.RawMessage
}

// Error implements error.
func (e *APIError) Error() string {
	return "scripture api returned status " + strconv.Itoa(e.Status)
}
