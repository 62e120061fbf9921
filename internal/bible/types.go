package bible

// Source names the backend that served a result.
type Source string

// Sources in fallback order.
const (
	SourcePrimary  Source = "primary"
	SourceImport   Source = "import"
	SourceLegacy   Source = "legacy"
	SourceRemote   Source = "remote"
	SourceBibleAPI Source = "bible-api"
	SourceStatic   Source = "static"
	SourceNone     Source = "none"
)

// Result carries data and the source that served it.
type Result[T any] struct {
	Data   T      `json:"data"`
	Source Source `json:"source"`
}

// Version of the bible.
type Version struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
	Language     string `json:"language"`
}

// Book of a version. ID is the USFM code when the book is canonical.
type Book struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation,omitempty"`
	Testament    string `json:"testament,omitempty"`
	Position     int    `json:"position"`
	Chapters     int    `json:"chapters,omitempty"`
}

// Chapter of a book, ID looks like JHN.3. Introductions have number 0.
type Chapter struct {
	ID     string `json:"id"`
	Number int    `json:"number"`
	BookID string `json:"book_id"`
}

// Verse with its text, ID looks like JHN.3.16.
type Verse struct {
	ID        string `json:"id"`
	Number    int    `json:"number"`
	Text      string `json:"text"`
	Reference string `json:"reference"`
}

// Passage is a chapter or verse range. Verses is only set when served from a database.
type Passage struct {
	ID        string  `json:"id"`
	Reference string  `json:"reference"`
	Content   string  `json:"content"`
	Verses    []Verse `json:"verses,omitempty"`
}

// SearchHit is a verse matching a keyword search.
type SearchHit struct {
	ID        string `json:"id"`
	Reference string `json:"reference"`
	Text      string `json:"text"`
}

// SearchResult of a keyword search.
type SearchResult struct {
	Query  string      `json:"query"`
	Total  int         `json:"total"`
	Verses []SearchHit `json:"verses"`
}

// Lookup kinds.
const (
	LookupPassage = "passage"
	LookupSearch  = "search"
)

// Lookup is either a passage (reference queries) or a search result.
type Lookup struct {
	Kind    string        `json:"kind"`
	Passage *Passage      `json:"passage,omitempty"`
	Search  *SearchResult `json:"search,omitempty"`
}

// VerseText is a reference with its text, as answered by SimpleVerse.
type VerseText struct {
	Reference   string `json:"reference"`
	Text        string `json:"text"`
	Translation string `json:"translation"`
}

// TestamentBooks groups books by testament name (Antigo, Novo).
type TestamentBooks map[string][]Book

// DailyVerse is the verse of a day.
type DailyVerse struct {
	Date      string `json:"date"`
	Reference string `json:"reference"`
	Text      string `json:"text"`
	Version   string `json:"version"`
	Source    Source `json:"source"`
}
