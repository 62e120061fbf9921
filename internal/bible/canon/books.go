// Package canon holds the 66 books of the protestant canon and parses references to them.
package canon

// Testament names as stored in bible_books.testament.
const (
	OldTestament = "Antigo"
	NewTestament = "Novo"
)

// lastOldTestamentPosition is Malachi.
const lastOldTestamentPosition = 39

// Book is a canonical book. Position is 1 based and matches the legacy "liv" column.
type Book struct {
	USFM          string
	Position      int
	Chapters      int
	Portuguese    string
	English       string
	PortugueseAbv string
}

// Testament returns OldTestament or NewTestament.
func (b *Book) Testament() string {
	if b.Position <= lastOldTestamentPosition {
		return OldTestament
	}

	return NewTestament
}

// Name returns the book name in the given language, "pt" or "por" for portuguese, english otherwise.
func (b *Book) Name(lang string) string {
	if IsPortuguese(lang) {
		return b.Portuguese
	}

	return b.English
}

// IsPortuguese reports whether lang names portuguese in any of the codes used across the schemas.
func IsPortuguese(lang string) bool {
	switch lang {
	case "pt", "por", "pt-BR", "pt_BR":
		return true
	default:
		return false
	}
}

var books = []Book{ //nolint:gochecknoglobals
	{"GEN", 1, 50, "Gênesis", "Genesis", "Gn"},
	{"EXO", 2, 40, "Êxodo", "Exodus", "Êx"},
	{"LEV", 3, 27, "Levítico", "Leviticus", "Lv"},
	{"NUM", 4, 36, "Números", "Numbers", "Nm"},
	{"DEU", 5, 34, "Deuteronômio", "Deuteronomy", "Dt"},
	{"JOS", 6, 24, "Josué", "Joshua", "Js"},
	{"JDG", 7, 21, "Juízes", "Judges", "Jz"},
	{"RUT", 8, 4, "Rute", "Ruth", "Rt"},
	{"1SA", 9, 31, "1 Samuel", "1 Samuel", "1Sm"},
	{"2SA", 10, 24, "2 Samuel", "2 Samuel", "2Sm"},
	{"1KI", 11, 22, "1 Reis", "1 Kings", "1Rs"},
	{"2KI", 12, 25, "2 Reis", "2 Kings", "2Rs"},
	{"1CH", 13, 29, "1 Crônicas", "1 Chronicles", "1Cr"},
	{"2CH", 14, 36, "2 Crônicas", "2 Chronicles", "2Cr"},
	{"EZR", 15, 10, "Esdras", "Ezra", "Ed"},
	{"NEH", 16, 13, "Neemias", "Nehemiah", "Ne"},
	{"EST", 17, 10, "Ester", "Esther", "Et"},
	{"JOB", 18, 42, "Jó", "Job", "Jó"},
	{"PSA", 19, 150, "Salmos", "Psalms", "Sl"},
	{"PRO", 20, 31, "Provérbios", "Proverbs", "Pv"},
	{"ECC", 21, 12, "Eclesiastes", "Ecclesiastes", "Ec"},
	{"SNG", 22, 8, "Cânticos", "Song of Songs", "Ct"},
	{"ISA", 23, 66, "Isaías", "Isaiah", "Is"},
	{"JER", 24, 52, "Jeremias", "Jeremiah", "Jr"},
	{"LAM", 25, 5, "Lamentações", "Lamentations", "Lm"},
	{"EZK", 26, 48, "Ezequiel", "Ezekiel", "Ez"},
	{"DAN", 27, 12, "Daniel", "Daniel", "Dn"},
	{"HOS", 28, 14, "Oséias", "Hosea", "Os"},
	{"JOL", 29, 3, "Joel", "Joel", "Jl"},
	{"AMO", 30, 9, "Amós", "Amos", "Am"},
	{"OBA", 31, 1, "Obadias", "Obadiah", "Ob"},
	{"JON", 32, 4, "Jonas", "Jonah", "Jn"},
	{"MIC", 33, 7, "Miquéias", "Micah", "Mq"},
	{"NAM", 34, 3, "Naum", "Nahum", "Na"},
	{"HAB", 35, 3, "Habacuque", "Habakkuk", "Hc"},
	{"ZEP", 36, 3, "Sofonias", "Zephaniah", "Sf"},
	{"HAG", 37, 2, "Ageu", "Haggai", "Ag"},
	{"ZEC", 38, 14, "Zacarias", "Zechariah", "Zc"},
	{"MAL", 39, 4, "Malaquias", "Malachi", "Ml"},
	{"MAT", 40, 28, "Mateus", "Matthew", "Mt"},
	{"MRK", 41, 16, "Marcos", "Mark", "Mc"},
	{"LUK", 42, 24, "Lucas", "Luke", "Lc"},
	{"JHN", 43, 21, "João", "John", "Jo"},
	{"ACT", 44, 28, "Atos", "Acts", "At"},
	{"ROM", 45, 16, "Romanos", "Romans", "Rm"},
	{"1CO", 46, 16, "1 Coríntios", "1 Corinthians", "1Co"},
	{"2CO", 47, 13, "2 Coríntios", "2 Corinthians", "2Co"},
	{"GAL", 48, 6, "Gálatas", "Galatians", "Gl"},
	{"EPH", 49, 6, "Efésios", "Ephesians", "Ef"},
	{"PHP", 50, 4, "Filipenses", "Philippians", "Fp"},
	{"COL", 51, 4, "Colossenses", "Colossians", "Cl"},
	{"1TH", 52, 5, "1 Tessalonicenses", "1 Thessalonians", "1Ts"},
	{"2TH", 53, 3, "2 Tessalonicenses", "2 Thessalonians", "2Ts"},
	{"1TI", 54, 6, "1 Timóteo", "1 Timothy", "1Tm"},
	{"2TI", 55, 4, "2 Timóteo", "2 Timothy", "2Tm"},
	{"TIT", 56, 3, "Tito", "Titus", "Tt"},
	{"PHM", 57, 1, "Filemom", "Philemon", "Fm"},
	{"HEB", 58, 13, "Hebreus", "Hebrews", "Hb"},
	{"JAS", 59, 5, "Tiago", "James", "Tg"},
	{"1PE", 60, 5, "1 Pedro", "1 Peter", "1Pe"},
	{"2PE", 61, 3, "2 Pedro", "2 Peter", "2Pe"},
	{"1JN", 62, 5, "1 João", "1 John", "1Jo"},
	{"2JN", 63, 1, "2 João", "2 John", "2Jo"},
	{"3JN", 64, 1, "3 João", "3 John", "3Jo"},
	{"JUD", 65, 1, "Judas", "Jude", "Jd"},
	{"REV", 66, 22, "Apocalipse", "Revelation", "Ap"},
}

// extra spellings seen in user input.
var aliases = map[string]string{ //nolint:gochecknoglobals
	"Salmo":                 "PSA",
	"Psalm":                 "PSA",
	"Cantares":              "SNG",
	"Cântico dos Cânticos":  "SNG",
	"Cânticos dos Cânticos": "SNG",
	"Song of Solomon":       "SNG",
	"Abdias":                "OBA",
	"Atos dos Apóstolos":    "ACT",
	"Revelação":             "REV",
	"Revelations":           "REV",
}

// All returns the books in canonical order. The slice must not be modified.
func All() []Book {
	return books
}

// ByPosition returns the book at a 1 based canonical position.
func ByPosition(pos int) (*Book, bool) {
	if pos < 1 || pos > len(books) {
		return nil, false
	}

	return &books[pos-1], true
}

// ByUSFM returns the book with the given USFM code (case-insensitive).
func ByUSFM(code string) (*Book, bool) {
	b, ok := byUSFM[normalizeKey(code, false)]

	return b, ok
}
