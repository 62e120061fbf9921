package bible

// staticVersions are served when no backend lists any version.
var staticVersions = []Version{ //nolint:gochecknoglobals
	{ID: "d63894c8d9a7a503-01", Name: "Bíblia Livre Para Todos", Abbreviation: "BLFPT", Language: "pt"},
	{ID: "90799bb5b996fddc-01", Name: "Translation for Translators", Abbreviation: "TFT", Language: "en"},
}

type dailyEntry struct {
	reference string
	version   string
	text      string
}

// dailyVerses are picked by day of year. text is served when no backend answers.
var dailyVerses = []dailyEntry{ //nolint:gochecknoglobals
	{
		reference: "João 3:16",
		version:   "NVI",
		text:      "Porque Deus tanto amou o mundo que deu o seu Filho Unigênito, para que todo o que nele crer não pereça, mas tenha a vida eterna.",
	},
	{reference: "Salmos 23:1", version: "ARC", text: "O Senhor é o meu pastor, nada me faltará."},
	{reference: "Salmos 37:5", version: "ARC", text: "Entrega o teu caminho ao Senhor; confia nele, e ele tudo fará."},
	{reference: "Filipenses 4:13", version: "ARC", text: "Tudo posso naquele que me fortalece."},
}

// remoteLanguages are the scripture api languages offered to readers.
var remoteLanguages = map[string]bool{"por": true, "eng": true} //nolint:gochecknoglobals
