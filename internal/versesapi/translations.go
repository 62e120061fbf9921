package versesapi

import "sort"

// Translation offered by bible-api.com.
type Translation struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
	Language     string `json:"language"`
}

var translations = map[string]Translation{ //nolint:gochecknoglobals
	"almeida": {ID: "almeida", Name: "João Ferreira de Almeida", Abbreviation: "ARA", Language: "pt"},
	"kjv":     {ID: "kjv", Name: "King James Version", Abbreviation: "KJV", Language: "en"},
	"web":     {ID: "web", Name: "World English Bible", Abbreviation: "WEB", Language: "en"},
	"webbe":   {ID: "webbe", Name: "World English Bible, British Edition", Abbreviation: "WEBBE", Language: "en"},
	"bbe":     {ID: "bbe", Name: "Bible in Basic English", Abbreviation: "BBE", Language: "en"},
	"asv":     {ID: "asv", Name: "American Standard Version", Abbreviation: "ASV", Language: "en"},
	"darby":   {ID: "darby", Name: "Darby Bible", Abbreviation: "DARBY", Language: "en"},
	"ylt":     {ID: "ylt", Name: "Young's Literal Translation", Abbreviation: "YLT", Language: "en"},
	"oeb-us":  {ID: "oeb-us", Name: "Open English Bible, US Edition", Abbreviation: "OEB", Language: "en"},
}

// LookupTranslation returns a known translation by id.
func LookupTranslation(id string) (Translation, bool) {
	t, ok := translations[id]

	return t, ok
}

// Translations returns the known translations of a language ("pt", "en"), all when lang is empty.
func Translations(lang string) []Translation {
	out := make([]Translation, 0, len(translations))

	for _, t := range translations {
		if lang == "" || t.Language == lang {
			out = append(out, t)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out
}
