package rag

import "strings"

// French stop words filtered out of graph-enrichment keyword extraction.
var stopWords = map[string]bool{
	"le": true, "la": true, "les": true, "un": true, "une": true,
	"des": true, "de": true, "du": true, "au": true, "aux": true,
	"et": true, "ou": true, "mais": true, "donc": true, "car": true,
	"est": true, "sont": true, "être": true, "avoir": true, "fait": true,
	"que": true, "qui": true, "quoi": true, "quel": true, "quels": true,
	"quelle": true, "quelles": true, "comment": true, "pourquoi": true,
	"où": true, "quand": true, "combien": true,
	"ce": true, "cet": true, "cette": true, "ces": true, "son": true,
	"sa": true, "ses": true, "leur": true, "leurs": true, "mon": true,
	"ma": true, "mes": true, "votre": true, "vos": true, "notre": true,
	"nos": true, "je": true, "tu": true, "il": true, "elle": true,
	"on": true, "nous": true, "vous": true, "ils": true, "elles": true,
	"ne": true, "pas": true, "plus": true, "très": true, "bien": true,
	"dans": true, "sur": true, "sous": true, "avec": true, "sans": true,
	"pour": true, "par": true, "vers": true, "chez": true, "entre": true,
	"se": true, "me": true, "te": true, "y": true, "en": true,
	"trouve": true, "trouvent": true, "situé": true, "située": true,
	"sites": true, "site": true,
}

// ExtractKeywords pulls candidate entity words out of a question: lowercase,
// punctuation-trimmed, stop words and short tokens removed.
func ExtractKeywords(question string) []string {
	var keywords []string
	for _, w := range strings.Fields(strings.ToLower(question)) {
		w = strings.Trim(w, "?.,!;:'\"«»()")
		if len([]rune(w)) > 2 && !stopWords[w] {
			keywords = append(keywords, w)
		}
	}
	return keywords
}
