package rank

import "strings"

// Stop words to filter out of queries and chunk text before term matching
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "be": true, "is": true, "are": true,
	"was": true, "to": true, "of": true, "and": true, "in": true, "that": true,
	"have": true, "it": true, "for": true, "not": true, "on": true, "with": true,
	"as": true, "you": true, "do": true, "at": true, "this": true, "but": true,
	"by": true, "from": true,
}

// tokenizeAndFilter splits text into words, lowercases, trims punctuation, and removes stop words
func tokenizeAndFilter(text string) []string {
	words := strings.Fields(text)
	filtered := make([]string, 0, len(words))

	for _, word := range words {
		cleaned := strings.ToLower(strings.Trim(word, ".,!?;:'\"-()[]{}"))

		if cleaned != "" && !stopWords[cleaned] {
			filtered = append(filtered, cleaned)
		}
	}

	return filtered
}

// LexicalScore returns the fraction of distinct query terms present in the
// document, in [0, 1]. Matching is case-insensitive and stop words are
// ignored on both sides. A query with no usable terms scores 0.
func LexicalScore(document, query string) float64 {
	queryTerms := tokenizeAndFilter(query)
	if len(queryTerms) == 0 {
		return 0
	}

	distinct := make(map[string]bool, len(queryTerms))
	for _, term := range queryTerms {
		distinct[term] = true
	}

	docWords := tokenizeAndFilter(document)
	docWordSet := make(map[string]bool, len(docWords))
	for _, word := range docWords {
		docWordSet[word] = true
	}

	matched := 0
	for term := range distinct {
		if docWordSet[term] {
			matched++
		}
	}
	return float64(matched) / float64(len(distinct))
}
