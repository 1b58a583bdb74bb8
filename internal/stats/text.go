package stats

import "strings"

// Tokenize splits text into maximal alphabetic runs, lowercased.
func Tokenize(text string) []string {
	var tokens []string
	var current strings.Builder

	for _, r := range text {
		switch {
		case r >= 'a' && r <= 'z':
			current.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			current.WriteRune(r + ('a' - 'A'))
		default:
			if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}
		}
	}
	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}
	return tokens
}

// stopWords are excluded from word-frequency counts. Articles,
// conjunctions, prepositions and pronouns only; they still count toward
// a page's total token count.
var stopWords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"the", "a", "an",
		"and", "or", "but", "nor", "so", "yet",
		"of", "to", "in", "on", "at", "by", "for", "with", "from",
		"as", "into", "onto", "over", "under", "about", "after",
		"before", "between", "through", "during", "above", "below",
		"up", "down", "out", "off", "than", "via",
		"it", "its", "this", "that", "these", "those",
		"i", "me", "my", "we", "us", "our", "you", "your",
		"he", "him", "his", "she", "her", "they", "them", "their",
		"who", "whom", "whose", "which", "what",
	} {
		stopWords[w] = struct{}{}
	}
}

// Countable reports whether a token participates in word-frequency
// counting: longer than one character and not a stop word.
func Countable(token string) bool {
	if len(token) <= 1 {
		return false
	}
	_, stop := stopWords[token]
	return !stop
}
