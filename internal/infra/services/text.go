package services

import (
	"strings"
	"unicode"
)

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {}, "but": {}, "by": {},
	"for": {}, "from": {}, "has": {}, "have": {}, "i": {}, "if": {}, "in": {}, "is": {}, "it": {},
	"its": {}, "m": {}, "me": {}, "my": {}, "of": {}, "on": {}, "or": {}, "s": {}, "so": {},
	"that": {}, "the": {}, "this": {}, "to": {}, "was": {}, "we": {}, "with": {}, "you": {},
	"your": {}, "re": {}, "ll": {}, "ve": {}, "d": {}, "t": {},
}

// fillerWords carry no information about why someone is calling.
var fillerWords = map[string]struct{}{
	"uh": {}, "um": {}, "umm": {}, "uhh": {}, "er": {}, "ah": {}, "hmm": {}, "huh": {},
	"what": {}, "hello": {}, "hi": {}, "hey": {}, "yes": {}, "yeah": {}, "no": {}, "ok": {},
	"okay": {}, "sorry": {}, "pardon": {}, "who": {}, "oh": {}, "well": {}, "like": {},
}

// normalizeText lowercases text and turns every run of non-alphanumerics into one space.
func normalizeText(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	space := true
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			space = false
			continue
		}
		if !space {
			b.WriteByte(' ')
			space = true
		}
	}
	return strings.TrimSpace(b.String())
}

// containsTerm reports whether the normalized haystack holds term on word boundaries.
// Both arguments must already be normalized.
func containsTerm(haystack, term string) bool {
	if term == "" {
		return false
	}
	return strings.Contains(" "+haystack+" ", " "+term+" ")
}

// contentTokens returns the normalized tokens of text without stop words.
func contentTokens(text string) []string {
	fields := strings.Fields(normalizeText(text))
	tokens := fields[:0]
	for _, field := range fields {
		if _, stop := stopWords[field]; stop {
			continue
		}
		tokens = append(tokens, field)
	}
	return tokens
}

// informativeWords counts tokens that are neither stop words nor conversational filler.
func informativeWords(text string) int {
	count := 0
	for _, token := range contentTokens(text) {
		if _, filler := fillerWords[token]; filler {
			continue
		}
		count++
	}
	return count
}
