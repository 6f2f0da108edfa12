package nlp

import (
	"strings"
	"unicode"
)

// Tokenize lowercases s and splits it into words. Punctuation separates words,
// so "physical/bodily" yields two tokens.
func Tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// JaccardSimilarity computes the Jaccard similarity coefficient between the
// token sets of a and b.
func JaccardSimilarity(a, b string) float64 {
	setA := make(map[string]bool)
	setB := make(map[string]bool)
	for _, token := range Tokenize(a) {
		setA[token] = true
	}
	for _, token := range Tokenize(b) {
		setB[token] = true
	}

	intersectionCount := 0
	unionSet := make(map[string]bool, len(setA)+len(setB))
	for token := range setA {
		unionSet[token] = true
		if setB[token] {
			intersectionCount++
		}
	}
	for token := range setB {
		unionSet[token] = true
	}

	if len(unionSet) == 0 {
		return 0.0
	}
	return float64(intersectionCount) / float64(len(unionSet))
}

// BestMatch returns the candidate most similar to s and its score. Ties keep
// the earlier candidate. ok is false when no candidate reaches threshold.
func BestMatch(s string, candidates []string, threshold float64) (best string, score float64, ok bool) {
	for _, c := range candidates {
		sim := JaccardSimilarity(s, c)
		if sim > score {
			best, score = c, sim
		}
	}
	if score == 0 || score < threshold {
		return "", score, false
	}
	return best, score, true
}
