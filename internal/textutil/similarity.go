package textutil

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/hbollon/go-edlib"
)

// Combine selects how the token and edit-distance measures are merged.
type Combine string

const (
	// CombineMax takes the larger of the two measures.
	CombineMax Combine = "max"
	// CombineToken uses only the token-overlap measure.
	CombineToken Combine = "token"
	// CombineEdit uses only the edit-distance measure.
	CombineEdit Combine = "edit"
)

// ParseCombine maps a configuration value to a Combine mode. An empty value
// selects CombineMax.
func ParseCombine(value string) (Combine, error) {
	switch Combine(strings.ToLower(strings.TrimSpace(value))) {
	case "", CombineMax:
		return CombineMax, nil
	case CombineToken:
		return CombineToken, nil
	case CombineEdit:
		return CombineEdit, nil
	default:
		return "", fmt.Errorf("unknown similarity mode %q (want max, token, or edit)", value)
	}
}

// Similarity scores a against b in [0,1] using the maximum of
// TokenSimilarity and EditSimilarity.
func Similarity(a, b string) float64 {
	return SimilarityWith(CombineMax, a, b)
}

// SimilarityWith scores a against b using the requested combination.
// Identical inputs always score exactly 1.
func SimilarityWith(mode Combine, a, b string) float64 {
	if a == b {
		return 1
	}
	switch mode {
	case CombineToken:
		return TokenSimilarity(a, b)
	case CombineEdit:
		return EditSimilarity(a, b)
	default:
		return max(TokenSimilarity(a, b), EditSimilarity(a, b))
	}
}

// TokenSimilarity is the Jaccard index of the normalized token sets of a
// and b. Returns 0 when either set is empty.
func TokenSimilarity(a, b string) float64 {
	setA := TokenSet(a)
	setB := TokenSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}
	intersection := 0
	for token := range setA {
		if _, ok := setB[token]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

// EditSimilarity converts the Levenshtein distance between the normalized
// forms of a and b into 1 - distance/maxLen, with lengths counted in runes.
// Two empty normalized strings score 1; one empty side scores 0.
func EditSimilarity(a, b string) float64 {
	normA := Normalize(a)
	normB := Normalize(b)
	lenA := utf8.RuneCountInString(normA)
	lenB := utf8.RuneCountInString(normB)
	if lenA == 0 || lenB == 0 {
		if lenA == 0 && lenB == 0 {
			return 1
		}
		return 0
	}
	distance := edlib.LevenshteinDistance(normA, normB)
	return 1 - float64(distance)/float64(max(lenA, lenB))
}
