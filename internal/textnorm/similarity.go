package textnorm

import "github.com/ppiankov/conformia/internal/model"

// DefaultMatchThreshold is the similarity a fallback paragraph match must reach
const DefaultMatchThreshold = 0.70

// Levenshtein returns the edit distance between a and b over runes, with
// unit cost for insertion, deletion and substitution.
func Levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			if ra[i-1] == rb[j-1] {
				curr[j] = prev[j-1]
				continue
			}
			curr[j] = 1 + min(prev[j-1], curr[j-1], prev[j])
		}
		prev, curr = curr, prev
	}

	return prev[len(rb)]
}

// SimilarityRatio returns 1 - distance/maxLen, or 1 when both are empty.
// The result is always within [0, 1].
func SimilarityRatio(a, b string) float64 {
	maxLen := max(len([]rune(a)), len([]rune(b)))
	if maxLen == 0 {
		return 1
	}
	return 1 - float64(Levenshtein(a, b))/float64(maxLen)
}

// Match is the result of a best-match search
type Match struct {
	Index      int     // Position within the candidate slice
	Similarity float64 // Similarity of normalized texts
}

// FindBestMatch compares target against every candidate and keeps the most
// similar one reaching threshold; the first candidate wins ties. The search is
// greedy and non-exclusive: callers track which candidates are already used.
func FindBestMatch(target model.Paragraph, candidates []model.Paragraph, opts model.CompareOptions, threshold float64) (Match, bool) {
	targetText := ParagraphText(target, opts)

	best := Match{Index: -1}
	found := false
	for i, c := range candidates {
		similarity := SimilarityRatio(targetText, ParagraphText(c, opts))
		if similarity >= threshold && (!found || similarity > best.Similarity) {
			best = Match{Index: i, Similarity: similarity}
			found = true
		}
	}

	return best, found
}
