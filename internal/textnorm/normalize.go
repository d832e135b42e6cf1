// Package textnorm holds the pure text utilities used for comparison:
// option-driven normalization, edit distance and best-match alignment.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ppiankov/conformia/internal/model"
)

// typographic folds applied regardless of options
var typographic = strings.NewReplacer(
	"\u00a0", " ", // NBSP
	"\u2013", "-", // en dash
	"\u2014", "-", // em dash
	"\u2018", "'",
	"\u2019", "'",
	"\u201c", `"`,
	"\u201d", `"`,
)

// Normalize applies the option-controlled transforms and the fixed
// typographic folds, then trims. Normalize(Normalize(s, o), o) == Normalize(s, o).
func Normalize(text string, opts model.CompareOptions) string {
	normalized := text

	if opts.IgnoreExtraSpaces {
		normalized = collapseSpace(normalized)
	}

	if opts.IgnoreLineBreaks {
		normalized = strings.ReplaceAll(normalized, "\n", " ")
		normalized = strings.ReplaceAll(normalized, "\r", "")
	}

	if opts.IgnoreCase {
		// Casers keep state; one per call keeps Normalize safe for concurrent use
		normalized = cases.Lower(language.Und).String(normalized)
	}

	normalized = typographic.Replace(normalized)
	return strings.TrimSpace(normalized)
}

// collapseSpace replaces every run of whitespace with a single space
func collapseSpace(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	inSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !inSpace {
				sb.WriteByte(' ')
				inSpace = true
			}
			continue
		}
		sb.WriteRune(r)
		inSpace = false
	}
	return sb.String()
}

// ParagraphText returns the normalized concatenation of a paragraph's runs
func ParagraphText(p model.Paragraph, opts model.CompareOptions) string {
	return Normalize(p.Text(), opts)
}

// CompareRuns reports whether two runs are equivalent: equal text after
// normalization and, unless font differences are ignored, equal formatting.
func CompareRuns(a, b model.ParagraphRun, opts model.CompareOptions) bool {
	if Normalize(a.Text, opts) != Normalize(b.Text, opts) {
		return false
	}
	if opts.IgnoreFontDifferences {
		return true
	}
	return a.Bold == b.Bold &&
		a.Italic == b.Italic &&
		a.Underline == b.Underline &&
		a.FontSize == b.FontSize &&
		a.Color == b.Color &&
		a.FontFamily == b.FontFamily
}
