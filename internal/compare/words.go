package compare

import (
	"fmt"
	"strings"

	"github.com/ppiankov/conformia/internal/model"
	"github.com/ppiankov/conformia/internal/textnorm"
)

// wordHaystack is the candidate's searchable text in both case forms
type wordHaystack struct {
	text  string
	lower string
}

// documentText joins the normalized text of every header, body and footer
// paragraph, each followed by a space
func documentText(doc *model.DocumentStructure, opts model.CompareOptions) wordHaystack {
	var sb strings.Builder
	for _, section := range model.Sections {
		content := doc.Section(section)
		if content == nil {
			continue
		}
		for _, p := range content.Paragraphs {
			sb.WriteString(textnorm.ParagraphText(p, opts))
			sb.WriteByte(' ')
		}
	}
	text := sb.String()
	return wordHaystack{text: text, lower: strings.ToLower(text)}
}

// contains matches case-insensitively only when IgnoreCase is set
func (h wordHaystack) contains(word string, opts model.CompareOptions) bool {
	if opts.IgnoreCase {
		return strings.Contains(h.lower, strings.ToLower(word))
	}
	return strings.Contains(h.text, word)
}

func checkRequiredWords(text wordHaystack, opts model.CompareOptions) []model.Issue {
	var issues []model.Issue
	for _, word := range opts.RequiredWords {
		if !text.contains(word, opts) {
			issues = append(issues, model.Issue{
				Severity: model.SeverityCritical,
				Category: model.CategoryText,
				Location: at(model.SectionBody, 0),
				Message:  fmt.Sprintf("Palavra obrigatória ausente: %q", word),
			})
		}
	}
	return issues
}

func checkForbiddenWords(text wordHaystack, opts model.CompareOptions) []model.Issue {
	var issues []model.Issue
	for _, word := range opts.ForbiddenWords {
		if text.contains(word, opts) {
			issues = append(issues, model.Issue{
				Severity: model.SeverityCritical,
				Category: model.CategoryText,
				Location: at(model.SectionBody, 0),
				Message:  fmt.Sprintf("Palavra proibida encontrada: %q", word),
			})
		}
	}
	return issues
}
