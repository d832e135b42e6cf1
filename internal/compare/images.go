package compare

import (
	"fmt"
	"math"

	"github.com/ppiankov/conformia/internal/model"
)

// compareImages checks the main logo's presence, section and width, then the
// total image count
func compareImages(template, candidate *model.DocumentStructure, opts model.CompareOptions) []model.Issue {
	var issues []model.Issue

	templateLogo, templateHasLogo := template.MainLogo()
	candidateLogo, candidateHasLogo := candidate.MainLogo()

	switch {
	case templateHasLogo && !candidateHasLogo:
		issues = append(issues, model.Issue{
			Severity: model.SeverityCritical,
			Category: model.CategoryImage,
			Location: at(model.SectionHeader, 0),
			Message:  "Logotipo obrigatório ausente no header do documento",
			Hint:     "O template possui logo no header, mas o documento não possui",
		})
	case templateHasLogo && candidateHasLogo:
		issues = append(issues, compareLogos(templateLogo, candidateLogo, opts)...)
	}

	templateCount := len(template.Images())
	candidateCount := len(candidate.Images())
	if templateCount != candidateCount {
		issues = append(issues, model.Issue{
			Severity:       highSensitivity(opts, model.SeverityMajor, model.SeverityMinor),
			Category:       model.CategoryImage,
			Location:       at(model.SectionBody, 0),
			Message:        "Quantidade de imagens diferente",
			TemplateValue:  fmt.Sprintf("%d imagens", templateCount),
			CandidateValue: fmt.Sprintf("%d imagens", candidateCount),
		})
	}

	return issues
}

func compareLogos(template, candidate model.ImageInfo, opts model.CompareOptions) []model.Issue {
	var issues []model.Issue

	if template.Location != candidate.Location {
		issues = append(issues, model.Issue{
			Severity: highSensitivity(opts, model.SeverityCritical, model.SeverityMajor),
			Category: model.CategoryImage,
			Location: at(candidate.Location, 0),
			Message:  "Logotipo mudou de seção",
			Hint:     fmt.Sprintf("Template: %s, Documento: %s", template.Location, candidate.Location),
		})
	}

	// Width is only compared when both sides know it
	if template.Width > 0 && candidate.Width > 0 {
		diff := math.Abs(template.Width-candidate.Width) / template.Width
		threshold := opts.ImageSizeTolerance / 100
		if diff > threshold {
			severity := highSensitivity(opts, model.SeverityMajor, model.SeverityMinor)
			if diff > threshold*2 {
				severity = model.SeverityMajor
			}
			issues = append(issues, model.Issue{
				Severity: severity,
				Category: model.CategoryImage,
				Location: at(model.SectionHeader, 0),
				Message:  "Tamanho do logotipo muito diferente",
				Hint:     fmt.Sprintf("Diferença de %.0f%%", diff*100),
			})
		}
	}

	return issues
}
