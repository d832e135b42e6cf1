package model

import "strings"

// FileType tags which parser produced a DocumentStructure
type FileType string

const (
	FileTypePDF  FileType = "pdf"  // Page-markup document
	FileTypeDOCX FileType = "docx" // Word-processing archive
)

// Section identifies one of the three document regions
type Section string

const (
	SectionHeader Section = "header"
	SectionBody   Section = "body"
	SectionFooter Section = "footer"
)

// Sections lists the regions in comparison order
var Sections = []Section{SectionHeader, SectionBody, SectionFooter}

// Alignment is a paragraph's horizontal alignment
type Alignment string

const (
	AlignLeft    Alignment = "left"
	AlignCenter  Alignment = "center"
	AlignRight   Alignment = "right"
	AlignJustify Alignment = "justify"
)

// ImagePlaceholder is the text carried by a run that only holds a graphic
const ImagePlaceholder = "[IMAGE]"

// ParagraphRun is a contiguous span of text sharing one formatting set
type ParagraphRun struct {
	Text       string  `json:"text" yaml:"text"`
	Bold       bool    `json:"bold,omitempty" yaml:"bold,omitempty"`
	Italic     bool    `json:"italic,omitempty" yaml:"italic,omitempty"`
	Underline  bool    `json:"underline,omitempty" yaml:"underline,omitempty"`
	FontSize   float64 `json:"font_size,omitempty" yaml:"font_size,omitempty"` // Points, 0 when unset
	Color      string  `json:"color,omitempty" yaml:"color,omitempty"`
	FontFamily string  `json:"font_family,omitempty" yaml:"font_family,omitempty"`
	Highlight  string  `json:"highlight,omitempty" yaml:"highlight,omitempty"`
}

// IsImage reports whether the run is an image placeholder
func (r ParagraphRun) IsImage() bool {
	return r.Text == ImagePlaceholder
}

// Spacing holds paragraph spacing exactly as declared in the source
type Spacing struct {
	Before *int `json:"before,omitempty" yaml:"before,omitempty"`
	After  *int `json:"after,omitempty" yaml:"after,omitempty"`
	Line   *int `json:"line,omitempty" yaml:"line,omitempty"`
}

// Indent holds paragraph indentation exactly as declared in the source
type Indent struct {
	Left  *int `json:"left,omitempty" yaml:"left,omitempty"`
	Right *int `json:"right,omitempty" yaml:"right,omitempty"`
}

// Paragraph is an ordered sequence of runs plus paragraph-level metadata
type Paragraph struct {
	Runs      []ParagraphRun `json:"runs" yaml:"runs"`
	Alignment Alignment      `json:"alignment,omitempty" yaml:"alignment,omitempty"`
	StyleID   string         `json:"style_id,omitempty" yaml:"style_id,omitempty"`
	Spacing   *Spacing       `json:"spacing,omitempty" yaml:"spacing,omitempty"`
	Indent    *Indent        `json:"indent,omitempty" yaml:"indent,omitempty"`
	Index     int            `json:"index" yaml:"index"`
	Page      int            `json:"page,omitempty" yaml:"page,omitempty"` // 1-based, PDF only
}

// Text returns the concatenated text of all runs
func (p Paragraph) Text() string {
	if len(p.Runs) == 1 {
		return p.Runs[0].Text
	}
	var sb strings.Builder
	for _, r := range p.Runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

// Table captures table geometry and, optionally, its cell text
type Table struct {
	Rows    int        `json:"rows" yaml:"rows"`
	Cols    int        `json:"cols" yaml:"cols"`
	Index   int        `json:"index" yaml:"index"`
	Content [][]string `json:"content,omitempty" yaml:"content,omitempty"` // Ragged rows are padded implicitly
}

// ImageInfo describes an embedded image and where it was found
type ImageInfo struct {
	RelationID string  `json:"relation_id" yaml:"relation_id"`
	Location   Section `json:"location" yaml:"location"`
	Index      int     `json:"index" yaml:"index"`
	Width      float64 `json:"width,omitempty" yaml:"width,omitempty"`   // Points, 0 when unknown
	Height     float64 `json:"height,omitempty" yaml:"height,omitempty"` // Points, 0 when unknown
	Name       string  `json:"name,omitempty" yaml:"name,omitempty"`
	IsMainLogo bool    `json:"is_main_logo,omitempty" yaml:"is_main_logo,omitempty"`
}

// Area returns width×height, 0 when either dimension is unknown
func (i ImageInfo) Area() float64 {
	return i.Width * i.Height
}

// SectionContent holds the blocks belonging to one section
type SectionContent struct {
	Paragraphs []Paragraph `json:"paragraphs" yaml:"paragraphs"`
	Tables     []Table     `json:"tables" yaml:"tables"`
	Images     []ImageInfo `json:"images" yaml:"images"`
}

// NewSectionContent returns an empty, non-nil section
func NewSectionContent() *SectionContent {
	return &SectionContent{
		Paragraphs: []Paragraph{},
		Tables:     []Table{},
		Images:     []ImageInfo{},
	}
}

// DocumentSections holds the mandatory body and the optional header/footer
type DocumentSections struct {
	Header *SectionContent `json:"header,omitempty" yaml:"header,omitempty"`
	Body   *SectionContent `json:"body" yaml:"body"`
	Footer *SectionContent `json:"footer,omitempty" yaml:"footer,omitempty"`
}

// Style is one entry of a word-processing style catalog
type Style struct {
	ID      string `json:"id" yaml:"id"`
	Name    string `json:"name,omitempty" yaml:"name,omitempty"`
	Type    string `json:"type,omitempty" yaml:"type,omitempty"`
	BasedOn string `json:"based_on,omitempty" yaml:"based_on,omitempty"`
}

// DocumentStructure is the canonical model both parsers produce.
// It is built once per parse and must not be mutated afterwards.
type DocumentStructure struct {
	FileType  FileType         `json:"file_type" yaml:"file_type"`
	PageCount int              `json:"page_count,omitempty" yaml:"page_count,omitempty"` // PDF only
	Sections  DocumentSections `json:"sections" yaml:"sections"`
	Styles    map[string]Style `json:"styles,omitempty" yaml:"styles,omitempty"` // DOCX only
}

// NewDocumentStructure returns a structure with an empty body
func NewDocumentStructure(fileType FileType) *DocumentStructure {
	return &DocumentStructure{
		FileType: fileType,
		Sections: DocumentSections{Body: NewSectionContent()},
	}
}

// Section returns the content of s, or nil when the section is absent
func (d *DocumentStructure) Section(s Section) *SectionContent {
	switch s {
	case SectionHeader:
		return d.Sections.Header
	case SectionFooter:
		return d.Sections.Footer
	default:
		return d.Sections.Body
	}
}

// Images returns every image in header, body, footer order
func (d *DocumentStructure) Images() []ImageInfo {
	var images []ImageInfo
	for _, s := range Sections {
		if c := d.Section(s); c != nil {
			images = append(images, c.Images...)
		}
	}
	return images
}

// MainLogo returns the header image flagged as main logo, falling back to
// the first header image. The boolean is false when the header has no images.
func (d *DocumentStructure) MainLogo() (ImageInfo, bool) {
	header := d.Sections.Header
	if header == nil || len(header.Images) == 0 {
		return ImageInfo{}, false
	}
	for _, img := range header.Images {
		if img.IsMainLogo {
			return img, true
		}
	}
	return header.Images[0], true
}

// MarkMainLogo flags the largest header image (first wins ties)
func MarkMainLogo(images []ImageInfo) {
	if len(images) == 0 {
		return
	}
	best := 0
	for i := range images {
		images[i].IsMainLogo = false
		if images[i].Area() > images[best].Area() {
			best = i
		}
	}
	images[best].IsMainLogo = true
}
