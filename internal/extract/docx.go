package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/ppiankov/conformia/internal/model"
)

const (
	docxMainPart   = "word/document.xml"
	docxStylesPart = "word/styles.xml"
	docxRelsPart   = "word/_rels/document.xml.rels"

	emuPerPoint = 12700
)

// DocxParser decodes word-processing archives into the canonical model
type DocxParser struct {
	logger *slog.Logger
}

// NewDocxParser creates a DOCX parser
func NewDocxParser(logger *slog.Logger) *DocxParser {
	if logger == nil {
		logger = slog.Default()
	}
	return &DocxParser{logger: logger}
}

// FileType returns the format this parser accepts
func (p *DocxParser) FileType() model.FileType {
	return model.FileTypeDOCX
}

// Parse decodes a DOCX archive held in memory
func (p *DocxParser) Parse(ctx context.Context, data []byte) (*model.DocumentStructure, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: open archive: %v", model.ErrMalformedArchive, err)
	}
	archive := newDocxArchive(zr)

	mainXML, ok, err := archive.read(docxMainPart)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", model.ErrMalformedArchive, docxMainPart, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s not found", model.ErrMalformedArchive, docxMainPart)
	}

	doc, err := xmlquery.Parse(bytes.NewReader(mainXML))
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", model.ErrInvalidStructure, docxMainPart, err)
	}
	body := child(child(doc, "w:document"), "w:body")
	if body == nil {
		return nil, fmt.Errorf("%w: w:body element missing", model.ErrInvalidStructure)
	}

	structure := model.NewDocumentStructure(model.FileTypeDOCX)
	structure.Styles = p.parseStyles(archive)

	images := p.parseRelationships(archive, docxRelsPart, nil)

	b := &sectionBuilder{images: images, section: model.SectionBody, content: structure.Sections.Body}
	b.addBlocks(body)

	if name, ok := archive.first("word/header"); ok {
		if content := p.parsePart(archive, name, "w:hdr", model.SectionHeader, images); content != nil {
			model.MarkMainLogo(content.Images)
			structure.Sections.Header = content
		}
	}
	if name, ok := archive.first("word/footer"); ok {
		if content := p.parsePart(archive, name, "w:ftr", model.SectionFooter, images); content != nil {
			structure.Sections.Footer = content
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.logger.Debug("parsed docx",
		"paragraphs", len(structure.Sections.Body.Paragraphs),
		"tables", len(structure.Sections.Body.Tables),
		"images", len(structure.Images()),
		"header", structure.Sections.Header != nil,
		"footer", structure.Sections.Footer != nil)

	return structure, nil
}

// parsePart parses a header or footer part. Only its first matching entry is
// ever passed in. The part's own relationships override the document's.
func (p *DocxParser) parsePart(archive *docxArchive, name, rootName string, section model.Section, docImages map[string]model.ImageInfo) *model.SectionContent {
	raw, ok, err := archive.read(name)
	if err != nil || !ok {
		p.logger.Warn("skipping unreadable part", "part", name, "error", err)
		return nil
	}
	doc, err := xmlquery.Parse(bytes.NewReader(raw))
	if err != nil {
		p.logger.Warn("skipping malformed part", "part", name, "error", err)
		return nil
	}
	root := child(doc, rootName)
	if root == nil {
		return nil
	}

	relsName := path.Join(path.Dir(name), "_rels", path.Base(name)+".rels")
	images := p.parseRelationships(archive, relsName, docImages)

	content := model.NewSectionContent()
	b := &sectionBuilder{images: images, section: section, content: content}
	b.addBlocks(root)
	return content
}

// parseRelationships maps relationship ids to provisional image records.
// Entries of base are kept unless the part redefines the id.
func (p *DocxParser) parseRelationships(archive *docxArchive, name string, base map[string]model.ImageInfo) map[string]model.ImageInfo {
	images := make(map[string]model.ImageInfo, len(base))
	for id, img := range base {
		images[id] = img
	}

	raw, ok, err := archive.read(name)
	if err != nil || !ok {
		return images
	}
	doc, err := xmlquery.Parse(bytes.NewReader(raw))
	if err != nil {
		p.logger.Warn("ignoring malformed relationships", "part", name, "error", err)
		return images
	}

	index := 0
	for _, rel := range children(child(doc, "Relationships"), "Relationship") {
		if !strings.Contains(attr(rel, "Type"), "image") {
			continue
		}
		id := attr(rel, "Id")
		images[id] = model.ImageInfo{
			RelationID: id,
			Location:   model.SectionBody,
			Index:      index,
			Name:       attr(rel, "Target"),
		}
		index++
	}
	return images
}

// parseStyles builds the style catalog; a missing or broken part yields nil
func (p *DocxParser) parseStyles(archive *docxArchive) map[string]model.Style {
	raw, ok, err := archive.read(docxStylesPart)
	if err != nil || !ok {
		return nil
	}
	doc, err := xmlquery.Parse(bytes.NewReader(raw))
	if err != nil {
		p.logger.Warn("ignoring malformed style catalog", "error", err)
		return nil
	}

	styles := make(map[string]model.Style)
	for _, s := range children(child(doc, "w:styles"), "w:style") {
		id := attr(s, "w:styleId")
		if id == "" {
			continue
		}
		styles[id] = model.Style{
			ID:      id,
			Name:    attr(child(s, "w:name"), "w:val"),
			Type:    attr(s, "w:type"),
			BasedOn: attr(child(s, "w:basedOn"), "w:val"),
		}
	}
	return styles
}

// sectionBuilder accumulates the blocks of one section
type sectionBuilder struct {
	images  map[string]model.ImageInfo
	section model.Section
	content *model.SectionContent
}

// addBlocks appends every top-level paragraph, then every top-level table.
// Paragraph/table interleaving is not reconstructed.
func (b *sectionBuilder) addBlocks(root *xmlquery.Node) {
	for _, p := range children(root, "w:p") {
		b.addParagraph(p)
	}
	for _, tbl := range children(root, "w:tbl") {
		b.content.Tables = append(b.content.Tables, parseTable(tbl, len(b.content.Tables)))
	}
}

func (b *sectionBuilder) addParagraph(p *xmlquery.Node) {
	para := model.Paragraph{Runs: []model.ParagraphRun{}}

	for _, r := range paragraphRuns(p) {
		run, embed, ok := parseRun(r)
		if !ok {
			continue
		}
		para.Runs = append(para.Runs, run)
		if embed.relationID != "" {
			b.linkImage(embed)
		}
	}

	if len(para.Runs) == 0 {
		return
	}

	applyParagraphProperties(&para, child(p, "w:pPr"))
	para.Index = len(b.content.Paragraphs)
	b.content.Paragraphs = append(b.content.Paragraphs, para)
}

func (b *sectionBuilder) linkImage(embed graphicRef) {
	img, ok := b.images[embed.relationID]
	if !ok {
		return
	}
	img.Location = b.section
	img.Index = len(b.content.Images)
	if embed.width > 0 {
		img.Width = embed.width
	}
	if embed.height > 0 {
		img.Height = embed.height
	}
	b.content.Images = append(b.content.Images, img)
}

// paragraphRuns returns the runs of a paragraph, including runs wrapped in
// hyperlinks, insertions and smart tags
func paragraphRuns(p *xmlquery.Node) []*xmlquery.Node {
	var runs []*xmlquery.Node
	for c := p.FirstChild; c != nil; c = c.NextSibling {
		switch {
		case is(c, "w:r"):
			runs = append(runs, c)
		case is(c, "w:hyperlink"), is(c, "w:ins"), is(c, "w:smartTag"):
			runs = append(runs, children(c, "w:r")...)
		}
	}
	return runs
}

// graphicRef is the embedded image a run points at
type graphicRef struct {
	relationID string
	width      float64
	height     float64
}

// parseRun extracts one run. ok is false when the run has neither text nor
// a graphic.
func parseRun(r *xmlquery.Node) (model.ParagraphRun, graphicRef, bool) {
	text := runText(r)
	drawing := child(r, "w:drawing")
	pict := child(r, "w:pict")
	if text == "" && drawing == nil && pict == nil {
		return model.ParagraphRun{}, graphicRef{}, false
	}

	run := model.ParagraphRun{Text: text}
	applyRunProperties(&run, child(r, "w:rPr"))

	var ref graphicRef
	switch {
	case drawing != nil:
		run.Text = model.ImagePlaceholder
		ref.relationID = attr(descendant(drawing, "a:blip"), "r:embed")
		if extent := descendant(drawing, "wp:extent"); extent != nil {
			ref.width = emuToPoints(attr(extent, "cx"))
			ref.height = emuToPoints(attr(extent, "cy"))
		}
	case pict != nil:
		run.Text = model.ImagePlaceholder
		ref.relationID = attr(descendant(pict, "v:imagedata"), "r:id")
		if shape := descendant(pict, "v:shape"); shape != nil {
			ref.width, ref.height = vmlSize(attr(shape, "style"))
		}
	}

	return run, ref, true
}

// runText concatenates text, tabs and breaks in document order
func runText(r *xmlquery.Node) string {
	var sb strings.Builder
	for c := r.FirstChild; c != nil; c = c.NextSibling {
		switch {
		case is(c, "w:t"):
			sb.WriteString(c.InnerText())
		case is(c, "w:tab"):
			sb.WriteByte('\t')
		case is(c, "w:br"), is(c, "w:cr"):
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func applyRunProperties(run *model.ParagraphRun, rPr *xmlquery.Node) {
	if rPr == nil {
		return
	}
	run.Bold = toggleOn(child(rPr, "w:b"))
	run.Italic = toggleOn(child(rPr, "w:i"))
	run.Underline = toggleOn(child(rPr, "w:u"))

	if sz := attr(child(rPr, "w:sz"), "w:val"); sz != "" {
		if halfPoints, err := strconv.ParseFloat(sz, 64); err == nil {
			run.FontSize = halfPoints / 2
		}
	}
	run.Color = attr(child(rPr, "w:color"), "w:val")
	if fonts := child(rPr, "w:rFonts"); fonts != nil {
		run.FontFamily = attr(fonts, "w:ascii")
		if run.FontFamily == "" {
			run.FontFamily = attr(fonts, "w:hAnsi")
		}
	}
	run.Highlight = attr(child(rPr, "w:highlight"), "w:val")
}

// toggleOn reports whether a formatting element is present and not
// explicitly switched off
func toggleOn(n *xmlquery.Node) bool {
	if n == nil {
		return false
	}
	switch strings.ToLower(attr(n, "w:val")) {
	case "0", "false", "off", "none":
		return false
	}
	return true
}

func applyParagraphProperties(para *model.Paragraph, pPr *xmlquery.Node) {
	if pPr == nil {
		return
	}

	if jc := child(pPr, "w:jc"); jc != nil {
		switch attr(jc, "w:val") {
		case "center":
			para.Alignment = model.AlignCenter
		case "right", "end":
			para.Alignment = model.AlignRight
		case "justify", "both", "distribute":
			para.Alignment = model.AlignJustify
		default:
			para.Alignment = model.AlignLeft
		}
	}

	para.StyleID = attr(child(pPr, "w:pStyle"), "w:val")

	if spacing := child(pPr, "w:spacing"); spacing != nil {
		para.Spacing = &model.Spacing{
			Before: intAttr(spacing, "w:before"),
			After:  intAttr(spacing, "w:after"),
			Line:   intAttr(spacing, "w:line"),
		}
	}

	if ind := child(pPr, "w:ind"); ind != nil {
		left := intAttr(ind, "w:left")
		if left == nil {
			left = intAttr(ind, "w:start")
		}
		right := intAttr(ind, "w:right")
		if right == nil {
			right = intAttr(ind, "w:end")
		}
		para.Indent = &model.Indent{Left: left, Right: right}
	}
}

func parseTable(tbl *xmlquery.Node, index int) model.Table {
	rows := children(tbl, "w:tr")
	table := model.Table{Rows: len(rows), Index: index, Content: make([][]string, 0, len(rows))}

	for _, tr := range rows {
		cells := children(tr, "w:tc")
		row := make([]string, 0, len(cells))
		for _, tc := range cells {
			row = append(row, cellText(tc))
		}
		table.Cols = max(table.Cols, len(row))
		table.Content = append(table.Content, row)
	}

	return table
}

// cellText joins the text of every paragraph in a cell with single spaces
func cellText(tc *xmlquery.Node) string {
	paras := children(tc, "w:p")
	parts := make([]string, 0, len(paras))
	for _, p := range paras {
		var sb strings.Builder
		for _, r := range paragraphRuns(p) {
			sb.WriteString(runText(r))
		}
		parts = append(parts, sb.String())
	}
	return strings.Join(parts, " ")
}

func intAttr(n *xmlquery.Node, name string) *int {
	v := attr(n, name)
	if v == "" {
		return nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return nil
	}
	return &i
}

func emuToPoints(v string) float64 {
	emu, err := strconv.ParseFloat(v, 64)
	if err != nil || emu <= 0 {
		return 0
	}
	return emu / emuPerPoint
}

// vmlSize reads width/height from a VML style attribute such as
// "width:120pt;height:40pt". Only point and pixel units are understood.
func vmlSize(style string) (width, height float64) {
	for _, decl := range strings.Split(style, ";") {
		key, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		size := cssPoints(strings.TrimSpace(value))
		switch strings.TrimSpace(strings.ToLower(key)) {
		case "width":
			width = size
		case "height":
			height = size
		}
	}
	return width, height
}

func cssPoints(v string) float64 {
	scale := 1.0
	switch {
	case strings.HasSuffix(v, "pt"):
		v = strings.TrimSuffix(v, "pt")
	case strings.HasSuffix(v, "px"):
		v = strings.TrimSuffix(v, "px")
		scale = 0.75
	default:
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return f * scale
}

// docxArchive indexes the entries of an opened archive
type docxArchive struct {
	files  []*zip.File
	byName map[string]*zip.File
}

func newDocxArchive(zr *zip.Reader) *docxArchive {
	a := &docxArchive{files: zr.File, byName: make(map[string]*zip.File, len(zr.File))}
	for _, f := range zr.File {
		a.byName[f.Name] = f
	}
	return a
}

// read returns the bytes of an entry; ok is false when it does not exist
func (a *docxArchive) read(name string) ([]byte, bool, error) {
	f, ok := a.byName[name]
	if !ok {
		return nil, false, nil
	}
	rc, err := f.Open()
	if err != nil {
		return nil, true, err
	}
	defer func() { _ = rc.Close() }()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, true, err
	}
	return data, true, nil
}

// first returns the first entry, in archive order, named prefix*.xml
func (a *docxArchive) first(prefix string) (string, bool) {
	for _, f := range a.files {
		if strings.HasPrefix(f.Name, prefix) && strings.HasSuffix(f.Name, ".xml") {
			return f.Name, true
		}
	}
	return "", false
}
