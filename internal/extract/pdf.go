package extract

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/conformia/internal/model"
)

const (
	// Fractions of page height, measured from the bottom edge
	headerThreshold = 0.12
	footerThreshold = 0.88

	// Vertical band height used to group text items into blocks
	blockBand = 10

	defaultPageWidth  = 612.0
	defaultPageHeight = 792.0
)

var (
	rendererOnce  sync.Once
	rendererReady atomic.Bool
)

// Init prepares the PDF backend. It must run once before any PDF is parsed;
// later calls are no-ops.
func Init() {
	rendererOnce.Do(func() {
		api.DisableConfigDir()
		rendererReady.Store(true)
	})
}

// PDFParser turns page-markup documents into the canonical model using a
// per-page layout heuristic
type PDFParser struct {
	logger  *slog.Logger
	workers int
}

// NewPDFParser creates a PDF parser extracting up to workers pages at once
func NewPDFParser(logger *slog.Logger, workers int) *PDFParser {
	if logger == nil {
		logger = slog.Default()
	}
	if workers < 1 {
		workers = 1
	}
	return &PDFParser{logger: logger, workers: workers}
}

// FileType returns the format this parser accepts
func (p *PDFParser) FileType() model.FileType {
	return model.FileTypePDF
}

// pageResult holds the blocks of one page by section
type pageResult struct {
	header []model.Paragraph
	body   []model.Paragraph
	footer []model.Paragraph
	images int
}

// Parse decodes a PDF held in memory. On cancellation no partial model is
// returned.
func (p *PDFParser) Parse(ctx context.Context, data []byte) (*model.DocumentStructure, error) {
	if !rendererReady.Load() {
		return nil, model.ErrRenderingUnavailable
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	conf := pdfmodel.NewDefaultConfiguration()
	pctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrUnreadableDocument, err)
	}
	reader, err := openText(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrUnreadableDocument, err)
	}

	dims, err := pctx.PageDims()
	if err != nil {
		p.logger.Debug("page dimensions unavailable, using defaults", "error", err)
		dims = nil
	}

	pageCount := pctx.PageCount
	pages := make([]pageResult, pageCount)

	// The text reader resolves objects lazily and is not safe for concurrent
	// use, so content retrieval is serialized and only layout runs in parallel.
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i := 0; i < pageCount; i++ {
		pageNr := i + 1
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			mu.Lock()
			content, err := readPageContent(reader.Page(pageNr))
			mu.Unlock()
			if err != nil {
				p.logger.Debug("page content incomplete", "page", pageNr, "error", err)
			}

			width, height := pageSize(dims, i)
			pages[i] = layoutPage(content, pageNr, width, height)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	structure := model.NewDocumentStructure(model.FileTypePDF)
	structure.PageCount = pageCount
	assemblePages(structure, pages)

	p.logger.Debug("parsed pdf",
		"pages", pageCount,
		"paragraphs", len(structure.Sections.Body.Paragraphs),
		"images", len(structure.Images()),
		"header", structure.Sections.Header != nil,
		"footer", structure.Sections.Footer != nil)

	return structure, nil
}

func openText(data []byte) (reader *pdf.Reader, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("open: %v", r)
		}
	}()
	return pdf.NewReader(bytes.NewReader(data), int64(len(data)))
}

func pageSize(dims []types.Dim, i int) (float64, float64) {
	width, height := defaultPageWidth, defaultPageHeight
	if i < len(dims) {
		if dims[i].Width > 0 {
			width = dims[i].Width
		}
		if dims[i].Height > 0 {
			height = dims[i].Height
		}
	}
	return width, height
}

// layoutPage groups the items of a page into blocks, top to bottom, and
// classifies each block by its bucket's share of the page height
func layoutPage(content pageContent, pageNr int, width, height float64) pageResult {
	buckets := make(map[int][]textItem)
	for _, it := range content.items {
		key := int(math.Floor(it.y/blockBand)) * blockBand
		buckets[key] = append(buckets[key], it)
	}

	keys := make([]int, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(keys)))

	result := pageResult{images: content.images}
	blockIndex := 0
	for _, key := range keys {
		items := buckets[key]
		// Buckets fill in emission order; the run takes the first item's font
		first := items[0]
		sort.SliceStable(items, func(a, b int) bool { return items[a].x < items[b].x })

		texts := make([]string, 0, len(items))
		for _, it := range items {
			texts = append(texts, it.text)
		}
		text := strings.TrimSpace(strings.Join(texts, " "))
		if text == "" {
			continue
		}

		para := model.Paragraph{
			Runs: []model.ParagraphRun{{
				Text:       text,
				FontSize:   first.fontSize,
				FontFamily: first.fontName,
			}},
			Alignment: detectAlignment(items, width),
			Index:     blockIndex,
			Page:      pageNr,
		}
		blockIndex++

		normalizedY := float64(key) / height
		switch {
		case normalizedY < headerThreshold:
			result.header = append(result.header, para)
		case normalizedY > footerThreshold:
			result.footer = append(result.footer, para)
		default:
			result.body = append(result.body, para)
		}
	}

	return result
}

// detectAlignment guesses alignment from how close a block's horizontal
// extents come to the page edges
func detectAlignment(items []textItem, pageWidth float64) model.Alignment {
	if len(items) == 0 {
		return ""
	}
	minX, maxX := math.Inf(1), math.Inf(-1)
	for _, it := range items {
		minX = math.Min(minX, it.x)
		maxX = math.Max(maxX, it.x+it.width)
	}

	nearLeft := minX < pageWidth*0.1
	nearRight := maxX > pageWidth*0.9
	switch {
	case nearLeft && nearRight:
		return model.AlignJustify
	case nearLeft:
		return model.AlignLeft
	case nearRight:
		return model.AlignRight
	default:
		return model.AlignCenter
	}
}

// assemblePages merges per-page results in page order. Image indices run
// across the whole document; the first image of page 1 is the header logo.
func assemblePages(structure *model.DocumentStructure, pages []pageResult) {
	body := structure.Sections.Body
	imageIndex := 0

	for i, page := range pages {
		pageNr := i + 1

		if len(page.header) > 0 {
			header := ensureSection(&structure.Sections.Header)
			header.Paragraphs = append(header.Paragraphs, page.header...)
		}
		if len(page.footer) > 0 {
			footer := ensureSection(&structure.Sections.Footer)
			footer.Paragraphs = append(footer.Paragraphs, page.footer...)
		}
		body.Paragraphs = append(body.Paragraphs, page.body...)

		for n := 0; n < page.images; n++ {
			img := model.ImageInfo{
				RelationID: fmt.Sprintf("page-%d-img-%d", pageNr, n),
				Location:   model.SectionBody,
				Index:      imageIndex,
				Name:       fmt.Sprintf("Imagem %d - Página %d", n+1, pageNr),
			}
			imageIndex++

			if pageNr == 1 && n == 0 {
				img.Location = model.SectionHeader
				img.IsMainLogo = true
				header := ensureSection(&structure.Sections.Header)
				header.Images = append(header.Images, img)
				continue
			}
			body.Images = append(body.Images, img)
		}
	}
}

func ensureSection(s **model.SectionContent) *model.SectionContent {
	if *s == nil {
		*s = model.NewSectionContent()
	}
	return *s
}
