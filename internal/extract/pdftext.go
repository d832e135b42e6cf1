package extract

import (
	"fmt"
	"math"
	"strings"

	"github.com/ledongthuc/pdf"
)

// textItem is one horizontal stretch of glyphs shown on the same baseline
type textItem struct {
	text     string
	x        float64 // Baseline start
	y        float64
	width    float64
	fontSize float64
	fontName string // Base font without the subset prefix
}

// pageContent is what a page's content stream yields
type pageContent struct {
	items  []textItem
	images int // Image XObject draws and inline images
}

const (
	// Baseline drift tolerated inside one item, in points
	baselineTolerance = 0.5
	// Horizontal gap, as a fraction of font size, read as a word break
	wordGapRatio = 0.2
)

// readPageContent pulls positioned text and an image count from one page.
// The reader panics on malformed streams; that surfaces as an error and the
// affected part of the page stays empty.
func readPageContent(page pdf.Page) (content pageContent, err error) {
	if page.V.IsNull() {
		return pageContent{}, nil
	}

	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("page text: %v", r)
			}
		}()
		content.items = mergeGlyphs(page.Content().Text)
	}()

	images, imgErr := countImages(page)
	if imgErr != nil {
		if err == nil {
			err = imgErr
		}
		images = 0
	}
	content.images = images
	return content, err
}

// mergeGlyphs joins per-glyph text into items. A new item starts when the
// baseline moves, the pen jumps backwards, or the font changes.
func mergeGlyphs(glyphs []pdf.Text) []textItem {
	var (
		items []textItem
		cur   *textItem
		sb    strings.Builder
		end   float64
	)

	flush := func() {
		if cur == nil {
			return
		}
		cur.text = sb.String()
		cur.width = end - cur.x
		if strings.TrimSpace(cur.text) != "" {
			items = append(items, *cur)
		}
		cur = nil
		sb.Reset()
	}

	for _, g := range glyphs {
		if g.S == "\n" {
			flush()
			continue
		}

		if cur != nil {
			sameLine := math.Abs(g.Y-cur.y) <= baselineTolerance
			backwards := g.X < end-g.FontSize
			if !sameLine || backwards || g.Font != cur.fontName || g.FontSize != cur.fontSize {
				flush()
			} else if g.X-end > g.FontSize*wordGapRatio && !strings.HasSuffix(sb.String(), " ") && g.S != " " {
				sb.WriteByte(' ')
			}
		}

		if cur == nil {
			cur = &textItem{x: g.X, y: g.Y, fontSize: g.FontSize, fontName: g.Font}
			end = g.X
		}
		sb.WriteString(g.S)
		end = math.Max(end, g.X+g.W)
	}
	flush()

	return items
}

// countImages counts image XObject draws and inline images in the page's
// content streams. Form XObjects and other Do targets are ignored.
func countImages(page pdf.Page) (count int, err error) {
	contents := page.V.Key("Contents")
	if contents.IsNull() {
		return 0, nil
	}
	xobjects := page.Resources().Key("XObject")

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("page images: %v", r)
		}
	}()

	pdf.Interpret(contents, func(stk *pdf.Stack, op string) {
		args := make([]pdf.Value, stk.Len())
		for i := len(args) - 1; i >= 0; i-- {
			args[i] = stk.Pop()
		}
		switch op {
		case "BI":
			count++
		case "Do":
			if len(args) == 1 && xobjects.Key(args[0].Name()).Key("Subtype").Name() == "Image" {
				count++
			}
		}
	})
	return count, nil
}
