// Package pipeline loads documents from disk or the network, compares them
// and renders the results.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/ppiankov/conformia/internal/cache"
	"github.com/ppiankov/conformia/internal/compare"
	"github.com/ppiankov/conformia/internal/extract"
	"github.com/ppiankov/conformia/internal/llm"
	"github.com/ppiankov/conformia/internal/model"
	"github.com/ppiankov/conformia/internal/util"
	"github.com/ppiankov/conformia/internal/worker"
)

// Pipeline orchestrates loading, parsing, comparison and narration
type Pipeline struct {
	fetcher    *Fetcher
	docs       *cache.DocumentCache
	parses     singleflight.Group
	renderer   *Renderer
	summarizer *llm.Summarizer // Optional LLM summarizer (nil if disabled)
	limiter    *worker.Limiter
	config     *model.Config
	logger     *slog.Logger
}

// NewPipeline creates a new pipeline with the given configuration
func NewPipeline(cfg *model.Config, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}

	var summarizer *llm.Summarizer
	if cfg.LLM.Provider != "" {
		s, err := llm.NewSummarizer(llm.ConfigFromModel(cfg.LLM))
		if err != nil {
			logger.Warn("Failed to initialize LLM provider", "provider", cfg.LLM.Provider, "error", err)
		} else {
			summarizer = s
		}
	}

	return &Pipeline{
		fetcher:    NewFetcher(cfg.HTTP, cfg.Limits.MaxFileSize),
		docs:       cache.NewDocumentCache(cache.New(cfg.Cache), cfg.Cache.DiskTTL),
		renderer:   NewRenderer(cfg.Output.IncludeFooter),
		summarizer: summarizer,
		limiter:    worker.NewLimiter(cfg.LLM.RequestsPerSecond, cfg.LLM.BurstSize),
		config:     cfg,
		logger:     logger,
	}
}

// Document is a parsed input
type Document struct {
	Name      string
	Structure *model.DocumentStructure
	Cached    bool
}

// LoadDocument reads, detects and parses a local path or http(s) URL.
// Parsed models are cached by format and content digest.
func (p *Pipeline) LoadDocument(ctx context.Context, source string) (*Document, error) {
	name, mediaType, data, err := p.read(ctx, source)
	if err != nil {
		return nil, err
	}

	fileType, err := extract.Detect(name, mediaType)
	if err != nil {
		return nil, err
	}

	key := cache.Key(fileType, data)
	if doc, ok := p.docs.Get(key); ok {
		p.logger.Debug("Parse cache hit", "document", name, "key", key)
		return &Document{Name: name, Structure: doc, Cached: true}, nil
	}

	// Concurrent loads of identical bytes share one parse
	v, err, shared := p.parses.Do(key, func() (any, error) {
		parser, err := extract.NewParser(fileType, p.logger, p.config.Concurrency.PageWorkers)
		if err != nil {
			return nil, err
		}

		start := time.Now()
		doc, err := parser.Parse(ctx, data)
		if err != nil {
			return nil, err
		}
		p.logger.Debug("Parsed document", "document", name, "type", fileType, "elapsed", time.Since(start))

		if err := p.docs.Put(key, doc); err != nil {
			p.logger.Warn("Failed to cache parsed document", "document", name, "error", err)
		}
		return doc, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}

	doc := v.(*model.DocumentStructure)
	if shared {
		// Each caller owns its model
		if doc, err = cache.Clone(doc); err != nil {
			return nil, fmt.Errorf("copy %s: %w", name, err)
		}
	}
	return &Document{Name: name, Structure: doc}, nil
}

// read returns the display name, media type (remote only) and bytes of source
func (p *Pipeline) read(ctx context.Context, source string) (string, string, []byte, error) {
	if IsRemote(source) {
		result, err := p.fetcher.FetchWithRetry(ctx, source)
		if err != nil {
			return "", "", nil, fmt.Errorf("fetch %s: %w", source, err)
		}
		return result.Name, result.MediaType, result.Data, nil
	}

	name := filepath.Base(source)

	// Reject unknown formats and oversized files before reading
	if _, err := extract.Detect(name, ""); err != nil {
		return "", "", nil, err
	}

	info, err := os.Stat(source)
	if err != nil {
		return "", "", nil, fmt.Errorf("stat %s: %w", source, err)
	}
	if err := extract.CheckSize(name, info.Size(), p.config.Limits.MaxFileSize); err != nil {
		return "", "", nil, err
	}

	data, err := os.ReadFile(source)
	if err != nil {
		return "", "", nil, fmt.Errorf("read %s: %w", source, err)
	}
	return name, "", data, nil
}

// CompareFiles parses template and candidate concurrently and compares them
func (p *Pipeline) CompareFiles(ctx context.Context, templatePath, candidatePath string) (*model.CompareResult, error) {
	var template, candidate *Document

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		doc, err := p.LoadDocument(gctx, templatePath)
		if err != nil {
			return fmt.Errorf("template: %w", err)
		}
		template = doc
		return nil
	})
	g.Go(func() error {
		doc, err := p.LoadDocument(gctx, candidatePath)
		if err != nil {
			return fmt.Errorf("candidate: %w", err)
		}
		candidate = doc
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result, err := p.CompareDocuments(template, candidate)
	if err != nil {
		return nil, err
	}

	p.narrate(ctx, result)

	return result, nil
}

// CompareDocuments runs the diff engine over two loaded documents
func (p *Pipeline) CompareDocuments(template, candidate *Document) (*model.CompareResult, error) {
	if template.Structure.FileType != candidate.Structure.FileType {
		return nil, fmt.Errorf("%w: template is %s, candidate is %s", model.ErrFormatMismatch,
			template.Structure.FileType, candidate.Structure.FileType)
	}

	outcome := compare.Compare(template.Structure, candidate.Structure, p.config.Options)
	p.logger.Debug("Compared documents",
		"template", template.Name, "candidate", candidate.Name, "issues", len(outcome.Issues))

	return &model.CompareResult{
		Summary: outcome.Summary,
		Issues:  outcome.Issues,
		Metadata: model.ResultMetadata{
			TemplateName:  template.Name,
			CandidateName: candidate.Name,
			FileType:      template.Structure.FileType,
			ParsedAt:      time.Now().UTC(),
			Options:       p.config.Options,
		},
	}, nil
}

// narrate attaches the optional LLM narrative (AFTER comparison, never
// affects issues). Calls share one rate limit per provider.
func (p *Pipeline) narrate(ctx context.Context, result *model.CompareResult) {
	if !p.summarizer.IsEnabled() {
		return
	}

	if err := p.limiter.Wait(ctx, p.summarizer.ProviderName()); err != nil {
		p.logger.Warn("LLM narrative skipped", "error", err)
		return
	}

	narrative, err := p.summarizer.GenerateSummary(ctx, *result)
	if err != nil {
		p.logger.Warn("LLM summary generation failed", "error", err)
		return
	}
	result.Narrative = narrative
}

// RenderReport renders the result to the requested outputs and prints the
// summary to stdout. Progress lines go to stderr when verbose.
func (p *Pipeline) RenderReport(result *model.CompareResult, jsonPath, mdPath string, filter model.IssueFilter, verbose bool) error {
	if jsonPath != "" {
		if err := p.renderer.RenderJSON(result, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote JSON: %s\n", jsonPath)
		}
	}

	if mdPath != "" {
		if err := p.renderer.RenderMarkdown(result, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote Markdown: %s\n", mdPath)
		}
	}

	if result.Narrative != nil && result.Narrative.Enabled && mdPath != "" {
		llmPath := strings.TrimSuffix(mdPath, ".md") + ".llm.md"
		if err := p.renderer.RenderLLMMarkdown(llm.RenderSeparateMarkdown(result.Narrative), llmPath); err != nil {
			p.logger.Warn("Failed to write LLM summary", "path", llmPath, "error", err)
		} else if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote LLM summary: %s\n", llmPath)
		}
	}

	p.renderer.RenderSummary(os.Stdout, result, filter)

	return nil
}

// Renderer exposes the pipeline's renderer for batch output
func (p *Pipeline) Renderer() *Renderer {
	return p.renderer
}

// IsInputError reports whether err stems from the inputs rather than the
// environment
func IsInputError(err error) bool {
	for _, target := range []error{
		model.ErrUnsupportedFileType,
		model.ErrFileTooLarge,
		model.ErrMalformedArchive,
		model.ErrInvalidStructure,
		model.ErrUnreadableDocument,
		model.ErrFormatMismatch,
		util.ErrDisallowed,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
