package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/conformia/internal/model"
	"github.com/ppiankov/conformia/internal/pipeline"
	"github.com/ppiankov/conformia/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
	batchFailOn  string
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <template> <list-file>",
	Short: "Compare many candidates against one template in parallel",
	Long: `Batch compares every candidate listed in a file against one template:
- Read candidate paths or URLs from the list file (one per line, # comments)
- Compare candidates in parallel with a configurable worker count
- Parse the template once and reuse it from the cache
- Write a JSON and a Markdown report per candidate

Example:
  conformia batch modelo.docx entregas.txt
  conformia batch modelo.pdf entregas.txt --concurrency 8 --output-dir ./reports
  conformia batch modelo.docx entregas.txt --fail-on critical`,
	Args: cobra.ExactArgs(2),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", model.DefaultConfig().Concurrency.Workers, "number of concurrent comparisons")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./conformia-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().StringVar(&batchFailOn, "fail-on", "", "exit non-zero when any candidate has an issue at or above this severity")
	batchCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")

	_ = viper.BindPFlag("concurrency.workers", batchCmd.Flags().Lookup("concurrency"))
}

func runBatch(cmd *cobra.Command, args []string) error {
	template, list := args[0], args[1]

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if noFooter {
		cfg.Output.IncludeFooter = false
	}

	threshold, err := parseThreshold(batchFailOn)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	workers := cfg.Concurrency.Workers

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Conformia Batch Comparison\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Template:     %s\n", template)
	fmt.Fprintf(os.Stderr, "  List file:    %s\n", list)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", workers)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	if cfg.LLM.Provider != "" {
		fmt.Fprintf(os.Stderr, "  LLM:          %s/%s (%.1f req/s)\n", cfg.LLM.Provider, cfg.LLM.Model, cfg.LLM.RequestsPerSecond)
	}
	fmt.Fprintf(os.Stderr, "\n")

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	p := pipeline.NewPipeline(cfg, slog.Default())
	processor := worker.NewBatchProcessor(p, workers)

	fmt.Fprintf(os.Stderr, "⚙️  Comparing candidates with %d workers...\n\n", workers)
	results, err := processor.ProcessFile(ctx, template, list)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	renderer := p.Renderer()
	succeeded, rejected, failed, gated := 0, 0, 0, 0
	used := make(map[string]int)

	for _, r := range results {
		if r.Error != nil {
			if pipeline.IsInputError(r.Error) {
				rejected++
				fmt.Fprintf(os.Stderr, "✗ %s: rejected: %v\n", r.Candidate, r.Error)
			} else {
				failed++
				fmt.Fprintf(os.Stderr, "✗ %s: %v\n", r.Candidate, r.Error)
			}
			continue
		}

		slug := uniqueSlug(sanitizeFilename(r.Candidate), used)
		jsonPath := filepath.Join(outputDir, slug+".json")
		mdPath := filepath.Join(outputDir, slug+".md")

		if err := renderer.RenderJSON(r.Result, jsonPath); err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write JSON: %v\n", r.Candidate, err)
			continue
		}
		if err := renderer.RenderMarkdown(r.Result, mdPath); err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write Markdown: %v\n", r.Candidate, err)
			continue
		}

		succeeded++
		if gate(r.Result, threshold) != nil {
			gated++
		}
		s := r.Result.Summary
		fmt.Fprintf(os.Stderr, "✓ %s (%d critical, %d major, %d minor, %d info)\n", r.Candidate, s.Critical, s.Major, s.Minor, s.Info)
	}

	renderer.RenderBatchSummary(cmd.OutOrStdout(), results)

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d candidates\n", len(results))
	fmt.Fprintf(os.Stderr, "  Compared:  %d\n", succeeded)
	fmt.Fprintf(os.Stderr, "  Rejected:  %d\n", rejected)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failed)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "\n")

	if gated > 0 {
		return fmt.Errorf("%w: %d of %d candidates have issues at or above %s", ErrCheckFailed, gated, succeeded, threshold)
	}
	return nil
}

// sanitizeFilename turns a candidate path or URL into a safe report name
func sanitizeFilename(s string) string {
	s = strings.TrimRight(s, "/")
	if i := strings.LastIndexAny(s, `/\`); i >= 0 {
		s = s[i+1:]
	}
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimSuffix(s, filepath.Ext(s))

	replacer := strings.NewReplacer(
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "-",
	)
	s = replacer.Replace(s)

	// Limit length
	if r := []rune(s); len(r) > 100 {
		s = string(r[:100])
	}
	if s == "" || s == "." || s == ".." {
		s = "report"
	}

	return s
}

// uniqueSlug suffixes repeated names so reports never overwrite each other
func uniqueSlug(slug string, used map[string]int) string {
	n := used[slug]
	used[slug] = n + 1
	if n == 0 {
		return slug
	}
	return fmt.Sprintf("%s-%d", slug, n+1)
}
