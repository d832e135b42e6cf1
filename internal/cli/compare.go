package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/conformia/internal/model"
	"github.com/ppiankov/conformia/internal/pipeline"
)

// ErrCheckFailed is returned when --fail-on finds an issue at or above the
// threshold. main maps it to a distinct exit status.
var ErrCheckFailed = errors.New("conformance check failed")

var (
	outJSON        string
	outMD          string
	compareTimeout time.Duration
	failOn         string
	showSeverities []string
	showCategories []string
	showSearch     string
	noFooter       bool
)

// compareCmd represents the compare command
var compareCmd = &cobra.Command{
	Use:   "compare <template> <candidate>",
	Short: "Compare a candidate document against a template",
	Long: `Compare parses both documents (DOCX or PDF, local paths or http(s) URLs),
walks their structure and reports every deviation of the candidate from
the template.

Both documents must have the same format.

Example:
  conformia compare modelo.docx entrega.docx
  conformia compare modelo.pdf entrega.pdf --json report.json --md report.md
  conformia compare modelo.docx entrega.docx --rigor strict --fail-on major
  conformia compare modelo.docx entrega.docx --severity critical,major --category text`,
	Args: cobra.ExactArgs(2),
	RunE: runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)

	// Output flags
	compareCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path (optional)")
	compareCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	compareCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
	compareCmd.Flags().DurationVar(&compareTimeout, "timeout", 2*time.Minute, "overall comparison timeout")

	// Gating and display
	compareCmd.Flags().StringVar(&failOn, "fail-on", "", "exit non-zero when an issue at or above this severity exists (critical, major, minor, info)")
	compareCmd.Flags().StringSliceVar(&showSeverities, "severity", nil, "only display these severities")
	compareCmd.Flags().StringSliceVar(&showCategories, "category", nil, "only display these categories")
	compareCmd.Flags().StringVar(&showSearch, "search", "", "only display issues whose message or hint contains this text")
}

func runCompare(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if noFooter {
		cfg.Output.IncludeFooter = false
	}

	threshold, err := parseThreshold(failOn)
	if err != nil {
		return err
	}
	filter, err := parseFilter(showSeverities, showCategories, showSearch)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), compareTimeout)
	defer cancel()

	if cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "Template:  %s\n", args[0])
		fmt.Fprintf(os.Stderr, "Candidate: %s\n", args[1])
		fmt.Fprintf(os.Stderr, "Rigor:     %s\n", cfg.Options.RigorLevel)
		fmt.Fprintf(os.Stderr, "Cache:     %v\n", cfg.Cache.Enabled)
		fmt.Fprintln(os.Stderr)
	}

	p := pipeline.NewPipeline(cfg, slog.Default())

	result, err := p.CompareFiles(ctx, args[0], args[1])
	if err != nil {
		return fmt.Errorf("compare failed: %w", err)
	}

	if cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "✓ Found %d issues\n", len(result.Issues))
		if result.Narrative != nil && result.Narrative.Enabled {
			fmt.Fprintf(os.Stderr, "✓ Generated LLM summary using %s/%s\n", result.Narrative.Provider, result.Narrative.Model)
		}
	}

	if err := p.RenderReport(result, outJSON, outMD, filter, cfg.Output.Verbose); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	return gate(result, threshold)
}

// parseThreshold validates --fail-on; "" disables gating
func parseThreshold(name string) (model.Severity, error) {
	if name == "" {
		return "", nil
	}
	sev, ok := model.ParseSeverity(name)
	if !ok {
		return "", fmt.Errorf("invalid --fail-on severity %q (expected critical, major, minor or info)", name)
	}
	return sev, nil
}

func parseFilter(severities, categories []string, search string) (model.IssueFilter, error) {
	filter := model.IssueFilter{Search: search}
	for _, name := range severities {
		sev, ok := model.ParseSeverity(name)
		if !ok {
			return filter, fmt.Errorf("invalid severity %q", name)
		}
		filter.Severities = append(filter.Severities, sev)
	}
	for _, name := range categories {
		cat, ok := model.ParseCategory(name)
		if !ok {
			return filter, fmt.Errorf("invalid category %q", name)
		}
		filter.Categories = append(filter.Categories, cat)
	}
	return filter, nil
}

// gate returns ErrCheckFailed when result has an issue at or above threshold
func gate(result *model.CompareResult, threshold model.Severity) error {
	if threshold == "" || !result.Failed(threshold) {
		return nil
	}
	count := 0
	for _, sev := range model.Severities {
		if sev.AtLeast(threshold) {
			count += result.Summary.Count(sev)
		}
	}
	return fmt.Errorf("%w: %d issues at or above %s", ErrCheckFailed, count, threshold)
}
