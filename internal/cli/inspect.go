package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/conformia/internal/model"
	"github.com/ppiankov/conformia/internal/pipeline"
)

var (
	inspectYAML    bool
	inspectTimeout time.Duration
)

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Print the canonical structure extracted from a document",
	Long: `Inspect parses one DOCX or PDF document and prints the canonical
structure the comparison works on: sections, paragraphs, runs, tables
and images.

Example:
  conformia inspect modelo.docx
  conformia inspect entrega.pdf --yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().BoolVar(&inspectYAML, "yaml", false, "print YAML instead of JSON")
	inspectCmd.Flags().DurationVar(&inspectTimeout, "timeout", time.Minute, "parse timeout")
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), inspectTimeout)
	defer cancel()

	p := pipeline.NewPipeline(cfg, slog.Default())
	doc, err := p.LoadDocument(ctx, args[0])
	if err != nil {
		return fmt.Errorf("inspect failed: %w", err)
	}

	if cfg.Output.Verbose {
		s := doc.Structure
		fmt.Fprintf(os.Stderr, "Document:   %s\n", doc.Name)
		fmt.Fprintf(os.Stderr, "Format:     %s\n", s.FileType)
		fmt.Fprintf(os.Stderr, "Paragraphs: %s\n", humanize.Comma(int64(countParagraphs(s))))
		fmt.Fprintf(os.Stderr, "Images:     %d\n", len(s.Images()))
		fmt.Fprintf(os.Stderr, "Cached:     %v\n\n", doc.Cached)
	}

	out := cmd.OutOrStdout()
	if inspectYAML {
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(doc.Structure); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(doc.Structure)
}

func countParagraphs(doc *model.DocumentStructure) int {
	n := 0
	for _, section := range model.Sections {
		if content := doc.Section(section); content != nil {
			n += len(content.Paragraphs)
		}
	}
	return n
}
