// Command conformia checks DOCX and PDF documents against a template
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/ppiankov/conformia/internal/cli"
	"github.com/ppiankov/conformia/internal/extract"
)

func main() {
	extract.Init()

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, cli.ErrCheckFailed) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
