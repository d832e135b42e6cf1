// Package textdiff computes character-level edit scripts between paragraph
// texts and decides whether a difference is significant.
package textdiff

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/ppiankov/conformia/internal/model"
	"github.com/ppiankov/conformia/internal/textnorm"
)

// ChunkType classifies one piece of an edit script
type ChunkType string

const (
	ChunkEqual  ChunkType = "equal"
	ChunkDelete ChunkType = "delete"
	ChunkInsert ChunkType = "insert"
)

// Chunk is one piece of an edit script
type Chunk struct {
	Text string    `json:"text"`
	Type ChunkType `json:"type"`
}

// Compute normalizes both strings and returns a semantically cleaned edit
// script turning template into candidate.
func Compute(template, candidate string, opts model.CompareOptions) []Chunk {
	a := textnorm.Normalize(template, opts)
	b := textnorm.Normalize(candidate, opts)

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	chunks := make([]Chunk, 0, len(diffs))
	for _, d := range diffs {
		chunks = append(chunks, Chunk{Text: d.Text, Type: chunkType(d.Type)})
	}
	return chunks
}

func chunkType(op diffmatchpatch.Operation) ChunkType {
	switch op {
	case diffmatchpatch.DiffDelete:
		return ChunkDelete
	case diffmatchpatch.DiffInsert:
		return ChunkInsert
	default:
		return ChunkEqual
	}
}

// HasSignificantDiff reports whether two paragraphs differ in a way that
// survives normalization and is not whitespace only.
func HasSignificantDiff(template, candidate model.Paragraph, opts model.CompareOptions) bool {
	a := textnorm.ParagraphText(template, opts)
	b := textnorm.ParagraphText(candidate, opts)
	if a == b {
		return false
	}

	for _, chunk := range Compute(a, b, opts) {
		if chunk.Type != ChunkEqual && strings.TrimSpace(chunk.Text) != "" {
			return true
		}
	}
	return false
}
