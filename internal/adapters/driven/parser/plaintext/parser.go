// Package plaintext implements the DocumentParser port for plain-text
// manuscripts.
//
// Chapters are introduced by lines starting with "#"; blank lines separate
// paragraphs. The canonical full text is rebuilt by joining paragraphs with
// "\n\n", so the paragraph offsets in the structural index are stable under
// re-parsing regardless of the source file's blank-line count or line
// endings. Heading lines become chapter titles and are not part of the text.
package plaintext

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/custodia-labs/anclora/internal/core/domain"
	"github.com/custodia-labs/anclora/internal/core/ports/driven"
)

// Ensure Parser implements the interface.
var _ driven.DocumentParser = (*Parser)(nil)

// Parser parses plain-text manuscripts into structured documents.
type Parser struct{}

// New creates a plain-text parser.
func New() *Parser {
	return &Parser{}
}

// Parse reads the file at path and returns its full text and structural index.
func (p *Parser) Parse(_ context.Context, path string) (*domain.ParsedDocument, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading document %s: %w", path, err)
	}
	return ParseText(string(raw))
}

// ParseText parses manuscript content that is already in memory.
func ParseText(content string) (*domain.ParsedDocument, error) {
	content = strings.ReplaceAll(content, "\r\n", "\n")

	doc := &domain.ParsedDocument{}
	var current *domain.ParsedChapter
	var text strings.Builder

	openChapter := func(title string) {
		doc.Chapters = append(doc.Chapters, domain.ParsedChapter{Title: title})
		current = &doc.Chapters[len(doc.Chapters)-1]
	}

	for _, block := range splitBlocks(content) {
		if title, ok := headingTitle(block); ok {
			openChapter(title)
			continue
		}
		if current == nil {
			// Text before any heading belongs to an untitled chapter.
			openChapter("")
		}

		if text.Len() > 0 {
			text.WriteString("\n\n")
		}
		start := text.Len()
		text.WriteString(block)
		current.Paragraphs = append(current.Paragraphs, domain.ParsedParagraph{
			Start: start,
			End:   text.Len(),
		})
	}

	doc.FullText = text.String()
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

// splitBlocks cuts the content at runs of blank lines, trimming each block's
// surrounding whitespace and dropping empty blocks.
func splitBlocks(content string) []string {
	var blocks []string
	for _, raw := range strings.Split(content, "\n\n") {
		block := strings.TrimSpace(raw)
		if block == "" {
			continue
		}
		// A heading glued to its first paragraph by a single newline still
		// starts a chapter: split it off.
		if strings.HasPrefix(block, "#") {
			if nl := strings.Index(block, "\n"); nl >= 0 {
				blocks = append(blocks, block[:nl], strings.TrimSpace(block[nl+1:]))
				continue
			}
		}
		blocks = append(blocks, block)
	}
	return blocks
}

// headingTitle reports whether the block is a chapter heading and returns its
// title with the leading hashes stripped.
func headingTitle(block string) (string, bool) {
	if !strings.HasPrefix(block, "#") || strings.Contains(block, "\n") {
		return "", false
	}
	return strings.TrimSpace(strings.TrimLeft(block, "#")), true
}
