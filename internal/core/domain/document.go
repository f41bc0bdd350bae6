package domain

// ParsedDocument is the upstream parser's output: full text plus an ordered
// chapter/paragraph structure with per-paragraph offsets into the full text.
// It is required on every project creation and every re-import.
type ParsedDocument struct {
	// FullText is the complete document text. Paragraph offsets in the
	// structural index are absolute positions into this string.
	FullText string

	// Chapters is the ordered chapter list.
	Chapters []ParsedChapter
}

// ParsedChapter groups an ordered list of paragraphs.
type ParsedChapter struct {
	// Title is the chapter heading, may be empty.
	Title string

	// Paragraphs are the chapter's paragraphs in document order.
	Paragraphs []ParsedParagraph
}

// ParsedParagraph is one paragraph with its absolute span in the full text.
type ParsedParagraph struct {
	// Start is the byte offset of the paragraph's first character in FullText.
	Start int

	// End is the byte offset one past the paragraph's last character.
	End int
}

// Validate checks that every paragraph span lies within the full text and
// that spans are well formed. Returns ErrInvalidInput on the first violation.
func (d *ParsedDocument) Validate() error {
	for _, ch := range d.Chapters {
		for _, p := range ch.Paragraphs {
			if p.Start < 0 || p.End < p.Start || p.End > len(d.FullText) {
				return ErrInvalidInput
			}
		}
	}
	return nil
}
