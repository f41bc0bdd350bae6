package domain

import (
	"fmt"
	"time"
)

// Snapshot is an immutable record of a document at one import event.
// Once created it is never mutated or deleted, so any relocation decision
// computed against it can be reproduced exactly later.
type Snapshot struct {
	// ProjectID identifies the owning project.
	ProjectID string

	// Version is the project-scoped monotonic version number, starting at 1.
	Version int

	// FullText is the complete document text at this import.
	FullText string

	// Index maps chapter index to the ordered paragraph spans of that
	// chapter, with absolute offsets into FullText.
	Index StructuralIndex

	// CreatedAt is when the snapshot was captured.
	CreatedAt time.Time
}

// StructuralIndex is the chapter/paragraph structure of a snapshot.
type StructuralIndex struct {
	// Chapters holds one entry per chapter, in document order.
	Chapters []ChapterSpans
}

// ChapterSpans is the ordered paragraph spans of one chapter.
type ChapterSpans struct {
	// Title is the chapter heading, may be empty.
	Title string

	// Paragraphs are absolute spans into the snapshot's FullText.
	Paragraphs []ParagraphSpan
}

// ParagraphSpan is one paragraph's absolute span in the snapshot text.
type ParagraphSpan struct {
	// Start is the offset of the paragraph's first character.
	Start int

	// End is the offset one past the paragraph's last character.
	End int
}

// Length returns the number of characters covered by the span.
func (p ParagraphSpan) Length() int { return p.End - p.Start }

// NewSnapshot builds an immutable snapshot from a parsed document.
// The version is assigned by the snapshot store, not here.
func NewSnapshot(projectID string, version int, doc *ParsedDocument) (*Snapshot, error) {
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("parsed document: %w", err)
	}

	idx := StructuralIndex{Chapters: make([]ChapterSpans, 0, len(doc.Chapters))}
	for _, ch := range doc.Chapters {
		spans := make([]ParagraphSpan, 0, len(ch.Paragraphs))
		for _, p := range ch.Paragraphs {
			spans = append(spans, ParagraphSpan{Start: p.Start, End: p.End})
		}
		idx.Chapters = append(idx.Chapters, ChapterSpans{Title: ch.Title, Paragraphs: spans})
	}

	return &Snapshot{
		ProjectID: projectID,
		Version:   version,
		FullText:  doc.FullText,
		Index:     idx,
		CreatedAt: time.Now(),
	}, nil
}

// ParagraphAt returns the span of the given structural coordinate.
// Returns ErrNotFound if the coordinate does not exist in this snapshot.
func (s *Snapshot) ParagraphAt(chapter, paragraph int) (ParagraphSpan, error) {
	if chapter < 0 || chapter >= len(s.Index.Chapters) {
		return ParagraphSpan{}, ErrNotFound
	}
	paras := s.Index.Chapters[chapter].Paragraphs
	if paragraph < 0 || paragraph >= len(paras) {
		return ParagraphSpan{}, ErrNotFound
	}
	return paras[paragraph], nil
}

// Locate maps an absolute offset in FullText to its structural coordinate.
// Offsets falling between paragraphs are attributed to the nearest preceding
// paragraph. Returns ErrNotFound only for an empty index.
func (s *Snapshot) Locate(offset int) (chapter, paragraph int, err error) {
	bestCh, bestPara := -1, -1
	for ci, ch := range s.Index.Chapters {
		for pi, span := range ch.Paragraphs {
			if span.Start <= offset && offset < span.End {
				return ci, pi, nil
			}
			if span.Start <= offset {
				bestCh, bestPara = ci, pi
			}
		}
	}
	if bestCh >= 0 {
		return bestCh, bestPara, nil
	}
	if len(s.Index.Chapters) > 0 && len(s.Index.Chapters[0].Paragraphs) > 0 {
		return 0, 0, nil
	}
	return 0, 0, ErrNotFound
}

// TextAt returns the text between two offsets. Out-of-range offsets are
// clamped to the document bounds.
func (s *Snapshot) TextAt(start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > len(s.FullText) {
		end = len(s.FullText)
	}
	if start >= end {
		return ""
	}
	return s.FullText[start:end]
}

// Validate checks the structural index against the full text.
// Returns ErrCorruptSnapshot when a paragraph span is out of bounds or
// paragraphs within a chapter are not in document order.
func (s *Snapshot) Validate() error {
	for ci, ch := range s.Index.Chapters {
		prevEnd := -1
		for pi, span := range ch.Paragraphs {
			if span.Start < 0 || span.End < span.Start || span.End > len(s.FullText) {
				return fmt.Errorf("%w: chapter %d paragraph %d span [%d,%d) outside text of length %d",
					ErrCorruptSnapshot, ci, pi, span.Start, span.End, len(s.FullText))
			}
			if span.Start < prevEnd {
				return fmt.Errorf("%w: chapter %d paragraph %d overlaps previous paragraph",
					ErrCorruptSnapshot, ci, pi)
			}
			prevEnd = span.End
		}
	}
	return nil
}
