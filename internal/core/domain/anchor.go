package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"unicode/utf8"
)

// ContextWindow is the number of runes of surrounding text captured on each
// side of an anchor's referenced span.
const ContextWindow = 50

// Anchor is an immutable reference to a span of text, produced at the moment
// a finding is created and bound to the snapshot version it was created
// against. Character offsets are only valid against the origin snapshot;
// the structural coordinates, literal text and context allow the span to be
// re-found in later snapshots via the relocation cascade.
type Anchor struct {
	// SnapshotVersion is the origin snapshot this anchor was created against.
	SnapshotVersion int

	// ChapterIndex is the chapter containing the span in the origin snapshot.
	ChapterIndex int

	// ParagraphIndex is the paragraph within the chapter.
	ParagraphIndex int

	// SentenceIndex is the sentence within the paragraph, -1 if unknown.
	SentenceIndex int

	// CharStart is the absolute start offset in the origin snapshot's text.
	CharStart int

	// CharEnd is the absolute end offset (exclusive).
	CharEnd int

	// ReferencedText is the literal text the anchor points to.
	// Invariant: equals FullText[CharStart:CharEnd] in the origin snapshot.
	ReferencedText string

	// ContextBefore is up to ContextWindow characters preceding the span.
	ContextBefore string

	// ContextAfter is up to ContextWindow characters following the span.
	ContextAfter string

	// ContentHash is the SHA-256 of ReferencedText, used as a fast
	// equality short-circuit before computing similarity.
	ContentHash string

	// ContextHash is the SHA-256 of ContextBefore + ContextAfter.
	ContextHash string
}

// NewAnchor derives an anchor for the span [start, end) of the given
// snapshot at the given structural coordinate. The referenced text and the
// bounded context are captured from the snapshot so that the invariant
// ReferencedText == FullText[start:end] holds by construction.
func NewAnchor(snap *Snapshot, chapter, paragraph, sentence, start, end int) (*Anchor, error) {
	if snap == nil {
		return nil, ErrInvalidInput
	}
	if start < 0 || end <= start || end > len(snap.FullText) {
		return nil, fmt.Errorf("%w: span [%d,%d) outside text of length %d",
			ErrInvalidAnchor, start, end, len(snap.FullText))
	}
	if _, err := snap.ParagraphAt(chapter, paragraph); err != nil {
		return nil, fmt.Errorf("%w: structural coordinate (%d,%d) not in snapshot",
			ErrInvalidAnchor, chapter, paragraph)
	}

	referenced := snap.FullText[start:end]
	before := lastRunes(snap.FullText[:start], ContextWindow)
	after := firstRunes(snap.FullText[end:], ContextWindow)

	return &Anchor{
		SnapshotVersion: snap.Version,
		ChapterIndex:    chapter,
		ParagraphIndex:  paragraph,
		SentenceIndex:   sentence,
		CharStart:       start,
		CharEnd:         end,
		ReferencedText:  referenced,
		ContextBefore:   before,
		ContextAfter:    after,
		ContentHash:     HashText(referenced),
		ContextHash:     HashText(before + after),
	}, nil
}

// Validate checks the anchor's internal consistency.
// Returns ErrInvalidAnchor for empty referenced text, inverted offsets or a
// content hash that no longer matches the referenced text.
func (a *Anchor) Validate() error {
	if a.ReferencedText == "" {
		return fmt.Errorf("%w: empty referenced text", ErrInvalidAnchor)
	}
	if a.CharStart < 0 || a.CharEnd <= a.CharStart {
		return fmt.Errorf("%w: span [%d,%d)", ErrInvalidAnchor, a.CharStart, a.CharEnd)
	}
	if a.ContentHash != "" && a.ContentHash != HashText(a.ReferencedText) {
		return fmt.Errorf("%w: content hash mismatch", ErrInvalidAnchor)
	}
	return nil
}

// lastRunes returns up to n runes from the end of s, cut on a rune boundary
// so multibyte text near the window edge is never truncated mid-rune.
func lastRunes(s string, n int) string {
	i := len(s)
	for ; n > 0 && i > 0; n-- {
		_, size := utf8.DecodeLastRuneInString(s[:i])
		i -= size
	}
	return s[i:]
}

// firstRunes returns up to n runes from the start of s.
func firstRunes(s string, n int) string {
	i := 0
	for ; n > 0 && i < len(s); n-- {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return s[:i]
}

// HashText returns the hex-encoded SHA-256 digest of the text.
func HashText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
