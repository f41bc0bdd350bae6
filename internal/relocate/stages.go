package relocate

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/anclora/internal/core/domain"
)

// exact searches the target's full text for the literal referenced text.
// When the text occurs at more than one location (a repeated line of
// dialogue, say), the occurrence whose start offset is nearest to the
// anchor's original position wins; ties go to the earlier occurrence.
func (c *Cascade) exact(a *domain.Anchor, target *domain.Snapshot) *domain.RelocationResult {
	offsets := allIndexes(target.FullText, a.ReferencedText)
	if len(offsets) == 0 {
		return nil
	}

	best := offsets[0]
	for _, off := range offsets[1:] {
		if distance(off, a.CharStart) < distance(best, a.CharStart) {
			best = off
		}
	}

	end := best + len(a.ReferencedText)
	chapter, paragraph, err := target.Locate(best)
	if err != nil {
		return nil
	}

	return &domain.RelocationResult{
		Found:        true,
		NewCharStart: best,
		NewCharEnd:   end,
		NewChapter:   chapter,
		NewParagraph: paragraph,
		Method:       domain.MethodExact,
		Confidence:   1.0,
		TextChanged:  false,
		MatchedText:  a.ReferencedText,
	}
}

// structural looks up the anchor's original chapter/paragraph coordinate in
// the target and compares the referenced text against the whole candidate
// paragraph. Accepted when the similarity ratio reaches T1.
func (c *Cascade) structural(a *domain.Anchor, target *domain.Snapshot) *domain.RelocationResult {
	span, err := target.ParagraphAt(a.ChapterIndex, a.ParagraphIndex)
	if err != nil {
		return nil
	}

	paraText := target.TextAt(span.Start, span.End)
	if paraText == "" {
		return nil
	}

	// Hash equality short-circuits the similarity computation.
	ratio := 1.0
	if domain.HashText(paraText) != a.ContentHash {
		ratio = Similarity(a.ReferencedText, paraText)
	}
	if ratio < c.structuralThreshold {
		return nil
	}

	return &domain.RelocationResult{
		Found:        true,
		NewCharStart: span.Start,
		NewCharEnd:   span.End,
		NewChapter:   a.ChapterIndex,
		NewParagraph: a.ParagraphIndex,
		Method:       domain.MethodStructural,
		Confidence:   ratio,
		TextChanged:  ratio < 1.0,
		MatchedText:  paraText,
	}
}

// context builds a pattern from the trailing edge of the before-context and
// the leading edge of the after-context, allowing bounded arbitrary content
// between them, and compares the captured middle against the referenced
// text. The confidence is penalised because the match is looser than a
// structural hit.
func (c *Cascade) context(a *domain.Anchor, target *domain.Snapshot) *domain.RelocationResult {
	pre := tailChars(a.ContextBefore, c.contextEdge)
	post := headChars(a.ContextAfter, c.contextEdge)
	if pre == "" || post == "" {
		return nil
	}

	pattern, err := regexp.Compile(
		"(?s)" + regexp.QuoteMeta(pre) +
			"(.{0," + strconv.Itoa(c.contextGap) + "}?)" +
			regexp.QuoteMeta(post))
	if err != nil {
		return nil
	}

	m := pattern.FindStringSubmatchIndex(target.FullText)
	if m == nil {
		return nil
	}

	start, end := m[2], m[3]
	middle := target.FullText[start:end]
	ratio := Similarity(a.ReferencedText, middle)
	if ratio < c.contextThreshold {
		return nil
	}

	chapter, paragraph, err2 := target.Locate(start)
	if err2 != nil {
		return nil
	}

	return &domain.RelocationResult{
		Found:        true,
		NewCharStart: start,
		NewCharEnd:   end,
		NewChapter:   chapter,
		NewParagraph: paragraph,
		Method:       domain.MethodContext,
		Confidence:   ratio * contextPenalty,
		TextChanged:  middle != a.ReferencedText,
		MatchedText:  middle,
	}
}

// fuzzy slides a window of twice the referenced text's length across the
// whole document with a quarter-window stride and keeps the best-scoring
// window. This stage has the highest false-positive risk, so its confidence
// carries the heaviest penalty.
func (c *Cascade) fuzzy(a *domain.Anchor, target *domain.Snapshot) *domain.RelocationResult {
	text := target.FullText
	if text == "" {
		return nil
	}

	window := 2 * len(a.ReferencedText)
	if window > len(text) {
		window = len(text)
	}
	stride := window / 4
	if stride < 1 {
		stride = 1
	}

	bestRatio := 0.0
	bestStart := -1
	for start := 0; ; start += stride {
		if start+window > len(text) {
			start = len(text) - window // final window hugs the end
		}
		ratio := Similarity(a.ReferencedText, text[start:start+window])
		if ratio > bestRatio {
			bestRatio = ratio
			bestStart = start
		}
		if start+window >= len(text) {
			break
		}
	}

	if bestStart < 0 || bestRatio < c.structuralThreshold {
		return nil
	}

	matched := text[bestStart : bestStart+window]
	chapter, paragraph, err := target.Locate(bestStart)
	if err != nil {
		return nil
	}

	return &domain.RelocationResult{
		Found:        true,
		NewCharStart: bestStart,
		NewCharEnd:   bestStart + window,
		NewChapter:   chapter,
		NewParagraph: paragraph,
		Method:       domain.MethodFuzzy,
		Confidence:   bestRatio * fuzzyPenalty,
		TextChanged:  matched != a.ReferencedText,
		MatchedText:  matched,
	}
}

// allIndexes returns every start offset of sub within text.
func allIndexes(text, sub string) []int {
	if sub == "" {
		return nil
	}
	var offsets []int
	from := 0
	for {
		i := strings.Index(text[from:], sub)
		if i < 0 {
			return offsets
		}
		offsets = append(offsets, from+i)
		from += i + 1
	}
}

// distance is the absolute difference between two offsets.
func distance(a, b int) int {
	if a < b {
		return b - a
	}
	return a - b
}

// tailChars returns the last n runes of s. Cutting on a rune boundary keeps
// the result valid UTF-8 so it survives regexp.QuoteMeta.
func tailChars(s string, n int) string {
	i := len(s)
	for ; n > 0 && i > 0; n-- {
		_, size := utf8.DecodeLastRuneInString(s[:i])
		i -= size
	}
	return s[i:]
}

// headChars returns the first n runes of s.
func headChars(s string, n int) string {
	i := 0
	for ; n > 0 && i < len(s); n-- {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return s[:i]
}
