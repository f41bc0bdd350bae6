package domain

// RelocationMethod identifies which cascade stage produced a result.
type RelocationMethod string

const (
	// MethodExact is a literal full-text match.
	MethodExact RelocationMethod = "exact"

	// MethodStructural is a same-coordinate paragraph similarity match.
	MethodStructural RelocationMethod = "structural"

	// MethodContext is a surrounding-context pattern match.
	MethodContext RelocationMethod = "context"

	// MethodFuzzy is a windowed full-document similarity scan.
	MethodFuzzy RelocationMethod = "fuzzy"

	// MethodNone means no stage succeeded.
	MethodNone RelocationMethod = "none"
)

// RelocationResult is the transient outcome of attempting to re-find one
// anchor in one target snapshot. It is never persisted independently.
type RelocationResult struct {
	// Found reports whether any cascade stage succeeded.
	Found bool

	// NewCharStart is the relocated start offset in the target snapshot.
	NewCharStart int

	// NewCharEnd is the relocated end offset (exclusive).
	NewCharEnd int

	// NewChapter is the chapter index of the relocated span.
	NewChapter int

	// NewParagraph is the paragraph index within the chapter.
	NewParagraph int

	// Method is the cascade stage that produced the match.
	Method RelocationMethod

	// Confidence is in [0,1]. Exact matches are 1.0; looser stages are
	// penalised below their raw similarity ratio.
	Confidence float64

	// TextChanged is true whenever the matched content differs from the
	// anchor's original referenced text.
	TextChanged bool

	// MatchedText is the content found at the relocated span.
	MatchedText string
}
