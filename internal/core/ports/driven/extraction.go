package driven

import (
	"context"

	"github.com/custodia-labs/anclora/internal/core/domain"
)

// ExtractionPipeline is the upstream NLP pipeline that produces findings
// for a snapshot. It is an opaque black box to this engine: only the
// anchors of its findings are interpreted here.
type ExtractionPipeline interface {
	// Extract analyses the snapshot and returns finding candidates whose
	// anchors follow the structural-coordinate/content/context scheme.
	Extract(ctx context.Context, snapshot *domain.Snapshot) ([]domain.Finding, error)
}

// DocumentParser is the upstream parser that turns a raw file into
// structured text with per-paragraph offsets.
type DocumentParser interface {
	// Parse reads the file at path and returns its full text and
	// chapter/paragraph structural index.
	Parse(ctx context.Context, path string) (*domain.ParsedDocument, error)
}
