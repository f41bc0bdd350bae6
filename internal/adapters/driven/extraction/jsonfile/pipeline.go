// Package jsonfile implements the ExtractionPipeline port over a findings
// file produced by an external analysis pipeline.
//
// The engine treats extraction as a black box: this adapter only turns the
// pipeline's raw spans into anchors. Each finding names a structural
// coordinate and a character span in the analysed snapshot; the referenced
// text, context windows and hashes are derived from the snapshot itself, so
// a finding whose span does not match the snapshot is rejected rather than
// anchored to the wrong words.
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/custodia-labs/anclora/internal/core/domain"
	"github.com/custodia-labs/anclora/internal/core/ports/driven"
)

// Ensure Pipeline implements the interface.
var _ driven.ExtractionPipeline = (*Pipeline)(nil)

// rawFinding is the on-disk shape of one pipeline finding.
type rawFinding struct {
	Description string `json:"description"`
	Severity    string `json:"severity"`
	Chapter     int    `json:"chapter"`
	Paragraph   int    `json:"paragraph"`
	Sentence    int    `json:"sentence"`
	CharStart   int    `json:"char_start"`
	CharEnd     int    `json:"char_end"`
}

// Pipeline loads findings from a JSON file.
type Pipeline struct {
	path string
}

// New creates a pipeline reading the findings file at path.
func New(path string) *Pipeline {
	return &Pipeline{path: path}
}

// Extract reads the findings file and anchors each finding in the snapshot.
func (p *Pipeline) Extract(_ context.Context, snapshot *domain.Snapshot) ([]domain.Finding, error) {
	if snapshot == nil {
		return nil, domain.ErrInvalidInput
	}

	raw, err := os.ReadFile(p.path)
	if err != nil {
		return nil, fmt.Errorf("reading findings %s: %w", p.path, err)
	}

	var entries []rawFinding
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("decoding findings %s: %w", p.path, err)
	}

	findings := make([]domain.Finding, 0, len(entries))
	for i, entry := range entries {
		anchor, err := domain.NewAnchor(snapshot,
			entry.Chapter, entry.Paragraph, entry.Sentence, entry.CharStart, entry.CharEnd)
		if err != nil {
			return nil, fmt.Errorf("finding %d: %w", i, err)
		}
		findings = append(findings, domain.Finding{
			Description: entry.Description,
			Severity:    entry.Severity,
			Anchor:      *anchor,
		})
	}
	return findings, nil
}
