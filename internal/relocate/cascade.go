package relocate

import (
	"fmt"

	"github.com/custodia-labs/anclora/internal/core/domain"
)

// DefaultStructuralThreshold is the minimum similarity ratio accepted by the
// structural and fuzzy stages (T1).
const DefaultStructuralThreshold = 0.85

// DefaultContextThreshold is the minimum similarity ratio accepted by the
// context stage (T2).
const DefaultContextThreshold = 0.70

// DefaultContextEdge is how many characters of each context side feed the
// context-stage search pattern.
const DefaultContextEdge = 30

// DefaultContextGap is the maximum amount of arbitrary content allowed
// between the two context fragments.
const DefaultContextGap = 500

// contextPenalty and fuzzyPenalty discount looser stages below their raw
// similarity ratio. Fuzzy carries the highest false-positive risk.
const (
	contextPenalty = 0.9
	fuzzyPenalty   = 0.8
)

// Cascade relocates anchors against target snapshots. The zero value is not
// usable; construct with New.
type Cascade struct {
	structuralThreshold float64
	contextThreshold    float64
	contextEdge         int
	contextGap          int
}

// Option configures a Cascade.
type Option func(*Cascade)

// WithStructuralThreshold sets T1, the acceptance ratio for the structural
// and fuzzy stages.
func WithStructuralThreshold(t float64) Option {
	return func(c *Cascade) {
		if t > 0 && t <= 1 {
			c.structuralThreshold = t
		}
	}
}

// WithContextThreshold sets T2, the acceptance ratio for the context stage.
func WithContextThreshold(t float64) Option {
	return func(c *Cascade) {
		if t > 0 && t <= 1 {
			c.contextThreshold = t
		}
	}
}

// WithContextEdge sets how many characters of each context side are used to
// build the context-stage pattern.
func WithContextEdge(n int) Option {
	return func(c *Cascade) {
		if n > 0 {
			c.contextEdge = n
		}
	}
}

// WithContextGap sets the maximum content length allowed between the two
// context fragments.
func WithContextGap(n int) Option {
	return func(c *Cascade) {
		if n > 0 {
			c.contextGap = n
		}
	}
}

// New creates a relocation cascade with the given options.
func New(opts ...Option) *Cascade {
	c := &Cascade{
		structuralThreshold: DefaultStructuralThreshold,
		contextThreshold:    DefaultContextThreshold,
		contextEdge:         DefaultContextEdge,
		contextGap:          DefaultContextGap,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// stage is one relocation strategy. A nil result means the stage did not
// find an acceptable match and the next stage should be tried.
type stage func(a *domain.Anchor, target *domain.Snapshot) *domain.RelocationResult

// Relocate attempts to re-find the anchor's text in the target snapshot.
// Stages run in strict order of decreasing precision; the first success
// wins. When no stage succeeds the result reports Found=false with
// MethodNone, which is the normal outcome for vanished text, not an error.
//
// An invalid anchor or a corrupt snapshot returns an error instead of a
// result: plausible-looking but wrong coordinates are never fabricated.
func (c *Cascade) Relocate(a *domain.Anchor, target *domain.Snapshot) (domain.RelocationResult, error) {
	if a == nil || target == nil {
		return domain.RelocationResult{}, domain.ErrInvalidInput
	}
	if err := a.Validate(); err != nil {
		return domain.RelocationResult{}, fmt.Errorf("relocate: %w", err)
	}
	if err := target.Validate(); err != nil {
		return domain.RelocationResult{}, fmt.Errorf("relocate: %w", err)
	}

	stages := []stage{c.exact, c.structural, c.context, c.fuzzy}
	for _, try := range stages {
		if r := try(a, target); r != nil {
			return *r, nil
		}
	}

	return domain.RelocationResult{Found: false, Method: domain.MethodNone}, nil
}

// Relocate runs the cascade with default thresholds.
func Relocate(a *domain.Anchor, target *domain.Snapshot) (domain.RelocationResult, error) {
	return New().Relocate(a, target)
}
