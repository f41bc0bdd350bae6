// Package relocate implements the anchor relocation cascade.
//
// Given an anchor and a target snapshot, Relocate tries four strategies of
// decreasing precision and stops at the first success: an exact literal
// match, a structural match at the anchor's original chapter/paragraph
// coordinate, a context match built from the anchor's surrounding text, and
// a fuzzy windowed scan of the whole document.
//
// Each stage is an independent function composed via ordered short-circuit
// evaluation, so the heuristics stay unit-testable in isolation. Relocation
// is deterministic and pure with respect to its two inputs: no side effects,
// and the same anchor/snapshot pair always yields the same result.
package relocate
