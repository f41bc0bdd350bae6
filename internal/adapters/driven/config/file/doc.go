// Package file provides a TOML file-based implementation of the ConfigStore port.
//
// Configuration lives at ~/.anclora/config.toml by default. Nested tables are
// flattened to dot-notation keys on load, so the relocation thresholds in
//
//	[relocation]
//	structural_threshold = 0.85
//	context_threshold = 0.70
//
// are read as "relocation.structural_threshold" and
// "relocation.context_threshold".
package file
