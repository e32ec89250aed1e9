// Package markdown extracts decision tables and Slim directives from
// Markdown documents. It knows nothing about Slim wire semantics or
// fixture classes: it produces an ordered, directive-bound table list
// that internal/compile turns into instructions.
package markdown

import "time"

// Import is an accumulated `[//]: # (import Path)` directive. Imports
// apply to every table in the file from the point they appear onward.
type Import struct {
	Path string
	Line int
}

// Directive is a parsed `[//]: # (...)` / `[//]: # "..."` comment.
// Body is everything after the kind token and before any `-- snooze
// until DATE` modifier.
type Directive struct {
	Kind     string
	Body     string
	SnoozeAt *time.Time
	Line     int
}

// Cell is one Markdown table cell: trimmed text plus the source line
// its first inline content started on.
type Cell struct {
	Text string
	Line int
}

// Table is a raw GFM table: header cells and body rows, still
// unclassified (no notion yet of which columns are setters,
// assertions, or comments).
type Table struct {
	Header []Cell
	Rows   [][]Cell
	Line   int
}

// BoundTable pairs a Table with the decisionTable Directive that
// claimed it during parsing.
type BoundTable struct {
	Directive Directive
	Table     Table
}

// Document is the full result of parsing one Markdown file: every
// accumulated import, every directive-bound table in document order,
// and any non-fatal warnings raised along the way (unknown directive
// kinds, orphan directives, tables with no pending directive).
type Document struct {
	Imports  []Import
	Tables   []BoundTable
	Warnings []string
}
