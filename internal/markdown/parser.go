package markdown

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/temoc-project/temoc/internal/domain"
)

// SupportedExtensions mirrors the teacher parser's registry contract
// (internal/parser.Parser), kept as a function for symmetry even though
// this package exposes a single free function rather than a registry —
// temoc only ever reads Markdown, so a pluggable-format abstraction
// like the teacher's ParserRegistry has nothing else to register.
func SupportedExtensions() []string {
	return []string{".md", ".markdown"}
}

// Parse reads one Markdown file's content and returns its Document:
// accumulated imports and directive-bound tables in source order.
func Parse(filename string, content []byte) (*Document, error) {
	directives := scanDirectives(content)
	tables, err := parseTables(content)
	if err != nil {
		return nil, domain.NewError(domain.KindParse, "markdown", filename, 0, "failed walking markdown AST", err)
	}

	events := mergeEvents(directives, tables)

	doc := &Document{}
	var pending *Directive
	for _, ev := range events {
		switch {
		case ev.directive != nil:
			bindDirective(doc, &pending, filename, *ev.directive)
		case ev.table != nil:
			bindTable(doc, &pending, filename, *ev.table)
		}
	}
	if pending != nil {
		doc.Warnings = append(doc.Warnings, orphanWarning(filename, *pending))
	}
	return doc, nil
}

type event struct {
	line      int
	directive *Directive
	table     *Table
}

func mergeEvents(directives []Directive, tables []Table) []event {
	events := make([]event, 0, len(directives)+len(tables))
	for i := range directives {
		events = append(events, event{line: directives[i].Line, directive: &directives[i]})
	}
	for i := range tables {
		events = append(events, event{line: tables[i].Line, table: &tables[i]})
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].line < events[j].line })
	return events
}

func bindDirective(doc *Document, pending **Directive, filename string, d Directive) {
	switch d.Kind {
	case "import":
		doc.Imports = append(doc.Imports, Import{Path: d.Body, Line: d.Line})
	case "decisionTable":
		if *pending != nil {
			doc.Warnings = append(doc.Warnings, orphanWarning(filename, **pending))
		}
		copied := d
		*pending = &copied
	default:
		doc.Warnings = append(doc.Warnings, fmt.Sprintf("%s:%d: unknown directive kind %q, dropped", filename, d.Line, d.Kind))
	}
}

func bindTable(doc *Document, pending **Directive, filename string, t Table) {
	if *pending == nil {
		doc.Warnings = append(doc.Warnings, fmt.Sprintf("%s:%d: table has no pending decisionTable directive, ignored", filename, t.Line))
		return
	}
	doc.Tables = append(doc.Tables, BoundTable{Directive: **pending, Table: t})
	*pending = nil
}

func orphanWarning(filename string, d Directive) string {
	return fmt.Sprintf("%s:%d: decisionTable directive %q never matched by a following table", filename, d.Line, d.Body)
}

// parseTables walks the goldmark AST (with the GFM table extension
// enabled) collecting every table in document order, header and body
// rows extracted cell by cell.
func parseTables(content []byte) ([]Table, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	reader := text.NewReader(content)
	root := md.Parser().Parse(reader)

	var tables []Table
	err := ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		table, ok := n.(*extast.Table)
		if !ok {
			return ast.WalkContinue, nil
		}
		tables = append(tables, extractTable(table, content))
		return ast.WalkSkipChildren, nil
	})
	if err != nil {
		return nil, err
	}
	return tables, nil
}

func extractTable(table *extast.Table, content []byte) Table {
	var t Table
	for child := table.FirstChild(); child != nil; child = child.NextSibling() {
		switch node := child.(type) {
		case *extast.TableHeader:
			t.Header = extractRow(node, content)
			if t.Line == 0 {
				t.Line = firstLine(node, content)
			}
		case *extast.TableRow:
			t.Rows = append(t.Rows, extractRow(node, content))
			if t.Line == 0 {
				t.Line = firstLine(node, content)
			}
		}
	}
	return t
}

func extractRow(row ast.Node, content []byte) []Cell {
	var cells []Cell
	for child := row.FirstChild(); child != nil; child = child.NextSibling() {
		cell, ok := child.(*extast.TableCell)
		if !ok {
			continue
		}
		cells = append(cells, Cell{
			Text: strings.TrimSpace(cellText(cell, content)),
			Line: firstLine(cell, content),
		})
	}
	return cells
}

// cellText flattens a table cell's inline content to plain text,
// generalizing the teacher's extractText (internal/parser/markdown.go)
// which only handles *ast.Text; decision table cells may also carry
// emphasis, links, or inline code, all of which reduce to their own
// text runs.
func cellText(n ast.Node, content []byte) string {
	var buf bytes.Buffer
	var walk func(ast.Node)
	walk = func(n ast.Node) {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			if t, ok := c.(*ast.Text); ok {
				buf.Write(t.Segment.Value(content))
				continue
			}
			walk(c)
		}
	}
	walk(n)
	return buf.String()
}

// firstLine finds the 1-based source line of the first text run under
// n, used to give a table its reported position.
func firstLine(n ast.Node, content []byte) int {
	var found int
	var walk func(ast.Node) bool
	walk = func(n ast.Node) bool {
		if t, ok := n.(*ast.Text); ok {
			found = lineNumber(content, t.Segment.Start)
			return true
		}
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			if walk(c) {
				return true
			}
		}
		return false
	}
	walk(n)
	return found
}

func lineNumber(content []byte, offset int) int {
	return bytes.Count(content[:offset], []byte("\n")) + 1
}
