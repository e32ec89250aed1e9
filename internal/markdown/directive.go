package markdown

import (
	"bytes"
	"regexp"
	"strings"
	"time"
)

// directiveLineRe matches a whole line holding a Slim directive
// comment, either quoting style: `[//]: # (kind args)` or
// `[//]: # "kind args"`. This is a link-reference-definition whose
// label is `//` and destination is `#` — goldmark consumes those
// into its reference table rather than leaving an AST node behind, so
// directives are recognized directly against the raw source lines
// instead of via ast.Walk, the same way the teacher's markdown parser
// falls back to raw text prefix checks for its own HTML-comment
// markers (internal/parser/markdown.go's test-start/test-end
// handling).
var directiveLineRe = regexp.MustCompile(`^\[//\]:\s*#\s*(?:\(([^)]*)\)|"([^"]*)")\s*$`)

var snoozeModifierRe = regexp.MustCompile(`^snooze until (\d{4}-\d{2}-\d{2})$`)

const snoozeSeparator = " -- "

// scanDirectives finds every directive line in content, in document
// order, with 1-based line numbers.
func scanDirectives(content []byte) []Directive {
	var directives []Directive
	for i, raw := range bytes.Split(content, []byte("\n")) {
		line := strings.TrimRight(string(raw), "\r")
		m := directiveLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		body := strings.TrimSpace(m[1] + m[2])
		if body == "" {
			continue
		}
		directives = append(directives, parseDirectiveBody(body, i+1))
	}
	return directives
}

// parseDirectiveBody splits "kind arg1 arg2 ... [-- snooze until
// DATE]" into a Directive. A malformed or unrecognized modifier is
// dropped silently rather than failing the whole directive; only the
// decisionTable/import kinds carry semantic weight downstream.
func parseDirectiveBody(body string, line int) Directive {
	main := body
	var modifier string
	if idx := strings.Index(body, snoozeSeparator); idx >= 0 {
		main = strings.TrimSpace(body[:idx])
		modifier = strings.TrimSpace(body[idx+len(snoozeSeparator):])
	}

	kind, rest := main, ""
	if sp := strings.IndexAny(main, " \t"); sp >= 0 {
		kind, rest = main[:sp], strings.TrimSpace(main[sp+1:])
	}

	d := Directive{Kind: kind, Body: rest, Line: line}
	if modifier != "" {
		if sm := snoozeModifierRe.FindStringSubmatch(modifier); sm != nil {
			if t, err := time.Parse("2006-01-02", sm[1]); err == nil {
				d.SnoozeAt = &t
			}
		}
	}
	return d
}
