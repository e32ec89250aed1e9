package compile

import (
	"strings"
	"unicode"
)

// columnKind classifies a decision table column header per spec.md
// §3: comment columns start with '#', assertion columns contain '?',
// everything else is a setter.
type columnKind int

const (
	columnSetter columnKind = iota
	columnAssertion
	columnComment
)

func classifyColumn(header string) columnKind {
	h := strings.TrimSpace(header)
	switch {
	case strings.HasPrefix(h, "#"):
		return columnComment
	case strings.Contains(h, "?"):
		return columnAssertion
	default:
		return columnSetter
	}
}

// setterName derives a Slim setter call name from a setter column
// header, matching original_source's rule (markdown_commands.rs): a
// header already starting with "set" is camelCased as-is ("set a" ->
// "setA"); otherwise "set " is prefixed before camelCasing ("a" ->
// "setA").
func setterName(header string) string {
	h := strings.TrimSpace(header)
	if strings.HasPrefix(strings.ToLower(h), "set") {
		return toCamel(h)
	}
	return toCamel("set " + h)
}

// assertionName derives a Slim getter call name from an assertion
// column header: everything before the first '?', camelCased.
func assertionName(header string) string {
	h := strings.TrimSpace(header)
	h, _, _ = strings.Cut(h, "?")
	return toCamel(h)
}

// toCamel generalizes the teacher's attribute-key normalization
// (internal/converter/converter.go's resolveAttribute lowercases and
// joins on '-') to spaces, matching original_source's use of
// convert_case::Case::Camel: lowercase the first word, capitalize the
// first letter of every following word, drop the spaces.
func toCamel(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(strings.ToLower(fields[0]))
	for _, f := range fields[1:] {
		b.WriteString(capitalize(strings.ToLower(f)))
	}
	return b.String()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// splitMethod splits a decisionTable directive body into its fixture
// class and, when present, the `#method` suffix selecting aggregated
// mode.
func splitMethod(body string) (class, method string) {
	if idx := strings.IndexByte(body, '#'); idx >= 0 {
		return strings.TrimSpace(body[:idx]), strings.TrimSpace(body[idx+1:])
	}
	return strings.TrimSpace(body), ""
}
