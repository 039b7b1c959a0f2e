// Package utils provides utility functions for the zwerg project.
package utils

import (
	"regexp"
	"strings"

	"github.com/fatih/color"
)

// Colors used when pretty-printing DWARF/query output to a terminal.
var (
	// DW_TAG_* / DW_AT_* / DW_FORM_* names
	TagColor  = color.New(color.FgMagenta, color.Bold)
	AttrColor = color.New(color.FgCyan)
	// Hex offsets, e.g. [0x1a2b]
	OffsetColor = color.New(color.FgYellow)
	// Quoted strings (attribute string values)
	StringColor = color.New(color.FgGreen)
	// Diagnostic severities
	WarnColor  = color.New(color.FgHiYellow, color.Bold)
	FatalColor = color.New(color.FgHiRed, color.Bold)
)

var (
	tagPattern    = regexp.MustCompile(`\bDW_TAG_[A-Za-z0-9_]+\b`)
	attrPattern   = regexp.MustCompile(`\bDW_AT_[A-Za-z0-9_]+\b`)
	formPattern   = regexp.MustCompile(`\bDW_FORM_[A-Za-z0-9_]+\b`)
	offsetPattern = regexp.MustCompile(`\[0x[0-9a-fA-F]+\]`)
	stringPattern = regexp.MustCompile(`"(?:[^"\\]|\\.)*"`)
)

// token represents a colorized span of output text.
type token struct {
	text  string
	color *color.Color
	start int
	end   int
}

// Colorize applies DWARF-aware coloring to one line of formatted query
// output (DIE/attribute show text or a diagnostic message). Overlapping
// candidate spans are resolved first-match-wins, in the priority order
// strings, offsets, DW_TAG_*, DW_AT_*, DW_FORM_*.
func Colorize(text string) string {
	if text == "" {
		return text
	}

	var tokens []token
	add := func(pattern *regexp.Regexp, c *color.Color) {
		for _, m := range pattern.FindAllStringIndex(text, -1) {
			if !overlapsAny(m[0], m[1], tokens) {
				tokens = append(tokens, token{text: text[m[0]:m[1]], color: c, start: m[0], end: m[1]})
			}
		}
	}

	add(stringPattern, StringColor)
	add(offsetPattern, OffsetColor)
	add(tagPattern, TagColor)
	add(attrPattern, AttrColor)
	add(formPattern, AttrColor)

	return buildHighlightedString(text, tokens)
}

func overlapsAny(start, end int, tokens []token) bool {
	for _, t := range tokens {
		if start < t.end && end > t.start {
			return true
		}
	}
	return false
}

func buildHighlightedString(text string, tokens []token) string {
	if len(tokens) == 0 {
		return text
	}

	sortTokens(tokens)

	var result strings.Builder
	pos := 0

	for _, t := range tokens {
		if t.start > pos {
			result.WriteString(text[pos:t.start])
		}
		result.WriteString(t.color.Sprint(t.text))
		pos = t.end
	}

	if pos < len(text) {
		result.WriteString(text[pos:])
	}

	return result.String()
}

// sortTokens sorts tokens by start position (insertion sort, lists are short).
func sortTokens(tokens []token) {
	for i := 1; i < len(tokens); i++ {
		key := tokens[i]
		j := i - 1
		for j >= 0 && tokens[j].start > key.start {
			tokens[j+1] = tokens[j]
			j--
		}
		tokens[j+1] = key
	}
}

// ColorizeSeverity colors a diagnostic severity label.
func ColorizeSeverity(severity string) string {
	switch severity {
	case "warning":
		return WarnColor.Sprint(severity)
	case "error", "fatal":
		return FatalColor.Sprint(severity)
	default:
		return severity
	}
}
