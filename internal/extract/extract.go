// Package extract turns a card-definition source file into a JSON record.
//
// Card files are executable code that export a single object literal. The
// Extractor does not parse that language; it applies a fixed sequence of
// lexical rewrites that hold for the conventions card files follow:
//
//  1. strip line and block comments
//  2. trim the text
//  3. drop everything up to the first "module.exports = " marker
//  4. keep only what precedes the first blank line (function bodies follow it)
//  5. close the literal, removing the trailing comma
//  6. double-quote bare keys
package extract

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ExportMarker introduces the object literal in a card file.
const ExportMarker = "module.exports = "

// Stage names a step of the pipeline.
type Stage string

const (
	StageExport     Stage = "export"
	StageBlankLine  Stage = "blank-line"
	StageDecode     Stage = "decode"
	StageValidation Stage = "validate"
)

var (
	ErrNoExportFound    = errors.New("module.exports not found")
	ErrNoBlankLineFound = errors.New("no blank line after the exported literal")
	// ErrMalformed is reported by callers when a record fails to decode.
	ErrMalformed = errors.New("normalized record is malformed")
)

// Error records the stage at which extraction stopped.
type Error struct {
	Stage Stage
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Extractor holds the compiled patterns used by Extract. It is immutable
// and safe for concurrent use.
type Extractor struct {
	comments  *regexp.Regexp
	blankLine *regexp.Regexp
	closing   *regexp.Regexp
	bareKey   *regexp.Regexp
}

// New compiles the extraction patterns.
func New() *Extractor {
	return &Extractor{
		comments:  regexp.MustCompile(`(?sm)(//.*?$|/\*.*?\*/)`),
		blankLine: regexp.MustCompile(`\r?\n\s*?\r?\n\s*?`),
		closing:   regexp.MustCompile(`,\s*}$`),
		// Leading text may not contain a quote or word character, so keys
		// that are already quoted never match.
		bareKey: regexp.MustCompile(`(?m)^([^"\w\r\n]*)(\w+)(: .*)$`),
	}
}

// Extract normalizes raw card source into a JSON document.
func (x *Extractor) Extract(raw string) (string, error) {
	text := strings.TrimSpace(x.StripComments(raw))

	_, literal, found := strings.Cut(text, ExportMarker)
	if !found {
		return "", &Error{Stage: StageExport, Err: ErrNoExportFound}
	}
	literal = strings.ReplaceAll(literal, ExportMarker, "")

	literal, err := x.truncate(literal)
	if err != nil {
		return "", err
	}

	return x.QuoteKeys(x.Close(literal)), nil
}

// StripComments removes // and /* */ comments.
func (x *Extractor) StripComments(text string) string {
	return x.comments.ReplaceAllString(text, "")
}

func (x *Extractor) truncate(text string) (string, error) {
	loc := x.blankLine.FindStringIndex(text)
	if loc == nil {
		return "", &Error{Stage: StageBlankLine, Err: ErrNoBlankLineFound}
	}
	return strings.TrimSpace(text[:loc[0]]), nil
}

// Close terminates a truncated literal with a lone closing brace, removing
// the comma left by the last kept field.
func (x *Extractor) Close(segment string) string {
	segment = strings.TrimSuffix(segment, ",")
	segment = x.closing.ReplaceAllLiteralString(segment, "\n}")
	// braces cut off along with the function bodies
	for n := openBraces(segment); n > 0; n-- {
		segment += "\n}"
	}
	return segment
}

// openBraces counts unclosed '{' outside string literals.
func openBraces(s string) int {
	depth := 0
	var quote rune
	escaped := false
	for _, r := range s {
		switch {
		case escaped:
			escaped = false
		case quote != 0:
			if r == '\\' {
				escaped = true
			} else if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'' || r == '`':
			quote = r
		case r == '{':
			depth++
		case r == '}':
			depth--
		}
	}
	return depth
}

// QuoteKeys wraps every bare "key: " at the start of a line in double quotes.
func (x *Extractor) QuoteKeys(text string) string {
	return x.bareKey.ReplaceAllString(text, `$1"$2"$3`)
}
