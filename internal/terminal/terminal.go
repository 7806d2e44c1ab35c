// Package terminal provides the line-oriented prompt used by the CLI.
package terminal

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// DefaultWidth is used when the output is not a terminal.
const DefaultWidth = 80

// Terminal writes prompts to out and reads answers from in.
type Terminal struct {
	in     *bufio.Reader
	out    io.Writer
	prompt *color.Color
}

// New creates a Terminal. Prompts are colored only when out is a terminal.
func New(in io.Reader, out io.Writer) *Terminal {
	prompt := color.New(color.FgCyan)
	if !IsTerminal(out) {
		prompt.DisableColor()
	}
	return &Terminal{
		in:     bufio.NewReader(in),
		out:    out,
		prompt: prompt,
	}
}

// Input writes prompt as-is and returns the next line without its line
// terminator. A final line missing its newline is still returned.
func (t *Terminal) Input(prompt string) (string, error) {
	if _, err := t.prompt.Fprint(t.out, prompt); err != nil {
		return "", fmt.Errorf("writing prompt: %w", err)
	}

	line, err := t.in.ReadString('\n')
	if err != nil && !(err == io.EOF && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Width returns the terminal width of w, or DefaultWidth.
func Width(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok {
		return DefaultWidth
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return DefaultWidth
	}
	return width
}

// minWrapWidth is the narrowest column WrapText fills; anything narrower
// wraps at half of DefaultWidth.
const minWrapWidth = 10

// WrapText breaks text into lines of at most width characters, splitting at
// whitespace. Width counts runes, so card text with accents or symbols wraps
// where it appears to. A word longer than width gets a line of its own.
func WrapText(text string, width int) []string {
	if width < minWrapWidth {
		width = DefaultWidth / 2
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	var line strings.Builder
	used := 0
	for _, word := range words {
		n := utf8.RuneCountInString(word)
		if used > 0 && used+1+n > width {
			lines = append(lines, line.String())
			line.Reset()
			used = 0
		}
		if used > 0 {
			line.WriteByte(' ')
			used++
		}
		line.WriteString(word)
		used += n
	}
	return append(lines, line.String())
}
