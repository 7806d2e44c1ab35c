// Package session runs the interactive class and rune selection.
package session

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/arcanaland/deckcreator/internal/config"
)

// RuneCount is how many runes a rune-bearing class picks.
const RuneCount = 3

// runeNames are the runes offered to rune-bearing classes. Each is picked
// by its first letter.
var runeNames = []string{"Blood", "Frost", "Unholy"}

var (
	ErrUnknownClass   = errors.New("unknown class")
	ErrEmptyRuneInput = errors.New("no rune entered")
	ErrInvalidRune    = errors.New("not one of " + strings.Join(runeNames, ", "))
)

// Prompter writes a prompt and reads back one line of input, without its
// line terminator.
type Prompter interface {
	Input(prompt string) (string, error)
}

// Selection is the outcome of a completed session.
type Selection struct {
	Class string
	Runes string // empty unless Class picks runes
}

// Options tunes session behaviour.
type Options struct {
	RuneClasses []string
	// StrictRunes rejects letters that don't name a rune. When false such
	// letters are accepted and logged.
	StrictRunes bool
}

// OptionsFromConfig maps the session config section onto Options.
func OptionsFromConfig(cfg config.SessionConfig) Options {
	return Options{
		RuneClasses: cfg.RuneClasses,
		StrictRunes: cfg.StrictRunes,
	}
}

type state int

const (
	askClass state = iota
	askRunes
	done
)

// Session asks for a class and, for rune-bearing classes, three runes.
type Session struct {
	prompter Prompter
	classes  []string
	opts     Options
	logger   *zap.Logger
}

// New creates a Session offering classes, in the given order.
func New(prompter Prompter, classes []string, opts Options, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		prompter: prompter,
		classes:  classes,
		opts:     opts,
		logger:   logger,
	}
}

// Run drives the session to completion. An unknown class or an empty rune
// answer ends the session with an error; nothing is retried.
func (s *Session) Run() (Selection, error) {
	var sel Selection
	var runes strings.Builder

	for st := askClass; st != done; {
		switch st {
		case askClass:
			class, err := s.askClass()
			if err != nil {
				return Selection{}, err
			}
			sel.Class = class
			st = done
			if s.picksRunes(class) {
				st = askRunes
			}

		case askRunes:
			r, err := s.askRune(RuneCount - utf8.RuneCountInString(runes.String()))
			if err != nil {
				return Selection{}, err
			}
			runes.WriteRune(r)
			if utf8.RuneCountInString(runes.String()) == RuneCount {
				sel.Runes = strings.ToUpper(runes.String())
				st = done
			}
		}
	}

	return sel, nil
}

func (s *Session) askClass() (string, error) {
	prompt := fmt.Sprintf("What class do you want to choose?\n%s\n", strings.Join(s.classes, ", "))
	answer, err := s.prompter.Input(prompt)
	if err != nil {
		return "", fmt.Errorf("reading class: %w", err)
	}

	class := NormalizeClass(answer)
	for _, known := range s.classes {
		if strings.EqualFold(known, class) {
			return class, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownClass, answer)
}

func (s *Session) askRune(remaining int) (rune, error) {
	prompt := fmt.Sprintf("What runes do you want to add (%d more)\n%s\n", remaining, strings.Join(runeNames, ", "))
	answer, err := s.prompter.Input(prompt)
	if err != nil {
		return 0, fmt.Errorf("reading rune: %w", err)
	}
	if answer == "" {
		return 0, ErrEmptyRuneInput
	}

	r, _ := utf8.DecodeRuneInString(answer)
	if !IsRuneLetter(r) {
		if s.opts.StrictRunes {
			return 0, fmt.Errorf("%w: %q", ErrInvalidRune, r)
		}
		s.logger.Warn("accepting rune letter that names no rune", zap.String("letter", string(r)))
	}
	return r, nil
}

func (s *Session) picksRunes(class string) bool {
	for _, rc := range s.opts.RuneClasses {
		if strings.EqualFold(rc, class) {
			return true
		}
	}
	return false
}

// IsRuneLetter reports whether r is the first letter of a rune name,
// ignoring case.
func IsRuneLetter(r rune) bool {
	for _, name := range runeNames {
		first, _ := utf8.DecodeRuneInString(name)
		if unicode.ToUpper(r) == first {
			return true
		}
	}
	return false
}

// NormalizeClass capitalizes each space-separated word of input and
// lowercases the rest of it.
func NormalizeClass(input string) string {
	words := strings.Split(input, " ")
	for i, w := range words {
		words[i] = capitalize(w)
	}
	return strings.Join(words, " ")
}

func capitalize(word string) string {
	first, size := utf8.DecodeRuneInString(word)
	if size == 0 {
		return ""
	}
	return string(unicode.ToUpper(first)) + strings.ToLower(word[size:])
}
