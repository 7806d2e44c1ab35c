package session

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/arcanaland/deckcreator/internal/config"
)

type scriptedPrompter struct {
	answers []string
	prompts []string
}

func (p *scriptedPrompter) Input(prompt string) (string, error) {
	p.prompts = append(p.prompts, prompt)
	if len(p.answers) == 0 {
		return "", io.EOF
	}
	answer := p.answers[0]
	p.answers = p.answers[1:]
	return answer, nil
}

var classes = []string{"Death Knight", "Demon Hunter", "Mage", "Rogue"}

func defaultOptions() Options {
	return OptionsFromConfig(config.Default().Session)
}

func run(t *testing.T, opts Options, answers ...string) (Selection, *scriptedPrompter, error) {
	t.Helper()
	p := &scriptedPrompter{answers: answers}
	sel, err := New(p, classes, opts, zaptest.NewLogger(t)).Run()
	return sel, p, err
}

func TestRun_DeathKnightPicksRunes(t *testing.T) {
	sel, p, err := run(t, defaultOptions(), "death knight", "B", "F", "U")
	require.NoError(t, err)
	assert.Equal(t, Selection{Class: "Death Knight", Runes: "BFU"}, sel)

	require.Len(t, p.prompts, 4)
	assert.Equal(t, "What class do you want to choose?\nDeath Knight, Demon Hunter, Mage, Rogue\n", p.prompts[0])
	assert.Equal(t, "What runes do you want to add (3 more)\nBlood, Frost, Unholy\n", p.prompts[1])
	assert.Equal(t, "What runes do you want to add (1 more)\nBlood, Frost, Unholy\n", p.prompts[3])
}

func TestRun_RunesUseFirstLetterAndUppercase(t *testing.T) {
	sel, _, err := run(t, defaultOptions(), "DEATH KNIGHT", "blood", "blood", "unholy")
	require.NoError(t, err)
	assert.Equal(t, Selection{Class: "Death Knight", Runes: "BBU"}, sel)
}

func TestRun_ClassWithoutRunes(t *testing.T) {
	sel, p, err := run(t, defaultOptions(), "mage")
	require.NoError(t, err)
	assert.Equal(t, Selection{Class: "Mage", Runes: ""}, sel)
	assert.Len(t, p.prompts, 1)
}

func TestRun_UnknownClass(t *testing.T) {
	_, p, err := run(t, defaultOptions(), "wizard")
	assert.True(t, errors.Is(err, ErrUnknownClass))
	assert.Contains(t, err.Error(), `"wizard"`)
	assert.Len(t, p.prompts, 1)
}

func TestRun_EmptyRuneInput(t *testing.T) {
	_, p, err := run(t, defaultOptions(), "Death Knight", "F", "")
	assert.True(t, errors.Is(err, ErrEmptyRuneInput))
	assert.Len(t, p.prompts, 3)
}

func TestRun_InputErrorPropagates(t *testing.T) {
	_, _, err := run(t, defaultOptions())
	assert.True(t, errors.Is(err, io.EOF))
}

func TestRun_LenientRunesAreLogged(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	p := &scriptedPrompter{answers: []string{"death knight", "x", "F", "?"}}

	sel, err := New(p, classes, defaultOptions(), zap.New(core)).Run()
	require.NoError(t, err)
	assert.Equal(t, "XF?", sel.Runes)
	assert.Equal(t, 2, logs.Len())
}

func TestRun_StrictRunesRejectUnknownLetters(t *testing.T) {
	opts := defaultOptions()
	opts.StrictRunes = true
	_, _, err := run(t, opts, "death knight", "B", "x")
	assert.True(t, errors.Is(err, ErrInvalidRune))
	assert.ErrorContains(t, err, "not one of Blood, Frost, Unholy")
}

func TestRun_ConfigurableRuneClasses(t *testing.T) {
	opts := Options{RuneClasses: []string{"Mage"}}
	sel, _, err := run(t, opts, "MAGE", "f", "f", "f")
	require.NoError(t, err)
	assert.Equal(t, Selection{Class: "Mage", Runes: "FFF"}, sel)

	sel, _, err = run(t, opts, "death knight")
	require.NoError(t, err)
	assert.Equal(t, Selection{Class: "Death Knight"}, sel)
}

func TestNormalizeClass(t *testing.T) {
	assert.Equal(t, "Death Knight", NormalizeClass("dEATH kNIGHT"))
	assert.Equal(t, "Mage", NormalizeClass("mage"))
	assert.Equal(t, "Demon  Hunter", NormalizeClass("demon  hunter"))
	assert.Equal(t, "", NormalizeClass(""))
}

func TestIsRuneLetter(t *testing.T) {
	for _, r := range "BFUbfu" {
		assert.True(t, IsRuneLetter(r), string(r))
	}
	for _, r := range "XZ1 ?" {
		assert.False(t, IsRuneLetter(r), string(r))
	}
}

func TestPropertyNormalizeClassIdempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		in := rapid.StringMatching(`[a-zA-Z ]{0,24}`).Draw(t, "input")
		once := NormalizeClass(in)
		if NormalizeClass(once) != once {
			t.Fatalf("not idempotent for %q", in)
		}
		if !strings.EqualFold(once, in) {
			t.Fatalf("%q changed letters of %q", once, in)
		}
	})
}

func TestPropertyKnownClassesAlwaysMatch(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		class := rapid.SampledFrom(classes).Draw(t, "class")
		// randomize case
		var b strings.Builder
		for _, r := range class {
			if rapid.Bool().Draw(t, "upper") {
				b.WriteString(strings.ToUpper(string(r)))
			} else {
				b.WriteString(strings.ToLower(string(r)))
			}
		}
		p := &scriptedPrompter{answers: []string{b.String(), "b", "f", "u"}}
		sel, err := New(p, classes, defaultOptions(), zap.NewNop()).Run()
		if err != nil {
			t.Fatalf("class %q rejected: %v", b.String(), err)
		}
		if sel.Class != class {
			t.Fatalf("got %q, want %q", sel.Class, class)
		}
	})
}
