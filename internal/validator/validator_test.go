package validator

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcanaland/deckcreator/internal/card"
	"github.com/arcanaland/deckcreator/internal/catalog"
	"github.com/arcanaland/deckcreator/internal/extract"
)

func mustCard(t *testing.T, path, record string) card.Card {
	t.Helper()
	c, err := card.Decode(path, []byte(record))
	require.NoError(t, err)
	return c
}

func TestValidate_CleanCatalog(t *testing.T) {
	root := filepath.Join("srv", "cards")
	cat := &catalog.Catalog{
		Root: root,
		Cards: []card.Card{
			mustCard(t, filepath.Join(root, "mage.js"), `{"name": "Mage Starting Hero"}`),
			mustCard(t, filepath.Join(root, "fireball.js"), `{"name": "Fireball"}`),
		},
	}

	results := NewValidator(cat).Validate()
	assert.Empty(t, results.Errors)
	assert.Empty(t, results.Warnings)
}

func TestValidate_ReportsProblems(t *testing.T) {
	root := filepath.Join("srv", "cards")
	cat := &catalog.Catalog{
		Root: root,
		Cards: []card.Card{
			mustCard(t, filepath.Join(root, "a", "mage.js"), `{"name": "Mage Starting Hero"}`),
			mustCard(t, filepath.Join(root, "b", "mage.js"), `{"name": "Mage Starting Hero"}`),
			mustCard(t, filepath.Join(root, "noname.js"), `{"mana": 1}`),
		},
		Failures: []catalog.Failure{
			{Path: filepath.Join(root, "bad.js"), Stage: extract.StageBlankLine, Err: extract.ErrNoBlankLineFound},
			{Path: filepath.Join(root, "noname.js"), Stage: extract.StageValidation, Err: catalog.ErrMissingName},
		},
	}

	results := NewValidator(cat).Validate()
	assert.Equal(t, []string{"bad.js (blank-line): no blank line after the exported literal"}, results.Errors)
	require.Len(t, results.Warnings, 3)
	assert.Contains(t, results.Warnings[0], "noname.js (validate)")
	assert.Contains(t, results.Warnings[1], `class "Mage" has more than one starting hero`)
	assert.Contains(t, results.Warnings[2], `card "Mage Starting Hero" is defined in 2 files: [a/mage.js b/mage.js]`)
}

func TestValidate_NoStartingHeroes(t *testing.T) {
	cat := &catalog.Catalog{Root: "cards"}
	results := NewValidator(cat).Validate()
	require.Len(t, results.Errors, 1)
	assert.Contains(t, results.Errors[0], "no starting heroes found")
}
