package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/arcanaland/deckcreator/internal/card"
	"github.com/arcanaland/deckcreator/internal/config"
	"github.com/arcanaland/deckcreator/internal/extract"
)

func cardSource(fields string) string {
	return "// Created by the Custom Card Creator\n\nmodule.exports = {\n" + fields +
		"\n\n    cast(plr, game, self) {\n        plr.drawCard();\n    }\n}\n"
}

var tree = map[string]string{
	"Classes/Mage/mage_hero.js":  cardSource("    name: \"Mage Starting Hero\",\n    class: \"Mage\",\n    uncollectible: true,"),
	"Classes/Neutral/peasant.js": cardSource("    name: \"Peasant\",\n    mana: 1,"),
	"Classes/Rogue/rogue.ts":     cardSource("    name: \"Rogue Starting Hero\","),
	"Tests/infmana.js":           cardSource("    name: \"Infinite Mana\","),
	"Examples/2/hero.js":         cardSource("    name: \"Example Hero\","),
	"broken/badjson.js":          cardSource("    name: 'Single Quoted',"),
	"broken/noexport.js":         "export const blueprint = {\n    name: \"Nope\",\n}\n",
	"noname.js":                  cardSource("    mana: 3,"),
	"data.json":                  `{"name": "Not A Card"}`,
}

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return root
}

func testOptions() Options {
	opts := OptionsFromConfig(config.Default())
	opts.Workers = 4
	return opts
}

func names(cards []card.Card) []string {
	out := make([]string, 0, len(cards))
	for _, c := range cards {
		out = append(out, c.Name())
	}
	return out
}

func TestLoadAll_CollectsCardsAndFailures(t *testing.T) {
	root := writeTree(t, tree)
	core, logs := observer.New(zapcore.WarnLevel)
	repo, err := NewRepository(testOptions(), zap.New(core))
	require.NoError(t, err)

	cat, err := repo.LoadAll(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, []string{"Mage Starting Hero", "Peasant", ""}, names(cat.Cards))
	assert.Equal(t, filepath.Join(root, "Classes", "Mage", "mage_hero.js"), cat.Cards[0].Path)

	require.Len(t, cat.Failures, 3)
	assert.Equal(t, filepath.Join(root, "broken", "badjson.js"), cat.Failures[0].Path)
	assert.Equal(t, extract.StageDecode, cat.Failures[0].Stage)
	assert.True(t, errors.Is(cat.Failures[0], extract.ErrMalformed))

	assert.Equal(t, extract.StageExport, cat.Failures[1].Stage)
	assert.True(t, errors.Is(cat.Failures[1], extract.ErrNoExportFound))

	assert.Equal(t, extract.StageValidation, cat.Failures[2].Stage)
	assert.True(t, errors.Is(cat.Failures[2], ErrMissingName))

	assert.Equal(t, 3, logs.FilterMessage("card file problem").Len())
}

func TestLoadAll_DecodeFailureKeepsSyntaxError(t *testing.T) {
	root := writeTree(t, tree)
	repo, err := NewRepository(testOptions(), zaptest.NewLogger(t))
	require.NoError(t, err)

	cat, err := repo.LoadAll(context.Background(), root)
	require.NoError(t, err)
	require.NotEmpty(t, cat.Failures)

	f := cat.Failures[0]
	require.Equal(t, extract.StageDecode, f.Stage)
	assert.True(t, errors.Is(f, extract.ErrMalformed))
	var syntaxErr *json.SyntaxError
	require.True(t, errors.As(f, &syntaxErr))
	assert.Positive(t, syntaxErr.Offset)
}

func TestLoadAll_StrictAbortsOnFirstFailure(t *testing.T) {
	root := writeTree(t, tree)
	opts := testOptions()
	opts.Strict = true
	repo, err := NewRepository(opts, zaptest.NewLogger(t))
	require.NoError(t, err)

	_, err = repo.LoadAll(context.Background(), root)
	require.Error(t, err)

	var f Failure
	require.True(t, errors.As(err, &f))
	assert.Equal(t, filepath.Join(root, "broken", "badjson.js"), f.Path)
	assert.True(t, errors.Is(err, extract.ErrMalformed))
}

func TestLoadAll_MissingRootIsFatal(t *testing.T) {
	repo, err := NewRepository(testOptions(), zaptest.NewLogger(t))
	require.NoError(t, err)

	_, err = repo.LoadAll(context.Background(), filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestLoadAll_CanceledContext(t *testing.T) {
	root := writeTree(t, tree)
	repo, err := NewRepository(testOptions(), zaptest.NewLogger(t))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = repo.LoadAll(ctx, root)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestLoadAll_OrderIndependentOfWorkers(t *testing.T) {
	root := writeTree(t, tree)
	var got [][]string
	for _, workers := range []int{1, 8} {
		opts := testOptions()
		opts.Workers = workers
		opts.CacheSize = 0
		repo, err := NewRepository(opts, zaptest.NewLogger(t))
		require.NoError(t, err)
		cat, err := repo.LoadAll(context.Background(), root)
		require.NoError(t, err)
		got = append(got, names(cat.Cards))
	}
	assert.Equal(t, got[0], got[1])
}

func TestLoadAll_ExtensionsAndExclusionsConfigurable(t *testing.T) {
	root := writeTree(t, tree)
	opts := testOptions()
	opts.Extensions = []string{"ts"}
	opts.ExcludeDirs = nil
	repo, err := NewRepository(opts, zaptest.NewLogger(t))
	require.NoError(t, err)

	cat, err := repo.LoadAll(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, []string{"Rogue Starting Hero"}, names(cat.Cards))
}

func TestLoadAll_CachesUnchangedFiles(t *testing.T) {
	root := writeTree(t, tree)
	repo, err := NewRepository(testOptions(), zaptest.NewLogger(t))
	require.NoError(t, err)

	_, err = repo.LoadAll(context.Background(), root)
	require.NoError(t, err)
	// cards with defects are never cached
	assert.Equal(t, 2, repo.cache.Len())

	peasant := filepath.Join(root, "Classes", "Neutral", "peasant.js")
	info, err := os.Stat(peasant)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(peasant, []byte(cardSource("    name: \"Paesant\",\n    mana: 1,")), 0644))
	require.NoError(t, os.Chtimes(peasant, info.ModTime(), info.ModTime()))

	cat, err := repo.LoadAll(context.Background(), root)
	require.NoError(t, err)
	assert.Contains(t, names(cat.Cards), "Peasant")

	later := info.ModTime().Add(time.Minute)
	require.NoError(t, os.Chtimes(peasant, later, later))

	cat, err = repo.LoadAll(context.Background(), root)
	require.NoError(t, err)
	assert.Contains(t, names(cat.Cards), "Paesant")
}

func TestLoadAll_ReportsCacheHits(t *testing.T) {
	root := writeTree(t, tree)
	core, logs := observer.New(zapcore.DebugLevel)
	repo, err := NewRepository(testOptions(), zap.New(core))
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err = repo.LoadAll(context.Background(), root)
		require.NoError(t, err)
	}

	loaded := logs.FilterMessage("catalog loaded").AllUntimed()
	require.Len(t, loaded, 2)
	assert.Equal(t, int64(0), loaded[0].ContextMap()["cached"])
	assert.Equal(t, int64(2), loaded[1].ContextMap()["cached"])
}

func TestExtract_ReportsStageAndPath(t *testing.T) {
	root := writeTree(t, tree)
	repo, err := NewRepository(testOptions(), zaptest.NewLogger(t))
	require.NoError(t, err)

	_, err = repo.Extract(filepath.Join(root, "broken", "noexport.js"))
	var f Failure
	require.True(t, errors.As(err, &f))
	assert.Equal(t, extract.StageExport, f.Stage)
	assert.Contains(t, err.Error(), "noexport.js: export: module.exports not found")

	record, err := repo.Extract(filepath.Join(root, "Classes", "Neutral", "peasant.js"))
	require.NoError(t, err)
	assert.Equal(t, "{\n    \"name\": \"Peasant\",\n    \"mana\": 1\n}", record)
}
