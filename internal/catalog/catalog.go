// Package catalog walks a card source tree and decodes every card-definition
// file it finds.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/arcanaland/deckcreator/internal/card"
	"github.com/arcanaland/deckcreator/internal/config"
	"github.com/arcanaland/deckcreator/internal/extract"
)

// ErrMissingName marks a decoded card without a "name" field.
var ErrMissingName = errors.New(`card has no "name" field`)

// Options controls which files are read and how failures are treated.
type Options struct {
	Extensions  []string // e.g. ".js"; matched case-insensitively
	ExcludeDirs []string // directory names whose subtrees are skipped
	Strict      bool     // abort on the first per-file failure
	Workers     int
	CacheSize   int // decoded cards kept between loads; 0 disables
}

// OptionsFromConfig maps the application config onto scan options.
func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		Extensions:  cfg.Extensions,
		ExcludeDirs: cfg.ExcludeDirs,
		Strict:      cfg.Strict,
		Workers:     cfg.Workers,
		CacheSize:   cfg.CacheSize,
	}
}

// Failure describes a card file that did not yield a clean Card.
type Failure struct {
	Path  string
	Stage extract.Stage
	Err   error
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s: %s: %v", f.Path, f.Stage, f.Err)
}

func (f Failure) Unwrap() error {
	return f.Err
}

// Catalog is the outcome of one scan.
type Catalog struct {
	Root  string
	Cards []card.Card // traversal order
	// Failures lists files that were skipped, plus cards that were kept
	// despite a data-quality defect (StageValidation).
	Failures []Failure
}

type cacheKey struct {
	path    string
	modTime int64
	size    int64
}

// Repository loads card catalogs. It is safe for concurrent use.
type Repository struct {
	opts      Options
	exts      map[string]struct{}
	excluded  map[string]struct{}
	extractor *extract.Extractor
	logger    *zap.Logger
	cache     *lru.Cache[cacheKey, card.Card]
}

// NewRepository creates a Repository.
func NewRepository(opts Options, logger *zap.Logger) (*Repository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}

	r := &Repository{
		opts:      opts,
		exts:      make(map[string]struct{}, len(opts.Extensions)),
		excluded:  make(map[string]struct{}, len(opts.ExcludeDirs)),
		extractor: extract.New(),
		logger:    logger,
	}
	for _, ext := range opts.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		r.exts[ext] = struct{}{}
	}
	for _, dir := range opts.ExcludeDirs {
		r.excluded[strings.ToLower(dir)] = struct{}{}
	}

	if opts.CacheSize > 0 {
		cache, err := lru.New[cacheKey, card.Card](opts.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("creating card cache: %w", err)
		}
		r.cache = cache
	}
	return r, nil
}

// LoadAll walks root and decodes every eligible card file. Walk and read
// errors abort the scan; per-file extraction and decode failures are
// collected in Catalog.Failures unless Options.Strict is set.
func (r *Repository) LoadAll(ctx context.Context, root string) (*Catalog, error) {
	paths, err := r.eligibleFiles(root)
	if err != nil {
		return nil, err
	}

	results := make([]fileResult, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := r.loadFile(path)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	catalog := &Catalog{Root: root}
	cached := 0
	for _, res := range results {
		if res.cached {
			cached++
		}
		if res.failure != nil {
			if r.opts.Strict {
				return nil, fmt.Errorf("strict mode: %w", *res.failure)
			}
			r.logger.Warn("card file problem",
				zap.String("path", res.failure.Path),
				zap.String("stage", string(res.failure.Stage)),
				zap.Error(res.failure.Err),
			)
			catalog.Failures = append(catalog.Failures, *res.failure)
		}
		if res.ok {
			catalog.Cards = append(catalog.Cards, res.card)
		}
	}

	r.logger.Debug("catalog loaded",
		zap.String("root", root),
		zap.Int("files", len(paths)),
		zap.Int("cards", len(catalog.Cards)),
		zap.Int("cached", cached),
		zap.Int("failures", len(catalog.Failures)),
	)
	return catalog, nil
}

// Extract reads one file and returns its normalized record.
func (r *Repository) Extract(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading card file %s: %w", path, err)
	}
	record, err := r.extractor.Extract(string(data))
	if err != nil {
		var xerr *extract.Error
		if errors.As(err, &xerr) {
			return "", Failure{Path: path, Stage: xerr.Stage, Err: xerr.Err}
		}
		return "", Failure{Path: path, Stage: extract.StageExport, Err: err}
	}
	return record, nil
}

// eligibleFiles lists regular files under root with a card extension,
// skipping excluded subtrees.
func (r *Repository) eligibleFiles(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && r.isExcluded(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if _, ok := r.exts[strings.ToLower(filepath.Ext(path))]; !ok {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking card tree %s: %w", root, err)
	}
	return paths, nil
}

func (r *Repository) isExcluded(dir string) bool {
	_, ok := r.excluded[strings.ToLower(dir)]
	return ok
}

type fileResult struct {
	card    card.Card
	ok      bool
	cached  bool
	failure *Failure
}

// loadFile returns an error only for I/O failures; everything else is
// reported through fileResult.failure.
func (r *Repository) loadFile(path string) (fileResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return fileResult{}, fmt.Errorf("reading card file %s: %w", path, err)
	}
	key := cacheKey{path: path, modTime: info.ModTime().UnixNano(), size: info.Size()}
	if r.cache != nil {
		if c, ok := r.cache.Get(key); ok {
			return fileResult{card: c, ok: true, cached: true}, nil
		}
	}

	record, err := r.Extract(path)
	if err != nil {
		var f Failure
		if errors.As(err, &f) {
			return fileResult{failure: &f}, nil
		}
		return fileResult{}, err
	}

	c, err := card.Decode(path, []byte(record))
	if err != nil {
		return fileResult{failure: &Failure{
			Path:  path,
			Stage: extract.StageDecode,
			Err:   fmt.Errorf("%w: %w", extract.ErrMalformed, err),
		}}, nil
	}

	if c.Name() == "" {
		return fileResult{card: c, ok: true, failure: &Failure{
			Path:  path,
			Stage: extract.StageValidation,
			Err:   ErrMissingName,
		}}, nil
	}

	if r.cache != nil {
		r.cache.Add(key, c)
	}
	return fileResult{card: c, ok: true}, nil
}
