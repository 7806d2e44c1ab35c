package validator

import (
	"fmt"
	"path/filepath"

	"github.com/arcanaland/deckcreator/internal/catalog"
	"github.com/arcanaland/deckcreator/internal/extract"
	"github.com/arcanaland/deckcreator/internal/query"
)

type ValidationResults struct {
	Errors   []string
	Warnings []string
}

type Validator struct {
	Catalog *catalog.Catalog
	Results ValidationResults
}

func NewValidator(cat *catalog.Catalog) *Validator {
	return &Validator{
		Catalog: cat,
		Results: ValidationResults{},
	}
}

func (v *Validator) Validate() ValidationResults {
	v.validateFailures()
	v.validateClasses()
	v.validateDuplicateNames()

	return v.Results
}

// validateFailures reports files the catalog could not turn into clean cards
func (v *Validator) validateFailures() {
	for _, f := range v.Catalog.Failures {
		msg := fmt.Sprintf("%s (%s): %v", v.relative(f.Path), f.Stage, f.Err)
		if f.Stage == extract.StageValidation {
			v.Results.Warnings = append(v.Results.Warnings, msg)
			continue
		}
		v.Results.Errors = append(v.Results.Errors, msg)
	}
}

// validateClasses checks that starting heroes exist and name distinct classes
func (v *Validator) validateClasses() {
	classes := query.FindClasses(v.Catalog.Cards)
	if len(classes) == 0 {
		v.Results.Errors = append(v.Results.Errors,
			fmt.Sprintf("no starting heroes found (card names ending in %q)", query.StartingHeroSuffix))
		return
	}

	for _, class := range query.Duplicates(classes) {
		v.Results.Warnings = append(v.Results.Warnings,
			fmt.Sprintf("class %q has more than one starting hero; it will be offered twice", class))
	}
}

// validateDuplicateNames warns when several files define a card of the same name
func (v *Validator) validateDuplicateNames() {
	paths := make(map[string][]string)
	var order []string
	for _, c := range v.Catalog.Cards {
		name := c.Name()
		if name == "" {
			continue
		}
		if _, seen := paths[name]; !seen {
			order = append(order, name)
		}
		paths[name] = append(paths[name], v.relative(c.Path))
	}

	for _, name := range order {
		if len(paths[name]) > 1 {
			v.Results.Warnings = append(v.Results.Warnings,
				fmt.Sprintf("card %q is defined in %d files: %v", name, len(paths[name]), paths[name]))
		}
	}
}

func (v *Validator) relative(path string) string {
	if rel, err := filepath.Rel(v.Catalog.Root, path); err == nil {
		return filepath.ToSlash(rel)
	}
	return path
}
