// Package rubrics loads rubric catalogs from YAML documents.
package rubrics

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/godilite/qa-scorecard/internal/scorecard"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultCatalog []byte

type document struct {
	Rubrics []rubricDoc `yaml:"rubrics"`
}

type rubricDoc struct {
	Role     string       `yaml:"role"`
	Variant  string       `yaml:"variant"`
	Title    string       `yaml:"title"`
	Sections []sectionDoc `yaml:"sections"`
}

type sectionDoc struct {
	ID       string         `yaml:"id"`
	Title    string         `yaml:"title"`
	Weight   int            `yaml:"weight"`
	Criteria []criterionDoc `yaml:"criteria"`
}

type criterionDoc struct {
	ID     string `yaml:"id"`
	Label  string `yaml:"label"`
	Points []int  `yaml:"points"`
}

// Parse decodes a YAML catalog document and validates it.
func Parse(data []byte) (*scorecard.Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	if len(doc.Rubrics) == 0 {
		return nil, fmt.Errorf("parsing catalog: no rubrics defined")
	}

	defs := make([]scorecard.RubricDefinition, 0, len(doc.Rubrics))
	for _, r := range doc.Rubrics {
		def, err := r.definition()
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}

	return scorecard.NewCatalog(defs...)
}

func (r rubricDoc) definition() (scorecard.RubricDefinition, error) {
	def := scorecard.RubricDefinition{
		Key:      scorecard.Key{Role: r.Role, Variant: r.Variant},
		Title:    r.Title,
		Sections: make([]scorecard.Section, 0, len(r.Sections)),
		Criteria: make(map[string]scorecard.Criterion),
	}

	for _, s := range r.Sections {
		section := scorecard.Section{ID: s.ID, Title: s.Title, Weight: s.Weight}
		for _, c := range s.Criteria {
			if c.ID == "" {
				return def, fmt.Errorf("%w: %s section %q has a criterion without id", scorecard.ErrInvalidRubric, def.Key, s.ID)
			}
			if _, dup := def.Criteria[c.ID]; dup {
				return def, fmt.Errorf("%w: %s defines criterion %q twice", scorecard.ErrInvalidRubric, def.Key, c.ID)
			}
			def.Criteria[c.ID] = scorecard.Criterion{ID: c.ID, Label: c.Label, Points: c.Points}
			section.Criteria = append(section.Criteria, c.ID)
		}
		def.Sections = append(def.Sections, section)
	}
	return def, nil
}

// ReadFile reads and parses a catalog file.
func ReadFile(path string) (*scorecard.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Default returns the catalog compiled into the binary.
func Default() (*scorecard.Catalog, error) {
	return Parse(defaultCatalog)
}

// Load reads the catalog at path, or the built-in catalog when path is empty.
func Load(path string) (*scorecard.Catalog, error) {
	if path == "" {
		return Default()
	}
	return ReadFile(path)
}
