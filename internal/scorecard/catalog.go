package scorecard

import (
	"errors"
	"fmt"
	"sort"
)

// ErrInvalidRubric is returned by NewCatalog when a definition is malformed.
var ErrInvalidRubric = errors.New("invalid rubric")

// Catalog is an immutable registry of rubric definitions keyed by role and variant.
// It is safe for concurrent use.
type Catalog struct {
	rubrics  map[Key]RubricDefinition
	variants map[string][]string
	roles    []string
}

// NewCatalog validates defs and builds a catalog from them.
// Variants are recorded in the order their definitions are given.
func NewCatalog(defs ...RubricDefinition) (*Catalog, error) {
	c := &Catalog{
		rubrics:  make(map[Key]RubricDefinition, len(defs)),
		variants: make(map[string][]string),
	}

	base := make(map[string]bool)
	seenRoles := make(map[string]bool)
	for _, def := range defs {
		if err := validate(def); err != nil {
			return nil, err
		}
		if _, dup := c.rubrics[def.Key]; dup {
			return nil, fmt.Errorf("%w: duplicate rubric %s", ErrInvalidRubric, def.Key)
		}

		if def.Key.Variant == "" {
			if len(c.variants[def.Key.Role]) > 0 {
				return nil, fmt.Errorf("%w: role %q mixes a base rubric with variants", ErrInvalidRubric, def.Key.Role)
			}
			base[def.Key.Role] = true
		} else {
			if base[def.Key.Role] {
				return nil, fmt.Errorf("%w: role %q mixes a base rubric with variants", ErrInvalidRubric, def.Key.Role)
			}
			c.variants[def.Key.Role] = append(c.variants[def.Key.Role], def.Key.Variant)
		}

		if !seenRoles[def.Key.Role] {
			seenRoles[def.Key.Role] = true
			c.roles = append(c.roles, def.Key.Role)
		}
		c.rubrics[def.Key] = cloneRubric(def)
	}

	sort.Strings(c.roles)
	return c, nil
}

func validate(def RubricDefinition) error {
	if def.Key.Role == "" {
		return fmt.Errorf("%w: empty role", ErrInvalidRubric)
	}
	if len(def.Sections) == 0 {
		return fmt.Errorf("%w: %s has no sections", ErrInvalidRubric, def.Key)
	}

	seenSections := make(map[string]bool, len(def.Sections))
	seenCriteria := make(map[string]bool)
	for _, s := range def.Sections {
		if s.ID == "" {
			return fmt.Errorf("%w: %s has a section without id", ErrInvalidRubric, def.Key)
		}
		if seenSections[s.ID] {
			return fmt.Errorf("%w: %s repeats section %q", ErrInvalidRubric, def.Key, s.ID)
		}
		seenSections[s.ID] = true
		if s.Weight < 0 {
			return fmt.Errorf("%w: %s section %q has negative weight %d", ErrInvalidRubric, def.Key, s.ID, s.Weight)
		}

		for _, id := range s.Criteria {
			if seenCriteria[id] {
				return fmt.Errorf("%w: %s lists criterion %q twice", ErrInvalidRubric, def.Key, id)
			}
			seenCriteria[id] = true

			crit, ok := def.Criteria[id]
			if !ok {
				return fmt.Errorf("%w: %s section %q references undefined criterion %q", ErrInvalidRubric, def.Key, s.ID, id)
			}
			if err := validateCriterion(crit); err != nil {
				return fmt.Errorf("%w: %s criterion %q: %v", ErrInvalidRubric, def.Key, id, err)
			}
		}
	}
	return nil
}

func validateCriterion(c Criterion) error {
	if len(c.Points) == 0 {
		return errors.New("empty point table")
	}
	for i, p := range c.Points {
		if p < 0 {
			return fmt.Errorf("negative points %d at option %d", p, i)
		}
		if p > c.Points[0] {
			return fmt.Errorf("option %d (%d points) exceeds option 0 (%d points)", i, p, c.Points[0])
		}
	}
	return nil
}

func cloneRubric(def RubricDefinition) RubricDefinition {
	out := RubricDefinition{
		Key:      def.Key,
		Title:    def.Title,
		Sections: make([]Section, len(def.Sections)),
		Criteria: make(map[string]Criterion, len(def.Criteria)),
	}
	for i, s := range def.Sections {
		s.Criteria = append([]string(nil), s.Criteria...)
		out.Sections[i] = s
	}
	for id, c := range def.Criteria {
		c.Points = append([]int(nil), c.Points...)
		if c.ID == "" {
			c.ID = id
		}
		out.Criteria[id] = c
	}
	return out
}

// Lookup returns the rubric for role and variant. An unknown pair is not an error:
// it means the role is scored manually. The returned definition is shared and must
// not be modified.
func (c *Catalog) Lookup(role, variant string) (RubricDefinition, bool) {
	def, ok := c.rubrics[Key{Role: role, Variant: variant}]
	return def, ok
}

// VariantsFor returns the role's declared variants in declaration order.
func (c *Catalog) VariantsFor(role string) []string {
	return append([]string(nil), c.variants[role]...)
}

// RequiresVariantSelection reports whether a grader must pick a variant before the
// computed score can be trusted. A single declared variant is used silently.
func (c *Catalog) RequiresVariantSelection(role string) bool {
	return len(c.variants[role]) > 1
}

// HasVariant reports whether role declares variant.
func (c *Catalog) HasVariant(role, variant string) bool {
	for _, v := range c.variants[role] {
		if v == variant {
			return true
		}
	}
	return false
}

// Roles returns every role with at least one rubric, sorted.
func (c *Catalog) Roles() []string {
	return append([]string(nil), c.roles...)
}
