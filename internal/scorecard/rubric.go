// Package scorecard implements the rubric scoring engine: the rubric catalog, the
// weighted score calculator, variant resolution and the auto/manual reconciliation
// policy. Nothing in this package performs I/O or keeps state between calls.
package scorecard

// Key identifies a rubric. Variant is empty for roles with a single rubric.
type Key struct {
	Role    string
	Variant string
}

func (k Key) String() string {
	if k.Variant == "" {
		return k.Role
	}
	return k.Role + "/" + k.Variant
}

// Criterion is a gradable dimension. Points[0] is the maximum achievable value.
type Criterion struct {
	ID     string
	Label  string
	Points []int
}

// Max returns the criterion's maximum points, or 0 for an empty table.
func (c Criterion) Max() int {
	if len(c.Points) == 0 {
		return 0
	}
	return c.Points[0]
}

// Section is a weighted group of criteria.
type Section struct {
	ID       string
	Title    string
	Weight   int
	Criteria []string
}

// RubricDefinition is the full scoring schema for one role and optional variant.
type RubricDefinition struct {
	Key      Key
	Title    string
	Sections []Section
	Criteria map[string]Criterion
}
