package models

import "database/sql"

// TemplateRating is one stored criterion selection of a template scorecard.
// An invalid OptionIndex stores Not Applicable.
type TemplateRating struct {
	Criterion   string
	OptionIndex sql.NullInt64
}

// TemplateSummary lists a template that carries a scorecard preset for a role.
type TemplateSummary struct {
	TemplateID int64
	Name       string
	Variant    string
	Criteria   int64
}
