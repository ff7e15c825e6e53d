// Package presentation holds cosmetic lookups used when rendering ratings.
// Nothing here influences scoring.
package presentation

import "github.com/godilite/qa-scorecard/internal/scorecard"

// Label is the short text and color class shown for a rating option.
type Label struct {
	Text  string `json:"text" yaml:"text"`
	Color string `json:"color" yaml:"color"`
}

// LabelTable maps option indexes to labels. It is keyed only by index, never by
// criterion or rubric.
type LabelTable struct {
	options       []Label
	notApplicable Label
	fallback      Label
}

// NewLabelTable builds a table from per-index labels and the label used for N/A.
func NewLabelTable(options []Label, notApplicable Label) LabelTable {
	return LabelTable{
		options:       append([]Label(nil), options...),
		notApplicable: notApplicable,
		fallback:      Label{Text: "?", Color: "muted"},
	}
}

// DefaultLabels is the conventional four-option table.
func DefaultLabels() LabelTable {
	return NewLabelTable([]Label{
		{Text: "Exceeds", Color: "green"},
		{Text: "Meets", Color: "blue"},
		{Text: "Needs work", Color: "yellow"},
		{Text: "Missed", Color: "red"},
	}, Label{Text: scorecard.NotApplicableLabel, Color: "gray"})
}

// For returns the label for r.
func (t LabelTable) For(r scorecard.Rating) Label {
	i, graded := r.Index()
	if !graded {
		return t.notApplicable
	}
	if i < 0 || i >= len(t.options) {
		return t.fallback
	}
	return t.options[i]
}
