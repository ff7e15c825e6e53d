package service

import (
	"time"

	"github.com/godilite/qa-scorecard/internal/scorecard"
)

// ScoreRequest is the boundary input for scoring one ticket.
type ScoreRequest struct {
	TicketID int64  `json:"ticket_id,omitempty"`
	Role     string `json:"role"`
	Variant  string `json:"variant,omitempty"`
	// ScorecardVariant is the variant already persisted on the ticket, if any.
	ScorecardVariant string              `json:"scorecard_variant,omitempty"`
	Ratings          scorecard.RatingSet `json:"ratings"`
	// ScorecardValues is the persisted integer encoding, where the slot past a
	// criterion's last option means N/A. It is read only when Ratings is empty.
	ScorecardValues map[string]int `json:"scorecard_values,omitempty"`
	ManualScore     *int           `json:"manual_score,omitempty"`
}

// TemplateRequest applies a template's scorecard preset to a ticket.
type TemplateRequest struct {
	TicketID         int64  `json:"ticket_id,omitempty"`
	TemplateID       int64  `json:"template_id"`
	Role             string `json:"role"`
	Variant          string `json:"variant,omitempty"`
	ScorecardVariant string `json:"scorecard_variant,omitempty"`
}

// SaveTemplateRequest stores a reusable rating set on a template.
type SaveTemplateRequest struct {
	TemplateID int64               `json:"template_id"`
	Name       string              `json:"name"`
	Role       string              `json:"role"`
	Variant    string              `json:"variant,omitempty"`
	Ratings    scorecard.RatingSet `json:"ratings"`
}

// ScoreResult is the boundary output. Score is null when nothing gradable was rated
// or when a manual role has no entered score.
type ScoreResult struct {
	Score          *int                `json:"score"`
	Variant        *string             `json:"variant"`
	Mode           scorecard.ScoreMode `json:"mode"`
	Status         scorecard.Status    `json:"status"`
	AutoScorable   bool                `json:"auto_scorable"`
	NeedsSelection bool                `json:"needs_selection"`
	VariantLocked  bool                `json:"variant_locked"`
	// Ratings echoes the effective rating set, e.g. after a template replay.
	Ratings scorecard.RatingSet `json:"ratings,omitempty"`
}

// ScoreExplanation adds the per-section breakdown to a result.
type ScoreExplanation struct {
	ScoreResult
	Sections     []scorecard.SectionResult `json:"sections"`
	ActiveWeight int                       `json:"active_weight"`
}

// VariantInfo lists the rubric variants of a role.
type VariantInfo struct {
	Role              string   `json:"role"`
	Variants          []string `json:"variants"`
	RequiresSelection bool     `json:"requires_selection"`
	AutoScorable      bool     `json:"auto_scorable"`
}

type CriterionView struct {
	ID     string `json:"id"`
	Label  string `json:"label,omitempty"`
	Points []int  `json:"points"`
}

type SectionView struct {
	ID       string          `json:"id"`
	Title    string          `json:"title,omitempty"`
	Weight   int             `json:"weight"`
	Criteria []CriterionView `json:"criteria"`
}

// RubricView is a rubric definition shaped for clients.
type RubricView struct {
	Role     string        `json:"role"`
	Variant  string        `json:"variant,omitempty"`
	Title    string        `json:"title,omitempty"`
	Sections []SectionView `json:"sections"`
}

// TemplateSummary is a template carrying a preset for a role.
type TemplateSummary struct {
	TemplateID int64  `json:"template_id"`
	Name       string `json:"name"`
	Variant    string `json:"variant,omitempty"`
	Criteria   int64  `json:"criteria"`
}

// ScoreEvent is published when a ticket's score field is recomputed.
type ScoreEvent struct {
	EventID    string              `json:"event_id"`
	TicketID   int64               `json:"ticket_id"`
	Role       string              `json:"role"`
	Variant    string              `json:"variant,omitempty"`
	Score      *int                `json:"score"`
	Mode       scorecard.ScoreMode `json:"mode"`
	Status     scorecard.Status    `json:"status"`
	TemplateID int64               `json:"template_id,omitempty"`
	Values     map[string]int      `json:"scorecard_values,omitempty"`
	OccurredAt time.Time           `json:"occurred_at"`
}
