package service

import (
	"context"

	"github.com/godilite/qa-scorecard/internal/repository/models"
)

// TemplateScorecardRepository defines the storage operations for template presets.
type TemplateScorecardRepository interface {
	GetTemplateScorecard(ctx context.Context, templateID int64, role, variant string) ([]models.TemplateRating, error)
	ListTemplates(ctx context.Context, role string) ([]models.TemplateSummary, error)
	SaveTemplateScorecard(ctx context.Context, templateID int64, name, role, variant string, ratings []models.TemplateRating) error
}

// Publisher announces score changes to the external ticket store.
type Publisher interface {
	Publish(subject string, data any) error
}
