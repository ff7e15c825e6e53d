package grpc

import (
	"context"

	"github.com/godilite/qa-scorecard/internal/service"
)

// ScoringService is the part of the scoring service exposed over gRPC.
type ScoringService interface {
	CalculateScore(ctx context.Context, req service.ScoreRequest) (service.ScoreResult, error)
	ExplainScore(ctx context.Context, req service.ScoreRequest) (service.ScoreExplanation, error)
	Roles() []string
	ListVariants(role string) service.VariantInfo
	GetRubric(role, variant string) (service.RubricView, error)
	ApplyTemplate(ctx context.Context, req service.TemplateRequest) (service.ScoreResult, error)
	SaveTemplate(ctx context.Context, req service.SaveTemplateRequest) error
	ListTemplates(ctx context.Context, role string) ([]service.TemplateSummary, error)
}
