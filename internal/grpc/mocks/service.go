package mocks

import (
	"context"
	"errors"

	"github.com/godilite/qa-scorecard/internal/service"
)

// MockScoringService is a mock implementation of the ScoringService interface
// for testing the handler layer. It uses function-based mocking for flexibility.
type MockScoringService struct {
	CalculateScoreFunc func(ctx context.Context, req service.ScoreRequest) (service.ScoreResult, error)
	ExplainScoreFunc   func(ctx context.Context, req service.ScoreRequest) (service.ScoreExplanation, error)
	RolesFunc          func() []string
	ListVariantsFunc   func(role string) service.VariantInfo
	GetRubricFunc      func(role, variant string) (service.RubricView, error)
	ApplyTemplateFunc  func(ctx context.Context, req service.TemplateRequest) (service.ScoreResult, error)
	SaveTemplateFunc   func(ctx context.Context, req service.SaveTemplateRequest) error
	ListTemplatesFunc  func(ctx context.Context, role string) ([]service.TemplateSummary, error)
}

// CalculateScore implements the ScoringService interface
func (m *MockScoringService) CalculateScore(ctx context.Context, req service.ScoreRequest) (service.ScoreResult, error) {
	if m.CalculateScoreFunc != nil {
		return m.CalculateScoreFunc(ctx, req)
	}
	return service.ScoreResult{}, errors.New("CalculateScoreFunc not implemented")
}

// ExplainScore implements the ScoringService interface
func (m *MockScoringService) ExplainScore(ctx context.Context, req service.ScoreRequest) (service.ScoreExplanation, error) {
	if m.ExplainScoreFunc != nil {
		return m.ExplainScoreFunc(ctx, req)
	}
	return service.ScoreExplanation{}, errors.New("ExplainScoreFunc not implemented")
}

// Roles implements the ScoringService interface
func (m *MockScoringService) Roles() []string {
	if m.RolesFunc != nil {
		return m.RolesFunc()
	}
	return nil
}

// ListVariants implements the ScoringService interface
func (m *MockScoringService) ListVariants(role string) service.VariantInfo {
	if m.ListVariantsFunc != nil {
		return m.ListVariantsFunc(role)
	}
	return service.VariantInfo{Role: role, Variants: []string{}}
}

// GetRubric implements the ScoringService interface
func (m *MockScoringService) GetRubric(role, variant string) (service.RubricView, error) {
	if m.GetRubricFunc != nil {
		return m.GetRubricFunc(role, variant)
	}
	return service.RubricView{}, errors.New("GetRubricFunc not implemented")
}

// ApplyTemplate implements the ScoringService interface
func (m *MockScoringService) ApplyTemplate(ctx context.Context, req service.TemplateRequest) (service.ScoreResult, error) {
	if m.ApplyTemplateFunc != nil {
		return m.ApplyTemplateFunc(ctx, req)
	}
	return service.ScoreResult{}, errors.New("ApplyTemplateFunc not implemented")
}

// SaveTemplate implements the ScoringService interface
func (m *MockScoringService) SaveTemplate(ctx context.Context, req service.SaveTemplateRequest) error {
	if m.SaveTemplateFunc != nil {
		return m.SaveTemplateFunc(ctx, req)
	}
	return errors.New("SaveTemplateFunc not implemented")
}

// ListTemplates implements the ScoringService interface
func (m *MockScoringService) ListTemplates(ctx context.Context, role string) ([]service.TemplateSummary, error) {
	if m.ListTemplatesFunc != nil {
		return m.ListTemplatesFunc(ctx, role)
	}
	return nil, errors.New("ListTemplatesFunc not implemented")
}
