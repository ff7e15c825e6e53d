package mocks

import (
	"context"
	"errors"
	"sync"

	"github.com/godilite/qa-scorecard/internal/repository/models"
)

// MockTemplateScorecardRepository is a mock implementation of the
// TemplateScorecardRepository interface for testing the service layer.
type MockTemplateScorecardRepository struct {
	GetTemplateScorecardFunc  func(ctx context.Context, templateID int64, role, variant string) ([]models.TemplateRating, error)
	ListTemplatesFunc         func(ctx context.Context, role string) ([]models.TemplateSummary, error)
	SaveTemplateScorecardFunc func(ctx context.Context, templateID int64, name, role, variant string, ratings []models.TemplateRating) error
}

// GetTemplateScorecard implements the TemplateScorecardRepository interface
func (m *MockTemplateScorecardRepository) GetTemplateScorecard(ctx context.Context, templateID int64, role, variant string) ([]models.TemplateRating, error) {
	if m.GetTemplateScorecardFunc != nil {
		return m.GetTemplateScorecardFunc(ctx, templateID, role, variant)
	}
	return nil, errors.New("GetTemplateScorecardFunc not implemented")
}

// ListTemplates implements the TemplateScorecardRepository interface
func (m *MockTemplateScorecardRepository) ListTemplates(ctx context.Context, role string) ([]models.TemplateSummary, error) {
	if m.ListTemplatesFunc != nil {
		return m.ListTemplatesFunc(ctx, role)
	}
	return nil, errors.New("ListTemplatesFunc not implemented")
}

// SaveTemplateScorecard implements the TemplateScorecardRepository interface
func (m *MockTemplateScorecardRepository) SaveTemplateScorecard(ctx context.Context, templateID int64, name, role, variant string, ratings []models.TemplateRating) error {
	if m.SaveTemplateScorecardFunc != nil {
		return m.SaveTemplateScorecardFunc(ctx, templateID, name, role, variant, ratings)
	}
	return errors.New("SaveTemplateScorecardFunc not implemented")
}

// Published is one message captured by MockPublisher.
type Published struct {
	Subject string
	Data    any
}

// MockPublisher records published events.
type MockPublisher struct {
	mu        sync.Mutex
	Err       error
	Published []Published
}

// Publish implements the Publisher interface
func (m *MockPublisher) Publish(subject string, data any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Published = append(m.Published, Published{Subject: subject, Data: data})
	return nil
}

// Messages returns a copy of the captured events.
func (m *MockPublisher) Messages() []Published {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Published(nil), m.Published...)
}
