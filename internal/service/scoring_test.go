package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/godilite/qa-scorecard/internal/metrics"
	"github.com/godilite/qa-scorecard/internal/repository/models"
	"github.com/godilite/qa-scorecard/internal/rubrics"
	"github.com/godilite/qa-scorecard/internal/scorecard"
	"github.com/godilite/qa-scorecard/internal/service/mocks"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testCatalog(t testing.TB) *scorecard.Catalog {
	t.Helper()
	c, err := rubrics.Default()
	require.NoError(t, err)
	return c
}

func graded(i int64) sql.NullInt64 { return sql.NullInt64{Int64: i, Valid: true} }

var fixedNow = time.Date(2025, 10, 18, 10, 0, 0, 0, time.UTC)

// TestNewScoringService tests the constructor
func TestNewScoringService(t *testing.T) {
	t.Run("valid parameters", func(t *testing.T) {
		mockRepo := &mocks.MockTemplateScorecardRepository{}
		logger := zap.NewNop()
		catalog := testCatalog(t)

		service := NewScoringService(catalog, mockRepo, logger)

		assert.NotNil(t, service)
		assert.Equal(t, mockRepo, service.storage)
		assert.Equal(t, logger, service.logger)
		assert.Same(t, catalog, service.catalog)
	})

	t.Run("nil catalog panics", func(t *testing.T) {
		assert.Panics(t, func() {
			NewScoringService(nil, &mocks.MockTemplateScorecardRepository{}, zap.NewNop())
		})
	})

	t.Run("nil storage panics", func(t *testing.T) {
		assert.Panics(t, func() {
			NewScoringService(testCatalog(t), nil, zap.NewNop())
		})
	})

	t.Run("nil logger gets default", func(t *testing.T) {
		service := NewScoringService(testCatalog(t), &mocks.MockTemplateScorecardRepository{}, nil)

		assert.NotNil(t, service)
		assert.NotNil(t, service.logger)
	})

	t.Run("nil publisher keeps the default", func(t *testing.T) {
		service := NewScoringService(testCatalog(t), &mocks.MockTemplateScorecardRepository{}, zap.NewNop(), WithPublisher(nil))

		assert.NotNil(t, service.publisher)
	})
}

// TestCalculateScore tests score reconciliation through the service
func TestCalculateScore(t *testing.T) {
	ctx := context.Background()

	t.Run("auto-scorable role", func(t *testing.T) {
		svc := NewScoringService(testCatalog(t), &mocks.MockTemplateScorecardRepository{}, zap.NewNop())

		result, err := svc.CalculateScore(ctx, ScoreRequest{
			Role: "tier2_agent",
			Ratings: scorecard.RatingSet{
				"communication": scorecard.Graded(2),
				"knowledge":     scorecard.Graded(1),
			},
		})

		require.NoError(t, err)
		require.NotNil(t, result.Score)
		assert.Equal(t, 50, *result.Score)
		assert.Nil(t, result.Variant)
		assert.True(t, result.AutoScorable)
		assert.Equal(t, scorecard.ScoreModeAuto, result.Mode)
		assert.Equal(t, scorecard.StatusGraded, result.Status)
	})

	t.Run("nothing rated yields null", func(t *testing.T) {
		svc := NewScoringService(testCatalog(t), &mocks.MockTemplateScorecardRepository{}, zap.NewNop())

		result, err := svc.CalculateScore(ctx, ScoreRequest{
			Role:    "tier2_agent",
			Ratings: scorecard.RatingSet{"empathy": scorecard.NotApplicable()},
		})

		require.NoError(t, err)
		assert.Nil(t, result.Score)
		assert.Equal(t, scorecard.StatusUngraded, result.Status)
	})

	t.Run("role without rubric uses manual score", func(t *testing.T) {
		svc := NewScoringService(testCatalog(t), &mocks.MockTemplateScorecardRepository{}, zap.NewNop())
		manual := 64

		result, err := svc.CalculateScore(ctx, ScoreRequest{
			Role:        "billing_specialist",
			Ratings:     scorecard.RatingSet{"communication": scorecard.Graded(0)},
			ManualScore: &manual,
		})

		require.NoError(t, err)
		require.NotNil(t, result.Score)
		assert.Equal(t, 64, *result.Score)
		assert.False(t, result.AutoScorable)
		assert.Equal(t, scorecard.ScoreModeManual, result.Mode)
	})

	t.Run("manual score out of range", func(t *testing.T) {
		svc := NewScoringService(testCatalog(t), &mocks.MockTemplateScorecardRepository{}, zap.NewNop())
		manual := 140

		_, err := svc.CalculateScore(ctx, ScoreRequest{Role: "billing_specialist", ManualScore: &manual})

		assert.ErrorIs(t, err, ErrInvalidRequest)
		assert.ErrorIs(t, err, scorecard.ErrManualScoreOutOfRange)
	})

	t.Run("missing role", func(t *testing.T) {
		svc := NewScoringService(testCatalog(t), &mocks.MockTemplateScorecardRepository{}, zap.NewNop())

		_, err := svc.CalculateScore(ctx, ScoreRequest{Role: "  "})

		assert.ErrorIs(t, err, ErrInvalidRequest)
	})

	t.Run("variant defaults and asks for selection", func(t *testing.T) {
		svc := NewScoringService(testCatalog(t), &mocks.MockTemplateScorecardRepository{}, zap.NewNop())

		result, err := svc.CalculateScore(ctx, ScoreRequest{
			Role:    "senior_agent",
			Ratings: scorecard.RatingSet{"call_control": scorecard.Graded(0)},
		})

		require.NoError(t, err)
		require.NotNil(t, result.Variant)
		assert.Equal(t, "escalations", *result.Variant)
		assert.True(t, result.NeedsSelection)
		assert.False(t, result.VariantLocked)
		require.NotNil(t, result.Score)
		assert.Equal(t, 100, *result.Score)
	})

	t.Run("persisted variant is locked", func(t *testing.T) {
		svc := NewScoringService(testCatalog(t), &mocks.MockTemplateScorecardRepository{}, zap.NewNop())

		result, err := svc.CalculateScore(ctx, ScoreRequest{
			Role:             "senior_agent",
			Variant:          "escalations",
			ScorecardVariant: "technical",
			Ratings:          scorecard.RatingSet{"diagnosis": scorecard.Graded(1)},
		})

		require.NoError(t, err)
		require.NotNil(t, result.Variant)
		assert.Equal(t, "technical", *result.Variant)
		assert.True(t, result.VariantLocked)
		require.NotNil(t, result.Score)
		assert.Equal(t, 60, *result.Score)
	})

	t.Run("ratings under a retired variant are dropped", func(t *testing.T) {
		svc := NewScoringService(testCatalog(t), &mocks.MockTemplateScorecardRepository{}, zap.NewNop())

		result, err := svc.CalculateScore(ctx, ScoreRequest{
			Role:             "senior_agent",
			Variant:          "technical",
			ScorecardVariant: "legacy",
			Ratings:          scorecard.RatingSet{"diagnosis": scorecard.Graded(0)},
		})

		require.NoError(t, err)
		assert.Nil(t, result.Score)
		require.NotNil(t, result.Variant)
		assert.Equal(t, "technical", *result.Variant)
	})

	t.Run("ratings under an unknown requested variant are dropped", func(t *testing.T) {
		svc := NewScoringService(testCatalog(t), &mocks.MockTemplateScorecardRepository{}, zap.NewNop())

		result, err := svc.CalculateScore(ctx, ScoreRequest{
			Role:    "senior_agent",
			Variant: "escalatons",
			Ratings: scorecard.RatingSet{"call_control": scorecard.Graded(0)},
		})

		require.NoError(t, err)
		assert.Nil(t, result.Score)
		assert.Equal(t, scorecard.StatusUngraded, result.Status)
		require.NotNil(t, result.Variant)
		assert.Equal(t, "escalations", *result.Variant)
		assert.True(t, result.NeedsSelection)
	})

	t.Run("decodes persisted scorecard values", func(t *testing.T) {
		svc := NewScoringService(testCatalog(t), &mocks.MockTemplateScorecardRepository{}, zap.NewNop())

		result, err := svc.CalculateScore(ctx, ScoreRequest{
			Role:            "tier2_agent",
			ScorecardValues: map[string]int{"communication": 2, "knowledge": 1, "empathy": 4},
		})

		require.NoError(t, err)
		require.NotNil(t, result.Score)
		assert.Equal(t, 50, *result.Score)
	})

	t.Run("persisted values of a retired variant are dropped", func(t *testing.T) {
		svc := NewScoringService(testCatalog(t), &mocks.MockTemplateScorecardRepository{}, zap.NewNop())

		result, err := svc.CalculateScore(ctx, ScoreRequest{
			Role:             "senior_agent",
			ScorecardVariant: "legacy",
			ScorecardValues:  map[string]int{"call_control": 0},
		})

		require.NoError(t, err)
		assert.Nil(t, result.Score)
	})

	t.Run("ratings take precedence over persisted values", func(t *testing.T) {
		svc := NewScoringService(testCatalog(t), &mocks.MockTemplateScorecardRepository{}, zap.NewNop())

		result, err := svc.CalculateScore(ctx, ScoreRequest{
			Role:            "tier2_agent",
			Ratings:         scorecard.RatingSet{"communication": scorecard.Graded(0)},
			ScorecardValues: map[string]int{"communication": 3},
		})

		require.NoError(t, err)
		require.NotNil(t, result.Score)
		assert.Equal(t, 100, *result.Score)
	})

	t.Run("publishes when a ticket is given", func(t *testing.T) {
		pub := &mocks.MockPublisher{}
		svc := NewScoringService(testCatalog(t), &mocks.MockTemplateScorecardRepository{}, zap.NewNop(),
			WithPublisher(pub),
			WithClock(func() time.Time { return fixedNow }))

		_, err := svc.CalculateScore(ctx, ScoreRequest{
			TicketID: 501,
			Role:     "tier2_agent",
			Ratings: scorecard.RatingSet{
				"communication": scorecard.Graded(0),
				"escalation":    scorecard.NotApplicable(),
			},
		})
		require.NoError(t, err)

		msgs := pub.Messages()
		require.Len(t, msgs, 1)
		assert.Equal(t, "scorecard.ticket.501.scored", msgs[0].Subject)

		ev, ok := msgs[0].Data.(ScoreEvent)
		require.True(t, ok)
		assert.NotEmpty(t, ev.EventID)
		assert.Equal(t, int64(501), ev.TicketID)
		assert.Equal(t, fixedNow, ev.OccurredAt)
		require.NotNil(t, ev.Score)
		assert.Equal(t, 100, *ev.Score)
		assert.Equal(t, map[string]int{"communication": 0, "escalation": 3}, ev.Values)
	})

	t.Run("publish failure does not fail scoring", func(t *testing.T) {
		pub := &mocks.MockPublisher{Err: errors.New("broker down")}
		svc := NewScoringService(testCatalog(t), &mocks.MockTemplateScorecardRepository{}, zap.NewNop(), WithPublisher(pub))

		result, err := svc.CalculateScore(ctx, ScoreRequest{TicketID: 1, Role: "tier2_agent"})

		require.NoError(t, err)
		assert.Nil(t, result.Score)
	})

	t.Run("records metrics", func(t *testing.T) {
		svc := NewScoringService(testCatalog(t), &mocks.MockTemplateScorecardRepository{}, zap.NewNop(),
			WithMetrics(metrics.New(prometheus.NewRegistry())))

		_, err := svc.CalculateScore(ctx, ScoreRequest{Role: "tier2_agent"})
		assert.NoError(t, err)
	})
}

func TestExplainScore(t *testing.T) {
	svc := NewScoringService(testCatalog(t), &mocks.MockTemplateScorecardRepository{}, zap.NewNop())

	t.Run("auto-scorable", func(t *testing.T) {
		exp, err := svc.ExplainScore(context.Background(), ScoreRequest{
			Role:    "tier2_agent",
			Ratings: scorecard.RatingSet{"communication": scorecard.Graded(2), "knowledge": scorecard.Graded(1)},
		})

		require.NoError(t, err)
		require.NotNil(t, exp.Score)
		assert.Equal(t, 50, *exp.Score)
		assert.Equal(t, 55, exp.ActiveWeight)
		assert.Len(t, exp.Sections, 4)
	})

	t.Run("manual role has no sections", func(t *testing.T) {
		exp, err := svc.ExplainScore(context.Background(), ScoreRequest{Role: "billing_specialist"})

		require.NoError(t, err)
		assert.Empty(t, exp.Sections)
		assert.False(t, exp.AutoScorable)
	})
}

func TestListVariantsAndRubrics(t *testing.T) {
	svc := NewScoringService(testCatalog(t), &mocks.MockTemplateScorecardRepository{}, zap.NewNop())

	t.Run("variants", func(t *testing.T) {
		info := svc.ListVariants("senior_agent")
		assert.Equal(t, []string{"escalations", "technical"}, info.Variants)
		assert.True(t, info.RequiresSelection)
		assert.True(t, info.AutoScorable)

		info = svc.ListVariants("tier1_agent")
		assert.Equal(t, []string{}, info.Variants)
		assert.True(t, info.AutoScorable)

		info = svc.ListVariants("billing_specialist")
		assert.False(t, info.AutoScorable)
	})

	t.Run("rubric", func(t *testing.T) {
		view, err := svc.GetRubric("senior_agent", "")
		require.NoError(t, err)
		assert.Equal(t, "escalations", view.Variant)

		view, err = svc.GetRubric("tier2_agent", "")
		require.NoError(t, err)
		require.Len(t, view.Sections, 4)
		assert.Equal(t, "customer_experience", view.Sections[0].ID)
		assert.Equal(t, []int{12, 8, 5, 2}, view.Sections[0].Criteria[0].Points)
	})

	t.Run("unknown rubric", func(t *testing.T) {
		_, err := svc.GetRubric("senior_agent", "retired")
		assert.ErrorIs(t, err, ErrRubricNotFound)

		_, err = svc.GetRubric("billing_specialist", "")
		assert.ErrorIs(t, err, ErrRubricNotFound)
	})

	assert.Equal(t, []string{"senior_agent", "tier1_agent", "tier2_agent"}, svc.Roles())
}

// TestApplyTemplate tests replaying stored presets
func TestApplyTemplate(t *testing.T) {
	ctx := context.Background()

	t.Run("replays preset and scores it", func(t *testing.T) {
		mockRepo := &mocks.MockTemplateScorecardRepository{
			GetTemplateScorecardFunc: func(ctx context.Context, templateID int64, role, variant string) ([]models.TemplateRating, error) {
				assert.Equal(t, int64(12), templateID)
				assert.Equal(t, "tier2_agent", role)
				assert.Equal(t, "", variant)
				return []models.TemplateRating{
					{Criterion: "communication", OptionIndex: graded(2)},
					{Criterion: "knowledge", OptionIndex: graded(1)},
					{Criterion: "escalation", OptionIndex: sql.NullInt64{}},
				}, nil
			},
		}
		pub := &mocks.MockPublisher{}
		svc := NewScoringService(testCatalog(t), mockRepo, zap.NewNop(), WithPublisher(pub))

		result, err := svc.ApplyTemplate(ctx, TemplateRequest{TicketID: 9, TemplateID: 12, Role: "tier2_agent"})

		require.NoError(t, err)
		require.NotNil(t, result.Score)
		assert.Equal(t, 50, *result.Score)
		assert.Equal(t, scorecard.RatingSet{
			"communication": scorecard.Graded(2),
			"knowledge":     scorecard.Graded(1),
			"escalation":    scorecard.NotApplicable(),
		}, result.Ratings)

		msgs := pub.Messages()
		require.Len(t, msgs, 1)
		assert.Equal(t, int64(12), msgs[0].Data.(ScoreEvent).TemplateID)
	})

	t.Run("replayed preset scores like fresh ratings", func(t *testing.T) {
		mockRepo := &mocks.MockTemplateScorecardRepository{
			GetTemplateScorecardFunc: func(ctx context.Context, templateID int64, role, variant string) ([]models.TemplateRating, error) {
				assert.Equal(t, "technical", variant)
				return []models.TemplateRating{{Criterion: "diagnosis", OptionIndex: graded(1)}}, nil
			},
		}
		svc := NewScoringService(testCatalog(t), mockRepo, zap.NewNop())

		applied, err := svc.ApplyTemplate(ctx, TemplateRequest{TemplateID: 3, Role: "senior_agent", Variant: "technical"})
		require.NoError(t, err)

		fresh, err := svc.CalculateScore(ctx, ScoreRequest{
			Role:    "senior_agent",
			Variant: "technical",
			Ratings: scorecard.RatingSet{"diagnosis": scorecard.Graded(1)},
		})
		require.NoError(t, err)
		assert.Equal(t, *fresh.Score, *applied.Score)
	})

	t.Run("no preset", func(t *testing.T) {
		mockRepo := &mocks.MockTemplateScorecardRepository{
			GetTemplateScorecardFunc: func(ctx context.Context, templateID int64, role, variant string) ([]models.TemplateRating, error) {
				return []models.TemplateRating{}, nil
			},
		}
		svc := NewScoringService(testCatalog(t), mockRepo, zap.NewNop())

		_, err := svc.ApplyTemplate(ctx, TemplateRequest{TemplateID: 3, Role: "tier1_agent"})
		assert.ErrorIs(t, err, ErrTemplateNotFound)
	})

	t.Run("storage failure", func(t *testing.T) {
		mockRepo := &mocks.MockTemplateScorecardRepository{
			GetTemplateScorecardFunc: func(ctx context.Context, templateID int64, role, variant string) ([]models.TemplateRating, error) {
				return nil, errors.New("database connection failed")
			},
		}
		svc := NewScoringService(testCatalog(t), mockRepo, zap.NewNop())

		_, err := svc.ApplyTemplate(ctx, TemplateRequest{TemplateID: 3, Role: "tier1_agent"})
		assert.ErrorIs(t, err, ErrStorageFailure)
		assert.Contains(t, err.Error(), "database connection failed")
	})

	t.Run("role without rubric", func(t *testing.T) {
		svc := NewScoringService(testCatalog(t), &mocks.MockTemplateScorecardRepository{}, zap.NewNop())

		_, err := svc.ApplyTemplate(ctx, TemplateRequest{TemplateID: 3, Role: "billing_specialist"})
		assert.ErrorIs(t, err, ErrRubricNotFound)
	})

	t.Run("invalid request", func(t *testing.T) {
		svc := NewScoringService(testCatalog(t), &mocks.MockTemplateScorecardRepository{}, zap.NewNop())

		_, err := svc.ApplyTemplate(ctx, TemplateRequest{Role: "tier1_agent"})
		assert.ErrorIs(t, err, ErrInvalidRequest)
	})
}

func TestSaveTemplate(t *testing.T) {
	ctx := context.Background()

	t.Run("stores ratings", func(t *testing.T) {
		var saved []models.TemplateRating
		mockRepo := &mocks.MockTemplateScorecardRepository{
			SaveTemplateScorecardFunc: func(ctx context.Context, templateID int64, name, role, variant string, ratings []models.TemplateRating) error {
				assert.Equal(t, int64(4), templateID)
				assert.Equal(t, "Outage", name)
				assert.Equal(t, "senior_agent", role)
				assert.Equal(t, "escalations", variant)
				saved = ratings
				return nil
			},
		}
		svc := NewScoringService(testCatalog(t), mockRepo, zap.NewNop())

		err := svc.SaveTemplate(ctx, SaveTemplateRequest{
			TemplateID: 4,
			Name:       "Outage",
			Role:       "senior_agent",
			Variant:    "escalations",
			Ratings: scorecard.RatingSet{
				"root_cause":       scorecard.Graded(1),
				"incident_summary": scorecard.NotApplicable(),
			},
		})

		require.NoError(t, err)
		assert.ElementsMatch(t, []models.TemplateRating{
			{Criterion: "root_cause", OptionIndex: graded(1)},
			{Criterion: "incident_summary"},
		}, saved)
	})

	t.Run("rejects criteria outside the rubric", func(t *testing.T) {
		svc := NewScoringService(testCatalog(t), &mocks.MockTemplateScorecardRepository{}, zap.NewNop())

		err := svc.SaveTemplate(ctx, SaveTemplateRequest{
			TemplateID: 4, Name: "Outage", Role: "senior_agent", Variant: "escalations",
			Ratings: scorecard.RatingSet{"diagnosis": scorecard.Graded(0)},
		})
		assert.ErrorIs(t, err, ErrInvalidRequest)
	})

	t.Run("rejects options outside the point table", func(t *testing.T) {
		svc := NewScoringService(testCatalog(t), &mocks.MockTemplateScorecardRepository{}, zap.NewNop())

		err := svc.SaveTemplate(ctx, SaveTemplateRequest{
			TemplateID: 4, Name: "Outage", Role: "tier2_agent",
			Ratings: scorecard.RatingSet{"escalation": scorecard.Graded(3)},
		})
		assert.ErrorIs(t, err, ErrInvalidRequest)
	})

	t.Run("requires an exact rubric", func(t *testing.T) {
		svc := NewScoringService(testCatalog(t), &mocks.MockTemplateScorecardRepository{}, zap.NewNop())

		err := svc.SaveTemplate(ctx, SaveTemplateRequest{TemplateID: 4, Name: "Outage", Role: "senior_agent"})
		assert.ErrorIs(t, err, ErrRubricNotFound)
	})

	t.Run("storage failure", func(t *testing.T) {
		mockRepo := &mocks.MockTemplateScorecardRepository{
			SaveTemplateScorecardFunc: func(ctx context.Context, templateID int64, name, role, variant string, ratings []models.TemplateRating) error {
				return errors.New("disk full")
			},
		}
		svc := NewScoringService(testCatalog(t), mockRepo, zap.NewNop())

		err := svc.SaveTemplate(ctx, SaveTemplateRequest{TemplateID: 4, Name: "Outage", Role: "tier1_agent"})
		assert.ErrorIs(t, err, ErrStorageFailure)
	})
}

func TestListTemplates(t *testing.T) {
	ctx := context.Background()

	t.Run("maps rows", func(t *testing.T) {
		mockRepo := &mocks.MockTemplateScorecardRepository{
			ListTemplatesFunc: func(ctx context.Context, role string) ([]models.TemplateSummary, error) {
				return []models.TemplateSummary{{TemplateID: 1, Name: "Refund", Criteria: 3}}, nil
			},
		}
		svc := NewScoringService(testCatalog(t), mockRepo, zap.NewNop())

		list, err := svc.ListTemplates(ctx, "tier2_agent")
		require.NoError(t, err)
		assert.Equal(t, []TemplateSummary{{TemplateID: 1, Name: "Refund", Criteria: 3}}, list)
	})

	t.Run("storage failure", func(t *testing.T) {
		mockRepo := &mocks.MockTemplateScorecardRepository{
			ListTemplatesFunc: func(ctx context.Context, role string) ([]models.TemplateSummary, error) {
				return nil, errors.New("query timeout")
			},
		}
		svc := NewScoringService(testCatalog(t), mockRepo, zap.NewNop())

		list, err := svc.ListTemplates(ctx, "tier2_agent")
		assert.ErrorIs(t, err, ErrStorageFailure)
		assert.Nil(t, list)
	})
}
