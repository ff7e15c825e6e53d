package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/godilite/qa-scorecard/internal/events"
	"github.com/godilite/qa-scorecard/internal/metrics"
	"github.com/godilite/qa-scorecard/internal/repository/models"
	"github.com/godilite/qa-scorecard/internal/scorecard"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	dbTimeout = 1 * time.Second
)

var (
	ErrInvalidRequest   = errors.New("invalid request")
	ErrRubricNotFound   = errors.New("rubric not found")
	ErrTemplateNotFound = errors.New("template scorecard not found")
	ErrStorageFailure   = errors.New("storage failure")
)

// ScoringService grades tickets against the rubric catalog and replays template presets.
type ScoringService struct {
	catalog   *scorecard.Catalog
	storage   TemplateScorecardRepository
	publisher Publisher
	metrics   *metrics.Metrics
	logger    *zap.Logger
	now       func() time.Time
}

type Option func(*ScoringService)

// WithPublisher sets where score events for tickets are sent.
func WithPublisher(p Publisher) Option {
	return func(s *ScoringService) {
		if p != nil {
			s.publisher = p
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *ScoringService) { s.metrics = m }
}

func WithClock(now func() time.Time) Option {
	return func(s *ScoringService) { s.now = now }
}

// NewScoringService creates a new ScoringService instance.
func NewScoringService(catalog *scorecard.Catalog, storage TemplateScorecardRepository, logger *zap.Logger, opts ...Option) *ScoringService {
	if catalog == nil {
		panic("catalog must not be nil")
	}
	if storage == nil {
		panic("storage must not be nil")
	}
	if logger == nil {
		l, _ := zap.NewProduction()
		logger = l
	}

	s := &ScoringService{
		catalog:   catalog,
		storage:   storage,
		publisher: events.NopPublisher{},
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CalculateScore reconciles the ticket's score field from the supplied ratings.
// Roles without a rubric are not an error: the manual score is validated and echoed.
func (s *ScoringService) CalculateScore(ctx context.Context, req ScoreRequest) (ScoreResult, error) {
	session, out, res, err := s.reconcile(req)
	if err != nil {
		return ScoreResult{}, err
	}

	s.metrics.ObserveOutcome(req.Role, out)
	s.announce(req.TicketID, 0, session, out)

	return buildResult(session, res, out), nil
}

// ExplainScore is CalculateScore plus the per-section breakdown. It does not publish.
func (s *ScoringService) ExplainScore(ctx context.Context, req ScoreRequest) (ScoreExplanation, error) {
	session, out, res, err := s.reconcile(req)
	if err != nil {
		return ScoreExplanation{}, err
	}

	exp := ScoreExplanation{
		ScoreResult: buildResult(session, res, out),
		Sections:    []scorecard.SectionResult{},
	}
	if rubric, ok := s.catalog.Lookup(session.Role, session.Variant); ok {
		breakdown := scorecard.Explain(rubric, session.Ratings)
		exp.Sections = breakdown.Sections
		exp.ActiveWeight = breakdown.ActiveWeight
	}
	return exp, nil
}

func (s *ScoringService) reconcile(req ScoreRequest) (scorecard.Session, scorecard.Outcome, scorecard.Resolution, error) {
	if strings.TrimSpace(req.Role) == "" {
		return scorecard.Session{}, scorecard.Outcome{}, scorecard.Resolution{}, fmt.Errorf("%w: role is required", ErrInvalidRequest)
	}

	session, res := s.startSession(req)

	out, err := scorecard.Reconcile(s.catalog, session, req.ManualScore)
	if err != nil {
		return session, out, res, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return session, out, res, nil
}

// startSession loads the request's ratings, falling back to the persisted integer
// encoding when no ratings were sent.
func (s *ScoringService) startSession(req ScoreRequest) (scorecard.Session, scorecard.Resolution) {
	var (
		session scorecard.Session
		res     scorecard.Resolution
		sent    int
	)
	if len(req.Ratings) == 0 && len(req.ScorecardValues) > 0 {
		session, res = scorecard.StartSessionFromIndexes(s.catalog, req.Role, req.Variant, req.ScorecardVariant, req.ScorecardValues)
		sent = len(req.ScorecardValues)
	} else {
		session, res = scorecard.StartSession(s.catalog, req.Role, req.Variant, req.ScorecardVariant, req.Ratings)
		sent = len(req.Ratings)
	}

	if sent > 0 && len(session.Ratings) == 0 {
		s.logger.Info("ratings dropped on variant change",
			zap.String("role", req.Role),
			zap.String("requested", req.Variant),
			zap.String("recorded", req.ScorecardVariant),
			zap.String("to", res.Variant),
			zap.Int("ratings", sent))
	}
	return session, res
}

func buildResult(session scorecard.Session, res scorecard.Resolution, out scorecard.Outcome) ScoreResult {
	r := ScoreResult{
		Score:          out.Score,
		Mode:           out.Mode,
		Status:         out.Status(),
		AutoScorable:   out.Mode == scorecard.ScoreModeAuto,
		NeedsSelection: res.NeedsSelection,
		VariantLocked:  res.Locked,
	}
	if session.Variant != "" {
		v := session.Variant
		r.Variant = &v
	}
	return r
}

// ListVariants reports the variants of role and whether one must be chosen.
func (s *ScoringService) ListVariants(role string) VariantInfo {
	variants := s.catalog.VariantsFor(role)
	_, base := s.catalog.Lookup(role, "")
	if variants == nil {
		variants = []string{}
	}
	return VariantInfo{
		Role:              role,
		Variants:          variants,
		RequiresSelection: s.catalog.RequiresVariantSelection(role),
		AutoScorable:      base || len(variants) > 0,
	}
}

// Roles lists every role with a rubric.
func (s *ScoringService) Roles() []string {
	return s.catalog.Roles()
}

// GetRubric returns the rubric for role. An empty variant resolves to the role's default.
func (s *ScoringService) GetRubric(role, variant string) (RubricView, error) {
	res := scorecard.ResolveVariant(s.catalog, role, variant, "")
	if variant != "" && res.Variant != variant {
		return RubricView{}, fmt.Errorf("%w: %s/%s", ErrRubricNotFound, role, variant)
	}

	def, ok := s.catalog.Lookup(role, res.Variant)
	if !ok {
		return RubricView{}, fmt.Errorf("%w: %s", ErrRubricNotFound, role)
	}

	view := RubricView{
		Role:     def.Key.Role,
		Variant:  def.Key.Variant,
		Title:    def.Title,
		Sections: make([]SectionView, 0, len(def.Sections)),
	}
	for _, sec := range def.Sections {
		sv := SectionView{ID: sec.ID, Title: sec.Title, Weight: sec.Weight}
		for _, id := range sec.Criteria {
			c := def.Criteria[id]
			sv.Criteria = append(sv.Criteria, CriterionView{ID: id, Label: c.Label, Points: c.Points})
		}
		view.Sections = append(view.Sections, sv)
	}
	return view, nil
}

// ApplyTemplate replays a template's stored rating set onto a fresh session and scores it.
func (s *ScoringService) ApplyTemplate(ctx context.Context, req TemplateRequest) (ScoreResult, error) {
	if strings.TrimSpace(req.Role) == "" || req.TemplateID <= 0 {
		return ScoreResult{}, fmt.Errorf("%w: role and template_id are required", ErrInvalidRequest)
	}

	res := scorecard.ResolveVariant(s.catalog, req.Role, req.Variant, req.ScorecardVariant)
	if !scorecard.AutoScorable(s.catalog, req.Role, res.Variant) {
		return ScoreResult{}, fmt.Errorf("%w: %s", ErrRubricNotFound, req.Role)
	}

	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := s.storage.GetTemplateScorecard(dbCtx, req.TemplateID, req.Role, res.Variant)
	if err != nil {
		s.metrics.ObserveTemplate("error")
		return ScoreResult{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	if len(rows) == 0 {
		s.metrics.ObserveTemplate("not_found")
		return ScoreResult{}, fmt.Errorf("%w: template %d for %s", ErrTemplateNotFound, req.TemplateID, scorecard.Key{Role: req.Role, Variant: res.Variant})
	}

	session := scorecard.NewSession(req.Role, res.Variant).Replay(presetFromRows(rows))
	out, err := scorecard.Reconcile(s.catalog, session, nil)
	if err != nil {
		return ScoreResult{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	s.logger.Info("applied template scorecard",
		zap.Int64("template_id", req.TemplateID),
		zap.String("role", req.Role),
		zap.String("variant", res.Variant),
		zap.Int("ratings", len(rows)))

	s.metrics.ObserveTemplate("applied")
	s.metrics.ObserveOutcome(req.Role, out)
	s.announce(req.TicketID, req.TemplateID, session, out)

	result := buildResult(session, res, out)
	result.Ratings = session.Ratings
	return result, nil
}

// SaveTemplate stores a reusable rating set for a rubric on a template.
func (s *ScoringService) SaveTemplate(ctx context.Context, req SaveTemplateRequest) error {
	if strings.TrimSpace(req.Role) == "" || req.TemplateID <= 0 || strings.TrimSpace(req.Name) == "" {
		return fmt.Errorf("%w: template_id, name and role are required", ErrInvalidRequest)
	}

	rubric, ok := s.catalog.Lookup(req.Role, req.Variant)
	if !ok {
		return fmt.Errorf("%w: %s", ErrRubricNotFound, scorecard.Key{Role: req.Role, Variant: req.Variant})
	}

	rows := make([]models.TemplateRating, 0, len(req.Ratings))
	for id, rating := range req.Ratings {
		c, ok := rubric.Criteria[id]
		if !ok {
			return fmt.Errorf("%w: criterion %q is not part of %s", ErrInvalidRequest, id, rubric.Key)
		}
		row := models.TemplateRating{Criterion: id}
		if i, graded := rating.Index(); graded {
			if i >= len(c.Points) {
				return fmt.Errorf("%w: criterion %q has no option %d", ErrInvalidRequest, id, i)
			}
			row.OptionIndex = sql.NullInt64{Int64: int64(i), Valid: true}
		}
		rows = append(rows, row)
	}

	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	if err := s.storage.SaveTemplateScorecard(dbCtx, req.TemplateID, req.Name, req.Role, req.Variant, rows); err != nil {
		s.logger.Error("failed to save template scorecard", zap.Int64("template_id", req.TemplateID), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return nil
}

// ListTemplates returns the templates that carry a preset for role.
func (s *ScoringService) ListTemplates(ctx context.Context, role string) ([]TemplateSummary, error) {
	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := s.storage.ListTemplates(dbCtx, role)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	out := make([]TemplateSummary, 0, len(rows))
	for _, r := range rows {
		out = append(out, TemplateSummary{
			TemplateID: r.TemplateID,
			Name:       r.Name,
			Variant:    r.Variant,
			Criteria:   r.Criteria,
		})
	}
	return out, nil
}

func presetFromRows(rows []models.TemplateRating) scorecard.RatingSet {
	preset := make(scorecard.RatingSet, len(rows))
	for _, r := range rows {
		if r.OptionIndex.Valid {
			preset[r.Criterion] = scorecard.Graded(int(r.OptionIndex.Int64))
		} else {
			preset[r.Criterion] = scorecard.NotApplicable()
		}
	}
	return preset
}

// announce publishes the new score field of a ticket. Publishing is best effort.
func (s *ScoringService) announce(ticketID, templateID int64, session scorecard.Session, out scorecard.Outcome) {
	if ticketID <= 0 {
		return
	}

	ev := ScoreEvent{
		EventID:    uuid.NewString(),
		TicketID:   ticketID,
		Role:       session.Role,
		Variant:    session.Variant,
		Score:      out.Score,
		Mode:       out.Mode,
		Status:     out.Status(),
		TemplateID: templateID,
		OccurredAt: s.now().UTC(),
	}
	if rubric, ok := s.catalog.Lookup(session.Role, session.Variant); ok {
		ev.Values = session.Ratings.Indexes(rubric)
	}

	if err := s.publisher.Publish(events.SubjectTicketScored(ticketID), ev); err != nil {
		s.logger.Warn("failed to publish score event",
			zap.Int64("ticket_id", ticketID),
			zap.Error(err))
	}
}
