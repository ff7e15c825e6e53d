package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/godilite/qa-scorecard/internal/repository/models"
	dbbuilder "github.com/godilite/qa-scorecard/pkg/database"
)

const schema = `
CREATE TABLE IF NOT EXISTS templates (
	id   BIGINT PRIMARY KEY,
	name TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS template_scorecards (
	template_id  BIGINT NOT NULL REFERENCES templates(id),
	role         TEXT NOT NULL,
	variant      TEXT NOT NULL DEFAULT '',
	criterion    TEXT NOT NULL,
	option_index INTEGER,
	PRIMARY KEY (template_id, role, variant, criterion)
);
`

// TemplateScorecardRepository reads and writes the scorecard presets stored on
// macro templates. Presets are keyed by template, role and variant.
type TemplateScorecardRepository struct {
	db     *sql.DB
	driver string
}

func NewTemplateScorecardRepository(db *sql.DB, driver string) *TemplateScorecardRepository {
	return &TemplateScorecardRepository{db: db, driver: driver}
}

func (r *TemplateScorecardRepository) q(query string) string {
	return dbbuilder.Rebind(r.driver, query)
}

// EnsureSchema creates the preset tables when they do not exist.
func (r *TemplateScorecardRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// GetTemplateScorecard returns the stored ratings of one preset, ordered by criterion.
// An empty result means the template has no preset for the role and variant.
func (r *TemplateScorecardRepository) GetTemplateScorecard(ctx context.Context, templateID int64, role, variant string) ([]models.TemplateRating, error) {
	const query = `
		SELECT criterion, option_index
		FROM template_scorecards
		WHERE template_id = ? AND role = ? AND variant = ?
		ORDER BY criterion
	`

	rows, err := r.db.QueryContext(ctx, r.q(query), templateID, role, variant)
	if err != nil {
		return nil, fmt.Errorf("query GetTemplateScorecard: %w", err)
	}
	defer rows.Close()

	var results []models.TemplateRating
	for rows.Next() {
		var tr models.TemplateRating
		if err := rows.Scan(&tr.Criterion, &tr.OptionIndex); err != nil {
			return nil, fmt.Errorf("scan GetTemplateScorecard row: %w", err)
		}
		results = append(results, tr)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate GetTemplateScorecard: %w", err)
	}
	return results, nil
}

// ListTemplates returns every template carrying a preset for role.
func (r *TemplateScorecardRepository) ListTemplates(ctx context.Context, role string) ([]models.TemplateSummary, error) {
	const query = `
		SELECT t.id, t.name, ts.variant, COUNT(ts.criterion)
		FROM templates AS t
		JOIN template_scorecards AS ts ON ts.template_id = t.id
		WHERE ts.role = ?
		GROUP BY t.id, t.name, ts.variant
		ORDER BY t.id, ts.variant
	`

	rows, err := r.db.QueryContext(ctx, r.q(query), role)
	if err != nil {
		return nil, fmt.Errorf("query ListTemplates: %w", err)
	}
	defer rows.Close()

	var results []models.TemplateSummary
	for rows.Next() {
		var s models.TemplateSummary
		if err := rows.Scan(&s.TemplateID, &s.Name, &s.Variant, &s.Criteria); err != nil {
			return nil, fmt.Errorf("scan ListTemplates row: %w", err)
		}
		results = append(results, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ListTemplates: %w", err)
	}
	return results, nil
}

// SaveTemplateScorecard replaces the preset for a template, role and variant.
// The template row is created when missing.
func (r *TemplateScorecardRepository) SaveTemplateScorecard(ctx context.Context, templateID int64, name, role, variant string, ratings []models.TemplateRating) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin SaveTemplateScorecard: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const upsertTemplate = `
		INSERT INTO templates (id, name) VALUES (?, ?)
		ON CONFLICT (id) DO UPDATE SET name = excluded.name
	`
	if _, err = tx.ExecContext(ctx, r.q(upsertTemplate), templateID, name); err != nil {
		return fmt.Errorf("upsert template: %w", err)
	}

	const clear = `DELETE FROM template_scorecards WHERE template_id = ? AND role = ? AND variant = ?`
	if _, err = tx.ExecContext(ctx, r.q(clear), templateID, role, variant); err != nil {
		return fmt.Errorf("clear template scorecard: %w", err)
	}

	const insert = `
		INSERT INTO template_scorecards (template_id, role, variant, criterion, option_index)
		VALUES (?, ?, ?, ?, ?)
	`
	for _, tr := range ratings {
		if _, err = tx.ExecContext(ctx, r.q(insert), templateID, role, variant, tr.Criterion, tr.OptionIndex); err != nil {
			return fmt.Errorf("insert template rating %q: %w", tr.Criterion, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit SaveTemplateScorecard: %w", err)
	}
	return nil
}
