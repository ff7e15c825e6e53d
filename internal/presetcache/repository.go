// Package presetcache puts a read-through Redis cache in front of template preset storage.
//
// Presets are writable, so every save bumps a per-key epoch before invalidating. Loads
// that began under an older epoch are never written back, which keeps a slow read
// racing a save from caching the superseded preset for a full TTL.
package presetcache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/godilite/qa-scorecard/internal/repository/models"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const defaultCacheDuration = 10 * time.Minute

type KeyPrefix string

const (
	keyTemplatePreset KeyPrefix = "scorecard:template_preset"
	keyTemplateList   KeyPrefix = "scorecard:templates"
)

// Cacher defines the interface for cache operations.
type Cacher interface {
	Close() error
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Storage is the preset storage being cached.
type Storage interface {
	GetTemplateScorecard(ctx context.Context, templateID int64, role, variant string) ([]models.TemplateRating, error)
	ListTemplates(ctx context.Context, role string) ([]models.TemplateSummary, error)
	SaveTemplateScorecard(ctx context.Context, templateID int64, name, role, variant string, ratings []models.TemplateRating) error
}

// Repository serves preset reads from the cache and invalidates on writes.
type Repository struct {
	next    Storage
	cache   Cacher
	logger  *zap.Logger
	sfGroup singleflight.Group
	ttl     time.Duration
	now     func() time.Time
	epochs  epochs
	pending sync.WaitGroup
}

// New wraps next. A nil cache disables caching.
func New(next Storage, cache Cacher, logger *zap.Logger, ttl time.Duration) *Repository {
	if next == nil {
		panic("nil Storage provided to presetcache.New")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = defaultCacheDuration
	}
	return &Repository{
		next:   next,
		cache:  cache,
		logger: logger.Named("preset-cache"),
		ttl:    ttl,
		now:    time.Now,
	}
}

func presetKey(templateID int64, role, variant string) string {
	return fmt.Sprintf("%s:%d:%s:%s", keyTemplatePreset, templateID, role, variant)
}

func listKey(role string) string {
	return fmt.Sprintf("%s:%s", keyTemplateList, role)
}

func (r *Repository) GetTemplateScorecard(ctx context.Context, templateID int64, role, variant string) ([]models.TemplateRating, error) {
	if r.cache == nil {
		return r.next.GetTemplateScorecard(ctx, templateID, role, variant)
	}
	return readThrough(ctx, r, presetKey(templateID, role, variant),
		func(fetchCtx context.Context) ([]models.TemplateRating, error) {
			return r.next.GetTemplateScorecard(fetchCtx, templateID, role, variant)
		})
}

func (r *Repository) ListTemplates(ctx context.Context, role string) ([]models.TemplateSummary, error) {
	if r.cache == nil {
		return r.next.ListTemplates(ctx, role)
	}
	return readThrough(ctx, r, listKey(role),
		func(fetchCtx context.Context) ([]models.TemplateSummary, error) {
			return r.next.ListTemplates(fetchCtx, role)
		})
}

// SaveTemplateScorecard writes through and drops the affected keys. A failed
// invalidation is logged; the entries age out with their TTL.
func (r *Repository) SaveTemplateScorecard(ctx context.Context, templateID int64, name, role, variant string, ratings []models.TemplateRating) error {
	if err := r.next.SaveTemplateScorecard(ctx, templateID, name, role, variant, ratings); err != nil {
		return err
	}
	if r.cache == nil {
		return nil
	}

	keys := []string{presetKey(templateID, role, variant), listKey(role)}
	r.epochs.bump(keys...)
	if err := r.cache.Delete(ctx, keys...); err != nil {
		r.logger.Warn("failed to invalidate preset cache",
			zap.Strings("keys", keys),
			zap.Error(err))
	}
	return nil
}
