package repository

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/Prashu2024/form-builder-backend/internal/db"
	"github.com/Prashu2024/form-builder-backend/internal/models"
	"github.com/Prashu2024/form-builder-backend/internal/oxidb"
)

// OxiStore keeps submissions as documents in an OxiDB collection.
type OxiStore struct {
	pool *db.Pool
	log  *zap.Logger
	opts options
}

func NewOxiStore(pool *db.Pool, log *zap.Logger, opts ...Option) *OxiStore {
	return &OxiStore{pool: pool, log: log, opts: buildOptions(opts)}
}

// EnsureIndexes creates the id and created_at indexes. On large collections
// this can take a while, so callers usually run it in the background.
func (s *OxiStore) EnsureIndexes(ctx context.Context) error {
	c := s.pool.Get()
	if err := c.CreateUniqueIndex(ctx, SubmissionsCollection, "id"); err != nil {
		return fmt.Errorf("create id index: %w", err)
	}
	if err := c.CreateIndex(ctx, SubmissionsCollection, "created_at"); err != nil {
		return fmt.Errorf("create created_at index: %w", err)
	}
	return nil
}

func (s *OxiStore) Create(ctx context.Context, data map[string]any) (*models.Submission, error) {
	sub := s.opts.stamp(data)
	if _, err := s.pool.Get().Insert(ctx, SubmissionsCollection, submissionToDoc(sub)); err != nil {
		return nil, fmt.Errorf("insert submission: %w", err)
	}
	return sub, nil
}

func (s *OxiStore) List(ctx context.Context, q ListQuery) (*Page, error) {
	q = q.normalized()
	c := s.pool.Get()
	query := oxiFilter(q)

	total, err := c.Count(ctx, SubmissionsCollection, query)
	if err != nil {
		return nil, fmt.Errorf("count submissions: %w", err)
	}
	page := q.page(total)
	if q.pastEnd(total) {
		page.Items = []models.Submission{}
		return page, nil
	}

	dir := -1
	if q.Ascending() {
		dir = 1
	}
	skip, limit := q.offset(), q.Limit
	docs, err := c.Find(ctx, SubmissionsCollection, query, &oxidb.FindOptions{
		Sort:  map[string]any{"created_at": dir},
		Skip:  &skip,
		Limit: &limit,
	})
	if err != nil {
		return nil, fmt.Errorf("find submissions: %w", err)
	}

	page.Items = make([]models.Submission, 0, len(docs))
	for _, d := range docs {
		sub, err := docToSubmission(d)
		if err != nil {
			s.log.Warn("skipping malformed submission document", zap.Error(err))
			continue
		}
		page.Items = append(page.Items, *sub)
	}
	return page, nil
}

func (s *OxiStore) FindByID(ctx context.Context, id string) (*models.Submission, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	doc, err := s.pool.Get().FindOne(ctx, SubmissionsCollection, map[string]any{"id": strings.ToLower(id)})
	if err != nil {
		return nil, fmt.Errorf("find submission %s: %w", id, err)
	}
	if doc == nil {
		return nil, ErrNotFound
	}
	return docToSubmission(doc)
}

func (s *OxiStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *OxiStore) Close() error {
	s.pool.Close()
	return nil
}

func oxiFilter(q ListQuery) map[string]any {
	var conds []any
	if q.IDPrefix != "" {
		conds = append(conds, map[string]any{
			"id": map[string]any{"$regex": "^" + regexp.QuoteMeta(strings.ToLower(q.IDPrefix))},
		})
	}
	created := map[string]any{}
	if !q.CreatedAfter.IsZero() {
		created["$gte"] = formatTime(q.CreatedAfter)
	}
	if !q.CreatedBefore.IsZero() {
		created["$lt"] = formatTime(q.CreatedBefore)
	}
	if len(created) > 0 {
		conds = append(conds, map[string]any{"created_at": created})
	}
	switch len(conds) {
	case 0:
		return map[string]any{}
	case 1:
		return conds[0].(map[string]any)
	}
	return map[string]any{"$and": conds}
}
