package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Prashu2024/form-builder-backend/internal/models"
)

// SubmissionsCollection names the OxiDB collection and the SQL table.
const SubmissionsCollection = "form_submissions"

var ErrNotFound = errors.New("submission not found")

// SubmissionStore persists accepted submissions. Implementations assign the
// id and creation time, and rely on the backend's atomic single-record insert
// for concurrent writers.
type SubmissionStore interface {
	Create(ctx context.Context, data map[string]any) (*models.Submission, error)
	List(ctx context.Context, q ListQuery) (*Page, error)
	FindByID(ctx context.Context, id string) (*models.Submission, error)
	Ping(ctx context.Context) error
	Close() error
}

// Page is one slice of a listing plus the size of the whole result.
type Page struct {
	Items      []models.Submission
	Total      int
	Page       int
	Limit      int
	TotalPages int
}

// Option customizes how a store stamps new records.
type Option func(*options)

type options struct {
	now   func() time.Time
	newID func() string
}

// WithClock overrides the time source used for created_at.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithIDGenerator overrides the id source.
func WithIDGenerator(newID func() string) Option {
	return func(o *options) { o.newID = newID }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now, newID: uuid.NewString}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// stamp builds the record for a new submission. Timestamps are kept in UTC at
// microsecond precision so every backend round-trips them unchanged.
func (o options) stamp(data map[string]any) *models.Submission {
	if data == nil {
		data = map[string]any{}
	}
	return &models.Submission{
		ID:        o.newID(),
		Data:      data,
		CreatedAt: o.now().UTC().Truncate(time.Microsecond),
	}
}

// validID reports whether id can belong to a stored submission at all.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
