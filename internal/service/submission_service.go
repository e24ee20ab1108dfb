package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/Prashu2024/form-builder-backend/internal/metrics"
	"github.com/Prashu2024/form-builder-backend/internal/models"
	"github.com/Prashu2024/form-builder-backend/internal/repository"
	"github.com/Prashu2024/form-builder-backend/internal/schema"
	"github.com/Prashu2024/form-builder-backend/internal/validator"
)

// SubmissionService validates payloads against the active form and hands
// accepted ones to the store.
type SubmissionService struct {
	form    *schema.Form
	subs    repository.SubmissionStore
	metrics *metrics.Metrics
	log     *zap.Logger
}

func NewSubmissionService(form *schema.Form, subs repository.SubmissionStore, m *metrics.Metrics, log *zap.Logger) *SubmissionService {
	return &SubmissionService{form: form, subs: subs, metrics: m, log: log}
}

// Form returns the schema submissions are validated against.
func (s *SubmissionService) Form() *schema.Form {
	return s.form
}

// Create validates data and stores it. A payload that fails validation
// returns a *validator.Error and never reaches the store.
func (s *SubmissionService) Create(ctx context.Context, data map[string]any) (*models.Submission, error) {
	if err := validator.Validate(s.form, data); err != nil {
		var verr *validator.Error
		if errors.As(err, &verr) {
			s.metrics.SubmissionsRejected.Inc()
			for field := range verr.Fields {
				s.metrics.FieldErrors.WithLabelValues(field).Inc()
			}
		}
		return nil, err
	}

	sub, err := s.subs.Create(ctx, data)
	if err != nil {
		s.metrics.StoreErrors.WithLabelValues("create").Inc()
		s.log.Error("store submission failed", zap.Error(err))
		return nil, err
	}
	s.metrics.SubmissionsCreated.Inc()
	s.log.Info("submission created", zap.String("id", sub.ID))
	return sub, nil
}

func (s *SubmissionService) List(ctx context.Context, q repository.ListQuery) (*repository.Page, error) {
	page, err := s.subs.List(ctx, q)
	if err != nil {
		s.metrics.StoreErrors.WithLabelValues("list").Inc()
		s.log.Error("list submissions failed", zap.Error(err))
		return nil, err
	}
	return page, nil
}

// Get returns repository.ErrNotFound for unknown ids.
func (s *SubmissionService) Get(ctx context.Context, id string) (*models.Submission, error) {
	sub, err := s.subs.FindByID(ctx, id)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		s.metrics.StoreErrors.WithLabelValues("get").Inc()
		s.log.Error("find submission failed", zap.String("id", id), zap.Error(err))
	}
	return sub, err
}

// Healthy pings the store.
func (s *SubmissionService) Healthy(ctx context.Context) error {
	return s.subs.Ping(ctx)
}
