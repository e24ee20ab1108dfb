package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Prashu2024/form-builder-backend/internal/auth"
	"github.com/Prashu2024/form-builder-backend/internal/repository"
	"github.com/Prashu2024/form-builder-backend/internal/schema"
	"github.com/Prashu2024/form-builder-backend/internal/service"
)

// AdminHandler is the read-only back office view over stored submissions.
type AdminHandler struct {
	svc *service.SubmissionService
	log *zap.Logger
}

func NewAdminHandler(svc *service.SubmissionService, log *zap.Logger) *AdminHandler {
	return &AdminHandler{svc: svc, log: log}
}

type adminRow struct {
	ID        string `json:"id"`
	CreatedAt string `json:"createdAt"`
}

type adminListResponse struct {
	Submissions []adminRow `json:"submissions"`
	Total       int        `json:"total"`
	Page        int        `json:"page"`
	Limit       int        `json:"limit"`
	TotalPages  int        `json:"totalPages"`
}

func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := repository.ListQuery{
		Page:     queryInt(q.Get("page"), 1),
		Limit:    queryInt(q.Get("limit"), repository.DefaultPageSize),
		SortBy:   queryString(q.Get("sortBy"), repository.SortByCreatedAt),
		Order:    queryString(q.Get("sortOrder"), repository.OrderDesc),
		IDPrefix: strings.TrimSpace(q.Get("search")),
	}
	var err error
	if query.CreatedAfter, err = queryTime(q.Get("createdAfter")); err != nil {
		writeError(w, http.StatusBadRequest, "invalid createdAfter")
		return
	}
	if query.CreatedBefore, err = queryTime(q.Get("createdBefore")); err != nil {
		writeError(w, http.StatusBadRequest, "invalid createdBefore")
		return
	}

	page, err := h.svc.List(r.Context(), query)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list submissions")
		return
	}
	rows := make([]adminRow, len(page.Items))
	for i := range page.Items {
		rows[i] = adminRow{ID: page.Items[i].ID, CreatedAt: formatCreatedAt(&page.Items[i])}
	}
	writeJSON(w, http.StatusOK, adminListResponse{
		Submissions: rows,
		Total:       page.Total,
		Page:        page.Page,
		Limit:       page.Limit,
		TotalPages:  page.TotalPages,
	})
}

func (h *AdminHandler) Get(w http.ResponseWriter, r *http.Request) {
	sub, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load submission")
		return
	}
	fields := []zap.Field{zap.String("id", sub.ID)}
	if claims := auth.GetUser(r.Context()); claims != nil {
		fields = append(fields, zap.String("admin", claims.Email))
	}
	h.log.Info("submission viewed", fields...)
	writeJSON(w, http.StatusOK, sub)
}

func queryTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return schema.ParseTimestamp(s)
}
