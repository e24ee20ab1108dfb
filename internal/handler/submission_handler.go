package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Prashu2024/form-builder-backend/internal/models"
	"github.com/Prashu2024/form-builder-backend/internal/repository"
	"github.com/Prashu2024/form-builder-backend/internal/service"
	"github.com/Prashu2024/form-builder-backend/internal/validator"
)

type SubmissionHandler struct {
	svc *service.SubmissionService
}

func NewSubmissionHandler(svc *service.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{svc: svc}
}

type createResponse struct {
	Success   bool               `json:"success"`
	ID        string             `json:"id"`
	CreatedAt string             `json:"createdAt"`
	Data      *models.Submission `json:"data"`
}

type failureResponse struct {
	Success bool              `json:"success"`
	Errors  map[string]string `json:"errors"`
}

func generalFailure(msg string) failureResponse {
	return failureResponse{Errors: map[string]string{"general": msg}}
}

func (h *SubmissionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var data map[string]any
	if err := readJSON(r, &data); err != nil {
		writeJSON(w, http.StatusBadRequest, generalFailure("invalid JSON body"))
		return
	}

	sub, err := h.svc.Create(r.Context(), data)
	if err != nil {
		var verr *validator.Error
		if errors.As(err, &verr) {
			writeJSON(w, http.StatusBadRequest, failureResponse{Errors: verr.Fields})
			return
		}
		writeJSON(w, http.StatusBadRequest, generalFailure(err.Error()))
		return
	}

	writeJSON(w, http.StatusCreated, createResponse{
		Success:   true,
		ID:        sub.ID,
		CreatedAt: formatCreatedAt(sub),
		Data:      sub,
	})
}

type listResponse struct {
	Submissions []listItem `json:"submissions"`
	Total       int        `json:"total"`
	Page        int        `json:"page"`
	Limit       int        `json:"limit"`
	TotalPages  int        `json:"totalPages"`
}

// List serves one page of submissions. Unparseable paging parameters fall
// back to their defaults instead of failing the request.
func (h *SubmissionHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := repository.ListQuery{
		Page:   queryInt(q.Get("page"), 1),
		Limit:  queryInt(q.Get("limit"), repository.DefaultPageSize),
		SortBy: queryString(q.Get("sortBy"), repository.SortByCreatedAt),
		Order:  queryString(q.Get("sortOrder"), repository.OrderDesc),
	}

	page, err := h.svc.List(r.Context(), query)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	order := h.svc.Form().FieldNames()
	items := make([]listItem, len(page.Items))
	for i := range page.Items {
		items[i] = listItem{sub: &page.Items[i], order: order}
	}
	writeJSON(w, http.StatusOK, listResponse{
		Submissions: items,
		Total:       page.Total,
		Page:        page.Page,
		Limit:       page.Limit,
		TotalPages:  page.TotalPages,
	})
}

func queryInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}

func queryString(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
