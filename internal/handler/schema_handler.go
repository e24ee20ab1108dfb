package handler

import (
	"net/http"

	"github.com/Prashu2024/form-builder-backend/internal/schema"
)

type SchemaHandler struct {
	form *schema.Form
}

func NewSchemaHandler(form *schema.Form) *SchemaHandler {
	return &SchemaHandler{form: form}
}

// Get serves the form definition the frontend renders.
func (h *SchemaHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.form)
}
