package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-notification-hub/internal/application/template"
	"github.com/go-notification-hub/internal/domain"
)

// TemplateHandler handles template endpoints.
type TemplateHandler struct {
	svc template.Service
}

func NewTemplateHandler(svc template.Service) *TemplateHandler {
	return &TemplateHandler{svc: svc}
}

func (h *TemplateHandler) List(w http.ResponseWriter, r *http.Request) {
	ts, err := h.svc.List(r.Context())
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DataEnvelope{Count: len(ts), Data: ts})
}

func (h *TemplateHandler) Get(w http.ResponseWriter, r *http.Request) {
	t, err := h.svc.Get(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// Put upserts the template named in the path; a name in the body is ignored.
func (h *TemplateHandler) Put(w http.ResponseWriter, r *http.Request) {
	var in domain.TemplateInput
	if err := decodeJSON(w, r, &in); err != nil {
		httpError(w, err)
		return
	}
	in.Name = chi.URLParam(r, "name")
	t, err := h.svc.Save(r.Context(), in)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// Render previews a template. Unresolved placeholders are reported, not rejected.
func (h *TemplateHandler) Render(w http.ResponseWriter, r *http.Request) {
	var req domain.RenderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httpError(w, err)
		return
	}
	out, err := h.svc.RenderByName(r.Context(), chi.URLParam(r, "name"), req.Variables)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
