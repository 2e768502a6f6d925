package handler

import (
	"context"
	"net/http"

	"github.com/go-notification-hub/internal/application/archive"
	"github.com/go-notification-hub/internal/domain"
)

// Retrier runs one retry pass.
type Retrier interface {
	RetryFailed(ctx context.Context) ([]domain.DispatchResult, error)
}

// OperationsHandler exposes admin operations.
type OperationsHandler struct {
	retrier  Retrier
	archiver archive.Service
}

func NewOperationsHandler(retrier Retrier, archiver archive.Service) *OperationsHandler {
	return &OperationsHandler{retrier: retrier, archiver: archiver}
}

func (h *OperationsHandler) Retry(w http.ResponseWriter, r *http.Request) {
	results, err := h.retrier.RetryFailed(r.Context())
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DataEnvelope{Count: len(results), Data: results})
}

func (h *OperationsHandler) Archive(w http.ResponseWriter, r *http.Request) {
	if h.archiver == nil {
		writeError(w, http.StatusServiceUnavailable, "delivery archive is not configured")
		return
	}
	res, err := h.archiver.Export(r.Context())
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
