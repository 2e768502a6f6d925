package handler

import (
	"net/http"
	"strings"

	"github.com/go-notification-hub/internal/application/stats"
	"github.com/go-notification-hub/internal/domain"
)

// StatsHandler serves delivery statistics.
type StatsHandler struct {
	svc stats.Service
}

func NewStatsHandler(svc stats.Service) *StatsHandler {
	return &StatsHandler{svc: svc}
}

func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	var filter *domain.Channel
	if raw := strings.TrimSpace(r.URL.Query().Get("channel")); raw != "" {
		c, err := domain.ParseChannel(raw)
		if err != nil {
			httpError(w, err)
			return
		}
		filter = &c
	}
	s, err := h.svc.Stats(r.Context(), filter)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}
