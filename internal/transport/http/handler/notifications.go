package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-notification-hub/internal/application/dispatch"
	"github.com/go-notification-hub/internal/application/notification"
	"github.com/go-notification-hub/internal/domain"
	"github.com/go-notification-hub/internal/pkg/id"
	"github.com/go-notification-hub/internal/pkg/validate"
)

// maxBatch caps the items accepted by one batch request.
const maxBatch = 500

// Dispatcher sends notifications.
type Dispatcher interface {
	Send(ctx context.Context, n *domain.Notification) (domain.DispatchResult, error)
	BatchSend(ctx context.Context, ns []*domain.Notification) []domain.DispatchResult
}

// NotificationHandler handles notification endpoints.
type NotificationHandler struct {
	svc        notification.Service
	dispatcher Dispatcher
}

func NewNotificationHandler(svc notification.Service, dispatcher Dispatcher) *NotificationHandler {
	return &NotificationHandler{svc: svc, dispatcher: dispatcher}
}

type batchRequest struct {
	Notifications []domain.CreateNotificationRequest `json:"notifications"`
}

func newNotification(req domain.CreateNotificationRequest) (*domain.Notification, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	return domain.NewNotification(id.New(), req, time.Now().UTC()), nil
}

// Send creates a notification and dispatches it once. A delivery failure is
// still a 200: the result carries status "failed" and the error detail.
func (h *NotificationHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateNotificationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httpError(w, err)
		return
	}
	n, err := newNotification(req)
	if err != nil {
		httpError(w, err)
		return
	}
	res, err := h.dispatcher.Send(r.Context(), n)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *NotificationHandler) BatchSend(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httpError(w, err)
		return
	}
	if len(req.Notifications) == 0 || len(req.Notifications) > maxBatch {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("notifications must hold 1 to %d items", maxBatch))
		return
	}
	// An invalid item is reported in its own slot; the others still go out.
	items := make([]dispatch.BatchItem, len(req.Notifications))
	for i, item := range req.Notifications {
		n, err := newNotification(item)
		items[i] = dispatch.BatchItem{Notification: n, Err: err}
	}
	results := dispatch.SendItems(r.Context(), h.dispatcher, items)
	writeJSON(w, http.StatusOK, DataEnvelope{Count: len(results), Data: results})
}

func (h *NotificationHandler) ListUnread(w http.ResponseWriter, r *http.Request) {
	recipient := strings.TrimSpace(r.URL.Query().Get("recipient"))
	if recipient == "" {
		writeError(w, http.StatusBadRequest, "recipient query parameter is required")
		return
	}
	notifications, err := h.svc.ListUnread(r.Context(), recipient)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DataEnvelope{Count: len(notifications), Data: notifications})
}

func (h *NotificationHandler) Get(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.MarkRead(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (h *NotificationHandler) Deliveries(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.Deliveries(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DataEnvelope{Count: len(entries), Data: entries})
}
