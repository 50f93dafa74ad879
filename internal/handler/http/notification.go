package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/crewclock/crewclock-backend-go/internal/domain/notification"
	"github.com/crewclock/crewclock-backend-go/internal/handler/http/response"
)

type NotificationHandler interface {
	GetMy(w http.ResponseWriter, r *http.Request)
	MarkRead(w http.ResponseWriter, r *http.Request)
}

type NotificationHandlerImpl struct {
	notificationService notification.Service
}

func NewNotificationHandler(notificationService notification.Service) NotificationHandler {
	return &NotificationHandlerImpl{notificationService: notificationService}
}

// GetMy implements NotificationHandler.
func (h *NotificationHandlerImpl) GetMy(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	unreadOnly := q.Get("unread_only") == "true"

	notifications, total, err := h.notificationService.GetMy(r.Context(), page, limit, unreadOnly)
	if err != nil {
		slog.Error("GetMy notifications service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, notifications, &response.Meta{
		Page:       page,
		Limit:      limit,
		TotalItems: int64(total),
	})
}

// MarkRead implements NotificationHandler.
func (h *NotificationHandlerImpl) MarkRead(w http.ResponseWriter, r *http.Request) {
	var body struct {
		IDs []string `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		slog.Error("MarkRead decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := h.notificationService.MarkRead(r.Context(), body.IDs); err != nil {
		slog.Error("MarkRead service error", "error", err)
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Notifications marked read", nil)
}
