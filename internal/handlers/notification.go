package handlers

import (
	"net/http"

	"photoshare-backend/internal/middleware"
	"photoshare-backend/internal/services"
)

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	notificationService *services.NotificationService
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// List handles GET /api/notifications
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	notifications, err := h.notificationService.List(ctx, middleware.GetUserID(ctx))
	if err != nil {
		respondAppError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, notifications)
}

// UnreadCount handles GET /api/notifications/unread-count
func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	count, err := h.notificationService.UnreadCount(ctx, middleware.GetUserID(ctx))
	if err != nil {
		respondAppError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"count": count})
}

// MarkRead handles PUT /api/notifications/{id}/read
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	notificationID, err := idParam(r, "id")
	if err != nil {
		respondAppError(w, r, err)
		return
	}

	ctx := r.Context()
	notification, err := h.notificationService.MarkRead(ctx, middleware.GetUserID(ctx), notificationID)
	if err != nil {
		respondAppError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, notification)
}

// MarkAllRead handles PUT /api/notifications/read-all
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	updated, err := h.notificationService.MarkAllRead(ctx, middleware.GetUserID(ctx))
	if err != nil {
		respondAppError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"updated": updated})
}
