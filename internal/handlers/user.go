package handlers

import (
	"net/http"

	"photoshare-backend/internal/middleware"
	"photoshare-backend/internal/services"
)

// PushTokenRequest is the body of PUT /api/users/me/push-token
type PushTokenRequest struct {
	Token string `json:"token"`
}

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// Search handles GET /api/users/search?query=
func (h *UserHandler) Search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	users, err := h.userService.Search(ctx, middleware.GetUserID(ctx), r.URL.Query().Get("query"))
	if err != nil {
		respondAppError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, users)
}

// UpdatePushToken handles PUT /api/users/me/push-token
func (h *UserHandler) UpdatePushToken(w http.ResponseWriter, r *http.Request) {
	var req PushTokenRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondAppError(w, r, err)
		return
	}

	ctx := r.Context()
	if err := h.userService.UpdatePushToken(ctx, middleware.GetUserID(ctx), req.Token); err != nil {
		respondAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
