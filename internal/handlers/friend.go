package handlers

import (
	"net/http"

	"photoshare-backend/internal/middleware"
	"photoshare-backend/internal/models"
	"photoshare-backend/internal/services"
)

// FriendRequestBody is the body of POST /api/friends/request
type FriendRequestBody struct {
	UserID int64 `json:"userId"`
}

// FriendResponseBody is the body of PUT /api/friends/requests/{id}
type FriendResponseBody struct {
	Status models.FriendshipStatus `json:"status"`
}

// FriendHandler handles friend-related HTTP requests
type FriendHandler struct {
	friendService *services.FriendService
}

// NewFriendHandler creates a new friend handler
func NewFriendHandler(friendService *services.FriendService) *FriendHandler {
	return &FriendHandler{friendService: friendService}
}

// List handles GET /api/friends
func (h *FriendHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	friends, err := h.friendService.ListFriends(ctx, middleware.GetUserID(ctx))
	if err != nil {
		respondAppError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, friends)
}

// ListRequests handles GET /api/friends/requests
func (h *FriendHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requests, err := h.friendService.ListRequests(ctx, middleware.GetUserID(ctx))
	if err != nil {
		respondAppError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, requests)
}

// SendRequest handles POST /api/friends/request
func (h *FriendHandler) SendRequest(w http.ResponseWriter, r *http.Request) {
	var req FriendRequestBody
	if err := decodeJSON(w, r, &req); err != nil {
		respondAppError(w, r, err)
		return
	}
	if req.UserID <= 0 {
		respondError(w, "userId is required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	friendship, err := h.friendService.SendRequest(ctx, middleware.GetUserID(ctx), req.UserID)
	if err != nil {
		respondAppError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, friendship)
}

// Respond handles PUT /api/friends/requests/{id}
func (h *FriendHandler) Respond(w http.ResponseWriter, r *http.Request) {
	requestID, err := idParam(r, "id")
	if err != nil {
		respondAppError(w, r, err)
		return
	}

	var req FriendResponseBody
	if err := decodeJSON(w, r, &req); err != nil {
		respondAppError(w, r, err)
		return
	}

	ctx := r.Context()
	friendship, err := h.friendService.Respond(ctx, middleware.GetUserID(ctx), requestID, req.Status)
	if err != nil {
		respondAppError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, friendship)
}
