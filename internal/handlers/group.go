package handlers

import (
	"net/http"

	"photoshare-backend/internal/middleware"
	"photoshare-backend/internal/services"
)

// CreateGroupRequest is the body of POST /api/groups
type CreateGroupRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

// AddMemberRequest is the body of POST /api/groups/{id}/members
type AddMemberRequest struct {
	UserID int64 `json:"userId"`
}

// GroupHandler handles group-related HTTP requests
type GroupHandler struct {
	groupService *services.GroupService
}

// NewGroupHandler creates a new group handler
func NewGroupHandler(groupService *services.GroupService) *GroupHandler {
	return &GroupHandler{groupService: groupService}
}

// List handles GET /api/groups
func (h *GroupHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	groups, err := h.groupService.List(ctx, middleware.GetUserID(ctx))
	if err != nil {
		respondAppError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, groups)
}

// Create handles POST /api/groups
func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateGroupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondAppError(w, r, err)
		return
	}

	ctx := r.Context()
	group, err := h.groupService.Create(ctx, middleware.GetUserID(ctx), req.Name, req.Description)
	if err != nil {
		respondAppError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, group)
}

// Get handles GET /api/groups/{id}
func (h *GroupHandler) Get(w http.ResponseWriter, r *http.Request) {
	groupID, err := idParam(r, "id")
	if err != nil {
		respondAppError(w, r, err)
		return
	}

	ctx := r.Context()
	group, err := h.groupService.Get(ctx, middleware.GetUserID(ctx), groupID)
	if err != nil {
		respondAppError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, group)
}

// AddMember handles POST /api/groups/{id}/members
func (h *GroupHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	groupID, err := idParam(r, "id")
	if err != nil {
		respondAppError(w, r, err)
		return
	}

	var req AddMemberRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondAppError(w, r, err)
		return
	}
	if req.UserID <= 0 {
		respondError(w, "userId is required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	group, err := h.groupService.AddMember(ctx, middleware.GetUserID(ctx), groupID, req.UserID)
	if err != nil {
		respondAppError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, group)
}

// RemoveMember handles DELETE /api/groups/{id}/members/{userId}
func (h *GroupHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	groupID, err := idParam(r, "id")
	if err != nil {
		respondAppError(w, r, err)
		return
	}
	userID, err := idParam(r, "userId")
	if err != nil {
		respondAppError(w, r, err)
		return
	}

	ctx := r.Context()
	if err := h.groupService.RemoveMember(ctx, middleware.GetUserID(ctx), groupID, userID); err != nil {
		respondAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListImages handles GET /api/groups/{id}/images
func (h *GroupHandler) ListImages(w http.ResponseWriter, r *http.Request) {
	groupID, err := idParam(r, "id")
	if err != nil {
		respondAppError(w, r, err)
		return
	}

	ctx := r.Context()
	images, err := h.groupService.ListImages(ctx, middleware.GetUserID(ctx), groupID)
	if err != nil {
		respondAppError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, images)
}
