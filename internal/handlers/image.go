package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"path"
	"strconv"
	"strings"

	"photoshare-backend/internal/apperror"
	"photoshare-backend/internal/middleware"
	"photoshare-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// multipart overhead allowed on top of the file size limit
const uploadSlack = 1 << 20

// ImageHandler handles image-related HTTP requests
type ImageHandler struct {
	imageService *services.ImageService
	maxBytes     int64
}

// NewImageHandler creates a new image handler
func NewImageHandler(imageService *services.ImageService, maxBytes int64) *ImageHandler {
	return &ImageHandler{
		imageService: imageService,
		maxBytes:     maxBytes,
	}
}

// Upload handles POST /api/images (multipart: image, description, userIds, groupIds)
func (h *ImageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+uploadSlack)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, "File exceeds the upload limit", http.StatusBadRequest)
			return
		}
		respondError(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			respondError(w, "No file uploaded", http.StatusBadRequest)
			return
		}
		respondError(w, "Invalid file upload", http.StatusBadRequest)
		return
	}
	defer file.Close()

	userIDs, err := parseIDList(r.FormValue("userIds"), "userIds")
	if err != nil {
		respondAppError(w, r, err)
		return
	}
	groupIDs, err := parseIDList(r.FormValue("groupIds"), "groupIds")
	if err != nil {
		respondAppError(w, r, err)
		return
	}

	var description *string
	if values, ok := r.MultipartForm.Value["description"]; ok && len(values) > 0 {
		description = &values[0]
	}

	image, err := h.imageService.Upload(ctx, services.UploadInput{
		OwnerID:     userID,
		File:        file,
		Size:        header.Size,
		Description: description,
		UserIDs:     userIDs,
		GroupIDs:    groupIDs,
	})
	if err != nil {
		log.Warn().
			Err(err).
			Int64("user_id", userID).
			Str("filename", header.Filename).
			Msg("Image upload rejected")
		respondAppError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, image)
}

// RequireAssetAccess lets a stored file through only when the caller may view its image
func (h *ImageHandler) RequireAssetAccess(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if err := h.imageService.AuthorizeAsset(ctx, middleware.GetUserID(ctx), path.Clean(r.URL.Path)); err != nil {
			respondAppError(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// parseIDList accepts a JSON array of ids. An empty field means no ids.
func parseIDList(raw, field string) ([]int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var ids []int64
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, apperror.InvalidInput(field + " must be a JSON array of ids")
	}
	for _, id := range ids {
		if id <= 0 {
			return nil, apperror.InvalidInput(field + " must contain positive ids")
		}
	}
	return ids, nil
}

// List handles GET /api/images
func (h *ImageHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	images, err := h.imageService.ListOwn(ctx, middleware.GetUserID(ctx))
	if err != nil {
		respondAppError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, images)
}

// ListByDate handles GET /api/images/by-date?year=&month= (month is zero-indexed)
func (h *ImageHandler) ListByDate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		respondError(w, "year is required", http.StatusBadRequest)
		return
	}
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil {
		respondError(w, "month is required", http.StatusBadRequest)
		return
	}

	images, err := h.imageService.ListByMonth(ctx, middleware.GetUserID(ctx), year, month)
	if err != nil {
		respondAppError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, images)
}

// ListDates handles GET /api/images/dates
func (h *ImageHandler) ListDates(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	dates, err := h.imageService.ListDates(ctx, middleware.GetUserID(ctx))
	if err != nil {
		respondAppError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, dates)
}

// ListShared handles GET /api/images/shared
func (h *ImageHandler) ListShared(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	images, err := h.imageService.ListShared(ctx, middleware.GetUserID(ctx))
	if err != nil {
		respondAppError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, images)
}

// Get handles GET /api/images/{id}
func (h *ImageHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	imageID, err := idParam(r, "id")
	if err != nil {
		respondAppError(w, r, err)
		return
	}

	image, err := h.imageService.Get(ctx, middleware.GetUserID(ctx), imageID)
	if err != nil {
		respondAppError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, image)
}

// Delete handles DELETE /api/images/{id}
func (h *ImageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	imageID, err := idParam(r, "id")
	if err != nil {
		respondAppError(w, r, err)
		return
	}

	if err := h.imageService.Delete(ctx, middleware.GetUserID(ctx), imageID); err != nil {
		respondAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
