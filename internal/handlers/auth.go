package handlers

import (
	"net/http"
	"time"

	"photoshare-backend/internal/middleware"
	"photoshare-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// CredentialsRequest is the body of register and login
type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthHandler handles registration and sessions
type AuthHandler struct {
	userService *services.UserService
	cookieName  string
	secure      bool
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(userService *services.UserService, cookieName string, secure bool) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		cookieName:  cookieName,
		secure:      secure,
	}
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondAppError(w, r, err)
		return
	}

	user, err := h.userService.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		respondAppError(w, r, err)
		return
	}

	if err := h.startSession(w, user.ID); err != nil {
		respondAppError(w, r, err)
		return
	}

	log.Info().Int64("user_id", user.ID).Str("username", user.Username).Msg("User registered")
	respondJSON(w, http.StatusCreated, user)
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondAppError(w, r, err)
		return
	}

	user, err := h.userService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		respondAppError(w, r, err)
		return
	}

	if err := h.startSession(w, user.ID); err != nil {
		respondAppError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.GetUser(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		respondAppError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) startSession(w http.ResponseWriter, userID int64) error {
	token, err := h.userService.GenerateJWT(userID)
	if err != nil {
		return err
	}

	ttl := h.userService.TokenTTL()
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(ttl),
		MaxAge:   int(ttl / time.Second),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}
