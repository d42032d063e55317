package handler

import (
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/pavelanni/parabola/internal/model"
)

func (h *Handler) handleAdminProgress(w http.ResponseWriter, r *http.Request) {
	learners, err := h.store.ExportProgress(h.tracker)
	if err != nil {
		slog.Error("failed to export progress", "error", err)
		writeError(w, r, http.StatusInternalServerError, "ErrInternal")
		return
	}
	writeJSON(w, http.StatusOK, model.ProgressExport{
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Backend:     h.config.ProgressBackend,
		Learners:    learners,
	})
}

type createUserRequest struct {
	Username    string         `json:"username" validate:"required,alphanum,max=64"`
	DisplayName string         `json:"display_name" validate:"max=128"`
	Password    string         `json:"password" validate:"required,min=8,max=72"`
	Role        model.UserRole `json:"role" validate:"required,oneof=admin teacher"`
}

type userResponse struct {
	ID          int64          `json:"id"`
	Username    string         `json:"username"`
	DisplayName string         `json:"display_name"`
	Role        model.UserRole `json:"role"`
}

func (h *Handler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	existing, err := h.store.GetUserByUsername(req.Username)
	if err != nil {
		slog.Error("failed to get user", "error", err)
		writeError(w, r, http.StatusInternalServerError, "ErrInternal")
		return
	}
	if existing != nil {
		writeError(w, r, http.StatusConflict, "ErrUserExists", req.Username)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		slog.Error("failed to hash password", "error", err)
		writeError(w, r, http.StatusInternalServerError, "ErrInternal")
		return
	}

	displayName := req.DisplayName
	if displayName == "" {
		displayName = req.Username
	}

	id, err := h.store.CreateUser(model.User{
		Username:     req.Username,
		DisplayName:  displayName,
		PasswordHash: string(hash),
		Role:         req.Role,
		Active:       true,
	})
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "ErrInternal")
		return
	}

	writeJSON(w, http.StatusCreated, userResponse{
		ID:          id,
		Username:    req.Username,
		DisplayName: displayName,
		Role:        req.Role,
	})
}
