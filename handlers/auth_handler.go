// handlers/auth_handler.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/minhdangfptu/myFEvent-sub007/models"
	"github.com/minhdangfptu/myFEvent-sub007/store"
	"github.com/minhdangfptu/myFEvent-sub007/utils"
)

type AuthHandler struct {
	users store.UserStore
	log   *zap.Logger
}

func NewAuthHandler(users store.UserStore, log *zap.Logger) *AuthHandler {
	return &AuthHandler{users: users, log: log}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FullName string `json:"fullName"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid payload")
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.FullName = strings.TrimSpace(req.FullName)
	if req.FullName == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Full name required")
		return
	}
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		utils.RespondWithError(w, http.StatusBadRequest, "Valid email required")
		return
	}
	if len(req.Password) < 6 {
		utils.RespondWithError(w, http.StatusBadRequest, "Password must be at least 6 characters")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	taken, err := h.users.EmailTaken(ctx, req.Email)
	if err != nil {
		h.log.Error("email lookup failed", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, msgServerError)
		return
	}
	if taken {
		utils.RespondWithError(w, http.StatusConflict, "Email already registered")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		h.log.Error("password hash failed", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, msgServerError)
		return
	}

	user := &models.User{
		FullName:     req.FullName,
		Email:        req.Email,
		PasswordHash: hash,
	}
	if err := h.users.Create(ctx, user); err != nil {
		h.log.Error("create user failed", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, msgServerError)
		return
	}

	token, err := utils.GenerateJWT(user.ID.Hex(), user.FullName)
	if err != nil {
		h.log.Error("token generation failed", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, msgServerError)
		return
	}

	utils.RespondWithData(w, http.StatusCreated, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid payload")
		return
	}

	creds.Email = strings.TrimSpace(strings.ToLower(creds.Email))
	if creds.Email == "" || !strings.Contains(creds.Email, "@") {
		utils.RespondWithError(w, http.StatusBadRequest, "Valid email required")
		return
	}
	if len(creds.Password) < 6 {
		utils.RespondWithError(w, http.StatusBadRequest, "Password must be at least 6 characters")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	user, err := h.users.FindByEmail(ctx, creds.Email)
	if err != nil {
		if err == store.ErrNotFound {
			// Constant-time-ish response for unknown emails
			_ = utils.CheckPasswordHash("dummy_password", "$2a$10$dummyhashfordummycomparison")
			utils.RespondWithError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		h.log.Error("login lookup failed", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, msgServerError)
		return
	}

	if !utils.CheckPasswordHash(creds.Password, user.PasswordHash) {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := utils.GenerateJWT(user.ID.Hex(), user.FullName)
	if err != nil {
		h.log.Error("token generation failed", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, msgServerError)
		return
	}

	utils.RespondWithData(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "user id required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	user, err := h.users.FindByID(ctx, userID)
	if err != nil {
		if err == store.ErrNotFound {
			utils.RespondWithError(w, http.StatusNotFound, "User not found")
			return
		}
		h.log.Error("find user failed", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, msgServerError)
		return
	}

	utils.RespondWithData(w, http.StatusOK, user)
}
