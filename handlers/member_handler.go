package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/minhdangfptu/myFEvent-sub007/models"
	"github.com/minhdangfptu/myFEvent-sub007/store"
	"github.com/minhdangfptu/myFEvent-sub007/utils"
)

type MemberHandler struct {
	members store.MemberStore
	log     *zap.Logger
}

func NewMemberHandler(members store.MemberStore, log *zap.Logger) *MemberHandler {
	return &MemberHandler{members: members, log: log}
}

// Join enrolls the caller into the event with the baseline member role.
func (h *MemberHandler) Join(w http.ResponseWriter, r *http.Request) {
	eventID, err := eventIDFromPath(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid event id format")
		return
	}

	userID, ok := userIDFromRequest(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "user id required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if _, err := h.members.FindByUser(ctx, eventID, userID); err == nil {
		utils.RespondWithError(w, http.StatusConflict, "already a member of this event")
		return
	} else if err != store.ErrNotFound {
		h.log.Error("membership lookup failed", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, msgServerError)
		return
	}

	member := &models.EventMember{
		EventID: eventID,
		UserID:  userID,
		Role:    models.RoleMember,
	}
	if err := h.members.Add(ctx, member); err != nil {
		h.log.Error("add member failed", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, msgServerError)
		return
	}

	utils.RespondWithData(w, http.StatusCreated, member)
}

func (h *MemberHandler) List(w http.ResponseWriter, r *http.Request) {
	eventID, err := eventIDFromPath(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid event id format")
		return
	}

	userID, ok := userIDFromRequest(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "user id required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	member, err := h.members.CheckRole(ctx, userID, eventID, models.RoleHoOC, models.RoleHoD, models.RoleMember)
	if err != nil {
		h.log.Error("role check failed", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, msgServerError)
		return
	}
	if member == nil {
		utils.RespondWithError(w, http.StatusForbidden, "insufficient permissions")
		return
	}

	members, err := h.members.ListByEvent(ctx, eventID)
	if err != nil {
		h.log.Error("list members failed", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, msgServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    members,
		"total":   len(members),
	})
}

// UpdateRole changes an event member's role. Only the head of the
// organizing committee may do this.
func (h *MemberHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	eventID, err := eventIDFromPath(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid event id format")
		return
	}

	memberID, err := primitive.ObjectIDFromHex(mux.Vars(r)["memberId"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid member id format")
		return
	}

	var req struct {
		Role string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if !models.ValidRole(req.Role) {
		utils.RespondWithError(w, http.StatusBadRequest, "role must be hooc, hod or member")
		return
	}

	userID, ok := userIDFromRequest(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "user id required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	actor, err := h.members.CheckRole(ctx, userID, eventID, models.RoleHoOC)
	if err != nil {
		h.log.Error("role check failed", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, msgServerError)
		return
	}
	if actor == nil {
		utils.RespondWithError(w, http.StatusForbidden, "insufficient permissions")
		return
	}

	member, err := h.members.UpdateRole(ctx, eventID, memberID, req.Role)
	if err != nil {
		if err == store.ErrNotFound {
			utils.RespondWithError(w, http.StatusNotFound, "Member not found")
			return
		}
		h.log.Error("update member role failed", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, msgServerError)
		return
	}

	utils.RespondWithData(w, http.StatusOK, member)
}
