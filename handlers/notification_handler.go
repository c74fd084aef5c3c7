package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/minhdangfptu/myFEvent-sub007/store"
	"github.com/minhdangfptu/myFEvent-sub007/utils"
)

type NotificationHandler struct {
	notifications store.NotificationStore
	gate          store.RoleGate
	log           *zap.Logger
}

func NewNotificationHandler(notifications store.NotificationStore, gate store.RoleGate, log *zap.Logger) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, gate: gate, log: log}
}

// List returns the event's notification outbox, newest first.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
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

	member, err := h.gate.CheckRole(r.Context(), userID, eventID, riskReadRoles...)
	if err != nil {
		h.log.Error("role check failed", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, msgServerError)
		return
	}
	if member == nil {
		utils.RespondWithError(w, http.StatusForbidden, "insufficient permissions")
		return
	}

	page, _ := strconv.ParseInt(r.URL.Query().Get("page"), 10, 64)
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.ParseInt(r.URL.Query().Get("limit"), 10, 64)
	if limit < 1 || limit > 100 {
		limit = 20
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	notifications, total, err := h.notifications.ListByEvent(ctx, eventID, page, limit)
	if err != nil {
		h.log.Error("list notifications failed", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, msgServerError)
		return
	}

	totalPages := total / limit
	if total%limit != 0 {
		totalPages++
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    notifications,
		"pagination": map[string]interface{}{
			"page":       page,
			"limit":      limit,
			"total":      total,
			"totalPages": totalPages,
		},
	})
}
