package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/minhdangfptu/myFEvent-sub007/models"
	"github.com/minhdangfptu/myFEvent-sub007/store"
	"github.com/minhdangfptu/myFEvent-sub007/utils"
)

type EventHandler struct {
	events  store.EventStore
	members store.MemberStore
	log     *zap.Logger
}

func NewEventHandler(events store.EventStore, members store.MemberStore, log *zap.Logger) *EventHandler {
	return &EventHandler{events: events, members: members, log: log}
}

type eventRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	StartDate   *string `json:"startDate,omitempty"`
	EndDate     *string `json:"endDate,omitempty"`
}

// parseDatePointer parses an optional YYYY-MM-DD field.
func parseDatePointer(dateStr *string) (*time.Time, error) {
	if dateStr == nil || *dateStr == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", *dateStr)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Create inserts the event and enrolls the creator as its head of
// organizing committee.
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "user id required")
		return
	}

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Name == "" || len(req.Name) > 200 {
		utils.RespondWithError(w, http.StatusBadRequest, "name is required and must be less than 200 characters")
		return
	}

	startDate, err := parseDatePointer(req.StartDate)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "startDate: invalid date format, expected YYYY-MM-DD")
		return
	}
	endDate, err := parseDatePointer(req.EndDate)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "endDate: invalid date format, expected YYYY-MM-DD")
		return
	}
	if startDate != nil && endDate != nil && endDate.Before(*startDate) {
		utils.RespondWithError(w, http.StatusBadRequest, "endDate must be after startDate")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	event := &models.Event{
		Name:        req.Name,
		Description: req.Description,
		StartDate:   startDate,
		EndDate:     endDate,
		CreatedBy:   userID,
	}
	if err := h.events.Create(ctx, event); err != nil {
		h.log.Error("create event failed", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, msgServerError)
		return
	}

	member := &models.EventMember{
		EventID: event.ID,
		UserID:  userID,
		Role:    models.RoleHoOC,
	}
	if err := h.members.Add(ctx, member); err != nil {
		h.log.Error("enroll event creator failed", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, msgServerError)
		return
	}

	utils.RespondWithData(w, http.StatusCreated, event)
}

// List returns the events the caller is a member of.
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "user id required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	ids, err := h.members.ListEventIDsByUser(ctx, userID)
	if err != nil {
		h.log.Error("list memberships failed", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, msgServerError)
		return
	}

	events, err := h.events.ListByIDs(ctx, ids)
	if err != nil {
		h.log.Error("list events failed", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, msgServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    events,
		"total":   len(events),
	})
}

func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
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

	event, err := h.events.GetByID(ctx, eventID)
	if err != nil {
		if err == store.ErrNotFound {
			utils.RespondWithError(w, http.StatusNotFound, "Event not found")
			return
		}
		h.log.Error("find event failed", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, msgServerError)
		return
	}

	utils.RespondWithData(w, http.StatusOK, event)
}

func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
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

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Name != "" && len(req.Name) > 200 {
		utils.RespondWithError(w, http.StatusBadRequest, "name must be less than 200 characters")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	member, err := h.members.CheckRole(ctx, userID, eventID, models.RoleHoOC)
	if err != nil {
		h.log.Error("role check failed", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, msgServerError)
		return
	}
	if member == nil {
		utils.RespondWithError(w, http.StatusForbidden, "insufficient permissions")
		return
	}

	fields := bson.M{}
	if req.Name != "" {
		fields["name"] = req.Name
	}
	if req.Description != "" {
		fields["description"] = req.Description
	}
	if req.StartDate != nil {
		startDate, err := parseDatePointer(req.StartDate)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "startDate: invalid date format, expected YYYY-MM-DD")
			return
		}
		fields["startDate"] = startDate
	}
	if req.EndDate != nil {
		endDate, err := parseDatePointer(req.EndDate)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "endDate: invalid date format, expected YYYY-MM-DD")
			return
		}
		fields["endDate"] = endDate
	}

	event, err := h.events.Update(ctx, eventID, fields)
	if err != nil {
		if err == store.ErrNotFound {
			utils.RespondWithError(w, http.StatusNotFound, "Event not found")
			return
		}
		h.log.Error("update event failed", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, msgServerError)
		return
	}

	utils.RespondWithData(w, http.StatusOK, event)
}

func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

	member, err := h.members.CheckRole(ctx, userID, eventID, models.RoleHoOC)
	if err != nil {
		h.log.Error("role check failed", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, msgServerError)
		return
	}
	if member == nil {
		utils.RespondWithError(w, http.StatusForbidden, "insufficient permissions")
		return
	}

	if err := h.events.Delete(ctx, eventID); err != nil {
		if err == store.ErrNotFound {
			utils.RespondWithError(w, http.StatusNotFound, "Event not found")
			return
		}
		h.log.Error("delete event failed", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, msgServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "event deleted",
	})
}
