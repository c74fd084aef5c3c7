package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/minhdangfptu/myFEvent-sub007/models"
	"github.com/minhdangfptu/myFEvent-sub007/store"
	"github.com/minhdangfptu/myFEvent-sub007/utils"
)

type DepartmentHandler struct {
	departments store.DepartmentStore
	members     store.MemberStore
	log         *zap.Logger
}

func NewDepartmentHandler(departments store.DepartmentStore, members store.MemberStore, log *zap.Logger) *DepartmentHandler {
	return &DepartmentHandler{departments: departments, members: members, log: log}
}

type departmentRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	LeaderID    string `json:"leaderId,omitempty"`
}

func (h *DepartmentHandler) checkRole(w http.ResponseWriter, r *http.Request, eventID primitive.ObjectID, roles []string) *models.EventMember {
	userID, ok := userIDFromRequest(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "user id required")
		return nil
	}

	member, err := h.members.CheckRole(r.Context(), userID, eventID, roles...)
	if err != nil {
		h.log.Error("role check failed", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, msgServerError)
		return nil
	}
	if member == nil {
		utils.RespondWithError(w, http.StatusForbidden, "insufficient permissions")
		return nil
	}
	return member
}

func (h *DepartmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	eventID, err := eventIDFromPath(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid event id format")
		return
	}

	var req departmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Name == "" || len(req.Name) > 200 {
		utils.RespondWithError(w, http.StatusBadRequest, "name is required and must be less than 200 characters")
		return
	}

	var leaderID primitive.ObjectID
	if req.LeaderID != "" {
		leaderID, err = primitive.ObjectIDFromHex(req.LeaderID)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "invalid leader id format")
			return
		}
	}

	if member := h.checkRole(w, r, eventID, []string{models.RoleHoOC}); member == nil {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	dept := &models.Department{
		EventID:     eventID,
		Name:        req.Name,
		Description: req.Description,
		LeaderID:    leaderID,
	}
	if err := h.departments.Create(ctx, dept); err != nil {
		h.log.Error("create department failed", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, msgServerError)
		return
	}

	// A named leader becomes head of department for this event
	if !leaderID.IsZero() {
		if err := h.members.SetRoleByUser(ctx, eventID, leaderID, models.RoleHoD, dept.ID); err != nil && err != store.ErrNotFound {
			h.log.Warn("promote department leader failed", zap.Error(err))
		}
	}

	utils.RespondWithData(w, http.StatusCreated, dept)
}

func (h *DepartmentHandler) List(w http.ResponseWriter, r *http.Request) {
	eventID, err := eventIDFromPath(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid event id format")
		return
	}

	if member := h.checkRole(w, r, eventID, riskReadRoles); member == nil {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	depts, err := h.departments.ListByEvent(ctx, eventID)
	if err != nil {
		h.log.Error("list departments failed", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, msgServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    depts,
		"total":   len(depts),
	})
}

func (h *DepartmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	eventID, err := eventIDFromPath(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid event id format")
		return
	}

	departmentID, err := primitive.ObjectIDFromHex(mux.Vars(r)["departmentId"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid department id format")
		return
	}

	if member := h.checkRole(w, r, eventID, riskReadRoles); member == nil {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	dept, err := h.departments.GetByID(ctx, eventID, departmentID)
	if err != nil {
		if err == store.ErrNotFound {
			utils.RespondWithError(w, http.StatusNotFound, "Department not found")
			return
		}
		h.log.Error("find department failed", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, msgServerError)
		return
	}

	utils.RespondWithData(w, http.StatusOK, dept)
}

func (h *DepartmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	eventID, err := eventIDFromPath(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid event id format")
		return
	}

	departmentID, err := primitive.ObjectIDFromHex(mux.Vars(r)["departmentId"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid department id format")
		return
	}

	var req departmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Name != "" && len(req.Name) > 200 {
		utils.RespondWithError(w, http.StatusBadRequest, "name must be less than 200 characters")
		return
	}

	if member := h.checkRole(w, r, eventID, []string{models.RoleHoOC}); member == nil {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	fields := bson.M{}
	if req.Name != "" {
		fields["name"] = req.Name
	}
	if req.Description != "" {
		fields["description"] = req.Description
	}
	if req.LeaderID != "" {
		leaderID, err := primitive.ObjectIDFromHex(req.LeaderID)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "invalid leader id format")
			return
		}
		fields["leaderId"] = leaderID
	}

	dept, err := h.departments.Update(ctx, eventID, departmentID, fields)
	if err != nil {
		if err == store.ErrNotFound {
			utils.RespondWithError(w, http.StatusNotFound, "Department not found")
			return
		}
		h.log.Error("update department failed", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, msgServerError)
		return
	}

	if req.LeaderID != "" && !dept.LeaderID.IsZero() {
		if err := h.members.SetRoleByUser(ctx, eventID, dept.LeaderID, models.RoleHoD, dept.ID); err != nil && err != store.ErrNotFound {
			h.log.Warn("promote department leader failed", zap.Error(err))
		}
	}

	utils.RespondWithData(w, http.StatusOK, dept)
}

func (h *DepartmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	eventID, err := eventIDFromPath(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid event id format")
		return
	}

	departmentID, err := primitive.ObjectIDFromHex(mux.Vars(r)["departmentId"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid department id format")
		return
	}

	if member := h.checkRole(w, r, eventID, []string{models.RoleHoOC}); member == nil {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := h.departments.Delete(ctx, eventID, departmentID); err != nil {
		if err == store.ErrNotFound {
			utils.RespondWithError(w, http.StatusNotFound, "Department not found")
			return
		}
		h.log.Error("delete department failed", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, msgServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "department deleted",
	})
}
