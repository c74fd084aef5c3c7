package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/minhdangfptu/myFEvent-sub007/models"
	"github.com/minhdangfptu/myFEvent-sub007/notifier"
	"github.com/minhdangfptu/myFEvent-sub007/store"
	"github.com/minhdangfptu/myFEvent-sub007/utils"
)

var (
	riskWriteRoles = []string{models.RoleHoOC, models.RoleHoD}
	riskReadRoles  = []string{models.RoleHoOC, models.RoleHoD, models.RoleMember}
)

type RiskHandler struct {
	risks  store.RiskStore
	gate   store.RoleGate
	notify notifier.Notifier
	log    *zap.Logger
}

func NewRiskHandler(risks store.RiskStore, gate store.RoleGate, notify notifier.Notifier, log *zap.Logger) *RiskHandler {
	return &RiskHandler{risks: risks, gate: gate, notify: notify, log: log}
}

type CreateRiskRequest struct {
	Scope          string `json:"scope"`
	DepartmentID   string `json:"departmentId,omitempty"`
	Category       string `json:"category"`
	Name           string `json:"name"`
	ImpactLevel    string `json:"impactLevel,omitempty"`
	MitigationPlan string `json:"mitigationPlan,omitempty"`
	ResponsePlan   string `json:"responsePlan,omitempty"`
}

type UpdateRiskRequest struct {
	Category       string `json:"category,omitempty"`
	Name           string `json:"name,omitempty"`
	ImpactLevel    string `json:"impactLevel,omitempty"`
	MitigationPlan string `json:"mitigationPlan,omitempty"`
	ResponsePlan   string `json:"responsePlan,omitempty"`
}

type OccurrenceRequest struct {
	Note string `json:"note"`
}

// RiskValidator checks request payloads before any authorization or
// store access happens.
type RiskValidator struct{}

func (v *RiskValidator) ValidateCreate(req CreateRiskRequest) error {
	if req.Name == "" || len(req.Name) > 200 {
		return fmt.Errorf("name is required and must be less than 200 characters")
	}
	if req.Category == "" {
		return fmt.Errorf("category is required")
	}
	if req.Scope != models.RiskScopeEvent && req.Scope != models.RiskScopeDepartment {
		return fmt.Errorf("scope must be %q or %q", models.RiskScopeEvent, models.RiskScopeDepartment)
	}
	if req.Scope == models.RiskScopeDepartment && req.DepartmentID == "" {
		return fmt.Errorf("departmentId is required for department-scoped risks")
	}
	if req.ImpactLevel != "" && !models.ValidImpactLevel(req.ImpactLevel) {
		return fmt.Errorf("impactLevel must be low, medium or high")
	}
	return nil
}

func (v *RiskValidator) ValidateUpdate(req UpdateRiskRequest) error {
	if req.Name != "" && len(req.Name) > 200 {
		return fmt.Errorf("name must be less than 200 characters")
	}
	if req.ImpactLevel != "" && !models.ValidImpactLevel(req.ImpactLevel) {
		return fmt.Errorf("impactLevel must be low, medium or high")
	}
	return nil
}

func eventIDFromPath(r *http.Request) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(mux.Vars(r)["eventId"])
}

func riskIDFromPath(r *http.Request) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(mux.Vars(r)["riskId"])
}

// checkRole runs the role gate and writes the 401/403/500 response
// itself when the caller may not proceed.
func (h *RiskHandler) checkRole(w http.ResponseWriter, r *http.Request, eventID primitive.ObjectID, roles []string) *models.EventMember {
	userID, ok := userIDFromRequest(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "user id required")
		return nil
	}

	member, err := h.gate.CheckRole(r.Context(), userID, eventID, roles...)
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

func (h *RiskHandler) Create(w http.ResponseWriter, r *http.Request) {
	eventID, err := eventIDFromPath(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid event id format")
		return
	}

	var req CreateRiskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	// Validation happens before the role gate
	validator := RiskValidator{}
	if err := validator.ValidateCreate(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	var departmentID primitive.ObjectID
	if req.Scope == models.RiskScopeDepartment {
		departmentID, err = primitive.ObjectIDFromHex(req.DepartmentID)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "invalid department id format")
			return
		}
	}

	member := h.checkRole(w, r, eventID, riskWriteRoles)
	if member == nil {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	risk := &models.Risk{
		EventID:         eventID,
		DepartmentID:    departmentID,
		Scope:           req.Scope,
		Category:        req.Category,
		Name:            req.Name,
		ImpactLevel:     req.ImpactLevel,
		MitigationPlan:  req.MitigationPlan,
		ResponsePlan:    req.ResponsePlan,
		UpdatedPersonID: member.ID,
	}

	if err := h.risks.Create(ctx, risk); err != nil {
		h.log.Error("insert risk failed", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, msgServerError)
		return
	}

	h.notify.RiskCreated(eventID, risk.ID, risk.Scope, risk.DepartmentID)

	utils.RespondWithData(w, http.StatusCreated, risk)
}

func (h *RiskHandler) GetAll(w http.ResponseWriter, r *http.Request) {
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

	risks, err := h.risks.ListByEvent(ctx, eventID)
	if err != nil {
		h.log.Error("list risks failed", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, msgServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    risks,
		"total":   len(risks),
	})
}

func (h *RiskHandler) List(w http.ResponseWriter, r *http.Request) {
	eventID, err := eventIDFromPath(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid event id format")
		return
	}

	if member := h.checkRole(w, r, eventID, riskReadRoles); member == nil {
		return
	}

	page, _ := strconv.ParseInt(r.URL.Query().Get("page"), 10, 64)
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.ParseInt(r.URL.Query().Get("limit"), 10, 64)
	if limit < 1 || limit > 100 {
		limit = 10
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	risks, total, err := h.risks.ListPage(ctx, eventID, page, limit)
	if err != nil {
		h.log.Error("list risks failed", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, msgServerError)
		return
	}

	totalPages := total / limit
	if total%limit != 0 {
		totalPages++
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    risks,
		"pagination": map[string]interface{}{
			"page":       page,
			"limit":      limit,
			"total":      total,
			"totalPages": totalPages,
		},
	})
}

func (h *RiskHandler) ListByDepartment(w http.ResponseWriter, r *http.Request) {
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

	risks, err := h.risks.ListByDepartment(ctx, eventID, departmentID)
	if err != nil {
		h.log.Error("list department risks failed", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, msgServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    risks,
		"total":   len(risks),
	})
}

func (h *RiskHandler) Get(w http.ResponseWriter, r *http.Request) {
	eventID, err := eventIDFromPath(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid event id format")
		return
	}

	riskID, err := riskIDFromPath(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid risk id format")
		return
	}

	if member := h.checkRole(w, r, eventID, riskReadRoles); member == nil {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	risk, err := h.risks.GetByID(ctx, eventID, riskID)
	if err != nil {
		if err == store.ErrNotFound {
			utils.RespondWithError(w, http.StatusNotFound, "Risk not found")
			return
		}
		h.log.Error("find risk failed", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, msgServerError)
		return
	}

	utils.RespondWithData(w, http.StatusOK, risk)
}

func (h *RiskHandler) Update(w http.ResponseWriter, r *http.Request) {
	eventID, err := eventIDFromPath(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid event id format")
		return
	}

	riskID, err := riskIDFromPath(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid risk id format")
		return
	}

	var req UpdateRiskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	validator := RiskValidator{}
	if err := validator.ValidateUpdate(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	member := h.checkRole(w, r, eventID, riskWriteRoles)
	if member == nil {
		return
	}

	fields := bson.M{"updatedPersonId": member.ID}
	if req.Category != "" {
		fields["category"] = req.Category
	}
	if req.Name != "" {
		fields["name"] = req.Name
	}
	if req.ImpactLevel != "" {
		fields["impactLevel"] = req.ImpactLevel
	}
	if req.MitigationPlan != "" {
		fields["mitigationPlan"] = req.MitigationPlan
	}
	if req.ResponsePlan != "" {
		fields["responsePlan"] = req.ResponsePlan
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	risk, err := h.risks.Update(ctx, eventID, riskID, fields)
	if err != nil {
		if err == store.ErrNotFound {
			utils.RespondWithError(w, http.StatusNotFound, "Risk not found")
			return
		}
		h.log.Error("update risk failed", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, msgServerError)
		return
	}

	// Scope/department come from the updated record
	h.notify.RiskUpdated(eventID, risk.ID, risk.Scope, risk.DepartmentID)

	utils.RespondWithData(w, http.StatusOK, risk)
}

func (h *RiskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	eventID, err := eventIDFromPath(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid event id format")
		return
	}

	riskID, err := riskIDFromPath(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid risk id format")
		return
	}

	member := h.checkRole(w, r, eventID, riskWriteRoles)
	if member == nil {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	// Confirm existence and stamp the audit fields before removal, so
	// the last mutation is attributable.
	if _, err := h.risks.Update(ctx, eventID, riskID, bson.M{"updatedPersonId": member.ID}); err != nil {
		if err == store.ErrNotFound {
			utils.RespondWithError(w, http.StatusNotFound, "Risk not found")
			return
		}
		h.log.Error("stamp risk before delete failed", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, msgServerError)
		return
	}

	if err := h.risks.Delete(ctx, eventID, riskID); err != nil {
		if err == store.ErrNotFound {
			utils.RespondWithError(w, http.StatusNotFound, "Risk not found")
			return
		}
		h.log.Error("delete risk failed", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, msgServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "risk deleted",
	})
}

func (h *RiskHandler) AddOccurrence(w http.ResponseWriter, r *http.Request) {
	eventID, err := eventIDFromPath(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid event id format")
		return
	}

	riskID, err := riskIDFromPath(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid risk id format")
		return
	}

	var req OccurrenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Note == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "note is required")
		return
	}

	member := h.checkRole(w, r, eventID, riskWriteRoles)
	if member == nil {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	occ := models.Occurrence{
		Note:           req.Note,
		UpdatePersonID: member.ID,
	}

	risk, err := h.risks.AddOccurrence(ctx, eventID, riskID, occ, member.ID)
	if err != nil {
		if err == store.ErrNotFound {
			utils.RespondWithError(w, http.StatusNotFound, "Risk not found")
			return
		}
		h.log.Error("add occurrence failed", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, msgServerError)
		return
	}

	h.notify.RiskOccurred(eventID, risk.ID, risk.Scope, risk.DepartmentID)

	utils.RespondWithData(w, http.StatusCreated, risk)
}

func (h *RiskHandler) UpdateOccurrence(w http.ResponseWriter, r *http.Request) {
	eventID, err := eventIDFromPath(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid event id format")
		return
	}

	riskID, err := riskIDFromPath(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid risk id format")
		return
	}

	occurredRiskID, err := primitive.ObjectIDFromHex(mux.Vars(r)["occurredRiskId"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid occurred risk id format")
		return
	}

	var req OccurrenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Note == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "note is required")
		return
	}

	member := h.checkRole(w, r, eventID, riskWriteRoles)
	if member == nil {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	risk, err := h.risks.UpdateOccurrence(ctx, eventID, riskID, occurredRiskID, &req.Note, member.ID)
	if err != nil {
		if err == store.ErrNotFound {
			utils.RespondWithError(w, http.StatusNotFound, "Occurred risk not found")
			return
		}
		h.log.Error("update occurrence failed", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, msgServerError)
		return
	}

	h.notify.OccurredRiskUpdated(eventID, risk.ID, risk.Scope, risk.DepartmentID)

	utils.RespondWithData(w, http.StatusOK, risk)
}

func (h *RiskHandler) RemoveOccurrence(w http.ResponseWriter, r *http.Request) {
	eventID, err := eventIDFromPath(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid event id format")
		return
	}

	riskID, err := riskIDFromPath(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid risk id format")
		return
	}

	occurredRiskID, err := primitive.ObjectIDFromHex(mux.Vars(r)["occurredRiskId"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid occurred risk id format")
		return
	}

	member := h.checkRole(w, r, eventID, riskWriteRoles)
	if member == nil {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	// Stamp the occurrence before removing it so the removal is traceable
	if _, err := h.risks.UpdateOccurrence(ctx, eventID, riskID, occurredRiskID, nil, member.ID); err != nil {
		if err == store.ErrNotFound {
			utils.RespondWithError(w, http.StatusNotFound, "Occurred risk not found")
			return
		}
		h.log.Error("stamp occurrence before remove failed", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, msgServerError)
		return
	}

	risk, err := h.risks.RemoveOccurrence(ctx, eventID, riskID, occurredRiskID, member.ID)
	if err != nil {
		if err == store.ErrNotFound {
			utils.RespondWithError(w, http.StatusNotFound, "Occurred risk not found")
			return
		}
		h.log.Error("remove occurrence failed", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, msgServerError)
		return
	}

	utils.RespondWithData(w, http.StatusOK, risk)
}

// RecomputeStatus compares the stored status against a fresh derivation
// from the occurrence list and persists only when they differ.
func (h *RiskHandler) RecomputeStatus(w http.ResponseWriter, r *http.Request) {
	eventID, err := eventIDFromPath(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid event id format")
		return
	}

	riskID, err := riskIDFromPath(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid risk id format")
		return
	}

	member := h.checkRole(w, r, eventID, riskWriteRoles)
	if member == nil {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	risk, err := h.risks.GetByID(ctx, eventID, riskID)
	if err != nil {
		if err == store.ErrNotFound {
			utils.RespondWithError(w, http.StatusNotFound, "Risk not found")
			return
		}
		h.log.Error("find risk failed", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, msgServerError)
		return
	}

	newStatus := models.DeriveRiskStatus(risk.OccurredRisks)
	if newStatus == risk.RiskStatus {
		utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
			"success":      true,
			"statusChange": map[string]interface{}{"changed": false},
		})
		return
	}

	updated, err := h.risks.Update(ctx, eventID, riskID, bson.M{
		"riskStatus":      newStatus,
		"updatedPersonId": member.ID,
	})
	if err != nil {
		if err == store.ErrNotFound {
			utils.RespondWithError(w, http.StatusNotFound, "Risk not found")
			return
		}
		h.log.Error("persist status failed", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, msgServerError)
		return
	}

	h.notify.RiskStatusChanged(eventID, riskID, risk.RiskStatus, newStatus)

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    updated,
		"statusChange": map[string]interface{}{
			"changed":   true,
			"oldStatus": risk.RiskStatus,
			"newStatus": newStatus,
		},
	})
}

func (h *RiskHandler) CategoryStatistics(w http.ResponseWriter, r *http.Request) {
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

	stats, err := h.risks.CategoryStats(ctx, eventID)
	if err != nil {
		h.log.Error("category statistics failed", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, msgServerError)
		return
	}

	utils.RespondWithData(w, http.StatusOK, stats)
}

func (h *RiskHandler) Categories(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithData(w, http.StatusOK, models.RiskCategories)
}
