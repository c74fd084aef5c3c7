package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/minhdangfptu/myFEvent-sub007/models"
	"github.com/minhdangfptu/myFEvent-sub007/store"
)

type mockRiskStore struct {
	mock.Mock
}

func (m *mockRiskStore) Create(ctx context.Context, risk *models.Risk) error {
	args := m.Called(ctx, risk)
	return args.Error(0)
}

func (m *mockRiskStore) GetByID(ctx context.Context, eventID, riskID primitive.ObjectID) (*models.Risk, error) {
	args := m.Called(ctx, eventID, riskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Risk), args.Error(1)
}

func (m *mockRiskStore) ListByEvent(ctx context.Context, eventID primitive.ObjectID) ([]models.Risk, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Risk), args.Error(1)
}

func (m *mockRiskStore) ListPage(ctx context.Context, eventID primitive.ObjectID, page, limit int64) ([]models.Risk, int64, error) {
	args := m.Called(ctx, eventID, page, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Risk), args.Get(1).(int64), args.Error(2)
}

func (m *mockRiskStore) ListByDepartment(ctx context.Context, eventID, departmentID primitive.ObjectID) ([]models.Risk, error) {
	args := m.Called(ctx, eventID, departmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Risk), args.Error(1)
}

func (m *mockRiskStore) Update(ctx context.Context, eventID, riskID primitive.ObjectID, fields bson.M) (*models.Risk, error) {
	args := m.Called(ctx, eventID, riskID, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Risk), args.Error(1)
}

func (m *mockRiskStore) Delete(ctx context.Context, eventID, riskID primitive.ObjectID) error {
	args := m.Called(ctx, eventID, riskID)
	return args.Error(0)
}

func (m *mockRiskStore) AddOccurrence(ctx context.Context, eventID, riskID primitive.ObjectID, occ models.Occurrence, updatedBy primitive.ObjectID) (*models.Risk, error) {
	args := m.Called(ctx, eventID, riskID, occ, updatedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Risk), args.Error(1)
}

func (m *mockRiskStore) UpdateOccurrence(ctx context.Context, eventID, riskID, occurredRiskID primitive.ObjectID, note *string, updatedBy primitive.ObjectID) (*models.Risk, error) {
	args := m.Called(ctx, eventID, riskID, occurredRiskID, note, updatedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Risk), args.Error(1)
}

func (m *mockRiskStore) RemoveOccurrence(ctx context.Context, eventID, riskID, occurredRiskID primitive.ObjectID, updatedBy primitive.ObjectID) (*models.Risk, error) {
	args := m.Called(ctx, eventID, riskID, occurredRiskID, updatedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Risk), args.Error(1)
}

func (m *mockRiskStore) CategoryStats(ctx context.Context, eventID primitive.ObjectID) ([]store.CategoryCount, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.CategoryCount), args.Error(1)
}

type mockRoleGate struct {
	mock.Mock
}

func (m *mockRoleGate) CheckRole(ctx context.Context, userID, eventID primitive.ObjectID, allowedRoles ...string) (*models.EventMember, error) {
	args := m.Called(ctx, userID, eventID, allowedRoles)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EventMember), args.Error(1)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) RiskCreated(eventID, riskID primitive.ObjectID, scope string, departmentID primitive.ObjectID) {
	m.Called(eventID, riskID, scope, departmentID)
}

func (m *mockNotifier) RiskUpdated(eventID, riskID primitive.ObjectID, scope string, departmentID primitive.ObjectID) {
	m.Called(eventID, riskID, scope, departmentID)
}

func (m *mockNotifier) RiskOccurred(eventID, riskID primitive.ObjectID, scope string, departmentID primitive.ObjectID) {
	m.Called(eventID, riskID, scope, departmentID)
}

func (m *mockNotifier) OccurredRiskUpdated(eventID, riskID primitive.ObjectID, scope string, departmentID primitive.ObjectID) {
	m.Called(eventID, riskID, scope, departmentID)
}

func (m *mockNotifier) RiskStatusChanged(eventID, riskID primitive.ObjectID, oldStatus, newStatus string) {
	m.Called(eventID, riskID, oldStatus, newStatus)
}

type riskFixture struct {
	risks  *mockRiskStore
	gate   *mockRoleGate
	notify *mockNotifier
	h      *RiskHandler

	userID  primitive.ObjectID
	eventID primitive.ObjectID
	member  *models.EventMember
}

func newRiskFixture(t *testing.T, role string) *riskFixture {
	t.Helper()

	f := &riskFixture{
		risks:   new(mockRiskStore),
		gate:    new(mockRoleGate),
		notify:  new(mockNotifier),
		userID:  primitive.NewObjectID(),
		eventID: primitive.NewObjectID(),
	}
	f.member = &models.EventMember{
		ID:      primitive.NewObjectID(),
		EventID: f.eventID,
		UserID:  f.userID,
		Role:    role,
	}
	f.h = NewRiskHandler(f.risks, f.gate, f.notify, zap.NewNop())
	return f
}

// request builds an authenticated request with mux path vars set.
func (f *riskFixture) request(method, target string, body interface{}, vars map[string]string) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	r := httptest.NewRequest(method, target, &buf)
	r = r.WithContext(context.WithValue(r.Context(), "userID", f.userID.Hex()))
	return mux.SetURLVars(r, vars)
}

func (f *riskFixture) anonymousRequest(method, target string, vars map[string]string) *http.Request {
	r := httptest.NewRequest(method, target, nil)
	return mux.SetURLVars(r, vars)
}

func (f *riskFixture) eventVars() map[string]string {
	return map[string]string{"eventId": f.eventID.Hex()}
}

func (f *riskFixture) riskVars(riskID primitive.ObjectID) map[string]string {
	return map[string]string{"eventId": f.eventID.Hex(), "riskId": riskID.Hex()}
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestCreateRisk(t *testing.T) {
	f := newRiskFixture(t, models.RoleHoD)

	f.gate.On("CheckRole", mock.Anything, f.userID, f.eventID, []string{models.RoleHoOC, models.RoleHoD}).
		Return(f.member, nil)
	f.risks.On("Create", mock.Anything, mock.AnythingOfType("*models.Risk")).
		Run(func(args mock.Arguments) {
			risk := args.Get(1).(*models.Risk)
			risk.ID = primitive.NewObjectID()
			risk.RiskStatus = models.RiskStatusNotYet
		}).
		Return(nil)
	f.notify.On("RiskCreated", f.eventID, mock.Anything, models.RiskScopeEvent, primitive.NilObjectID)

	body := CreateRiskRequest{
		Scope:       models.RiskScopeEvent,
		Category:    "logistics",
		Name:        "Venue double-booked",
		ImpactLevel: models.RiskImpactHigh,
	}
	w := httptest.NewRecorder()
	f.h.Create(w, f.request(http.MethodPost, "/api/events/x/risks", body, f.eventVars()))

	assert.Equal(t, http.StatusCreated, w.Code)
	resp := decodeEnvelope(t, w)
	assert.Equal(t, true, resp["success"])

	created := f.risks.Calls[0].Arguments.Get(1).(*models.Risk)
	assert.Equal(t, f.member.ID, created.UpdatedPersonID)
	assert.Equal(t, f.eventID, created.EventID)

	f.notify.AssertExpectations(t)
}

func TestCreateRiskValidationBeforeRoleCheck(t *testing.T) {
	f := newRiskFixture(t, models.RoleHoOC)

	body := CreateRiskRequest{Scope: models.RiskScopeEvent, Category: "finance"} // no name
	w := httptest.NewRecorder()
	f.h.Create(w, f.request(http.MethodPost, "/api/events/x/risks", body, f.eventVars()))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	f.gate.AssertNotCalled(t, "CheckRole", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.risks.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateRiskDepartmentScopeRequiresDepartment(t *testing.T) {
	f := newRiskFixture(t, models.RoleHoOC)

	body := CreateRiskRequest{Scope: models.RiskScopeDepartment, Category: "safety", Name: "Crowd surge"}
	w := httptest.NewRecorder()
	f.h.Create(w, f.request(http.MethodPost, "/api/events/x/risks", body, f.eventVars()))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateRiskForbidden(t *testing.T) {
	f := newRiskFixture(t, models.RoleMember)

	f.gate.On("CheckRole", mock.Anything, f.userID, f.eventID, mock.Anything).
		Return(nil, nil)

	body := CreateRiskRequest{Scope: models.RiskScopeEvent, Category: "finance", Name: "Budget overrun"}
	w := httptest.NewRecorder()
	f.h.Create(w, f.request(http.MethodPost, "/api/events/x/risks", body, f.eventVars()))

	assert.Equal(t, http.StatusForbidden, w.Code)
	resp := decodeEnvelope(t, w)
	assert.Equal(t, false, resp["success"])
	f.risks.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.notify.AssertNotCalled(t, "RiskCreated", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateRiskUnauthenticated(t *testing.T) {
	f := newRiskFixture(t, models.RoleHoOC)

	// valid body, no user on the context
	body := CreateRiskRequest{Scope: models.RiskScopeEvent, Category: "finance", Name: "Budget overrun"}
	var buf bytes.Buffer
	_ = json.NewEncoder(&buf).Encode(body)
	r := httptest.NewRequest(http.MethodPost, "/api/events/x/risks", &buf)
	r = mux.SetURLVars(r, f.eventVars())

	w := httptest.NewRecorder()
	f.h.Create(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetRiskNotFound(t *testing.T) {
	f := newRiskFixture(t, models.RoleMember)
	riskID := primitive.NewObjectID()

	f.gate.On("CheckRole", mock.Anything, f.userID, f.eventID, mock.Anything).
		Return(f.member, nil)
	f.risks.On("GetByID", mock.Anything, f.eventID, riskID).
		Return(nil, store.ErrNotFound)

	w := httptest.NewRecorder()
	f.h.Get(w, f.request(http.MethodGet, "/api/events/x/risks/y", nil, f.riskVars(riskID)))

	assert.Equal(t, http.StatusNotFound, w.Code)
	resp := decodeEnvelope(t, w)
	assert.Equal(t, "Risk not found", resp["message"])
}

func TestGetRiskStoreError(t *testing.T) {
	f := newRiskFixture(t, models.RoleMember)
	riskID := primitive.NewObjectID()

	f.gate.On("CheckRole", mock.Anything, f.userID, f.eventID, mock.Anything).
		Return(f.member, nil)
	f.risks.On("GetByID", mock.Anything, f.eventID, riskID).
		Return(nil, errors.New("connection reset"))

	w := httptest.NewRecorder()
	f.h.Get(w, f.request(http.MethodGet, "/api/events/x/risks/y", nil, f.riskVars(riskID)))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decodeEnvelope(t, w)
	// internal details never leak to the client
	assert.Equal(t, "Server error", resp["message"])
}

func TestGetRiskInvalidID(t *testing.T) {
	f := newRiskFixture(t, models.RoleMember)

	w := httptest.NewRecorder()
	vars := map[string]string{"eventId": f.eventID.Hex(), "riskId": "not-an-id"}
	f.h.Get(w, f.request(http.MethodGet, "/api/events/x/risks/not-an-id", nil, vars))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateRiskPartialFields(t *testing.T) {
	f := newRiskFixture(t, models.RoleHoOC)
	riskID := primitive.NewObjectID()
	updated := &models.Risk{ID: riskID, EventID: f.eventID, Scope: models.RiskScopeEvent, Name: "Renamed"}

	f.gate.On("CheckRole", mock.Anything, f.userID, f.eventID, mock.Anything).
		Return(f.member, nil)
	f.risks.On("Update", mock.Anything, f.eventID, riskID, mock.MatchedBy(func(fields bson.M) bool {
		_, hasCategory := fields["category"]
		return fields["name"] == "Renamed" && !hasCategory && fields["updatedPersonId"] == f.member.ID
	})).Return(updated, nil)
	f.notify.On("RiskUpdated", f.eventID, riskID, models.RiskScopeEvent, primitive.NilObjectID)

	body := UpdateRiskRequest{Name: "Renamed"}
	w := httptest.NewRecorder()
	f.h.Update(w, f.request(http.MethodPut, "/api/events/x/risks/y", body, f.riskVars(riskID)))

	assert.Equal(t, http.StatusOK, w.Code)
	f.risks.AssertExpectations(t)
	f.notify.AssertExpectations(t)
}

func TestDeleteRiskNotFound(t *testing.T) {
	f := newRiskFixture(t, models.RoleHoOC)
	riskID := primitive.NewObjectID()

	f.gate.On("CheckRole", mock.Anything, f.userID, f.eventID, mock.Anything).
		Return(f.member, nil)
	f.risks.On("Update", mock.Anything, f.eventID, riskID, mock.Anything).
		Return(nil, store.ErrNotFound)

	w := httptest.NewRecorder()
	f.h.Delete(w, f.request(http.MethodDelete, "/api/events/x/risks/y", nil, f.riskVars(riskID)))

	assert.Equal(t, http.StatusNotFound, w.Code)
	f.risks.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteRiskStampsBeforeRemoval(t *testing.T) {
	f := newRiskFixture(t, models.RoleHoOC)
	riskID := primitive.NewObjectID()

	f.gate.On("CheckRole", mock.Anything, f.userID, f.eventID, mock.Anything).
		Return(f.member, nil)
	f.risks.On("Update", mock.Anything, f.eventID, riskID, bson.M{"updatedPersonId": f.member.ID}).
		Return(&models.Risk{ID: riskID}, nil)
	f.risks.On("Delete", mock.Anything, f.eventID, riskID).Return(nil)

	w := httptest.NewRecorder()
	f.h.Delete(w, f.request(http.MethodDelete, "/api/events/x/risks/y", nil, f.riskVars(riskID)))

	assert.Equal(t, http.StatusOK, w.Code)
	f.risks.AssertExpectations(t)
}

func TestAddOccurrence(t *testing.T) {
	f := newRiskFixture(t, models.RoleHoD)
	riskID := primitive.NewObjectID()
	occurred := &models.Risk{
		ID:         riskID,
		EventID:    f.eventID,
		Scope:      models.RiskScopeEvent,
		RiskStatus: models.RiskStatusOccurred,
		OccurredRisks: []models.Occurrence{
			{ID: primitive.NewObjectID(), Note: "Speaker cancelled", UpdatePersonID: f.member.ID},
		},
	}

	f.gate.On("CheckRole", mock.Anything, f.userID, f.eventID, []string{models.RoleHoOC, models.RoleHoD}).
		Return(f.member, nil)
	f.risks.On("AddOccurrence", mock.Anything, f.eventID, riskID,
		models.Occurrence{Note: "Speaker cancelled", UpdatePersonID: f.member.ID}, f.member.ID).
		Return(occurred, nil)
	f.notify.On("RiskOccurred", f.eventID, riskID, models.RiskScopeEvent, primitive.NilObjectID)

	body := OccurrenceRequest{Note: "Speaker cancelled"}
	w := httptest.NewRecorder()
	f.h.AddOccurrence(w, f.request(http.MethodPost, "/api/events/x/risks/y/occurred", body, f.riskVars(riskID)))

	assert.Equal(t, http.StatusCreated, w.Code)
	f.notify.AssertExpectations(t)
}

func TestAddOccurrenceRequiresNote(t *testing.T) {
	f := newRiskFixture(t, models.RoleHoD)
	riskID := primitive.NewObjectID()

	body := OccurrenceRequest{}
	w := httptest.NewRecorder()
	f.h.AddOccurrence(w, f.request(http.MethodPost, "/api/events/x/risks/y/occurred", body, f.riskVars(riskID)))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	f.gate.AssertNotCalled(t, "CheckRole", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateOccurrenceNotFound(t *testing.T) {
	f := newRiskFixture(t, models.RoleHoOC)
	riskID := primitive.NewObjectID()
	occID := primitive.NewObjectID()

	f.gate.On("CheckRole", mock.Anything, f.userID, f.eventID, mock.Anything).
		Return(f.member, nil)
	f.risks.On("UpdateOccurrence", mock.Anything, f.eventID, riskID, occID, mock.Anything, f.member.ID).
		Return(nil, store.ErrNotFound)

	body := OccurrenceRequest{Note: "revised"}
	w := httptest.NewRecorder()
	vars := f.riskVars(riskID)
	vars["occurredRiskId"] = occID.Hex()
	f.h.UpdateOccurrence(w, f.request(http.MethodPatch, "/api/events/x/risks/y/occurred/z", body, vars))

	assert.Equal(t, http.StatusNotFound, w.Code)
	resp := decodeEnvelope(t, w)
	assert.Equal(t, "Occurred risk not found", resp["message"])
}

func TestRemoveOccurrenceStampsFirst(t *testing.T) {
	f := newRiskFixture(t, models.RoleHoOC)
	riskID := primitive.NewObjectID()
	occID := primitive.NewObjectID()
	after := &models.Risk{ID: riskID, EventID: f.eventID, RiskStatus: models.RiskStatusNotYet}

	f.gate.On("CheckRole", mock.Anything, f.userID, f.eventID, mock.Anything).
		Return(f.member, nil)
	f.risks.On("UpdateOccurrence", mock.Anything, f.eventID, riskID, occID, (*string)(nil), f.member.ID).
		Return(&models.Risk{ID: riskID}, nil)
	f.risks.On("RemoveOccurrence", mock.Anything, f.eventID, riskID, occID, f.member.ID).
		Return(after, nil)

	w := httptest.NewRecorder()
	vars := f.riskVars(riskID)
	vars["occurredRiskId"] = occID.Hex()
	f.h.RemoveOccurrence(w, f.request(http.MethodDelete, "/api/events/x/risks/y/occurred/z", nil, vars))

	assert.Equal(t, http.StatusOK, w.Code)
	f.risks.AssertExpectations(t)
	// removals do not emit notifications
	f.notify.AssertNotCalled(t, "OccurredRiskUpdated", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRecomputeStatusNoChange(t *testing.T) {
	f := newRiskFixture(t, models.RoleHoOC)
	riskID := primitive.NewObjectID()
	risk := &models.Risk{ID: riskID, EventID: f.eventID, RiskStatus: models.RiskStatusNotYet}

	f.gate.On("CheckRole", mock.Anything, f.userID, f.eventID, mock.Anything).
		Return(f.member, nil)
	f.risks.On("GetByID", mock.Anything, f.eventID, riskID).Return(risk, nil)

	w := httptest.NewRecorder()
	f.h.RecomputeStatus(w, f.request(http.MethodPost, "/api/events/x/risks/y/status", nil, f.riskVars(riskID)))

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeEnvelope(t, w)
	change := resp["statusChange"].(map[string]interface{})
	assert.Equal(t, false, change["changed"])
	f.risks.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.notify.AssertNotCalled(t, "RiskStatusChanged", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRecomputeStatusPersistsChange(t *testing.T) {
	f := newRiskFixture(t, models.RoleHoOC)
	riskID := primitive.NewObjectID()
	// stale status with an occurrence on record
	risk := &models.Risk{
		ID:            riskID,
		EventID:       f.eventID,
		RiskStatus:    models.RiskStatusNotYet,
		OccurredRisks: []models.Occurrence{{ID: primitive.NewObjectID(), Note: "late"}},
	}
	updated := &models.Risk{ID: riskID, EventID: f.eventID, RiskStatus: models.RiskStatusOccurred}

	f.gate.On("CheckRole", mock.Anything, f.userID, f.eventID, mock.Anything).
		Return(f.member, nil)
	f.risks.On("GetByID", mock.Anything, f.eventID, riskID).Return(risk, nil)
	f.risks.On("Update", mock.Anything, f.eventID, riskID, bson.M{
		"riskStatus":      models.RiskStatusOccurred,
		"updatedPersonId": f.member.ID,
	}).Return(updated, nil)
	f.notify.On("RiskStatusChanged", f.eventID, riskID, models.RiskStatusNotYet, models.RiskStatusOccurred).Once()

	w := httptest.NewRecorder()
	f.h.RecomputeStatus(w, f.request(http.MethodPost, "/api/events/x/risks/y/status", nil, f.riskVars(riskID)))

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeEnvelope(t, w)
	change := resp["statusChange"].(map[string]interface{})
	assert.Equal(t, true, change["changed"])
	assert.Equal(t, models.RiskStatusNotYet, change["oldStatus"])
	assert.Equal(t, models.RiskStatusOccurred, change["newStatus"])
	f.notify.AssertExpectations(t)
}

func TestListRisksPagination(t *testing.T) {
	f := newRiskFixture(t, models.RoleMember)

	f.gate.On("CheckRole", mock.Anything, f.userID, f.eventID, []string{models.RoleHoOC, models.RoleHoD, models.RoleMember}).
		Return(f.member, nil)
	f.risks.On("ListPage", mock.Anything, f.eventID, int64(2), int64(5)).
		Return([]models.Risk{{ID: primitive.NewObjectID()}}, int64(11), nil)

	w := httptest.NewRecorder()
	r := f.request(http.MethodGet, "/api/events/x/risks?page=2&limit=5", nil, f.eventVars())
	f.h.List(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeEnvelope(t, w)
	page := resp["pagination"].(map[string]interface{})
	assert.Equal(t, float64(2), page["page"])
	assert.Equal(t, float64(11), page["total"])
	assert.Equal(t, float64(3), page["totalPages"])
}

func TestCategoriesSkipsRoleGate(t *testing.T) {
	f := newRiskFixture(t, models.RoleMember)

	w := httptest.NewRecorder()
	f.h.Categories(w, f.anonymousRequest(http.MethodGet, "/api/events/x/risks/categories", f.eventVars()))

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeEnvelope(t, w)
	assert.Equal(t, true, resp["success"])
	assert.Len(t, resp["data"], len(models.RiskCategories))
	f.gate.AssertNotCalled(t, "CheckRole", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCategoryStatistics(t *testing.T) {
	f := newRiskFixture(t, models.RoleHoOC)

	f.gate.On("CheckRole", mock.Anything, f.userID, f.eventID, mock.Anything).
		Return(f.member, nil)
	f.risks.On("CategoryStats", mock.Anything, f.eventID).
		Return([]store.CategoryCount{{Category: "finance", Count: 3}}, nil)

	w := httptest.NewRecorder()
	f.h.CategoryStatistics(w, f.request(http.MethodGet, "/api/events/x/risks/statistics", nil, f.eventVars()))

	assert.Equal(t, http.StatusOK, w.Code)
}
