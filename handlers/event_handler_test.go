package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/minhdangfptu/myFEvent-sub007/models"
)

type mockEventStore struct {
	mock.Mock
}

func (m *mockEventStore) Create(ctx context.Context, event *models.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *mockEventStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}

func (m *mockEventStore) ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Event, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Event), args.Error(1)
}

func (m *mockEventStore) Update(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.Event, error) {
	args := m.Called(ctx, id, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}

func (m *mockEventStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockMemberStore struct {
	mock.Mock
}

func (m *mockMemberStore) CheckRole(ctx context.Context, userID, eventID primitive.ObjectID, allowedRoles ...string) (*models.EventMember, error) {
	args := m.Called(ctx, userID, eventID, allowedRoles)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EventMember), args.Error(1)
}

func (m *mockMemberStore) Add(ctx context.Context, member *models.EventMember) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}

func (m *mockMemberStore) FindByUser(ctx context.Context, eventID, userID primitive.ObjectID) (*models.EventMember, error) {
	args := m.Called(ctx, eventID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EventMember), args.Error(1)
}

func (m *mockMemberStore) ListByEvent(ctx context.Context, eventID primitive.ObjectID) ([]models.EventMember, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.EventMember), args.Error(1)
}

func (m *mockMemberStore) UpdateRole(ctx context.Context, eventID, memberID primitive.ObjectID, role string) (*models.EventMember, error) {
	args := m.Called(ctx, eventID, memberID, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EventMember), args.Error(1)
}

func (m *mockMemberStore) SetRoleByUser(ctx context.Context, eventID, userID primitive.ObjectID, role string, departmentID primitive.ObjectID) error {
	args := m.Called(ctx, eventID, userID, role, departmentID)
	return args.Error(0)
}

func (m *mockMemberStore) ListEventIDsByUser(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]primitive.ObjectID), args.Error(1)
}

func authedRequest(method, target string, userID primitive.ObjectID, body interface{}, vars map[string]string) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	r := httptest.NewRequest(method, target, &buf)
	r = r.WithContext(context.WithValue(r.Context(), "userID", userID.Hex()))
	if vars != nil {
		r = mux.SetURLVars(r, vars)
	}
	return r
}

func TestCreateEventEnrollsCreatorAsHoOC(t *testing.T) {
	events := new(mockEventStore)
	members := new(mockMemberStore)
	h := NewEventHandler(events, members, zap.NewNop())

	userID := primitive.NewObjectID()
	eventID := primitive.NewObjectID()

	events.On("Create", mock.Anything, mock.AnythingOfType("*models.Event")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*models.Event).ID = eventID
		}).
		Return(nil)
	members.On("Add", mock.Anything, mock.MatchedBy(func(m *models.EventMember) bool {
		return m.EventID == eventID && m.UserID == userID && m.Role == models.RoleHoOC
	})).Return(nil)

	start := "2026-10-01"
	end := "2026-10-03"
	body := eventRequest{Name: "Autumn Fair", StartDate: &start, EndDate: &end}
	w := httptest.NewRecorder()
	h.Create(w, authedRequest(http.MethodPost, "/api/events", userID, body, nil))

	assert.Equal(t, http.StatusCreated, w.Code)
	events.AssertExpectations(t)
	members.AssertExpectations(t)
}

func TestCreateEventRejectsReversedDates(t *testing.T) {
	events := new(mockEventStore)
	members := new(mockMemberStore)
	h := NewEventHandler(events, members, zap.NewNop())

	start := "2026-10-03"
	end := "2026-10-01"
	body := eventRequest{Name: "Autumn Fair", StartDate: &start, EndDate: &end}
	w := httptest.NewRecorder()
	h.Create(w, authedRequest(http.MethodPost, "/api/events", primitive.NewObjectID(), body, nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	events.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestListEventsOnlyMemberships(t *testing.T) {
	events := new(mockEventStore)
	members := new(mockMemberStore)
	h := NewEventHandler(events, members, zap.NewNop())

	userID := primitive.NewObjectID()
	ids := []primitive.ObjectID{primitive.NewObjectID(), primitive.NewObjectID()}

	members.On("ListEventIDsByUser", mock.Anything, userID).Return(ids, nil)
	events.On("ListByIDs", mock.Anything, ids).
		Return([]models.Event{{ID: ids[0]}, {ID: ids[1]}}, nil)

	w := httptest.NewRecorder()
	h.List(w, authedRequest(http.MethodGet, "/api/events", userID, nil, nil))

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeEnvelope(t, w)
	assert.Equal(t, float64(2), resp["total"])
}

func TestUpdateEventRequiresHoOC(t *testing.T) {
	events := new(mockEventStore)
	members := new(mockMemberStore)
	h := NewEventHandler(events, members, zap.NewNop())

	userID := primitive.NewObjectID()
	eventID := primitive.NewObjectID()

	members.On("CheckRole", mock.Anything, userID, eventID, []string{models.RoleHoOC}).
		Return(nil, nil)

	body := eventRequest{Name: "Renamed"}
	w := httptest.NewRecorder()
	vars := map[string]string{"eventId": eventID.Hex()}
	h.Update(w, authedRequest(http.MethodPut, "/api/events/x", userID, body, vars))

	assert.Equal(t, http.StatusForbidden, w.Code)
	events.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}
