// Package notifier emits best-effort notifications after successful
// mutations. Emission is asynchronous and never affects the outcome of
// the request that triggered it: failures are logged and swallowed.
package notifier

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/minhdangfptu/myFEvent-sub007/models"
	"github.com/minhdangfptu/myFEvent-sub007/store"
)

type Notifier interface {
	RiskCreated(eventID, riskID primitive.ObjectID, scope string, departmentID primitive.ObjectID)
	RiskUpdated(eventID, riskID primitive.ObjectID, scope string, departmentID primitive.ObjectID)
	RiskOccurred(eventID, riskID primitive.ObjectID, scope string, departmentID primitive.ObjectID)
	OccurredRiskUpdated(eventID, riskID primitive.ObjectID, scope string, departmentID primitive.ObjectID)
	RiskStatusChanged(eventID, riskID primitive.ObjectID, oldStatus, newStatus string)
}

type Service struct {
	outbox store.NotificationStore
	hub    *Hub
	log    *zap.Logger
}

func NewService(outbox store.NotificationStore, hub *Hub, log *zap.Logger) *Service {
	return &Service{outbox: outbox, hub: hub, log: log}
}

func (s *Service) RiskCreated(eventID, riskID primitive.ObjectID, scope string, departmentID primitive.ObjectID) {
	s.dispatch(&models.Notification{
		EventID:      eventID,
		RiskID:       riskID,
		Type:         models.NotifyRiskCreated,
		Scope:        scope,
		DepartmentID: departmentID,
	})
}

func (s *Service) RiskUpdated(eventID, riskID primitive.ObjectID, scope string, departmentID primitive.ObjectID) {
	s.dispatch(&models.Notification{
		EventID:      eventID,
		RiskID:       riskID,
		Type:         models.NotifyRiskUpdated,
		Scope:        scope,
		DepartmentID: departmentID,
	})
}

func (s *Service) RiskOccurred(eventID, riskID primitive.ObjectID, scope string, departmentID primitive.ObjectID) {
	s.dispatch(&models.Notification{
		EventID:      eventID,
		RiskID:       riskID,
		Type:         models.NotifyRiskOccurred,
		Scope:        scope,
		DepartmentID: departmentID,
	})
}

func (s *Service) OccurredRiskUpdated(eventID, riskID primitive.ObjectID, scope string, departmentID primitive.ObjectID) {
	s.dispatch(&models.Notification{
		EventID:      eventID,
		RiskID:       riskID,
		Type:         models.NotifyOccurredRiskUpdated,
		Scope:        scope,
		DepartmentID: departmentID,
	})
}

func (s *Service) RiskStatusChanged(eventID, riskID primitive.ObjectID, oldStatus, newStatus string) {
	s.dispatch(&models.Notification{
		EventID:   eventID,
		RiskID:    riskID,
		Type:      models.NotifyRiskStatusChanged,
		OldStatus: oldStatus,
		NewStatus: newStatus,
	})
}

func (s *Service) dispatch(n *models.Notification) {
	n.CreatedAt = time.Now().UTC()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := s.outbox.Insert(ctx, n); err != nil {
			s.log.Warn("notification outbox write failed",
				zap.String("type", n.Type),
				zap.String("eventId", n.EventID.Hex()),
				zap.Error(err))
		}

		if s.hub != nil {
			s.hub.Broadcast(n.EventID.Hex(), n)
		}
	}()
}
