package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification types pushed over the websocket stream and persisted to
// the outbox collection.
const (
	NotifyRiskCreated         = "RISK_CREATED"
	NotifyRiskUpdated         = "RISK_UPDATED"
	NotifyRiskOccurred        = "RISK_OCCURRED"
	NotifyOccurredRiskUpdated = "OCCURRED_RISK_UPDATED"
	NotifyRiskStatusChanged   = "RISK_STATUS_CHANGED"
)

type Notification struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EventID      primitive.ObjectID `bson:"eventId" json:"eventId"`
	RiskID       primitive.ObjectID `bson:"riskId,omitempty" json:"riskId,omitempty"`
	Type         string             `bson:"type" json:"type"`
	Scope        string             `bson:"scope,omitempty" json:"scope,omitempty"`
	DepartmentID primitive.ObjectID `bson:"departmentId,omitempty" json:"departmentId,omitempty"`
	OldStatus    string             `bson:"oldStatus,omitempty" json:"oldStatus,omitempty"`
	NewStatus    string             `bson:"newStatus,omitempty" json:"newStatus,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}
