package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RiskScopeEvent      = "event"
	RiskScopeDepartment = "department"

	RiskStatusNotYet   = "not_yet"
	RiskStatusOccurred = "occurred"

	RiskImpactLow    = "low"
	RiskImpactMedium = "medium"
	RiskImpactHigh   = "high"
)

// RiskCategories is the static list served by the categories endpoint.
var RiskCategories = []string{
	"finance",
	"logistics",
	"communication",
	"personnel",
	"technology",
	"schedule",
	"safety",
	"external",
	"other",
}

// Occurrence is one recorded instance of a risk materializing, embedded
// in the parent risk document.
type Occurrence struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Note           string             `bson:"note" json:"note"`
	UpdatePersonID primitive.ObjectID `bson:"updatePersonId,omitempty" json:"updatePersonId,omitempty"`
	Timestamp      time.Time          `bson:"timestamp" json:"timestamp"`
}

type Risk struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EventID         primitive.ObjectID `bson:"eventId" json:"eventId"`
	DepartmentID    primitive.ObjectID `bson:"departmentId,omitempty" json:"departmentId,omitempty"`
	Scope           string             `bson:"scope" json:"scope"`
	Category        string             `bson:"category" json:"category"`
	Name            string             `bson:"name" json:"name"`
	ImpactLevel     string             `bson:"impactLevel,omitempty" json:"impactLevel,omitempty"`
	MitigationPlan  string             `bson:"mitigationPlan,omitempty" json:"mitigationPlan,omitempty"`
	ResponsePlan    string             `bson:"responsePlan,omitempty" json:"responsePlan,omitempty"`
	RiskStatus      string             `bson:"riskStatus" json:"riskStatus"`
	OccurredRisks   []Occurrence       `bson:"occurredRisks" json:"occurredRisks"`
	UpdatedPersonID primitive.ObjectID `bson:"updatedPersonId,omitempty" json:"updatedPersonId,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// DeriveRiskStatus recomputes a risk's status from its occurrence list.
// A risk with at least one recorded occurrence has occurred; otherwise it
// has not yet. Every mutating path goes through this single function.
func DeriveRiskStatus(occurrences []Occurrence) string {
	if len(occurrences) > 0 {
		return RiskStatusOccurred
	}
	return RiskStatusNotYet
}

func ValidImpactLevel(level string) bool {
	switch level {
	case RiskImpactLow, RiskImpactMedium, RiskImpactHigh:
		return true
	}
	return false
}

func ValidRiskCategory(category string) bool {
	for _, c := range RiskCategories {
		if c == category {
			return true
		}
	}
	return false
}
