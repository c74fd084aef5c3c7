package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Event-scoped roles. Permissions are resolved per event through the
// membership record, never from the JWT.
const (
	RoleHoOC   = "hooc"
	RoleHoD    = "hod"
	RoleMember = "member"
)

type EventMember struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EventID      primitive.ObjectID `bson:"eventId" json:"eventId"`
	UserID       primitive.ObjectID `bson:"userId" json:"userId"`
	Role         string             `bson:"role" json:"role"`
	DepartmentID primitive.ObjectID `bson:"departmentId,omitempty" json:"departmentId,omitempty"`
	JoinedAt     time.Time          `bson:"joinedAt" json:"joinedAt"`
}

func ValidRole(role string) bool {
	switch role {
	case RoleHoOC, RoleHoD, RoleMember:
		return true
	}
	return false
}
