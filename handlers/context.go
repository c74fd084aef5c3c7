package handlers

import (
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const msgServerError = "Server error"

func userIDFromRequest(r *http.Request) (primitive.ObjectID, bool) {
	idStr, ok := r.Context().Value("userID").(string)
	if !ok || idStr == "" {
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(idStr)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}
