package service

import (
	"strings"

	"github.com/OmerBirol/lenslight-tr/internal/apperr"
	"github.com/OmerBirol/lenslight-tr/internal/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// parseID converts an opaque user-facing id into an ObjectID, rejecting
// malformed input before any store access.
func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperr.Invalid(apperr.CodeInvalidID, "malformed id: "+id)
	}
	return oid, nil
}

// normalizeText trims the body and enforces the text policy.
func normalizeText(text string) (string, error) {
	clean := strings.TrimSpace(text)
	if clean == "" {
		return "", apperr.Invalid(apperr.CodeEmptyText, "message text cannot be empty")
	}
	if len(clean) > model.MaxTextLength {
		return "", apperr.Invalid(apperr.CodeTextTooLong, "message text exceeds maximum length")
	}
	return clean, nil
}
