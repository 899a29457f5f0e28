// Package apperr defines the error taxonomy shared by the message router,
// the live channel and the synchronous HTTP surface. Every failure falls in
// one of four buckets: validation, authorization, not-found or store.
package apperr

import (
	"errors"
	"fmt"
)

// Sentinel errors matched with errors.Is.
var (
	ErrNotFound = errors.New("resource not found")
	ErrStore    = errors.New("storage failure")
)

// Reason identifies why an action was denied.
type Reason string

const (
	ReasonSelfTarget      Reason = "self_target"
	ReasonSelfInvite      Reason = "self_invite"
	ReasonGroupNotFound   Reason = "group_not_found"
	ReasonNotAMember      Reason = "not_a_member"
	ReasonNotOwner        Reason = "not_owner"
	ReasonAlreadyMember   Reason = "already_member"
	ReasonNotAFollower    Reason = "not_a_follower"
	ReasonDuplicateInvite Reason = "duplicate_invite"
	ReasonNotInvitee      Reason = "not_invitee"
	ReasonInviteResolved  Reason = "invite_resolved"
)

// AuthorizationError is a deny decision from the authorization guard. It is
// recoverable, reported to the originator only, and no store write occurs.
type AuthorizationError struct {
	Reason  Reason
	Message string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("authorization denied (%s): %s", e.Reason, e.Message)
}

// Deny builds an AuthorizationError for the given reason.
func Deny(reason Reason, message string) *AuthorizationError {
	return &AuthorizationError{Reason: reason, Message: message}
}

// ValidationError reports malformed or out-of-policy input. Recoverable,
// reported to the originator only, no store write occurs.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed (%s): %s", e.Code, e.Message)
}

// Validation codes used across the live and synchronous paths.
const (
	CodeInvalidID        = "invalid_id"
	CodeInvalidEvent     = "invalid_event"
	CodeInvalidPayload   = "invalid_payload"
	CodeEmptyText        = "empty_text"
	CodeTextTooLong      = "text_too_long"
	CodeEmptyName        = "empty_name"
	CodeNameTooLong      = "name_too_long"
	CodeUnsupportedImage = "unsupported_image"
	CodeImageTooLarge    = "image_too_large"
)

// Invalid builds a ValidationError with the given code.
func Invalid(code, message string) *ValidationError {
	return &ValidationError{Code: code, Message: message}
}

// NotFound wraps ErrNotFound with a description of the missing entity.
func NotFound(what string) error {
	return fmt.Errorf("%s: %w", what, ErrNotFound)
}

// Store wraps an underlying persistence failure. The operation is considered
// not to have happened; no partial state remains.
func Store(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStore, err)
}

// AsAuthorization returns the deny decision carried by err, if any.
func AsAuthorization(err error) (*AuthorizationError, bool) {
	var ae *AuthorizationError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// AsValidation returns the validation failure carried by err, if any.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
