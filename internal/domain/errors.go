package domain

import (
	"errors"
	"fmt"
	"strings"

	"toolshare-backend/internal/utils"
)

// Sentinels for errors.Is; each typed error below matches exactly one of them.
var (
	ErrValidation        = errors.New("validation failed")
	ErrOverlap           = errors.New("date range overlaps an existing booking")
	ErrNotFound          = errors.New("not found")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// ValidationError reports a malformed or retroactive request.
type ValidationError struct {
	Field  string
	Reason string
}

func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Reason
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// OverlapError reports the blocked ranges a requested range collides with.
type OverlapError struct {
	ListingID int32
	Requested utils.DateRange
	Conflicts []utils.DateRange
}

func (e *OverlapError) Error() string {
	parts := make([]string, 0, len(e.Conflicts))
	for _, c := range e.Conflicts {
		parts = append(parts, c.String())
	}
	return fmt.Sprintf("listing %d: %s overlaps %s", e.ListingID, e.Requested, strings.Join(parts, ", "))
}

func (e *OverlapError) Is(target error) bool { return target == ErrOverlap }

type NotFoundError struct {
	Entity string
	ID     int32
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// AuthorizationError means the actor is not allowed to perform the action on the rental or listing.
type AuthorizationError struct {
	ActorID int32
	Action  string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("user %d is not allowed to %s", e.ActorID, e.Action)
}

func (e *AuthorizationError) Is(target error) bool { return target == ErrUnauthorized }

type InvalidTransitionError struct {
	RentalID int32
	From     RentalStatus
	Action   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s rental %d in status %s", e.Action, e.RentalID, e.From)
}

func (e *InvalidTransitionError) Is(target error) bool { return target == ErrInvalidTransition }

// IsUserFacing reports whether err should be shown inline to the user rather
// than as a generic failure.
func IsUserFacing(err error) bool {
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrOverlap)
}
