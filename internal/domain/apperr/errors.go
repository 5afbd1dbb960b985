package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// FieldError is one field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

func NotFound(entity, id string) error { return &NotFoundError{Entity: entity, ID: id} }

// ValidationError carries field-level details so callers can act on them.
type ValidationError struct {
	Details []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Details))
	for _, d := range e.Details {
		msgs = append(msgs, d.Field+": "+d.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func Validation(details ...FieldError) error { return &ValidationError{Details: details} }

// MissingDocumentsError lists the required document types absent from an
// application.
type MissingDocumentsError struct {
	MissingTypes []string
}

func (e *MissingDocumentsError) Error() string {
	return "missing required documents: " + strings.Join(e.MissingTypes, ", ")
}

// DocumentVerificationError lists documents that failed the existence or
// ownership check.
type DocumentVerificationError struct {
	DocumentIDs []string
}

func (e *DocumentVerificationError) Error() string {
	return "document verification failed: " + strings.Join(e.DocumentIDs, ", ")
}

type InvalidTransitionError struct {
	From      string
	Operation string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("operation %s not allowed from status %s", e.Operation, e.From)
}

type ForbiddenError struct {
	Reason string
}

func (e *ForbiddenError) Error() string { return "forbidden: " + e.Reason }

func Forbidden(reason string) error { return &ForbiddenError{Reason: reason} }

// KYCIncompleteError is distinguished from generic validation: callers branch
// on it to drive a remediation flow.
type KYCIncompleteError struct {
	MissingTypes    []string
	PercentComplete int
}

func (e *KYCIncompleteError) Error() string {
	return fmt.Sprintf("kyc incomplete (%d%%): missing %s", e.PercentComplete, strings.Join(e.MissingTypes, ", "))
}

type ConflictError struct {
	Entity string
	Reason string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict on %s: %s", e.Entity, e.Reason)
}

func Conflict(entity, reason string) error { return &ConflictError{Entity: entity, Reason: reason} }

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
