// file: internals/features/finance/fees/service/errors.go
package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"schoolku_backend/internals/features/finance/fees/calc"
	"schoolku_backend/internals/features/finance/fees/repository"
)

var (
	ErrDuplicateStructure   = errors.New("fee structure already exists for this student and session")
	ErrDuplicateAssignment  = errors.New("scholarship is already assigned to this student for this session")
	ErrDuplicateComponent   = errors.New("fee component name already used in this organization")
	ErrDuplicateScholarship = errors.New("scholarship name already used in this organization")
	ErrDuplicateTemplate    = errors.New("fee template name already used for this batch and session")
)

// ValidationError: input ditolak sebelum ada write.
type ValidationError struct {
	Fields []calc.FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Error())
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// FieldMap: bentuk { field: message } untuk response 422.
func (e *ValidationError) FieldMap() map[string]string {
	out := make(map[string]string, len(e.Fields))
	for _, f := range e.Fields {
		if _, ok := out[f.Field]; !ok {
			out[f.Field] = f.Message
		}
	}
	return out
}

func invalid(field, msg string) *ValidationError {
	return &ValidationError{Fields: []calc.FieldError{{Field: field, Message: msg}}}
}

// fromDefinition mengubah calc.DefinitionErrors menjadi ValidationError.
func fromDefinition(err error) error {
	if err == nil {
		return nil
	}
	var de calc.DefinitionErrors
	if errors.As(err, &de) {
		return &ValidationError{Fields: []calc.FieldError(de)}
	}
	return &ValidationError{Fields: []calc.FieldError{{Field: "definition", Message: err.Error()}}}
}

// NotFoundError: tidak ada, atau milik tenant lain.
type NotFoundError struct {
	Entity string
	ID     uuid.UUID
}

func (e *NotFoundError) Error() string {
	if e.ID == uuid.Nil {
		return e.Entity + " not found"
	}
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// DuplicateError membungkus salah satu sentinel ErrDuplicate*.
type DuplicateError struct {
	Reason error
}

func (e *DuplicateError) Error() string { return e.Reason.Error() }
func (e *DuplicateError) Unwrap() error { return e.Reason }

// ConsistencyError: invariant snapshot dilanggar, unit of work dibatalkan.
type ConsistencyError struct {
	StructureID uuid.UUID
	Err         error
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("fee structure %s inconsistent: %v", e.StructureID, e.Err)
}
func (e *ConsistencyError) Unwrap() error { return e.Err }

// notFoundOr: ErrNotFound dari store → NotFoundError, lainnya di-wrap.
func notFoundOr(err error, entity string, id uuid.UUID) error {
	if errors.Is(err, repository.ErrNotFound) {
		return &NotFoundError{Entity: entity, ID: id}
	}
	return fmt.Errorf("load %s: %w", entity, err)
}

// duplicateOr: ErrDuplicate dari store → DuplicateError(reason), lainnya di-wrap.
func duplicateOr(err error, reason error, op string) error {
	if errors.Is(err, repository.ErrDuplicate) {
		return &DuplicateError{Reason: reason}
	}
	return fmt.Errorf("%s: %w", op, err)
}
