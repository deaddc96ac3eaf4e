// Package apperror defines the business error taxonomy shared by usecases
// and the query protocol.
package apperror

import (
	"errors"
	"fmt"
)

type Code string

const (
	CodeEntityNotFound      Code = "ENTITY_NOT_FOUND"
	CodeDuplicateEntity     Code = "DUPLICATE_ENTITY"
	CodeInsufficientStock   Code = "INSUFFICIENT_STOCK"
	CodeOperationNotAllowed Code = "OPERATION_NOT_ALLOWED"
	CodeValidation          Code = "VALIDATION_ERROR"
	CodeInternal            Code = "INTERNAL_ERROR"
)

// Classification groups codes for callers that only care about the kind of
// failure.
type Classification string

const (
	ClassNotFound     Classification = "NOT_FOUND"
	ClassConflict     Classification = "CONFLICT"
	ClassBusinessRule Classification = "BUSINESS_RULE"
	ClassValidation   Classification = "VALIDATION"
	ClassInternal     Classification = "INTERNAL"
)

func (c Code) Classification() Classification {
	switch c {
	case CodeEntityNotFound:
		return ClassNotFound
	case CodeDuplicateEntity:
		return ClassConflict
	case CodeInsufficientStock, CodeOperationNotAllowed:
		return ClassBusinessRule
	case CodeValidation:
		return ClassValidation
	default:
		return ClassInternal
	}
}

type Error struct {
	Code    Code
	Message string
	Entity  string // brand, category, product
	ID      any    // identity or key of the entity involved, if any
	Err     error  // cause, never shown to callers
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error carrying the same code, so errors.Is(err,
// apperror.ErrNotFound) works without comparing messages.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code && t.Message == ""
}

// Sentinels for errors.Is.
var (
	ErrNotFound          = &Error{Code: CodeEntityNotFound}
	ErrDuplicate         = &Error{Code: CodeDuplicateEntity}
	ErrInsufficientStock = &Error{Code: CodeInsufficientStock}
	ErrNotAllowed        = &Error{Code: CodeOperationNotAllowed}
	ErrValidation        = &Error{Code: CodeValidation}
	ErrInternal          = &Error{Code: CodeInternal}
)

func NotFound(entity string, id any) *Error {
	return &Error{
		Code:    CodeEntityNotFound,
		Message: fmt.Sprintf("%s not found with ID: %v", capitalize(entity), id),
		Entity:  entity,
		ID:      id,
	}
}

// NotFoundBy reports a lookup by a unique key other than the identity.
func NotFoundBy(entity, key string, value any) *Error {
	return &Error{
		Code:    CodeEntityNotFound,
		Message: fmt.Sprintf("%s not found with %s: %v", capitalize(entity), key, value),
		Entity:  entity,
		ID:      value,
	}
}

func Duplicate(entity, field string, value any) *Error {
	return &Error{
		Code:    CodeDuplicateEntity,
		Message: fmt.Sprintf("%s with %s '%v' already exists", capitalize(entity), field, value),
		Entity:  entity,
		ID:      value,
	}
}

func InsufficientStock(productID int64, available, requested int) *Error {
	return &Error{
		Code:    CodeInsufficientStock,
		Message: fmt.Sprintf("Insufficient stock. Available: %d, Requested: %d", available, requested),
		Entity:  "product",
		ID:      productID,
	}
}

func NotAllowed(entity string, id any, msg string) *Error {
	return &Error{Code: CodeOperationNotAllowed, Message: msg, Entity: entity, ID: id}
}

func Validation(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// Internal wraps an unexpected failure. The cause is kept for logging only.
func Internal(err error, msg string) *Error {
	return &Error{Code: CodeInternal, Message: msg, Err: err}
}

// CodeOf returns the code of the first *Error in err's chain, or
// CodeInternal for anything else.
func CodeOf(err error) Code {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeInternal
}

// As is errors.As specialised for *Error.
func As(err error) (*Error, bool) {
	var ae *Error
	ok := errors.As(err, &ae)
	return ae, ok
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	if s[0] >= 'a' && s[0] <= 'z' {
		return string(s[0]-'a'+'A') + s[1:]
	}
	return s
}
