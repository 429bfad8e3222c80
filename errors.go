package odata

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/nlstn/go-odata-engine/internal/queryerrors"
)

// Sentinel errors returned (wrapped in a *QueryError) by the query pipeline.
// These can be used with errors.Is() for error handling.
var (
	// ErrValidation indicates a client-supplied query option was rejected, for
	// example a negative $top or a $skiptoken beyond the collection.
	// Maps to HTTP 400 Bad Request.
	ErrValidation = queryerrors.ErrValidation

	// ErrExpressionEvaluation indicates a $filter, $orderby or $search
	// expression could not be evaluated against an entity.
	// Maps to HTTP 500 Internal Server Error.
	ErrExpressionEvaluation = queryerrors.ErrExpressionEvaluation

	// ErrLinkConstruction indicates a next link or delta link could not be built.
	// Maps to HTTP 500 Internal Server Error.
	ErrLinkConstruction = queryerrors.ErrLinkConstruction
)

// QueryError is the error type returned by the query pipeline.
type QueryError = queryerrors.QueryError

// ErrorCode represents standard OData error codes.
type ErrorCode string

// Standard OData error codes.
const (
	// ErrorCodeGeneral is a general, unspecified error.
	ErrorCodeGeneral ErrorCode = "General"

	// ErrorCodeBadRequest indicates malformed or invalid request syntax.
	ErrorCodeBadRequest ErrorCode = "BadRequest"

	// ErrorCodeInternalServerError indicates an internal server error.
	ErrorCodeInternalServerError ErrorCode = "InternalServerError"

	// ErrorCodeNotImplemented indicates the operation is not implemented.
	ErrorCodeNotImplemented ErrorCode = "NotImplemented"
)

// ODataError provides a structured error that includes an HTTP status code,
// OData error code, and descriptive message. Callers embedding the engine in
// a service can return it to pin an explicit status code.
//
// Example:
//
//	if err := engine.Apply(ctx, coll, req); err != nil {
//	    return &odata.ODataError{
//	        StatusCode: odata.MapErrorToHTTPStatus(err),
//	        Code:       odata.ErrorCodeFor(err),
//	        Message:    "query failed",
//	        Err:        err,
//	    }
//	}
type ODataError struct {
	// StatusCode is the HTTP status code to return (e.g., 400, 500).
	StatusCode int

	// Code is the OData-specific error code.
	Code ErrorCode

	// Message is a human-readable error description.
	Message string

	// Target optionally identifies the query option that caused the error,
	// e.g. "$skiptoken".
	Target string

	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *ODataError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap implements error unwrapping for errors.Is() and errors.As().
func (e *ODataError) Unwrap() error {
	return e.Err
}

// MapErrorToHTTPStatus returns the HTTP status code for an error returned by
// the engine. Validation failures are client errors, everything else is a
// server error.
//
//	status := odata.MapErrorToHTTPStatus(err)
//	w.WriteHeader(status)
func MapErrorToHTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var odataErr *ODataError
	if errors.As(err, &odataErr) && odataErr.StatusCode != 0 {
		return odataErr.StatusCode
	}

	if errors.Is(err, ErrValidation) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// ErrorCodeFor returns the OData error code matching MapErrorToHTTPStatus.
func ErrorCodeFor(err error) ErrorCode {
	var odataErr *ODataError
	if errors.As(err, &odataErr) && odataErr.Code != "" {
		return odataErr.Code
	}

	switch MapErrorToHTTPStatus(err) {
	case http.StatusOK:
		return ""
	case http.StatusBadRequest:
		return ErrorCodeBadRequest
	default:
		return ErrorCodeInternalServerError
	}
}

// IsValidationError returns true if the error is a validation error.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsEvaluationError returns true if an expression could not be evaluated.
func IsEvaluationError(err error) bool {
	return errors.Is(err, ErrExpressionEvaluation)
}

// IsLinkConstructionError returns true if a continuation link could not be built.
func IsLinkConstructionError(err error) bool {
	return errors.Is(err, ErrLinkConstruction)
}
