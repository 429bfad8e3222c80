package queryerrors

import (
	"errors"
	"fmt"
)

// Kind classifies a failure raised while applying query options.
type Kind int

const (
	// KindValidation marks client errors such as a negative $top or a stale $skiptoken.
	KindValidation Kind = iota + 1
	// KindExpressionEvaluation marks failures evaluating $filter, $orderby or $search.
	KindExpressionEvaluation
	// KindLinkConstruction marks failures building a next link or delta link.
	KindLinkConstruction
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindExpressionEvaluation:
		return "expression_evaluation"
	case KindLinkConstruction:
		return "link_construction"
	default:
		return "unknown"
	}
}

var (
	// ErrValidation matches every QueryError of KindValidation.
	ErrValidation = errors.New("odata: query validation error")
	// ErrExpressionEvaluation matches every QueryError of KindExpressionEvaluation.
	ErrExpressionEvaluation = errors.New("odata: expression evaluation error")
	// ErrLinkConstruction matches every QueryError of KindLinkConstruction.
	ErrLinkConstruction = errors.New("odata: link construction error")
)

// QueryError is returned by the query option handlers.
type QueryError struct {
	Kind Kind

	// Message is the client-facing description.
	Message string

	// Err is an optional wrapped cause.
	Err error
}

// Error implements the error interface.
func (e *QueryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error, if any.
func (e *QueryError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for this error's kind.
func (e *QueryError) Is(target error) bool {
	switch target {
	case ErrValidation:
		return e.Kind == KindValidation
	case ErrExpressionEvaluation:
		return e.Kind == KindExpressionEvaluation
	case ErrLinkConstruction:
		return e.Kind == KindLinkConstruction
	}
	return false
}

// Validation creates a KindValidation error.
func Validation(message string) *QueryError {
	return &QueryError{Kind: KindValidation, Message: message}
}

// Evaluation creates a KindExpressionEvaluation error.
func Evaluation(format string, args ...interface{}) *QueryError {
	return &QueryError{Kind: KindExpressionEvaluation, Message: fmt.Sprintf(format, args...)}
}

// LinkConstruction creates a KindLinkConstruction error wrapping err.
func LinkConstruction(message string, err error) *QueryError {
	return &QueryError{Kind: KindLinkConstruction, Message: message, Err: err}
}

// KindOf returns the kind of the first QueryError in err's chain, or 0.
func KindOf(err error) Kind {
	var qe *QueryError
	if errors.As(err, &qe) {
		return qe.Kind
	}
	return 0
}
