package ingest

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/awantoch/formrelay/constants"
)

// Kind classifies request-fatal ingestion errors.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindFormat
	KindAuth
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindFormat:
		return "format"
	case KindAuth:
		return "auth"
	default:
		return "internal"
	}
}

// HTTPStatus maps the kind onto the response status code.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation, KindFormat:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Error aborts a request before any side effect runs.
type Error struct {
	Kind    Kind
	Message string
	// Missing lists every absent required field for KindValidation.
	Missing []string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func missingFieldsError(missing []string) *Error {
	return &Error{
		Kind:    KindValidation,
		Message: constants.ResponseMissingFieldsPrefix + strings.Join(missing, ", "),
		Missing: missing,
	}
}

func formatError(msg string, err error) *Error {
	return &Error{Kind: KindFormat, Message: msg, Err: err}
}
