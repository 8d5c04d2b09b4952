// Package apperr defines the application error taxonomy shared by services and
// the HTTP layer. Handlers never build status codes themselves; they return one
// of these errors and the API middleware translates it.
package apperr

import "net/http"

type Kind string

const (
	KindBadRequest      Kind = "BadRequestError"
	KindNotFound        Kind = "NotFoundError"
	KindUnauthenticated Kind = "UnauthenticatedError"
	KindValidation      Kind = "ValidationError"
	KindDuplicate       Kind = "DuplicateKeyError"
	KindCast            Kind = "CastError"
	KindGeneral         Kind = "GeneralError"
)

// Error is a classified application error with an optional per-field detail map.
type Error struct {
	Kind   Kind
	Msg    string
	Fields map[string]string
}

func (e *Error) Error() string { return e.Msg }

// StatusCode maps the error kind to its HTTP status.
func (e *Error) StatusCode() int {
	switch e.Kind {
	case KindBadRequest, KindValidation, KindDuplicate:
		return http.StatusBadRequest
	case KindNotFound, KindCast:
		return http.StatusNotFound
	case KindUnauthenticated:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func BadRequest(msg string) *Error {
	return &Error{Kind: KindBadRequest, Msg: msg}
}

func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Msg: msg}
}

func Unauthenticated(msg string) *Error {
	return &Error{Kind: KindUnauthenticated, Msg: msg}
}

func Validation(fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Msg: "Validation failed", Fields: fields}
}

func Duplicate(fields map[string]string) *Error {
	return &Error{Kind: KindDuplicate, Msg: "Duplicate value error", Fields: fields}
}

func InvalidID(id string) *Error {
	return &Error{Kind: KindCast, Msg: "Invalid ID", Fields: map[string]string{"id": "No item found with id: " + id}}
}
