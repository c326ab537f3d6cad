package models

// Typed errors. The HTTP helper maps each type onto a status code.

type ErrorNotFound struct {
	Message string
}

func (e ErrorNotFound) Error() string { return e.Message }

type ErrorUnauthorized struct {
	Message string
}

func (e ErrorUnauthorized) Error() string { return e.Message }

type ErrorConflict struct {
	Message string
}

func (e ErrorConflict) Error() string { return e.Message }

// ErrorValidation carries the first violated rule only.
type ErrorValidation struct {
	Field   string
	Message string
}

func (e ErrorValidation) Error() string { return e.Message }

type ErrorInternalServer struct {
	Message string
}

func (e ErrorInternalServer) Error() string { return e.Message }

// ErrArticleNotFound covers both a missing row and a draft hidden from readers.
var ErrArticleNotFound = ErrorNotFound{Message: "article not found"}

var ErrInvalidCredentials = ErrorUnauthorized{Message: "invalid credentials"}
