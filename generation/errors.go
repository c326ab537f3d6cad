package generation

import "fmt"

// Kind classifies a failed generation call.
type Kind string

const (
	KindNotConfigured Kind = "not_configured"
	KindTimeout       Kind = "timeout"
	KindNetwork       Kind = "network"
	KindServer        Kind = "server"
	KindNoResponse    Kind = "no_response"
	KindMalformed     Kind = "malformed"
)

// Error carries a message fit to show an admin.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func notConfigured() *Error {
	return &Error{
		Kind:    KindNotConfigured,
		Message: "API key is not configured. Set it in the API settings.",
	}
}

func timeoutError(err error) *Error {
	return &Error{
		Kind:    KindTimeout,
		Message: "request timed out; check your network connection and that the API endpoint is correct",
		Err:     err,
	}
}

func networkError(err error) *Error {
	return &Error{
		Kind: KindNetwork,
		Message: "network error: could not reach the API endpoint. " +
			"Check the endpoint address and your connection, and try starting the relay or switching the \"use proxy\" option",
		Err: err,
	}
}

func noResponseError(err error) *Error {
	return &Error{
		Kind:    KindNoResponse,
		Message: "the server sent no response; check that the API endpoint is correct",
		Err:     err,
	}
}

func serverError(status int, detail string) *Error {
	return &Error{
		Kind:    KindServer,
		Status:  status,
		Message: fmt.Sprintf("server error (%d): %s", status, detail),
	}
}

func malformedError(status int, err error) *Error {
	return &Error{
		Kind:    KindMalformed,
		Status:  status,
		Message: "unexpected response format from the API",
		Err:     err,
	}
}

// Answered reports whether the provider accepted the request with a 2xx
// status, even though no usable text came back.
func (e *Error) Answered() bool {
	return e.Kind == KindMalformed
}
