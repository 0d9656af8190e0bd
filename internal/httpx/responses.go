package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
)

// MessageResponse is the body of not-found and informational replies.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the body of failed requests.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusError is an error with a fixed HTTP status. When Err is set the
// reply is an ErrorResponse carrying its text; otherwise it is a
// MessageResponse carrying Message.
type StatusError struct {
	Status  int
	Message string
	Err     error
}

func (e *StatusError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

// NotFound returns a 404 with a human readable message.
func NotFound(message string) *StatusError {
	return &StatusError{Status: http.StatusNotFound, Message: message}
}

// BadRequest returns a 400 carrying err's text.
func BadRequest(err error) *StatusError {
	return &StatusError{Status: http.StatusBadRequest, Err: err}
}

// HandlerFunc is an http handler that reports failures by returning them.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// Handle adapts fn to http.HandlerFunc. It is the single place where
// returned errors become responses: a *StatusError keeps its status and
// anything else is a 500 with the error text.
func Handle(fn HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			WriteError(w, r, err)
		}
	}
}

// WriteError writes err as a JSON response.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	var se *StatusError
	if errors.As(err, &se) {
		if se.Err != nil {
			JSON(w, se.Status, ErrorResponse{Error: se.Err.Error()})
			return
		}
		JSON(w, se.Status, MessageResponse{Message: se.Message})
		return
	}

	LoggerFrom(r.Context()).Error("request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"err", err,
	)
	JSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("encode response", "err", err)
	}
}

// Message writes a MessageResponse with the given status.
func Message(w http.ResponseWriter, status int, message string) {
	JSON(w, status, MessageResponse{Message: message})
}
