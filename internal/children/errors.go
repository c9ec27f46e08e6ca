package children

import "net/http"

// StatusError is a child lookup failure that maps to an HTTP status
type StatusError struct {
	status  int
	message string
}

func (e *StatusError) Error() string   { return e.message }
func (e *StatusError) HTTPStatus() int { return e.status }

var (
	ErrChildNotFound = &StatusError{status: http.StatusNotFound, message: "child not found"}
	ErrNotOwner      = &StatusError{status: http.StatusForbidden, message: "forbidden"}
)
