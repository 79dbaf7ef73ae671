package util

import "fmt"

// ResponseError carries an explicit HTTP status through the error chain
// for cases the sentinel mapping in the error handler does not cover.
type ResponseError struct {
	Msg    string
	Status int
}

func (e ResponseError) Error() string { return e.Msg }

func NewResponseError(status int, format string, args ...interface{}) error {
	return ResponseError{
		Msg:    fmt.Sprintf(format, args...),
		Status: status,
	}
}
