package transport

import (
	"errors"
	"fmt"
)

// ErrUnreachable matches every error caused by the server not answering
var ErrUnreachable = errors.New("server unreachable")

// StatusError is a non-2xx response
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("server returned status %d", e.Code)
	}
	return fmt.Sprintf("server returned status %d: %s", e.Code, e.Body)
}

func (e *StatusError) StatusCode() int {
	return e.Code
}

// NetworkError is a request that never got a response
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

func (e *NetworkError) Is(target error) bool {
	return target == ErrUnreachable
}

func (e *NetworkError) Unreachable() bool {
	return true
}
