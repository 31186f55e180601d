package mutation

import (
	"context"
	"errors"
	"net"
	"net/http"
)

// ErrorKind is how a failed request is reconciled
type ErrorKind int

const (
	ErrorNone ErrorKind = iota
	// ErrorNetwork rolls back silently
	ErrorNetwork
	// ErrorAuth rolls back silently and clears notification state
	ErrorAuth
	// ErrorConflict means the server already had the requested state
	ErrorConflict
	// ErrorOther rolls back and surfaces a dismissible error
	ErrorOther
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorNone:
		return "none"
	case ErrorNetwork:
		return "network"
	case ErrorAuth:
		return "auth"
	case ErrorConflict:
		return "conflict"
	default:
		return "other"
	}
}

// ErrUnknownEntity is returned when the target of an action is not cached
var ErrUnknownEntity = errors.New("entity not in store")

type statusCoder interface {
	StatusCode() int
}

type unreachable interface {
	Unreachable() bool
}

// Classify maps a transport error onto the reconciliation taxonomy
func Classify(err error) ErrorKind {
	if err == nil {
		return ErrorNone
	}

	var sc statusCoder
	if errors.As(err, &sc) {
		switch sc.StatusCode() {
		case http.StatusUnauthorized, http.StatusForbidden:
			return ErrorAuth
		case http.StatusConflict:
			return ErrorConflict
		default:
			return ErrorOther
		}
	}

	var u unreachable
	if errors.As(err, &u) && u.Unreachable() {
		return ErrorNetwork
	}
	var ne net.Error
	if errors.As(err, &ne) {
		return ErrorNetwork
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ErrorNetwork
	}
	return ErrorOther
}
