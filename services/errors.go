// services/errors.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

type Kind string

const (
	KindInvalidRequest Kind = "invalid_request"
	KindNotFound       Kind = "not_found"
	KindStorage        Kind = "storage_error"
)

// Error is the only error type services hand back to the HTTP layer.
// Timeout is a sub-kind of KindStorage.
type Error struct {
	Kind    Kind
	Timeout bool
	Op      string
	Msg     string
	Missing []string // unknown ids, for KindNotFound
	Err     error
}

var (
	ErrInvalidRequest = &Error{Kind: KindInvalidRequest}
	ErrNotFound       = &Error{Kind: KindNotFound}
	ErrStorage        = &Error{Kind: KindStorage}
	ErrTimeout        = &Error{Kind: KindStorage, Timeout: true}
)

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	switch {
	case e.Msg != "":
		b.WriteString(e.Msg)
	case e.Timeout:
		b.WriteString("storage timeout")
	default:
		b.WriteString(string(e.Kind))
	}
	if len(e.Missing) > 0 {
		fmt.Fprintf(&b, " [%s]", strings.Join(e.Missing, ", "))
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on kind, so errors.Is(err, ErrStorage) holds for every storage
// failure while errors.Is(err, ErrTimeout) holds only for timeouts.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Kind != e.Kind {
		return false
	}
	return !t.Timeout || e.Timeout
}

func invalidRequest(op, msg string) error {
	return &Error{Kind: KindInvalidRequest, Op: op, Msg: msg}
}

func notFound(op, msg string, missing ...string) error {
	return &Error{Kind: KindNotFound, Op: op, Msg: msg, Missing: missing}
}

func storageError(op string, err error) error {
	return &Error{
		Kind:    KindStorage,
		Op:      op,
		Timeout: errors.Is(err, context.DeadlineExceeded),
		Err:     err,
	}
}

// KindOf reports the Kind carried by err, or KindStorage for anything that did
// not come through this package.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStorage
}
