package core

import (
	"errors"
	"fmt"
)

var ErrEmptyQuery = errors.New("query is empty")

type Kind uint8

const (
	KindUnknown Kind = iota
	KindInvalidQuery
	KindTransport
	KindStatus
	KindDecode
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindInvalidQuery:
		return "invalid_query"
	case KindTransport:
		return "transport"
	case KindStatus:
		return "status"
	case KindDecode:
		return "decode"
	case KindUnauthorized:
		return "unauthorized"
	default:
		return "unknown"
	}
}

// Error is the failure type returned by Service.Search and the adapters.
// Status is the HTTP status when the backend answered with a non-2xx code.
type Error struct {
	Kind   Kind
	Status int
	Msg    string
	Err    error
}

var (
	ErrInvalidQuery = &Error{Kind: KindInvalidQuery}
	ErrTransport    = &Error{Kind: KindTransport}
	ErrStatus       = &Error{Kind: KindStatus}
	ErrDecode       = &Error{Kind: KindDecode}
	ErrUnauthorized = &Error{Kind: KindUnauthorized}
)

func (e *Error) Error() string {
	switch {
	case e.Status != 0:
		return fmt.Sprintf("error %d: %s", e.Status, e.Msg)
	case e.Err != nil && e.Msg != "":
		return e.Msg + ": " + e.Err.Error()
	case e.Err != nil:
		return e.Kind.String() + ": " + e.Err.Error()
	case e.Msg != "":
		return e.Msg
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func InvalidQuery(msg string) *Error {
	return &Error{Kind: KindInvalidQuery, Msg: msg}
}

func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
