// Package apperr defines the tagged application error returned by domain
// services. Callers translate it to a transport response by Kind.
package apperr

import (
	"github.com/go-faster/errors"
)

// Kind classifies an application error.
type Kind uint8

const (
	// KindUnknown is reported for errors that are not application errors.
	KindUnknown Kind = iota
	// KindNotFound means a referenced record does not exist.
	KindNotFound
	// KindValidation means the request was rejected by a business rule.
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "NotFoundError"
	case KindValidation:
		return "ValidationError"
	default:
		return "UnknownError"
	}
}

// Sentinels matching any application error of the given kind via errors.Is.
var (
	ErrNotFound   = &Error{Kind: KindNotFound}
	ErrValidation = &Error{Kind: KindValidation}
)

// Error is a domain failure carrying a user-facing message.
type Error struct {
	Kind    Kind
	Message string
	// ProductID is set when the failure concerns a single product.
	ProductID string
	Err       error
}

// NotFound returns a KindNotFound error with the given message.
func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

// Validation returns a KindValidation error with the given message.
func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.String()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is a kind sentinel (empty message) of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Kind == e.Kind
}

// WithProduct attaches the offending product id.
func (e *Error) WithProduct(id string) *Error {
	e.ProductID = id
	return e
}

// WithCause records the underlying error.
func (e *Error) WithCause(err error) *Error {
	e.Err = err
	return e
}

// KindOf returns the Kind of the first application error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
