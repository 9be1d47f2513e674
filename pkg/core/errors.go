package core

import (
	"errors"
	"fmt"
)

// Kind classifies an error so the HTTP façade and CLI can react to it
// without parsing messages.
type Kind uint8

// Error kinds.
const (
	KindInternal Kind = iota
	KindValidation
	KindUnsupportedFormat
	KindParse
	KindColumn
	KindUnknownModel
	KindUnknownMethod
	KindNotFound
)

var kindNames = map[Kind]string{
	KindInternal:          "internal_error",
	KindValidation:        "validation_error",
	KindUnsupportedFormat: "unsupported_format",
	KindParse:             "parse_error",
	KindColumn:            "column_error",
	KindUnknownModel:      "unknown_model",
	KindUnknownMethod:     "unknown_method",
	KindNotFound:          "not_found",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Error is a classified pipeline error.
type Error struct {
	Kind Kind
	// Op names the operation that failed, e.g. "reader.Read".
	Op  string
	Err error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// E wraps err with a kind and an operation name. A nil err yields nil.
func E(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// Errorf builds a classified error from a format string.
// The %w verb is honoured, so causes stay reachable through errors.Is/As.
func Errorf(kind Kind, op, format string, args ...any) error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the kind of the outermost classified error in err's chain.
// Unclassified errors are KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether err is classified as kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
