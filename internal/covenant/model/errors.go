package model

import (
	"errors"
	"fmt"
)

// Kind classifies covenant build failures.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindAddressParse
	KindScriptBuild
	KindRecursion
	KindInvalidSpec
)

func (k Kind) String() string {
	switch k {
	case KindAddressParse:
		return "address_parse"
	case KindScriptBuild:
		return "script_build"
	case KindRecursion:
		return "recursion"
	case KindInvalidSpec:
		return "invalid_spec"
	default:
		return "unknown"
	}
}

var (
	ErrUnknown      = errors.New("unknown error")
	ErrAddressParse = errors.New("address parse error")
	ErrScriptBuild  = errors.New("script build error")
	ErrRecursion    = errors.New("subtree resolution error")
	ErrInvalidSpec  = errors.New("invalid spec")
)

var kindSentinels = map[Kind]error{
	KindUnknown:      ErrUnknown,
	KindAddressParse: ErrAddressParse,
	KindScriptBuild:  ErrScriptBuild,
	KindRecursion:    ErrRecursion,
	KindInvalidSpec:  ErrInvalidSpec,
}

// Error is a classified failure. Op names the step that failed.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

// NewError wraps err with a kind. An error that already carries the same kind is returned as is.
func NewError(kind Kind, op string, err error) error {
	var e *Error
	if errors.As(err, &e) && e.Kind == kind && kind != KindRecursion {
		return err
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// Errorf is NewError with a formatted cause.
func Errorf(kind Kind, op, format string, args ...any) error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, kindSentinels[e.Kind])
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, kindSentinels[e.Kind], e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the kind sentinels, so errors.Is(err, ErrAddressParse) holds for any
// address failure, including one reported through a recursion error.
func (e *Error) Is(target error) bool {
	return kindSentinels[e.Kind] == target
}

// KindOf returns the outermost kind carried by err, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
