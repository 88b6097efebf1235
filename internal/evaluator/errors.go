package evaluator

import (
	"fmt"
)

type ErrorKind string

const (
	UndefinedName          ErrorKind = "UndefinedName"
	TypeMismatch           ErrorKind = "TypeMismatch"
	PrivateAccessViolation ErrorKind = "PrivateAccessViolation"
	DivisionByZero         ErrorKind = "DivisionByZero"
	UnmatchedCase          ErrorKind = "UnmatchedCase"
	UnknownClassOrMethod   ErrorKind = "UnknownClassOrMethod"
	StackOverflow          ErrorKind = "StackOverflow"
	Interrupted            ErrorKind = "Interrupted"
)

// Sentinels for errors.Is; they match any RuntimeError of the same kind.
var (
	ErrUndefinedName          = &RuntimeError{Kind: UndefinedName}
	ErrTypeMismatch           = &RuntimeError{Kind: TypeMismatch}
	ErrPrivateAccessViolation = &RuntimeError{Kind: PrivateAccessViolation}
	ErrDivisionByZero         = &RuntimeError{Kind: DivisionByZero}
	ErrUnmatchedCase          = &RuntimeError{Kind: UnmatchedCase}
	ErrUnknownClassOrMethod   = &RuntimeError{Kind: UnknownClassOrMethod}
	ErrStackOverflow          = &RuntimeError{Kind: StackOverflow}
	ErrInterrupted            = &RuntimeError{Kind: Interrupted}
)

// RuntimeError aborts the current top-level run.
type RuntimeError struct {
	Kind    ErrorKind
	Message string
}

func (re *RuntimeError) Error() string {
	if re.Message == "" {
		return string(re.Kind)
	}
	return re.Message
}

func (re *RuntimeError) Is(target error) bool {
	t, ok := target.(*RuntimeError)
	return ok && t.Kind == re.Kind
}

func newError(kind ErrorKind, format string, a ...interface{}) *RuntimeError {
	return &RuntimeError{Kind: kind, Message: fmt.Sprintf(format, a...)}
}
