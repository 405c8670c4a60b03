package expr

import (
	"errors"
	"fmt"
)

var (
	// ErrParse indicates text that is not a well-formed expression.
	ErrParse = errors.New("expr: parse failed")

	// ErrBuild indicates a well-formed expression that could not be lowered,
	// for example one that references an unknown symbol or function.
	ErrBuild = errors.New("expr: build failed")
)

type ErrorKind uint8

const (
	ParseFailed ErrorKind = iota
	BuildFailed
)

func (k ErrorKind) String() string {
	if k == BuildFailed {
		return "build failed"
	}
	return "parse failed"
}

// CompileError carries a human-readable message for the host to display.
type CompileError struct {
	Kind ErrorKind
	Expr string
	Msg  string
}

func (e *CompileError) Error() string {
	if e.Expr == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	}
	return fmt.Sprintf("%s: %s (in %q)", e.Kind, e.Msg, e.Expr)
}

func (e *CompileError) Unwrap() error {
	if e.Kind == BuildFailed {
		return ErrBuild
	}
	return ErrParse
}

func parseError(text string, format string, args ...any) *CompileError {
	return &CompileError{Kind: ParseFailed, Expr: text, Msg: fmt.Sprintf(format, args...)}
}

func buildError(text string, format string, args ...any) *CompileError {
	return &CompileError{Kind: BuildFailed, Expr: text, Msg: fmt.Sprintf(format, args...)}
}
