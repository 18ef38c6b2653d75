package werrors

import (
	"fmt"
	"runtime"
	"strings"
)

// Error extends the standard error interface with a component code and
// an optional chain of parent errors, mirroring nabbar-golib/errors'
// Error interface (trimmed to the operations this module actually uses).
type Error interface {
	error

	// Code returns this error's own CodeError.
	Code() CodeError

	// IsCode reports whether this error's own code equals the given code.
	IsCode(code CodeError) bool

	// HasCode reports whether this error or any parent carries the given code.
	HasCode(code CodeError) bool

	// Parent returns the direct parent errors, if any.
	Parent() []error

	// Unwrap supports errors.Is / errors.As over the parent chain.
	Unwrap() []error

	// Frame returns "file:line" of where this error was constructed.
	Frame() string
}

type wrappedError struct {
	code    CodeError
	message string
	parent  []error
	frame   string
}

func frameOf(skip int) string {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%s:%d", file, line)
}

// New builds an Error for the given code, using the registered message
// for that code, with optional parent errors.
func New(code CodeError, parent ...error) Error {
	return &wrappedError{
		code:    code,
		message: code.Message(),
		parent:  filterNil(parent),
		frame:   frameOf(2),
	}
}

// Newf builds an Error for the given code with a formatted message
// instead of the registered one.
func Newf(code CodeError, format string, args ...interface{}) Error {
	return &wrappedError{
		code:    code,
		message: fmt.Sprintf(format, args...),
		frame:   frameOf(2),
	}
}

// Wrap attaches a code to an existing error, keeping it as a parent.
func Wrap(code CodeError, err error) Error {
	if err == nil {
		return nil
	}
	return &wrappedError{
		code:    code,
		message: code.Message(),
		parent:  []error{err},
		frame:   frameOf(2),
	}
}

func filterNil(errs []error) []error {
	out := make([]error, 0, len(errs))
	for _, e := range errs {
		if e != nil {
			out = append(out, e)
		}
	}
	return out
}

func (e *wrappedError) Error() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("[%d] %s", e.code, e.message))
	for _, p := range e.parent {
		b.WriteString(": ")
		b.WriteString(p.Error())
	}
	return b.String()
}

func (e *wrappedError) Code() CodeError { return e.code }

func (e *wrappedError) IsCode(code CodeError) bool { return e.code == code }

func (e *wrappedError) HasCode(code CodeError) bool {
	if e.code == code {
		return true
	}
	for _, p := range e.parent {
		if we, ok := p.(Error); ok && we.HasCode(code) {
			return true
		}
	}
	return false
}

func (e *wrappedError) Parent() []error { return e.parent }

func (e *wrappedError) Unwrap() []error { return e.parent }

func (e *wrappedError) Frame() string { return e.frame }

// Is reports whether err is a werrors.Error carrying the given code.
func Is(err error, code CodeError) bool {
	we, ok := err.(Error)
	return ok && we.HasCode(code)
}

// Get extracts the werrors.Error from err, if it is one.
func Get(err error) (Error, bool) {
	we, ok := err.(Error)
	return we, ok
}
