package value

import (
	"fmt"
	"reflect"

	"github.com/pkg/errors"
)

// FaultKind distinguishes where in the pipeline a cell failed.
type FaultKind uint8

const (
	FaultCompute FaultKind = iota
	FaultType
)

func (k FaultKind) String() string {
	if k == FaultType {
		return "type error"
	}
	return "compute error"
}

// Fault is the immutable error wrapper stored in place of a cell value.
// Two faults are equal when kind, error type, message and forwarded flag
// match; the captured stack is detail only.
type Fault struct {
	Kind      FaultKind
	ErrType   string
	Message   string
	Detail    string
	Forwarded bool
}

// PanicError carries a value recovered from a panicking getter.
type PanicError struct {
	Value any
}

func (p PanicError) Error() string { return fmt.Sprintf("panic: %v", p.Value) }

// NewFault captures err (with a stack) as a fault of the given kind.
func NewFault(kind FaultKind, err error) *Fault {
	if err == nil {
		err = errors.New("unknown error")
	}
	cause := errors.Cause(err)
	errType := reflect.TypeOf(cause).String()
	if pe, ok := cause.(PanicError); ok && pe.Value != nil {
		errType = "panic(" + reflect.TypeOf(pe.Value).String() + ")"
	}
	return &Fault{
		Kind:    kind,
		ErrType: errType,
		Message: err.Error(),
		Detail:  fmt.Sprintf("%+v", withStack(err)),
	}
}

// NewTypeFault records a failed coercion. Type faults are rebuilt on every
// draw, so no stack is formatted.
func NewTypeFault(err error) *Fault {
	return &Fault{
		Kind:    FaultType,
		ErrType: reflect.TypeOf(errors.Cause(err)).String(),
		Message: err.Error(),
		Detail:  err.Error(),
	}
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

func withStack(err error) error {
	if _, ok := err.(stackTracer); ok {
		return err
	}
	return errors.WithStack(err)
}

// Forward returns a copy marked as having originated upstream.
func (f *Fault) Forward() *Fault {
	if f == nil || f.Forwarded {
		return f
	}
	cp := *f
	cp.Forwarded = true
	return &cp
}

func (f *Fault) Error() string {
	if f == nil {
		return "<nil fault>"
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

// Equal compares fault information, ignoring the stack detail.
func (f *Fault) Equal(o *Fault) bool {
	if f == nil || o == nil {
		return f == o
	}
	return f.Kind == o.Kind && f.ErrType == o.ErrType && f.Message == o.Message && f.Forwarded == o.Forwarded
}

// Key identifies the fault for deduplication.
func (f *Fault) Key() string {
	if f == nil {
		return ""
	}
	return fmt.Sprintf("%d|%s|%s", f.Kind, f.ErrType, f.Message)
}
