package value

import (
	"fmt"
	"time"
)

// Kind tags the variant held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindInt
	KindFloat
	KindString
	KindDate
	KindAny
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindDate:
		return "date"
	case KindAny:
		return "any"
	case KindError:
		return "error"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Value is a raw or typed cell value. The zero Value is null.
type Value struct {
	kind  Kind
	i     int64
	f     float64
	s     string
	t     time.Time
	blob  any
	fault *Fault
}

func Null() Value              { return Value{} }
func Int(i int64) Value        { return Value{kind: KindInt, i: i} }
func Float(f float64) Value    { return Value{kind: KindFloat, f: f} }
func String(s string) Value    { return Value{kind: KindString, s: s} }
func Date(t time.Time) Value   { return Value{kind: KindDate, t: t} }
func Any(x any) Value          { return Value{kind: KindAny, blob: x} }
func FromFault(f *Fault) Value { return Value{kind: KindError, fault: f} }

// Of converts a plain Go value at the loader boundary.
func Of(x any) Value {
	switch v := x.(type) {
	case nil:
		return Null()
	case Value:
		return v
	case int:
		return Int(int64(v))
	case int8:
		return Int(int64(v))
	case int16:
		return Int(int64(v))
	case int32:
		return Int(int64(v))
	case int64:
		return Int(v)
	case uint8:
		return Int(int64(v))
	case uint16:
		return Int(int64(v))
	case uint32:
		return Int(int64(v))
	case float32:
		return Float(float64(v))
	case float64:
		return Float(v)
	case string:
		return String(v)
	case []byte:
		return String(string(v))
	case time.Time:
		return Date(v)
	case *Fault:
		return FromFault(v)
	default:
		return Any(v)
	}
}

func (v Value) Kind() Kind      { return v.kind }
func (v Value) IsNull() bool    { return v.kind == KindNull }
func (v Value) IsError() bool   { return v.kind == KindError }
func (v Value) Int() int64      { return v.i }
func (v Value) Float() float64  { return v.f }
func (v Value) Str() string     { return v.s }
func (v Value) Time() time.Time { return v.t }
func (v Value) Fault() *Fault   { return v.fault }
func (v Value) IsNumeric() bool { return v.kind == KindInt || v.kind == KindFloat }

// Interface returns the held value as a plain Go value.
func (v Value) Interface() any {
	switch v.kind {
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindString:
		return v.s
	case KindDate:
		return v.t
	case KindAny:
		return v.blob
	case KindError:
		return v.fault
	default:
		return nil
	}
}

// Equal reports whether v and o hold the same variant and payload. Error
// values compare by fault information.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindInt:
		return v.i == o.i
	case KindFloat:
		return v.f == o.f
	case KindString:
		return v.s == o.s
	case KindDate:
		return v.t.Equal(o.t)
	case KindError:
		return v.fault.Equal(o.fault)
	default:
		return fmt.Sprint(v.blob) == fmt.Sprint(o.blob)
	}
}

func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return ""
	case KindError:
		return v.fault.Error()
	default:
		return Format(v, TypeAny, "")
	}
}
