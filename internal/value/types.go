package value

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Type is the declared target type of a column.
type Type uint8

const (
	TypeAny Type = iota
	TypeInt
	TypeFloat
	TypeString
	TypeDate
)

const (
	DefaultDateLayout = "2006-01-02"
	defaultFloatFmt   = "%.2f"
)

// dateLayouts are tried in order when coercing strings to dates.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	DefaultDateLayout,
	"2006/01/02",
	"01/02/2006",
	"02 Jan 2006",
	"Jan 2, 2006",
}

func (t Type) String() string {
	switch t {
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeString:
		return "string"
	case TypeDate:
		return "date"
	default:
		return "any"
	}
}

// ParseType maps a type name to a Type.
func ParseType(name string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "any":
		return TypeAny, nil
	case "int", "integer":
		return TypeInt, nil
	case "float", "number":
		return TypeFloat, nil
	case "str", "string", "text":
		return TypeString, nil
	case "date", "datetime", "time":
		return TypeDate, nil
	}
	return TypeAny, fmt.Errorf("unknown column type %q", name)
}

// IsNumeric reports whether values of this type are right-justified.
func (t Type) IsNumeric() bool {
	return t == TypeInt || t == TypeFloat
}

// Zero is the concrete fallback used when a typed value is unavailable.
func (t Type) Zero() Value {
	switch t {
	case TypeInt:
		return Int(0)
	case TypeFloat:
		return Float(0)
	case TypeString:
		return String("")
	case TypeDate:
		return Date(time.Time{})
	default:
		return Null()
	}
}

// ErrConversion is the cause of every coercion failure.
var ErrConversion = errors.New("cannot convert")

func conversionError(v Value, t Type) error {
	return errors.Wrapf(ErrConversion, "%s %q to %s", v.Kind(), v.String(), t)
}

// Coerce converts v to type t. Null and error values pass through
// unchanged; empty strings become null for non-string types.
func Coerce(v Value, t Type) (Value, error) {
	if v.kind == KindNull || v.kind == KindError || t == TypeAny {
		return v, nil
	}
	if v.kind == KindString && t != TypeString && strings.TrimSpace(v.s) == "" {
		return Null(), nil
	}
	switch t {
	case TypeString:
		if v.kind == KindString {
			return v, nil
		}
		return String(Format(v, TypeAny, "")), nil
	case TypeInt:
		return toInt(v)
	case TypeFloat:
		return toFloat(v)
	case TypeDate:
		return toDate(v)
	}
	return v, nil
}

func toInt(v Value) (Value, error) {
	switch v.kind {
	case KindInt:
		return v, nil
	case KindFloat:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			return Null(), conversionError(v, TypeInt)
		}
		return Int(int64(v.f)), nil
	case KindString:
		i, err := strconv.ParseInt(strings.TrimSpace(v.s), 10, 64)
		if err != nil {
			return Null(), conversionError(v, TypeInt)
		}
		return Int(i), nil
	case KindDate:
		return Int(v.t.Unix()), nil
	}
	return Null(), conversionError(v, TypeInt)
}

func toFloat(v Value) (Value, error) {
	switch v.kind {
	case KindFloat:
		return v, nil
	case KindInt:
		return Float(float64(v.i)), nil
	case KindString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.s), 64)
		if err != nil {
			return Null(), conversionError(v, TypeFloat)
		}
		return Float(f), nil
	case KindDate:
		return Float(float64(v.t.UnixNano()) / 1e9), nil
	}
	return Null(), conversionError(v, TypeFloat)
}

func toDate(v Value) (Value, error) {
	switch v.kind {
	case KindDate:
		return v, nil
	case KindInt:
		return Date(time.Unix(v.i, 0).UTC()), nil
	case KindFloat:
		sec, frac := math.Modf(v.f)
		return Date(time.Unix(int64(sec), int64(frac*1e9)).UTC()), nil
	case KindString:
		s := strings.TrimSpace(v.s)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return Date(t), nil
			}
		}
	}
	return Null(), conversionError(v, TypeDate)
}

// Format renders v using t's formatter and an optional format string: a fmt
// verb for numbers, strings and opaque values, a time layout for dates.
func Format(v Value, t Type, fmtstr string) string {
	switch v.kind {
	case KindNull:
		return ""
	case KindInt:
		if fmtstr != "" {
			return fmt.Sprintf(fmtstr, v.i)
		}
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		if fmtstr == "" && t == TypeFloat {
			fmtstr = defaultFloatFmt
		}
		if fmtstr != "" {
			return fmt.Sprintf(fmtstr, v.f)
		}
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindString:
		if fmtstr != "" {
			return fmt.Sprintf(fmtstr, v.s)
		}
		return v.s
	case KindDate:
		if fmtstr == "" {
			fmtstr = DefaultDateLayout
			if hasClock(v.t) {
				fmtstr = "2006-01-02 15:04:05"
			}
		}
		return v.t.Format(fmtstr)
	case KindError:
		return v.fault.Error()
	default:
		if fmtstr != "" {
			return fmt.Sprintf(fmtstr, v.blob)
		}
		return fmt.Sprint(v.blob)
	}
}

func hasClock(t time.Time) bool {
	h, m, s := t.Clock()
	return h != 0 || m != 0 || s != 0 || t.Nanosecond() != 0
}
