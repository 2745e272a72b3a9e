// Package value defines the closed set of scalar values that can appear in a
// table cell.
//
// Cells from CSV files, SQL drivers, Arrow batches and Go literals all become
// a Value. Operations switch on its Kind; Of does the conversion once at the
// edge so no analytic code needs a type switch over any.
//
// The zero Value is the null sentinel. It is a dedicated kind and never equal
// to an empty string, zero or false.
package value

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"
)

// Kind is the coarse runtime category of a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindComplex
	KindText
	KindBytes
	KindTime
	KindTuple
	KindOther
)

var kindNames = [...]string{
	KindNull:    "null",
	KindBool:    "bool",
	KindInt:     "int",
	KindFloat:   "float",
	KindComplex: "complex",
	KindText:    "text",
	KindBytes:   "bytes",
	KindTime:    "time",
	KindTuple:   "tuple",
	KindOther:   "other",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// MarshalText renders k by name.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// IsNumeric reports whether k is an int or float kind.
func (k Kind) IsNumeric() bool { return k == KindInt || k == KindFloat }

// Value is an immutable tagged union over the supported cell kinds.
type Value struct {
	kind Kind
	i    int64
	f    float64
	c    complex128
	s    string // text and bytes payload
	t    time.Time
	big  *big.Int // set only for integers outside the int64 range
	tup  []Value
	x    any
}

// Null returns the null sentinel.
func Null() Value { return Value{} }

// Bool wraps b.
func Bool(b bool) Value {
	v := Value{kind: KindBool}
	if b {
		v.i = 1
	}
	return v
}

// Int wraps i.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// BigInt wraps b. Values that fit in an int64 are stored as such, so Int(5)
// and BigInt(big.NewInt(5)) are indistinguishable.
func BigInt(b *big.Int) Value {
	if b == nil {
		return Null()
	}
	if b.IsInt64() {
		return Int(b.Int64())
	}
	return Value{kind: KindInt, big: new(big.Int).Set(b)}
}

// Float wraps f.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// Complex wraps c.
func Complex(c complex128) Value { return Value{kind: KindComplex, c: c} }

// Text wraps s.
func Text(s string) Value { return Value{kind: KindText, s: s} }

// Bytes wraps a copy of b.
func Bytes(b []byte) Value { return Value{kind: KindBytes, s: string(b)} }

// Time wraps t.
func Time(t time.Time) Value { return Value{kind: KindTime, t: t} }

// Tuple wraps an ordered sequence of values. The slice is retained, callers
// must not modify it afterwards.
func Tuple(vs ...Value) Value { return Value{kind: KindTuple, tup: vs} }

// Other wraps a Go value that has no dedicated kind.
func Other(x any) Value {
	if x == nil {
		return Null()
	}
	return Value{kind: KindOther, x: x}
}

// Of converts a Go value into a Value. It understands the builtin scalar
// types, []byte, time.Time, *big.Int, Value, []Value and []any; anything else
// becomes KindOther.
func Of(x any) Value {
	switch t := x.(type) {
	case nil:
		return Null()
	case Value:
		return t
	case bool:
		return Bool(t)
	case int:
		return Int(int64(t))
	case int8:
		return Int(int64(t))
	case int16:
		return Int(int64(t))
	case int32:
		return Int(int64(t))
	case int64:
		return Int(t)
	case uint:
		return fromUint64(uint64(t))
	case uint8:
		return Int(int64(t))
	case uint16:
		return Int(int64(t))
	case uint32:
		return Int(int64(t))
	case uint64:
		return fromUint64(t)
	case float32:
		return Float(float64(t))
	case float64:
		return Float(t)
	case complex64:
		return Complex(complex128(t))
	case complex128:
		return Complex(t)
	case string:
		return Text(t)
	case []byte:
		if t == nil {
			return Null()
		}
		return Bytes(t)
	case time.Time:
		return Time(t)
	case *time.Time:
		if t == nil {
			return Null()
		}
		return Time(*t)
	case *big.Int:
		return BigInt(t)
	case []Value:
		return Tuple(t...)
	case []any:
		vs := make([]Value, len(t))
		for i, e := range t {
			vs[i] = Of(e)
		}
		return Tuple(vs...)
	default:
		return Other(x)
	}
}

func fromUint64(u uint64) Value {
	if u <= math.MaxInt64 {
		return Int(int64(u))
	}
	return BigInt(new(big.Int).SetUint64(u))
}

// Kind returns the kind tag of v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is the null sentinel.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsBool returns the boolean payload.
func (v Value) AsBool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.i == 1, true
}

// AsInt returns the integer payload when it fits in an int64.
func (v Value) AsInt() (int64, bool) {
	if v.kind != KindInt || v.big != nil {
		return 0, false
	}
	return v.i, true
}

// AsBigInt returns the integer payload as a new big.Int.
func (v Value) AsBigInt() (*big.Int, bool) {
	if v.kind != KindInt {
		return nil, false
	}
	if v.big != nil {
		return new(big.Int).Set(v.big), true
	}
	return big.NewInt(v.i), true
}

// AsFloat returns the payload of an int or float value as a float64.
func (v Value) AsFloat() (float64, bool) {
	switch v.kind {
	case KindFloat:
		return v.f, true
	case KindInt:
		if v.big != nil {
			f, _ := new(big.Float).SetInt(v.big).Float64()
			return f, true
		}
		return float64(v.i), true
	}
	return 0, false
}

// AsComplex returns the complex payload.
func (v Value) AsComplex() (complex128, bool) {
	if v.kind != KindComplex {
		return 0, false
	}
	return v.c, true
}

// AsText returns the text payload.
func (v Value) AsText() (string, bool) {
	if v.kind != KindText {
		return "", false
	}
	return v.s, true
}

// AsBytes returns a copy of the bytes payload.
func (v Value) AsBytes() ([]byte, bool) {
	if v.kind != KindBytes {
		return nil, false
	}
	return []byte(v.s), true
}

// AsTime returns the time payload.
func (v Value) AsTime() (time.Time, bool) {
	if v.kind != KindTime {
		return time.Time{}, false
	}
	return v.t, true
}

// Elems returns the elements of a tuple, or nil for any other kind.
func (v Value) Elems() []Value {
	if v.kind != KindTuple {
		return nil
	}
	return v.tup
}

// Len returns the number of tuple elements, or 1 for a scalar.
func (v Value) Len() int {
	if v.kind == KindTuple {
		return len(v.tup)
	}
	return 1
}

// Interface converts v back into a plain Go value: nil, bool, int64,
// *big.Int, float64, complex128, string, []byte, time.Time, []any, or the
// wrapped value for KindOther.
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.i == 1
	case KindInt:
		if v.big != nil {
			return new(big.Int).Set(v.big)
		}
		return v.i
	case KindFloat:
		return v.f
	case KindComplex:
		return v.c
	case KindText:
		return v.s
	case KindBytes:
		return []byte(v.s)
	case KindTime:
		return v.t
	case KindTuple:
		out := make([]any, len(v.tup))
		for i, e := range v.tup {
			out[i] = e.Interface()
		}
		return out
	case KindOther:
		return v.x
	}
	return nil
}

// String renders v for display. Null renders as the empty string, text as
// itself, and tuples as a parenthesised, comma-separated list.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return ""
	case KindBool:
		return strconv.FormatBool(v.i == 1)
	case KindInt:
		if v.big != nil {
			return v.big.String()
		}
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindComplex:
		return strconv.FormatComplex(v.c, 'g', -1, 128)
	case KindText, KindBytes:
		return v.s
	case KindTime:
		return v.t.Format(time.RFC3339Nano)
	case KindTuple:
		var b strings.Builder
		b.WriteByte('(')
		for i, e := range v.tup {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(e.String())
		}
		b.WriteByte(')')
		return b.String()
	}
	return fmt.Sprint(v.x)
}

// GoString implements fmt.GoStringer, used by %#v in test failures.
func (v Value) GoString() string {
	switch v.kind {
	case KindNull:
		return "value.Null()"
	case KindText:
		return "value.Text(" + strconv.Quote(v.s) + ")"
	case KindBytes:
		return "value.Bytes(" + strconv.Quote(v.s) + ")"
	}
	return "value." + v.kind.String() + "(" + v.String() + ")"
}
