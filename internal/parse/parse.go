// Package parse provides lenient value coercion.
//
// Every parser has two modes chosen up front by the caller:
//
//   - non-strict: malformed input comes back unchanged, null stays null, and
//     no error is ever returned;
//   - strict: malformed text fails with *ParseError, and a null input fails
//     with *TypeCoercionError (a missing value is not malformed text).
//
// Text and bytes are parsed after trimming surrounding whitespace. Values
// that already have the target kind pass through.
package parse

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"tablestat/internal/value"
)

var (
	// ErrParse matches every *ParseError.
	ErrParse = errors.New("parse error")
	// ErrTypeCoercion matches every *TypeCoercionError.
	ErrTypeCoercion = errors.New("type coercion error")
)

// ParseError reports text that a strict parser could not convert.
type ParseError struct {
	Target string
	Input  string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse %s: invalid input %q: %v", e.Target, e.Input, e.Err)
	}
	return fmt.Sprintf("parse %s: invalid input %q", e.Target, e.Input)
}

func (e *ParseError) Is(target error) bool { return target == ErrParse }

func (e *ParseError) Unwrap() error { return e.Err }

// TypeCoercionError reports an input whose kind a strict parser cannot
// accept at all, such as null.
type TypeCoercionError struct {
	Target string
	Kind   value.Kind
}

func (e *TypeCoercionError) Error() string {
	return fmt.Sprintf("parse %s: cannot coerce %s", e.Target, e.Kind)
}

func (e *TypeCoercionError) Is(target error) bool { return target == ErrTypeCoercion }

// Parser converts one value.
type Parser func(value.Value) (value.Value, error)

// Named pairs a parser with the target type name used in reports.
type Named struct {
	Name  string
	Parse Parser
}

// textOf extracts parseable text from text and bytes values.
func textOf(v value.Value) (string, bool) {
	switch v.Kind() {
	case value.KindText:
		s, _ := v.AsText()
		return strings.TrimSpace(s), true
	case value.KindBytes:
		b, _ := v.AsBytes()
		return strings.TrimSpace(string(b)), true
	}
	return "", false
}

// lenient wraps a text conversion with the strict/non-strict policy shared
// by every parser. accept reports kinds that pass through unchanged.
func lenient(target string, strict bool, accept func(value.Kind) bool, conv func(string) (value.Value, error)) Parser {
	return func(v value.Value) (value.Value, error) {
		if v.IsNull() {
			if strict {
				return v, &TypeCoercionError{Target: target, Kind: value.KindNull}
			}
			return v, nil
		}
		if accept != nil && accept(v.Kind()) {
			return v, nil
		}
		s, ok := textOf(v)
		if !ok {
			if strict {
				return v, &ParseError{Target: target, Input: v.String()}
			}
			return v, nil
		}
		out, err := conv(s)
		if err != nil {
			if strict {
				return v, &ParseError{Target: target, Input: s, Err: err}
			}
			return v, nil
		}
		return out, nil
	}
}

func isInt(k value.Kind) bool { return k == value.KindInt }

func isFloat(k value.Kind) bool { return k == value.KindFloat }

func isNumber(k value.Kind) bool {
	return k == value.KindInt || k == value.KindFloat || k == value.KindComplex
}

// Int parses base-10 integers of any size; integers beyond the int64 range
// become arbitrary-precision values.
func Int(strict bool) Parser { return lenient("int", strict, isInt, parseInt) }

// Float parses floating-point numbers, including "inf" and "nan".
func Float(strict bool) Parser {
	return lenient("float", strict, isFloat, func(s string) (value.Value, error) {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return value.Null(), err
		}
		return value.Float(f), nil
	})
}

// Number tries an integer, then a float, then a complex number ("3+4j" or
// "3+4i").
func Number(strict bool) Parser { return lenient("number", strict, isNumber, parseNumber) }

// DefaultParsers are the parsers tallied by parse-count reports: integer
// first, then float.
func DefaultParsers() []Named {
	return []Named{
		{Name: "int", Parse: Int(true)},
		{Name: "float", Parse: Float(true)},
	}
}

func parseInt(s string) (value.Value, error) {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return value.Int(i), nil
	} else if !errors.Is(err, strconv.ErrRange) {
		return value.Null(), err
	}
	b, ok := new(big.Int).SetString(strings.TrimPrefix(s, "+"), 10)
	if !ok {
		return value.Null(), strconv.ErrSyntax
	}
	return value.BigInt(b), nil
}

func parseNumber(s string) (value.Value, error) {
	if v, err := parseInt(s); err == nil {
		return v, nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return value.Float(f), nil
	}
	c, err := strconv.ParseComplex(complexText(s), 128)
	if err != nil {
		return value.Null(), err
	}
	return value.Complex(c), nil
}

// complexText accepts the engineering "j" suffix and optional parentheses.
func complexText(s string) string {
	s = strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
	if strings.HasSuffix(s, "j") || strings.HasSuffix(s, "J") {
		s = s[:len(s)-1] + "i"
	}
	return s
}
