package value

import (
	"bytes"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/zeebo/xxh3"
)

// rank orders kinds relative to each other. Ints and floats share a rank so
// that 1 and 1.0 compare (and hash) equal.
func (k Kind) rank() int {
	switch k {
	case KindNull:
		return 0
	case KindBool:
		return 1
	case KindInt, KindFloat:
		return 2
	case KindComplex:
		return 3
	case KindText:
		return 4
	case KindBytes:
		return 5
	case KindTime:
		return 6
	case KindTuple:
		return 7
	}
	return 8
}

// Compare defines a total order over values: null < bool < numbers <
// complex < text < bytes < time < tuple < other. Numbers compare by
// magnitude across int and float, NaN sorts below every other number.
// Tuples compare element-wise, a shorter prefix first.
func Compare(a, b Value) int {
	ra, rb := a.kind.rank(), b.kind.rank()
	if ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}
	switch a.kind {
	case KindNull:
		return 0
	case KindBool:
		return cmpInt64(a.i, b.i)
	case KindInt, KindFloat:
		return compareNumbers(a, b)
	case KindComplex:
		if c := cmpFloat(real(a.c), real(b.c)); c != 0 {
			return c
		}
		return cmpFloat(imag(a.c), imag(b.c))
	case KindText:
		return strings.Compare(a.s, b.s)
	case KindBytes:
		return bytes.Compare([]byte(a.s), []byte(b.s))
	case KindTime:
		return a.t.Compare(b.t)
	case KindTuple:
		n := min(len(a.tup), len(b.tup))
		for i := 0; i < n; i++ {
			if c := Compare(a.tup[i], b.tup[i]); c != 0 {
				return c
			}
		}
		return cmpInt64(int64(len(a.tup)), int64(len(b.tup)))
	}
	return strings.Compare(otherKey(a.x), otherKey(b.x))
}

// Equal reports whether a and b are the same value under Compare.
func Equal(a, b Value) bool { return Compare(a, b) == 0 }

// Less reports whether a sorts before b.
func Less(a, b Value) bool { return Compare(a, b) < 0 }

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cmpFloat(a, b float64) int {
	an, bn := math.IsNaN(a), math.IsNaN(b)
	switch {
	case an && bn:
		return 0
	case an:
		return -1
	case bn:
		return 1
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareNumbers(a, b Value) int {
	if a.kind == KindInt && b.kind == KindInt && a.big == nil && b.big == nil {
		return cmpInt64(a.i, b.i)
	}
	if a.kind == KindFloat && b.kind == KindFloat {
		return cmpFloat(a.f, b.f)
	}
	// Mixed or arbitrary-precision comparison.
	if a.kind == KindFloat && math.IsNaN(a.f) {
		return -1
	}
	if b.kind == KindFloat && math.IsNaN(b.f) {
		return 1
	}
	return bigFloat(a).Cmp(bigFloat(b))
}

func bigFloat(v Value) *big.Float {
	switch {
	case v.kind == KindFloat:
		return new(big.Float).SetFloat64(v.f)
	case v.big != nil:
		return new(big.Float).SetInt(v.big)
	}
	return new(big.Float).SetInt64(v.i)
}

func otherKey(x any) string { return fmt.Sprintf("%T:%v", x, x) }

// AppendKey appends a canonical encoding of v to dst. Two values produce the
// same encoding exactly when Equal reports true, which makes the encoding
// suitable for hashing and map keys.
func AppendKey(dst []byte, v Value) []byte {
	switch v.kind {
	case KindNull:
		return append(dst, '~')
	case KindBool:
		if v.i == 1 {
			return append(dst, 'T')
		}
		return append(dst, 'F')
	case KindInt, KindFloat:
		return appendNumberKey(append(dst, 'n'), v)
	case KindComplex:
		dst = append(dst, 'c')
		dst = appendFloatKey(dst, real(v.c))
		dst = append(dst, ',')
		return appendFloatKey(dst, imag(v.c))
	case KindText:
		return appendLenPrefixed(append(dst, 's'), v.s)
	case KindBytes:
		return appendLenPrefixed(append(dst, 'b'), v.s)
	case KindTime:
		return appendLenPrefixed(append(dst, 't'), v.t.UTC().Format(time.RFC3339Nano))
	case KindTuple:
		dst = append(dst, '(')
		dst = strconv.AppendInt(dst, int64(len(v.tup)), 10)
		dst = append(dst, ':')
		for _, e := range v.tup {
			dst = AppendKey(dst, e)
		}
		return append(dst, ')')
	}
	return appendLenPrefixed(append(dst, 'o'), otherKey(v.x))
}

// Key returns the canonical encoding of v as a string.
func Key(v Value) string { return string(AppendKey(nil, v)) }

// Hash returns a 64-bit hash of the canonical encoding of v.
func Hash(v Value) uint64 {
	var buf [64]byte
	return xxh3.Hash(AppendKey(buf[:0], v))
}

func appendLenPrefixed(dst []byte, s string) []byte {
	dst = strconv.AppendInt(dst, int64(len(s)), 10)
	dst = append(dst, ':')
	return append(dst, s...)
}

func appendNumberKey(dst []byte, v Value) []byte {
	if v.kind == KindInt {
		if v.big != nil {
			return v.big.Append(dst, 10)
		}
		return strconv.AppendInt(dst, v.i, 10)
	}
	return appendFloatKey(dst, v.f)
}

// appendFloatKey encodes integral floats the same way as the equal integer.
func appendFloatKey(dst []byte, f float64) []byte {
	switch {
	case math.IsNaN(f):
		return append(dst, "NaN"...)
	case math.IsInf(f, 1):
		return append(dst, "+Inf"...)
	case math.IsInf(f, -1):
		return append(dst, "-Inf"...)
	case f == math.Trunc(f):
		if f >= math.MinInt64 && f < math.MaxInt64 {
			return strconv.AppendInt(dst, int64(f), 10)
		}
		bi, _ := new(big.Float).SetFloat64(f).Int(nil)
		return bi.Append(dst, 10)
	}
	return strconv.AppendFloat(dst, f, 'g', -1, 64)
}
