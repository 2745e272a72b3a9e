package value

import (
	"math"
	"math/big"
	"sort"
	"testing"
	"time"
)

func TestOf_Kinds(t *testing.T) {
	t.Parallel()

	ts := time.Date(2002, 12, 25, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		in   any
		want Kind
	}{
		{nil, KindNull},
		{true, KindBool},
		{7, KindInt},
		{uint8(7), KindInt},
		{uint64(math.MaxUint64), KindInt},
		{2.5, KindFloat},
		{complex(3, 4), KindComplex},
		{"x", KindText},
		{[]byte("x"), KindBytes},
		{ts, KindTime},
		{[]any{"a", 1}, KindTuple},
		{struct{}{}, KindOther},
		{Text("already"), KindText},
	}
	for _, tc := range cases {
		if got := Of(tc.in).Kind(); got != tc.want {
			t.Errorf("Of(%#v).Kind()=%v; want %v", tc.in, got, tc.want)
		}
	}
}

func TestNullIsDistinct(t *testing.T) {
	t.Parallel()

	for _, v := range []Value{Text(""), Int(0), Bool(false), Float(0), Tuple()} {
		if Equal(Null(), v) {
			t.Fatalf("Null() equal to %#v", v)
		}
		if Key(Null()) == Key(v) {
			t.Fatalf("Null() key collides with %#v", v)
		}
	}
	if !Null().IsNull() || Text("").IsNull() {
		t.Fatalf("IsNull mismatch")
	}
}

func TestCompare_NumericAcrossKinds(t *testing.T) {
	t.Parallel()

	huge, _ := new(big.Int).SetString("9223372036854775808", 10) // MaxInt64+1
	cases := []struct {
		a, b Value
		want int
	}{
		{Int(1), Float(1.0), 0},
		{Int(1), Float(1.5), -1},
		{Float(2.5), Int(2), 1},
		{BigInt(huge), Int(math.MaxInt64), 1},
		{BigInt(huge), Float(9.3e18), -1},
		{Float(math.NaN()), Int(-1000), -1},
		{Float(math.NaN()), Float(math.NaN()), 0},
		{Float(math.Inf(1)), BigInt(huge), 1},
	}
	for _, tc := range cases {
		if got := Compare(tc.a, tc.b); got != tc.want {
			t.Errorf("Compare(%#v,%#v)=%d; want %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestCompare_KindOrderAndTuples(t *testing.T) {
	t.Parallel()

	vs := []Value{
		Tuple(Text("b"), Int(2)),
		Text("a"),
		Int(3),
		Null(),
		Bool(true),
		Tuple(Text("b")),
		Tuple(Text("a"), Int(9)),
	}
	sort.SliceStable(vs, func(i, j int) bool { return Less(vs[i], vs[j]) })

	want := []Value{
		Null(),
		Bool(true),
		Int(3),
		Text("a"),
		Tuple(Text("a"), Int(9)),
		Tuple(Text("b")),
		Tuple(Text("b"), Int(2)),
	}
	for i := range want {
		if !Equal(vs[i], want[i]) {
			t.Fatalf("sorted[%d]=%#v; want %#v", i, vs[i], want[i])
		}
	}
}

// TestKeyAgreesWithEqual checks that equal values share a key and hash, and
// that distinct values do not.
func TestKeyAgreesWithEqual(t *testing.T) {
	t.Parallel()

	huge, _ := new(big.Int).SetString("100000000000000000000", 10)
	same := [][2]Value{
		{Int(1), Float(1)},
		{Float(-0.0), Int(0)},
		{BigInt(huge), Float(1e20)},
		{BigInt(big.NewInt(5)), Int(5)},
		{Tuple(Text("a"), Int(1)), Tuple(Text("a"), Float(1))},
		{Time(time.Date(2020, 1, 1, 1, 0, 0, 0, time.FixedZone("x", 3600))), Time(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))},
	}
	for _, p := range same {
		if !Equal(p[0], p[1]) {
			t.Errorf("Equal(%#v,%#v)=false", p[0], p[1])
		}
		if Key(p[0]) != Key(p[1]) || Hash(p[0]) != Hash(p[1]) {
			t.Errorf("key mismatch for %#v and %#v: %q vs %q", p[0], p[1], Key(p[0]), Key(p[1]))
		}
	}

	diff := [][2]Value{
		{Text("1"), Int(1)},
		{Bytes([]byte("a")), Text("a")},
		{Bool(true), Int(1)},
		{Tuple(Text("ab")), Tuple(Text("a"), Text("b"))},
		{Float(1.5), Float(1.25)},
	}
	for _, p := range diff {
		if Equal(p[0], p[1]) {
			t.Errorf("Equal(%#v,%#v)=true", p[0], p[1])
		}
		if Key(p[0]) == Key(p[1]) {
			t.Errorf("key collision for %#v and %#v", p[0], p[1])
		}
	}
}

func TestString(t *testing.T) {
	t.Parallel()

	cases := []struct {
		v    Value
		want string
	}{
		{Null(), ""},
		{Int(42), "42"},
		{Float(2.5), "2.5"},
		{Bool(false), "false"},
		{Text("x"), "x"},
		{Tuple(Text("a"), Int(1)), "(a, 1)"},
	}
	for _, tc := range cases {
		if got := tc.v.String(); got != tc.want {
			t.Errorf("%#v.String()=%q; want %q", tc.v, got, tc.want)
		}
	}
}
