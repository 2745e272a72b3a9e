package parse

import (
	"errors"
	"math/big"
	"strconv"
	"testing"
	"time"

	"tablestat/internal/value"
)

func TestNumber_Lenient(t *testing.T) {
	t.Parallel()

	p := Number(false)
	overflow := strconv.FormatUint(uint64(1)<<63, 10) // MaxInt64 + 1
	want, _ := new(big.Int).SetString(overflow, 10)

	cases := []struct {
		in   value.Value
		want value.Value
	}{
		{value.Text("1"), value.Int(1)},
		{value.Text("1.0"), value.Float(1.0)},
		{value.Text(overflow), value.BigInt(want)},
		{value.Text("3+4j"), value.Complex(complex(3, 4))},
		{value.Text(" 42 "), value.Int(42)},
		{value.Text("aaa"), value.Text("aaa")},
		{value.Null(), value.Null()},
		{value.Int(7), value.Int(7)},
		{value.Bytes([]byte("2.5")), value.Float(2.5)},
	}
	for _, tc := range cases {
		got, err := p(tc.in)
		if err != nil {
			t.Fatalf("Number(false)(%#v) error: %v", tc.in, err)
		}
		if got.Kind() != tc.want.Kind() || !value.Equal(got, tc.want) {
			t.Errorf("Number(false)(%#v)=%#v; want %#v", tc.in, got, tc.want)
		}
	}
	if got, _ := p(value.Text("1.0")); got.Kind() != value.KindFloat {
		t.Fatalf("1.0 parsed as %v; want float", got.Kind())
	}
}

func TestNumber_Strict(t *testing.T) {
	t.Parallel()

	p := Number(true)
	if got, err := p(value.Text("1")); err != nil || !value.Equal(got, value.Int(1)) {
		t.Fatalf("strict 1=%#v,%v", got, err)
	}
	if got, err := p(value.Text("3+4j")); err != nil || !value.Equal(got, value.Complex(3+4i)) {
		t.Fatalf("strict 3+4j=%#v,%v", got, err)
	}

	_, err := p(value.Text("aaa"))
	var pe *ParseError
	if !errors.As(err, &pe) || !errors.Is(err, ErrParse) {
		t.Fatalf("strict aaa err=%v; want ParseError", err)
	}
	if pe.Input != "aaa" {
		t.Fatalf("ParseError.Input=%q; want aaa", pe.Input)
	}

	_, err = p(value.Null())
	if !errors.Is(err, ErrTypeCoercion) || errors.Is(err, ErrParse) {
		t.Fatalf("strict null err=%v; want TypeCoercionError only", err)
	}

	if _, err := p(value.Bool(true)); !errors.Is(err, ErrParse) {
		t.Fatalf("strict bool err=%v; want ParseError", err)
	}
}

func TestIntAndFloat(t *testing.T) {
	t.Parallel()

	if _, err := Int(true)(value.Text("3.7")); !errors.Is(err, ErrParse) {
		t.Fatalf("Int(3.7) err=%v; want ParseError", err)
	}
	if got, err := Float(true)(value.Text("3")); err != nil || got.Kind() != value.KindFloat {
		t.Fatalf("Float(3)=%#v,%v; want float", got, err)
	}
	if got, _ := Int(false)(value.Text("x")); !value.Equal(got, value.Text("x")) {
		t.Fatalf("lenient Int(x)=%#v; want original text", got)
	}
}

func TestDateTime(t *testing.T) {
	t.Parallel()

	strict := DateTime("%Y-%m-%dT%H:%M:%S", true)
	if _, err := strict(value.Text("2002-12-25 00:00:00")); !errors.Is(err, ErrParse) {
		t.Fatalf("strict mismatch err=%v; want ParseError", err)
	}
	got, err := strict(value.Text("2002-12-25T00:00:00"))
	if err != nil {
		t.Fatalf("strict match: %v", err)
	}
	want := time.Date(2002, 12, 25, 0, 0, 0, 0, time.UTC)
	if tm, _ := got.AsTime(); !tm.Equal(want) {
		t.Fatalf("parsed=%v; want %v", tm, want)
	}

	lax := DateTime("%Y-%m-%dT%H:%M:%S", false)
	v, err := lax(value.Text("2002-12-25 00:00:00"))
	if err != nil {
		t.Fatalf("lax returned error: %v", err)
	}
	if s, ok := v.AsText(); !ok || s != "2002-12-25 00:00:00" {
		t.Fatalf("lax=%#v; want original text", v)
	}

	// Go reference layouts are accepted as-is.
	if _, err := DateTime("2006-01-02", true)(value.Text("2020-02-29")); err != nil {
		t.Fatalf("go layout: %v", err)
	}
}

func TestDateAndTime(t *testing.T) {
	t.Parallel()

	d, err := Date("%d.%m.%Y", true)(value.Text("24.12.2019"))
	if err != nil {
		t.Fatalf("Date: %v", err)
	}
	if tm, _ := d.AsTime(); tm.Year() != 2019 || tm.Month() != 12 || tm.Hour() != 0 {
		t.Fatalf("Date=%v", tm)
	}

	tv, err := Time("%H:%M:%S", true)(value.Text("13:45:10"))
	if err != nil {
		t.Fatalf("Time: %v", err)
	}
	if tm, _ := tv.AsTime(); tm.Hour() != 13 || tm.Minute() != 45 || tm.Year() != 0 {
		t.Fatalf("Time=%v", tm)
	}
}

func TestBool(t *testing.T) {
	t.Parallel()

	p := Bool(true, nil, nil)
	for in, want := range map[string]bool{"yes": true, "N": false, "ano": true, "0": false, "On": true} {
		got, err := p(value.Text(in))
		if err != nil {
			t.Fatalf("Bool(%q): %v", in, err)
		}
		if b, _ := got.AsBool(); b != want {
			t.Fatalf("Bool(%q)=%v; want %v", in, b, want)
		}
	}
	if _, err := p(value.Text("maybe")); !errors.Is(err, ErrParse) {
		t.Fatalf("Bool(maybe) err=%v; want ParseError", err)
	}

	custom := Bool(true, []string{"ja"}, []string{"nein"})
	if _, err := custom(value.Text("yes")); !errors.Is(err, ErrParse) {
		t.Fatalf("custom vocab must replace defaults, err=%v", err)
	}
	if got, _ := custom(value.Text("JA")); !value.Equal(got, value.Bool(true)) {
		t.Fatalf("custom JA=%#v; want true", got)
	}
}
