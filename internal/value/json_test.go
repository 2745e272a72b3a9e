package value

import (
	"encoding/json"
	"math"
	"math/big"
	"testing"
	"time"
)

func TestMarshalJSON(t *testing.T) {
	t.Parallel()

	huge, _ := new(big.Int).SetString("123456789012345678901234567890", 10)
	cases := []struct {
		in   Value
		want string
	}{
		{Null(), `null`},
		{Bool(true), `true`},
		{Int(-3), `-3`},
		{BigInt(huge), `123456789012345678901234567890`},
		{Float(1.5), `1.5`},
		{Float(math.Inf(1)), `"+Inf"`},
		{Text(`a"b`), `"a\"b"`},
		{Time(time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)), `"2020-01-02T03:04:05Z"`},
		{Tuple(Text("a"), Null(), Int(1)), `["a",null,1]`},
	}
	for _, tc := range cases {
		got, err := json.Marshal(tc.in)
		if err != nil {
			t.Fatalf("Marshal(%#v): %v", tc.in, err)
		}
		if string(got) != tc.want {
			t.Errorf("Marshal(%#v)=%s; want %s", tc.in, got, tc.want)
		}
	}
}
