package value

import (
	"encoding/json"
	"math"
)

// MarshalJSON renders v as the closest JSON value. Integers of any size are
// numbers; non-finite floats, complex numbers, bytes and times are strings;
// tuples are arrays.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindBool:
		return json.Marshal(v.i == 1)
	case KindInt:
		return []byte(v.String()), nil
	case KindFloat:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			return json.Marshal(v.String())
		}
		return json.Marshal(v.f)
	case KindTuple:
		return json.Marshal(v.tup)
	}
	return json.Marshal(v.String())
}
