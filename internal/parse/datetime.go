package parse

import (
	"strings"
	"time"

	"github.com/ncruces/go-strftime"

	"tablestat/internal/value"
)

// layoutOf accepts either a strftime format ("%Y-%m-%dT%H:%M:%S") or a Go
// reference layout ("2006-01-02T15:04:05").
func layoutOf(format string) (string, error) {
	if !strings.Contains(format, "%") {
		return format, nil
	}
	return strftime.Layout(format)
}

func isTime(k value.Kind) bool { return k == value.KindTime }

// timeParser builds a parser for one layout. An unusable format is reported
// by every call in strict mode and leaves input untouched otherwise.
func timeParser(target, format string, strict bool, post func(time.Time) time.Time) Parser {
	layout, lerr := layoutOf(format)
	return lenient(target, strict, isTime, func(s string) (value.Value, error) {
		if lerr != nil {
			return value.Null(), lerr
		}
		t, err := time.Parse(layout, s)
		if err != nil {
			return value.Null(), err
		}
		if post != nil {
			t = post(t)
		}
		return value.Time(t), nil
	})
}

// DateTime parses text against format. There is no format inference: text
// that does not match the format exactly is malformed.
func DateTime(format string, strict bool) Parser {
	return timeParser("datetime", format, strict, nil)
}

// Date parses a calendar date; any time-of-day component is dropped.
func Date(format string, strict bool) Parser {
	return timeParser("date", format, strict, func(t time.Time) time.Time {
		y, m, d := t.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	})
}

// Time parses a time of day. The result carries the zero date.
func Time(format string, strict bool) Parser {
	return timeParser("time", format, strict, func(t time.Time) time.Time {
		return time.Date(0, 1, 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	})
}
