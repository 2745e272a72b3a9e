package parse

import (
	"errors"
	"strings"

	"tablestat/internal/value"
)

var errNotBool = errors.New("not a boolean")

// lowerSet builds a lowercased membership set. Empty input returns nil.
func lowerSet(in []string) map[string]struct{} {
	if len(in) == 0 {
		return nil
	}
	m := make(map[string]struct{}, len(in))
	for _, s := range in {
		m[strings.ToLower(strings.TrimSpace(s))] = struct{}{}
	}
	return m
}

func isBool(k value.Kind) bool { return k == value.KindBool }

// Bool parses booleans case-insensitively. With no vocabulary the default
// set is used: 1/t/true/yes/y/on/ano and 0/f/false/no/n/off/ne. A custom
// truthy or falsy list replaces the default entirely.
func Bool(strict bool, truthy, falsy []string) Parser {
	yes, no := lowerSet(truthy), lowerSet(falsy)
	custom := yes != nil || no != nil
	return lenient("bool", strict, isBool, func(s string) (value.Value, error) {
		ls := strings.ToLower(s)
		if custom {
			if _, ok := yes[ls]; ok {
				return value.Bool(true), nil
			}
			if _, ok := no[ls]; ok {
				return value.Bool(false), nil
			}
			return value.Null(), errNotBool
		}
		switch ls {
		case "1", "t", "true", "yes", "y", "on", "ano":
			return value.Bool(true), nil
		case "0", "f", "false", "no", "n", "off", "ne":
			return value.Bool(false), nil
		}
		return value.Null(), errNotBool
	})
}
