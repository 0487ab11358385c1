package controlflow

import (
	"math"
	"reflect"
	"strconv"
	"strings"
)

// LooseEqual reports whether a and b are equal under coercive equality,
// the same rules a JavaScript template runtime applies for ==.
//
//	nil == nil              true   (null and undefined are both nil)
//	nil == anything else    false
//	number == string        string converted to a number
//	bool == anything        bool converted to 0 or 1 first
//	NaN == anything         false
//
// Values that are neither nil, bool, numeric nor string compare with Go ==
// when their dynamic types are comparable, and are never equal otherwise.
func LooseEqual(a, b interface{}) bool {
	if isNil(a) || isNil(b) {
		return isNil(a) && isNil(b)
	}

	if ab, ok := a.(bool); ok {
		return LooseEqual(boolNumber(ab), b)
	}
	if bb, ok := b.(bool); ok {
		return LooseEqual(a, boolNumber(bb))
	}

	as, aStr := a.(string)
	bs, bStr := b.(string)
	an, aNum := toFloat(a)
	bn, bNum := toFloat(b)

	switch {
	case aStr && bStr:
		return as == bs
	case aNum && bNum:
		return an == bn
	case aNum && bStr:
		return an == stringNumber(bs)
	case aStr && bNum:
		return stringNumber(as) == bn
	}

	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return identical(a, b)
}

// identical is a == b, false when a comparable struct holds an
// uncomparable interface value.
func identical(a, b interface{}) (eq bool) {
	defer func() {
		if recover() != nil {
			eq = false
		}
	}()
	return a == b
}

// Contains reports whether value is loosely equal to one of candidates.
func Contains(candidates []interface{}, value interface{}) bool {
	for _, c := range candidates {
		if LooseEqual(c, value) {
			return true
		}
	}
	return false
}

func isNil(v interface{}) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

func boolNumber(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func toFloat(v interface{}) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

// stringNumber converts s the way Number(s) does: surrounding whitespace is
// ignored, an empty string is 0, 0x/0o/0b prefixes select the base and
// anything unparsable is NaN.
func stringNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}

	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}

	if len(s) > 2 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			if strings.Contains(s, "_") {
				return math.NaN()
			}
			n, err := strconv.ParseUint(s[2:], base, 64)
			if err != nil {
				return math.NaN()
			}
			return float64(n)
		}
	}

	// ParseFloat also accepts "inf", "nan" and digit separators.
	if strings.ContainsAny(s, "iInN_xXpP") {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}
