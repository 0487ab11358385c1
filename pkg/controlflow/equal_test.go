package controlflow

import (
	"math"
	"testing"
)

type status string

func TestLooseEqual(t *testing.T) {
	var nilMap map[string]interface{}
	var nilPtr *int

	tests := []struct {
		name string
		a, b interface{}
		want bool
	}{
		{"int and numeric string", 1, "1", true},
		{"zero and false", 0, false, true},
		{"nil and nil", nil, nil, true},
		{"nil and typed nil", nil, nilMap, true},
		{"typed nils", nilPtr, nilMap, true},
		{"different ints", 1, 2, false},
		{"int and float", 2, 2.0, true},
		{"uint and int", uint8(7), int64(7), true},
		{"float32 and float64", float32(0.5), 0.5, true},
		{"equal strings", "abc", "abc", true},
		{"different strings", "abc", "abd", false},
		{"true and one", true, 1, true},
		{"true and string one", true, "1", true},
		{"false and empty string", false, "", true},
		{"false and string zero", false, "0", true},
		{"true and string true", true, "true", false},
		{"true and true", true, true, true},
		{"true and false", true, false, false},
		{"nil and zero", nil, 0, false},
		{"nil and false", nil, false, false},
		{"nil and empty string", nil, "", false},
		{"empty string and zero", "", 0, true},
		{"padded numeric string", " 42 ", 42, true},
		{"hex string", "0x10", 16, true},
		{"binary string", "0b101", 5, true},
		{"exponent string", "1e3", 1000, true},
		{"not a number", "abc", 0, false},
		{"lowercase inf is not a number", "inf", math.Inf(1), false},
		{"Infinity", "Infinity", math.Inf(1), true},
		{"NaN", math.NaN(), math.NaN(), false},
		{"named string type", status("open"), status("open"), true},
		{"named string type and string", status("open"), "open", false},
		{"slices", []int{1}, []int{1}, false},
		{"structs", struct{ A int }{1}, struct{ A int }{1}, true},
		{"struct holding uncomparable value", struct{ V interface{} }{[]int{1}}, struct{ V interface{} }{[]int{1}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LooseEqual(tt.a, tt.b); got != tt.want {
				t.Errorf("LooseEqual(%#v, %#v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
			if got := LooseEqual(tt.b, tt.a); got != tt.want {
				t.Errorf("LooseEqual(%#v, %#v) = %v, want %v", tt.b, tt.a, got, tt.want)
			}
		})
	}
}

func TestContains(t *testing.T) {
	if !Contains([]interface{}{"x", "y", "z"}, "y") {
		t.Error("expected y to be found")
	}
	if !Contains([]interface{}{1, 2}, "2") {
		t.Error("expected \"2\" to match candidate 2")
	}
	if Contains([]interface{}{"x"}, nil) {
		t.Error("nil should not match a string candidate")
	}
	if !Contains([]interface{}{"x", nil}, nil) {
		t.Error("nil should match a nil candidate")
	}
	if Contains(nil, "x") {
		t.Error("empty candidate list should never match")
	}
}
