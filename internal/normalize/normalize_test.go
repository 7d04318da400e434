package normalize

import (
	"reflect"
	"testing"
)

func TestValueScalars(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want any
	}{
		{"comma decimal", "1,23", 1.23},
		{"plain decimal", "1.23", 1.23},
		{"integer string", "42", float64(42)},
		{"blank", "", nil},
		{"whitespace only", "   ", nil},
		{"non-numeric", "abc", "abc"},
		{"comma in text", "hello, world", "hello, world"},
		{"already float", 3.5, 3.5},
		{"bool passes through", true, true},
		{"nil", nil, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Value(tc.in)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("Value(%#v) = %#v, want %#v", tc.in, got, tc.want)
			}
		})
	}
}

func TestValueIdempotent(t *testing.T) {
	inputs := []any{"1,23", "2.5", "", "abc", 7.0, nil}
	for _, in := range inputs {
		once := Value(in)
		twice := Value(once)
		if !reflect.DeepEqual(once, twice) {
			t.Fatalf("Value not idempotent for %#v: first %#v, second %#v", in, once, twice)
		}
	}
}

func TestRecordRecursion(t *testing.T) {
	in := map[string]any{
		"cap":      "2,5",
		"kod_2":    "TEST",
		"empty":    "",
		"nested":   map[string]any{"tolerans": "0,05"},
		"lines":    []any{"1,5", "", "keep"},
		"quantity": 3,
	}
	got := Record(in)

	if got["cap"] != 2.5 {
		t.Fatalf("cap = %#v, want 2.5", got["cap"])
	}
	if got["kod_2"] != "TEST" {
		t.Fatalf("kod_2 = %#v, want TEST", got["kod_2"])
	}
	if got["empty"] != nil {
		t.Fatalf("empty = %#v, want nil", got["empty"])
	}
	nested, ok := got["nested"].(map[string]any)
	if !ok || nested["tolerans"] != 0.05 {
		t.Fatalf("nested = %#v, want tolerans 0.05", got["nested"])
	}
	lines, ok := got["lines"].([]any)
	if !ok || lines[0] != 1.5 || lines[1] != nil || lines[2] != "keep" {
		t.Fatalf("lines = %#v", got["lines"])
	}
	// Input must stay untouched.
	if in["cap"] != "2,5" {
		t.Fatalf("input mutated: %#v", in["cap"])
	}
}

func TestRecordNil(t *testing.T) {
	if got := Record(nil); got != nil {
		t.Fatalf("Record(nil) = %#v, want nil", got)
	}
	if got := Slice(nil); got != nil {
		t.Fatalf("Slice(nil) = %#v, want nil", got)
	}
}

func TestNumber(t *testing.T) {
	if got := Number("2,50"); got != 2.5 {
		t.Fatalf("Number(2,50) = %#v, want 2.5", got)
	}
	if got := Number(""); got != nil {
		t.Fatalf("Number(\"\") = %#v, want nil", got)
	}
	if got := Number("x,y"); got != "x,y" {
		t.Fatalf("Number(x,y) = %#v, want pass-through", got)
	}
}
