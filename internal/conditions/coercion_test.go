package conditions

import (
	"encoding/json"
	"math"
	"testing"
)

type label string

func TestTextForm(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		wantText string
		wantOK   bool
	}{
		{name: "string passthrough", value: "hello", wantText: "hello", wantOK: true},
		{name: "empty string", value: "", wantText: "", wantOK: true},
		{name: "integral float64", value: float64(123456), wantText: "123456", wantOK: true},
		{name: "fractional float64", value: 15000.5, wantText: "15000.5", wantOK: true},
		{name: "large integral float64 has no exponent", value: 1e15, wantText: "1000000000000000", wantOK: true},
		{name: "float32", value: float32(0.25), wantText: "0.25", wantOK: true},
		{name: "int", value: 100, wantText: "100", wantOK: true},
		{name: "int64", value: int64(-999), wantText: "-999", wantOK: true},
		{name: "uint8", value: uint8(7), wantText: "7", wantOK: true},
		{name: "json.Number integer", value: json.Number("123456"), wantText: "123456", wantOK: true},
		{name: "json.Number trailing zero fraction", value: json.Number("123456.0"), wantText: "123456", wantOK: true},
		{name: "json.Number exponent", value: json.Number("1.23456e5"), wantText: "123456", wantOK: true},
		{name: "json.Number fraction", value: json.Number("1.50"), wantText: "1.5", wantOK: true},
		{name: "json.Number negative", value: json.Number("-0.250"), wantText: "-0.25", wantOK: true},
		{name: "json.Number large integer keeps digits", value: json.Number("12345678901234567890"), wantText: "12345678901234567890", wantOK: true},
		{name: "json.Number 2^53 as float", value: json.Number("9007199254740992"), wantText: "9007199254740992", wantOK: true},
		{name: "bool true", value: true, wantText: "true", wantOK: true},
		{name: "bool false", value: false, wantText: "false", wantOK: true},
		{name: "named string type", value: label("vip"), wantText: "vip", wantOK: true},
		{name: "record as sorted JSON", value: map[string]any{"b": 1, "a": "x"}, wantText: `{"a":"x","b":1}`, wantOK: true},
		{name: "sequence as JSON", value: []any{"a", 2.0, true, nil}, wantText: `["a",2,true,null]`, wantOK: true},
		{name: "nested json.Number canonical", value: map[string]any{"id": json.Number("123456.0"), "xs": []any{json.Number("1.50e1")}}, wantText: `{"id":123456,"xs":[15]}`, wantOK: true},
		{name: "typed slice as JSON", value: []string{"kopi"}, wantText: `["kopi"]`, wantOK: true},
		{name: "NaN", value: math.NaN(), wantText: "NaN", wantOK: true},
		{name: "null has no text form", value: nil, wantText: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := TextForm(tt.value)
			if ok != tt.wantOK {
				t.Fatalf("TextForm() ok = %v, want %v", ok, tt.wantOK)
			}
			if got != tt.wantText {
				t.Errorf("TextForm() = %q, want %q", got, tt.wantText)
			}
		})
	}
}

func TestNumberForm(t *testing.T) {
	tests := []struct {
		name      string
		value     any
		wantValue float64
		wantOK    bool
	}{
		{name: "float64 passthrough", value: 42.5, wantValue: 42.5, wantOK: true},
		{name: "int", value: 100, wantValue: 100, wantOK: true},
		{name: "int64", value: int64(999), wantValue: 999, wantOK: true},
		{name: "uint16", value: uint16(12), wantValue: 12, wantOK: true},
		{name: "json.Number", value: json.Number("15000"), wantValue: 15000, wantOK: true},
		{name: "numeric string", value: "25", wantValue: 25, wantOK: true},
		{name: "string with whitespace", value: "  42  ", wantValue: 42, wantOK: true},
		{name: "decimal string", value: "3.14159", wantValue: 3.14159, wantOK: true},
		{name: "negative string", value: "-100", wantValue: -100, wantOK: true},
		{name: "scientific notation", value: "1e10", wantValue: 1e10, wantOK: true},
		{name: "non-numeric string", value: "abc", wantOK: false},
		{name: "mixed string", value: "123abc", wantOK: false},
		{name: "multiple decimals", value: "1.2.3", wantOK: false},
		{name: "empty string", value: "", wantOK: false},
		{name: "whitespace-only string", value: "   ", wantOK: false},
		{name: "out of range string", value: "1e400", wantOK: false},
		{name: "boolean rejected", value: true, wantOK: false},
		{name: "null rejected", value: nil, wantOK: false},
		{name: "record rejected", value: map[string]any{"a": 1}, wantOK: false},
		{name: "sequence rejected", value: []any{1}, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NumberForm(tt.value)
			if ok != tt.wantOK {
				t.Fatalf("NumberForm() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != tt.wantValue {
				t.Errorf("NumberForm() = %v, want %v", got, tt.wantValue)
			}
		})
	}
}

func TestParseNumber_SpecialValues(t *testing.T) {
	if f, ok := ParseNumber("NaN"); !ok || !math.IsNaN(f) {
		t.Errorf("ParseNumber(NaN) = %v, %v; want NaN, true", f, ok)
	}
	if f, ok := ParseNumber("+Inf"); !ok || !math.IsInf(f, 1) {
		t.Errorf("ParseNumber(+Inf) = %v, %v; want +Inf, true", f, ok)
	}
	if f, ok := ParseNumber("-Inf"); !ok || !math.IsInf(f, -1) {
		t.Errorf("ParseNumber(-Inf) = %v, %v; want -Inf, true", f, ok)
	}
}

func TestIsEmptyValue(t *testing.T) {
	tests := []struct {
		name  string
		value any
		found bool
		want  bool
	}{
		{name: "undefined", value: nil, found: false, want: true},
		{name: "null", value: nil, found: true, want: true},
		{name: "empty string", value: "", found: true, want: true},
		{name: "whitespace string", value: " ", found: true, want: false},
		{name: "zero", value: float64(0), found: true, want: false},
		{name: "false", value: false, found: true, want: false},
		{name: "empty record", value: map[string]any{}, found: true, want: true},
		{name: "empty sequence", value: []any{}, found: true, want: true},
		{name: "empty typed slice", value: []string{}, found: true, want: true},
		{name: "nil typed map", value: map[string]int(nil), found: true, want: true},
		{name: "non-empty record", value: map[string]any{"a": nil}, found: true, want: false},
		{name: "non-empty sequence", value: []any{nil}, found: true, want: false},
		{name: "text", value: "kopi", found: true, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsEmptyValue(tt.value, tt.found); got != tt.want {
				t.Errorf("IsEmptyValue() = %v, want %v", got, tt.want)
			}
		})
	}
}
