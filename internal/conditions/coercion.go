// internal/conditions/coercion.go
package conditions

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

/*
 * Value coercion for rule evaluation.
 *
 * Rule operands are always strings as authored in the editor. Record values
 * are whatever the previous workflow step produced. Two explicit, total
 * coercions bridge them:
 *
 *   - TextForm: natural textual form, used by equals/contains
 *       string          -> itself
 *       integers        -> decimal ("123456")
 *       floats          -> shortest decimal, no exponent ("15000", "0.5")
 *       json.Number     -> as the float64 it denotes; integer literals
 *                          beyond 2^53 keep their digits
 *       bool            -> "true" / "false"
 *       records, slices -> compact JSON, keys sorted
 *       null, undefined -> no textual form (ok=false)
 *
 *   - NumberForm: numeric view, used by greater_than/less_than
 *       numbers, json.Number -> float64
 *       strings              -> trimmed then parsed; "" and "   " rejected
 *       bool, null, records  -> not numeric (strict, no true==1)
 *
 * Neither coercion ever fails loudly; ok=false feeds the operator table,
 * which resolves it to a boolean.
 */

// TextForm returns the natural textual form of a record value.
// ok is false for null, which has no textual form.
func TextForm(value any) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case bool:
		return strconv.FormatBool(v), true
	case float64:
		return formatFloat(v, 64), true
	case float32:
		return formatFloat(float64(v), 32), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case int32:
		return strconv.FormatInt(int64(v), 10), true
	case uint64:
		return strconv.FormatUint(v, 10), true
	case json.Number:
		return numberText(v), true
	case []byte:
		return string(v), true
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.String:
		return rv.String(), true
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool()), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10), true
	case reflect.Float32:
		return formatFloat(rv.Float(), 32), true
	case reflect.Float64:
		return formatFloat(rv.Float(), 64), true
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return "", false
		}
		return TextForm(rv.Elem().Interface())
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
		b, err := json.Marshal(canonicalNumbers(value))
		if err != nil {
			return fmt.Sprintf("%v", value), true
		}
		return string(b), true
	default:
		return fmt.Sprintf("%v", value), true
	}
}

// formatFloat renders integral floats without a fractional part or exponent,
// so a JSON-decoded 123456 compares equal to the operand "123456".
func formatFloat(f float64, bitSize int) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return strconv.FormatFloat(f, 'g', -1, bitSize)
	}
	return strconv.FormatFloat(f, 'f', -1, bitSize)
}

// maxExactInt bounds the integers a float64 represents exactly.
const maxExactInt = 1 << 53

// numberText formats a decoded JSON number exactly as the float64 decoder
// would have produced it, so "123456.0" and "1.23456e5" read as "123456".
func numberText(n json.Number) string {
	s := n.String()
	f, ok := ParseNumber(s)
	if !ok {
		return s
	}
	if math.Abs(f) > maxExactInt && isIntegerLiteral(s) {
		return s
	}
	return formatFloat(f, 64)
}

// canonicalNumbers copies decoded JSON containers with every json.Number
// rewritten by numberText. Other values are returned as is.
func canonicalNumbers(value any) any {
	switch v := value.(type) {
	case json.Number:
		return json.Number(numberText(v))
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, elem := range v {
			out[k] = canonicalNumbers(elem)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, elem := range v {
			out[i] = canonicalNumbers(elem)
		}
		return out
	default:
		return value
	}
}

func isIntegerLiteral(s string) bool {
	s = strings.TrimPrefix(s, "-")
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// NumberForm returns the numeric view of a record value or rule operand.
// Booleans are rejected (strict mode) to avoid "true" vs 1 ambiguity.
func NumberForm(value any) (float64, bool) {
	switch v := value.(type) {
	case nil, bool:
		return 0, false
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case json.Number:
		return ParseNumber(v.String())
	case string:
		return ParseNumber(v)
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	case reflect.String:
		return ParseNumber(rv.String())
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return 0, false
		}
		return NumberForm(rv.Elem().Interface())
	default:
		return 0, false
	}
}

// ParseNumber parses a decimal string after trimming whitespace.
// Empty and whitespace-only strings are not numbers; out-of-range values are
// rejected rather than clamped to infinity.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// IsEmptyValue implements is_empty: undefined, null, "", or a record or
// sequence with zero elements. 0 and false are not empty.
func IsEmptyValue(value any, found bool) bool {
	if !found {
		return true
	}
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case map[string]any:
		return len(v) == 0
	case []any:
		return len(v) == 0
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.String, reflect.Map, reflect.Slice, reflect.Array:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return true
		}
		return IsEmptyValue(rv.Elem().Interface(), true)
	default:
		return false
	}
}
